// Package clock decomposes the simulation's abstract minute counter into
// hour-of-day and day-of-week.
package clock

// Clock holds the calendar constants used to interpret a minute count.
type Clock struct {
	MinutesPerHour int `json:"minutes_per_hour" yaml:"minutes_per_hour"`
	HoursPerDay    int `json:"hours_per_day" yaml:"hours_per_day"`
	DaysPerWeek    int `json:"days_per_week" yaml:"days_per_week"`
}

// Default is a 60-minute, 24-hour, 7-day calendar.
func Default() Clock {
	return Clock{MinutesPerHour: 60, HoursPerDay: 24, DaysPerWeek: 7}
}

// Normalize fills zero fields with defaults.
func (c Clock) Normalize() Clock {
	d := Default()
	if c.MinutesPerHour <= 0 {
		c.MinutesPerHour = d.MinutesPerHour
	}
	if c.HoursPerDay <= 0 {
		c.HoursPerDay = d.HoursPerDay
	}
	if c.DaysPerWeek <= 0 {
		c.DaysPerWeek = d.DaysPerWeek
	}
	return c
}

// MinutesPerDay returns the length of one day in minutes.
func (c Clock) MinutesPerDay() int64 {
	return int64(c.MinutesPerHour) * int64(c.HoursPerDay)
}

// HourOfDay returns the hour in [0, HoursPerDay) for the given time.
func (c Clock) HourOfDay(t int64) int {
	return int(floorMod(floorDiv(t, int64(c.MinutesPerHour)), int64(c.HoursPerDay)))
}

// DayOfWeek returns the day in [0, DaysPerWeek) for the given time.
func (c Clock) DayOfWeek(t int64) int {
	return int(floorMod(floorDiv(t, c.MinutesPerDay()), int64(c.DaysPerWeek)))
}

// StartOfDay returns the first minute of the day containing t.
func (c Clock) StartOfDay(t int64) int64 {
	return floorDiv(t, c.MinutesPerDay()) * c.MinutesPerDay()
}

// At returns the absolute time of the given hour on the day containing t.
func (c Clock) At(t int64, hour int) int64 {
	return c.StartOfDay(t) + int64(hour)*int64(c.MinutesPerHour)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
