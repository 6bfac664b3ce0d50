package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/clock"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/memory"
	"github.com/jwebster45206/npc-engine/pkg/narrative"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
	"gopkg.in/yaml.v3"
)

// Tuning holds the simulation constants that designers adjust without a
// rebuild.
type Tuning struct {
	Clock clock.Clock `yaml:"clock"`
	// TickMinutes is the step size used when a clock advance is replayed.
	TickMinutes int64 `yaml:"tick_minutes"`

	LocationDebounce    int64   `yaml:"location_debounce_minutes"`
	InteractionCooldown int64   `yaml:"interaction_cooldown_minutes"`
	InteractionLogLimit int     `yaml:"interaction_log_limit"`
	VisibilityChance    float64 `yaml:"visibility_chance"`

	HistoryCap  int `yaml:"history_cap"`
	EventLogCap int `yaml:"event_log_cap"`

	NarrativeTimeout time.Duration `yaml:"narrative_timeout"`
}

// DefaultTickMinutes is the replay step for clock advances.
const DefaultTickMinutes = 15

func DefaultTuning() Tuning {
	return Tuning{
		Clock:               clock.Default(),
		TickMinutes:         DefaultTickMinutes,
		LocationDebounce:    schedule.DefaultDebounce,
		InteractionCooldown: interaction.DefaultCooldown,
		InteractionLogLimit: interaction.DefaultLogLimit,
		VisibilityChance:    interaction.DefaultVisibilityChance,
		HistoryCap:          memory.DefaultHistoryCap,
		EventLogCap:         memory.DefaultEventLogCap,
		NarrativeTimeout:    narrative.DefaultTimeout,
	}
}

// LoadTuning reads a YAML tuning file. A missing file yields the defaults,
// and fields left out of the file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, nil
		}
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	t.Clock = t.Clock.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.VisibilityChance < 0 || t.VisibilityChance > 1:
		return fmt.Errorf("visibility_chance must be in [0,1], got %v", t.VisibilityChance)
	case t.TickMinutes <= 0:
		return errors.New("tick_minutes must be positive")
	case t.LocationDebounce < 0:
		return errors.New("location_debounce_minutes must not be negative")
	case t.InteractionCooldown < 0:
		return errors.New("interaction_cooldown_minutes must not be negative")
	case t.InteractionLogLimit <= 0:
		return errors.New("interaction_log_limit must be positive")
	case t.HistoryCap <= 0 || t.EventLogCap <= 0:
		return errors.New("history_cap and event_log_cap must be positive")
	case t.NarrativeTimeout <= 0:
		return errors.New("narrative_timeout must be positive")
	}
	return nil
}
