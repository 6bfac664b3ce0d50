package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
)

// TickReport summarizes one call to Advance.
type TickReport struct {
	From             int64                     `json:"from"`
	To               int64                     `json:"to"`
	Moves            []schedule.LocationChange `json:"moves,omitempty"`
	Interactions     []interaction.Result      `json:"interactions,omitempty"`
	NewRelationships int                       `json:"new_relationships"`
}

// Advance moves the clock forward by minutes in steps of the tuning's tick
// size. Each step relocates NPCs by schedule, seeds relationships between
// co-located NPCs and runs one interaction round per occupied location.
// A cancelled context stops the replay after the current step.
func (s *Simulation) Advance(ctx context.Context, minutes int64) (TickReport, error) {
	if minutes <= 0 {
		return TickReport{}, fmt.Errorf("advance %d: %w", minutes, ErrInvalidMinutes)
	}

	s.mu.Lock()
	report := TickReport{From: s.world.Clock}
	step := s.tuning.TickMinutes
	if step <= 0 {
		step = minutes
	}

	var err error
	for remaining := minutes; remaining > 0; {
		if err = ctx.Err(); err != nil {
			break
		}
		d := min(step, remaining)
		s.world.Clock += d
		remaining -= d
		s.tick(ctx, &report)
	}
	report.To = s.world.Clock
	s.world.UpdatedAt = time.Now()

	pub := s.publisher
	worldID := s.world.ID
	clk := s.tuning.Clock
	s.mu.Unlock()

	s.logger.Info("Clock advanced",
		"from", report.From,
		"to", report.To,
		"moves", len(report.Moves),
		"interactions", len(report.Interactions),
		"new_relationships", report.NewRelationships)

	if pub != nil {
		if perr := pub.PublishLocationChanges(ctx, worldID, report.Moves); perr != nil {
			s.logger.Warn("Failed to publish location changes", "error", perr)
		}
		if perr := pub.PublishInteractions(ctx, worldID, report.Interactions); perr != nil {
			s.logger.Warn("Failed to publish interactions", "error", perr)
		}
		if perr := pub.PublishClockAdvanced(ctx, worldID, report.To, clk.HourOfDay(report.To), clk.DayOfWeek(report.To)); perr != nil {
			s.logger.Warn("Failed to publish clock advance", "error", perr)
		}
	}

	if err != nil {
		return report, fmt.Errorf("advance interrupted at %d: %w", report.To, err)
	}
	return report, nil
}

// tick runs one simulation step at the current clock. Callers hold s.mu.
func (s *Simulation) tick(ctx context.Context, report *TickReport) {
	t := s.world.Clock
	report.Moves = append(report.Moves, s.scheduler.UpdateLocations(t)...)

	for _, loc := range s.world.Locations() {
		report.NewRelationships += s.initializer.InitializeRelationships(loc, t)
		report.Interactions = append(report.Interactions, s.interactions.ProcessInteractions(ctx, t, loc)...)
	}
}
