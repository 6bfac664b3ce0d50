// Package narrative turns simulation events into short prose. Text comes from
// a pluggable Generator; when it fails or is absent a deterministic template
// is used instead, so callers always get a description.
package narrative

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// ErrEmptyResponse is returned by generators that produced no usable text.
var ErrEmptyResponse = errors.New("generator returned no text")

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 10 * time.Second

// Prompt is a system instruction plus the user-turn request.
type Prompt struct {
	System string
	User   string
}

// Generator produces free text for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, p Prompt) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, p Prompt) (string, error)

func (f GeneratorFunc) GenerateText(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// Narrator describes scenes, falling back to templates on any failure.
type Narrator struct {
	gen     Generator
	filter  *ProfanityFilter
	timeout time.Duration
	logger  *slog.Logger
}

// NewNarrator creates a narrator. A nil generator means templates only.
func NewNarrator(gen Generator, logger *slog.Logger) *Narrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Narrator{gen: gen, timeout: DefaultTimeout, logger: logger}
}

// WithFilter enables profanity filtering of generated text.
// Returns the Narrator for method chaining
func (n *Narrator) WithFilter(pf *ProfanityFilter) *Narrator {
	n.filter = pf
	return n
}

// WithTimeout sets the per-call generation timeout.
func (n *Narrator) WithTimeout(d time.Duration) *Narrator {
	if d > 0 {
		n.timeout = d
	}
	return n
}

// Describe returns one or two sentences describing the scene. It never fails.
func (n *Narrator) Describe(ctx context.Context, scene Scene) string {
	if n == nil || n.gen == nil {
		return Fallback(scene)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	text, err := n.gen.GenerateText(ctx, BuildInteractionPrompt(scene))
	if err == nil {
		text = Clean(text, MaxSentences)
		if text == "" {
			err = ErrEmptyResponse
		}
	}
	if err != nil {
		n.logger.Warn("Narrative generation failed, using fallback",
			"kind", scene.Kind,
			"location", scene.Location,
			"error", err)
		return Fallback(scene)
	}
	if n.filter != nil {
		text = n.filter.FilterText(text)
	}
	return text
}
