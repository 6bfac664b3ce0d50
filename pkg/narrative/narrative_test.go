package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scene() Scene {
	return Scene{
		Kind:         "trade",
		Location:     "fish_market",
		First:        Participant{ID: "mira", Name: "Mira", Occupation: "merchant"},
		Second:       Participant{ID: "old_tom", Occupation: "farmer", Activity: "Selling produce"},
		Relationship: "close_friend",
		Delta:        4,
	}
}

func TestNarrator_UsesGenerator(t *testing.T) {
	var got Prompt
	gen := GeneratorFunc(func(ctx context.Context, p Prompt) (string, error) {
		got = p
		return `  "mira  haggles with Old Tom over a crate of eels. He gives in. Then they laugh."  `, nil
	})

	text := NewNarrator(gen, nil).Describe(context.Background(), scene())
	assert.Equal(t, "Mira haggles with Old Tom over a crate of eels. He gives in.", text)

	assert.Contains(t, got.User, "Location: Fish Market")
	assert.Contains(t, got.User, "Second: Old Tom, farmer, currently selling produce")
	assert.Contains(t, got.User, "Mira regards Old Tom as: close friend")
	assert.Contains(t, got.User, "Interaction: trade (it goes well)")
	assert.NotEmpty(t, got.System)
}

func TestNarrator_FallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
	}{
		{"no generator", nil},
		{"error", GeneratorFunc(func(context.Context, Prompt) (string, error) { return "", errors.New("boom") })},
		{"blank", GeneratorFunc(func(context.Context, Prompt) (string, error) { return "  \n ", nil })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := NewNarrator(tt.gen, nil).Describe(context.Background(), scene())
			assert.Equal(t, Fallback(scene()), text)
		})
	}
}

func TestNarrator_Filter(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, Prompt) (string, error) {
		return "Tom curses: damn eels.", nil
	})
	text := NewNarrator(gen, nil).WithFilter(NewProfanityFilter()).Describe(context.Background(), scene())
	assert.Equal(t, "Tom curses: dang eels.", text)
}

func TestNilNarrator(t *testing.T) {
	var n *Narrator
	assert.Equal(t, Fallback(scene()), n.Describe(context.Background(), scene()))
}

func TestFallback(t *testing.T) {
	s := scene()
	first := Fallback(s)
	require.NotEmpty(t, first)
	assert.Equal(t, first, Fallback(s))
	assert.Contains(t, first, "Mira")
	assert.Contains(t, first, "Old Tom")

	s.Kind = "unknown"
	assert.Equal(t, "Mira and Old Tom cross paths.", Fallback(s))

	for _, kind := range []string{"conversation", "trade", "conflict", "collaboration"} {
		s.Kind = kind
		assert.False(t, strings.Contains(Fallback(s), "%!"), kind)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"one. two. three.", 2, "One. two."},
		{"Dr.Who waits. Then leaves. Finally.", 2, "Dr.Who waits. Then leaves."},
		{"Is it? Yes! No.", 1, "Is it?"},
		{"  no punctuation  at all ", 2, "No punctuation at all"},
		{`'quoted.'`, 2, "Quoted."},
		{"", 2, ""},
		{"keep all. of it.", 0, "Keep all. of it."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in, tt.max), tt.in)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Old Tom", DisplayName("old_tom"))
	assert.Equal(t, "Fish Market", DisplayName("fish-market"))
	assert.Equal(t, "", DisplayName(""))
}
