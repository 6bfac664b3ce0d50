package relationship

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_MissingIsZero(t *testing.T) {
	g := NewGraph()
	assert.Nil(t, g.Get("a", "b"))
	assert.Equal(t, 0, g.Value("a", "b"))
	assert.False(t, g.Has("a", "b"))
	assert.Empty(t, g.Records("a"))
}

func TestGraph_Directional(t *testing.T) {
	g := NewGraph()
	g.Set("a", "b", 40, 10)
	g.Set("b", "a", -20, 10)

	assert.Equal(t, 40, g.Value("a", "b"))
	assert.Equal(t, -20, g.Value("b", "a"))
	assert.Equal(t, Friend, g.Get("a", "b").Type)
	assert.Equal(t, Unfriendly, g.Get("b", "a").Type)
	assert.True(t, g.Has("b", "a"))

	g.Adjust("a", "b", 5, 20)
	assert.Equal(t, 45, g.Value("a", "b"))
	assert.Equal(t, -20, g.Value("b", "a"))
	assert.Equal(t, int64(20), g.Get("a", "b").LastInteractionTime)
}

func TestGraph_AdjustCreatesAndClamps(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, -7, g.Adjust("a", "c", -7, 0))
	assert.Equal(t, Neutral, g.Get("a", "c").Type)

	assert.Equal(t, MaxValue, g.Adjust("a", "c", 500, 1))
	assert.Equal(t, CloseFriend, g.Get("a", "c").Type)
	assert.Equal(t, MinValue, g.Adjust("a", "c", -1000, 2))
	assert.Equal(t, Enemy, g.Get("a", "c").Type)
}

func TestGraph_BoundsUnderRandomAdjustments(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	g := NewGraph()
	ids := []string{"a", "b", "c", "d"}
	for i := 0; i < 5000; i++ {
		owner := ids[rng.IntN(len(ids))]
		other := ids[rng.IntN(len(ids))]
		v := g.Adjust(owner, other, rng.IntN(61)-30, int64(i))
		require.GreaterOrEqual(t, v, MinValue)
		require.LessOrEqual(t, v, MaxValue)
		require.Equal(t, TypeFor(v), g.Get(owner, other).Type)
	}
}

func TestGraph_ExportImport(t *testing.T) {
	g := NewGraph()
	g.Set("a", "b", 12, 3)
	g.Set("a", "c", -40, 4)

	exported := g.Export()
	exported["a"][0].Value = 99

	assert.Equal(t, 12, g.Value("a", "b"))

	g2 := NewGraph()
	g2.Import(map[string][]Record{"a": {{OtherNPCID: "b", Value: 250, Type: Enemy}}})
	assert.Equal(t, MaxValue, g2.Value("a", "b"))
	assert.Equal(t, CloseFriend, g2.Get("a", "b").Type)
	assert.Equal(t, []string{"a"}, g2.Owners())
}
