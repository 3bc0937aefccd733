package chart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(pairs ...any) []Item {
	var out []Item
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Item{
			Rank:      i/2 + 1,
			Name:      pairs[i].(string),
			URL:       "https://www.last.fm/music/" + pairs[i].(string),
			Playcount: pairs[i+1].(int),
		})
	}
	return out
}

func TestComputeDeltas_AbsentSnapshot(t *testing.T) {
	chart := items("a", 10, "b", 5, "c", 0)

	deltas := ComputeDeltas(chart, nil)

	require.Len(t, deltas, 3)
	for _, item := range chart {
		assert.Equal(t, Delta{Status: StatusNew}, deltas[item.URL], item.Name)
	}
}

func TestComputeDeltas(t *testing.T) {
	chart := items("x", 15, "y", 3, "z", 8, "w", 4, "v", 0)
	previous := Snapshot{
		"https://www.last.fm/music/x": 10,
		"https://www.last.fm/music/z": 8,
		"https://www.last.fm/music/w": 9,
		"https://www.last.fm/music/v": 0,
		"https://www.last.fm/music/gone": 100,
	}

	deltas := ComputeDeltas(chart, previous)

	assert.Equal(t, Delta{Status: StatusChanged, Change: 5}, deltas["https://www.last.fm/music/x"])
	assert.Equal(t, Delta{Status: StatusNew}, deltas["https://www.last.fm/music/y"])
	assert.Equal(t, Delta{Status: StatusUnchanged}, deltas["https://www.last.fm/music/z"])
	assert.Equal(t, Delta{Status: StatusChanged, Change: -5}, deltas["https://www.last.fm/music/w"])
	// a zero prior playcount is still prior data
	assert.Equal(t, Delta{Status: StatusUnchanged}, deltas["https://www.last.fm/music/v"])
	assert.NotContains(t, deltas, "https://www.last.fm/music/gone")
}

func TestComputeDeltas_EmptySnapshotIsPresentButEmpty(t *testing.T) {
	deltas := ComputeDeltas(items("a", 1), Snapshot{})
	assert.Equal(t, StatusNew, deltas["https://www.last.fm/music/a"].Status)
}

func TestComputeDeltas_OrderIndependent(t *testing.T) {
	chart := items("a", 10, "b", 20, "c", 30, "d", 40, "e", 50, "f", 60)
	previous := Snapshot{
		"https://www.last.fm/music/a": 10,
		"https://www.last.fm/music/b": 25,
		"https://www.last.fm/music/d": 1,
	}
	want := ComputeDeltas(chart, previous)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Item(nil), chart...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, want, ComputeDeltas(shuffled, previous))
	}
}

func TestComputeDeltas_DoesNotMutateSnapshot(t *testing.T) {
	previous := Snapshot{"https://www.last.fm/music/a": 1}
	ComputeDeltas(items("a", 2, "b", 3), previous)
	assert.Equal(t, Snapshot{"https://www.last.fm/music/a": 1}, previous)
}

func TestDelta_Indicator(t *testing.T) {
	tests := []struct {
		delta Delta
		want  string
	}{
		{Delta{Status: StatusNew}, "(NEW)"},
		{Delta{Status: StatusUnchanged}, "(=)"},
		{Delta{Status: StatusChanged, Change: 5}, "(+5)"},
		{Delta{Status: StatusChanged, Change: -3}, "(-3)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.delta.Indicator())
		})
	}
}

func TestNewSnapshot(t *testing.T) {
	chart := items("a", 10, "b", 5)
	assert.Equal(t, Snapshot{
		"https://www.last.fm/music/a": 10,
		"https://www.last.fm/music/b": 5,
	}, NewSnapshot(chart))
}
