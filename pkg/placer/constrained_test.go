package placer

import (
	"math/rand"
	"testing"

	"github.com/kassaye-yigzaw/sparrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstrainedSpreadScenario(t *testing.T) {
	// A single task preferring h1, probeRatio 3, against {w1(h1), w2(h2),
	// w3(h3)} with h1 already excluded by the façade's spread hack before
	// Plan is ever called — here we exercise the placer directly against
	// the post-spread candidate set.
	req := types.Request{
		App: "A",
		Tasks: []types.Task{
			{TaskID: "t1", Preference: &types.Preference{Nodes: []string{"w2", "w3"}}},
		},
		ProbeRatio: 3.0,
	}
	workers := []string{"w2", "w3"}

	p := NewConstrained(rand.New(rand.NewSource(1)))
	batches := p.Plan(req, "r1", workers, "sched:1")

	require.Len(t, batches, 2)
	total := 0
	for w, b := range batches {
		total += b.NumReservations
		require.Len(t, b.Tasks, 1)
		assert.Equal(t, "t1", b.Tasks[0].TaskID)
		assert.Contains(t, workers, w)
	}
	assert.Equal(t, 3, total)

	var got types.LaunchSpec
	for w := range batches {
		specs := p.AssignTask(w)
		if len(specs) == 1 {
			got = specs[0]
		}
	}
	assert.Equal(t, "t1", got.TaskID)

	// Every remaining credit, from either worker, now returns empty.
	for w, b := range batches {
		for i := 0; i < b.NumReservations; i++ {
			p.AssignTask(w)
		}
	}
	assert.True(t, p.AllResponsesReceived())
}

func TestConstrainedAssignOnlyReturnsPreferringWorker(t *testing.T) {
	req := types.Request{
		App: "A",
		Tasks: []types.Task{
			{TaskID: "t1", Preference: &types.Preference{Nodes: []string{"w1"}}},
			{TaskID: "t2", Preference: &types.Preference{Nodes: []string{"w2"}}},
		},
		ProbeRatio: 1.0,
	}
	workers := []string{"w1", "w2"}

	p := NewConstrained(rand.New(rand.NewSource(1)))
	p.Plan(req, "r1", workers, "sched:1")

	specs := p.AssignTask("w1")
	require.Len(t, specs, 1)
	assert.Equal(t, "t1", specs[0].TaskID)

	specs = p.AssignTask("w2")
	require.Len(t, specs, 1)
	assert.Equal(t, "t2", specs[0].TaskID)
}

func TestConstrainedFallsBackWhenPreferenceUnresolvable(t *testing.T) {
	// All preferences name workers absent from the live set: placer
	// falls back to unconstrained selection for those tasks.
	req := types.Request{
		App: "A",
		Tasks: []types.Task{
			{TaskID: "t1", Preference: &types.Preference{Nodes: []string{"ghost"}}},
		},
		ProbeRatio: 1.0,
	}
	workers := []string{"w1", "w2"}

	p := NewConstrained(rand.New(rand.NewSource(1)))
	batches := p.Plan(req, "r1", workers, "sched:1")

	require.Len(t, batches, 1)
	for w, b := range batches {
		assert.Contains(t, workers, w)
		require.Len(t, b.Tasks, 1)
		assert.Equal(t, "t1", b.Tasks[0].TaskID)
	}
}

func TestConstrainedPreservesPerTaskPreferenceOrderDeterministically(t *testing.T) {
	req := types.Request{
		App: "A",
		Tasks: []types.Task{
			{TaskID: "t1", Preference: &types.Preference{Nodes: []string{"w1", "w2", "w3"}}},
		},
		ProbeRatio: 2.0,
	}
	workers := []string{"w1", "w2", "w3"}

	p1 := NewConstrained(rand.New(rand.NewSource(9)))
	b1 := p1.Plan(req, "r1", workers, "sched:1")

	p2 := NewConstrained(rand.New(rand.NewSource(9)))
	b2 := p2.Plan(req, "r1", workers, "sched:1")

	assert.Equal(t, b1, b2)
}

func TestConstrainedEmptyWorkerSetRetiresImmediately(t *testing.T) {
	req := types.Request{
		App: "A",
		Tasks: []types.Task{
			{TaskID: "t1", Preference: &types.Preference{Nodes: []string{"w1"}}},
		},
		ProbeRatio: 2.0,
	}

	p := NewConstrained(rand.New(rand.NewSource(1)))
	batches := p.Plan(req, "r1", nil, "sched:1")

	assert.Empty(t, batches)
	assert.True(t, p.AllResponsesReceived())
}
