package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/trafficsim/agent"
	"github.com/katalvlaran/trafficsim/core"
)

func TestNew_IsRandomByDefault(t *testing.T) {
	a := agent.New(1, 0, false)
	assert.True(t, a.IsRandom())

	a.WithItinerary(5)
	assert.False(t, a.IsRandom())
	id, ok := a.PendingNext()
	assert.False(t, ok)
	assert.Zero(t, id)
}

func TestSetStreetAndLane(t *testing.T) {
	a := agent.New(1, 0, false)
	a.SetStreet(core.StreetID(7))
	s, ok := a.OnStreet()
	assert.True(t, ok)
	assert.Equal(t, core.StreetID(7), s)

	a.SetLane(2)
	assert.Equal(t, 2, *a.Lane)

	a.ClearStreet()
	_, ok = a.OnStreet()
	assert.False(t, ok)
	assert.Nil(t, a.Lane)
}

func TestResetClearsTransientState(t *testing.T) {
	a := agent.New(1, 3, true)
	a.SetStreet(core.StreetID(1))
	a.SetLane(0)
	a.Speed = 5
	a.Distance = 42
	a.Delay = 3
	a.Time = 10
	a.SetPendingNext(core.StreetID(2))

	a.Reset()

	_, onStreet := a.OnStreet()
	assert.False(t, onStreet)
	assert.Zero(t, a.Speed)
	assert.Zero(t, a.Distance)
	assert.Zero(t, a.Delay)
	assert.Zero(t, a.Time)
	_, hasPending := a.PendingNext()
	assert.False(t, hasPending)
	assert.Equal(t, core.NodeID(3), a.SourceNode) // source node survives reset
}
