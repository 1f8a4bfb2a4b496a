package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pinhal/switchio"
)

func connectedSim(t *testing.T, initial map[int]switchio.State) *Sim {
	t.Helper()
	s := New(initial)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() { _ = s.Disconnect(context.Background()) })
	return s
}

func TestSim_InitialStates(t *testing.T) {
	s := connectedSim(t, map[int]switchio.State{1: switchio.Open, 2: switchio.Closed})
	got := s.InitialStates()
	assert.Equal(t, switchio.Open, got[1])
	assert.Equal(t, switchio.Closed, got[2])
}

func TestSim_ToggleDeliversChange(t *testing.T) {
	s := connectedSim(t, map[int]switchio.State{5: switchio.Open})

	s.Toggle(5, switchio.Closed)

	select {
	case ch := <-s.Changes():
		assert.Equal(t, 5, ch.Address)
		assert.Equal(t, switchio.Closed, ch.State)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
	}
}

func TestSim_FlipperRule_PulsesOnClose(t *testing.T) {
	s := connectedSim(t, map[int]switchio.State{10: switchio.Open})
	require.NoError(t, s.ConfigureFlipperRule(10, 20, 30, 1.0))

	s.Toggle(10, switchio.Closed)
	<-s.Changes()

	pulses := s.CoilPulses()
	require.Len(t, pulses, 1)
	assert.Equal(t, 20, pulses[0].Addr)
	assert.True(t, s.IsCoilHeld(20))

	s.Toggle(10, switchio.Open)
	<-s.Changes()
	assert.False(t, s.IsCoilHeld(20))
}

func TestSim_RemoveHardwareRule(t *testing.T) {
	s := connectedSim(t, map[int]switchio.State{10: switchio.Open})
	require.NoError(t, s.ConfigureFlipperRule(10, 20, 30, 1.0))
	assert.True(t, s.HasFlipperRule(10))

	require.NoError(t, s.RemoveHardwareRule(10))
	assert.False(t, s.HasFlipperRule(10))

	s.Toggle(10, switchio.Closed)
	<-s.Changes()
	assert.Empty(t, s.CoilPulses(), "no rule installed, no reflex pulse")
}

func TestSim_DisabledCoilDropsPulse(t *testing.T) {
	s := connectedSim(t, nil)
	assert.NoError(t, s.Pulse(99, time.Millisecond))
	assert.Empty(t, s.CoilPulses())

	s.EnableCoil(99)
	assert.NoError(t, s.Pulse(99, time.Millisecond))
	assert.Len(t, s.CoilPulses(), 1)
}
