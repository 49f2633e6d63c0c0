package port

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oda-midichan/midichan/internal/message"
	"github.com/oda-midichan/midichan/internal/rpc"
)

func TestOutputSupervisorLifecycle(t *testing.T) {
	backend := &fakeBackend{}
	sup := NewOutputSupervisor(backend)
	defer sup.ShutdownAndWait()

	present, err := sup.Query("X")
	require.NoError(t, err)
	require.False(t, present)

	require.NoError(t, sup.Open("X", 0))

	present, err = sup.Query("X")
	require.NoError(t, err)
	require.True(t, present)

	require.NoError(t, sup.Close("X"))
}

func TestOutputSupervisorDuplicateOpen(t *testing.T) {
	backend := &fakeBackend{}
	sup := NewOutputSupervisor(backend)
	defer sup.ShutdownAndWait()

	require.NoError(t, sup.Open("X", 0))
	require.Error(t, sup.Open("X", 1))
}

func TestOutputSupervisorRoutesByDeviceName(t *testing.T) {
	backend := &fakeBackend{}
	sup := NewOutputSupervisor(backend)
	defer sup.ShutdownAndWait()

	require.NoError(t, sup.Open("X", 0))
	require.Len(t, backend.openOuts, 1)

	m := message.Message{Device: "X", Kind: message.NoteOn, Key: 10, Velocity: 20}
	require.True(t, rpc.SendTimeout(sup.MidiOut(), m))

	require.Eventually(t, func() bool {
		return len(backend.openOuts[0].sent) == 1
	}, time.Second, time.Millisecond)

	require.Equal(t, []byte{0x90, 10, 20}, backend.openOuts[0].sent[0])
}

func TestOutputSupervisorDropsUnaddressedMessage(t *testing.T) {
	backend := &fakeBackend{}
	sup := NewOutputSupervisor(backend)
	defer sup.ShutdownAndWait()

	require.NoError(t, sup.Open("X", 0))

	m := message.Message{Device: "nobody", Kind: message.NoteOn}
	require.True(t, rpc.SendTimeout(sup.MidiOut(), m))

	// give the supervisor a beat to process; it should not panic or block.
	time.Sleep(20 * time.Millisecond)
	require.Len(t, backend.openOuts[0].sent, 0)
}
