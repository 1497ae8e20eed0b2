package generation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamAssignsMonotonicSequence(t *testing.T) {
	stream := NewStream("activity-1")
	stream.Emit(Event{Type: EventGenerationStarted, SlotIndex: -1})
	stream.Emit(Event{Type: EventSlotStarted, SlotIndex: 0})
	stream.Emit(Event{Type: EventSlotCompleted, SlotIndex: 0})

	history := stream.History()
	require.Len(t, history, 3)
	for i, event := range history {
		require.Equal(t, uint64(i+1), event.Seq)
		require.Equal(t, "activity-1", event.ActivityID)
	}
}

func TestStreamReplaysHistoryToLateSubscribers(t *testing.T) {
	stream := NewStream("activity-1")
	stream.Emit(Event{Type: EventGenerationStarted, SlotIndex: -1})
	stream.Emit(Event{Type: EventSlotStarted, SlotIndex: 0})

	ch, cancel := stream.Subscribe()
	defer cancel()

	first := <-ch
	second := <-ch
	require.Equal(t, EventGenerationStarted, first.Type)
	require.Equal(t, EventSlotStarted, second.Type)

	stream.Emit(Event{Type: EventSlotCompleted, SlotIndex: 0})
	third := <-ch
	require.Equal(t, EventSlotCompleted, third.Type)
	require.Equal(t, uint64(3), third.Seq)
}

func TestStreamDropsOldestHeartbeatsWhenFull(t *testing.T) {
	stream := NewStream("activity-1")
	stream.maxBuffered = 4

	stream.Emit(Event{Type: EventHeartbeat, SlotIndex: -1})
	stream.Emit(Event{Type: EventGenerationStarted, SlotIndex: -1})
	stream.Emit(Event{Type: EventHeartbeat, SlotIndex: -1})
	stream.Emit(Event{Type: EventSlotStarted, SlotIndex: 0})
	stream.Emit(Event{Type: EventSlotCompleted, SlotIndex: 0})

	history := stream.History()
	require.Len(t, history, 4)
	require.Equal(t, EventGenerationStarted, history[0].Type)
	require.Equal(t, EventHeartbeat, history[1].Type)
	require.Equal(t, EventSlotStarted, history[2].Type)
	require.Equal(t, EventSlotCompleted, history[3].Type)
}

func TestStreamCloseStopsSubscribers(t *testing.T) {
	stream := NewStream("activity-1")
	ch, cancel := stream.Subscribe()
	defer cancel()

	stream.Emit(Event{Type: EventGenerationStarted, SlotIndex: -1})
	<-ch

	stream.Close()
	_, open := <-ch
	require.False(t, open)

	// Emits after close are ignored.
	stream.Emit(Event{Type: EventSlotStarted, SlotIndex: 0})
	require.Len(t, stream.History(), 1)
}
