package generation

import (
	"sync"
	"time"
)

// EventType names a progress event.
type EventType string

// Progress event types, emitted per run and per slot.
const (
	EventGenerationStarted     EventType = "generation_started"
	EventSlotStarted           EventType = "slot_started"
	EventSlotLLMAttemptStarted EventType = "slot_llm_attempt_started"
	EventSlotContractValidated EventType = "slot_contract_validated"
	EventSlotEvidence          EventType = "slot_evidence"
	EventSlotContractFailed    EventType = "slot_contract_failed"
	EventSlotJudgeStarted      EventType = "slot_docker_validation_started"
	EventSlotJudgeFailed       EventType = "slot_docker_validation_failed"
	EventSlotCompleted         EventType = "slot_completed"
	EventSoftFallbackApplied   EventType = "generation_soft_fallback_applied"
	EventGenerationCompleted   EventType = "generation_completed"
	EventGenerationFailed      EventType = "generation_failed"
	EventHeartbeat             EventType = "heartbeat"
)

// Event is one entry of the append-only progress log. SlotIndex is -1 for
// run-level events.
type Event struct {
	Seq         uint64          `json:"seq"`
	Type        EventType       `json:"type"`
	ActivityID  string          `json:"activity_id"`
	SlotIndex   int             `json:"slot_index"`
	Attempt     int             `json:"attempt,omitempty"`
	FailureKind FailureKind     `json:"failure_kind,omitempty"`
	Obligation  string          `json:"obligation_id,omitempty"`
	Message     string          `json:"message,omitempty"`
	Obligations []Obligation    `json:"obligations,omitempty"`
	Rewrites    []RewriteRecord `json:"rewrites,omitempty"`
	EmittedAt   time.Time       `json:"emitted_at"`
}

// ProgressSink consumes progress events. The pipeline emits into a sink; the
// Stream below is the canonical implementation with replay.
type ProgressSink interface {
	Emit(event Event)
}

const defaultStreamBuffer = 1024

// Stream is an append-only, replayable event log for one run. Late
// subscribers receive the buffered history before live events. The buffer is
// bounded; when full, heartbeat events are dropped oldest-first, and other
// events are retained.
type Stream struct {
	mu          sync.Mutex
	activityID  string
	seq         uint64
	buffer      []Event
	maxBuffered int
	subscribers map[chan Event]struct{}
	closed      bool
}

// NewStream builds a progress stream for one activity run.
func NewStream(activityID string) *Stream {
	return &Stream{
		activityID:  activityID,
		maxBuffered: defaultStreamBuffer,
		subscribers: make(map[chan Event]struct{}),
	}
}

// Emit appends the event, stamping sequence number, activity id and emission
// time, and fans it out to live subscribers.
func (s *Stream) Emit(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.seq++
	event.Seq = s.seq
	event.ActivityID = s.activityID
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}

	if len(s.buffer) >= s.maxBuffered {
		s.dropOldestHeartbeat()
	}
	if len(s.buffer) < s.maxBuffered {
		s.buffer = append(s.buffer, event)
	}

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Slow subscriber: skip rather than block the pipeline.
		}
	}
}

func (s *Stream) dropOldestHeartbeat() {
	for i, buffered := range s.buffer {
		if buffered.Type == EventHeartbeat {
			s.buffer = append(s.buffer[:i], s.buffer[i+1:]...)
			return
		}
	}
}

// Subscribe returns a channel that replays the buffered history and then
// receives live events, plus a cancel function.
func (s *Stream) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	history := append([]Event(nil), s.buffer...)
	ch := make(chan Event, len(history)+defaultStreamBuffer)
	for _, event := range history {
		ch <- event
	}
	if s.closed {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.subscribers[ch]; ok {
				delete(s.subscribers, ch)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close seals the stream: subscribers' channels are closed and later emits
// are ignored.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, ch)
	}
}

// History returns a copy of the buffered events.
func (s *Stream) History() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.buffer...)
}
