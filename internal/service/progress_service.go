package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/praxis-go-api/internal/generation"
	"github.com/noah-isme/praxis-go-api/internal/observability"
)

// ErrRunNotFound indicates no progress stream exists for the activity.
var ErrRunNotFound = errors.New("generation run not found")

const progressHeartbeatInterval = 15 * time.Second

// ProgressService owns the progress streams of in-flight generation runs:
// it hands the pipeline its sink, replays history to late SSE/WS
// subscribers, emits heartbeats, and mirrors events across nodes through
// redis pub/sub and NATS.
type ProgressService interface {
	Register(activityID string) generation.ProgressSink
	Subscribe(activityID string) (<-chan generation.Event, func(), error)
	Release(activityID string)
	Start(ctx context.Context)
}

type progressEnvelope struct {
	Source string           `json:"source"`
	Event  generation.Event `json:"event"`
	SentAt time.Time        `json:"sent_at"`
}

type progressService struct {
	mu      sync.Mutex
	streams map[string]*runStream

	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
}

type runStream struct {
	stream    *generation.Stream
	stopBeats func()
}

// NewProgressService constructs a progress service. redisClient and natsConn
// may be nil; mirroring degrades to in-process only.
func NewProgressService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) ProgressService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":generation"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".generation"
	}

	return &progressService{
		streams:      make(map[string]*runStream),
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "progress_service").Logger(),
		nodeID:       uuid.NewString(),
	}
}

// Register creates the stream for a new run and returns the sink the
// pipeline emits into. Events fan out locally and to the mirrors.
func (s *progressService) Register(activityID string) generation.ProgressSink {
	run := s.ensureStream(activityID)

	heartbeatCtx, stop := context.WithCancel(context.Background())
	run.stopBeats = stop
	go s.heartbeat(heartbeatCtx, run.stream)

	return sinkFunc(func(event generation.Event) {
		event.ActivityID = activityID
		run.stream.Emit(event)
		s.mirror(event)
		observability.ProgressEvents().WithLabelValues(string(event.Type)).Inc()
	})
}

// sinkFunc adapts a function to the ProgressSink interface.
type sinkFunc func(generation.Event)

// Emit implements generation.ProgressSink.
func (f sinkFunc) Emit(event generation.Event) { f(event) }

// Subscribe attaches to a run's stream: full buffered history first, then
// live events.
func (s *progressService) Subscribe(activityID string) (<-chan generation.Event, func(), error) {
	s.mu.Lock()
	run, ok := s.streams[activityID]
	s.mu.Unlock()
	if !ok {
		return nil, nil, ErrRunNotFound
	}

	ch, cancel := run.stream.Subscribe()
	observability.SSEClientsActive().Inc()
	cleanup := func() {
		cancel()
		observability.SSEClientsActive().Dec()
	}
	return ch, cleanup, nil
}

// Release seals and drops a run's stream once the run is acknowledged.
func (s *progressService) Release(activityID string) {
	s.mu.Lock()
	run, ok := s.streams[activityID]
	delete(s.streams, activityID)
	s.mu.Unlock()
	if !ok {
		return
	}
	if run.stopBeats != nil {
		run.stopBeats()
	}
	run.stream.Close()
}

// Start begins consuming mirrored events from other nodes.
func (s *progressService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *progressService) ensureStream(activityID string) *runStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.streams[activityID]; ok {
		return run
	}
	run := &runStream{stream: generation.NewStream(activityID)}
	s.streams[activityID] = run
	return run
}

func (s *progressService) heartbeat(ctx context.Context, stream *generation.Stream) {
	ticker := time.NewTicker(progressHeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stream.Emit(generation.Event{Type: generation.EventHeartbeat, SlotIndex: -1})
		}
	}
}

func (s *progressService) mirror(event generation.Event) {
	if (s.redis == nil || s.redisChannel == "") && (s.nats == nil || s.natsSubject == "") {
		return
	}

	payload, err := json.Marshal(progressEnvelope{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode progress envelope")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to mirror progress event to redis")
		}
	}
	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to mirror progress event to nats")
		}
	}
}

func (s *progressService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("progress redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *progressService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats progress subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain progress nats subscription")
		}
	}()
}

// handleEnvelope replays an event mirrored from another node into the local
// stream for that activity, creating a passive stream when subscribers on
// this node arrived before any local events.
func (s *progressService) handleEnvelope(payload []byte) {
	var envelope progressEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid progress envelope payload")
		return
	}
	if envelope.Source == s.nodeID {
		return
	}
	if envelope.Event.ActivityID == "" {
		return
	}

	run := s.ensureStream(envelope.Event.ActivityID)
	run.stream.Emit(envelope.Event)
}
