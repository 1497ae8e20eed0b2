package generation

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/praxis-go-api/pkg/judge"
	"github.com/noah-isme/praxis-go-api/pkg/llm"
)

// Config enumerates the pipeline's knobs.
type Config struct {
	// MaxAttemptsPerSlot bounds total attempts per slot, first try included.
	MaxAttemptsPerSlot int
	// SoftFallbackEnabled allows downgrading a hard slot to medium after its
	// quality retries are exhausted, unless the spec explicitly demanded
	// hard.
	SoftFallbackEnabled bool
	// TraceTestSuites includes generated sources in progress events. Debug
	// only; events are otherwise redacted.
	TraceTestSuites bool
}

func (c Config) withDefaults() Config {
	if c.MaxAttemptsPerSlot <= 0 {
		c.MaxAttemptsPerSlot = 3
	}
	return c
}

// Pipeline drives every slot of an activity spec through generation,
// reference execution and the strength gate, with typed retries.
//
// Slots are processed strictly in order so progress events stay predictable
// and failures reproducible.
type Pipeline struct {
	generator *SlotGenerator
	executor  *ReferenceExecutor
	gate      *TestStrengthGate
	sink      ProgressSink
	cfg       Config
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewPipeline wires a pipeline from its collaborators.
func NewPipeline(client llm.Client, adapter judge.Adapter, sink ProgressSink, cfg Config, logger zerolog.Logger) *Pipeline {
	logger = logger.With().Str("component", "generation_pipeline").Logger()
	return &Pipeline{
		generator: NewSlotGenerator(client, adapter, logger),
		executor:  NewReferenceExecutor(adapter, logger),
		gate:      NewTestStrengthGate(adapter, logger),
		sink:      sink,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		tracer:    otel.Tracer("github.com/noah-isme/praxis-go-api/internal/generation/pipeline"),
	}
}

// Run generates the whole activity. On success every draft is returned with
// reference material stripped; on failure the first failing slot aborts the
// run and prior drafts are discarded — a partial activity would mislead the
// user.
func (p *Pipeline) Run(ctx context.Context, spec ActivitySpec, rc RunContext) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "generation.run", trace.WithAttributes(
		attribute.String("language", string(spec.Language)),
		attribute.Int("problem_count", spec.ProblemCount),
	))
	defer span.End()

	slots, err := Plan(spec)
	if err != nil {
		failure := fatalFailure(-1, 0, "invalid activity spec: "+redactError(err))
		p.emit(Event{Type: EventGenerationFailed, SlotIndex: -1, FailureKind: FailureFatal, Message: failure.Message})
		return nil, failure
	}

	p.emit(Event{Type: EventGenerationStarted, SlotIndex: -1})

	drafts := make([]*GeneratedProblemDraft, 0, len(slots))
	var softFallbacks []SoftFallback

	for _, slot := range slots {
		draft, failure := p.runSlot(ctx, slot, rc)

		if failure != nil && failure.Kind == FailureQuality && slot.Difficulty == DifficultyHard &&
			p.cfg.SoftFallbackEnabled && !spec.ExplicitHardRequested {
			downgraded := slot
			downgraded.Difficulty = DifficultyMedium
			fallback := SoftFallback{
				SlotIndex: slot.Index,
				From:      DifficultyHard,
				To:        DifficultyMedium,
				Reason:    "hard slot exhausted quality retries",
			}
			softFallbacks = append(softFallbacks, fallback)
			p.emit(Event{
				Type:      EventSoftFallbackApplied,
				SlotIndex: slot.Index,
				Message:   fallback.Reason,
			})
			draft, failure = p.runSlot(ctx, downgraded, rc)
		}

		if failure != nil {
			kind := failure.Kind
			p.emit(Event{
				Type:        EventGenerationFailed,
				SlotIndex:   failure.SlotIndex,
				FailureKind: kind,
				Obligation:  failure.ObligationID,
				Message:     failure.Message,
			})
			return nil, failure
		}

		drafts = append(drafts, draft)
	}

	result := &Result{ActivityID: rc.ActivityID, SoftFallbacks: softFallbacks}
	for _, draft := range drafts {
		result.Problems = append(result.Problems, draft.External())
		result.Rewrites = append(result.Rewrites, draft.Rewrites...)
	}

	p.emit(Event{Type: EventGenerationCompleted, SlotIndex: -1})
	return result, nil
}

// runSlot runs one slot to completion under the retry table. The returned
// failure, if any, is the last attempt's.
func (p *Pipeline) runSlot(ctx context.Context, slot ProblemSlot, rc RunContext) (*GeneratedProblemDraft, *SlotFailure) {
	p.emit(Event{Type: EventSlotStarted, SlotIndex: slot.Index})

	priorHashes := make(map[string]struct{})
	var repair *RepairInput
	var lastFailure *SlotFailure
	consecutiveUnparsable := 0

	for attempt := 1; attempt <= p.cfg.MaxAttemptsPerSlot; attempt++ {
		if failure := p.cancelled(ctx, slot.Index, attempt); failure != nil {
			return nil, failure
		}

		p.emit(Event{Type: EventSlotLLMAttemptStarted, SlotIndex: slot.Index, Attempt: attempt})

		draft, evidence, failure := p.generator.Generate(ctx, slot, rc, attempt, repair, priorHashes)

		if failure != nil {
			if failure.RawText != "" {
				priorHashes[HashRawText(failure.RawText)] = struct{}{}
			}
			if failure.ObligationID == contractUnparsableJSON {
				consecutiveUnparsable++
				if consecutiveUnparsable >= 2 {
					failure = fatalFailure(slot.Index, attempt, "model output unparsable twice in a row")
				}
			} else {
				consecutiveUnparsable = 0
			}

			p.emit(Event{
				Type:        EventSlotContractFailed,
				SlotIndex:   slot.Index,
				Attempt:     attempt,
				FailureKind: failure.Kind,
				Obligation:  failure.ObligationID,
				Message:     failure.Message,
			})

			if !failure.Kind.Retriable() {
				return nil, failure
			}
			lastFailure = failure
			repair = &RepairInput{
				PreviousDraft: draft,
				PreviousRaw:   failure.RawText,
				ErrorMessage:  failure.Message,
				Kind:          failure.Kind,
			}
			continue
		}

		consecutiveUnparsable = 0
		priorHashes[HashRawText(draft.RawText())] = struct{}{}

		p.emit(Event{Type: EventSlotContractValidated, SlotIndex: slot.Index, Attempt: attempt})

		evidenceEvent := Event{
			Type:      EventSlotEvidence,
			SlotIndex: slot.Index,
			Attempt:   attempt,
			Rewrites:  draft.Rewrites,
		}
		if p.cfg.TraceTestSuites {
			// Debug only: events are otherwise redacted of generated code.
			evidenceEvent.Message = draft.TestSuite
		}
		for _, r := range evidence {
			evidenceEvent.Obligations = append(evidenceEvent.Obligations, Obligation{ID: r.ID, OK: r.OK, Message: r.Message})
		}
		p.emit(evidenceEvent)

		if failure := p.cancelled(ctx, slot.Index, attempt); failure != nil {
			return nil, failure
		}

		p.emit(Event{Type: EventSlotJudgeStarted, SlotIndex: slot.Index, Attempt: attempt})

		judgeFailure := p.executor.Execute(ctx, draft, slot)
		if judgeFailure == nil {
			judgeFailure = p.gate.Check(ctx, draft, slot)
		}

		if judgeFailure != nil {
			judgeFailure.Attempt = attempt
			p.emit(Event{
				Type:        EventSlotJudgeFailed,
				SlotIndex:   slot.Index,
				Attempt:     attempt,
				FailureKind: judgeFailure.Kind,
				Obligation:  judgeFailure.ObligationID,
				Message:     judgeFailure.Message,
			})

			if !judgeFailure.Kind.Retriable() {
				return nil, judgeFailure
			}
			lastFailure = judgeFailure
			repair = &RepairInput{
				PreviousDraft: draft,
				PreviousRaw:   draft.RawText(),
				ErrorMessage:  judgeFailure.Message,
				JudgeStdout:   judgeFailure.JudgeStdout,
				JudgeStderr:   judgeFailure.JudgeStderr,
				Kind:          judgeFailure.Kind,
			}
			continue
		}

		p.emit(Event{Type: EventSlotCompleted, SlotIndex: slot.Index, Attempt: attempt})
		return draft, nil
	}

	if lastFailure == nil {
		lastFailure = fatalFailure(slot.Index, p.cfg.MaxAttemptsPerSlot, "slot exhausted attempts without a recorded failure")
	}
	return nil, lastFailure
}

// cancelled translates a cancelled context into the run's terminal failure.
// No further LLM or judge calls are issued past this point; Run emits the
// single generation_failed event.
func (p *Pipeline) cancelled(ctx context.Context, slotIndex, attempt int) *SlotFailure {
	if ctx.Err() == nil {
		return nil
	}
	return fatalFailure(slotIndex, attempt, "cancelled")
}

func (p *Pipeline) emit(event Event) {
	if p.sink == nil {
		return
	}
	p.sink.Emit(event)
}
