package generation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/praxis-go-api/pkg/judge"
)

// ReferenceExecutor runs a draft's reference solution against the draft's
// own test suite. It never retries; the pipeline owns the retry policy.
type ReferenceExecutor struct {
	judge  judge.Adapter
	logger zerolog.Logger
}

// NewReferenceExecutor constructs a reference executor.
func NewReferenceExecutor(adapter judge.Adapter, logger zerolog.Logger) *ReferenceExecutor {
	return &ReferenceExecutor{
		judge:  adapter,
		logger: logger.With().Str("component", "reference_executor").Logger(),
	}
}

// Execute submits the reference to the judge. A failing run returns an
// execution failure carrying truncated judge output for the repair prompt.
func (e *ReferenceExecutor) Execute(ctx context.Context, draft *GeneratedProblemDraft, slot ProblemSlot) *SlotFailure {
	result, err := e.judge.Judge(ctx, judgeRequestFor(draft, draft.TestSuite))
	if err != nil {
		return executionFailure(slot.Index, 0, "judge error: "+redactError(err), "", "")
	}

	if result.TimedOut {
		return executionFailure(slot.Index, 0, "reference solution timed out",
			truncate(result.Stdout, judgeSnippetBudget), truncate(result.Stderr, judgeSnippetBudget))
	}

	if !result.Success {
		e.logger.Debug().
			Int("slot", slot.Index).
			Int("failed_tests", len(result.FailedTests)).
			Int("exit_code", result.ExitCode).
			Msg("reference solution failed its own tests")
		return executionFailure(slot.Index, 0, "reference solution failed its own tests",
			truncate(result.Stdout, judgeSnippetBudget), truncate(result.Stderr, judgeSnippetBudget))
	}

	return nil
}
