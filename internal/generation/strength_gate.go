package generation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/praxis-go-api/internal/obligation"
	"github.com/noah-isme/praxis-go-api/pkg/judge"
)

// TestStrengthGate checks that a draft's test suite separates a correct
// solution from degenerate code: the starter scaffold and a trivial constant
// baseline must both fail the suite.
type TestStrengthGate struct {
	judge  judge.Adapter
	logger zerolog.Logger
}

// NewTestStrengthGate constructs a strength gate.
func NewTestStrengthGate(adapter judge.Adapter, logger zerolog.Logger) *TestStrengthGate {
	return &TestStrengthGate{
		judge:  adapter,
		logger: logger.With().Str("component", "strength_gate").Logger(),
	}
}

// Check runs every baseline. Any baseline passing the suite is a quality
// failure tagged tests.reject_baselines.
func (g *TestStrengthGate) Check(ctx context.Context, draft *GeneratedProblemDraft, slot ProblemSlot) *SlotFailure {
	baselines := g.baselines(draft, slot)

	for _, baseline := range baselines {
		result, err := g.judge.Judge(ctx, baseline.request)
		if err != nil {
			return executionFailure(slot.Index, 0, "judge error during strength gate: "+redactError(err), "", "")
		}
		if result.Success {
			g.logger.Debug().
				Int("slot", slot.Index).
				Str("baseline", baseline.name).
				Msg("baseline passed the test suite")
			return qualityFailure(slot.Index, 0, obligation.TestsRejectBaseline,
				"tests too weak: the "+baseline.name+" baseline passed")
		}
	}

	return nil
}

type baselineCandidate struct {
	name    string
	request judge.Request
}

func (g *TestStrengthGate) baselines(draft *GeneratedProblemDraft, slot ProblemSlot) []baselineCandidate {
	var candidates []baselineCandidate

	if len(draft.Workspace) > 0 {
		candidates = append(candidates, baselineCandidate{
			name: "starter scaffold",
			request: judge.Request{
				Kind:      judge.KindFiles,
				Language:  string(slot.Language),
				Files:     draft.Workspace,
				TestSuite: draft.TestSuite,
			},
		})
	} else {
		candidates = append(candidates, baselineCandidate{
			name: "starter scaffold",
			request: judge.Request{
				Kind:      judge.KindCode,
				Language:  string(slot.Language),
				Code:      draft.StarterCode,
				TestSuite: draft.TestSuite,
			},
		})
	}

	profile := profiles[slot.Language]
	if trivial, ok := profile.trivialBaseline(draft, slot.ProblemStyle); ok {
		candidates = append(candidates, baselineCandidate{
			name: "trivial constant",
			request: judge.Request{
				Kind:      judge.KindCode,
				Language:  string(slot.Language),
				Code:      trivial,
				TestSuite: draft.TestSuite,
			},
		})
	}

	return candidates
}
