package generation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/praxis-go-api/internal/obligation"
)

func normalizeRC() RunContext {
	return RunContext{ActivityID: "a", NewID: func() string { return "fixed-id" }}
}

func pythonSlot() ProblemSlot {
	return ProblemSlot{
		Index:         0,
		Language:      LanguagePython,
		Difficulty:    DifficultyEasy,
		Topics:        []string{"strings"},
		ProblemStyle:  StyleReturn,
		Constraints:   "Standard library only.",
		TestCaseCount: 8,
	}
}

func TestNormalizeFillsConstraintsAndRecordsRewrite(t *testing.T) {
	payload := draftPayload{
		Title:             "Shout",
		Description:       "Uppercase it.",
		StarterCode:       "def solve(x):\n    pass\n",
		ReferenceSolution: "def solve(x):\n    return x.upper()\n",
		TestSuite:         "suite",
		SampleInputs:      []string{" a "},
		SampleOutputs:     []string{"A"},
	}

	draft, err := normalizeDraft(payload, pythonSlot(), normalizeRC(), "raw")
	require.NoError(t, err)
	require.Equal(t, "Standard library only.", draft.Constraints)
	require.Equal(t, []string{"a"}, draft.SampleInputs)
	require.Equal(t, "raw", draft.RawText())
	require.Equal(t, "fixed-id", draft.ID)

	var ids []string
	for _, r := range draft.Rewrites {
		ids = append(ids, r.ID)
	}
	require.Contains(t, ids, RewriteNormalizeConstraints)
}

func TestNormalizeRejectsConstraintDrift(t *testing.T) {
	payload := draftPayload{
		Description:       "Uppercase it.",
		StarterCode:       "def solve(x):\n    pass\n",
		ReferenceSolution: "def solve(x):\n    return x\n",
		TestSuite:         "suite",
		Constraints:       "WRONG",
		SampleInputs:      []string{"a"},
		SampleOutputs:     []string{"A"},
	}

	_, err := normalizeDraft(payload, pythonSlot(), normalizeRC(), "raw")
	require.Error(t, err)

	violation, ok := err.(*obligation.Violation)
	require.True(t, ok)
	require.Contains(t, violation.Message, "Invalid constraints")
}

func TestNormalizeReplacesMismatchedSamples(t *testing.T) {
	payload := draftPayload{
		Description:       "Uppercase it.",
		StarterCode:       "def solve(x):\n    pass\n",
		ReferenceSolution: "def solve(x):\n    return x\n",
		TestSuite:         "suite",
		SampleInputs:      []string{"a", "b"},
		SampleOutputs:     []string{"A"},
	}

	draft, err := normalizeDraft(payload, pythonSlot(), normalizeRC(), "raw")
	require.NoError(t, err)
	require.Len(t, draft.SampleInputs, 1)
	require.Equal(t, draft.SampleInputs, draft.SampleOutputs)

	var ids []string
	for _, r := range draft.Rewrites {
		ids = append(ids, r.ID)
	}
	require.Contains(t, ids, RewriteNormalizeSamples)
}

func TestNormalizeRequiresMatchingWorkspaces(t *testing.T) {
	payload := draftPayload{
		Description:        "Model billing.",
		ReferenceWorkspace: map[string]string{"Billing.java": "public class Billing {}", "Plan.java": "interface Plan {}"},
		Workspace:          map[string]string{"Billing.java": "public class Billing {}"},
		TestSuite:          "suite",
		SampleInputs:       []string{"a"},
		SampleOutputs:      []string{"A"},
	}

	slot := pythonSlot()
	slot.Language = LanguageJava
	_, err := normalizeDraft(payload, slot, normalizeRC(), "raw")
	require.Error(t, err)
	require.Contains(t, err.Error(), "workspace")
}

func TestFlexStringAcceptsObjects(t *testing.T) {
	var payload draftPayload
	err := json.Unmarshal([]byte(`{"description": "d", "reference_solution": "SELECT 1;", "test_suite": {"schema_sql": "CREATE TABLE t (n INTEGER);", "cases": []}}`), &payload)
	require.NoError(t, err)
	require.Contains(t, string(payload.TestSuite), `"schema_sql"`)
}

func TestExternalStripsReferenceMaterial(t *testing.T) {
	draft := &GeneratedProblemDraft{
		ID:                 "p1",
		Language:           LanguageJava,
		Title:              "T",
		Description:        "D",
		StarterCode:        "public class T {}",
		TestSuite:          "suite",
		ReferenceSolution:  "secret",
		ReferenceWorkspace: map[string]string{"T.java": "secret"},
		SampleInputs:       []string{"a"},
		SampleOutputs:      []string{"A"},
	}

	external := draft.External()
	encoded, err := json.Marshal(external)
	require.NoError(t, err)
	require.NotContains(t, string(encoded), "secret")
	require.NotContains(t, string(encoded), "reference_solution")
}
