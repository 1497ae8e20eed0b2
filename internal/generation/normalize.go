package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noah-isme/praxis-go-api/internal/obligation"
	"github.com/noah-isme/praxis-go-api/internal/scan"
)

// Rewrite identifiers recorded on drafts.
const (
	RewriteDemoteExtraPublicTypes = "java.demote_extra_public_types"
	RewritePromotePublicType      = "java.promote_public_type"
	RewriteRenameTestClass        = "java.rename_test_class"
	RewriteTrimStringWhitespace   = "java.trim_string_whitespace"
	RewriteRebuildStdinSuite      = "java.rebuild_stdin_test_suite"
	RewriteNormalizeConstraints   = "normalize.constraints"
	RewriteNormalizeSamples       = "normalize.samples"
	RewriteSynthesizeStarter      = "starter.synthesized"
)

const maxSamplePairs = 10

// draftPayload is the JSON envelope the model must emit. test_suite may be a
// string or, for SQL, a JSON object; flexString accepts both.
type draftPayload struct {
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	StarterCode        string            `json:"starter_code"`
	Workspace          map[string]string `json:"workspace"`
	ReferenceSolution  string            `json:"reference_solution"`
	ReferenceWorkspace map[string]string `json:"reference_workspace"`
	TestSuite          flexString        `json:"test_suite"`
	Constraints        string            `json:"constraints"`
	SampleInputs       []string          `json:"sample_inputs"`
	SampleOutputs      []string          `json:"sample_outputs"`
}

// flexString unmarshals either a JSON string or any JSON value compacted
// back to text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return err
	}
	*f = flexString(buf.String())
	return nil
}

// normalizeDraft turns a parsed payload into a draft, applying the
// deterministic field fixes of the generation contract. Fixes are recorded
// as rewrites; unfixable deviations are contract failures.
func normalizeDraft(payload draftPayload, slot ProblemSlot, rc RunContext, raw string) (*GeneratedProblemDraft, error) {
	draft := &GeneratedProblemDraft{
		ID:                 rc.NewID(),
		Language:           slot.Language,
		Title:              strings.TrimSpace(payload.Title),
		Description:        strings.TrimSpace(payload.Description),
		StarterCode:        payload.StarterCode,
		Workspace:          payload.Workspace,
		TestSuite:          string(payload.TestSuite),
		ReferenceSolution:  payload.ReferenceSolution,
		ReferenceWorkspace: payload.ReferenceWorkspace,
		Difficulty:         slot.Difficulty,
		TopicTag:           slot.PrimaryTopic(),
		rawText:            raw,
	}

	if draft.Title == "" {
		draft.Title = fmt.Sprintf("%s practice problem %d", capitalize(string(slot.Language)), slot.Index+1)
	}
	if draft.Description == "" {
		return nil, &obligation.Violation{ID: "draft.description", Message: "draft has no description"}
	}

	if draft.ReferenceSolution == "" && len(draft.ReferenceWorkspace) == 0 {
		return nil, &obligation.Violation{ID: "draft.reference", Message: "draft has no reference solution"}
	}

	// Workspace drafts must mirror the reference file set so the starter
	// workspace exercises every unit the reference provides.
	if len(draft.ReferenceWorkspace) > 0 {
		if len(draft.Workspace) != len(draft.ReferenceWorkspace) {
			return nil, &obligation.Violation{ID: "draft.workspace", Message: "workspace and reference_workspace file sets differ"}
		}
		for path := range draft.ReferenceWorkspace {
			if _, ok := draft.Workspace[path]; !ok {
				return nil, &obligation.Violation{ID: "draft.workspace", Message: fmt.Sprintf("workspace is missing %s", path)}
			}
		}
	}

	switch {
	case payload.Constraints == "":
		draft.Constraints = slot.Constraints
		if slot.Constraints != "" {
			draft.record(RewriteNormalizeConstraints, "filled constraints from the activity")
		}
	case payload.Constraints != slot.Constraints:
		return nil, &obligation.Violation{ID: "draft.constraints", Message: "Invalid constraints: draft deviates from the activity constraints"}
	default:
		draft.Constraints = slot.Constraints
	}

	inputs := trimSamples(payload.SampleInputs)
	outputs := trimSamples(payload.SampleOutputs)
	if len(inputs) == 0 || len(outputs) == 0 || len(inputs) != len(outputs) {
		draft.SampleInputs = []string{"(see description)"}
		draft.SampleOutputs = []string{"(see description)"}
		draft.record(RewriteNormalizeSamples, "replaced missing or mismatched samples with a placeholder pair")
	} else {
		draft.SampleInputs = inputs
		draft.SampleOutputs = outputs
	}

	if needsStarterSynthesis(draft, slot) {
		profile := profiles[slot.Language]
		starter, ok := profile.synthesizeStarter(draft)
		if !ok {
			return nil, &obligation.Violation{ID: "draft.starter", Message: "draft has no starter code and none could be synthesized"}
		}
		draft.StarterCode = starter
		draft.record(RewriteSynthesizeStarter, "synthesized starter scaffold")
	}

	return draft, nil
}

func (d *GeneratedProblemDraft) record(id, detail string) {
	d.Rewrites = append(d.Rewrites, RewriteRecord{ID: id, Applied: true, Detail: detail})
}

// needsStarterSynthesis reports whether the starter scaffold must be rebuilt
// from the reference. An empty starter always qualifies; a C++ starter
// lacking a solve definition (e.g. only includes and a comment) does too.
func needsStarterSynthesis(draft *GeneratedProblemDraft, slot ProblemSlot) bool {
	if len(draft.Workspace) > 0 {
		return false
	}
	if strings.TrimSpace(draft.StarterCode) == "" {
		return true
	}
	if slot.Language == LanguageCPP {
		return !scan.CPPHasSolve(draft.StarterCode)
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func trimSamples(samples []string) []string {
	out := make([]string, 0, len(samples))
	for _, s := range samples {
		out = append(out, strings.TrimSpace(s))
	}
	if len(out) > maxSamplePairs {
		out = out[:maxSamplePairs]
	}
	return out
}
