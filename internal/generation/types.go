package generation

import (
	"strings"
)

// Language enumerates the languages the generator can target.
type Language string

// Supported languages.
const (
	LanguageJava   Language = "java"
	LanguagePython Language = "python"
	LanguageCPP    Language = "cpp"
	LanguageSQL    Language = "sql"
)

// Valid reports whether the language is one the profile table knows.
func (l Language) Valid() bool {
	switch l {
	case LanguageJava, LanguagePython, LanguageCPP, LanguageSQL:
		return true
	}
	return false
}

// Difficulty enumerates problem difficulty levels.
type Difficulty string

// Difficulty levels in ascending order.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rank returns the sort position of the difficulty (easy < medium < hard).
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return 3
}

// Valid reports whether the difficulty is a known level.
func (d Difficulty) Valid() bool {
	return d.Rank() < 3
}

// ProblemStyle describes how a problem communicates results.
type ProblemStyle string

// Problem styles.
const (
	StyleReturn ProblemStyle = "return"
	StyleStdout ProblemStyle = "stdout"
	StyleMixed  ProblemStyle = "mixed"
)

// Valid reports whether the style is recognised.
func (p ProblemStyle) Valid() bool {
	return p == StyleReturn || p == StyleStdout || p == StyleMixed
}

// WantsStdout reports whether solutions are expected to write to stdout.
func (p ProblemStyle) WantsStdout() bool {
	return p == StyleStdout || p == StyleMixed
}

// DifficultyCount is one entry of an activity's difficulty plan.
type DifficultyCount struct {
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
}

// ActivitySpec is the immutable input to the generation pipeline. It is
// assembled by the caller (normally from a validated API request) and never
// mutated while a run is in flight.
type ActivitySpec struct {
	Language              Language          `json:"language"`
	ProblemCount          int               `json:"problem_count"`
	DifficultyPlan        []DifficultyCount `json:"difficulty_plan"`
	TopicTags             []string          `json:"topic_tags"`
	FocusConcepts         []string          `json:"focus_concepts,omitempty"`
	ProblemStyle          ProblemStyle      `json:"problem_style"`
	Constraints           string            `json:"constraints"`
	TestCaseCount         int               `json:"test_case_count"`
	ExplicitHardRequested bool              `json:"explicit_hard_requested"`
}

// ProblemSlot is one unit of generation work carved out of an ActivitySpec.
// Slots are immutable once produced by the planner.
type ProblemSlot struct {
	Index         int          `json:"index"`
	Language      Language     `json:"language"`
	Difficulty    Difficulty   `json:"difficulty"`
	Topics        []string     `json:"topics"`
	ProblemStyle  ProblemStyle `json:"problem_style"`
	Constraints   string       `json:"constraints"`
	TestCaseCount int          `json:"test_case_count"`
}

// PrimaryTopic returns the slot's first topic tag.
func (s ProblemSlot) PrimaryTopic() string {
	if len(s.Topics) == 0 {
		return ""
	}
	return s.Topics[0]
}

// RewriteRecord describes one mechanical rewrite applied to a draft before
// validation. Records are carried on the draft so progress events can surface
// what changed.
type RewriteRecord struct {
	ID      string `json:"id"`
	Applied bool   `json:"applied"`
	Detail  string `json:"detail,omitempty"`
}

// Obligation is the outcome of one named structural rule.
type Obligation struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// GeneratedProblemDraft is the core's per-slot output, including the hidden
// reference material. Callers outside the core only ever see the result of
// External().
type GeneratedProblemDraft struct {
	ID                 string            `json:"id"`
	Language           Language          `json:"language"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	StarterCode        string            `json:"starter_code"`
	Workspace          map[string]string `json:"workspace,omitempty"`
	TestSuite          string            `json:"test_suite"`
	ReferenceSolution  string            `json:"reference_solution,omitempty"`
	ReferenceWorkspace map[string]string `json:"reference_workspace,omitempty"`
	Constraints        string            `json:"constraints"`
	SampleInputs       []string          `json:"sample_inputs"`
	SampleOutputs      []string          `json:"sample_outputs"`
	Difficulty         Difficulty        `json:"difficulty"`
	TopicTag           string            `json:"topic_tag"`
	Rewrites           []RewriteRecord   `json:"rewrites,omitempty"`

	// rawText is the raw LLM response this draft was parsed from, kept for
	// the pipeline's substantive-change check. Never serialised.
	rawText string
}

// RawText returns the raw LLM response the draft was parsed from.
func (d *GeneratedProblemDraft) RawText() string { return d.rawText }

// ExternalProblemDraft is a draft with the reference material stripped. This
// is the only problem shape that leaves the core.
type ExternalProblemDraft struct {
	ID            string            `json:"id"`
	Language      Language          `json:"language"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	StarterCode   string            `json:"starter_code"`
	Workspace     map[string]string `json:"workspace,omitempty"`
	TestSuite     string            `json:"test_suite"`
	Constraints   string            `json:"constraints"`
	SampleInputs  []string          `json:"sample_inputs"`
	SampleOutputs []string          `json:"sample_outputs"`
	Difficulty    Difficulty        `json:"difficulty"`
	TopicTag      string            `json:"topic_tag"`
	Rewrites      []RewriteRecord   `json:"rewrites,omitempty"`
}

// External strips the reference solution and reference workspace.
func (d *GeneratedProblemDraft) External() ExternalProblemDraft {
	return ExternalProblemDraft{
		ID:            d.ID,
		Language:      d.Language,
		Title:         d.Title,
		Description:   d.Description,
		StarterCode:   d.StarterCode,
		Workspace:     d.Workspace,
		TestSuite:     d.TestSuite,
		Constraints:   d.Constraints,
		SampleInputs:  d.SampleInputs,
		SampleOutputs: d.SampleOutputs,
		Difficulty:    d.Difficulty,
		TopicTag:      d.TopicTag,
		Rewrites:      d.Rewrites,
	}
}

// SoftFallback records a hard slot that was downgraded to medium after
// exhausting quality retries.
type SoftFallback struct {
	SlotIndex int        `json:"slot_index"`
	From      Difficulty `json:"from"`
	To        Difficulty `json:"to"`
	Reason    string     `json:"reason"`
}

// Result is what a completed run hands back to the caller. Reference
// material is already stripped.
type Result struct {
	ActivityID    string                 `json:"activity_id"`
	Problems      []ExternalProblemDraft `json:"problems"`
	Rewrites      []RewriteRecord        `json:"rewrites"`
	SoftFallbacks []SoftFallback         `json:"soft_fallbacks,omitempty"`
}

// OOP structural topics that shape Java obligations and forbid stdin reads.
var structuralTopics = map[string]struct{}{
	"encapsulation": {},
	"inheritance":   {},
	"polymorphism":  {},
	"abstraction":   {},
	"composition":   {},
}

// StructuralTopic returns the first OOP structural topic among the slot's
// topics, if any.
func (s ProblemSlot) StructuralTopic() (string, bool) {
	for _, topic := range s.Topics {
		key := strings.ToLower(strings.TrimSpace(topic))
		if _, ok := structuralTopics[key]; ok {
			return key, true
		}
	}
	return "", false
}
