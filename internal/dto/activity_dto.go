package dto

import (
	"time"

	"github.com/noah-isme/praxis-go-api/internal/generation"
)

// DifficultyPlanEntry is one difficulty bucket of a generation request.
type DifficultyPlanEntry struct {
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Count      int    `json:"count" validate:"required,min=1"`
}

// GenerateActivityRequest is the payload accepted by the generation
// endpoint. The dialogue layer that turns free text into this shape lives
// outside this service; by the time a request arrives here the intent is
// already structured, including the explicit-hard flag.
type GenerateActivityRequest struct {
	Language              string                `json:"language" validate:"required,oneof=java python cpp sql"`
	ProblemCount          int                   `json:"problem_count" validate:"required,min=1,max=7"`
	DifficultyPlan        []DifficultyPlanEntry `json:"difficulty_plan" validate:"required,min=1,dive"`
	TopicTags             []string              `json:"topic_tags" validate:"required,min=1,dive,required"`
	FocusConcepts         []string              `json:"focus_concepts,omitempty"`
	ProblemStyle          string                `json:"problem_style" validate:"required,oneof=return stdout mixed"`
	Constraints           string                `json:"constraints"`
	ExplicitHardRequested bool                  `json:"explicit_hard_requested"`
}

// GeneratedProblemResponse is one problem as served to clients. Reference
// material is never present: the pipeline strips it before the service layer
// sees the draft.
type GeneratedProblemResponse struct {
	ID            string            `json:"id"`
	Index         int               `json:"index"`
	Language      string            `json:"language"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	StarterCode   string            `json:"starter_code"`
	Workspace     map[string]string `json:"workspace,omitempty"`
	TestSuite     string            `json:"test_suite"`
	Constraints   string            `json:"constraints"`
	SampleInputs  []string          `json:"sample_inputs"`
	SampleOutputs []string          `json:"sample_outputs"`
	Difficulty    string            `json:"difficulty"`
	TopicTag      string            `json:"topic_tag"`
}

// RewriteRecordResponse surfaces one mechanical rewrite applied during
// generation.
type RewriteRecordResponse struct {
	ID      string `json:"id"`
	Applied bool   `json:"applied"`
	Detail  string `json:"detail,omitempty"`
}

// SoftFallbackResponse records a difficulty downgrade applied by the
// pipeline.
type SoftFallbackResponse struct {
	SlotIndex int    `json:"slot_index"`
	From      string `json:"from"`
	To        string `json:"to"`
	Reason    string `json:"reason"`
}

// ActivityResponse is a finished activity.
type ActivityResponse struct {
	ID            string                     `json:"id"`
	Language      string                     `json:"language"`
	Status        string                     `json:"status"`
	Problems      []GeneratedProblemResponse `json:"problems"`
	Rewrites      []RewriteRecordResponse    `json:"rewrites,omitempty"`
	SoftFallbacks []SoftFallbackResponse     `json:"soft_fallbacks,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// ToActivitySpec converts a validated request into the pipeline's input.
func (r GenerateActivityRequest) ToActivitySpec(testCaseCount int) generation.ActivitySpec {
	plan := make([]generation.DifficultyCount, 0, len(r.DifficultyPlan))
	for _, entry := range r.DifficultyPlan {
		plan = append(plan, generation.DifficultyCount{
			Difficulty: generation.Difficulty(entry.Difficulty),
			Count:      entry.Count,
		})
	}

	return generation.ActivitySpec{
		Language:              generation.Language(r.Language),
		ProblemCount:          r.ProblemCount,
		DifficultyPlan:        plan,
		TopicTags:             r.TopicTags,
		FocusConcepts:         r.FocusConcepts,
		ProblemStyle:          generation.ProblemStyle(r.ProblemStyle),
		Constraints:           r.Constraints,
		TestCaseCount:         testCaseCount,
		ExplicitHardRequested: r.ExplicitHardRequested,
	}
}
