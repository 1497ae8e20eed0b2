package generation

import (
	"fmt"
	"sort"
	"strings"
)

// Plan expands an ActivitySpec into its ordered slot list. Expansion is
// fully deterministic: easy slots first, topics assigned round-robin, hard
// slots picking up a secondary topic when a distinct one exists.
func Plan(spec ActivitySpec) ([]ProblemSlot, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	plan := append([]DifficultyCount(nil), spec.DifficultyPlan...)
	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].Difficulty.Rank() < plan[j].Difficulty.Rank()
	})

	var difficulties []Difficulty
	for _, entry := range plan {
		for i := 0; i < entry.Count; i++ {
			difficulties = append(difficulties, entry.Difficulty)
		}
	}

	topics := spec.TopicTags
	if len(spec.FocusConcepts) > 0 {
		topics = spec.FocusConcepts
	}

	slots := make([]ProblemSlot, 0, len(difficulties))
	for i, difficulty := range difficulties {
		slot := ProblemSlot{
			Index:         i,
			Language:      spec.Language,
			Difficulty:    difficulty,
			Topics:        []string{topics[i%len(topics)]},
			ProblemStyle:  spec.ProblemStyle,
			Constraints:   spec.Constraints,
			TestCaseCount: spec.TestCaseCount,
		}

		if difficulty == DifficultyHard && len(topics) >= 2 {
			if secondary, ok := nextDistinctTopic(topics, i, slot.Topics[0]); ok {
				slot.Topics = append(slot.Topics, secondary)
			}
		}

		slots = append(slots, slot)
	}

	if err := validatePlan(spec, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// nextDistinctTopic walks the round-robin forward from position i until a
// topic different from the primary appears.
func nextDistinctTopic(topics []string, i int, primary string) (string, bool) {
	for step := 1; step <= len(topics); step++ {
		candidate := topics[(i+step)%len(topics)]
		if candidate != primary {
			return candidate, true
		}
	}
	return "", false
}

func validateSpec(spec ActivitySpec) error {
	if !spec.Language.Valid() {
		return fmt.Errorf("unsupported language %q", spec.Language)
	}
	if spec.ProblemCount < 1 || spec.ProblemCount > 7 {
		return fmt.Errorf("problem_count %d outside [1, 7]", spec.ProblemCount)
	}
	if len(spec.DifficultyPlan) == 0 {
		return fmt.Errorf("difficulty_plan is empty")
	}
	total := 0
	for _, entry := range spec.DifficultyPlan {
		if !entry.Difficulty.Valid() {
			return fmt.Errorf("unknown difficulty %q", entry.Difficulty)
		}
		if entry.Count < 1 {
			return fmt.Errorf("difficulty_plan count must be positive")
		}
		total += entry.Count
	}
	if total != spec.ProblemCount {
		return fmt.Errorf("difficulty_plan totals %d, want problem_count %d", total, spec.ProblemCount)
	}
	if len(spec.TopicTags) == 0 {
		return fmt.Errorf("topic_tags is empty")
	}
	for _, tag := range spec.TopicTags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("topic_tags contains a blank tag")
		}
	}
	if !spec.ProblemStyle.Valid() {
		return fmt.Errorf("unknown problem_style %q", spec.ProblemStyle)
	}
	if spec.TestCaseCount < 1 {
		return fmt.Errorf("test_case_count must be positive")
	}
	return nil
}

// validatePlan re-checks the produced slot list. A failure here is a
// programmer error, not bad input.
func validatePlan(spec ActivitySpec, slots []ProblemSlot) error {
	if len(slots) != spec.ProblemCount {
		return fmt.Errorf("planner produced %d slots, want %d", len(slots), spec.ProblemCount)
	}
	for i, slot := range slots {
		if slot.Index != i {
			return fmt.Errorf("slot %d carries index %d", i, slot.Index)
		}
		if len(slot.Topics) == 0 || len(slot.Topics) > 2 {
			return fmt.Errorf("slot %d has %d topics", i, len(slot.Topics))
		}
		if slot.Constraints != spec.Constraints {
			return fmt.Errorf("slot %d constraints deviate from the spec", i)
		}
	}
	return nil
}
