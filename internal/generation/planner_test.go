package generation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func baseSpec() ActivitySpec {
	return ActivitySpec{
		Language:     LanguagePython,
		ProblemCount: 4,
		DifficultyPlan: []DifficultyCount{
			{Difficulty: DifficultyHard, Count: 1},
			{Difficulty: DifficultyEasy, Count: 2},
			{Difficulty: DifficultyMedium, Count: 1},
		},
		TopicTags:     []string{"strings", "loops"},
		ProblemStyle:  StyleReturn,
		Constraints:   "Use only the standard library.",
		TestCaseCount: 8,
	}
}

func TestPlanExpandsSortedDifficulties(t *testing.T) {
	slots, err := Plan(baseSpec())
	require.NoError(t, err)
	require.Len(t, slots, 4)

	var difficulties []Difficulty
	for i, slot := range slots {
		difficulties = append(difficulties, slot.Difficulty)
		require.Equal(t, i, slot.Index)
		require.Equal(t, "Use only the standard library.", slot.Constraints)
		require.Equal(t, 8, slot.TestCaseCount)
		require.Equal(t, StyleReturn, slot.ProblemStyle)
	}
	require.Equal(t, []Difficulty{DifficultyEasy, DifficultyEasy, DifficultyMedium, DifficultyHard}, difficulties)
}

func TestPlanAssignsTopicsRoundRobin(t *testing.T) {
	slots, err := Plan(baseSpec())
	require.NoError(t, err)

	require.Equal(t, "strings", slots[0].PrimaryTopic())
	require.Equal(t, "loops", slots[1].PrimaryTopic())
	require.Equal(t, "strings", slots[2].PrimaryTopic())
	require.Equal(t, "loops", slots[3].PrimaryTopic())
}

func TestPlanAttachesSecondaryTopicToHardSlots(t *testing.T) {
	slots, err := Plan(baseSpec())
	require.NoError(t, err)

	hard := slots[3]
	require.Equal(t, DifficultyHard, hard.Difficulty)
	require.Len(t, hard.Topics, 2)
	require.Equal(t, "loops", hard.Topics[0])
	require.Equal(t, "strings", hard.Topics[1])

	for _, slot := range slots[:3] {
		require.Len(t, slot.Topics, 1)
	}
}

func TestPlanHardSlotWithSingleTopicStaysSingle(t *testing.T) {
	spec := baseSpec()
	spec.TopicTags = []string{"recursion"}
	spec.ProblemCount = 1
	spec.DifficultyPlan = []DifficultyCount{{Difficulty: DifficultyHard, Count: 1}}

	slots, err := Plan(spec)
	require.NoError(t, err)
	require.Len(t, slots[0].Topics, 1)
}

func TestPlanPrefersFocusConcepts(t *testing.T) {
	spec := baseSpec()
	spec.FocusConcepts = []string{"slicing"}

	slots, err := Plan(spec)
	require.NoError(t, err)
	for _, slot := range slots {
		require.Equal(t, "slicing", slot.PrimaryTopic())
	}
}

func TestPlanRejectsInvalidSpecs(t *testing.T) {
	spec := baseSpec()
	spec.ProblemCount = 3
	_, err := Plan(spec)
	require.Error(t, err, "difficulty plan must sum to problem_count")

	spec = baseSpec()
	spec.TopicTags = nil
	_, err = Plan(spec)
	require.Error(t, err)

	spec = baseSpec()
	spec.Language = "rust"
	_, err = Plan(spec)
	require.Error(t, err)

	spec = baseSpec()
	spec.ProblemCount = 8
	spec.DifficultyPlan = []DifficultyCount{{Difficulty: DifficultyEasy, Count: 8}}
	_, err = Plan(spec)
	require.Error(t, err)
}
