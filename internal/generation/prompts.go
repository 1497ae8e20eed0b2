package generation

import (
	"fmt"
	"strings"
)

// draftSystemPrompt fixes the contract the model must emit. The pipeline
// depends on this JSON envelope; everything else about the problem is the
// model's to invent.
func draftSystemPrompt(slot ProblemSlot) string {
	var b strings.Builder
	b.WriteString("You are a programming exercise author. Respond with a single JSON object containing: ")
	b.WriteString(`title, description, starter_code, reference_solution, test_suite, sample_inputs (array of strings), sample_outputs (array of strings).`)
	switch slot.Language {
	case LanguageJava:
		b.WriteString(" Java drafts may use reference_workspace/workspace (objects mapping file paths to sources) instead of reference_solution/starter_code for multi-file problems.")
		b.WriteString(" Declare exactly one top-level public type per compilation unit. The test suite is a JUnit 5 class named <PrimaryType>Test with exactly ")
		fmt.Fprintf(&b, "%d @Test methods.", slot.TestCaseCount)
	case LanguagePython:
		fmt.Fprintf(&b, " The solution defines a top-level solve function. The test suite is pytest with exactly %d functions named test_case_1..test_case_%d importing from solution.", slot.TestCaseCount, slot.TestCaseCount)
	case LanguageCPP:
		fmt.Fprintf(&b, ` The solution defines a top-level solve function. The test file #include "solution.cpp", defines a variadic RUN_TEST(name, ...) macro and a main, with exactly %d RUN_TEST cases named test_case_1..test_case_%d.`, slot.TestCaseCount, slot.TestCaseCount)
	case LanguageSQL:
		fmt.Fprintf(&b, ` The reference_solution is a single SQL query. The test_suite is a JSON document with schema_sql and exactly %d cases, each with name and expected_rows.`, slot.TestCaseCount)
	}
	b.WriteString(" Tests must be deterministic: no randomness, no timing, no approximate comparisons, no file or network access.")
	return b.String()
}

func draftUserPrompt(slot ProblemSlot) string {
	var b strings.Builder
	b.WriteString("# Problem request\n")
	fmt.Fprintf(&b, "Language: %s\n", slot.Language)
	fmt.Fprintf(&b, "Difficulty: %s\n", slot.Difficulty)
	fmt.Fprintf(&b, "Topics: %s\n", strings.Join(slot.Topics, ", "))
	fmt.Fprintf(&b, "Result style: %s\n", slot.ProblemStyle)
	if slot.Constraints != "" {
		b.WriteString("\n## Constraints\n")
		b.WriteString(slot.Constraints)
		b.WriteString("\n")
	}
	if topic, ok := slot.StructuralTopic(); ok {
		b.WriteString("\n## Structure\n")
		switch topic {
		case "polymorphism":
			b.WriteString("Model the problem around an interface or abstract base with at least two concrete implementations; tests must dispatch through a base-typed variable.\n")
		case "inheritance":
			b.WriteString("Model the problem around a subclass overriding a parent method; tests must call the override through a parent-typed reference.\n")
		case "abstraction":
			b.WriteString("Model the problem around an abstract base and a concrete implementation.\n")
		case "encapsulation":
			b.WriteString("The primary class keeps its state in private fields behind methods.\n")
		case "composition":
			b.WriteString("The primary class delegates to a component object held in a private field.\n")
		}
		b.WriteString("Do not read standard input.\n")
	}
	b.WriteString("\nReturn JSON only.")
	return b.String()
}

// repairUserPrompt augments the draft request with what went wrong on the
// previous attempt. The model must produce a substantively different draft.
func repairUserPrompt(slot ProblemSlot, repair *RepairInput) string {
	var b strings.Builder
	b.WriteString(draftUserPrompt(slot))
	b.WriteString("\n\n# Previous attempt failed\n")
	if repair.ErrorMessage != "" {
		fmt.Fprintf(&b, "Reason: %s\n", repair.ErrorMessage)
	}
	switch repair.Kind {
	case FailureQuality:
		b.WriteString("The tests were too weak: a trivial do-nothing solution passed them. Write assertions that a constant or empty implementation cannot satisfy.\n")
	case FailureExecution:
		b.WriteString("The reference solution failed its own tests in the sandbox.\n")
		if repair.JudgeStdout != "" {
			b.WriteString("\n## Judge stdout\n")
			b.WriteString(repair.JudgeStdout)
			b.WriteString("\n")
		}
		if repair.JudgeStderr != "" {
			b.WriteString("\n## Judge stderr\n")
			b.WriteString(repair.JudgeStderr)
			b.WriteString("\n")
		}
	}
	if repair.PreviousRaw != "" {
		b.WriteString("\n## Previous draft\n")
		b.WriteString(truncate(repair.PreviousRaw, 8192))
		b.WriteString("\n")
	}
	b.WriteString("\nProduce a corrected, materially different draft. Return JSON only.")
	return b.String()
}

// referenceRepairPrompts build the targeted path that rewrites only the
// reference solution so the existing test suite passes.
func referenceRepairSystemPrompt() string {
	return "You repair reference solutions for programming exercises. Respond with a JSON object containing exactly one key, reference_solution, whose value is the corrected source. Change nothing else about the problem."
}

func referenceRepairUserPrompt(draft *GeneratedProblemDraft, repair *RepairInput) string {
	var b strings.Builder
	b.WriteString("# Failing reference solution\n")
	b.WriteString(draft.ReferenceSolution)
	b.WriteString("\n\n# Test suite it must pass\n")
	b.WriteString(draft.TestSuite)
	if repair.JudgeStdout != "" {
		b.WriteString("\n\n# Judge stdout\n")
		b.WriteString(repair.JudgeStdout)
	}
	if repair.JudgeStderr != "" {
		b.WriteString("\n\n# Judge stderr\n")
		b.WriteString(repair.JudgeStderr)
	}
	b.WriteString("\n\nReturn JSON only.")
	return b.String()
}

// testSuiteRepairPrompts build the one-shot rewrite used when only the test
// suite failed shape validation.
func testSuiteRepairSystemPrompt(slot ProblemSlot) string {
	var b strings.Builder
	b.WriteString("You repair test suites for programming exercises. Respond with a JSON object containing exactly one key, test_suite. ")
	switch slot.Language {
	case LanguageJava:
		fmt.Fprintf(&b, "The suite is a JUnit 5 class with exactly %d @Test methods.", slot.TestCaseCount)
	case LanguagePython:
		fmt.Fprintf(&b, "The suite is pytest with exactly %d functions named test_case_1..test_case_%d.", slot.TestCaseCount, slot.TestCaseCount)
	case LanguageCPP:
		fmt.Fprintf(&b, `The suite #include "solution.cpp" and uses RUN_TEST with exactly %d cases.`, slot.TestCaseCount)
	case LanguageSQL:
		fmt.Fprintf(&b, "The suite is a JSON document with schema_sql and exactly %d cases.", slot.TestCaseCount)
	}
	b.WriteString(" Deterministic only: no randomness, timing, approximate matchers, file or network access.")
	return b.String()
}

func testSuiteRepairUserPrompt(draft *GeneratedProblemDraft, reason string) string {
	var b strings.Builder
	b.WriteString("# Invalid test suite\n")
	b.WriteString(draft.TestSuite)
	b.WriteString("\n\n# Validation failure\n")
	b.WriteString(reason)
	b.WriteString("\n\n# Solution under test\n")
	if draft.ReferenceSolution != "" {
		b.WriteString(draft.ReferenceSolution)
	} else {
		for _, path := range sortedPaths(draft.ReferenceWorkspace) {
			b.WriteString(draft.ReferenceWorkspace[path])
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\nRewrite only the test suite. Return JSON only.")
	return b.String()
}
