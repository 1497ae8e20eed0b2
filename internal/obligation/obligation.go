// Package obligation verifies the deterministic structural rules a generated
// problem must satisfy before it may leave the pipeline. Every obligation is
// a pure function of source text; evaluation order is fixed and the first
// violation stops the run.
package obligation

import (
	"fmt"
	"sort"
)

// Obligation identifiers. The ids are part of the error surface: failures
// carry them into progress events and API errors.
const (
	JavaSinglePublicType      = "java.single_public_type_per_unit"
	JavaPrimaryMatchesTarget  = "java.primary_type_matches_target"
	JavaTestClassMatches      = "java.test_class_matches_target"
	JavaNoWhileFalse          = "java.no_while_false"
	JavaStdoutSolutionPrints  = "java.stdout_solution_prints"
	JavaStdoutTestsCapture    = "java.stdout_tests_capture"
	JavaStdinTestsProvide     = "java.stdin_tests_provide"
	JavaStdinRequiresMain     = "java.stdin_requires_main"
	JavaStdinStructuralTopics = "java.stdin_disallowed_for_structural_topics"

	javaStructuralPrefix = "java.structural_topic."

	PythonSolveDefined  = "python.solve_defined"
	PythonNoDisallowed  = "python.no_disallowed_imports"
	PythonNoEval        = "python.no_eval"
	PythonStdoutPrints  = "python.stdout_solution_prints"
	CPPSolveDefined     = "cpp.solve_defined"
	CPPStdoutPrints     = "cpp.stdout_solution_prints"
	SQLSuiteShape       = "sql.suite_shape"
	TestsSuiteShape     = "tests.suite_shape"
	TestsRejectBaseline = "tests.reject_baselines"

	RetrySubstantiveChange = "retry.substantive_change_required"
)

// StructuralTopicID returns the obligation id for an OOP structural topic.
func StructuralTopicID(topic string) string {
	return javaStructuralPrefix + topic
}

// Result records one evaluated obligation.
type Result struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Violation is the typed error carrying the first failed obligation.
type Violation struct {
	ID      string
	Message string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("obligation %s violated: %s", v.ID, v.Message)
}

func violate(id, format string, args ...interface{}) *Violation {
	return &Violation{ID: id, Message: fmt.Sprintf(format, args...)}
}

// Input is the obligation checker's view of a draft plus its slot. The
// checker deliberately has no dependency on the generation package.
type Input struct {
	Language        string
	Style           string // return, stdout, mixed
	StructuralTopic string // one of the OOP topics, or ""
	TargetName      string // primary public type the starter declares (Java)
	StarterCode     string
	Workspace       map[string]string
	TestSuite       string
	Reference       string
	ReferenceFiles  map[string]string
	TestCaseCount   int
}

func (in Input) wantsStdout() bool {
	return in.Style == "stdout" || in.Style == "mixed"
}

// referenceSource returns the reference as one unit: the single file, or the
// workspace files joined for whole-program queries.
func (in Input) referenceSource() string {
	if in.Reference != "" {
		return in.Reference
	}
	joined := ""
	for _, path := range sortedKeys(in.ReferenceFiles) {
		joined += in.ReferenceFiles[path] + "\n"
	}
	return joined
}

// Check evaluates every applicable obligation in deterministic order. It
// returns the results of the obligations that ran; a non-nil Violation means
// the last result failed and evaluation stopped there.
func Check(in Input) ([]Result, *Violation) {
	switch in.Language {
	case "java":
		return checkJava(in)
	case "python":
		return checkPython(in)
	case "cpp":
		return checkCPP(in)
	case "sql":
		return checkSQL(in)
	}
	return nil, violate(TestsSuiteShape, "unknown language %q", in.Language)
}

func run(results []Result, id string, ok bool, message string) ([]Result, *Violation) {
	results = append(results, Result{ID: id, OK: ok, Message: message})
	if !ok {
		return results, &Violation{ID: id, Message: message}
	}
	return results, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
