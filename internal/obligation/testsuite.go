package obligation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/praxis-go-api/internal/scan"
)

// ValidateSuite runs the shape checks on a draft's test suite: counts,
// required imports, forbidden constructs. A nil return means the suite is
// well-shaped; obligations may still fail later.
func ValidateSuite(in Input) *Violation {
	if strings.TrimSpace(in.TestSuite) == "" {
		return violate(TestsSuiteShape, "test suite is empty")
	}

	switch in.Language {
	case "java":
		return validateJavaSuite(in)
	case "python":
		return validatePythonSuite(in)
	case "cpp":
		return validateCPPSuite(in)
	case "sql":
		return validateSQLSuite(in)
	}
	return violate(TestsSuiteShape, "unknown language %q", in.Language)
}

var (
	javaTestAnnotationRe = regexp.MustCompile(`@Test\b`)
	javaJUnitImportRe    = regexp.MustCompile(`import\s+(static\s+)?org\.junit\.`)
)

// Constructs that make a suite nondeterministic or let it escape the sandbox.
var javaForbidden = []string{
	"Math.random", "new Random", "ThreadLocalRandom",
	"System.currentTimeMillis", "System.nanoTime",
	"java.io.File", "java.nio.file", "new Socket", "HttpClient",
}

var javaApproximate = []string{"closeTo(", "isCloseTo(", "withPercentage("}

func validateJavaSuite(in Input) *Violation {
	if !javaJUnitImportRe.MatchString(in.TestSuite) {
		return violate(TestsSuiteShape, "test suite does not import org.junit")
	}

	count := len(javaTestAnnotationRe.FindAllString(in.TestSuite, -1))
	if count != in.TestCaseCount {
		return violate(TestsSuiteShape, "test suite declares %d @Test methods, want %d", count, in.TestCaseCount)
	}

	masked := maskedContains(in.TestSuite)
	for _, construct := range javaForbidden {
		if masked(construct) {
			return violate(TestsSuiteShape, "test suite uses forbidden construct %q", construct)
		}
	}
	for _, matcher := range javaApproximate {
		if masked(matcher) {
			return violate(TestsSuiteShape, "test suite uses approximate matcher %q", matcher)
		}
	}
	return nil
}

var pythonForbidden = []string{"random.", "import random", "time.time", "datetime.now", "pytest.approx"}

func validatePythonSuite(in Input) *Violation {
	names := scan.PythonTestCaseNames(in.TestSuite)
	if len(names) != in.TestCaseCount {
		return violate(TestsSuiteShape, "test suite defines %d test_case_N functions, want %d", len(names), in.TestCaseCount)
	}
	for i, name := range names {
		want := fmt.Sprintf("test_case_%d", i+1)
		if name != want {
			return violate(TestsSuiteShape, "test function %d is %s, want %s", i+1, name, want)
		}
	}

	if !strings.Contains(in.TestSuite, "from solution import") && !strings.Contains(in.TestSuite, "import solution") {
		return violate(TestsSuiteShape, "test suite never imports the solution module")
	}

	for _, construct := range pythonForbidden {
		if strings.Contains(in.TestSuite, construct) {
			return violate(TestsSuiteShape, "test suite uses forbidden construct %q", construct)
		}
	}

	switch in.Style {
	case "return":
		if !scan.PythonAssertsOnSolve(in.TestSuite) {
			return violate(TestsSuiteShape, "return-style tests must assert directly on solve(...)")
		}
	case "stdout":
		if !scan.PythonUsesCapsys(in.TestSuite) {
			return violate(TestsSuiteShape, "stdout-style tests must capture output with capsys")
		}
	case "mixed":
		if !scan.PythonAssertsOnSolve(in.TestSuite) || !scan.PythonUsesCapsys(in.TestSuite) {
			return violate(TestsSuiteShape, "mixed-style tests need both solve(...) assertions and capsys capture")
		}
	}
	return nil
}

var cppRunTestMacroRe = regexp.MustCompile(`#define\s+RUN_TEST\s*\(\s*name\s*,\s*\.\.\.\s*\)`)

func validateCPPSuite(in Input) *Violation {
	if !scan.CPPIncludesSolution(in.TestSuite) {
		return violate(TestsSuiteShape, `test file must #include "solution.cpp"`)
	}
	if !scan.CPPDefinesMain(in.TestSuite) {
		return violate(TestsSuiteShape, "test file must define main")
	}
	if !cppRunTestMacroRe.MatchString(in.TestSuite) {
		return violate(TestsSuiteShape, "test file must define the variadic RUN_TEST(name, ...) macro")
	}

	names := scan.CPPRunTestNames(in.TestSuite)
	if len(names) != in.TestCaseCount {
		return violate(TestsSuiteShape, "test file invokes RUN_TEST %d times, want %d", len(names), in.TestCaseCount)
	}
	for i, name := range names {
		want := fmt.Sprintf("test_case_%d", i+1)
		if name != want {
			return violate(TestsSuiteShape, "RUN_TEST %d is named %q, want %q", i+1, name, want)
		}
	}

	if in.Style != "return" && !scan.CPPCapturesStdout(in.TestSuite) {
		return violate(TestsSuiteShape, "stdout-style tests must capture std::cout via rdbuf")
	}

	if strings.Contains(in.TestSuite, "rand(") || strings.Contains(in.TestSuite, "srand(") {
		return violate(TestsSuiteShape, "test file uses forbidden randomness")
	}
	return nil
}

// sqlSuiteSchema validates the structural shape of a SQL test document; the
// case count is checked separately against the slot's test_case_count.
const sqlSuiteSchema = `{
  "type": "object",
  "required": ["schema_sql", "cases"],
  "properties": {
    "schema_sql": {"type": "string", "minLength": 1},
    "cases": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "expected_rows"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "setup_sql": {"type": "string"},
          "expected_rows": {
            "type": "array",
            "items": {"type": "array"}
          }
        }
      }
    }
  }
}`

var sqlSchema = jsonschema.MustCompileString("sql_suite.json", sqlSuiteSchema)

func validateSQLSuite(in Input) *Violation {
	var doc interface{}
	if err := json.Unmarshal([]byte(in.TestSuite), &doc); err != nil {
		return violate(TestsSuiteShape, "sql test suite is not valid JSON: %v", err)
	}
	if err := sqlSchema.Validate(doc); err != nil {
		return violate(TestsSuiteShape, "sql test suite shape invalid: %v", err)
	}

	obj := doc.(map[string]interface{})
	cases, _ := obj["cases"].([]interface{})
	if len(cases) != in.TestCaseCount {
		return violate(TestsSuiteShape, "sql test suite has %d cases, want %d", len(cases), in.TestCaseCount)
	}
	return nil
}

// maskedContains returns a predicate over the comment- and string-stripped
// suite so literals cannot trip forbidden-construct checks.
func maskedContains(source string) func(string) bool {
	masked := scan.MaskJavaLike(source)
	return func(needle string) bool {
		return strings.Contains(masked, needle)
	}
}
