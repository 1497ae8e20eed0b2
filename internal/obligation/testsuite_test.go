package obligation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pythonSuite(count int, style string) string {
	var b strings.Builder
	b.WriteString("import pytest\nfrom solution import solve\n\n")
	for i := 1; i <= count; i++ {
		switch style {
		case "stdout":
			fmt.Fprintf(&b, "def test_case_%d(capsys):\n    solve(%d)\n    assert capsys.readouterr().out == \"%d\\n\"\n\n", i, i, i)
		default:
			fmt.Fprintf(&b, "def test_case_%d():\n    assert solve(%d) == %d\n\n", i, i, i)
		}
	}
	return b.String()
}

func TestValidatePythonSuite(t *testing.T) {
	in := Input{Language: "python", Style: "return", TestCaseCount: 8, TestSuite: pythonSuite(8, "return")}
	require.Nil(t, ValidateSuite(in))

	in.TestSuite = pythonSuite(7, "return")
	v := ValidateSuite(in)
	require.NotNil(t, v)
	require.Equal(t, TestsSuiteShape, v.ID)

	in.TestSuite = pythonSuite(8, "return") + "\nimport random\n"
	require.NotNil(t, ValidateSuite(in))

	in.Style = "stdout"
	in.TestSuite = pythonSuite(8, "return")
	require.NotNil(t, ValidateSuite(in), "stdout style requires capsys")

	in.TestSuite = pythonSuite(8, "stdout")
	require.Nil(t, ValidateSuite(in))
}

func TestValidateJavaSuite(t *testing.T) {
	var b strings.Builder
	b.WriteString("import org.junit.jupiter.api.Test;\nimport static org.junit.jupiter.api.Assertions.assertEquals;\n\npublic class BillingTest {\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "    @Test\n    void case%d() { assertEquals(%d, %d); }\n", i, i, i)
	}
	b.WriteString("}\n")

	in := Input{Language: "java", Style: "return", TestCaseCount: 8, TestSuite: b.String()}
	require.Nil(t, ValidateSuite(in))

	in.TestSuite = strings.Replace(b.String(), "assertEquals(1, 1)", "assertEquals(Math.random(), 1)", 1)
	v := ValidateSuite(in)
	require.NotNil(t, v)
	require.Contains(t, v.Message, "Math.random")

	noJUnit := strings.Replace(b.String(), "import org.junit.jupiter.api.Test;", "", 1)
	in.TestSuite = strings.Replace(noJUnit, "import static org.junit.jupiter.api.Assertions.assertEquals;", "", 1)
	require.NotNil(t, ValidateSuite(in))
}

func cppSuite(count int) string {
	var b strings.Builder
	b.WriteString("#include \"solution.cpp\"\n#include <sstream>\n#include <iostream>\n\n")
	b.WriteString("static int failures = 0;\n")
	b.WriteString("#define RUN_TEST(name, ...) do { if (!(__VA_ARGS__)) { failures++; std::cerr << \"FAIL: \" << name << \"\\n\"; } } while (0)\n\n")
	b.WriteString("int main() {\n")
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&b, "    { std::stringstream out; auto* old = std::cout.rdbuf(out.rdbuf()); solve(%d); std::cout.rdbuf(old); RUN_TEST(\"test_case_%d\", out.str() == \"%d\\n\"); }\n", i, i, i)
	}
	b.WriteString("    return failures;\n}\n")
	return b.String()
}

func TestValidateCPPSuite(t *testing.T) {
	in := Input{Language: "cpp", Style: "stdout", TestCaseCount: 8, TestSuite: cppSuite(8)}
	require.Nil(t, ValidateSuite(in))

	in.TestSuite = cppSuite(6)
	require.NotNil(t, ValidateSuite(in))

	in.TestSuite = strings.Replace(cppSuite(8), `#include "solution.cpp"`, "", 1)
	require.NotNil(t, ValidateSuite(in))
}

func TestValidateSQLSuite(t *testing.T) {
	cases := make([]string, 0, 8)
	for i := 1; i <= 8; i++ {
		cases = append(cases, fmt.Sprintf(`{"name": "test_case_%d", "expected_rows": [[%d]]}`, i, i))
	}
	doc := fmt.Sprintf(`{"schema_sql": "CREATE TABLE t (n INTEGER);", "cases": [%s]}`, strings.Join(cases, ","))

	in := Input{Language: "sql", Style: "return", TestCaseCount: 8, TestSuite: doc}
	require.Nil(t, ValidateSuite(in))

	in.TestSuite = `{"cases": []}`
	v := ValidateSuite(in)
	require.NotNil(t, v)
	require.Equal(t, TestsSuiteShape, v.ID)

	in.TestSuite = "not json"
	require.NotNil(t, ValidateSuite(in))
}
