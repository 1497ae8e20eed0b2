package judge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJavaLayoutNamesFilesAfterPublicClasses(t *testing.T) {
	layout := layouts["java"]
	files, err := layout.Place(Request{
		Kind:      KindCode,
		Language:  "java",
		Code:      "public class Billing {\n}",
		TestSuite: "import org.junit.jupiter.api.Test;\npublic class BillingTest {\n}",
	})
	require.NoError(t, err)
	require.Contains(t, files, "Billing.java")
	require.Contains(t, files, "BillingTest.java")
}

func TestJavaLayoutAcceptsWorkspaces(t *testing.T) {
	layout := layouts["java"]
	files, err := layout.Place(Request{
		Kind:     KindFiles,
		Language: "java",
		Files: map[string]string{
			"Plan.java":    "interface Plan {}",
			"Billing.java": "public class Billing {}",
		},
		TestSuite: "public class BillingTest {}",
	})
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Contains(t, files, "Plan.java")
	require.Contains(t, files, "BillingTest.java")
}

func TestPythonLayoutRejectsWorkspaces(t *testing.T) {
	layout := layouts["python"]
	_, err := layout.Place(Request{Kind: KindFiles, Language: "python"})
	require.Error(t, err)
}

func TestParseTestLines(t *testing.T) {
	passed, failed := parseTestLines("PASS: test_case_1\nnoise\nFAIL: test_case_2\n  PASS: test_case_3\n")
	require.Equal(t, []string{"test_case_1", "test_case_3"}, passed)
	require.Equal(t, []string{"test_case_2"}, failed)
}
