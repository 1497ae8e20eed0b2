package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/praxis-go-api/pkg/judge"
)

// rebuildJavaStdinSuite replaces the test suite of a stdin-reading Java
// draft with a deterministic JUnit class derived from the draft's samples.
// The reference is executed in the judge once per sample via a probe suite;
// the captured stdout becomes the expected value. Any stderr from the
// reference fails the slot instead of producing a best-effort rebuild.
func rebuildJavaStdinSuite(ctx context.Context, adapter judge.Adapter, draft *GeneratedProblemDraft, slot ProblemSlot) error {
	target := javaPrimaryTypeName(draft)
	if target == "" {
		return &SlotFailure{Kind: FailureContract, SlotIndex: slot.Index, Message: "stdin rebuild: draft has no primary public type"}
	}
	for _, r := range draft.Rewrites {
		if r.ID == RewriteNormalizeSamples {
			return &SlotFailure{Kind: FailureContract, SlotIndex: slot.Index, Message: "stdin rebuild: draft has no usable samples"}
		}
	}

	probe := buildStdinProbeSuite(target, draft.SampleInputs)
	result, err := adapter.Judge(ctx, judgeRequestFor(draft, probe))
	if err != nil {
		return &SlotFailure{Kind: FailureExecution, SlotIndex: slot.Index, Message: fmt.Sprintf("stdin rebuild: %v", err)}
	}
	if !result.Success || strings.TrimSpace(result.Stderr) != "" {
		return executionFailure(slot.Index, 0, "stdin rebuild: reference failed on sample input",
			truncate(result.Stdout, judgeSnippetBudget), truncate(result.Stderr, judgeSnippetBudget))
	}

	outputs := make([]string, len(draft.SampleInputs))
	for i := range draft.SampleInputs {
		captured, ok := extractProbeCapture(result.Stdout, i+1)
		if !ok {
			return executionFailure(slot.Index, 0, fmt.Sprintf("stdin rebuild: sample %d produced no capture", i+1),
				truncate(result.Stdout, judgeSnippetBudget), "")
		}
		outputs[i] = captured
	}

	draft.TestSuite = buildStdinSuite(target, draft.SampleInputs, outputs, slot.TestCaseCount)
	draft.SampleOutputs = outputs
	draft.record(RewriteRebuildStdinSuite, fmt.Sprintf("rebuilt stdin test suite from %d sample(s)", len(draft.SampleInputs)))
	return nil
}

const probeMarker = "##PRAXIS-SAMPLE-%d-%s##"

// buildStdinProbeSuite emits a JUnit class that feeds each sample to the
// reference's main and echoes the captured stdout between markers on the
// real stdout.
func buildStdinProbeSuite(target string, inputs []string) string {
	var b strings.Builder
	b.WriteString("import org.junit.jupiter.api.Test;\n\n")
	fmt.Fprintf(&b, "public class %sTest {\n", target)
	for i, input := range inputs {
		n := i + 1
		fmt.Fprintf(&b, "    @Test\n    void sample%d() throws Exception {\n", n)
		writeStdinHarness(&b, target, input)
		fmt.Fprintf(&b, "        System.out.println(\"%s\");\n", fmt.Sprintf(probeMarker, n, "BEGIN"))
		b.WriteString("        System.out.print(captured.toString(\"UTF-8\"));\n")
		fmt.Fprintf(&b, "        System.out.println(\"%s\");\n", fmt.Sprintf(probeMarker, n, "END"))
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// buildStdinSuite emits the final deterministic suite: test_case_N methods
// cycling over the samples until the slot's test budget is filled.
func buildStdinSuite(target string, inputs, outputs []string, count int) string {
	var b strings.Builder
	b.WriteString("import org.junit.jupiter.api.Test;\nimport static org.junit.jupiter.api.Assertions.assertEquals;\n\n")
	fmt.Fprintf(&b, "public class %sTest {\n", target)
	for n := 1; n <= count; n++ {
		idx := (n - 1) % len(inputs)
		fmt.Fprintf(&b, "    @Test\n    void test_case_%d() throws Exception {\n", n)
		writeStdinHarness(&b, target, inputs[idx])
		fmt.Fprintf(&b, "        assertEquals(\"%s\", captured.toString(\"UTF-8\"));\n", javaEscape(outputs[idx]))
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// writeStdinHarness emits the setIn/setOut scaffolding shared by the probe
// and the final suite. Leaves `captured` holding the program's stdout.
func writeStdinHarness(b *strings.Builder, target, input string) {
	b.WriteString("        java.io.InputStream originalIn = System.in;\n")
	b.WriteString("        java.io.PrintStream originalOut = System.out;\n")
	b.WriteString("        java.io.ByteArrayOutputStream captured = new java.io.ByteArrayOutputStream();\n")
	b.WriteString("        try {\n")
	fmt.Fprintf(b, "            System.setIn(new java.io.ByteArrayInputStream(\"%s\".getBytes(java.nio.charset.StandardCharsets.UTF_8)));\n", javaEscape(input))
	b.WriteString("            System.setOut(new java.io.PrintStream(captured, true, \"UTF-8\"));\n")
	fmt.Fprintf(b, "            %s.main(new String[0]);\n", target)
	b.WriteString("        } finally {\n")
	b.WriteString("            System.setIn(originalIn);\n")
	b.WriteString("            System.setOut(originalOut);\n")
	b.WriteString("        }\n")
}

// extractProbeCapture pulls the text between sample n's BEGIN and END
// markers.
func extractProbeCapture(stdout string, n int) (string, bool) {
	begin := fmt.Sprintf(probeMarker, n, "BEGIN")
	end := fmt.Sprintf(probeMarker, n, "END")
	start := strings.Index(stdout, begin)
	if start < 0 {
		return "", false
	}
	start += len(begin)
	if start < len(stdout) && stdout[start] == '\n' {
		start++
	}
	stop := strings.Index(stdout[start:], end)
	if stop < 0 {
		return "", false
	}
	return stdout[start : start+stop], true
}

func javaEscape(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", "\\n",
		"\r", "\\r",
		"\t", "\\t",
	)
	return replacer.Replace(s)
}

// judgeRequestFor pairs a draft's reference material with an arbitrary test
// suite.
func judgeRequestFor(draft *GeneratedProblemDraft, testSuite string) judge.Request {
	if len(draft.ReferenceWorkspace) > 0 {
		return judge.Request{
			Kind:      judge.KindFiles,
			Language:  string(draft.Language),
			Files:     draft.ReferenceWorkspace,
			TestSuite: testSuite,
		}
	}
	return judge.Request{
		Kind:      judge.KindCode,
		Language:  string(draft.Language),
		Code:      draft.ReferenceSolution,
		TestSuite: testSuite,
	}
}
