package generation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/praxis-go-api/internal/obligation"
	"github.com/noah-isme/praxis-go-api/internal/scan"
	"github.com/noah-isme/praxis-go-api/pkg/judge"
)

const stdinReference = `import java.util.Scanner;

public class Echo {
    public static void main(String[] args) {
        Scanner sc = new Scanner(System.in);
        System.out.println(sc.nextLine().toUpperCase());
    }
}`

func stdinDraft() *GeneratedProblemDraft {
	return &GeneratedProblemDraft{
		ID:                "p1",
		Language:          LanguageJava,
		Title:             "Echo upper",
		Description:       "Uppercase each line.",
		StarterCode:       "public class Echo {\n    // TODO\n}",
		ReferenceSolution: stdinReference,
		SampleInputs:      []string{"hi", "there"},
		SampleOutputs:     []string{"HI", "THERE"},
	}
}

func stdinSlot() ProblemSlot {
	return ProblemSlot{Index: 0, Language: LanguageJava, Difficulty: DifficultyEasy, Topics: []string{"strings"}, ProblemStyle: StyleStdout, TestCaseCount: 8}
}

type probeJudge struct {
	stderr string
	fail   bool
	seen   judge.Request
}

func (p *probeJudge) Judge(ctx context.Context, req judge.Request) (judge.Result, error) {
	p.seen = req
	if p.fail {
		return judge.Result{Success: false, FailedTests: []string{"sample1"}}, nil
	}

	// Emulate the probe suite: one marker block per sample.
	var out strings.Builder
	for i := 1; i <= 2; i++ {
		fmt.Fprintf(&out, "##PRAXIS-SAMPLE-%d-BEGIN##\n", i)
		if i == 1 {
			out.WriteString("HI\n")
		} else {
			out.WriteString("THERE\n")
		}
		fmt.Fprintf(&out, "##PRAXIS-SAMPLE-%d-END##\n", i)
	}
	return judge.Result{Success: true, Stdout: out.String(), Stderr: p.stderr}, nil
}

func TestRebuildJavaStdinSuiteEmitsDeterministicTests(t *testing.T) {
	draft := stdinDraft()
	adapter := &probeJudge{}

	require.NoError(t, rebuildJavaStdinSuite(context.Background(), adapter, draft, stdinSlot()))

	// The probe fed the reference, not the starter.
	require.Equal(t, judge.KindCode, adapter.seen.Kind)
	require.Equal(t, stdinReference, adapter.seen.Code)

	suite := draft.TestSuite
	require.Equal(t, []string{"EchoTest"}, scan.PublicJavaTypeNames(suite))
	require.True(t, scan.JavaSetsStdin(suite))
	require.True(t, scan.JavaCapturesStdout(suite))
	require.Equal(t, 8, strings.Count(suite, "@Test"))
	require.Contains(t, suite, `assertEquals("HI\n", captured.toString("UTF-8"));`)
	require.Contains(t, suite, `assertEquals("THERE\n", captured.toString("UTF-8"));`)

	require.Nil(t, obligation.ValidateSuite(obligationInput(draft, stdinSlot())))
	require.Equal(t, []string{"HI\n", "THERE\n"}, draft.SampleOutputs)

	var ids []string
	for _, r := range draft.Rewrites {
		ids = append(ids, r.ID)
	}
	require.Contains(t, ids, RewriteRebuildStdinSuite)
}

func TestRebuildJavaStdinSuiteFailsOnStderr(t *testing.T) {
	draft := stdinDraft()
	adapter := &probeJudge{stderr: "warning: deprecated API"}

	err := rebuildJavaStdinSuite(context.Background(), adapter, draft, stdinSlot())
	require.Error(t, err)

	failure, ok := err.(*SlotFailure)
	require.True(t, ok)
	require.Equal(t, FailureExecution, failure.Kind)
}

func TestRebuildJavaStdinSuiteFailsWithoutSamples(t *testing.T) {
	draft := stdinDraft()
	draft.Rewrites = append(draft.Rewrites, RewriteRecord{ID: RewriteNormalizeSamples, Applied: true})

	err := rebuildJavaStdinSuite(context.Background(), &probeJudge{}, draft, stdinSlot())
	require.Error(t, err)

	failure, ok := err.(*SlotFailure)
	require.True(t, ok)
	require.Equal(t, FailureContract, failure.Kind)
}
