package obligation

import (
	"fmt"
	"strings"

	"github.com/noah-isme/praxis-go-api/internal/scan"
)

func checkPython(in Input) ([]Result, *Violation) {
	var results []Result
	var v *Violation

	reference := in.referenceSource()

	ok := scan.PythonDefinesSolve(reference)
	if results, v = run(results, PythonSolveDefined, ok,
		failMsg(ok, "reference defines no top-level solve function")); v != nil {
		return results, v
	}

	for _, unit := range []struct {
		name   string
		source string
	}{
		{"reference_solution", reference},
		{"starter_code", in.StarterCode},
		{"test_suite", in.TestSuite},
	} {
		if banned := scan.PythonDisallowedImports(unit.source); len(banned) > 0 {
			return run(results, PythonNoDisallowed, false,
				fmt.Sprintf("%s imports disallowed module(s): %s", unit.name, strings.Join(banned, ", ")))
		}
	}
	if results, v = run(results, PythonNoDisallowed, true, ""); v != nil {
		return results, v
	}

	ok = !scan.PythonUsesEval(reference) && !scan.PythonUsesEval(in.TestSuite)
	if results, v = run(results, PythonNoEval, ok,
		failMsg(ok, "eval/exec are not allowed in generated problems")); v != nil {
		return results, v
	}

	if in.wantsStdout() {
		ok = scan.PythonWritesStdout(reference)
		if results, v = run(results, PythonStdoutPrints, ok,
			failMsg(ok, "stdout-style reference never prints")); v != nil {
			return results, v
		}
	}

	return results, nil
}
