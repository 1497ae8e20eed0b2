package obligation

import (
	"github.com/noah-isme/praxis-go-api/internal/scan"
)

func checkCPP(in Input) ([]Result, *Violation) {
	var results []Result
	var v *Violation

	reference := in.referenceSource()

	_, ok := scan.CPPSolveSignatureOf(reference)
	if results, v = run(results, CPPSolveDefined, ok,
		failMsg(ok, "reference defines no solve function")); v != nil {
		return results, v
	}

	if in.wantsStdout() {
		ok = scan.CPPWritesStdout(reference)
		if results, v = run(results, CPPStdoutPrints, ok,
			failMsg(ok, "stdout-style reference never writes to std::cout")); v != nil {
			return results, v
		}
	}

	return results, nil
}

func checkSQL(in Input) ([]Result, *Violation) {
	// The SQL suite is a JSON document; its shape obligations live in the
	// suite validator, which runs before obligation checks. Nothing further
	// to verify structurally here.
	return []Result{{ID: SQLSuiteShape, OK: true}}, nil
}
