package scan

import (
	"regexp"
	"strings"
)

// Modules a generated Python problem may never import.
var pythonDisallowedModules = []string{
	"os", "pathlib", "shutil", "subprocess", "socket",
	"requests", "urllib", "http", "ftplib", "asyncio", "multiprocessing",
}

var (
	pythonImportRe = regexp.MustCompile(`(?m)^\s*(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import\b)`)
	pythonSolveRe  = regexp.MustCompile(`(?m)^\s*def\s+solve\s*\(`)
	pythonTestRe   = regexp.MustCompile(`(?m)^\s*def\s+(test_case_\d+)\s*\(`)
)

// PythonReadsStdin reports whether the source consumes standard input.
func PythonReadsStdin(source string) bool {
	masked := string(maskPython(source))
	for _, marker := range []string{"input(", "sys.stdin", "open(0,", "open(0)"} {
		if strings.Contains(masked, marker) {
			return true
		}
	}
	return false
}

// PythonWritesStdout reports whether the source writes to standard output.
func PythonWritesStdout(source string) bool {
	masked := string(maskPython(source))
	return strings.Contains(masked, "print(") || strings.Contains(masked, "sys.stdout")
}

// PythonUsesEval reports whether the source calls eval or exec.
func PythonUsesEval(source string) bool {
	masked := maskPython(source)
	return containsWord(masked, "eval") || containsWord(masked, "exec")
}

// PythonDisallowedImports lists the forbidden modules the source imports.
func PythonDisallowedImports(source string) []string {
	masked := string(maskPython(source))
	var hits []string
	seen := make(map[string]struct{})
	for _, m := range pythonImportRe.FindAllStringSubmatch(masked, -1) {
		module := m[1]
		if module == "" {
			module = m[2]
		}
		root := strings.SplitN(module, ".", 2)[0]
		for _, banned := range pythonDisallowedModules {
			if root == banned {
				if _, ok := seen[root]; !ok {
					seen[root] = struct{}{}
					hits = append(hits, root)
				}
			}
		}
	}
	return hits
}

// PythonDefinesSolve reports whether the source defines a top-level solve
// function.
func PythonDefinesSolve(source string) bool {
	return pythonSolveRe.Match(maskPython(source))
}

// PythonTestCaseNames lists the test_case_N functions defined in the source,
// in declaration order.
func PythonTestCaseNames(source string) []string {
	var names []string
	for _, m := range pythonTestRe.FindAllStringSubmatch(string(maskPython(source)), -1) {
		names = append(names, m[1])
	}
	return names
}

// PythonUsesCapsys reports whether any test function takes the pytest capsys
// fixture.
func PythonUsesCapsys(source string) bool {
	masked := string(maskPython(source))
	return strings.Contains(masked, "capsys")
}

// PythonAssertsOnSolve reports whether the source asserts directly on a
// solve(...) result, the return-style test shape.
func PythonAssertsOnSolve(source string) bool {
	masked := string(maskPython(source))
	return regexp.MustCompile(`\bassert\s+solve\s*\(`).MatchString(masked)
}
