package scan

import (
	"regexp"
	"strings"
)

// CPPSolveSignature is the return type and parameter list of a top-level
// solve definition, used to synthesise starter scaffolds and trivial
// baselines without leaking the reference body.
type CPPSolveSignature struct {
	ReturnType string
	Params     string
}

var cppSolveDefRe = regexp.MustCompile(`([A-Za-z_][\w:<>,\s*&]*?)\bsolve\s*\(([^)]*)\)\s*\{`)

// CPPHasSolve reports whether the source references a solve function at all.
func CPPHasSolve(source string) bool {
	masked := string(maskCLike(source))
	return strings.Contains(masked, "solve(") || regexp.MustCompile(`\bsolve\s*\(`).MatchString(masked)
}

// CPPWritesStdout reports whether the source writes to standard output or
// standard error.
func CPPWritesStdout(source string) bool {
	masked := maskCLike(source)
	return containsWord(masked, "cout") || containsWord(masked, "cerr") || containsWord(masked, "printf")
}

// CPPReadsStdin reports whether the source reads from standard input.
func CPPReadsStdin(source string) bool {
	masked := maskCLike(source)
	return containsWord(masked, "cin") || containsWord(masked, "scanf") || containsWord(masked, "getline")
}

// CPPSolveSignatureOf extracts the first top-level solve definition's
// signature. The body is never inspected. Returns false when no definition
// exists at brace depth zero.
func CPPSolveSignatureOf(source string) (CPPSolveSignature, bool) {
	masked := maskCLike(source)

	depth := 0
	for i := 0; i < len(masked); i++ {
		switch masked[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
		if depth != 0 {
			continue
		}
		if !wordAt(masked, i, "solve") {
			continue
		}
		// Re-anchor the regex on the line region around the match so the
		// return type preceding solve is captured.
		lineStart := i
		for lineStart > 0 && masked[lineStart-1] != '\n' && masked[lineStart-1] != ';' && masked[lineStart-1] != '}' {
			lineStart--
		}
		m := cppSolveDefRe.FindStringSubmatch(string(masked[lineStart:min(len(masked), i+512)]))
		if m == nil {
			continue
		}
		ret := strings.TrimSpace(m[1])
		if ret == "" {
			continue
		}
		return CPPSolveSignature{ReturnType: ret, Params: strings.TrimSpace(m[2])}, true
	}
	return CPPSolveSignature{}, false
}

var cppRunTestRe = regexp.MustCompile(`RUN_TEST\s*\(\s*"([^"]+)"`)

// CPPRunTestNames lists the names passed to the RUN_TEST macro. The macro
// argument is a string literal, so this query runs over the raw source.
func CPPRunTestNames(source string) []string {
	var names []string
	for _, m := range cppRunTestRe.FindAllStringSubmatch(source, -1) {
		names = append(names, m[1])
	}
	return names
}

// CPPIncludesSolution reports whether the test file includes "solution.cpp".
func CPPIncludesSolution(source string) bool {
	return regexp.MustCompile(`#include\s*"solution\.cpp"`).MatchString(source)
}

// CPPDefinesMain reports whether the source defines a main function.
func CPPDefinesMain(source string) bool {
	masked := string(maskCLike(source))
	return regexp.MustCompile(`\bint\s+main\s*\(`).MatchString(masked)
}

// CPPCapturesStdout reports whether the source redirects the std::cout
// buffer, the shape stdout-style tests must have.
func CPPCapturesStdout(source string) bool {
	masked := string(maskCLike(source))
	return strings.Contains(masked, "rdbuf")
}
