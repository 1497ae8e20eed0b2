package judge

import (
	"fmt"
	"regexp"
	"strings"
)

// languageLayout describes how a language's submissions are materialised in
// the judge workspace and executed. The images bundle their own test
// runners; every runner prints one `PASS: <name>` or `FAIL: <name>` line per
// test and exits non-zero when anything failed.
type languageLayout struct {
	Image   string
	Command []string
	// Place writes the candidate and test suite into the workspace file
	// set. Returned paths are relative to the workspace root.
	Place func(req Request) (map[string]string, error)
}

var javaPublicClassRe = regexp.MustCompile(`public\s+(?:final\s+|abstract\s+)?class\s+(\w+)`)

var layouts = map[string]languageLayout{
	"java": {
		Image:   "praxis/judge-java:21",
		Command: []string{"sh", "-c", "/opt/praxis/run-junit.sh"},
		Place: func(req Request) (map[string]string, error) {
			files := map[string]string{}
			if req.Kind == KindFiles {
				for path, content := range req.Files {
					files[path] = content
				}
			} else {
				name := "Solution"
				if m := javaPublicClassRe.FindStringSubmatch(req.Code); m != nil {
					name = m[1]
				}
				files[name+".java"] = req.Code
			}
			testName := "SolutionTest"
			if m := javaPublicClassRe.FindStringSubmatch(req.TestSuite); m != nil {
				testName = m[1]
			}
			files[testName+".java"] = req.TestSuite
			return files, nil
		},
	},
	"python": {
		Image:   "praxis/judge-python:3.12",
		Command: []string{"sh", "-c", "/opt/praxis/run-pytest.sh"},
		Place: func(req Request) (map[string]string, error) {
			if req.Kind != KindCode {
				return nil, fmt.Errorf("python judge accepts single-file submissions only")
			}
			return map[string]string{
				"solution.py":      req.Code,
				"test_solution.py": req.TestSuite,
			}, nil
		},
	},
	"cpp": {
		Image:   "praxis/judge-cpp:13",
		Command: []string{"sh", "-c", "g++ -std=c++17 -O1 -o tests tests.cpp && ./tests"},
		Place: func(req Request) (map[string]string, error) {
			if req.Kind != KindCode {
				return nil, fmt.Errorf("cpp judge accepts single-file submissions only")
			}
			return map[string]string{
				"solution.cpp": req.Code,
				"tests.cpp":    req.TestSuite,
			}, nil
		},
	},
	"sql": {
		Image:   "praxis/judge-sql:3",
		Command: []string{"sh", "-c", "/opt/praxis/run-sql.sh"},
		Place: func(req Request) (map[string]string, error) {
			if req.Kind != KindCode {
				return nil, fmt.Errorf("sql judge accepts single-query submissions only")
			}
			return map[string]string{
				"query.sql":  req.Code,
				"tests.json": req.TestSuite,
			}, nil
		},
	},
}

// parseTestLines extracts PASS/FAIL markers from runner output.
func parseTestLines(stdout string) (passed, failed []string) {
	for _, line := range strings.Split(stdout, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "PASS: "):
			passed = append(passed, strings.TrimPrefix(trimmed, "PASS: "))
		case strings.HasPrefix(trimmed, "FAIL: "):
			failed = append(failed, strings.TrimPrefix(trimmed, "FAIL: "))
		}
	}
	return passed, failed
}
