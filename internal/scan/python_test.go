package scan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPythonStdinStdoutDetection(t *testing.T) {
	src := `import sys

def solve():
    line = input()
    print(line.upper())
`
	require.True(t, PythonReadsStdin(src))
	require.True(t, PythonWritesStdout(src))
	require.True(t, PythonDefinesSolve(src))
}

func TestPythonLiteralsDoNotTriggerDetection(t *testing.T) {
	src := `def solve(text):
    # print(text) would echo
    doc = "call input() to read"
    msg = '''
    sys.stdin is not touched here
    '''
    return doc + msg
`
	require.False(t, PythonReadsStdin(src))
	require.False(t, PythonWritesStdout(src))
	require.False(t, PythonUsesEval(src))
}

func TestPythonDisallowedImports(t *testing.T) {
	src := `import os
import os.path
from subprocess import run
import math
from collections import deque
`
	hits := PythonDisallowedImports(src)
	require.ElementsMatch(t, []string{"os", "subprocess"}, hits)

	require.Empty(t, PythonDisallowedImports(`text = "import os"`))
}

func TestPythonUsesEval(t *testing.T) {
	require.True(t, PythonUsesEval(`def solve(s): return eval(s)`))
	require.False(t, PythonUsesEval(`def solve(s): return s.evaluate()`))
}

func TestPythonTestCaseNames(t *testing.T) {
	suite := `import pytest
from solution import solve

def test_case_1():
    assert solve("a") == "A"

def test_case_2(capsys):
    solve("b")
    captured = capsys.readouterr()
    assert captured.out == "B\n"
`
	require.Equal(t, []string{"test_case_1", "test_case_2"}, PythonTestCaseNames(suite))
	require.True(t, PythonUsesCapsys(suite))
	require.True(t, PythonAssertsOnSolve(suite))
}
