package scan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const cppReference = `#include <vector>
#include <iostream>

// Sums the window maxima.
long long solve(const std::vector<int>& values, int window) {
    long long total = 0;
    for (size_t i = 0; i + window <= values.size(); ++i) {
        int best = values[i];
        for (int j = 1; j < window; ++j) best = std::max(best, values[i + j]);
        total += best;
    }
    std::cout << total << "\n";
    return total;
}`

func TestCPPSolveSignatureExtraction(t *testing.T) {
	sig, ok := CPPSolveSignatureOf(cppReference)
	require.True(t, ok)
	require.Equal(t, "long long", sig.ReturnType)
	require.Equal(t, "const std::vector<int>& values, int window", sig.Params)
}

func TestCPPSolveSignatureIgnoresCallsAndComments(t *testing.T) {
	src := `#include <iostream>
// long long solve(int a) would be the old shape
int main() {
    std::cout << solve(1, 2);
    return 0;
}`
	_, ok := CPPSolveSignatureOf(src)
	require.False(t, ok)
	require.True(t, CPPHasSolve(src))
	require.True(t, CPPDefinesMain(src))
}

func TestCPPStreamDetection(t *testing.T) {
	require.True(t, CPPWritesStdout(cppReference))
	require.False(t, CPPReadsStdin(cppReference))
	require.True(t, CPPReadsStdin(`#include <iostream>
int main() { int x; std::cin >> x; return 0; }`))
	require.False(t, CPPWritesStdout(`int solve(int a) { return a; } // cout only here`))
}

func TestCPPRunTestNames(t *testing.T) {
	suite := `#include "solution.cpp"
#define RUN_TEST(name, ...) run_case(name, __VA_ARGS__)
int main() {
    RUN_TEST("test_case_1", solve(1) == 1);
    RUN_TEST("test_case_2", solve(2) == 4);
    return failures;
}`
	require.Equal(t, []string{"test_case_1", "test_case_2"}, CPPRunTestNames(suite))
	require.True(t, CPPIncludesSolution(suite))
	require.True(t, CPPDefinesMain(suite))
}
