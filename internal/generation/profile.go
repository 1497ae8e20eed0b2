package generation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/praxis-go-api/internal/scan"
)

// languageProfile is the capability record for one supported language.
// Adding a language means adding a row here plus its scanner and obligation
// coverage. The slot generator and the normalizer still branch on Java and
// C++ directly (Java rewrites, C++ starter detection).
type languageProfile struct {
	language Language

	// synthesizeStarter builds a minimal scaffold when the model omitted or
	// emptied starter_code. The scaffold must not leak the reference body.
	synthesizeStarter func(d *GeneratedProblemDraft) (string, bool)

	// trivialBaseline builds the degenerate candidate the test suite must
	// reject, beyond the starter scaffold itself. ok=false means the
	// language only uses the starter baseline.
	trivialBaseline func(d *GeneratedProblemDraft, style ProblemStyle) (string, bool)
}

var profiles = map[Language]languageProfile{
	LanguageJava: {
		language:          LanguageJava,
		synthesizeStarter: synthesizeJavaStarter,
		// The Java starter is already a minimal stub; no synthesized trivial.
		trivialBaseline: func(*GeneratedProblemDraft, ProblemStyle) (string, bool) { return "", false },
	},
	LanguagePython: {
		language: LanguagePython,
		synthesizeStarter: func(d *GeneratedProblemDraft) (string, bool) {
			return "def solve(*args, **kwargs):\n    # TODO: implement\n    raise NotImplementedError\n", true
		},
		trivialBaseline: func(_ *GeneratedProblemDraft, style ProblemStyle) (string, bool) {
			if style.WantsStdout() {
				return "def solve(*args, **kwargs):\n    print(0)\n    return 0\n", true
			}
			return "def solve(*args, **kwargs):\n    return 0\n", true
		},
	},
	LanguageCPP: {
		language:          LanguageCPP,
		synthesizeStarter: synthesizeCPPStarter,
		trivialBaseline:   synthesizeCPPTrivial,
	},
	LanguageSQL: {
		language: LanguageSQL,
		synthesizeStarter: func(d *GeneratedProblemDraft) (string, bool) {
			return "-- Write your query here\n", true
		},
		trivialBaseline: func(*GeneratedProblemDraft, ProblemStyle) (string, bool) {
			return "SELECT 1;", true
		},
	},
}

// synthesizeJavaStarter builds a class skeleton named after the reference's
// primary public type.
func synthesizeJavaStarter(d *GeneratedProblemDraft) (string, bool) {
	name := javaPrimaryTypeName(d)
	if name == "" {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "public class %s {\n", name)
	b.WriteString("    // TODO: implement\n")
	b.WriteString("}\n")
	return b.String(), true
}

// javaPrimaryTypeName resolves the draft's target type from the starter or,
// failing that, the reference.
func javaPrimaryTypeName(d *GeneratedProblemDraft) string {
	for _, source := range []string{d.StarterCode, d.ReferenceSolution} {
		if names := scan.PublicJavaTypeNames(source); len(names) > 0 {
			return names[0]
		}
	}
	for _, path := range sortedPaths(d.ReferenceWorkspace) {
		if names := scan.PublicJavaTypeNames(d.ReferenceWorkspace[path]); len(names) > 0 {
			return names[0]
		}
	}
	return ""
}

// synthesizeCPPStarter derives a scaffold from the reference's solve
// signature. Only the signature leaks; the body throws.
func synthesizeCPPStarter(d *GeneratedProblemDraft) (string, bool) {
	sig, ok := scan.CPPSolveSignatureOf(d.ReferenceSolution)
	if !ok {
		return "", false
	}
	var b strings.Builder
	b.WriteString("#include <stdexcept>\n")
	b.WriteString(cppIncludesFor(sig))
	fmt.Fprintf(&b, "\n%s solve(%s) {\n", sig.ReturnType, sig.Params)
	b.WriteString("    // TODO: implement\n")
	b.WriteString("    throw std::logic_error(\"not implemented\");\n")
	b.WriteString("}\n")
	return b.String(), true
}

// synthesizeCPPTrivial builds the constant baseline with the reference's
// signature: default-constructed return, `0` on stdout when the style
// demands output.
func synthesizeCPPTrivial(d *GeneratedProblemDraft, style ProblemStyle) (string, bool) {
	sig, ok := scan.CPPSolveSignatureOf(d.ReferenceSolution)
	if !ok {
		return "", false
	}
	var b strings.Builder
	b.WriteString(cppIncludesFor(sig))
	if style.WantsStdout() {
		b.WriteString("#include <iostream>\n")
	}
	fmt.Fprintf(&b, "\n%s solve(%s) {\n", sig.ReturnType, sig.Params)
	if style.WantsStdout() {
		b.WriteString("    std::cout << 0 << \"\\n\";\n")
	}
	if sig.ReturnType != "void" {
		fmt.Fprintf(&b, "    return %s{};\n", sig.ReturnType)
	}
	b.WriteString("}\n")
	return b.String(), true
}

func cppIncludesFor(sig scan.CPPSolveSignature) string {
	var b strings.Builder
	combined := sig.ReturnType + " " + sig.Params
	if strings.Contains(combined, "std::vector") {
		b.WriteString("#include <vector>\n")
	}
	if strings.Contains(combined, "std::string") {
		b.WriteString("#include <string>\n")
	}
	if strings.Contains(combined, "std::map") {
		b.WriteString("#include <map>\n")
	}
	return b.String()
}

func sortedPaths(m map[string]string) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
