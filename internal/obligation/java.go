package obligation

import (
	"fmt"
	"strings"

	"github.com/noah-isme/praxis-go-api/internal/scan"
)

func checkJava(in Input) ([]Result, *Violation) {
	var results []Result
	var v *Violation

	units := map[string]string{"starter_code": in.StarterCode}
	if in.Reference != "" {
		units["reference_solution"] = in.Reference
	}
	for path, content := range in.ReferenceFiles {
		units["reference:"+path] = content
	}
	for path, content := range in.Workspace {
		units["workspace:"+path] = content
	}

	for _, name := range sortedKeys(units) {
		publics := scan.PublicJavaTypeNames(units[name])
		if len(publics) > 1 {
			return run(results, JavaSinglePublicType, false,
				fmt.Sprintf("%s declares %d top-level public types", name, len(publics)))
		}
	}
	if results, v = run(results, JavaSinglePublicType, true, ""); v != nil {
		return results, v
	}

	reference := in.referenceSource()
	refPublics := scan.PublicJavaTypeNames(reference)
	ok := len(refPublics) > 0 && refPublics[0] == in.TargetName
	if results, v = run(results, JavaPrimaryMatchesTarget, ok,
		failMsg(ok, fmt.Sprintf("reference primary type %v does not match target %q", refPublics, in.TargetName))); v != nil {
		return results, v
	}

	wantTest := in.TargetName + "Test"
	testPublics := scan.PublicJavaTypeNames(in.TestSuite)
	ok = len(testPublics) == 1 && testPublics[0] == wantTest
	if results, v = run(results, JavaTestClassMatches, ok,
		failMsg(ok, fmt.Sprintf("test class %v, want %s", testPublics, wantTest))); v != nil {
		return results, v
	}

	ok = !scan.JavaHasWhileFalse(reference)
	if results, v = run(results, JavaNoWhileFalse, ok,
		failMsg(ok, "reference contains while(false), which javac rejects as unreachable")); v != nil {
		return results, v
	}

	if in.wantsStdout() {
		ok = scan.JavaPrintsStdout(reference)
		if results, v = run(results, JavaStdoutSolutionPrints, ok,
			failMsg(ok, "stdout-style reference never writes through System.out.print*")); v != nil {
			return results, v
		}

		ok = scan.JavaCapturesStdout(in.TestSuite)
		if results, v = run(results, JavaStdoutTestsCapture, ok,
			failMsg(ok, "stdout-style tests never capture System.out")); v != nil {
			return results, v
		}
	}

	if scan.JavaReadsStdin(reference) {
		if in.StructuralTopic != "" {
			return run(results, JavaStdinStructuralTopics, false,
				fmt.Sprintf("stdin reads are incompatible with structural topic %q", in.StructuralTopic))
		}

		ok = scan.JavaSetsStdin(in.TestSuite)
		if results, v = run(results, JavaStdinTestsProvide, ok,
			failMsg(ok, "stdin-reading reference but tests never call System.setIn with a ByteArrayInputStream")); v != nil {
			return results, v
		}

		ok = scan.JavaHasMainMethod(reference)
		if results, v = run(results, JavaStdinRequiresMain, ok,
			failMsg(ok, "stdin-reading reference defines no public static void main")); v != nil {
			return results, v
		}
	}

	if in.StructuralTopic != "" {
		return checkJavaStructuralTopic(results, in, reference)
	}

	return results, nil
}

func checkJavaStructuralTopic(results []Result, in Input, reference string) ([]Result, *Violation) {
	id := StructuralTopicID(in.StructuralTopic)
	types := scan.TopLevelJavaTypes(reference)

	switch in.StructuralTopic {
	case "polymorphism":
		base, impls := javaBaseAndImpls(types)
		if base == "" || len(impls) < 2 {
			return run(results, id, false, "reference needs an interface or abstract base with at least two concrete implementations")
		}
		for _, name := range append([]string{base}, impls[0], impls[1]) {
			if !scan.JavaMentions(in.TestSuite, name) {
				return run(results, id, false, fmt.Sprintf("tests never mention %s", name))
			}
		}
		if !scan.JavaBaseTypedAssignment(in.TestSuite, base, impls) {
			return run(results, id, false, fmt.Sprintf("tests never assign a concrete instance to a %s-typed variable", base))
		}
		return run(results, id, true, "")

	case "inheritance":
		sub, parent := javaExtendsPair(types)
		if sub == "" {
			return run(results, id, false, "reference has no class extending another declared class")
		}
		if !scan.JavaTypeOverridesMethod(reference, sub) {
			return run(results, id, false, fmt.Sprintf("%s overrides no method of %s", sub, parent))
		}
		if !scan.JavaBaseTypedAssignment(in.TestSuite, parent, []string{sub}) {
			return run(results, id, false, fmt.Sprintf("tests never exercise %s through a %s-typed reference", sub, parent))
		}
		if scan.JavaDistinctMethodCalls(in.TestSuite, parent) < 1 {
			return run(results, id, false, "tests never call the overridden method through the base type")
		}
		return run(results, id, true, "")

	case "abstraction":
		base, impls := javaBaseAndImpls(types)
		if base == "" || len(impls) < 1 {
			return run(results, id, false, "reference needs a base type and at least one implementation")
		}
		if !scan.JavaMentions(in.TestSuite, base) || !scan.JavaMentions(in.TestSuite, impls[0]) {
			return run(results, id, false, fmt.Sprintf("tests must mention both %s and %s", base, impls[0]))
		}
		return run(results, id, true, "")

	case "encapsulation":
		primary := javaPrimaryNonMain(types)
		if primary == "" {
			return run(results, id, false, "reference declares no primary class")
		}
		fields := scan.JavaFieldsOf(reference, primary)
		private := 0
		for _, f := range fields {
			switch f.Visibility {
			case "private":
				private++
			case "public":
				return run(results, id, false, fmt.Sprintf("%s exposes public field %s", primary, f.Name))
			}
		}
		if private == 0 {
			return run(results, id, false, fmt.Sprintf("%s has no private field", primary))
		}
		if scan.JavaDistinctMethodCalls(in.TestSuite, primary) < 2 {
			return run(results, id, false, fmt.Sprintf("tests must call at least two distinct methods on a %s instance", primary))
		}
		return run(results, id, true, "")

	case "composition":
		primary := javaPrimaryNonMain(types)
		if primary == "" {
			return run(results, id, false, "reference declares no primary class")
		}
		declared := make(map[string]struct{}, len(types))
		for _, t := range types {
			declared[t.Name] = struct{}{}
		}
		component := ""
		for _, f := range scan.JavaFieldsOf(reference, primary) {
			if f.Visibility != "private" && f.Visibility != "protected" {
				continue
			}
			bare := strings.TrimSuffix(f.Type, "[]")
			if _, ok := declared[bare]; ok && bare != primary {
				component = bare
				break
			}
		}
		if component == "" {
			return run(results, id, false, fmt.Sprintf("%s holds no field of another declared type", primary))
		}
		if !scan.JavaMentions(in.TestSuite, primary) || !scan.JavaMentions(in.TestSuite, component) {
			return run(results, id, false, fmt.Sprintf("tests must mention both %s and %s", primary, component))
		}
		return run(results, id, true, "")
	}

	return run(results, id, false, fmt.Sprintf("unknown structural topic %q", in.StructuralTopic))
}

// javaBaseAndImpls finds an interface or abstract class plus the concrete
// types that implement or extend it.
func javaBaseAndImpls(types []scan.JavaType) (string, []string) {
	for _, candidate := range types {
		if candidate.Kind != "interface" && !candidate.Abstract {
			continue
		}
		var impls []string
		for _, t := range types {
			if t.Name == candidate.Name || t.Kind == "interface" || t.Abstract {
				continue
			}
			if t.Extends == candidate.Name {
				impls = append(impls, t.Name)
				continue
			}
			for _, iface := range t.Implements {
				if iface == candidate.Name {
					impls = append(impls, t.Name)
					break
				}
			}
		}
		if len(impls) > 0 {
			return candidate.Name, impls
		}
	}
	return "", nil
}

// javaExtendsPair finds a subclass extending another declared, non-Object
// class.
func javaExtendsPair(types []scan.JavaType) (sub, parent string) {
	declared := make(map[string]struct{}, len(types))
	for _, t := range types {
		declared[t.Name] = struct{}{}
	}
	for _, t := range types {
		if t.Extends == "" || t.Extends == "Object" {
			continue
		}
		if _, ok := declared[t.Extends]; ok {
			return t.Name, t.Extends
		}
	}
	return "", ""
}

// javaPrimaryNonMain picks the first declared class that is not Main.
func javaPrimaryNonMain(types []scan.JavaType) string {
	for _, t := range types {
		if t.Kind == "class" && t.Name != "Main" && !t.Abstract {
			return t.Name
		}
	}
	return ""
}

func failMsg(ok bool, message string) string {
	if ok {
		return ""
	}
	return message
}
