package scan

import (
	"regexp"
	"strings"
)

// JavaType describes one top-level type declaration in a compilation unit.
type JavaType struct {
	Name     string
	Kind     string // class, interface, enum, record
	Public   bool
	Abstract bool
	// PublicIdx is the byte offset of the `public` modifier, -1 when absent.
	PublicIdx int
	// KeywordIdx is the byte offset of the class/interface/enum/record keyword.
	KeywordIdx int
	Extends    string
	Implements []string
	// BodyStart and BodyEnd are the offsets of the type's braces. BodyEnd is
	// -1 for an unterminated body.
	BodyStart int
	BodyEnd   int
}

var javaTypeKeywords = []string{"class", "interface", "enum", "record"}

// javaModifiers are the tokens that may precede a type keyword in a
// declaration header.
var javaModifiers = map[string]struct{}{
	"public": {}, "protected": {}, "private": {}, "abstract": {},
	"final": {}, "static": {}, "sealed": {}, "strictfp": {},
}

// TopLevelJavaTypes enumerates top-level type declarations. Only brace depth
// zero counts; declarations inside strings or comments are never seen because
// queries run over the masked source.
func TopLevelJavaTypes(source string) []JavaType {
	masked := maskCLike(source)
	var types []JavaType
	depth := 0
	segStart := 0 // start of the current top-level declaration segment

	for i := 0; i < len(masked); i++ {
		switch masked[i] {
		case '{':
			depth++
			if depth == 1 {
				segStart = i + 1
			}
			continue
		case '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				segStart = i + 1
			}
			continue
		case ';':
			if depth == 0 {
				segStart = i + 1
			}
			continue
		}

		if depth != 0 {
			continue
		}

		for _, kw := range javaTypeKeywords {
			if !wordAt(masked, i, kw) {
				continue
			}
			name, nameEnd := identifierAfter(masked, i+len(kw))
			if name == "" {
				break
			}

			t := JavaType{
				Name:       name,
				Kind:       kw,
				PublicIdx:  -1,
				KeywordIdx: i,
				BodyStart:  -1,
				BodyEnd:    -1,
			}

			header := string(masked[segStart:i])
			for _, tok := range strings.Fields(header) {
				if _, ok := javaModifiers[tok]; !ok {
					continue
				}
				if tok == "public" {
					t.Public = true
					t.PublicIdx = segStart + strings.Index(string(masked[segStart:i]), "public")
				}
				if tok == "abstract" {
					t.Abstract = true
				}
			}

			open := indexFrom(masked, nameEnd, '{')
			if open >= 0 {
				t.BodyStart = open
				t.BodyEnd = matchBrace(masked, open)
				clause := string(masked[nameEnd:open])
				t.Extends = firstCaptured(javaExtendsRe, clause)
				if impl := firstCaptured(javaImplementsRe, clause); impl != "" {
					for _, part := range strings.Split(impl, ",") {
						trimmed := strings.TrimSpace(part)
						if idx := strings.IndexByte(trimmed, '<'); idx >= 0 {
							trimmed = trimmed[:idx]
						}
						if trimmed != "" {
							t.Implements = append(t.Implements, trimmed)
						}
					}
				}
				types = append(types, t)
				// Skip the body so nested types never register.
				if t.BodyEnd > 0 {
					i = t.BodyEnd - 1
					depth = 0
					segStart = t.BodyEnd + 1
				} else {
					i = len(masked)
				}
			} else {
				types = append(types, t)
				i = nameEnd
			}
			break
		}
	}

	return types
}

var (
	javaExtendsRe    = regexp.MustCompile(`\bextends\s+([A-Za-z_][\w]*)`)
	javaImplementsRe = regexp.MustCompile(`\bimplements\s+([^{]+)`)
	javaWhileFalseRe = regexp.MustCompile(`\bwhile\s*\(\s*false\s*\)`)
	javaMainRe       = regexp.MustCompile(`\bpublic\s+static\s+void\s+main\s*\(\s*String\s*(\[\s*\]\s*\w+|\w+\s*\[\s*\])\s*\)`)
	javaFieldRe      = regexp.MustCompile(`(?m)^\s*(public|protected|private)?\s*((?:static\s+|final\s+)*)([A-Za-z_][\w.<>\[\], ]*?)\s+([A-Za-z_]\w*)\s*(=|;)`)
	javaOverrideRe   = regexp.MustCompile(`@Override\b`)
)

// PublicJavaTypeNames lists the names of top-level public types.
func PublicJavaTypeNames(source string) []string {
	var names []string
	for _, t := range TopLevelJavaTypes(source) {
		if t.Public {
			names = append(names, t.Name)
		}
	}
	return names
}

// JavaReadsStdin reports whether the source consumes standard input.
func JavaReadsStdin(source string) bool {
	masked := string(maskCLike(source))
	return strings.Contains(masked, "System.in")
}

// JavaPrintsStdout reports whether the source writes through the
// System.out print family.
func JavaPrintsStdout(source string) bool {
	masked := string(maskCLike(source))
	return strings.Contains(masked, "System.out.print")
}

// JavaHasWhileFalse reports whether the source contains a while(false)
// loop, which javac rejects as unreachable code.
func JavaHasWhileFalse(source string) bool {
	return javaWhileFalseRe.Match(maskCLike(source))
}

// JavaHasMainMethod reports whether the source defines a standard
// public static void main entry point.
func JavaHasMainMethod(source string) bool {
	return javaMainRe.Match(maskCLike(source))
}

// JavaField is a field declared directly inside a type body.
type JavaField struct {
	Name       string
	Type       string
	Visibility string // public, protected, private, or "" for package-private
}

// JavaFieldsOf extracts the fields declared at depth one inside the named
// top-level type. Method-local declarations are excluded by depth tracking.
func JavaFieldsOf(source, typeName string) []JavaField {
	masked := maskCLike(source)
	var target *JavaType
	for _, t := range TopLevelJavaTypes(source) {
		if t.Name == typeName {
			copied := t
			target = &copied
			break
		}
	}
	if target == nil || target.BodyStart < 0 || target.BodyEnd < 0 {
		return nil
	}

	// Blank nested brace blocks (method bodies, initialiser blocks) so only
	// the type's direct member declarations remain, then walk those
	// statement by statement.
	body := append([]byte(nil), masked[target.BodyStart+1:target.BodyEnd]...)
	depth := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
			body[i] = ' '
		case '}':
			depth--
			body[i] = ' '
		default:
			if depth > 0 && body[i] != '\n' {
				body[i] = ' '
			}
		}
	}

	var fields []JavaField
	for _, stmt := range strings.Split(string(body), ";") {
		eq := strings.IndexByte(stmt, '=')
		paren := strings.IndexByte(stmt, '(')
		if paren >= 0 && (eq < 0 || paren < eq) {
			// Method or constructor declaration.
			continue
		}
		decl := stmt
		if eq >= 0 {
			decl = stmt[:eq+1]
		} else {
			decl += ";"
		}
		if m := javaFieldRe.FindStringSubmatch(decl); m != nil {
			fields = append(fields, JavaField{
				Visibility: m[1],
				Type:       strings.TrimSpace(m[3]),
				Name:       m[4],
			})
		}
	}
	return fields
}

// JavaTypeOverridesMethod reports whether the named type body carries an
// @Override annotation.
func JavaTypeOverridesMethod(source, typeName string) bool {
	for _, t := range TopLevelJavaTypes(source) {
		if t.Name != typeName || t.BodyStart < 0 || t.BodyEnd < 0 {
			continue
		}
		body := maskCLike(source)[t.BodyStart:t.BodyEnd]
		return javaOverrideRe.Match(body)
	}
	return false
}

// JavaBaseTypedAssignment reports whether the source declares a variable of
// the base type assigned from a constructor of one of the given concrete
// types, i.e. the shape that exercises dynamic dispatch.
func JavaBaseTypedAssignment(source, base string, concretes []string) bool {
	masked := string(maskCLike(source))
	for _, impl := range concretes {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(base) + `\s*(<[^>]*>)?\s+\w+\s*=\s*new\s+` + regexp.QuoteMeta(impl) + `\s*[(<]`)
		if re.MatchString(masked) {
			return true
		}
	}
	return false
}

// JavaDistinctMethodCalls counts distinct methods invoked on any variable
// declared with the given type in the source.
func JavaDistinctMethodCalls(source, typeName string) int {
	masked := string(maskCLike(source))
	declRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(typeName) + `\s+(\w+)\s*=`)
	methods := make(map[string]struct{})
	for _, m := range declRe.FindAllStringSubmatch(masked, -1) {
		varName := m[1]
		callRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(varName) + `\.(\w+)\s*\(`)
		for _, call := range callRe.FindAllStringSubmatch(masked, -1) {
			methods[call[1]] = struct{}{}
		}
	}
	return len(methods)
}

// JavaMentions reports whether the identifier occurs in code (comments and
// literals excluded).
func JavaMentions(source, identifier string) bool {
	return containsWord(maskCLike(source), identifier)
}

// JavaSetsStdin reports whether the source redirects System.in, the shape a
// stdin-style test suite must have.
func JavaSetsStdin(source string) bool {
	masked := string(maskCLike(source))
	return strings.Contains(masked, "System.setIn") && strings.Contains(masked, "ByteArrayInputStream")
}

// JavaCapturesStdout reports whether the source captures System.out for
// assertions.
func JavaCapturesStdout(source string) bool {
	masked := string(maskCLike(source))
	return strings.Contains(masked, "System.setOut")
}

func firstCaptured(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func indexFrom(masked []byte, from int, target byte) int {
	for i := from; i < len(masked); i++ {
		if masked[i] == target {
			return i
		}
		// A semicolon before the body brace means a body-less declaration.
		if target == '{' && masked[i] == ';' {
			return -1
		}
	}
	return -1
}

// matchBrace returns the offset of the brace matching the one at open, or -1.
func matchBrace(masked []byte, open int) int {
	depth := 0
	for i := open; i < len(masked); i++ {
		switch masked[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
