// Package rewrite implements mechanical, deterministic source edits applied
// to generated drafts before validation. Every rewrite is a pure function of
// the source text, returns whether it changed anything, and is idempotent.
package rewrite

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/noah-isme/praxis-go-api/internal/scan"
)

// Result is the outcome of one rewrite.
type Result struct {
	Source  string
	Changed bool
	Detail  string
}

// DemoteExtraPublicTypes removes the public modifier from every top-level
// public type except one survivor. The survivor is keepName when that type
// exists, otherwise the first non-interface type, otherwise the first
// declared. Sources with at most one public type are left untouched.
func DemoteExtraPublicTypes(source, keepName string) Result {
	types := scan.TopLevelJavaTypes(source)

	var publics []scan.JavaType
	for _, t := range types {
		if t.Public {
			publics = append(publics, t)
		}
	}
	if len(publics) <= 1 {
		return Result{Source: source}
	}

	keep := pickSurvivor(publics, keepName)

	// Processing from highest start offset to lowest keeps earlier indices
	// stable while tokens are removed.
	doomed := make([]scan.JavaType, 0, len(publics)-1)
	for _, t := range publics {
		if t.Name != keep.Name {
			doomed = append(doomed, t)
		}
	}
	sort.Slice(doomed, func(i, j int) bool { return doomed[i].PublicIdx > doomed[j].PublicIdx })

	out := source
	var demoted []string
	for _, t := range doomed {
		out = removeToken(out, t.PublicIdx, "public")
		demoted = append(demoted, t.Name)
	}
	sort.Strings(demoted)

	return Result{
		Source:  out,
		Changed: true,
		Detail:  fmt.Sprintf("kept %s public, demoted %s", keep.Name, strings.Join(demoted, ", ")),
	}
}

// PromotePublicType inserts a public modifier on one top-level type when the
// unit declares none. The promoted type is keepName when present, otherwise
// the first non-interface type, otherwise the first declared.
func PromotePublicType(source, keepName string) Result {
	types := scan.TopLevelJavaTypes(source)
	if len(types) == 0 {
		return Result{Source: source}
	}
	for _, t := range types {
		if t.Public {
			return Result{Source: source}
		}
	}

	chosen := pickSurvivor(types, keepName)
	out := source[:chosen.KeywordIdx] + "public " + source[chosen.KeywordIdx:]
	return Result{
		Source:  out,
		Changed: true,
		Detail:  fmt.Sprintf("promoted %s to public", chosen.Name),
	}
}

// RenamePublicClass renames the first top-level public class to newName,
// including any explicit constructors. Applying the rewrite to an already
// conformant source is a no-op.
func RenamePublicClass(source, newName string) Result {
	var target *scan.JavaType
	for _, t := range scan.TopLevelJavaTypes(source) {
		if t.Public && t.Kind == "class" {
			copied := t
			target = &copied
			break
		}
	}
	if target == nil || target.Name == newName {
		return Result{Source: source}
	}

	oldName := target.Name
	declRe := regexp.MustCompile(`\bpublic\s+((?:final\s+|abstract\s+)*)class\s+` + regexp.QuoteMeta(oldName) + `\b`)
	out := declRe.ReplaceAllString(source, "public ${1}class "+newName)

	ctorRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(oldName) + `\s*\(`)
	out = ctorRe.ReplaceAllString(out, newName+"(")

	return Result{
		Source:  out,
		Changed: out != source,
		Detail:  fmt.Sprintf("renamed %s to %s", oldName, newName),
	}
}

func pickSurvivor(candidates []scan.JavaType, keepName string) scan.JavaType {
	if keepName != "" {
		for _, t := range candidates {
			if t.Name == keepName {
				return t
			}
		}
	}
	for _, t := range candidates {
		if t.Kind != "interface" {
			return t
		}
	}
	return candidates[0]
}

// removeToken deletes the token at idx plus the run of whitespace that
// followed it, so `public class X` collapses to `class X`.
func removeToken(source string, idx int, token string) string {
	if idx < 0 || idx+len(token) > len(source) || source[idx:idx+len(token)] != token {
		return source
	}
	end := idx + len(token)
	for end < len(source) && (source[end] == ' ' || source[end] == '\t') {
		end++
	}
	return source[:idx] + source[end:]
}
