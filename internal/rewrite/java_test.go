package rewrite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/praxis-go-api/internal/scan"
)

const twoPublicTypes = `public class Billing {
    public int total(int units) { return units; }
}

public class Main {
    public static void main(String[] args) {}
}`

func TestDemoteExtraPublicTypesKeepsNamedType(t *testing.T) {
	result := DemoteExtraPublicTypes(twoPublicTypes, "Billing")
	require.True(t, result.Changed)

	publics := scan.PublicJavaTypeNames(result.Source)
	require.Equal(t, []string{"Billing"}, publics)
	require.Contains(t, result.Source, "class Main")
	require.NotContains(t, result.Source, "public class Main")
}

func TestDemoteExtraPublicTypesPrefersNonInterface(t *testing.T) {
	src := `public interface Plan { int cost(); }

public class FlatPlan implements Plan {
    public int cost() { return 1; }
}`
	result := DemoteExtraPublicTypes(src, "")
	require.True(t, result.Changed)
	require.Equal(t, []string{"FlatPlan"}, scan.PublicJavaTypeNames(result.Source))
}

func TestDemoteExtraPublicTypesNoOpOnConformantSource(t *testing.T) {
	src := `public class Only {}`
	result := DemoteExtraPublicTypes(src, "")
	require.False(t, result.Changed)
	require.Equal(t, src, result.Source)

	again := DemoteExtraPublicTypes(DemoteExtraPublicTypes(twoPublicTypes, "Billing").Source, "Billing")
	require.False(t, again.Changed)
}

func TestPromotePublicType(t *testing.T) {
	src := `class Billing {
    int total(int units) { return units; }
}`
	result := PromotePublicType(src, "Billing")
	require.True(t, result.Changed)
	require.Equal(t, []string{"Billing"}, scan.PublicJavaTypeNames(result.Source))

	// Idempotent once a public type exists.
	again := PromotePublicType(result.Source, "Billing")
	require.False(t, again.Changed)
}

func TestRenamePublicClassRenamesConstructors(t *testing.T) {
	src := `public class BillingSpec {
    private int rate;
    BillingSpec(int rate) { this.rate = rate; }
    public BillingSpec() { this(1); }
}`
	result := RenamePublicClass(src, "BillingTest")
	require.True(t, result.Changed)
	require.Contains(t, result.Source, "public class BillingTest")
	require.Contains(t, result.Source, "BillingTest(int rate)")
	require.NotContains(t, result.Source, "BillingSpec")
}

func TestRenamePublicClassIsIdempotent(t *testing.T) {
	src := `public class BillingSpec {}`
	once := RenamePublicClass(src, "BillingTest")
	twice := RenamePublicClass(once.Source, "BillingTest")
	require.True(t, once.Changed)
	require.False(t, twice.Changed)
	require.Equal(t, once.Source, twice.Source)
}

func TestSanitizeStringLiteralWhitespace(t *testing.T) {
	src := `class T {
    String a = " padded ";
    String b = "   ";
    String c = "clean";
    char d = ' ';
    // " commented literal "
}`
	result := SanitizeStringLiteralWhitespace(src)
	require.True(t, result.Changed)
	require.Contains(t, result.Source, `String a = "padded";`)
	require.Contains(t, result.Source, `String b = "   ";`)
	require.Contains(t, result.Source, `String c = "clean";`)
	require.Contains(t, result.Source, `char d = ' ';`)
	require.Contains(t, result.Source, `// " commented literal "`)

	again := SanitizeStringLiteralWhitespace(result.Source)
	require.False(t, again.Changed)
}

func TestSanitizeStringLiteralKeepsEscapes(t *testing.T) {
	src := `class T { String a = " x\n "; }`
	result := SanitizeStringLiteralWhitespace(src)
	require.True(t, result.Changed)
	require.Contains(t, result.Source, `String a = "x\n";`)
}
