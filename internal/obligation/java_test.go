package obligation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const polyReference = `interface Plan {
    int cost(int units);
}

public class Billing {
    public int run(Plan plan, int units) { return plan.cost(units); }
}

class FlatPlan implements Plan {
    public int cost(int units) { return 10; }
}

class MeteredPlan implements Plan {
    public int cost(int units) { return units * 3; }
}`

const polyTests = `import org.junit.jupiter.api.Test;
import static org.junit.jupiter.api.Assertions.assertEquals;

public class BillingTest {
    @Test
    void dispatchesThroughBaseType() {
        Plan plan = new MeteredPlan();
        assertEquals(9, plan.cost(3));
        Plan flat = new FlatPlan();
        assertEquals(10, flat.cost(99));
    }
}`

func polyInput() Input {
	return Input{
		Language:        "java",
		Style:           "return",
		StructuralTopic: "polymorphism",
		TargetName:      "Billing",
		StarterCode:     "public class Billing {\n}",
		Reference:       polyReference,
		TestSuite:       polyTests,
		TestCaseCount:   8,
	}
}

func TestJavaPolymorphismObligationPasses(t *testing.T) {
	results, violation := Check(polyInput())
	require.Nil(t, violation)

	last := results[len(results)-1]
	require.Equal(t, StructuralTopicID("polymorphism"), last.ID)
	require.True(t, last.OK)
}

func TestJavaPolymorphismFailsWithoutBaseType(t *testing.T) {
	in := polyInput()
	in.Reference = `public class Billing {
    public int solve(String plan, int units) { return units; }
}`
	_, violation := Check(in)
	require.NotNil(t, violation)
	require.Equal(t, StructuralTopicID("polymorphism"), violation.ID)
}

func TestJavaPolymorphismFailsWithoutDispatchInTests(t *testing.T) {
	in := polyInput()
	in.TestSuite = `import org.junit.jupiter.api.Test;
import static org.junit.jupiter.api.Assertions.assertEquals;

public class BillingTest {
    @Test
    void mentionsAll() {
        // Plan FlatPlan MeteredPlan named but never dispatched
        assertEquals(9, new MeteredPlan().cost(3));
        assertEquals(10, new FlatPlan().cost(1));
        Plan unused = null;
    }
}`
	_, violation := Check(in)
	require.NotNil(t, violation)
	require.Equal(t, StructuralTopicID("polymorphism"), violation.ID)
}

func TestJavaSinglePublicTypeViolation(t *testing.T) {
	in := polyInput()
	in.Reference = `public class Billing {}
public class Helper {}`
	_, violation := Check(in)
	require.NotNil(t, violation)
	require.Equal(t, JavaSinglePublicType, violation.ID)
}

func TestJavaPrimaryTypeMustMatchTarget(t *testing.T) {
	in := polyInput()
	in.StructuralTopic = ""
	in.Reference = `public class Invoice { public int total() { return 1; } }`
	in.TestSuite = `import org.junit.jupiter.api.Test;
public class BillingTest { @Test void t() {} }`
	_, violation := Check(in)
	require.NotNil(t, violation)
	require.Equal(t, JavaPrimaryMatchesTarget, violation.ID)
}

func TestJavaTestClassMustMatchTarget(t *testing.T) {
	in := polyInput()
	in.StructuralTopic = ""
	in.Reference = `public class Billing { public int total() { return 1; } }`
	in.TestSuite = `import org.junit.jupiter.api.Test;
public class InvoiceTest { @Test void t() {} }`
	_, violation := Check(in)
	require.NotNil(t, violation)
	require.Equal(t, JavaTestClassMatches, violation.ID)
}

func TestJavaWhileFalseRejected(t *testing.T) {
	in := polyInput()
	in.StructuralTopic = ""
	in.Reference = `public class Billing {
    public int total() { while(false) {} return 1; }
}`
	in.TestSuite = `import org.junit.jupiter.api.Test;
public class BillingTest { @Test void t() {} }`
	_, violation := Check(in)
	require.NotNil(t, violation)
	require.Equal(t, JavaNoWhileFalse, violation.ID)
}

func TestJavaStdinIncompatibleWithStructuralTopics(t *testing.T) {
	in := polyInput()
	in.Reference = `public class Billing {
    public static void main(String[] args) {
        java.util.Scanner sc = new java.util.Scanner(System.in);
        System.out.println(sc.nextInt());
    }
}`
	_, violation := Check(in)
	require.NotNil(t, violation)
	require.Equal(t, JavaStdinStructuralTopics, violation.ID)
}

func TestJavaStdinNeedsProvidingTestsAndMain(t *testing.T) {
	reference := `public class Echo {
    public static void main(String[] args) {
        java.util.Scanner sc = new java.util.Scanner(System.in);
        System.out.println(sc.nextLine());
    }
}`
	in := Input{
		Language:      "java",
		Style:         "stdout",
		TargetName:    "Echo",
		StarterCode:   "public class Echo {\n}",
		Reference:     reference,
		TestCaseCount: 8,
		TestSuite: `import org.junit.jupiter.api.Test;
public class EchoTest {
    @Test
    void t() {
        System.setOut(new java.io.PrintStream(new java.io.ByteArrayOutputStream()));
    }
}`,
	}
	_, violation := Check(in)
	require.NotNil(t, violation)
	require.Equal(t, JavaStdinTestsProvide, violation.ID)
}

func TestJavaEncapsulationObligation(t *testing.T) {
	in := Input{
		Language:        "java",
		Style:           "return",
		StructuralTopic: "encapsulation",
		TargetName:      "Account",
		StarterCode:     "public class Account {\n}",
		TestCaseCount:   8,
		Reference: `public class Account {
    private double balance;
    public void deposit(double amount) { balance += amount; }
    public double balance() { return balance; }
}`,
		TestSuite: `import org.junit.jupiter.api.Test;
import static org.junit.jupiter.api.Assertions.assertEquals;

public class AccountTest {
    @Test
    void roundTrips() {
        Account account = new Account();
        account.deposit(5.0);
        assertEquals(5.0, account.balance());
    }
}`,
	}
	results, violation := Check(in)
	require.Nil(t, violation)
	require.True(t, results[len(results)-1].OK)

	in.Reference = `public class Account {
    public double balance;
}`
	_, violation = Check(in)
	require.NotNil(t, violation)
	require.Equal(t, StructuralTopicID("encapsulation"), violation.ID)
}

func TestJavaCompositionObligation(t *testing.T) {
	in := Input{
		Language:        "java",
		Style:           "return",
		StructuralTopic: "composition",
		TargetName:      "Car",
		StarterCode:     "public class Car {\n}",
		TestCaseCount:   8,
		Reference: `public class Car {
    private Engine engine = new Engine();
    public int power() { return engine.output(); }
}

class Engine {
    public int output() { return 90; }
}`,
		TestSuite: `import org.junit.jupiter.api.Test;
import static org.junit.jupiter.api.Assertions.assertEquals;

public class CarTest {
    @Test
    void delegatesToEngine() {
        Car car = new Car();
        Engine spare = new Engine();
        assertEquals(90, car.power());
        assertEquals(90, spare.output());
    }
}`,
	}
	results, violation := Check(in)
	require.Nil(t, violation)
	require.True(t, results[len(results)-1].OK)
}
