package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/codegraph/core"
)

func TestTypeScriptExportedFunction(t *testing.T) {
	src := `export function processPayment(amount: number): Promise<Receipt> { return stripe.charge(amount); }`
	res := extractSrc(t, "payment.ts", src)

	fn := requireNode(t, res, core.KindFunction, "processPayment")
	require.True(t, fn.IsExported)
	require.Contains(t, fn.Signature, "amount: number")
	require.Equal(t, 1, fn.StartLine)

	ref := requireRef(t, res, core.EdgeCalls, "charge")
	require.Equal(t, fn.ID, ref.FromNodeID)
	require.Equal(t, "stripe.charge", ref.RawText)
}

func TestTypeScriptClass(t *testing.T) {
	src := `import { Base } from "./base";

class OrderService extends Base implements Validated {
  private total: number;

  static create(): OrderService { return new OrderService(); }

  async submit(order: Order): Promise<void> {
    this.validate(order);
  }
}`
	res := extractSrc(t, "orders.ts", src)

	cls := requireNode(t, res, core.KindClass, "OrderService")
	require.False(t, cls.IsExported)

	submit := requireNode(t, res, core.KindMethod, "submit")
	require.True(t, submit.IsAsync)

	create := requireNode(t, res, core.KindMethod, "create")
	require.True(t, create.IsStatic)

	total := requireNode(t, res, core.KindMethod, "total")
	require.Equal(t, core.VisibilityPrivate, total.Visibility)

	requireRef(t, res, core.EdgeImports, "./base")
	requireRef(t, res, core.EdgeExtends, "Base")
	requireRef(t, res, core.EdgeImplements, "Validated")
	requireRef(t, res, core.EdgeCalls, "validate")

	// containment: both methods hang off the class
	contained := map[string]bool{}
	for _, e := range res.Edges {
		if e.Kind == core.EdgeContains && e.SourceID == cls.ID {
			contained[e.TargetID] = true
		}
	}
	require.True(t, contained[submit.ID])
	require.True(t, contained[create.ID])
}

func TestTypeScriptInterfaceAndEnum(t *testing.T) {
	src := `export interface Repository {
  find(id: string): Entity;
}

enum Color { Red, Green }`
	res := extractSrc(t, "types.ts", src)

	iface := requireNode(t, res, core.KindInterface, "Repository")
	require.True(t, iface.IsExported)
	requireNode(t, res, core.KindEnum, "Color")
}

func TestTypeScriptDocstring(t *testing.T) {
	src := `/**
 * Charges the customer.
 * Retries on transient failures.
 */
export function charge(amount: number): void {}`
	res := extractSrc(t, "billing.ts", src)

	fn := requireNode(t, res, core.KindFunction, "charge")
	require.Contains(t, fn.Docstring, "Charges the customer.")
	require.Contains(t, fn.Docstring, "Retries on transient failures.")
	require.False(t, strings.Contains(fn.Docstring, "/**"))
}

func TestTypeScriptQualifiedName(t *testing.T) {
	src := `class Outer { inner(): void {} }`
	res := extractSrc(t, "nest.ts", src)

	m := requireNode(t, res, core.KindMethod, "inner")
	require.Equal(t, "nest.ts::Outer::inner", m.QualifiedName)
}

func TestTSXAliasesTypeScriptPolicy(t *testing.T) {
	src := `export function Banner(props: Props) { return render(props); }`
	res := extractSrc(t, "banner.tsx", src)

	fn := requireNode(t, res, core.KindFunction, "Banner")
	require.True(t, fn.IsExported)
	require.Equal(t, "tsx", fn.Language)
	requireRef(t, res, core.EdgeCalls, "render")
}

func TestJavaScriptAnonymousFunctionSkipped(t *testing.T) {
	src := `const handler = function () { dispatch(); };

function named() {}`
	res := extractSrc(t, "handlers.js", src)

	requireNode(t, res, core.KindFunction, "named")
	for _, n := range res.Nodes {
		require.NotEmpty(t, n.Name)
	}
	// the anonymous body's call still lands at file scope
	ref := requireRef(t, res, core.EdgeCalls, "dispatch")
	require.Equal(t, core.FileScopeID("handlers.js"), ref.FromNodeID)
}
