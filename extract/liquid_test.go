package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/codegraph/core"
)

func TestLiquidRenderSnippet(t *testing.T) {
	res := extractSrc(t, "index.liquid", `{% render 'product-card' %}`)

	file := requireNode(t, res, core.KindFile, "index.liquid")
	comp := requireNode(t, res, core.KindComponent, "product-card")

	found := false
	for _, e := range res.Edges {
		if e.Kind == core.EdgeContains && e.SourceID == file.ID && e.TargetID == comp.ID {
			found = true
		}
	}
	require.True(t, found, "component should be contained in the file node")

	ref := requireRef(t, res, core.EdgeReferences, "snippets/product-card.liquid")
	require.Equal(t, comp.ID, ref.FromNodeID)
}

func TestLiquidIncludeAndSection(t *testing.T) {
	src := `{% include 'header' %}
{% section 'featured' %}`
	res := extractSrc(t, "theme.liquid", src)

	requireNode(t, res, core.KindComponent, "header")
	requireNode(t, res, core.KindComponent, "featured")
	requireRef(t, res, core.EdgeReferences, "snippets/header.liquid")
	sec := requireRef(t, res, core.EdgeReferences, "sections/featured.liquid")
	require.Equal(t, 2, sec.Line)
}

func TestLiquidSchema(t *testing.T) {
	src := `{% schema %}
{
  "name": "Featured products",
  "settings": []
}
{% endschema %}`
	res := extractSrc(t, "featured.liquid", src)

	schema := requireNode(t, res, core.KindConstant, "Featured products")
	require.NotEmpty(t, schema.Docstring)
	require.LessOrEqual(t, len(schema.Docstring), 200)
}

func TestLiquidSchemaMalformedJSON(t *testing.T) {
	src := `{% schema %}
{ not json
{% endschema %}`
	res := extractSrc(t, "broken.liquid", src)

	// Malformed schema bodies keep the default name and produce no error.
	requireNode(t, res, core.KindConstant, "schema")
	require.Empty(t, res.Errors)
}

func TestLiquidAssign(t *testing.T) {
	src := `{% assign discounted_price = product.price | times: 0.9 %}`
	res := extractSrc(t, "price.liquid", src)

	requireNode(t, res, core.KindVariable, "discounted_price")
}

func TestLiquidUnknownConstructsSkipped(t *testing.T) {
	src := `{% render %}
{{ product.title }}
{% if true %}{% endif %}`
	res := extractSrc(t, "noise.liquid", src)

	require.Empty(t, res.Errors)
	require.Len(t, res.Nodes, 1) // just the file node
}
