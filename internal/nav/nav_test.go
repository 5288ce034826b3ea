package nav

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultravioletrs/cube-docs/internal/config"
	"github.com/ultravioletrs/cube-docs/internal/content"
	"github.com/ultravioletrs/cube-docs/internal/sidebar"
	"github.com/ultravioletrs/cube-docs/site"
)

var rootOpts = Options{BaseURL: "/", RouteBasePath: "/"}

func mustParse(t *testing.T, src string) sidebar.Sidebars {
	t.Helper()
	sbs, err := sidebar.Parse([]byte(src))
	require.NoError(t, err)
	return sbs
}

func mustIndex(t *testing.T, docs ...*content.Document) *content.Index {
	t.Helper()
	idx, err := content.NewIndex(docs)
	require.NoError(t, err)
	return idx
}

const apiTree = `docs:
  - intro
  - type: category
    label: API
    items:
      - api/overview
      - api/models
`

func TestRenderOrderAndPositions(t *testing.T) {
	sbs := mustParse(t, apiTree)
	n := Render(sbs[0], content.FromIDs("intro", "api/overview", "api/models"), rootOpts)

	require.Len(t, n.Items, 2)
	assert.Equal(t, "intro", n.Items[0].DocID)
	assert.Equal(t, 0, n.Items[0].Position)
	assert.Equal(t, "API", n.Items[1].Label)
	assert.Equal(t, 1, n.Items[1].Position)

	api := n.Items[1].Children
	require.Len(t, api, 2)
	assert.Equal(t, "api/overview", api[0].DocID)
	assert.Equal(t, "api/models", api[1].DocID)
	assert.Equal(t, []int{0, 1}, []int{api[0].Position, api[1].Position})
	assert.Equal(t, 1, api[0].Depth)
	assert.Equal(t, []string{"API", "api/overview"}, api[0].Breadcrumb)
	assert.Equal(t, "/api/overview", api[0].Route)

	assert.Equal(t, []string{"/intro", "/api/overview", "/api/models"}, n.Routes())
}

func TestRenderDeterministic(t *testing.T) {
	docs := content.FromIDs("intro", "api/overview", "api/models")
	var outputs []string
	for range 3 {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, RenderAll(mustParse(t, apiTree), docs, rootOpts)))
		outputs = append(outputs, buf.String())
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}

func TestRenderReorderedDiffersOnlyInOrder(t *testing.T) {
	docs := content.FromIDs("intro", "api/overview", "api/models")
	a := Render(mustParse(t, apiTree)[0], docs, rootOpts)
	b := Render(mustParse(t, `docs:
  - type: category
    label: API
    items:
      - api/models
      - api/overview
  - intro
`)[0], docs, rootOpts)

	assert.ElementsMatch(t, a.Routes(), b.Routes())
	assert.NotEqual(t, a.Routes(), b.Routes())
	assert.Equal(t, []string{"/api/models", "/api/overview", "/intro"}, b.Routes())
}

func TestRenderLabelsAndRoutes(t *testing.T) {
	sbs := mustParse(t, `docs:
  - type: doc
    id: intro
    label: Welcome
  - getting-started
  - api/overview
  - type: link
    label: GitHub
    href: https://github.com/ultravioletrs/cube
`)
	docs := mustIndex(t,
		&content.Document{ID: "intro", Title: "Introduction", Slug: "/"},
		&content.Document{ID: "getting-started", Title: "Getting Started", SidebarLabel: "Start"},
		&content.Document{ID: "api/overview", Title: "Overview", Slug: "index"},
	)
	opts := Options{BaseURL: "/cube/", RouteBasePath: "docs"}
	n := Render(sbs[0], docs, opts)

	assert.Equal(t, "Welcome", n.Items[0].Label)
	assert.Equal(t, "/cube/docs", n.Items[0].Route)
	assert.Equal(t, "Start", n.Items[1].Label)
	assert.Equal(t, "/cube/docs/getting-started", n.Items[1].Route)
	assert.Equal(t, "/cube/docs/api/index", n.Items[2].Route)
	assert.Equal(t, "https://github.com/ultravioletrs/cube", n.Items[3].Href)
	assert.False(t, n.Items[3].IsPage())
	assert.Equal(t, "/cube/docs/", opts.Prefix())
	assert.Equal(t, "/", rootOpts.Prefix())
}

func TestRenderCategoryLinks(t *testing.T) {
	sbs := mustParse(t, `docs:
  - type: category
    label: Developer Guide
    link: {type: doc, id: developer-guide/index}
    items: [developer-guide/hal]
  - type: category
    label: API Reference
    link: {type: generated-index}
    items: [api/models]
`)
	docs := content.FromIDs("developer-guide/index", "developer-guide/hal", "api/models")
	n := Render(sbs[0], docs, rootOpts)

	assert.Equal(t, "/developer-guide/index", n.Items[0].Route)
	assert.Equal(t, "developer-guide/index", n.Items[0].DocID)
	assert.Equal(t, "/category/api-reference", n.Items[1].Route)
	assert.Equal(t, []string{
		"/developer-guide/index",
		"/developer-guide/hal",
		"/category/api-reference",
		"/api/models",
	}, n.Routes())
}

func TestRenderBrokenEntriesStayInPlace(t *testing.T) {
	sbs := mustParse(t, "docs:\n  - intro\n  - nonexistent-doc\n  - vllm\n")
	n := Render(sbs[0], content.FromIDs("intro", "vllm"), rootOpts)

	require.Len(t, n.Items, 3)
	assert.True(t, n.Items[1].Broken)
	assert.Equal(t, "nonexistent-doc", n.Items[1].Label)
	assert.Equal(t, 1, n.Items[1].Position)
	assert.Equal(t, []string{"/intro", "/vllm"}, n.Routes())
}

func TestPages(t *testing.T) {
	n := Render(mustParse(t, apiTree)[0], content.FromIDs("intro", "api/overview", "api/models"), rootOpts)
	pages := n.Pages()
	require.Len(t, pages, 3)
	assert.Nil(t, pages[0].Previous)
	assert.Equal(t, "api/overview", pages[0].Next.DocID)
	assert.Equal(t, "intro", pages[1].Previous.DocID)
	assert.Equal(t, "api/models", pages[1].Next.DocID)
	assert.Nil(t, pages[2].Next)

	p, ok := n.PageFor("api/models")
	require.True(t, ok)
	assert.Equal(t, "api/overview", p.Previous.DocID)
	_, ok = n.PageFor("missing")
	assert.False(t, ok)
}

func TestWriteFormats(t *testing.T) {
	sbs := mustParse(t, apiTree+"  - type: link\n    label: Blog\n    href: https://www.ultraviolet.rs/blog\n  - gone\n")
	navs := RenderAll(sbs, content.FromIDs("intro", "api/overview", "api/models"), rootOpts)

	var text bytes.Buffer
	require.NoError(t, Write(&text, navs, FormatText))
	assert.Equal(t, "docs\n"+
		"  intro (/intro)\n"+
		"  API/\n"+
		"    api/overview (/api/overview)\n"+
		"    api/models (/api/models)\n"+
		"  Blog -> https://www.ultraviolet.rs/blog\n"+
		"  gone [missing: gone]\n", text.String())

	var js bytes.Buffer
	require.NoError(t, Write(&js, navs, FormatJSON))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "docs", decoded[0]["sidebar"])

	assert.Error(t, Write(&js, navs, Format("xml")))
}

func TestRenderSiteSidebar(t *testing.T) {
	sbs, err := sidebar.Parse(site.SidebarsYAML)
	require.NoError(t, err)
	sb := sbs[0]
	docs := content.FromIDs(sb.DocIDs()...)

	cfg := config.Example()
	n := Render(sb, docs, OptionsFromConfig(cfg))
	routes := n.Routes()
	require.Len(t, routes, 21)
	assert.Equal(t, "/intro", routes[0])
	assert.Equal(t, "/api/overview", routes[6])
	assert.Equal(t, "/developer-guide/fine-tuning", routes[20])
}
