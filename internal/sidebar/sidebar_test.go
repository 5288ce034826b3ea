package sidebar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultravioletrs/cube-docs/internal/config"
	"github.com/ultravioletrs/cube-docs/internal/content"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/git"
	"github.com/ultravioletrs/cube-docs/site"
)

const apiSidebar = `docs:
  - intro
  - type: category
    label: API
    items:
      - api/overview
      - api/models
`

func labels(items []Entry) []string {
	out := make([]string, len(items))
	for i, e := range items {
		if e.Kind == KindDoc {
			out[i] = e.ID
		} else {
			out[i] = e.Label
		}
	}
	return out
}

func TestParsePreservesOrder(t *testing.T) {
	sbs, err := Parse([]byte(apiSidebar))
	require.NoError(t, err)
	require.Len(t, sbs, 1)

	sb := sbs[0]
	assert.Equal(t, "docs", sb.Name)
	assert.Equal(t, []string{"intro", "API"}, labels(sb.Items))
	assert.Equal(t, []string{"api/overview", "api/models"}, labels(sb.Items[1].Items))
	assert.Equal(t, "docs[1].items[0]", sb.Items[1].Items[0].Path)
	assert.Equal(t, []string{"intro", "api/overview", "api/models"}, sb.DocIDs())
}

func TestParseReorderedSiblings(t *testing.T) {
	reordered := `docs:
  - type: category
    label: API
    items:
      - api/models
      - api/overview
  - intro
`
	a, err := Parse([]byte(apiSidebar))
	require.NoError(t, err)
	b, err := Parse([]byte(reordered))
	require.NoError(t, err)

	assert.ElementsMatch(t, a[0].DocIDs(), b[0].DocIDs())
	assert.NotEqual(t, a[0].DocIDs(), b[0].DocIDs())
}

func TestParseSidebarOrderAndNames(t *testing.T) {
	sbs, err := Parse([]byte("zeta:\n  - a\nalpha:\n  - b\nmid:\n  - c\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, sbs.Names())

	sb, ok := sbs.Lookup("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, sb.DocIDs())
	_, ok = sbs.Lookup("missing")
	assert.False(t, ok)
}

func TestParseEntryVariants(t *testing.T) {
	src := `docs:
  - type: doc
    id: intro
    label: Welcome
  - type: link
    label: GitHub
    href: https://github.com/ultravioletrs/cube
  - type: category
    label: Guides
    collapsed: false
    link:
      type: doc
      id: guides/index
    items:
      - guides/setup
  - type: category
    label: Reference
    link:
      type: generated-index
      slug: /reference
      title: Reference
    items: []
  - Shorthand:
      - short/one
      - short/two
`
	sbs, err := Parse([]byte(src))
	require.NoError(t, err)
	items := sbs[0].Items
	require.Len(t, items, 5)

	assert.Equal(t, Entry{Kind: KindDoc, ID: "intro", Label: "Welcome", Path: "docs[0]", Line: 2}, items[0])
	assert.Equal(t, KindLink, items[1].Kind)
	assert.Equal(t, "https://github.com/ultravioletrs/cube", items[1].Href)

	guides := items[2]
	require.NotNil(t, guides.Collapsed)
	assert.False(t, *guides.Collapsed)
	assert.Nil(t, guides.Collapsible)
	assert.Equal(t, &CategoryLink{Type: CategoryLinkDoc, ID: "guides/index"}, guides.Link)

	ref := items[3]
	assert.Empty(t, ref.Items)
	assert.Equal(t, CategoryLinkGeneratedIndex, ref.Link.Type)
	assert.Equal(t, "/reference", ref.Link.Slug)

	assert.Equal(t, KindCategory, items[4].Kind)
	assert.Equal(t, "Shorthand", items[4].Label)
	assert.Equal(t, []string{"short/one", "short/two"}, labels(items[4].Items))

	assert.Equal(t, []string{"intro", "guides/index", "guides/setup", "short/one", "short/two"}, sbs[0].DocIDs())
}

func TestParseShorthandSidebar(t *testing.T) {
	sbs, err := Parse([]byte("docs:\n  Getting Started: [intro, install]\n  API: [api/overview]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Getting Started", "API"}, labels(sbs[0].Items))
}

func TestParseStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
	}{
		{"category without label", "docs:\n  - type: category\n    items: [a]\n", "docs[0]"},
		{"category without items", "docs:\n  - type: category\n    label: API\n", "docs[0]"},
		{"category with empty items", "docs:\n  - type: category\n    label: API\n    items: []\n", "docs[0].items"},
		{"unknown type", "docs:\n  - type: html\n    value: x\n", "docs[0]"},
		{"numeric leaf", "docs:\n  - type: category\n    label: API\n    items:\n      - a\n      - 42\n", "docs[0].items[1]"},
		{"null leaf", "docs:\n  - ~\n", "docs[0]"},
		{"nested list", "docs:\n  - [a, b]\n", "docs[0]"},
		{"doc without id", "docs:\n  - type: doc\n    label: X\n", "docs[0]"},
		{"relative link", "docs:\n  - type: link\n    label: X\n    href: /blog\n", "docs[0].href"},
		{"unknown key", "docs:\n  - type: doc\n    id: a\n    class: x\n", "docs[0]"},
		{"items not a list", "docs:\n  - type: category\n    label: API\n    items: a\n", "docs[0].items"},
		{"bad category link", "docs:\n  - type: category\n    label: API\n    link:\n      type: page\n    items: [a]\n", "docs[0].link.type"},
		{"sidebar not a list", "docs: intro\n", "docs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			ce, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, ferrors.CategoryValidation, ce.Category())
			assert.True(t, ce.IsFatal())
			path, _ := ce.Context().GetString("path")
			assert.Equal(t, tt.path, path)
			sb, _ := ce.Context().GetString("sidebar")
			assert.Equal(t, "docs", sb)
		})
	}
}

func TestParseFileErrors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":          "",
		"comment only":   "# nothing\n",
		"not a mapping":  "- intro\n",
		"no sidebars":    "{}\n",
		"invalid yaml":   "docs: [a\n",
		"duplicate name": "docs:\n  - a\ndocs:\n  - b\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
		})
	}
}

func TestParseSiteSidebars(t *testing.T) {
	sbs, err := Parse(site.SidebarsYAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"tutorialSidebar"}, sbs.Names())

	top := labels(sbs[0].Items)
	assert.Equal(t, []string{
		"intro", "getting-started", "architecture", "guardrails", "vllm", "attestation",
		"API", "Integrations", "Developer Guide",
	}, top)
	assert.Equal(t, "api/overview", sbs[0].Items[6].Items[0].ID)
	assert.Len(t, sbs[0].DocIDs(), 21)
}

func TestWalkDepthAndStop(t *testing.T) {
	sbs, err := Parse([]byte(apiSidebar))
	require.NoError(t, err)

	var visited []string
	var depths []int
	require.NoError(t, sbs[0].Walk(func(e *Entry, depth int) error {
		visited = append(visited, e.Path)
		depths = append(depths, depth)
		return nil
	}))
	assert.Equal(t, []string{"docs[0]", "docs[1]", "docs[1].items[0]", "docs[1].items[1]"}, visited)
	assert.Equal(t, []int{0, 0, 1, 1}, depths)

	stop := assert.AnError
	count := 0
	err = sbs[0].Walk(func(*Entry, int) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, count)
}

func TestValidateAllResolved(t *testing.T) {
	sbs, err := Parse([]byte(apiSidebar))
	require.NoError(t, err)
	broken, err := Validate(sbs, content.FromIDs("intro", "api/overview", "api/models"), config.StrictnessThrow)
	require.NoError(t, err)
	assert.Empty(t, broken)
}

func TestValidateMissingDocumentIsFatal(t *testing.T) {
	sbs, err := Parse([]byte("docs:\n  - intro\n  - nonexistent-doc\n  - type: category\n    label: API\n    items: [api/gone]\n"))
	require.NoError(t, err)

	broken, err := Validate(sbs, content.FromIDs("intro"), config.StrictnessThrow)
	require.Error(t, err)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryNavigation, ce.Category())
	assert.True(t, ce.IsFatal())
	assert.Contains(t, ce.Error(), "nonexistent-doc")
	assert.Contains(t, ce.Error(), "api/gone")

	require.Len(t, broken, 2)
	assert.Equal(t, BrokenReference{Sidebar: "docs", Path: "docs[1]", DocID: "nonexistent-doc", Line: 3}, broken[0])
	assert.Equal(t, "docs[2].items[0]", broken[1].Path)
}

func TestValidateLenientPolicies(t *testing.T) {
	sbs, err := Parse([]byte("docs:\n  - nonexistent-doc\n"))
	require.NoError(t, err)
	for _, policy := range []config.Strictness{config.StrictnessWarn, config.StrictnessLog, config.StrictnessIgnore} {
		broken, err := Validate(sbs, content.FromIDs(), policy)
		require.NoError(t, err, policy)
		assert.Len(t, broken, 1, policy)
	}
}

func TestValidateCategoryLinkDocument(t *testing.T) {
	sbs, err := Parse([]byte("docs:\n  - type: category\n    label: G\n    link: {type: doc, id: guides/index}\n    items: [intro]\n"))
	require.NoError(t, err)
	broken, err := Validate(sbs, content.FromIDs("intro"), config.StrictnessThrow)
	require.Error(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, "guides/index", broken[0].DocID)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sidebars.yaml")
	require.NoError(t, os.WriteFile(path, []byte(apiSidebar), 0o600))
	sbs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, sbs.Names())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("docs:\n  - 1\n"), 0o600))
	_, err = Load(bad)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	file, _ := ce.Context().GetString("file")
	assert.Equal(t, bad, file)
}

func TestLoadRevision(t *testing.T) {
	root := t.TempDir()
	repo, err := gogit.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	commit := func(body string) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "sidebars.yaml"), []byte(body), 0o600))
		_, err := wt.Add("sidebars.yaml")
		require.NoError(t, err)
		_, err = wt.Commit("sidebars", &gogit.CommitOptions{
			Author: &object.Signature{Name: "Docs Bot", Email: "docs@example.com", When: time.Now()},
		})
		require.NoError(t, err)
	}
	commit("docs:\n  - intro\n")
	commit(apiSidebar)

	snap, err := git.OpenSnapshot(root, "HEAD~1")
	require.NoError(t, err)
	sbs, err := LoadRevision(snap, "sidebars.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"intro"}, sbs[0].DocIDs())

	_, err = LoadRevision(snap, "versioned_sidebars/version-1.0-sidebars.yaml")
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestVersions(t *testing.T) {
	dir := t.TempDir()
	versions, err := ReadVersions(filepath.Join(dir, "versions.yaml"))
	require.NoError(t, err)
	assert.Empty(t, versions)

	path := filepath.Join(dir, "versions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- \"0.2\"\n- \"0.1\"\n"), 0o600))
	versions, err = ReadVersions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.2", "0.1"}, versions)

	assert.Equal(t, filepath.Join("versioned_sidebars", "version-0.2-sidebars.yaml"), VersionedSidebarPath("versioned_sidebars", "0.2"))
	assert.Equal(t, filepath.Join("versioned_docs", "version-0.2"), VersionedDocsPath("versioned_docs", "0.2"))

	for _, bad := range []string{"- a\n- a\n", "- ../x\n", "- \"\"\n", "name: x\n"} {
		_, err := ParseVersions([]byte(bad))
		assert.Error(t, err, bad)
	}
}
