package browser

import (
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const selectorPage = `<div id="main"><ul><li class="item first">one</li><li class="item">two</li></ul>
<a href="/x" class="nav">x</a><p><a name="anchor">y</a></p></div><a href="/z">z</a>`

func TestCompileSelector(t *testing.T) {
	doc, err := parseDocument([]byte(selectorPage))
	require.NoError(t, err)

	for _, p := range []struct {
		selector string
		texts    []string
	}{
		{"li", []string{"one", "two"}},
		{"LI.first", []string{"one"}},
		{"#main a", []string{"x", "y"}},
		{"div > a", []string{"x"}},
		{"a[href]", []string{"x", "z"}},
		{`a[href="/z"]`, []string{"z"}},
		{"li:first-child, a.nav", []string{"one", "x"}},
		{"table", []string{}},
	} {
		t.Run(p.selector, func(t *testing.T) {
			sel, err := compileSelector(p.selector)
			require.NoError(t, err)
			texts := []string{}
			for _, n := range cascadia.QueryAll(doc, sel) {
				texts = append(texts, textOf(n))
			}
			assert.Equal(t, p.texts, texts)
		})
	}
}

func TestCompileSelectorRejectsInvalidSyntax(t *testing.T) {
	for _, s := range []string{"", "#", "a[", "div >", "a:nonsense"} {
		_, err := compileSelector(s)
		assert.Error(t, err, s)
	}
}

func TestParseDocumentAddsMissingElements(t *testing.T) {
	doc, err := parseDocument([]byte("<p>hi</p>"))
	require.NoError(t, err)
	assert.Equal(t, html.DocumentNode, doc.Type)
	assert.Len(t, cascadia.QueryAll(doc, cascadia.MustCompile("body > p")), 1)
}
