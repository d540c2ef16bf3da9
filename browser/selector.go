package browser

import (
	"bytes"
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// compileSelector parses a CSS selector group such as "ul li.item, a[href]".
func compileSelector(s string) (cascadia.SelectorGroup, error) {
	sel, err := cascadia.ParseGroup(s)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	return sel, nil
}

func parseDocument(data []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(data))
}
