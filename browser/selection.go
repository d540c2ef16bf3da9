package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selection is the result of Browser.Find. It is a snapshot: it does not change when the browser
// navigates.
type Selection struct {
	browser  *Browser
	selector string
	nodes    []*html.Node
	err      error
}

func (s Selection) Err() error { return s.err }

func (s Selection) Count() int { return len(s.nodes) }

// Texts returns the text content of each element, with runs of whitespace collapsed.
func (s Selection) Texts() []string {
	ret := make([]string, 0, len(s.nodes))
	for _, n := range s.nodes {
		ret = append(ret, textOf(n))
	}
	return ret
}

// Text returns the text content of the element at the index, or "" if there is no such element.
func (s Selection) Text(index int) string {
	if index < 0 || index >= len(s.nodes) {
		return ""
	}
	return textOf(s.nodes[index])
}

// Attr returns an attribute of the first element.
func (s Selection) Attr(name string) (string, bool) {
	if len(s.nodes) == 0 {
		return "", false
	}
	return attr(s.nodes[0], name)
}

// Click follows the href of the first element, which must be a link.
func (s Selection) Click() error {
	if s.err != nil {
		return s.err
	}
	if len(s.nodes) == 0 {
		return fmt.Errorf("no element matches %q", s.selector)
	}
	href, ok := attr(s.nodes[0], "href")
	if !ok {
		return fmt.Errorf("first element matching %q is <%s> with no href", s.selector, s.nodes[0].Data)
	}
	s.browser.lock.Lock()
	defer s.browser.lock.Unlock()
	return s.browser.goTo(href)
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
