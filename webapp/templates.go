package webapp

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/Masterminds/sprig/v3"
)

// Content is a rendered view.
type Content struct {
	ContentType string
	Body        string
}

func (c Content) String() string { return c.Body }

// Templates is a set of html/template views. Besides the sprig functions, views can call
// "route" to get the path of an action: {{ route "Application.index" "name" "Coco" }}.
type Templates struct {
	set *template.Template
}

// ParseTemplates parses every file in fsys that matches one of the glob patterns. Each view is
// named by its file name, for instance "index.html".
func ParseTemplates(fsys fs.FS, router *Router, patterns ...string) (*Templates, error) {
	funcs := sprig.FuncMap()
	funcs["route"] = func(action string, paramPairs ...string) (string, error) {
		if router == nil {
			return "", fmt.Errorf("no router available for action %s", action)
		}
		return router.Reverse(Ref(action, paramPairs...))
	}
	set, err := template.New("").Funcs(funcs).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("could not parse views: %w", err)
	}
	return &Templates{set: set}, nil
}

// Render executes a view and returns it as text/html content.
func (t *Templates) Render(name string, data any) (Content, error) {
	if t == nil || t.set.Lookup(name) == nil {
		return Content{}, fmt.Errorf("view %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return Content{}, fmt.Errorf("error rendering view %q: %w", name, err)
	}
	return Content{ContentType: ContentTypeHTML, Body: buf.String()}, nil
}

// Names returns the names of all views.
func (t *Templates) Names() []string {
	var names []string
	for _, tt := range t.set.Templates() {
		if tt.Name() != "" {
			names = append(names, tt.Name())
		}
	}
	return names
}
