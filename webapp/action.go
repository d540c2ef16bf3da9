package webapp

import (
	"fmt"
	"sort"
	"strings"
)

// Action handles one request. It returns a Result, which may be deferred with Context.Async,
// or an error, which the caller reports as a dispatch failure.
type Action func(c *Context) (Result, error)

// ActionRef identifies an action by name, together with the route parameters to call it with.
// It lets tests and views refer to an action without spelling out a URL.
type ActionRef struct {
	Name   string
	Params map[string]string
}

// Ref builds an ActionRef from a name and alternating parameter names and values.
func Ref(name string, paramPairs ...string) ActionRef {
	ref := ActionRef{Name: name}
	if len(paramPairs) > 0 {
		ref.Params = make(map[string]string, len(paramPairs)/2)
		for i := 0; i+1 < len(paramPairs); i += 2 {
			ref.Params[paramPairs[i]] = paramPairs[i+1]
		}
	}
	return ref
}

func (r ActionRef) String() string {
	if len(r.Params) == 0 {
		return r.Name
	}
	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	params := make([]string, 0, len(keys))
	for _, k := range keys {
		params = append(params, fmt.Sprintf("%s=%q", k, r.Params[k]))
	}
	return r.Name + "(" + strings.Join(params, ", ") + ")"
}
