package webapp

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

var allowedRouteMethods = map[string]bool{ //nolint:gochecknoglobals
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

var routeSegmentRegex = regexp.MustCompile(`^([:*])([A-Za-z_][A-Za-z0-9_]*)$`)

// RouteDef is one entry in the route table.
type RouteDef struct {
	Method  string
	Pattern string
	Action  string
}

func (r RouteDef) String() string {
	return fmt.Sprintf("%s %s -> %s", r.Method, r.Pattern, r.Action)
}

// Router maps requests to action names. Patterns use ":name" for a single path segment and
// "*name" for the rest of the path, for instance "/users/:id" or "/assets/*file". Routes are
// matched in the order they were added.
type Router struct {
	mux     *mux.Router
	defs    []RouteDef
	actions map[*mux.Route]string
	byName  map[string][]namedRoute
	frozen  bool
	lock    sync.RWMutex
}

func NewRouter() *Router {
	return &Router{
		mux:     mux.NewRouter(),
		actions: make(map[*mux.Route]string),
		byName:  make(map[string][]namedRoute),
	}
}

// namedRoute is a route along with the names of the parameters in its pattern.
type namedRoute struct {
	route  *mux.Route
	params []string
}

// Add adds a route. An action may have several routes, for instance "/" and "/:name".
func (r *Router) Add(method, pattern, action string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.frozen {
		return ErrApplicationRunning
	}
	method = strings.ToUpper(method)
	if !allowedRouteMethods[method] {
		return &RouteError{Method: method, Pattern: pattern, Reason: "unsupported method"}
	}
	if action == "" {
		return &RouteError{Method: method, Pattern: pattern, Reason: "no action name"}
	}
	template, params, err := muxPathTemplate(pattern)
	if err != nil {
		return &RouteError{Method: method, Pattern: pattern, Reason: err.Error()}
	}
	// A handler is needed so that mux clears an earlier method mismatch when a later route
	// matches; it is never called.
	route := r.mux.NewRoute().Path(template).Methods(method).HandlerFunc(http.NotFound)
	if err := route.GetError(); err != nil {
		return &RouteError{Method: method, Pattern: pattern, Reason: err.Error()}
	}
	r.actions[route] = action
	r.byName[action] = append(r.byName[action], namedRoute{route: route, params: params})
	r.defs = append(r.defs, RouteDef{Method: method, Pattern: pattern, Action: action})
	return nil
}

// Match finds the action for a request. A request whose path matches a route but whose method
// does not is treated the same as one that matches nothing.
func (r *Router) Match(req *http.Request) (ActionRef, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var rm mux.RouteMatch
	if !r.mux.Match(req, &rm) || rm.MatchErr != nil || rm.Route == nil {
		return ActionRef{}, false
	}
	action, ok := r.actions[rm.Route]
	if !ok {
		return ActionRef{}, false
	}
	return ActionRef{Name: action, Params: rm.Vars}, true
}

// Reverse returns the path of the first route for the action whose parameters are exactly the
// ones in the ActionRef, with the values filled in.
func (r *Router) Reverse(ref ActionRef) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	routes := r.byName[ref.Name]
	if len(routes) == 0 {
		return "", fmt.Errorf("%w: no route for %s", ErrUnknownAction, ref.Name)
	}
	pairs := make([]string, 0, len(ref.Params)*2)
	for k, v := range ref.Params {
		pairs = append(pairs, k, v)
	}
	for _, nr := range routes {
		if !sameKeys(nr.params, ref.Params) {
			continue
		}
		u, err := nr.route.URLPath(pairs...)
		if err != nil {
			return "", fmt.Errorf("cannot build path for %s: %w", ref, err)
		}
		return u.Path, nil
	}
	return "", fmt.Errorf("no route for %s takes exactly those parameters", ref)
}

func sameKeys(names []string, params map[string]string) bool {
	if len(names) != len(params) {
		return false
	}
	for _, n := range names {
		if _, ok := params[n]; !ok {
			return false
		}
	}
	return true
}

// Routes returns the route table in matching order.
func (r *Router) Routes() []RouteDef {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]RouteDef(nil), r.defs...)
}

func (r *Router) freeze() {
	r.lock.Lock()
	r.frozen = true
	r.lock.Unlock()
}

// muxPathTemplate converts a pattern like "/:name" or "/files/*path" into gorilla/mux syntax,
// and returns the parameter names in the order they appear.
func muxPathTemplate(pattern string) (string, []string, error) {
	if !strings.HasPrefix(pattern, "/") {
		return "", nil, fmt.Errorf("pattern must start with /")
	}
	segments := strings.Split(pattern[1:], "/")
	var params []string
	for i, seg := range segments {
		if seg == "" || (seg[0] != ':' && seg[0] != '*') {
			if strings.ContainsAny(seg, "{}") {
				return "", nil, fmt.Errorf("segment %q may not contain braces", seg)
			}
			continue
		}
		match := routeSegmentRegex.FindStringSubmatch(seg)
		if match == nil {
			return "", nil, fmt.Errorf("invalid parameter segment %q", seg)
		}
		if slices.Contains(params, match[2]) {
			return "", nil, fmt.Errorf("parameter %q appears more than once", match[2])
		}
		params = append(params, match[2])
		if match[1] == "*" {
			if i != len(segments)-1 {
				return "", nil, fmt.Errorf("wildcard segment %q must be last", seg)
			}
			segments[i] = "{" + match[2] + ":.*}"
		} else {
			segments[i] = "{" + match[2] + "}"
		}
	}
	return "/" + strings.Join(segments, "/"), params, nil
}
