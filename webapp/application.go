package webapp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/prometheus/client_golang/prometheus"
)

// State is the lifecycle state of an Application.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Factory creates a new, not yet started, application instance from a configuration.
type Factory func(config Config) (*Application, error)

// Application is one instance of a web application: its configuration, actions, route table,
// and views. It goes from created to running to stopped, and cannot be restarted.
//
// Actions, routes, and views can only be set up while the application is in the created state.
type Application struct {
	config    Config
	loggers   ldlog.Loggers
	router    *Router
	actions   map[string]Action
	templates *Templates
	sessions  *SessionCodec
	metrics   *dispatchMetrics
	state     State
	ctx       context.Context
	cancel    context.CancelFunc
	stopHooks []func() error
	lock      sync.Mutex
}

func NewApplication(config Config) *Application {
	return &Application{
		config:   config,
		loggers:  config.Loggers,
		router:   NewRouter(),
		actions:  make(map[string]Action),
		sessions: NewSessionCodec(config),
		metrics:  newDispatchMetrics(),
	}
}

func (a *Application) Config() Config { return a.config }

func (a *Application) Name() string { return a.config.Name }

func (a *Application) Loggers() ldlog.Loggers { return a.loggers }

func (a *Application) Router() *Router { return a.router }

func (a *Application) Templates() *Templates { return a.templates }

func (a *Application) Sessions() *SessionCodec { return a.sessions }

// Registry returns the application's own metrics registry.
func (a *Application) Registry() *prometheus.Registry { return a.metrics.registry }

func (a *Application) State() State {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.state
}

func (a *Application) requireCreated() error {
	switch a.state {
	case StateRunning:
		return ErrApplicationRunning
	case StateStopped:
		return ErrApplicationStopped
	}
	return nil
}

// Action registers a named action.
func (a *Application) Action(name string, action Action) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	if err := a.requireCreated(); err != nil {
		return err
	}
	a.actions[name] = action
	return nil
}

// Route adds a route to a named action. The action does not need to be registered yet, but
// Start fails if it never is.
func (a *Application) Route(method, pattern, action string) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	if err := a.requireCreated(); err != nil {
		return err
	}
	return a.router.Add(method, pattern, action)
}

// Views parses the application's views from fsys.
func (a *Application) Views(fsys fs.FS, patterns ...string) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	if err := a.requireCreated(); err != nil {
		return err
	}
	t, err := ParseTemplates(fsys, a.router, patterns...)
	if err != nil {
		return err
	}
	a.templates = t
	return nil
}

// OnStop adds a function to be called when the application stops. Hooks run in reverse order of
// registration.
func (a *Application) OnStop(hook func() error) {
	a.lock.Lock()
	a.stopHooks = append(a.stopHooks, hook)
	a.lock.Unlock()
}

// Start moves the application to the running state, after which its route table is read-only.
func (a *Application) Start() error {
	a.lock.Lock()
	defer a.lock.Unlock()
	if err := a.requireCreated(); err != nil {
		return err
	}
	for _, def := range a.router.Routes() {
		if _, ok := a.actions[def.Action]; !ok {
			return fmt.Errorf("%w: route %s", ErrUnknownAction, def)
		}
	}
	a.router.freeze()
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.state = StateRunning
	a.loggers.Infof("Application %q started with %d routes", a.config.Name, len(a.router.Routes()))
	return nil
}

// Stop moves the application to the stopped state, cancels any async results that are still
// running, and runs the stop hooks. Only the first call does anything; stopping an application
// that was never started just marks it stopped.
func (a *Application) Stop() error {
	a.lock.Lock()
	if a.state == StateStopped {
		a.lock.Unlock()
		return nil
	}
	wasRunning := a.state == StateRunning
	a.state = StateStopped
	hooks := a.stopHooks
	a.stopHooks = nil
	a.lock.Unlock()

	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if wasRunning {
		a.loggers.Infof("Application %q stopped", a.config.Name)
	}
	return errors.Join(errs...)
}

// Match finds the action for a request in the route table. A request that is not routed is
// counted in the metrics with the "unrouted" outcome.
func (a *Application) Match(req *http.Request) (ActionRef, bool) {
	ref, ok := a.router.Match(req)
	if !ok {
		a.metrics.count("", OutcomeUnrouted)
		a.loggers.Debugf("No route for %s %s", req.Method, req.URL.Path)
	}
	return ref, ok
}

// Invoke runs an action for a request and returns its eventual result as a Promise. The result
// of an action that completes immediately is an already-resolved Promise.
//
// Errors returned by Invoke itself mean that the action could not be run at all. Errors returned
// or panics raised by the action are reported through the Promise.
func (a *Application) Invoke(ctx context.Context, ref ActionRef, req *http.Request) (*Promise, error) {
	a.lock.Lock()
	state, appCtx := a.state, a.ctx
	action, found := a.actions[ref.Name]
	a.lock.Unlock()
	switch state {
	case StateCreated:
		return nil, ErrApplicationNotStarted
	case StateStopped:
		return nil, ErrApplicationStopped
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, ref.Name)
	}

	dctx, cancel := context.WithCancel(ctx)
	stopCancel := context.AfterFunc(appCtx, cancel)

	session, flash, err := a.sessions.ReadRequest(req)
	if err != nil {
		a.loggers.Warnf("Ignoring unreadable session data for %s: %s", ref.Name, err)
	}
	c := newContext(dctx, a, ref.Name, req, ref.Params, session, flash)

	timer := a.metrics.timer(ref.Name)
	complete := func(result Result, err error) (Result, error) {
		stopCancel()
		cancel()
		timer.ObserveDuration()
		if err != nil {
			a.metrics.count(ref.Name, OutcomeFailure)
			a.loggers.Debugf("Action %s failed: %s", ref, err)
			return Result{}, err
		}
		a.metrics.count(ref.Name, OutcomeSuccess)
		return c.finalize(result), nil
	}

	a.loggers.Debugf("Invoking %s for %s %s", ref, req.Method, req.URL.Path)
	result, err := runAction(action, c)
	if err != nil || !result.IsAsync() {
		final, err := complete(result, err)
		if err != nil {
			return Failed(err), nil
		}
		return Resolved(final), nil
	}

	return result.Promise().Finally(func(r Result, err error) (Result, error) {
		if err == nil && r.IsAsync() {
			err = fmt.Errorf("async result of %s completed with another async result", ref.Name)
		}
		return complete(r, err)
	}), nil
}

func runAction(action Action, c *Context) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	return action(c)
}
