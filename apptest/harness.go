package apptest

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/launchdarkly/app-test-harness/framework"
	"github.com/launchdarkly/app-test-harness/framework/harness"
	"github.com/launchdarkly/app-test-harness/framework/helpers"
	"github.com/launchdarkly/app-test-harness/webapp"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const DefaultResultTimeout = time.Second * 5

// HarnessConfig holds the settings of a Harness. It is modified by Options.
type HarnessConfig struct {
	ResultTimeout time.Duration
	Logger        framework.Logger
	BaseConfig    webapp.Config
	AppLoggers    *ldlog.Loggers
}

// Option is a setting for New.
type Option = helpers.ConfigOption[HarnessConfig]

// ResultTimeout sets how long RouteAndDispatch and DispatchAction wait for an async result.
func ResultTimeout(timeout time.Duration) Option {
	return helpers.ConfigOptionFunc[HarnessConfig](func(c *HarnessConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("result timeout must be positive, was %s", timeout)
		}
		c.ResultTimeout = timeout
		return nil
	})
}

// Logger sets where the harness writes its debug output. By default it writes nothing.
func Logger(logger framework.Logger) Option {
	return helpers.ConfigOptionFunc[HarnessConfig](func(c *HarnessConfig) error {
		c.Logger = logger
		return nil
	})
}

// BaseConfig sets the configuration that every application starts from, before the overrides
// of WithApplication are applied. The default is webapp.DefaultConfig().
func BaseConfig(config webapp.Config) Option {
	return helpers.ConfigOptionFunc[HarnessConfig](func(c *HarnessConfig) error {
		c.BaseConfig = config
		return nil
	})
}

// AppLoggers sets the loggers of every application instance. By default, application output at
// Info level and above goes to the harness Logger.
func AppLoggers(loggers ldlog.Loggers) Option {
	return helpers.ConfigOptionFunc[HarnessConfig](func(c *HarnessConfig) error {
		c.AppLoggers = &loggers
		return nil
	})
}

// Harness boots application instances for test blocks. At most one application can be active
// per Harness at a time; separate tests that run in parallel should use separate Harnesses.
type Harness struct {
	factory webapp.Factory
	config  HarnessConfig
	active  atomic.Bool
}

// New creates a Harness for applications built by the factory.
func New(factory webapp.Factory, options ...Option) (*Harness, error) {
	config := HarnessConfig{
		ResultTimeout: DefaultResultTimeout,
		Logger:        framework.NullLogger(),
		BaseConfig:    webapp.DefaultConfig(),
	}
	if err := helpers.ApplyOptions(&config, options...); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = framework.NullLogger()
	}
	if factory == nil {
		return nil, errors.New("application factory must not be nil")
	}
	return &Harness{factory: factory, config: config}, nil
}

// ResultTimeout returns the time that dispatch methods wait for async results.
func (h *Harness) ResultTimeout() time.Duration { return h.config.ResultTimeout }

// WithApplication starts a new application, with the overrides applied to the base
// configuration, and calls block with it. The application is stopped when block returns, and
// also if block panics or calls runtime.Goexit (as testing.T.FailNow does); a panic continues
// after the application has been stopped.
//
// The returned error is from starting or stopping the application; failures inside block are
// for block to report.
func (h *Harness) WithApplication(overrides map[string]any, block func(*App)) error {
	return h.withApplication(overrides, func(app *App) error {
		block(app)
		return nil
	})
}

// WithServer is the same as WithApplication, but also serves the application over HTTP on the
// specified port for the duration of the block. Port 0 means any free port; Server.URL reports
// the actual address.
func (h *Harness) WithServer(port int, block func(*Server)) error {
	return h.withApplication(nil, func(app *App) error {
		srv, err := harness.StartServer(port, app.app.Handler(), app.logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.Close(); err != nil {
				app.logger.Printf("Error closing server: %s", err)
			}
		}()
		block(&Server{App: app, server: srv})
		return nil
	})
}

func (h *Harness) withApplication(overrides map[string]any, run func(*App) error) (err error) {
	if !h.active.CompareAndSwap(false, true) {
		return ErrNestedApplication
	}
	defer h.active.Store(false)

	config := h.config.BaseConfig.WithOverrides(overrides)
	logger := framework.LoggerWithPrefix(h.config.Logger, fmt.Sprintf("[%s] ", config.Name))
	if h.config.AppLoggers != nil {
		config.Loggers = *h.config.AppLoggers
	} else {
		config.Loggers = ldlog.NewDefaultLoggers()
		config.Loggers.SetBaseLogger(logger)
	}

	app, err := h.factory(config)
	if err != nil {
		return fmt.Errorf("could not create application: %w", err)
	}
	if err := app.Start(); err != nil {
		_ = app.Stop()
		return fmt.Errorf("could not start application: %w", err)
	}
	logger.Printf("Application started")
	defer func() {
		stopErr := app.Stop()
		logger.Printf("Application stopped")
		if stopErr != nil && err == nil {
			err = fmt.Errorf("error stopping application: %w", stopErr)
		}
	}()

	return run(&App{app: app, timeout: h.config.ResultTimeout, logger: logger})
}

// App is the handle for the application that is active inside a WithApplication block. It must
// not be used after the block returns.
type App struct {
	app     *webapp.Application
	timeout time.Duration
	logger  framework.Logger
}

// Application returns the underlying application instance.
func (a *App) Application() *webapp.Application { return a.app }

func (a *App) Config() webapp.Config { return a.app.Config() }

// RenderView renders one of the application's views directly.
func (a *App) RenderView(name string, data any) (webapp.Content, error) {
	return a.app.Templates().Render(name, data)
}

// Server is the handle passed to a WithServer block: the active application plus the address it
// is being served at.
type Server struct {
	*App
	server *harness.Server
}

// URL returns the base URL of the server, such as "http://localhost:3333".
func (s *Server) URL() string { return s.server.URL() }

func (s *Server) Port() int { return s.server.Port() }
