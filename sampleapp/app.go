// Package sampleapp is the application that the bundled integration suite runs against: a
// greeting page, a configuration lookup, a JSON echo, an async action, and a validated form.
package sampleapp

import (
	"embed"
	"fmt"

	"github.com/launchdarkly/app-test-harness/webapp"
)

//go:embed views/*.html
var views embed.FS

//go:embed conf/application.yaml
var defaultConfigData []byte

// Routes is the route table, in matching order.
var Routes = []webapp.RouteDef{ //nolint:gochecknoglobals
	{Method: "GET", Pattern: "/", Action: "Application.index"},
	{Method: "GET", Pattern: "/key", Action: "Application.key"},
	{Method: "POST", Pattern: "/json", Action: "Application.getIdenticalJson"},
	{Method: "GET", Pattern: "/async", Action: "Application.async"},
	{Method: "POST", Pattern: "/register", Action: "Application.register"},
	{Method: "GET", Pattern: "/:name", Action: "Application.index"},
}

// DefaultConfig returns the configuration bundled with the application.
func DefaultConfig() (webapp.Config, error) {
	config, err := webapp.ParseConfig(defaultConfigData)
	if err != nil {
		return webapp.Config{}, fmt.Errorf("bundled configuration is invalid: %w", err)
	}
	return config, nil
}

// New builds an application instance. It is a webapp.Factory.
func New(config webapp.Config) (*webapp.Application, error) {
	app := webapp.NewApplication(config)
	actions := map[string]webapp.Action{
		"Application.index":            index,
		"Application.key":              key,
		"Application.getIdenticalJson": getIdenticalJSON,
		"Application.async":            async,
		"Application.register":         register,
	}
	for name, action := range actions {
		if err := app.Action(name, action); err != nil {
			return nil, err
		}
	}
	for _, r := range Routes {
		if err := app.Route(r.Method, r.Pattern, r.Action); err != nil {
			return nil, err
		}
	}
	if err := app.Views(views, "views/*.html"); err != nil {
		return nil, err
	}
	return app, nil
}
