package sampleapp

import (
	"context"
	"net/http"

	"github.com/launchdarkly/app-test-harness/codec"
	"github.com/launchdarkly/app-test-harness/webapp"
)

const defaultName = "Guest"

func index(c *webapp.Context) (webapp.Result, error) {
	name := c.Param("name")
	if name == "" {
		name = defaultName
	}
	return c.Render("index.html", name)
}

func key(c *webapp.Context) (webapp.Result, error) {
	return webapp.OkText(c.Config().GetString("key", "secret")), nil
}

func getIdenticalJSON(c *webapp.Context) (webapp.Result, error) {
	body, err := c.BodyAsJSON()
	if err != nil {
		return webapp.BadRequest("Expecting JSON data"), nil //nolint:nilerr
	}
	return webapp.OkJSON(codec.Serialize(body)), nil
}

func async(c *webapp.Context) (webapp.Result, error) {
	return c.Async(func(ctx context.Context) (webapp.Result, error) {
		if err := ctx.Err(); err != nil {
			return webapp.Result{}, err
		}
		c.Response().SetHeader("header_test", "header_val")
		c.Response().SetCookie(&http.Cookie{Name: "cookie_test", Value: "cookie_val", Path: "/"})
		c.Session().Put("session_test", "session_val")
		c.Flash().Put("flash_test", "flash_val")
		return webapp.OkText("success"), nil
	}), nil
}

// register validates a form with a required "name" field. On failure the errors are returned as
// JSON, localized for the request's Accept-Language.
func register(c *webapp.Context) (webapp.Result, error) {
	form, err := c.Form()
	if err != nil {
		return webapp.BadRequest(err.Error()), nil //nolint:nilerr
	}
	if form.Require("name").HasErrors() {
		r := webapp.OkJSON(codec.Serialize(form.ErrorsAsJSON(c.Config().Messages, c.Lang())))
		r.Status = http.StatusBadRequest
		return r, nil
	}
	c.Session().Put("user", form.Get("name"))
	c.Flash().Put("success", c.Message("registered", form.Get("name")))
	path, err := c.Reverse(webapp.Ref("Application.index", "name", form.Get("name")))
	if err != nil {
		return webapp.Result{}, err
	}
	return webapp.Redirect(path), nil
}
