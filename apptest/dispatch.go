package apptest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/launchdarkly/app-test-harness/framework/opt"
	"github.com/launchdarkly/app-test-harness/webapp"
)

// Dispatch looks the request up in the route table and runs the action it routes to. If no route
// matches, including when the path matches but the method does not, it returns an empty Maybe
// and no error.
//
// The Result may be pending, if the action deferred its work; Dispatch does not wait for it.
func (a *App) Dispatch(req FakeRequest) (opt.Maybe[*Result], error) {
	httpReq, err := req.HTTPRequest(context.Background(), a.app.Sessions())
	if err != nil {
		return opt.None[*Result](), err
	}
	ref, ok := a.app.Match(httpReq)
	if !ok {
		a.logger.Printf("%s [%s]: no route", req, req.ID())
		return opt.None[*Result](), nil
	}
	result, err := a.invoke(ref, req, httpReq)
	if err != nil {
		return opt.None[*Result](), err
	}
	return opt.Some(result), nil
}

// RouteAndDispatch is the same as Dispatch, but also waits for an async result to complete,
// using the Harness result timeout. The returned error is a *DispatchError if the action failed,
// or a *ResultTimeoutError if it did not complete in time.
func (a *App) RouteAndDispatch(req FakeRequest) (opt.Maybe[*Result], error) {
	maybeResult, err := a.Dispatch(req)
	if err != nil || !maybeResult.IsDefined() {
		return maybeResult, err
	}
	if err := maybeResult.Value().Await(a.timeout); err != nil {
		return opt.None[*Result](), err
	}
	return maybeResult, nil
}

// DispatchAction runs a named action directly, without looking at the route table. The
// parameters of the ActionRef are passed to the action as route parameters. If no request is
// given, DefaultRequest() is used.
//
// Like RouteAndDispatch, it waits for an async result to complete.
func (a *App) DispatchAction(ref webapp.ActionRef, req ...FakeRequest) (*Result, error) {
	r := DefaultRequest()
	if len(req) > 0 {
		r = req[0]
	}
	httpReq, err := r.HTTPRequest(context.Background(), a.app.Sessions())
	if err != nil {
		return nil, err
	}
	result, err := a.invoke(ref, r, httpReq)
	if err != nil {
		return nil, err
	}
	if err := result.Await(a.timeout); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *App) invoke(ref webapp.ActionRef, req FakeRequest, httpReq *http.Request) (*Result, error) {
	a.logger.Printf("%s [%s]: invoking %s", req, req.ID(), ref)
	p, err := a.app.Invoke(context.Background(), ref, httpReq)
	if err != nil {
		return nil, fmt.Errorf("could not dispatch %s: %w", req, err)
	}
	return newResult(ref.Name, p), nil
}
