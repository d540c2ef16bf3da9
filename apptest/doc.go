// Package apptest simulates HTTP request/response cycles against an in-process webapp
// application.
//
// A Harness creates a fresh application for each WithApplication or WithServer block and stops
// it when the block exits, however it exits. Inside the block, the *App handle dispatches
// FakeRequests either through the route table (Dispatch, RouteAndDispatch) or directly to a
// named action (DispatchAction). The Result of an action that deferred its work stays pending
// until Await is called; its accessors refuse to answer until then.
//
//	h, _ := apptest.New(sampleapp.New)
//	err := h.WithApplication(nil, func(app *apptest.App) {
//		req, _ := apptest.NewRequest("GET", "/Kiki")
//		result, _ := app.RouteAndDispatch(req)
//		status, _ := result.Value().Status()
//		...
//	})
package apptest
