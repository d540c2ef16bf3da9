package webapp

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
)

// ServeHTTP routes and runs a real HTTP request, waiting for an async result to complete before
// writing the response.
func (a *Application) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ref, ok := a.Match(req)
	if !ok {
		a.writeResult(w, NotFound(fmt.Sprintf("Action not found: %s %s", req.Method, req.URL.Path)))
		return
	}
	p, err := a.Invoke(req.Context(), ref, req)
	if err != nil {
		a.loggers.Errorf("Could not invoke %s: %s", ref, err)
		a.writeResult(w, InternalServerError(err.Error()))
		return
	}
	result, err := p.Await(req.Context())
	if err != nil {
		p.Cancel()
		a.loggers.Errorf("Action %s failed: %s", ref, err)
		a.writeResult(w, InternalServerError(fmt.Sprintf("Execution exception in %s", ref.Name)))
		return
	}
	a.writeResult(w, result)
}

func (a *Application) writeResult(w http.ResponseWriter, result Result) {
	for k, vv := range result.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if ct := result.contentTypeHeader(); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	for _, c := range result.Cookies {
		http.SetCookie(w, c)
	}
	if len(result.Session) != 0 || result.SessionCleared {
		cookie, err := a.sessions.SessionCookie(result.Session)
		if err != nil {
			a.loggers.Errorf("Could not encode session: %s", err)
		} else {
			http.SetCookie(w, cookie)
		}
	}
	if result.Flash != nil {
		http.SetCookie(w, a.sessions.FlashCookie(result.Flash))
	}
	status := result.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(result.Body)
}

// Handler returns the http.Handler to serve the application with. If the configuration lists
// CORS origins, the application is wrapped in a CORS handler that allows them.
func (a *Application) Handler() http.Handler {
	if len(a.config.CORSAllowedOrigins) == 0 {
		return a
	}
	c := cors.New(cors.Options{
		AllowedOrigins: a.config.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(a)
}
