package harness

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/launchdarkly/app-test-harness/framework"
	"github.com/launchdarkly/app-test-harness/framework/helpers"
)

const (
	httpListenerTimeout = time.Second * 10
	shutdownTimeout     = time.Second * 5

	// probeHeader marks the HEAD requests that StartServer uses to detect that the listener is up.
	// They are answered here and never reach the application's handler.
	probeHeader = "X-Harness-Probe"
)

var serverErrorLogExclusions = []*regexp.Regexp{ //nolint:gochecknoglobals
	regexp.MustCompile(`use of closed network connection`),
	regexp.MustCompile(`TLS handshake error`),
}

// Server is a real HTTP listener serving an application handler on a local port.
//
// It is created by StartServer and stays up until Close is called. Close is safe to call more
// than once; only the first call has any effect.
type Server struct {
	server    *http.Server
	listener  net.Listener
	port      int
	logger    framework.Logger
	closeOnce sync.Once
	closeErr  error
	served    chan struct{}
}

// StartServer binds a listener on the specified port (0 picks any free port), starts serving the
// handler on it, and does not return until the listener is definitely answering requests.
func StartServer(port int, handler http.Handler, logger framework.Logger) (*Server, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("could not listen on port %d: %w", port, err)
	}
	s := &Server{
		listener: listener,
		port:     listener.Addr().(*net.TCPAddr).Port,
		logger:   logger,
		served:   make(chan struct{}),
	}
	s.server = &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead && r.Header.Get(probeHeader) != "" {
				w.WriteHeader(200)
				return
			}
			handler.ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 10 * time.Second, // arbitrary but non-infinite timeout to avoid Slowloris Attack
		ErrorLog:          log.New(newFilteredWriter(loggerWriter{logger}, serverErrorLogExclusions), "", 0),
	}
	go func() {
		defer close(s.served)
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Server on port %d stopped unexpectedly: %s", s.port, err)
		}
	}()

	// Wait till the server is definitely listening for requests before we run any tests
	if !helpers.PollForSpecificResultValue(s.probe, httpListenerTimeout, time.Millisecond*10, true) {
		_ = s.Close()
		return nil, fmt.Errorf("could not detect own listener at %s", s.URL())
	}
	logger.Printf("Server listening at %s", s.URL())
	return s, nil
}

// Port returns the port that the server is actually listening on.
func (s *Server) Port() int { return s.port }

// URL returns the base URL of the server, without a trailing slash.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// Close stops the server and releases its port. Requests that are already in progress are
// given a few seconds to finish.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.closeErr = fmt.Errorf("error shutting down server on port %d: %w", s.port, err)
			_ = s.server.Close()
		}
		<-s.served
		s.logger.Printf("Server on port %d closed", s.port)
	})
	return s.closeErr
}

func (s *Server) probe() bool {
	req, err := http.NewRequest(http.MethodHead, s.URL(), nil)
	if err != nil {
		return false
	}
	req.Header.Set(probeHeader, "1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == 200
}
