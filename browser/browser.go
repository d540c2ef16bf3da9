// Package browser is a minimal remote browser driver for end-to-end checks against a running
// server. It fetches pages over HTTP, keeps cookies between requests, and answers DOM queries
// written as CSS selectors; it does not run scripts or apply styles.
package browser

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/launchdarkly/app-test-harness/framework"
	"github.com/launchdarkly/app-test-harness/framework/helpers"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const DefaultTimeout = time.Second * 10

// ErrNoPage is returned when a page is queried or clicked before GoTo has loaded one.
var ErrNoPage = errors.New("no page has been loaded")

type Config struct {
	Timeout time.Duration
	Logger  framework.Logger
	Header  http.Header
}

type Option = helpers.ConfigOption[Config]

// Timeout sets the limit for each page load.
func Timeout(timeout time.Duration) Option {
	return helpers.ConfigOptionFunc[Config](func(c *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("browser timeout must be positive, was %s", timeout)
		}
		c.Timeout = timeout
		return nil
	})
}

func Logger(logger framework.Logger) Option {
	return helpers.ConfigOptionFunc[Config](func(c *Config) error {
		c.Logger = logger
		return nil
	})
}

// Header adds a header to every request the browser makes.
func Header(name, value string) Option {
	return helpers.ConfigOptionFunc[Config](func(c *Config) error {
		if c.Header == nil {
			c.Header = make(http.Header)
		}
		c.Header.Add(name, value)
		return nil
	})
}

// Browser holds the current page. It is safe to use from multiple goroutines, but navigation is
// serialized.
type Browser struct {
	client  *http.Client
	config  Config
	current *url.URL
	status  int
	doc     *html.Node
	lock    sync.Mutex
}

func New(options ...Option) (*Browser, error) {
	config := Config{Timeout: DefaultTimeout, Logger: framework.NullLogger()}
	if err := helpers.ApplyOptions(&config, options...); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = framework.NullLogger()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Browser{
		client: &http.Client{Jar: jar, Timeout: config.Timeout},
		config: config,
	}, nil
}

// GoTo loads a page. A relative URL is resolved against the current page. Redirects are
// followed, and URL then reports where they ended. A page with an error status is still loaded;
// Status reports the status.
func (b *Browser) GoTo(target string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.goTo(target)
}

func (b *Browser) goTo(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", target, err)
	}
	if b.current != nil {
		u = b.current.ResolveReference(u)
	}
	if !u.IsAbs() {
		return fmt.Errorf("cannot load relative URL %q with no current page", target)
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	for k, vv := range b.config.Header {
		req.Header[k] = append([]string(nil), vv...)
	}
	req.Header.Set("Accept", "text/html")
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	doc, err := parseDocument(data)
	if err != nil {
		return fmt.Errorf("could not parse page at %s: %w", resp.Request.URL, err)
	}
	b.current, b.status, b.doc = resp.Request.URL, resp.StatusCode, doc
	b.config.Logger.Printf("Loaded %s (status %d)", b.current, b.status)
	return nil
}

// URL returns the address of the current page, or "" if there is none.
func (b *Browser) URL() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.current == nil {
		return ""
	}
	return b.current.String()
}

// Status returns the HTTP status of the current page, or 0 if there is none.
func (b *Browser) Status() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.status
}

// Title returns the text of the page's title element.
func (b *Browser) Title() string {
	return b.Find("title").Text(0)
}

// Find returns the elements of the current page that match the CSS selector, in document order.
// A selection with an invalid selector, or made when no page is loaded, is empty and reports the
// problem from Err and Click.
func (b *Browser) Find(selector string) Selection {
	sel, err := compileSelector(selector)
	if err != nil {
		return Selection{browser: b, selector: selector, err: err}
	}
	b.lock.Lock()
	doc := b.doc
	b.lock.Unlock()
	if doc == nil {
		return Selection{browser: b, selector: selector, err: ErrNoPage}
	}
	return Selection{browser: b, selector: selector, nodes: cascadia.QueryAll(doc, sel)}
}

// Cookies returns the cookies the browser would send to the current page.
func (b *Browser) Cookies() []*http.Cookie {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.current == nil {
		return nil
	}
	return b.client.Jar.Cookies(b.current)
}
