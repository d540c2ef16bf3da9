package browser

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/app-test-harness/framework"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Index</title></head>
<body>
  <h1 id="title">Hello   Guest</h1>
  <ul>
    <li class="item first">one</li>
    <li class="item">two <b>bold</b></li>
  </ul>
  <a href="/Coco">Coco</a>
  <span>no link</span>
</body>
</html>`

func testHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(indexPage))
		case "/old":
			http.Redirect(w, r, "/Coco", http.StatusSeeOther)
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "visited", Value: "yes", Path: "/"})
			_, _ = w.Write([]byte(`<p id="done">set</p>`))
		case "/echo-header":
			_, _ = w.Write([]byte(`<p id="h">` + r.Header.Get("X-Test") + `</p>`))
		default:
			c, _ := r.Cookie("visited")
			visited := ""
			if c != nil {
				visited = c.Value
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<h1 id="title">Hello ` + r.URL.Path[1:] + `</h1><p id="visited">` + visited + `</p>`))
		}
	})
	return mux
}

func TestBrowserNavigatesAndQueries(t *testing.T) {
	httphelpers.WithServer(testHandler(), func(server *httptest.Server) {
		b, err := New()
		require.NoError(t, err)
		require.NoError(t, b.GoTo(server.URL))

		assert.Equal(t, 200, b.Status())
		assert.Equal(t, "Index", b.Title())
		assert.Equal(t, []string{"Hello Guest"}, b.Find("#title").Texts())
		assert.Equal(t, "Hello Guest", b.Find("h1#title").Text(0))
		assert.Equal(t, 2, b.Find("li").Count())
		assert.Equal(t, []string{"one", "two bold"}, b.Find("li.item").Texts())
		assert.Equal(t, 1, b.Find(".first").Count())
		assert.Equal(t, []string{"bold"}, b.Find("ul li b").Texts())
		href, ok := b.Find(`a[href^="/"]`).Attr("href")
		assert.True(t, ok)
		assert.Equal(t, "/Coco", href)
		assert.Equal(t, 0, b.Find("p").Count())
		assert.Equal(t, "", b.Find("li").Text(5))

		require.NoError(t, b.Find("a").Click())
		assert.Equal(t, server.URL+"/Coco", b.URL())
		assert.Equal(t, "Hello Coco", b.Find("#title").Text(0))
	})
}

func TestBrowserFollowsRedirects(t *testing.T) {
	httphelpers.WithServer(testHandler(), func(server *httptest.Server) {
		b, err := New()
		require.NoError(t, err)
		require.NoError(t, b.GoTo(server.URL+"/old"))
		assert.Equal(t, server.URL+"/Coco", b.URL())
	})
}

func TestBrowserResolvesRelativeURLs(t *testing.T) {
	httphelpers.WithServer(testHandler(), func(server *httptest.Server) {
		b, err := New()
		require.NoError(t, err)
		assert.Error(t, b.GoTo("/Kiki"), "relative URL with no current page")

		require.NoError(t, b.GoTo(server.URL+"/"))
		require.NoError(t, b.GoTo("Kiki"))
		assert.Equal(t, server.URL+"/Kiki", b.URL())
	})
}

func TestBrowserKeepsCookies(t *testing.T) {
	httphelpers.WithServer(testHandler(), func(server *httptest.Server) {
		b, err := New()
		require.NoError(t, err)
		require.NoError(t, b.GoTo(server.URL+"/set"))
		require.NoError(t, b.GoTo(server.URL+"/again"))
		assert.Equal(t, "yes", b.Find("#visited").Text(0))
		require.Len(t, b.Cookies(), 1)
		assert.Equal(t, "visited", b.Cookies()[0].Name)
	})
}

func TestBrowserOptions(t *testing.T) {
	_, err := New(Timeout(0))
	assert.Error(t, err)

	logger := &framework.CapturingLogger{}
	httphelpers.WithServer(testHandler(), func(server *httptest.Server) {
		b, err := New(Header("X-Test", "abc"), Logger(logger), Timeout(time.Second))
		require.NoError(t, err)
		require.NoError(t, b.GoTo(server.URL+"/echo-header"))
		assert.Equal(t, "abc", b.Find("#h").Text(0))
	})
	assert.True(t, logger.Output().Contains("/echo-header (status 200)"))
}

func TestClickErrors(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	assert.Equal(t, ErrNoPage, b.Find("a").Click())
	assert.Equal(t, ErrNoPage, b.Find("a").Err())
	assert.Equal(t, "", b.URL())

	httphelpers.WithServer(testHandler(), func(server *httptest.Server) {
		require.NoError(t, b.GoTo(server.URL))
		assert.Error(t, b.Find("button").Click())
		assert.Error(t, b.Find("span").Click())
		assert.Error(t, b.Find("div > a").Click())
		assert.Error(t, b.Find("a[").Err())
		assert.Error(t, b.Find("a[").Click())
		assert.Equal(t, server.URL, b.URL(), "failed clicks should not navigate")
	})
}
