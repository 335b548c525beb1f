package dcmobile

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"dcinside-mobile/internal/components/telemetry"

	_ "embed"
)

//go:embed testdata/login.html
var loginPageHTML []byte

//go:embed testdata/write.html
var writePageHTML []byte

//go:embed testdata/view_member.html
var memberViewHTML []byte

//go:embed testdata/view_guest.html
var guestViewHTML []byte

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Form   url.Values
	Files  []string
}

func (r recorded) has(field string) bool {
	if _, ok := r.Form[field]; ok {
		return true
	}
	for _, f := range r.Files {
		if f == field {
			return true
		}
	}
	return false
}

// mockForum is an in-process stand-in for every origin of the forum.
type mockForum struct {
	t      testing.TB
	srv    *httptest.Server
	mu     sync.Mutex
	seen   []recorded
	routes map[string]http.HandlerFunc
}

func newMockForum(t testing.TB) *mockForum {
	f := &mockForum{t: t, routes: map[string]http.HandlerFunc{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *mockForum) serve(w http.ResponseWriter, r *http.Request) {
	rec := recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	}
	if r.Method == http.MethodPost {
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				rec.Form = url.Values(r.MultipartForm.Value)
				for name := range r.MultipartForm.File {
					rec.Files = append(rec.Files, name)
				}
			}
		} else if err := r.ParseForm(); err == nil {
			rec.Form = r.PostForm
		}
	}

	f.mu.Lock()
	f.seen = append(f.seen, rec)
	handler, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

func (f *mockForum) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *mockForum) page(path string, body []byte) {
	f.handle(http.MethodGet, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		_, _ = w.Write(body)
	})
}

func (f *mockForum) reply(method, path, contentType, body string) {
	f.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	})
}

func (f *mockForum) json(path, body string) {
	f.reply(http.MethodPost, path, "application/json", body)
}

// accessKeys answers the access endpoint with a key per token_verify tag.
func (f *mockForum) accessKeys(keys map[VerifyTag]string) {
	f.handle(http.MethodPost, "/ajax/access", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		key, ok := keys[VerifyTag(r.PostForm.Get("token_verify"))]
		if !ok {
			_, _ = w.Write([]byte(`{"result":false}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"Block_key":%q}`, key)
	})
}

func (f *mockForum) requests() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.seen...)
}

func (f *mockForum) calls(method, path string) []recorded {
	var out []recorded
	for _, r := range f.requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *mockForum) url(path string) string {
	return f.srv.URL + path
}

func (f *mockForum) endpoints() Endpoints {
	return Endpoints{Mobile: f.srv.URL, Sign: f.srv.URL, Upload: f.srv.URL}
}

func (f *mockForum) client(t testing.TB) *Client {
	return NewClient(ClientOptions{
		Endpoints:        f.endpoints(),
		RetryWaitTime:    time.Millisecond,
		RetryMaxWaitTime: 5 * time.Millisecond,
	}, telemetry.NewTestAPI(t))
}
