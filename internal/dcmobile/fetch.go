package dcmobile

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Page is the final response of a request after its redirects were followed.
type Page struct {
	Status int
	Header http.Header
	Body   []byte
	// URL is the location the body was served from.
	URL string
	// Hops is the number of redirects followed to reach URL.
	Hops int
}

func (p *Page) Text() string {
	return string(p.Body)
}

type httpStatusError struct {
	status int
	url    string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.status, e.url)
}

// hop describes one request of a redirect chain.
type hop struct {
	method   string
	url      string
	headers  map[string]string
	form     map[string]string
	mutating bool
}

func (h hop) send(ctx context.Context, s *Session) (*resty.Response, error) {
	req := s.request(ctx, h.mutating).SetHeaders(h.headers)
	if h.form != nil {
		req.SetFormData(h.form)
	}
	return req.Execute(h.method, h.url)
}

// Fetch GETs target and follows its redirects, returning the final page.
func (s *Session) Fetch(ctx context.Context, target string, headers map[string]string) (*Page, error) {
	first := hop{method: http.MethodGet, url: target, headers: navigateHeaders.merge(headers)}
	res, err := first.send(ctx, s)
	if err != nil {
		return nil, err
	}
	return s.follow(ctx, res, first)
}

// follow walks the redirect chain starting at res, which answered prev.
// Redirects are replayed as GET, except 307/308 which repeat the method and
// body of the request they answer.
func (s *Session) follow(ctx context.Context, res *resty.Response, prev hop) (*Page, error) {
	current := prev.url
	for hops := 0; ; hops++ {
		location := res.Header().Get("Location")
		if !isRedirect(res.StatusCode()) || location == "" {
			return &Page{
				Status: res.StatusCode(),
				Header: res.Header(),
				Body:   res.Body(),
				URL:    current,
				Hops:   hops,
			}, nil
		}
		if hops >= s.maxRedirects {
			return nil, fmt.Errorf("%w: more than %d hops from %s", ErrTooManyRedirects, s.maxRedirects, prev.url)
		}

		next, err := resolveLocation(current, location)
		if err != nil {
			return nil, err
		}

		replay := hop{method: http.MethodGet, url: next, headers: navigateHeaders.with("Referer", current)}
		status := res.StatusCode()
		if (status == http.StatusTemporaryRedirect || status == http.StatusPermanentRedirect) &&
			prev.method != http.MethodGet {
			replay.method = prev.method
			replay.form = prev.form
			replay.headers = prev.headers
			replay.mutating = prev.mutating
		}

		s.tel.ReportDebug("redirect", s.ID, status, next)
		res, err = replay.send(ctx, s)
		if err != nil {
			return nil, err
		}
		prev = replay
		current = next
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

func resolveLocation(base, location string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	l, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return "", err
	}
	return b.ResolveReference(l).String(), nil
}
