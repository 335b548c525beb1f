package dcmobile

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// submit spends tokens on behalf of pageURL and sends the one request of an
// operation that changes server state. It is never retried.
func (s *Session) submit(ctx context.Context, tokens *Tokens, pageURL, target string, prepare func(*resty.Request)) (Response, error) {
	if err := tokens.Spend(pageURL); err != nil {
		return Response{}, err
	}

	req := s.request(ctx, true)
	prepare(req)
	res, err := req.Post(target)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Status: res.StatusCode(),
		Header: res.Header(),
		Body:   res.Body(),
		URL:    target,
	}, nil
}

// urlencoded prepares a form post with the given headers.
func urlencoded(headers headerSet, form *Form) func(*resty.Request) {
	return func(req *resty.Request) {
		req.SetHeaders(headers).
			SetHeader("Content-Type", formContentType).
			SetBody(form.Encode())
	}
}
