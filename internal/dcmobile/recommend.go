package dcmobile

import (
	"context"
	"strconv"
	"strings"
)

// Recommend upvotes a post. The reply must be JSON; anything else is a failure
// carrying the body as its message.
func (c *Client) Recommend(ctx context.Context, req RecommendRequest) (MutationResult, error) {
	if err := validateTarget(req.GalleryID, req.PostID); err != nil {
		return MutationResult{}, validationFailure(OpRecommend, err)
	}
	session := req.Session
	if session == nil {
		var err error
		session, err = c.NewSession()
		if err != nil {
			return MutationResult{}, err
		}
	}

	ctx, r, err := c.begin(ctx, OpRecommend, session)
	if err != nil {
		return MutationResult{}, err
	}
	var result MutationResult
	defer func() { r.end(&result) }()

	ex, page, err := c.viewPage(ctx, r, req.GalleryID, req.PostID)
	if err != nil {
		return result, err
	}
	tokens := ex.Tokens()

	form := NewForm().
		Set("id", req.GalleryID).
		Set("no", strconv.FormatInt(req.PostID, 10))
	ep := c.opts.Endpoints
	res, err := session.submit(ctx, tokens, page.URL, ep.Recommend(), urlencoded(ajaxFor(tokens, ep.Mobile), form))
	if err != nil {
		return result, r.fatal("submit", err)
	}

	result = MutationResult{
		HTTPStatus: res.Status,
		RawPayload: string(res.Body),
		Signal:     SignalResult,
	}
	obj, ok := decodeObject(res.Body)
	if !ok {
		result.Message = strings.TrimSpace(string(res.Body))
		return result, nil
	}
	result.Success = truthy(obj["result"])
	if cause, ok := obj["cause"].(string); ok {
		result.Message = cause
	}
	return result, nil
}
