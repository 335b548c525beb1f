package dcmobile

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// commentState are the hidden inputs of the post view page that are sent back
// with a new comment.
var commentState = []string{
	"user_id",
	"board_id",
	"reple_id",
	"best_chk",
	"comment_no",
	"cpage",
	"gall_nickname",
	"use_gall_nickname",
	"comment_nick",
	"comment_pw",
}

// CreateComment writes a comment under a post. A page that demands a captcha
// while no code is at hand ends in a *CaptchaRequiredError.
func (c *Client) CreateComment(ctx context.Context, req CommentCreateRequest) (MutationResult, error) {
	if err := validateTarget(req.GalleryID, req.PostID); err != nil {
		return MutationResult{}, validationFailure(OpCommentCreate, err)
	}
	if strings.TrimSpace(req.Content) == "" {
		return MutationResult{}, validationFailure(OpCommentCreate, invalid("content", "content required"))
	}
	if err := validateIdentity(req.Identity); err != nil {
		return MutationResult{}, validationFailure(OpCommentCreate, err)
	}
	session, err := c.sessionFor(req.Identity)
	if err != nil {
		return MutationResult{}, err
	}

	ctx, r, err := c.begin(ctx, OpCommentCreate, session)
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

	captchaCode := req.CaptchaCode
	if ex.CaptchaKey != "" && captchaCode == "" {
		challenge := CaptchaChallenge{
			GalleryID:  req.GalleryID,
			PostID:     req.PostID,
			CaptchaKey: ex.CaptchaKey,
			ImageURL:   captchaImageFor(ex, c.opts.Endpoints, req.GalleryID),
			Session:    session,
		}
		if req.Solver != nil {
			captchaCode, err = req.Solver.SolveCaptcha(ctx, challenge)
			if err != nil {
				return result, r.fatal("captcha", err)
			}
		}
		if strings.TrimSpace(captchaCode) == "" {
			result.Message = "captcha required"
			return result, &CaptchaRequiredError{
				GalleryID:       challenge.GalleryID,
				PostID:          challenge.PostID,
				CaptchaKey:      challenge.CaptchaKey,
				CaptchaImageURL: challenge.ImageURL,
			}
		}
	}

	key, err := session.acquireKey(ctx, tokens, VerifyComment, nil)
	if err != nil {
		return result, r.read("access", err)
	}

	form := buildCommentForm(req, ex)
	form.Set("con_key", key)
	if ex.CaptchaKey != "" {
		form.Set("captcha_code", captchaCode)
		form.Set("rand_code", ex.CaptchaKey)
	}

	res, err := session.submit(ctx, tokens, page.URL, c.opts.Endpoints.CommentWrite(), urlencoded(ajaxFor(tokens, ""), form))
	if err != nil {
		return result, r.fatal("submit", err)
	}
	result = InterpretWith(res, plainPhrases)
	return result, nil
}

func buildCommentForm(req CommentCreateRequest, ex *Extraction) *Form {
	form := NewForm().
		Set("comment_memo", req.Content).
		Set("mode", "com_write").
		Set("id", req.GalleryID).
		Set("no", strconv.FormatInt(req.PostID, 10))
	for _, key := range commentState {
		if ex.Fields.Has(key) {
			form.Set(key, ex.Fields.Get(key))
		}
	}
	for _, name := range ex.Honeypots {
		form.Set(name, "1")
	}
	form.Set("subject", ex.Subject)

	if guest, ok := guestOf(req.Identity); ok {
		form.Set("comment_nick", guest.Nickname)
		form.Set("comment_pw", guest.Password)
		if form.Has("use_gall_nickname") {
			form.Set("use_gall_nickname", "0")
		}
	} else if form.Has("comment_pw") {
		form.Set("comment_pw", "")
	}
	return form
}

// DeleteComment removes a comment. Guest comments are deleted with the guest password.
func (c *Client) DeleteComment(ctx context.Context, req CommentDeleteRequest) (MutationResult, error) {
	if err := validateTarget(req.GalleryID, req.PostID); err != nil {
		return MutationResult{}, validationFailure(OpCommentDelete, err)
	}
	if req.CommentID <= 0 {
		return MutationResult{}, validationFailure(OpCommentDelete, invalid("comment", "comment id must be positive"))
	}
	if err := validateIdentity(req.Identity); err != nil {
		return MutationResult{}, validationFailure(OpCommentDelete, err)
	}
	session, err := c.sessionFor(req.Identity)
	if err != nil {
		return MutationResult{}, err
	}

	ctx, r, err := c.begin(ctx, OpCommentDelete, session)
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

	key, err := session.acquireKey(ctx, tokens, VerifyCommentDelete, nil)
	if err != nil {
		return result, r.read("access", err)
	}

	form := NewForm().
		Set("id", req.GalleryID).
		Set("no", strconv.FormatInt(req.PostID, 10)).
		Set("comment_no", strconv.FormatInt(req.CommentID, 10)).
		Set("con_key", key)
	if boardID := ex.Fields.Get("board_id"); boardID != "" {
		form.Set("board_id", boardID)
	}
	if ex.Fields.Has("best_chk") {
		form.Set("best_chk", ex.Fields.Get("best_chk"))
	}
	if guest, ok := guestOf(req.Identity); ok {
		form.Set("password", guest.Password)
	}

	res, err := session.submit(ctx, tokens, page.URL, c.opts.Endpoints.CommentDelete(), urlencoded(ajaxFor(tokens, ""), form))
	if err != nil {
		return result, r.fatal("submit", err)
	}
	result = InterpretWith(res, deletePhrases)
	return result, nil
}

// IsCaptchaRequired reports whether err asks the caller to solve a captcha.
func IsCaptchaRequired(err error) (*CaptchaRequiredError, bool) {
	var captchaErr *CaptchaRequiredError
	if errors.As(err, &captchaErr) {
		return captchaErr, true
	}
	return nil, false
}
