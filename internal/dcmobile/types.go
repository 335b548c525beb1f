package dcmobile

import (
	"context"
	"fmt"
)

// MutationResult is the interpreted outcome of a mutation.
type MutationResult struct {
	Success    bool
	Message    string
	CreatedID  string
	HTTPStatus int
	RawPayload string

	RedirectURL string
	Signal      Signal
}

// LoginResult is the outcome of a login. On success Session holds the
// authenticated cookies and is the only credential needed afterwards.
type LoginResult struct {
	MutationResult

	Session       *Session
	FinalURL      string
	RedirectCount int
	Cookies       []StoredCookie
	Preflight     AccessReply
}

// MutationRequest is one of LoginRequest, PostCreateRequest,
// PostDeleteRequest, CommentCreateRequest, CommentDeleteRequest and
// RecommendRequest.
type MutationRequest interface {
	Operation() Operation
}

type LoginRequest struct {
	Code     string
	Password string
	// KeepLoggedIn sends loginCash=on. The zero value asks for a login that
	// ends with the browser session; callers wanting a persistent login must
	// set it.
	KeepLoggedIn bool
	// ReturnURL defaults to the mobile origin.
	ReturnURL string
	// Session receives the login cookies. A new session is created when nil.
	Session *Session
}

type PostCreateRequest struct {
	GalleryID string
	Subject   string
	Content   string
	// HeadText is a head text id or the label of one of the board's head texts.
	HeadText string
	Identity Identity
	// UseGallNickname overrides the gallery nickname switch when set.
	UseGallNickname *bool
	ExtraFields     map[string]string
}

type PostDeleteRequest struct {
	GalleryID string
	PostID    int64
	Identity  Identity
}

type CommentCreateRequest struct {
	GalleryID   string
	PostID      int64
	Content     string
	Identity    Identity
	CaptchaCode string
	// Solver is asked once for a code when the page demands a captcha and
	// CaptchaCode is empty.
	Solver CaptchaSolver
}

type CommentDeleteRequest struct {
	GalleryID string
	PostID    int64
	CommentID int64
	Identity  Identity
}

type RecommendRequest struct {
	GalleryID string
	PostID    int64
	// Session is used when set, otherwise an ephemeral one is created.
	Session *Session
}

func (LoginRequest) Operation() Operation         { return OpLogin }
func (PostCreateRequest) Operation() Operation    { return OpPostCreate }
func (PostDeleteRequest) Operation() Operation    { return OpPostDelete }
func (CommentCreateRequest) Operation() Operation { return OpCommentCreate }
func (CommentDeleteRequest) Operation() Operation { return OpCommentDelete }
func (RecommendRequest) Operation() Operation     { return OpRecommend }

// CaptchaChallenge is what a solver needs to answer a captcha.
type CaptchaChallenge struct {
	GalleryID  string
	PostID     int64
	CaptchaKey string
	ImageURL   string
	// Session is the session the image must be downloaded with.
	Session *Session
}

type CaptchaSolver interface {
	SolveCaptcha(ctx context.Context, challenge CaptchaChallenge) (string, error)
}

type CaptchaSolverFunc func(ctx context.Context, challenge CaptchaChallenge) (string, error)

func (f CaptchaSolverFunc) SolveCaptcha(ctx context.Context, challenge CaptchaChallenge) (string, error) {
	return f(ctx, challenge)
}

// Execute runs any mutation request. Login results are flattened into their
// MutationResult.
func (c *Client) Execute(ctx context.Context, req MutationRequest) (MutationResult, error) {
	switch r := req.(type) {
	case LoginRequest:
		res, err := c.Login(ctx, r)
		if err != nil {
			return MutationResult{}, err
		}
		return res.MutationResult, nil
	case PostCreateRequest:
		return c.CreatePost(ctx, r)
	case PostDeleteRequest:
		return c.DeletePost(ctx, r)
	case CommentCreateRequest:
		return c.CreateComment(ctx, r)
	case CommentDeleteRequest:
		return c.DeleteComment(ctx, r)
	case RecommendRequest:
		return c.Recommend(ctx, r)
	}
	return MutationResult{}, fmt.Errorf("%w: unsupported request %T", ErrInvalidRequest, req)
}
