package dcmobile

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCSRFToken = errors.New("csrf token not found in page")
	ErrMissingAccessKey = errors.New("access key not found in response")
	ErrMissingForm      = errors.New("form not found in page")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrStaleTokens      = errors.New("stale tokens")
	ErrSessionBusy      = errors.New("session is already running a mutation")
	ErrInvalidRequest   = errors.New("invalid request")
)

type Operation string

const (
	OpLogin         Operation = "login"
	OpPostCreate    Operation = "post-create"
	OpPostDelete    Operation = "post-delete"
	OpCommentCreate Operation = "comment-create"
	OpCommentDelete Operation = "comment-delete"
	OpRecommend     Operation = "recommend"
)

// OpError reports which step of which operation failed.
type OpError struct {
	Op   Operation
	Step string
	Err  error

	// set for transport failures on steps that do not change server state
	retryable bool
}

func (e *OpError) Error() string {
	return fmt.Sprintf("dcmobile: %s: %s: %v", e.Op, e.Step, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Retryable reports whether restarting the whole operation may succeed.
// Only network failures on read steps qualify; a failed terminal POST never does.
func (e *OpError) Retryable() bool {
	return e.retryable
}

// IsRetryable reports whether err is an OpError that may be retried.
func IsRetryable(err error) bool {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Retryable()
	}
	return false
}

// ValidationError is caller input rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// CaptchaRequiredError is returned when a comment page demands a captcha and
// no code was supplied. Resolve the image and retry with CaptchaCode set.
type CaptchaRequiredError struct {
	GalleryID       string
	PostID          int64
	CaptchaKey      string
	CaptchaImageURL string
}

func (e *CaptchaRequiredError) Error() string {
	return fmt.Sprintf("dcmobile: captcha required (key %s, image %s)", e.CaptchaKey, e.CaptchaImageURL)
}
