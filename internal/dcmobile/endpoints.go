package dcmobile

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultMobileOrigin = "https://m.dcinside.com"
	DefaultSignOrigin   = "https://msign.dcinside.com"
	DefaultUploadOrigin = "https://mupload.dcinside.com"

	DefaultUserAgent = "Mozilla/5.0 (Linux; Android 10; SM-G973N) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.77 Mobile Safari/537.36"
)

// Endpoints holds the origins the client talks to. The hostnames are load-bearing
// for the live site; tests point every origin at a single httptest server.
type Endpoints struct {
	Mobile string
	Sign   string
	Upload string
	// CookieOrigins are additional origins inspected when collecting the
	// session's cookies.
	CookieOrigins []string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Mobile: DefaultMobileOrigin,
		Sign:   DefaultSignOrigin,
		Upload: DefaultUploadOrigin,
		CookieOrigins: []string{
			"https://gall.dcinside.com",
			"https://www.dcinside.com",
		},
	}
}

func (e Endpoints) withDefaults() Endpoints {
	def := DefaultEndpoints()
	if e.Mobile == "" {
		e.Mobile = def.Mobile
	}
	if e.Sign == "" {
		e.Sign = def.Sign
	}
	if e.Upload == "" {
		e.Upload = def.Upload
	}
	return e
}

func (e Endpoints) origins() []string {
	seen := map[string]bool{}
	var out []string
	for _, o := range append([]string{e.Mobile, e.Sign, e.Upload}, e.CookieOrigins...) {
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

func (e Endpoints) LoginPage(returnURL string) string {
	return fmt.Sprintf("%s/login?r_url=%s", e.Sign, url.QueryEscape(returnURL))
}

func (e Endpoints) LoginSubmit() string {
	return e.Sign + "/login"
}

func (e Endpoints) LoginAccess() string {
	return e.Sign + "/login/access"
}

func (e Endpoints) Board(galleryID string) string {
	return fmt.Sprintf("%s/board/%s", e.Mobile, url.PathEscape(galleryID))
}

func (e Endpoints) Post(galleryID string, postID int64) string {
	return fmt.Sprintf("%s/%s", e.Board(galleryID), strconv.FormatInt(postID, 10))
}

func (e Endpoints) WritePage(galleryID string) string {
	return fmt.Sprintf("%s/write/%s", e.Mobile, url.PathEscape(galleryID))
}

func (e Endpoints) Access() string {
	return e.Mobile + "/ajax/access"
}

func (e Endpoints) WriteFilter() string {
	return e.Mobile + "/ajax/w_filter"
}

func (e Endpoints) WriteSubmit() string {
	return e.Upload + "/write_new.php"
}

func (e Endpoints) PostDelete() string {
	return e.Mobile + "/del/board"
}

func (e Endpoints) CommentWrite() string {
	return e.Mobile + "/ajax/comment-write"
}

func (e Endpoints) CommentDelete() string {
	return e.Mobile + "/del/comment"
}

func (e Endpoints) Recommend() string {
	return e.Mobile + "/bestcontent/recommend"
}

// CaptchaImage builds the captcha image location for a gallery and captcha key.
func (e Endpoints) CaptchaImage(galleryID, captchaKey string) string {
	query := url.Values{}
	query.Set("id", galleryID)
	query.Set("dccode", captchaKey)
	query.Set("type", "C")
	return fmt.Sprintf("%s/captcha/code?%s", e.Mobile, query.Encode())
}
