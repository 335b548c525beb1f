package dcmobile

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// dcblockCookieRegex matches the long opaque cookie some environments
// authorize writes with instead of an access key in the response body.
var dcblockCookieRegex = regexp.MustCompile(`^\w{30,}$`)

// CreatePost writes a new post to a gallery.
func (c *Client) CreatePost(ctx context.Context, req PostCreateRequest) (MutationResult, error) {
	if err := validatePostCreate(req); err != nil {
		return MutationResult{}, validationFailure(OpPostCreate, err)
	}
	session, err := c.sessionFor(req.Identity)
	if err != nil {
		return MutationResult{}, err
	}

	ctx, r, err := c.begin(ctx, OpPostCreate, session)
	if err != nil {
		return MutationResult{}, err
	}
	var result MutationResult
	defer func() { r.end(&result) }()

	ep := c.opts.Endpoints
	board := ep.Board(req.GalleryID)
	if _, isMember := memberOf(req.Identity); isMember {
		c.warmUp(ctx, r, board)
	}

	page, err := session.Fetch(ctx, ep.WritePage(req.GalleryID), map[string]string{"Referer": board})
	if err != nil {
		return result, r.read("write-page", err)
	}
	if err := page.expectOK(); err != nil {
		return result, r.read("write-page", err)
	}
	ex, err := Extract(page.Body, page.URL, "#writeForm")
	if err != nil {
		return result, r.fatal("extract", err)
	}
	tokens := ex.Tokens()

	form := buildWriteForm(req, ex)

	access, err := session.access(ctx, ep.Access(), "", tokens, NewForm().Set("token_verify", string(VerifyWrite)))
	if err != nil {
		return result, r.read("access", err)
	}
	if access.Key != "" {
		form.Set("Block_key", access.Key)
	}

	filter, err := session.access(ctx, ep.WriteFilter(), "", tokens, NewForm().
		Set("subject", req.Subject).
		Set("memo", req.Content).
		Set("id", req.GalleryID).
		Set("mode", "write").
		Set("is_mini", "0").
		Set("is_person", "0"))
	if err != nil {
		return result, r.read("filter", err)
	}
	if filter.Key != "" {
		form.Set("Block_key", filter.Key)
	}

	if form.Get("dcblock") == "" {
		if value, ok := dcblockCookie(session, ep.Mobile); ok {
			form.Set("dcblock", value)
			form.SetDefault("Block_key", value)
		}
	}
	if form.Get("Block_key") == "" {
		return result, r.fatal("access", ErrMissingAccessKey)
	}
	tokens.AccessKey = form.Get("Block_key")

	res, err := session.submit(ctx, tokens, page.URL, ep.WriteSubmit(), func(rq *resty.Request) {
		rq.SetHeaders(navigateHeaders.with(
			"Referer", tokens.Page(),
			"x-csrf-token", tokens.CSRFToken,
		)).
			SetMultipartFormData(form.Map()).
			// the server rejects writes without a files part, even an empty one
			SetMultipartField("files", "", "application/octet-stream", bytes.NewReader(nil))
	})
	if err != nil {
		return result, r.fatal("submit", err)
	}

	result = InterpretWith(res, writePhrases)
	return result, nil
}

func validatePostCreate(req PostCreateRequest) error {
	if strings.TrimSpace(req.GalleryID) == "" {
		return invalid("gallery", "gallery id required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return invalid("subject", "subject required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return invalid("content", "content required")
	}
	return validateIdentity(req.Identity)
}

// buildWriteForm merges the scraped write form with the request.
func buildWriteForm(req PostCreateRequest, ex *Extraction) *Form {
	form := ex.Fields.Mutable()
	form.Set("id", req.GalleryID)
	form.SetDefault("route_id", req.GalleryID)
	form.Set("subject", req.Subject)
	form.Set("memo", req.Content)
	form.Set("headtext", resolveHeadText(req.HeadText, ex))
	if req.UseGallNickname != nil && form.Has("use_gall_nickname") {
		form.Set("use_gall_nickname", boolField(*req.UseGallNickname))
	}

	guest, isGuest := guestOf(req.Identity)
	if isGuest {
		applyGuestFields(form, guest)
	} else {
		form.Delete("password", "name")
	}

	for _, name := range ex.Honeypots {
		if strings.HasPrefix(name, "honey_") {
			form.Set("GEY3JWF", name)
			break
		}
	}

	form.Merge(req.ExtraFields)
	if !isGuest {
		form.Delete("password")
	}
	return form
}

func applyGuestFields(form *Form, guest Guest) {
	for key, value := range map[string]string{
		"name":          guest.Nickname,
		"password":      guest.Password,
		"gall_nickname": guest.Nickname,
	} {
		if form.Has(key) {
			form.Set(key, value)
		}
	}
	if form.Has("use_gall_nickname") {
		form.Set("use_gall_nickname", "0")
	}
	form.SetDefault("name", guest.Nickname)
	form.SetDefault("password", guest.Password)
}

func dcblockCookie(session *Session, origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	for _, c := range session.jar.Cookies(u) {
		if dcblockCookieRegex.MatchString(c.Name) {
			return c.Value, true
		}
	}
	return "", false
}

// warmUp visits the board like a browser would before writing. Its failure
// does not stop the operation.
func (c *Client) warmUp(ctx context.Context, r *run, board string) {
	_, err := r.session.Fetch(ctx, board, map[string]string{"Referer": c.opts.Endpoints.Mobile + "/"})
	if err != nil {
		r.tel.ReportDebug("warm-up failed", r.session.ID, err)
	}
}

// DeletePost removes a post. Guest posts are deleted with the guest password.
func (c *Client) DeletePost(ctx context.Context, req PostDeleteRequest) (MutationResult, error) {
	if err := validateTarget(req.GalleryID, req.PostID); err != nil {
		return MutationResult{}, validationFailure(OpPostDelete, err)
	}
	if err := validateIdentity(req.Identity); err != nil {
		return MutationResult{}, validationFailure(OpPostDelete, err)
	}
	session, err := c.sessionFor(req.Identity)
	if err != nil {
		return MutationResult{}, err
	}

	ctx, r, err := c.begin(ctx, OpPostDelete, session)
	if err != nil {
		return MutationResult{}, err
	}
	var result MutationResult
	defer func() { r.end(&result) }()

	ep := c.opts.Endpoints
	board := ep.Board(req.GalleryID)
	if _, isMember := memberOf(req.Identity); isMember {
		c.warmUp(ctx, r, board)
	}

	ex, page, err := c.viewPage(ctx, r, req.GalleryID, req.PostID)
	if err != nil {
		return result, err
	}
	tokens := ex.Tokens()

	key, err := session.acquireKey(ctx, tokens, VerifyPostDelete, nil)
	if err != nil {
		return result, r.read("access", err)
	}

	form := NewForm().
		Set("id", req.GalleryID).
		Set("no", strconv.FormatInt(req.PostID, 10)).
		Set("con_key", key)
	if guest, ok := guestOf(req.Identity); ok {
		form.Set("password", guest.Password)
	}

	res, err := session.submit(ctx, tokens, page.URL, ep.PostDelete(), urlencoded(ajaxFor(tokens, ""), form))
	if err != nil {
		return result, r.fatal("submit", err)
	}
	result = InterpretWith(res, deletePhrases)
	return result, nil
}

// viewPage fetches and extracts a post's view page.
func (c *Client) viewPage(ctx context.Context, r *run, galleryID string, postID int64) (*Extraction, *Page, error) {
	ep := c.opts.Endpoints
	page, err := r.session.Fetch(ctx, ep.Post(galleryID, postID), map[string]string{"Referer": ep.Board(galleryID)})
	if err != nil {
		return nil, nil, r.read("view-page", err)
	}
	if err := page.expectOK(); err != nil {
		return nil, nil, r.read("view-page", err)
	}
	ex, err := Extract(page.Body, page.URL, "")
	if err != nil {
		return nil, nil, r.fatal("extract", err)
	}
	return ex, page, nil
}

func validateTarget(galleryID string, postID int64) error {
	if strings.TrimSpace(galleryID) == "" {
		return invalid("gallery", "gallery id required")
	}
	if postID <= 0 {
		return invalid("post", "post id must be positive")
	}
	return nil
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
