package dcmobile

import (
	"bytes"
	"context"
	"net/http"

	"dcinside-mobile/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	loginFailedMessage     = "아이디 또는 비밀번호가 올바르지 않습니다."
	preflightFailedMessage = "로그인 사전 검증 단계에서 실패했습니다."
	noLoginCookieMessage   = "로그인 최종 단계에서 인증 쿠키를 받지 못했습니다."
)

// LoginCookies are the cookies whose presence proves a member login.
var LoginCookies = []string{"dc_m_login", "m_dcinside", "remember_secret"}

// Login signs a member in. Failure to authenticate is reported through
// LoginResult.Success; errors are reserved for protocol and transport faults.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if req.Code == "" {
		return LoginResult{}, validationFailure(OpLogin, invalid("code", "code required"))
	}
	if req.Password == "" {
		return LoginResult{}, validationFailure(OpLogin, invalid("password", "password required"))
	}
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = c.opts.Endpoints.Mobile
	}

	session := req.Session
	if session == nil {
		var err error
		session, err = c.NewSession()
		if err != nil {
			return LoginResult{}, err
		}
	}

	ctx, r, err := c.begin(ctx, OpLogin, session)
	if err != nil {
		return LoginResult{}, err
	}
	result := LoginResult{Session: session}
	defer func() { r.end(&result.MutationResult) }()

	ep := c.opts.Endpoints
	page, err := session.Fetch(ctx, ep.LoginPage(returnURL), map[string]string{"Referer": ep.Mobile})
	if err != nil {
		return result, r.read("login-page", err)
	}
	if err := page.expectOK(); err != nil {
		return result, r.read("login-page", err)
	}

	ex, err := Extract(page.Body, page.URL, "")
	if err != nil {
		return result, r.fatal("extract", err)
	}
	tokens := ex.Tokens()
	conKey := ex.ByID("conKey")
	if conKey == "" {
		return result, r.fatal("extract", ErrMissingAccessKey)
	}
	if v := ex.ByID("r_url"); v != "" {
		returnURL = v
	}
	tokens.ReturnURL = returnURL
	tokens.FormToken = ex.Fields.Get("_token")
	tokens.AccessKey = conKey

	preflight, err := session.access(ctx, ep.LoginAccess(), ep.Sign, tokens, NewForm().
		Set("token_verify", string(VerifyLogin)).
		Set("conKey", conKey).
		Set("code", req.Code).
		Set("randcode", "undefined"))
	if err != nil {
		return result, r.read("preflight", err)
	}
	result.Preflight = preflight
	if preflight.Result != nil && !*preflight.Result {
		result.Message = preflight.Message
		if result.Message == "" {
			result.Message = preflightFailedMessage
		}
		result.RawPayload = preflight.Body
		return result, nil
	}
	// only Block_key rotates the login key
	if key, ok := preflight.Fields["Block_key"].(string); ok && key != "" {
		tokens.AccessKey = key
	}

	loginCash := ""
	if req.KeepLoggedIn {
		loginCash = "on"
	}
	formToken := tokens.FormToken
	if formToken == "" {
		formToken = tokens.CSRFToken
	}
	form := NewForm().
		Set("code", req.Code).
		Set("password", req.Password).
		Set("loginCash", loginCash).
		Set("conKey", tokens.AccessKey).
		Set("r_url", tokens.ReturnURL).
		Set("_token", formToken)

	if err := tokens.Spend(page.URL); err != nil {
		return result, r.fatal("submit", err)
	}
	submit := hop{
		method: http.MethodPost,
		url:    ep.LoginSubmit(),
		headers: navigateHeaders.with(
			"Content-Type", "application/x-www-form-urlencoded",
			"Origin", ep.Sign,
			"sec-fetch-site", "same-origin",
			"Referer", tokens.Page(),
			"x-csrf-token", tokens.CSRFToken,
		),
		form:     form.Map(),
		mutating: true,
	}
	res, err := submit.send(ctx, session)
	if err != nil {
		return result, r.fatal("submit", err)
	}
	result.HTTPStatus = res.StatusCode()

	if res.StatusCode() == http.StatusOK {
		result.RawPayload = string(res.Body())
		result.Message = loginFailure(res.Body())
		result.Signal = SignalAlert
		result.FinalURL = submit.url
		return result, nil
	}

	final, err := session.follow(ctx, res, submit)
	if err != nil {
		return result, r.fatal("follow", err)
	}
	result.FinalURL = final.URL
	result.RedirectCount = final.Hops
	result.HTTPStatus = final.Status
	result.RawPayload = string(final.Body)
	result.Cookies = session.Cookies()
	result.Signal = SignalStatus

	result.Success = session.HasCookie(LoginCookies...) && final.Status >= 200 && final.Status < 400
	if !result.Success {
		result.Message = noLoginCookieMessage
	}
	r.tel.ReportDebug("login finished", session.ID, result.Success, final.URL, final.Hops)
	return result, nil
}

func loginFailure(body []byte) string {
	if looksLikeHTML(body) {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
			text := doc.Find(".login-alert, .login-error, #error_msg").First().Text()
			if msg := htmlutil.CleanText(text); msg != "" {
				return msg
			}
		}
	}
	if msg := alertMessage(body); msg != "" {
		return msg
	}
	return loginFailedMessage
}
