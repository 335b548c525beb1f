package dcmobile

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// loginForum serves the login flow. finish decides what the last redirect
// target does.
func loginForum(t *testing.T, finish http.HandlerFunc) *mockForum {
	forum := newMockForum(t)
	forum.page("/login", loginPageHTML)
	forum.json("/login/access", `{"result":true,"Block_key":"rotated-key"}`)
	forum.handle(http.MethodPost, "/login", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login/finish", http.StatusFound)
	})
	forum.handle(http.MethodGet, "/login/finish", finish)
	forum.reply(http.MethodGet, "/", "text/html", "<html><body>home</body></html>")
	return forum
}

func TestLoginSuccess(t *testing.T) {
	forum := loginForum(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "dc_m_login", Value: "member-cookie", Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	})
	client := forum.client(t)

	res, err := client.Login(context.Background(), LoginRequest{Code: "user", Password: "secret", KeepLoggedIn: true})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, forum.url("/"), res.FinalURL)
	require.Equal(t, 2, res.RedirectCount)
	require.NotNil(t, res.Session)
	require.True(t, res.Session.HasCookie("dc_m_login"))
	require.Contains(t, res.Cookies, StoredCookie{Origin: forum.srv.URL, Name: "dc_m_login", Value: "member-cookie"})

	preflight := forum.calls(http.MethodPost, "/login/access")
	require.Len(t, preflight, 1)
	require.Equal(t, "dc_login", preflight[0].Form.Get("token_verify"))
	require.Equal(t, "page-con-key", preflight[0].Form.Get("conKey"))
	require.Equal(t, "user", preflight[0].Form.Get("code"))
	require.Equal(t, "undefined", preflight[0].Form.Get("randcode"))
	require.Equal(t, "csrf-login", preflight[0].Header.Get("x-csrf-token"))
	require.NotContains(t, preflight[0].Form, "password")

	submit := forum.calls(http.MethodPost, "/login")
	require.Len(t, submit, 1)
	form := submit[0].Form
	require.Equal(t, "user", form.Get("code"))
	require.Equal(t, "secret", form.Get("password"))
	require.Equal(t, "on", form.Get("loginCash"))
	require.Equal(t, "rotated-key", form.Get("conKey"))
	require.Equal(t, "https://m.dcinside.com/", form.Get("r_url"))
	require.Equal(t, "form-token", form.Get("_token"))
}

func TestLoginRequiresSessionCookie(t *testing.T) {
	forum := loginForum(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "anon", Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	})

	res, err := forum.client(t).Login(context.Background(), LoginRequest{Code: "user", Password: "secret"})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, http.StatusOK, res.HTTPStatus)
	require.Equal(t, noLoginCookieMessage, res.Message)
}

func TestLoginCookieNames(t *testing.T) {
	for _, name := range LoginCookies {
		t.Run(name, func(t *testing.T) {
			forum := loginForum(t, func(w http.ResponseWriter, r *http.Request) {
				http.SetCookie(w, &http.Cookie{Name: name, Value: "v", Path: "/"})
				w.WriteHeader(http.StatusOK)
			})
			res, err := forum.client(t).Login(context.Background(), LoginRequest{Code: "user", Password: "secret"})
			require.NoError(t, err)
			require.True(t, res.Success)
			require.Equal(t, 1, res.RedirectCount)
		})
	}
}

func TestLoginRejectedInline(t *testing.T) {
	forum := newMockForum(t)
	forum.page("/login", loginPageHTML)
	forum.json("/login/access", `{"result":true}`)
	forum.reply(http.MethodPost, "/login", "text/html", `<html><body><p class="login-error">비밀번호가 틀렸습니다.</p></body></html>`)

	res, err := forum.client(t).Login(context.Background(), LoginRequest{Code: "user", Password: "wrong"})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "비밀번호가 틀렸습니다.", res.Message)

	// without a key from the preflight the page key is submitted
	require.Equal(t, "page-con-key", forum.calls(http.MethodPost, "/login")[0].Form.Get("conKey"))
}

func TestLoginRejectedWithoutMessage(t *testing.T) {
	forum := newMockForum(t)
	forum.page("/login", loginPageHTML)
	forum.json("/login/access", `{"result":true}`)
	forum.reply(http.MethodPost, "/login", "text/html", `<html><body></body></html>`)

	res, err := forum.client(t).Login(context.Background(), LoginRequest{Code: "user", Password: "wrong"})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, loginFailedMessage, res.Message)
}

func TestLoginRejectedByEscapedAlert(t *testing.T) {
	forum := newMockForum(t)
	forum.page("/login", loginPageHTML)
	forum.json("/login/access", `{"result":true}`)
	forum.reply(http.MethodPost, "/login", "text/html", `<script>alert('\'user\' 계정의 비밀번호가 일치하지 않습니다.');history.back();</script>`)

	res, err := forum.client(t).Login(context.Background(), LoginRequest{Code: "user", Password: "wrong"})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "'user' 계정의 비밀번호가 일치하지 않습니다.", res.Message)

	// the zero KeepLoggedIn asks for a session-only login
	form := forum.calls(http.MethodPost, "/login")[0].Form
	require.Contains(t, form, "loginCash")
	require.Empty(t, form.Get("loginCash"))
}

func TestLoginPreflightAbortsBeforePassword(t *testing.T) {
	forum := newMockForum(t)
	forum.page("/login", loginPageHTML)
	forum.json("/login/access", `{"result":false,"message":"존재하지 않는 아이디입니다."}`)

	res, err := forum.client(t).Login(context.Background(), LoginRequest{Code: "ghost", Password: "secret"})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "존재하지 않는 아이디입니다.", res.Message)
	require.NotNil(t, res.Preflight.Result)
	require.Empty(t, forum.calls(http.MethodPost, "/login"))
}

func TestLoginValidation(t *testing.T) {
	forum := newMockForum(t)
	_, err := forum.client(t).Login(context.Background(), LoginRequest{Code: "user"})
	require.ErrorIs(t, err, ErrInvalidRequest)
	require.Empty(t, forum.requests())
}
