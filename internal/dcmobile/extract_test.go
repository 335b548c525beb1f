package dcmobile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExtractWriteForm(t *testing.T) {
	ex, err := Extract(writePageHTML, "https://m.dcinside.com/write/chatgpt", "#writeForm")
	require.NoError(t, err)

	require.Equal(t, "csrf-write", ex.CSRFToken)
	require.Equal(t, []string{"honey_7f3a"}, ex.Honeypots)
	require.Equal(t, "0", ex.Fields.Get("headtext"))
	require.Equal(t, "1", ex.Fields.Get("use_gall_nickname"))
	require.True(t, ex.Fields.Has("memo"))
	require.False(t, ex.Fields.Has("files"), "file inputs are not form values")
	require.Empty(t, ex.CaptchaKey)

	expected := []Choice{
		{Value: "0", Label: "말머리 없음"},
		{Value: "10", Label: "일반"},
		{Value: "20", Label: "질문"},
		{Value: "30", Label: "정보"},
	}
	if diff := cmp.Diff(expected, ex.Choices["headtext"]); diff != "" {
		t.Fatalf("headtext choices (-want +got):\n%s", diff)
	}
}

func TestExtractViewPageState(t *testing.T) {
	ex, err := Extract(guestViewHTML, "https://m.dcinside.com/board/chatgpt/42", "")
	require.NoError(t, err)

	require.Equal(t, "board123", ex.Fields.Get("board_id"))
	require.Equal(t, "1", ex.Fields.Get("cpage"))
	require.Equal(t, "guestRand", ex.CaptchaKey)
	require.Equal(t, "https://m.dcinside.com/captcha/code?id=chatgpt&dccode=guestRand&type=C", ex.CaptchaImageURL)
	require.Equal(t, []string{"guest_robot"}, ex.Honeypots)
	require.Equal(t, "게스트 제목", ex.Subject)

	tokens := ex.Tokens()
	require.Equal(t, "csrf-guest", tokens.CSRFToken)
	require.Equal(t, "guestRand", tokens.CaptchaKey)
	require.Equal(t, "https://m.dcinside.com/board/chatgpt/42", tokens.Page())
}

func TestExtractMissingCSRF(t *testing.T) {
	_, err := Extract([]byte(`<html><body><form id="writeForm"></form></body></html>`), "https://m.dcinside.com/write/x", "#writeForm")
	require.ErrorIs(t, err, ErrMissingCSRFToken)
}

func TestExtractMissingForm(t *testing.T) {
	_, err := Extract(memberViewHTML, "https://m.dcinside.com/write/x", "#writeForm")
	require.True(t, errors.Is(err, ErrMissingForm))
}

func TestExtractLoginTokens(t *testing.T) {
	ex, err := Extract(loginPageHTML, "https://msign.dcinside.com/login?r_url=x", "")
	require.NoError(t, err)
	require.Equal(t, "page-con-key", ex.ByID("conKey"))
	require.Equal(t, "https://m.dcinside.com/", ex.ByID("r_url"))
	require.Equal(t, "form-token", ex.Fields.Get("_token"))
	require.False(t, ex.Fields.Has("loginCash"), "unchecked boxes are not submitted")
}

func TestFieldMapIsImmutable(t *testing.T) {
	ex, err := Extract(writePageHTML, "https://m.dcinside.com/write/chatgpt", "#writeForm")
	require.NoError(t, err)

	form := ex.Fields.Mutable()
	form.Set("subject", "changed").Delete("password")

	require.Equal(t, "", ex.Fields.Get("subject"))
	require.True(t, ex.Fields.Has("password"))
	require.Equal(t, "changed", form.Get("subject"))
	require.False(t, form.Has("password"))
}

func TestFormOrderAndOverrides(t *testing.T) {
	form := NewForm().Set("b", "1").Set("a", "2").Set("b", "3")
	form.SetDefault("a", "ignored").SetDefault("c", "4")
	require.Equal(t, []string{"b", "a", "c"}, form.Keys())
	require.Equal(t, "b=3&a=2&c=4", form.Encode())

	form.Delete("a")
	require.Equal(t, "b=3&c=4", form.Encode())
}
