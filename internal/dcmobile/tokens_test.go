package dcmobile

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestTokensSingleUse(t *testing.T) {
	tokens := newTokens("https://m.dcinside.com/board/a/1")

	require.ErrorIs(t, tokens.Spend("https://m.dcinside.com/board/b/2"), ErrStaleTokens)
	require.False(t, tokens.Spent())

	require.NoError(t, tokens.Spend("https://m.dcinside.com/board/a/1"))
	require.ErrorIs(t, tokens.Spend("https://m.dcinside.com/board/a/1"), ErrStaleTokens)
}

func TestSubmitRejectsStaleTokensBeforeNetwork(t *testing.T) {
	forum := newMockForum(t)
	forum.json("/ajax/comment-write", `{"result":1}`)
	session, err := forum.client(t).NewSession()
	require.NoError(t, err)

	ex, err := Extract(memberViewHTML, forum.url("/board/a/1"), "")
	require.NoError(t, err)
	tokens := ex.Tokens()

	noop := func(*resty.Request) {}
	_, err = session.submit(context.Background(), tokens, forum.url("/board/b/2"), forum.url("/ajax/comment-write"), noop)
	require.ErrorIs(t, err, ErrStaleTokens)
	require.Empty(t, forum.requests())

	_, err = session.submit(context.Background(), tokens, forum.url("/board/a/1"), forum.url("/ajax/comment-write"), noop)
	require.NoError(t, err)
	_, err = session.submit(context.Background(), tokens, forum.url("/board/a/1"), forum.url("/ajax/comment-write"), noop)
	require.ErrorIs(t, err, ErrStaleTokens)
	require.Len(t, forum.calls(http.MethodPost, "/ajax/comment-write"), 1)
}

func TestExecutorsScrapeFreshTokens(t *testing.T) {
	forum := commentForum(t, memberViewHTML)
	forum.reply(http.MethodPost, "/del/comment", "text/html", `<script>alert('삭제되었습니다.')</script>`)
	client := forum.client(t)
	session, err := client.NewSession()
	require.NoError(t, err)

	for _, commentID := range []int64{1001, 1002} {
		res, err := client.DeleteComment(context.Background(), CommentDeleteRequest{
			GalleryID: "chatgpt",
			PostID:    42,
			CommentID: commentID,
			Identity:  Member{Session: session},
		})
		require.NoError(t, err)
		require.True(t, res.Success)
	}

	require.Len(t, forum.calls(http.MethodGet, "/board/chatgpt/42"), 2)
	require.Len(t, forum.calls(http.MethodPost, "/ajax/access"), 2)
	require.Len(t, forum.calls(http.MethodPost, "/del/comment"), 2)
}
