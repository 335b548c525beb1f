package dcmobile

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"dcinside-mobile/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestSessionBusy(t *testing.T) {
	forum := newMockForum(t)
	client := forum.client(t)
	session, err := client.NewSession()
	require.NoError(t, err)

	release, err := session.acquire()
	require.NoError(t, err)

	_, err = client.Recommend(context.Background(), RecommendRequest{GalleryID: "chatgpt", PostID: 1, Session: session})
	require.ErrorIs(t, err, ErrSessionBusy)
	require.Empty(t, forum.requests())

	release()
	_, err = session.acquire()
	require.NoError(t, err)
}

func TestRestoredCookies(t *testing.T) {
	forum := newMockForum(t)
	client := forum.client(t)
	session, err := client.NewSession(StoredCookie{Origin: forum.srv.URL, Name: "dc_m_login", Value: "member"})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.True(t, session.HasCookie("dc_m_login"))

	forum.handle(http.MethodGet, "/whoami", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("dc_m_login"); err == nil {
			_, _ = w.Write([]byte(c.Value))
		}
	})
	page, err := session.Fetch(context.Background(), forum.url("/whoami"), nil)
	require.NoError(t, err)
	require.Equal(t, "member", page.Text())
	require.Equal(t, []StoredCookie{{Origin: forum.srv.URL, Name: "dc_m_login", Value: "member"}}, session.Cookies())
}

func TestRetryOnlyReads(t *testing.T) {
	forum := newMockForum(t)
	var pageHits, postHits atomic.Int32
	forum.handle(http.MethodGet, "/board/chatgpt/7", func(w http.ResponseWriter, r *http.Request) {
		if pageHits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(memberViewHTML)
	})
	forum.handle(http.MethodPost, "/bestcontent/recommend", func(w http.ResponseWriter, r *http.Request) {
		postHits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client := NewClient(ClientOptions{
		Endpoints:        forum.endpoints(),
		RetryCount:       3,
		RetryWaitTime:    time.Millisecond,
		RetryMaxWaitTime: 5 * time.Millisecond,
	}, telemetry.NewTestAPI(t))

	res, err := client.Recommend(context.Background(), RecommendRequest{GalleryID: "chatgpt", PostID: 7})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, http.StatusServiceUnavailable, res.HTTPStatus)

	require.Equal(t, int32(3), pageHits.Load())
	require.Equal(t, int32(1), postHits.Load(), "the mutating post must never be retried")
}

func TestOpErrorRetryable(t *testing.T) {
	forum := newMockForum(t)
	client := forum.client(t)
	forum.srv.Close()

	_, err := client.Recommend(context.Background(), RecommendRequest{GalleryID: "chatgpt", PostID: 1})
	require.Error(t, err)
	require.True(t, IsRetryable(err))

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	require.Equal(t, OpRecommend, opErr.Op)
	require.Equal(t, "view-page", opErr.Step)
}

func TestSessionDownload(t *testing.T) {
	forum := newMockForum(t)
	client := forum.client(t)
	session, err := client.NewSession(StoredCookie{Origin: forum.srv.URL, Name: "ci_c", Value: "abc"})
	require.NoError(t, err)

	forum.handle(http.MethodGet, "/captcha/code", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("ci_c"); err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	})

	referer := forum.url("/board/chatgpt/7")
	body, contentType, err := session.Download(context.Background(), forum.url("/captcha/code?id=chatgpt&dccode=k&type=C"), referer)
	require.NoError(t, err)
	require.Equal(t, "image/png", contentType)
	require.Equal(t, []byte("\x89PNG"), body)
	require.Equal(t, referer, forum.calls(http.MethodGet, "/captcha/code")[0].Header.Get("Referer"))

	_, _, err = session.Download(context.Background(), forum.url("/missing.png"), "")
	require.Error(t, err)
}

func TestExecuteDispatch(t *testing.T) {
	forum := newMockForum(t)
	client := forum.client(t)
	guest := Guest{Nickname: "", Password: "pw"}

	requests := []MutationRequest{
		PostCreateRequest{GalleryID: "chatgpt", Subject: "s", Content: "c", Identity: guest},
		PostDeleteRequest{GalleryID: "chatgpt", PostID: 1, Identity: guest},
		CommentCreateRequest{GalleryID: "chatgpt", PostID: 1, Content: "c", Identity: guest},
		CommentDeleteRequest{GalleryID: "chatgpt", PostID: 1, CommentID: 2, Identity: guest},
		LoginRequest{},
	}
	for _, req := range requests {
		_, err := client.Execute(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidRequest, "%T", req)

		var opErr *OpError
		require.ErrorAs(t, err, &opErr)
		require.Equal(t, req.Operation(), opErr.Op)
	}
	require.Empty(t, forum.requests())
}
