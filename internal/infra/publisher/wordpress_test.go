package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/resilience/retry"
)

func testArticle() *entity.Article {
	return &entity.Article{
		ID: 7,
		ContentSnapshot: entity.ContentSnapshot{
			Title:           "Espresso at Home: 5 Tips",
			Content:         "<h2>Grind</h2><p>Fine.</p>",
			MetaDescription: "Pull a better shot.",
		},
	}
}

func newTestWordPress(t *testing.T, handler http.HandlerFunc) *WordPress {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	w := NewWordPress(Config{
		BaseURL:           srv.URL + "/",
		Username:          "editor",
		AppPassword:       "secret",
		Timeout:           2 * time.Second,
		RequestsPerSecond: 1000,
	})
	w.retryConfig = retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	return w
}

func TestWordPress_Publish_Success(t *testing.T) {
	var got postRequest
	w := newTestWordPress(t, func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "editor", user)
		assert.Equal(t, "secret", pass)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		rw.WriteHeader(http.StatusCreated)
		_, _ = rw.Write([]byte(`{"id":991,"link":"https://blog.example.com/espresso-at-home-5-tips"}`))
	})

	res, err := w.Publish(context.Background(), testArticle())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "https://blog.example.com/espresso-at-home-5-tips", res.ExternalRef)

	assert.Equal(t, "Espresso at Home: 5 Tips", got.Title)
	assert.Equal(t, "Pull a better shot.", got.Excerpt)
	assert.Equal(t, "publish", got.Status)
	assert.Equal(t, "espresso-at-home-5-tips", got.Slug)
}

func TestWordPress_Publish_FallsBackToPostID(t *testing.T) {
	w := newTestWordPress(t, func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusCreated)
		_, _ = rw.Write([]byte(`{"id":991}`))
	})

	res, err := w.Publish(context.Background(), testArticle())
	require.NoError(t, err)
	assert.Equal(t, "wp:991", res.ExternalRef)
}

func TestWordPress_Publish_RejectionIsNotAnError(t *testing.T) {
	var calls atomic.Int32
	w := newTestWordPress(t, func(rw http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		rw.WriteHeader(http.StatusForbidden)
		_, _ = rw.Write([]byte(`{"code":"rest_cannot_create","message":"Sorry, you are not allowed to create posts."}`))
	})

	res, err := w.Publish(context.Background(), testArticle())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "wordpress rejected the post (HTTP 403): rest_cannot_create: Sorry, you are not allowed to create posts.", res.Error)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWordPress_Publish_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	w := newTestWordPress(t, func(rw http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			rw.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		rw.WriteHeader(http.StatusCreated)
		_, _ = rw.Write([]byte(`{"id":5,"link":"https://blog.example.com/p5"}`))
	})

	res, err := w.Publish(context.Background(), testArticle())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWordPress_Publish_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	w := newTestWordPress(t, func(rw http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		rw.WriteHeader(http.StatusBadGateway)
	})

	_, err := w.Publish(context.Background(), testArticle())
	require.Error(t, err)
	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestConfig_Validate(t *testing.T) {
	ok := Config{BaseURL: "https://blog.example.com", Username: "u", AppPassword: "p"}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.BaseURL = ""
	assert.Error(t, bad.Validate())

	bad = ok
	bad.BaseURL = "ftp://blog"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.AppPassword = ""
	assert.Error(t, bad.Validate())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "espresso-at-home-5-tips", slugify("Espresso at Home: 5 Tips"))
	assert.Equal(t, "caf-cr-me", slugify("Café crème!"))
	assert.Equal(t, "", slugify("!!!"))
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, retryAfter("3"))
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, time.Duration(0), retryAfter("-1"))
	assert.Equal(t, time.Duration(0), retryAfter("Wed, 21 Oct 2026 07:28:00 GMT"))
}
