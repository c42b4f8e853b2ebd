package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient("", 5*time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestClient_BrowserLikeHeaders(t *testing.T) {
	var ua, lang string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		lang = r.Header.Get("Accept-Language")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := newTestClient(t)
	_, err := c.Get(context.Background(), ts.URL, Options{})
	require.NoError(t, err)

	assert.Contains(t, ua, "Mozilla/5.0")
	assert.Contains(t, lang, "zh-CN")
}

func TestClient_UserAgentRotates(t *testing.T) {
	var agents []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := newTestClient(t)
	for range 3 {
		_, err := c.Get(context.Background(), ts.URL, Options{})
		require.NoError(t, err)
	}

	assert.NotEqual(t, agents[0], agents[1])
}

func TestClient_ExtraHeadersOverrideDefaults(t *testing.T) {
	var referer string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("Referer")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := newTestClient(t)
	_, err := c.Get(context.Background(), ts.URL, Options{
		Headers: map[string]string{"Referer": "https://www.baidu.com/"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://www.baidu.com/", referer)
}

func TestClient_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := newTestClient(t)
	resp, err := c.Get(context.Background(), ts.URL, Options{})

	assert.ErrorIs(t, err, ErrBadStatus)
	require.NotNil(t, resp, "body is still returned alongside the status error")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestClient_NoRedirectCapturesLocation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://example.com/target", http.StatusFound)
	}))
	defer ts.Close()

	c := newTestClient(t)
	resp, err := c.Get(context.Background(), ts.URL, Options{NoRedirect: true})

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/target", resp.Header.Get("Location"))
}

func TestClient_FollowsOneRedirectHop(t *testing.T) {
	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop1", http.StatusFound)
	})
	mux.HandleFunc("/hop1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("landed"))
	})

	c := newTestClient(t)
	resp, err := c.Get(context.Background(), ts.URL+"/start", Options{})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "landed", string(resp.Body))
}

func TestClient_DeepRedirectChainCutOff(t *testing.T) {
	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop1", http.StatusFound)
	})
	mux.HandleFunc("/hop1", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop2", http.StatusFound)
	})

	c := newTestClient(t)
	resp, err := c.Get(context.Background(), ts.URL+"/start", Options{})

	assert.ErrorIs(t, err, ErrBadStatus)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
