package livereload_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/livereload"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newServer(t *testing.T) *livereload.Server {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	return livereload.NewServer(mockLogger)
}

func newSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":       "<html><body><h1>forge</h1></BODY></html>",
		"about/index.html": "<p>about</p>",
		"css/main.css":     "body { color: red; }",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	}
	return dir
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test request
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestInjectScript(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		expected string
	}{
		{
			name:     "before closing body",
			page:     "<body><p>x</p></body></html>",
			expected: `<body><p>x</p><script src="/__forge/livereload.js"></script></body></html>`,
		},
		{
			name:     "case-insensitive, last body",
			page:     "<BODY>&lt;/body&gt;</BODY>",
			expected: `<BODY>&lt;/body&gt;<script src="/__forge/livereload.js"></script></BODY>`,
		},
		{
			name:     "fragment",
			page:     "<p>about</p>",
			expected: "<p>about</p>\n" + `<script src="/__forge/livereload.js"></script>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(livereload.InjectScript([]byte(tt.page))))
		})
	}
}

func TestServer_Handler_ServesOutput(t *testing.T) {
	srv := httptest.NewServer(newServer(t).Handler(newSite(t)))
	defer srv.Close()

	t.Run("index page gets the client script", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Equal(t, `<html><body><h1>forge</h1><script src="/__forge/livereload.js"></script></BODY></html>`, body)
	})

	t.Run("nested index", func(t *testing.T) {
		_, body := get(t, srv.URL+"/about/")
		assert.Contains(t, body, livereload.ScriptPath)
	})

	t.Run("stylesheets are untouched", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/css/main.css")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "body { color: red; }", body)
	})

	t.Run("client script", func(t *testing.T) {
		resp, body := get(t, srv.URL+livereload.ScriptPath)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, livereload.SocketPath)
	})

	t.Run("missing file", func(t *testing.T) {
		resp, _ := get(t, srv.URL+"/missing.html")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("no traversal", func(t *testing.T) {
		resp, _ := get(t, srv.URL+"/../../etc/passwd.html")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServer_PushUpdate(t *testing.T) {
	server := newServer(t)
	srv := httptest.NewServer(server.Handler(newSite(t)))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + livereload.SocketPath
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return server.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, server.PushUpdate(ctx, domain.ReloadUpdate{
		Kind:  domain.ReloadStyleInject,
		Paths: []string{"css/main.css"},
	}))
	require.NoError(t, server.PushUpdate(ctx, domain.ReloadUpdate{Kind: domain.ReloadFull}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"style-inject","paths":["css/main.css"]}`, string(msg))

	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"full-reload"}`, string(msg))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return server.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_RejectsForeignOrigin(t *testing.T) {
	srv := httptest.NewServer(newServer(t).Handler(newSite(t)))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + livereload.SocketPath
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_Serve(t *testing.T) {
	t.Run("stops with the context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- newServer(t).Serve(ctx, "127.0.0.1:0", t.TempDir()) }()

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Serve did not return after cancellation")
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		err := newServer(t).Serve(context.Background(), "not-an-address", t.TempDir())
		require.ErrorIs(t, err, domain.ErrServerFailed)
	})
}
