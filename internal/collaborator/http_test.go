package collaborator

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui-feedback-backend/internal/findings"
)

func testImage() Image {
	return Image{FileName: "shot.png", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\nrest")}
}

func TestAnalyzeSendsMultipartImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "shot.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, testImage().Data, data)

		_, _ = w.Write([]byte(`[{"category":"visual","confidence":"High","items":[{"title":"t","description":"d","type":"issue"}]}]`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL+"/", time.Second)
	require.NoError(t, err)

	raw, err := client.Analyze(context.Background(), testImage())
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "visual", raw[0].Category)
	assert.Equal(t, findings.ItemIssue, raw[0].Items[0].Type)
}

func TestAnalyzeRejectsNonArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), testImage())
	assert.ErrorIs(t, err, findings.ErrUnexpectedFormat)
}

func TestAnalyzeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), testImage())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "analyze", se.Op)
	assert.Contains(t, se.Error(), "boom")
}

func TestAnalyzeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := NewHTTPClient(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), testImage())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestAnalyzeCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err = client.Analyze(ctx, testImage())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreprocessAndPrevious(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"label":"Error","confidence":"N/A","response":"No file uploaded"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, time.Second)
	require.NoError(t, err)

	require.NoError(t, client.Preprocess(context.Background(), testImage()))
	raw, err := client.Previous(context.Background())
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, findings.KindLegacy, raw[0].Kind)
	assert.Equal(t, []string{"POST /preprocess", "GET /analyze"}, paths)
}

func TestNewHTTPClientRequiresURL(t *testing.T) {
	_, err := NewHTTPClient("  ", time.Second)
	assert.Error(t, err)
}

func TestPlaceholderClient(t *testing.T) {
	var c Client = PlaceholderClient{}
	_, err := c.Analyze(context.Background(), testImage())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, c.Preprocess(context.Background(), testImage()), ErrNotConfigured)
}
