package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gagyebu/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "receipt.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake jpeg bytes"), 0o644))
	return path
}

func newTestVisionService(serverURL string) *VisionService {
	return NewVisionService(&config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "gpt-4o",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestVisionService_Extract(t *testing.T) {
	imagePath := writeTestImage(t)

	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(completionResponse(`{"store": "Mart"}`)))
	}))
	defer server.Close()

	svc := newTestVisionService(server.URL)
	raw, err := svc.Extract(context.Background(), imagePath, "read this receipt")
	require.NoError(t, err)
	assert.Equal(t, `{"store": "Mart"}`, raw)

	assert.Equal(t, "gpt-4o", captured["model"])
	assert.Equal(t, float64(1000), captured["max_tokens"])
	assert.Equal(t, 0.1, captured["temperature"])

	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 1)
	content := messages[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, content, 2)
	assert.Equal(t, "read this receipt", content[0].(map[string]interface{})["text"])

	imageURL := content[1].(map[string]interface{})["image_url"].(map[string]interface{})["url"].(string)
	wantURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("fake jpeg bytes"))
	assert.Equal(t, wantURI, imageURL)
}

func TestVisionService_ExtractMissingKey(t *testing.T) {
	svc := NewVisionService(&config.OpenAIConfig{Timeout: time.Second}, zap.NewNop())

	_, err := svc.Extract(context.Background(), writeTestImage(t), "prompt")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestVisionService_ExtractAPIRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid image"}}`))
	}))
	defer server.Close()

	svc := newTestVisionService(server.URL)
	_, err := svc.Extract(context.Background(), writeTestImage(t), "prompt")
	require.ErrorIs(t, err, ErrRemoteAPI)
}

func TestVisionService_ExtractTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	svc := newTestVisionService(server.URL)
	svc.cfg.Timeout = 20 * time.Millisecond

	_, err := svc.Extract(context.Background(), writeTestImage(t), "prompt")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestVisionService_ExtractTimeoutDuringBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Headers out immediately, body stalled past the deadline.
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	svc := newTestVisionService(server.URL)
	svc.cfg.Timeout = 30 * time.Millisecond

	_, err := svc.Extract(context.Background(), writeTestImage(t), "prompt")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestVisionService_ExtractTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	svc := newTestVisionService(server.URL)
	_, err := svc.Extract(context.Background(), writeTestImage(t), "prompt")
	require.ErrorIs(t, err, ErrTransport)
}

func TestVisionService_ExtractEmptyCompletion(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no choices", body: `{"choices": []}`},
		{name: "blank content", body: completionResponse("   ")},
		{name: "malformed body", body: `{"choices": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := newTestVisionService(server.URL)
			_, err := svc.Extract(context.Background(), writeTestImage(t), "prompt")
			require.ErrorIs(t, err, ErrUnparseableResponse)
		})
	}
}

func TestImageMIMEType(t *testing.T) {
	assert.Equal(t, "image/jpeg", imageMIMEType("a/b.jpg"))
	assert.Equal(t, "image/png", imageMIMEType("a/b.PNG"))
	assert.Equal(t, "image/heic", imageMIMEType("b.heic"))
	assert.Equal(t, "image/webp", imageMIMEType("b.webp"))
	assert.Equal(t, "image/jpeg", imageMIMEType("b.unknown"))
}
