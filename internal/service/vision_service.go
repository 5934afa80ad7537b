package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gagyebu/pkg/config"

	"go.uber.org/zap"
)

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
	".webp": "image/webp",
}

// VisionService issues a single vision chat-completion request per call. It
// is constructed once at startup and injected; every error it returns is one
// of the taxonomy values, classified here so callers never see raw transport
// or API errors.
type VisionService struct {
	cfg        *config.OpenAIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewVisionService(cfg *config.OpenAIConfig, logger *zap.Logger) *VisionService {
	return &VisionService{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// imageMIMEType maps a file extension to its MIME type. Unknown extensions
// fall back to image/jpeg: the upload validation already constrained the set,
// and the model tolerates a mislabeled image better than a failed request.
func imageMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := imageMIMETypes[ext]; ok {
		return mime
	}
	return "image/jpeg"
}

// Extract sends the image at fullPath with the given prompt and returns the
// raw completion text. The call is bounded by the configured timeout;
// exceeding it yields ErrTimeout, distinct from any error the API returns.
func (s *VisionService) Extract(ctx context.Context, fullPath, prompt string) (string, error) {
	if s.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
	}

	imageData, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s",
		imageMIMEType(fullPath), base64.StdEncoding.EncodeToString(imageData))

	requestBody := map[string]interface{}{
		"model": s.cfg.Model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURI}},
				},
			},
		},
		"max_tokens": 1000,
		// Low temperature for consistent extraction output.
		"temperature": 0.1,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost,
		s.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w after %s", ErrTimeout, s.cfg.Timeout)
		}
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		s.logger.Error("Vision API rejected the request",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
		)
		return "", fmt.Errorf("%w: status %d", ErrRemoteAPI, resp.StatusCode)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		// The deadline can expire mid-body after the headers arrived in time.
		if callCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w after %s", ErrTimeout, s.cfg.Timeout)
		}
		return "", fmt.Errorf("%w: malformed completion body: %v", ErrUnparseableResponse, err)
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnparseableResponse)
	}

	return completion.Choices[0].Message.Content, nil
}
