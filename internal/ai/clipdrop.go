package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/quickai/quickai/internal/models"
)

const textToImagePath = "/text-to-image/v1"

// ClipDropClient calls the ClipDrop text-to-image API and returns raw PNG
// bytes. One upstream HTTP call per request, no retries.
type ClipDropClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClipDropClient(apiKey, baseURL string, timeout time.Duration) *ClipDropClient {
	return &ClipDropClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *ClipDropClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+textToImagePath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, models.WrapError(models.KindUpstream, "Image service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, models.NewError(models.KindUpstream, upstreamMessage(raw, resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.WrapError(models.KindUpstream, "Failed to read image response", err)
	}
	if len(data) == 0 {
		return nil, models.NewError(models.KindUpstream, "Image service returned no data")
	}
	return data, nil
}

// upstreamMessage lifts the provider's error text out of a JSON error body,
// falling back to a generic status description.
func upstreamMessage(body []byte, status int) string {
	if msg := gjson.GetBytes(body, "error").String(); msg != "" {
		return msg
	}
	if msg := gjson.GetBytes(body, "message").String(); msg != "" {
		return msg
	}
	return fmt.Sprintf("upstream request failed with status %d", status)
}
