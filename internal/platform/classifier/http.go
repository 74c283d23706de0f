// Package classifier turns an uploaded photo into a single ingredient label.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Timeout bounds every call to a classification backend.
const Timeout = 20 * time.Second

// HTTPClient forwards images to the ingredient classification service.
type HTTPClient struct {
	httpClient *http.Client
	apiURL     string
}

// NewHTTPClient creates a client for the service rooted at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: Timeout},
		apiURL:     strings.TrimRight(baseURL, "/") + "/detect",
	}
}

// detectResponse is the body returned by the service.
type detectResponse struct {
	Ingredient *string `json:"ingredient"`
}

// Classify posts the image unmodified as the multipart field "image" and
// returns the trimmed label. An empty label means nothing was detected.
func (c *HTTPClient) Classify(ctx context.Context, filename string, image io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("failed to copy image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	var detected detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&detected); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if detected.Ingredient == nil {
		return "", nil
	}
	return strings.TrimSpace(*detected.Ingredient), nil
}
