package classifier

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/nfnt/resize"
	"google.golang.org/api/option"
)

const (
	geminiModel = "gemini-1.5-flash"
	maxWidth    = 800

	labelPrompt = "Name the single main food ingredient shown in this image in one or two words, for example 'Tomato' or 'Chicken'. If the image shows no food, respond with exactly NONE."
)

// GeminiClient asks Gemini for the ingredient label.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini-backed classifier.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client, model: client.GenerativeModel(geminiModel)}, nil
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Classify returns the label Gemini gives the image, or "" when it sees no food.
func (c *GeminiClient) Classify(ctx context.Context, filename string, img io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	data, err := io.ReadAll(img)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	format, data := shrink(data)

	resp, err := c.model.GenerateContent(ctx, genai.ImageData(format, data), genai.Text(labelPrompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini for %s", filename)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	return ParseLabel(string(text)), nil
}

// ParseLabel cleans a free-text model answer into a label. "NONE" and empty
// answers become "".
func ParseLabel(text string) string {
	label := strings.TrimSpace(text)
	if i := strings.IndexByte(label, '\n'); i >= 0 {
		label = label[:i]
	}
	label = strings.TrimSpace(strings.Trim(strings.TrimSpace(label), "\"'.`*"))
	if strings.EqualFold(label, "none") {
		return ""
	}
	return label
}

// shrink downsizes wide images before upload. Images that cannot be decoded
// are sent as they are.
func shrink(data []byte) (string, []byte) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "jpeg", data
	}
	if img.Bounds().Dx() <= maxWidth {
		return format, data
	}

	img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, nil); err != nil {
		return format, data
	}
	return "jpeg", out.Bytes()
}
