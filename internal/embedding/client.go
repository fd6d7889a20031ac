// Package embedding talks to the external embedding-extraction service.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const (
	defaultServiceURL = "http://localhost:8000"
	defaultModel      = "arcface"

	// maxImageEdge is the largest width/height forwarded to the service.
	// Bigger uploads are downscaled first; undecodable payloads pass through.
	maxImageEdge = 1024
)

// ErrExtraction marks any failure of the embedding-extraction capability.
// The HTTP layer maps it to 502.
var ErrExtraction = errors.New("embedding extraction failed")

// Client computes face embeddings using the embedding service.
type Client struct {
	baseURL     string
	model       string
	expectedDim int
	client      *http.Client
}

// NewClient creates a new embedding service client. expectedDim of 0
// disables dimension validation.
func NewClient(baseURL, model string, expectedDim int) *Client {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       model,
		expectedDim: expectedDim,
		client:      &http.Client{},
	}
}

// response represents the reply from the embedding service.
type response struct {
	Dim        int       `json:"dim"`
	Embedding  []float32 `json:"embedding"`
	Model      string    `json:"model"`
	Pretrained string    `json:"pretrained"`
}

// Result contains the extracted embedding and its metadata.
type Result struct {
	Embedding  []float32
	Model      string
	Pretrained string
	Dim        int
}

// postMultipartImage constructs a multipart form with the image data and posts
// it to the given endpoint. The part carries a Content-Type header based on
// magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrExtraction, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrExtraction, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: service returned status %d: %s", ErrExtraction, resp.StatusCode, string(body))
	}

	return body, nil
}

// Extract computes the face embedding for an image. Oversized images are
// downscaled before transport; payloads that do not decode are sent as-is
// and the service stays the authority on what it accepts.
func (c *Client) Extract(ctx context.Context, imageData []byte) (*Result, error) {
	if resized, err := ResizeImage(imageData, maxImageEdge); err == nil {
		imageData = resized
	}

	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var embResp response
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrExtraction, err)
	}

	if len(embResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrExtraction)
	}
	if c.expectedDim > 0 && len(embResp.Embedding) != c.expectedDim {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", ErrExtraction, c.expectedDim, len(embResp.Embedding))
	}

	dim := embResp.Dim
	if dim == 0 {
		dim = len(embResp.Embedding)
	}
	model := embResp.Model
	if model == "" {
		model = c.model
	}

	return &Result{
		Embedding:  embResp.Embedding,
		Model:      model,
		Pretrained: embResp.Pretrained,
		Dim:        dim,
	}, nil
}

// Model returns the model name being used
func (c *Client) Model() string {
	return c.model
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
