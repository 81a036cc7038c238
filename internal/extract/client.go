// Package extract talks to the face embedding service. The service is an
// opaque collaborator: it receives raw image bytes and returns zero or more
// detected faces, each with a bounding box and an embedding vector.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const defaultExtractorURL = "http://localhost:8000"

// Detection is a single face found in an image.
type Detection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2] in pixels
	DetScore  float64   `json:"det_score"`
}

// faceResponse is the wire format of the /embed/face endpoint.
type faceResponse struct {
	FacesCount int         `json:"faces_count"`
	Faces      []Detection `json:"faces"`
	Model      string      `json:"model"`
}

// Extractor is the capability the matcher and reference loader consume.
// Implementations must return faces in a deterministic order.
type Extractor interface {
	Extract(ctx context.Context, imageData []byte) ([]Detection, error)
}

// Client is the HTTP implementation of Extractor.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an extraction client for the given base URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultExtractorURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

// Extract posts the image to the face endpoint and returns the detections.
// An undecodable image surfaces as a non-200 response and therefore an error.
func (c *Client) Extract(ctx context.Context, imageData []byte) ([]Detection, error) {
	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return faceResp.Faces, nil
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint. The part carries an explicit Content-Type
// based on magic byte detection so the service can reject non-images early.
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
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// detectMIMEType detects the MIME type from image data.
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
