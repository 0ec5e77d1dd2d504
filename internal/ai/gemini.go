// Package ai is the thin client for the generative-AI collaborator. It
// speaks the Gemini generateContent REST API directly; prompt content and
// model reasoning are the collaborator's business, not ours. Services
// depend on the Generator interface so tests can swap in a stub.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Subodhrana390/cropsense/internal/config"
)

// Generator is the contract the advisory and chatbot services consume.
type Generator interface {
	// Configured reports whether the collaborator can be called at all.
	// Services answer 503 instead of calling out when this is false.
	Configured() bool

	// GenerateText returns the model's free-form answer to a prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateJSON asks for a JSON response and unmarshals it into out.
	GenerateJSON(ctx context.Context, prompt string, out any) error

	// GenerateVisionJSON sends an image alongside the prompt and
	// unmarshals the JSON response into out.
	GenerateVisionJSON(ctx context.Context, prompt, mimeType string, image []byte, out any) error
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client implements Generator against the Gemini REST API.
type Client struct {
	apiKey      string
	textModel   string
	visionModel string
	baseURL     string
	httpClient  *http.Client
}

// NewClient creates a Gemini client from config. A client with an empty
// API key is still constructed (so wiring stays uniform) but reports
// !Configured(); handlers turn that into 503 instead of calling out.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		apiKey:      cfg.APIKey,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// --- Wire types for the generateContent endpoint ---

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText implements Generator.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	return c.call(ctx, c.textModel, req)
}

// GenerateJSON implements Generator. The response MIME type is forced to
// JSON so the model returns a machine-parsable object.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, out any) error {
	req := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}
	text, err := c.call(ctx, c.textModel, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decoding model JSON: %w", err)
	}
	return nil
}

// GenerateVisionJSON implements Generator.
func (c *Client) GenerateVisionJSON(ctx context.Context, prompt, mimeType string, image []byte, out any) error {
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(image),
			}},
		}}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}
	text, err := c.call(ctx, c.visionModel, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decoding model JSON: %w", err)
	}
	return nil
}

// call performs one generateContent request and returns the concatenated
// text of the first candidate.
func (c *Client) call(ctx context.Context, model string, greq generateRequest) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("gemini client not configured")
	}

	body, err := json.Marshal(greq)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Key goes in a header, not the URL, so it never lands in access logs.
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a bounded slice of the body for the log line only.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, string(snippet))
	}

	var gresp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gresp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(gresp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range gresp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", fmt.Errorf("gemini returned an empty answer")
	}
	return answer, nil
}
