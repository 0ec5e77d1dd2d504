package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subodhrana390/cropsense/internal/config"
)

// newTestClient returns a client pointed at a stub generateContent server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.AIConfig{
		APIKey:      "test-key",
		TextModel:   "gemini-2.5-flash",
		VisionModel: "gemini-2.5-flash",
		Timeout:     5 * time.Second,
	})
	c.baseURL = srv.URL
	return c
}

// candidateBody builds a minimal generateContent response with one text part.
func candidateBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return string(b)
}

func TestGenerateText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "what grows in clay soil?", req.Contents[0].Parts[0].Text)

		w.Write([]byte(candidateBody("Rice does well in clay soil.")))
	})

	answer, err := c.GenerateText(context.Background(), "what grows in clay soil?")
	require.NoError(t, err)
	assert.Equal(t, "Rice does well in clay soil.", answer)
}

func TestGenerateJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)

		w.Write([]byte(candidateBody(`{"crops":["wheat","mustard"]}`)))
	})

	var out struct {
		Crops []string `json:"crops"`
	}
	require.NoError(t, c.GenerateJSON(context.Background(), "suggest crops", &out))
	assert.Equal(t, []string{"wheat", "mustard"}, out.Crops)
}

func TestGenerateVisionJSON_SendsInlineImage(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xe0}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents[0].Parts, 2)

		inline := req.Contents[0].Parts[1].InlineData
		require.NotNil(t, inline)
		assert.Equal(t, "image/jpeg", inline.MimeType)
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), inline.Data)

		w.Write([]byte(candidateBody(`{"cropName":"Wheat"}`)))
	})

	var out struct {
		CropName string `json:"cropName"`
	}
	require.NoError(t, c.GenerateVisionJSON(context.Background(), "identify", "image/jpeg", image, &out))
	assert.Equal(t, "Wheat", out.CropName)
}

func TestCall_UpstreamErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	})

	_, err := c.GenerateText(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCall_Unconfigured(t *testing.T) {
	c := NewClient(config.AIConfig{Timeout: time.Second})
	assert.False(t, c.Configured())

	_, err := c.GenerateText(context.Background(), "q")
	require.Error(t, err)
}

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("img-bytes"))

	mime, data, err := ParseDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte("img-bytes"), data)
}

func TestParseDataURI_Malformed(t *testing.T) {
	cases := []string{
		"",
		"image/png;base64,abcd",        // no data: prefix
		"data:image/png;base64",        // no payload separator
		"data:;base64,abcd",            // no MIME type
		"data:image/png;utf8,abcd",     // unsupported encoding
		"data:image/png;base64,!!not!", // invalid base64
	}
	for _, uri := range cases {
		_, _, err := ParseDataURI(uri)
		assert.Error(t, err, "uri: %q", uri)
	}
}
