// package claude asks Anthropic's vision models where a photo was taken. It
// sends the image plus whatever EXIF context exists and digs the structured
// answer out of the model's reply, which is not always the clean JSON we
// asked for.
package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/manzanit0/whereabouts/pkg/exif"
	"github.com/manzanit0/whereabouts/pkg/locate"
)

const (
	DefaultAPIURL = "https://api.anthropic.com/v1/messages"
	DefaultModel  = "claude-3-5-sonnet-20241022"

	apiVersion     = "2023-06-01"
	maxTokens      = 4096
	placeholderKey = "YOUR_CLAUDE_API_KEY_HERE"

	// degradedConfidence is reported when the model answered in prose
	// instead of the requested JSON: non-empty, but unstructured.
	degradedConfidence = 50.0
)

type Client interface {
	// AnalyzeLocation never returns an error: every failure mode lands in
	// the result's ErrorMessage so the caller has exactly one shape to
	// render. The outbound call is bound to ctx.
	AnalyzeLocation(ctx context.Context, image []byte, meta *exif.Metadata) *locate.Result
}

// Config carries the read-only service settings. It is passed in explicitly
// so tests can point the client at a fixture server.
type Config struct {
	APIKey string
	APIURL string
	Model  string
}

// Configured reports whether a usable credential is present. An absent key
// is a user-visible condition, not a reason to refuse to boot.
func (c Config) Configured() bool {
	return c.APIKey != "" && c.APIKey != placeholderKey
}

func NewClient(h *http.Client, cfg Config) Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &anthropic{h: h, cfg: cfg}
}

type anthropic struct {
	h   *http.Client
	cfg Config
}

var _ Client = (*anthropic)(nil)

func (c *anthropic) AnalyzeLocation(ctx context.Context, image []byte, meta *exif.Metadata) *locate.Result {
	if !c.cfg.Configured() {
		return &locate.Result{ErrorMessage: "Claude API key not configured. Set CLAUDE_API_KEY in the environment."}
	}

	body := messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: maxTokens,
		Messages: []message{
			{
				Role: "user",
				Content: []contentBlock{
					{
						Type: "image",
						Source: &imageSource{
							Type:      "base64",
							MediaType: SniffMediaType(image),
							Data:      base64.StdEncoding.EncodeToString(image),
						},
					},
					{
						Type: "text",
						Text: buildPrompt(meta),
					},
				},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &locate.Result{ErrorMessage: fmt.Sprintf("failed to analyse photo: %s", err.Error())}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return &locate.Result{ErrorMessage: fmt.Sprintf("failed to analyse photo: %s", err.Error())}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	res, err := c.h.Do(req)
	if err != nil {
		return &locate.Result{ErrorMessage: fmt.Sprintf("failed to analyse photo: %s", err.Error())}
	}

	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &locate.Result{ErrorMessage: fmt.Sprintf("failed to analyse photo: %s", err.Error())}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		slog.ErrorContext(ctx, "claude API error", "status", res.StatusCode, "body", string(data))
		return &locate.Result{ErrorMessage: fmt.Sprintf("API error: %d. Check your API key and configuration.", res.StatusCode)}
	}

	var mr messagesResponse
	if err := json.Unmarshal(data, &mr); err != nil {
		return &locate.Result{ErrorMessage: fmt.Sprintf("failed to analyse photo: %s", err.Error())}
	}

	text := mr.firstText()
	if text == "" {
		return &locate.Result{ErrorMessage: "no text response received from the Claude API"}
	}

	return decodeAnswer(text)
}

// SniffMediaType detects the image format from its leading magic bytes. The
// upload's file extension can't be trusted and the API wants an accurate
// media-type hint. Anything unrecognised is assumed to be JPEG.
func SniffMediaType(image []byte) string {
	if len(image) < 4 {
		return "image/jpeg"
	}

	switch {
	case bytes.HasPrefix(image, []byte{0x89, 0x50, 0x4E, 0x47}):
		return "image/png"
	case bytes.HasPrefix(image, []byte{0x52, 0x49, 0x46, 0x46}):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func buildPrompt(meta *exif.Metadata) string {
	var metaLines strings.Builder
	if meta != nil {
		if meta.HasCoordinates() {
			fmt.Fprintf(&metaLines, "GPS coordinates: %v, %v\n", *meta.Latitude, *meta.Longitude)
		}

		if meta.CameraMake != "" {
			fmt.Fprintf(&metaLines, "Camera: %s %s\n", meta.CameraMake, meta.CameraModel)
		}

		if !meta.DateTaken.IsZero() {
			fmt.Fprintf(&metaLines, "Date: %s\n", meta.DateTaken.Format("2006-01-02 15:04:05"))
		}
	}

	var b strings.Builder
	b.WriteString("Analyse this photo and determine where in the world it was taken.\n\n")
	if metaLines.Len() > 0 {
		fmt.Fprintf(&b, "Metadata from the photo:\n%s\n", metaLines.String())
	}

	b.WriteString(`Provide a detailed analysis with:
1. The estimated location (city, country)
2. GPS coordinates (latitude, longitude) if you can determine them
3. An explanation of why you think it is there (buildings, landscape, signs, vegetation, architecture, etc.)
4. A list of the visual clues you found
5. A confidence score (0-100%)

Answer in JSON format:
{
  "locationName": "Name of the location",
  "latitude": 52.1234,
  "longitude": 4.5678,
  "country": "Netherlands",
  "city": "Amsterdam",
  "explanation": "Detailed explanation...",
  "confidence": 85.5,
  "clues": ["clue 1", "clue 2"]
}`)

	return b.String()
}

// decodeAnswer turns the model's free-text reply into a result. Prose around
// the JSON is tolerated; a reply with no JSON in it at all still comes back
// as a low-confidence explanation rather than a failure.
func decodeAnswer(text string) *locate.Result {
	if jsonText, ok := ExtractJSON(text); ok {
		var r locate.Result
		if err := json.Unmarshal([]byte(jsonText), &r); err == nil {
			return &r
		}
	}

	confidence := degradedConfidence
	return &locate.Result{Explanation: text, Confidence: &confidence}
}

// ExtractJSON slices the candidate JSON object out of a reply that may wrap
// it in prose or code fences: everything from the first "{" to the last "}".
func ExtractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}

	return s[start : end+1], true
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Source *imageSource `json:"source,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (r messagesResponse) firstText() string {
	for _, block := range r.Content {
		if block.Type == "text" {
			return block.Text
		}
	}

	return ""
}
