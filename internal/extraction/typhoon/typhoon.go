package typhoon

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"parcelscan/internal/config"
	"parcelscan/internal/domain"
	"parcelscan/internal/extraction"
	"parcelscan/internal/port"
)

const defaultBaseURL = "https://api.opentyphoon.ai/v1"

// Client implements port.FieldExtractor against the Typhoon chat-completions API.
type Client struct {
	apiKey    string
	model     string
	endpoint  string
	sendImage bool
	client    *http.Client
}

// NewClient creates a Typhoon-based field extractor from config.
func NewClient(cfg *config.TyphoonConfig) *Client {
	base := cfg.APIURL
	if base == "" {
		base = defaultBaseURL
	}
	return newClient(cfg, resolveEndpoint(base))
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.TyphoonConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.TyphoonConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "typhoon-v2.5-30b-a3b-instruct"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		model:     model,
		endpoint:  endpoint,
		sendImage: cfg.SendImage,
		client:    &http.Client{Timeout: timeout},
	}
}

// resolveEndpoint appends /chat/completions unless the configured URL
// already carries it.
func resolveEndpoint(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Extract sends the OCR transcript (and the image, when enabled) to Typhoon
// and maps the model's JSON reply into raw field values.
func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (*port.RawFields, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", domain.ErrExtractionAuth)
	}

	prompt := extraction.BuildParcelPrompt(input.Text)

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": extraction.SystemPrompt},
			{"role": "user", "content": c.buildUserContent(input, prompt)},
		},
		"temperature": 0.1,
		"max_tokens":  512,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		// Network failures and client timeouts are transient.
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrExtractionUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, respBody)
	}

	return parseResponse(respBody)
}

// buildUserContent returns either a plain prompt string or multimodal content
// blocks with the image as a base64 data URI, in the chat-completions shape.
func (c *Client) buildUserContent(input port.ExtractInput, prompt string) interface{} {
	if !c.sendImage || len(input.Image) == 0 {
		return prompt
	}

	encoded := base64.StdEncoding.EncodeToString(input.Image)
	dataURI := fmt.Sprintf("data:%s;base64,%s", input.ContentType, encoded)
	return []map[string]interface{}{
		{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		},
		{
			"type": "text",
			"text": prompt,
		},
	}
}

func (c *Client) statusError(resp *http.Response, body []byte) error {
	detail := extractErrorDetail(body)
	baseErr := fmt.Errorf("typhoon API error (status %d): %s", resp.StatusCode, detail)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %v", domain.ErrExtractionAuth, baseErr)
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := extraction.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return extraction.NewRateLimitError(baseErr, retryAfter)
	default:
		return fmt.Errorf("%w: %v", domain.ErrExtractionUnavailable, baseErr)
	}
}

// extractErrorDetail pulls the service's error message out of an error body,
// falling back to the raw body.
func extractErrorDetail(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return truncate(string(body), 500)
}

// apiResponse models the Typhoon chat-completions response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte) (*port.RawFields, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling response: %v", domain.ErrMalformedExtraction, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response, no choices", domain.ErrMalformedExtraction)
	}

	content := stripCodeFences(resp.Choices[0].Message.Content)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: parsing model JSON output: %v (raw: %s)",
			domain.ErrMalformedExtraction, err, truncate(content, 500))
	}

	return &port.RawFields{
		RecipientName:   fieldValue(payload, "recipient_name", "ชื่อผู้รับ"),
		RoomNumber:      fieldValue(payload, "room_number", "เลขห้อง"),
		ShippingCompany: fieldValue(payload, "shipping_company", "บริษัทขนส่ง"),
		TrackingNumber:  fieldValue(payload, "tracking_number", "รหัสพัสดุ", "เลขพัสดุ"),
	}, nil
}

// stripCodeFences removes a ```json ... ``` wrapper the model sometimes adds.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.Contains(content, "```") {
		return content
	}
	parts := strings.Split(content, "```")
	if len(parts) < 2 {
		return content
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

// fieldValue reads the first present key, tolerating strings, numbers, and
// nulls. Unrecognized shapes map to empty, never to an error.
func fieldValue(payload map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
		// null or an unexpected shape
		return ""
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
