package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// NoResponseText is returned when the endpoint answers without usable text.
const NoResponseText = "No valid response from AI."

var (
	ErrMissingAPIKey = errors.New("gemini api key is not configured")
	ErrRequest       = errors.New("gemini request failed")
)

type GeminiService struct {
	ApiKey   string
	Endpoint string
	client   *http.Client
}

func NewGeminiService(apiKey, endpoint string) *GeminiService {
	return &GeminiService{
		ApiKey:   apiKey,
		Endpoint: endpoint,
		client:   &http.Client{},
	}
}

// Generate sends a single prompt and returns the generated text.
func (g *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if g.ApiKey == "" {
		return "", ErrMissingAPIKey
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", g.Endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.ApiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, string(respBody))
	}

	return ExtractText(respBody)
}

// ExtractText pulls the generated text out of a response body. The first
// candidate's content may be a plain string or a list of parts whose text is
// concatenated; anything else yields NoResponseText.
func ExtractText(body []byte) (string, error) {
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrRequest, err)
	}

	c, ok := result["candidates"].([]interface{})
	if !ok || len(c) == 0 {
		return NoResponseText, nil
	}
	cand, ok := c[0].(map[string]interface{})
	if !ok {
		return NoResponseText, nil
	}

	switch content := cand["content"].(type) {
	case string:
		if strings.TrimSpace(content) != "" {
			return content, nil
		}
	case map[string]interface{}:
		parts, _ := content["parts"].([]interface{})
		var sb strings.Builder
		for _, p := range parts {
			if part, ok := p.(map[string]interface{}); ok {
				if text, ok := part["text"].(string); ok {
					sb.WriteString(text)
				}
			}
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return NoResponseText, nil
}
