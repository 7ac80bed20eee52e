package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Errors distinguishing throttling from generic upstream failure, so the UI
// can tell the user to slow down rather than retry.
var (
	ErrNotConfigured  = errors.New("assistant endpoint is not configured")
	ErrRateLimited    = errors.New("assistant rate limit exceeded")
	ErrQuotaExhausted = errors.New("assistant quota exhausted")
)

const doneSentinel = "[DONE]"

// TurnMessage is one role-tagged entry of the conversation sent upstream.
type TurnMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client streams completions from the remote text-completion endpoint. It
// keeps no state of its own beyond the in-flight decode buffer.
type Client struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
}

// NewClient constructs a Client. An empty endpoint yields a client whose
// calls fail with ErrNotConfigured.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// Stream posts the chronological message list and invokes onDelta for every
// decoded text fragment until the upstream terminates the stream with the
// done sentinel. The accumulated text is returned for callers that want the
// whole completion.
func (c *Client) Stream(ctx context.Context, messages []TurnMessage, onDelta func(string)) (string, error) {
	if strings.TrimSpace(c.endpoint) == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(map[string]any{
		"messages": messages,
		"stream":   true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrQuotaExhausted
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	full := strings.Builder{}
	scanner := bufio.NewScanner(resp.Body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			line = strings.TrimSpace(line[5:])
		}
		if line == doneSentinel {
			break
		}
		delta, ok := decodeDelta(line)
		if !ok || delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("read stream: %w", err)
	}
	return full.String(), nil
}

// decodeDelta pulls the text fragment out of one stream chunk. Chunks carry
// either {"delta": "..."} or the choices/delta/content nesting; anything else
// is skipped rather than failing the stream.
func decodeDelta(line string) (string, bool) {
	var chunk struct {
		Delta   string `json:"delta"`
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		return "", false
	}
	if chunk.Delta != "" {
		return chunk.Delta, true
	}
	if len(chunk.Choices) > 0 {
		return chunk.Choices[0].Delta.Content, true
	}
	return "", false
}
