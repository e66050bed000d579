// Package translate wraps the external translation backend behind a single
// outbound call with same-language short-circuit, timeout and error
// normalization.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single translation request.
const DefaultTimeout = 30 * time.Second

// Kind classifies a translation failure.
type Kind int

const (
	KindTimeout Kind = iota
	KindParse
	KindBackend
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// Error is a normalized translation failure. Message carries the
// backend-reported error for KindBackend; Raw keeps the unparseable body for
// KindParse.
type Error struct {
	Kind    Kind
	Message string
	Raw     string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "translation request timed out"
	case KindParse:
		return "unparseable translation response"
	case KindBackend:
		return e.Message
	default:
		return "translation failed"
	}
}

// Client calls the translation backend.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a Client with the default request timeout.
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, DefaultTimeout)
}

// NewWithTimeout creates a Client with an explicit request timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	Err            string `json:"error"`
}

// Translate returns text translated from sourceLang to targetLang. When the
// languages match it returns text unchanged without any network call. It
// never retries; fallback behavior is the caller's decision.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == targetLang {
		return text, nil
	}

	body, err := json.Marshal(translateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &Error{Kind: KindTimeout}
		}
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return "", &Error{Kind: KindTimeout}
		}
		return "", fmt.Errorf("failed to read translation response: %w", err)
	}

	var decoded translateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &Error{Kind: KindParse, Raw: string(raw)}
	}
	if decoded.Err != "" {
		return "", &Error{Kind: KindBackend, Message: decoded.Err}
	}
	return decoded.TranslatedText, nil
}

// Health probes the backend readiness endpoint. It is never used in the
// message path.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("translation backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("translation backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
