package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNoToken means the Hugging Face API key was never configured.
	ErrNoToken = errors.New("Hugging Face 토큰이 설정되지 않았습니다.")
	// ErrUpstream covers any failure talking to the model router, including
	// an empty completion.
	ErrUpstream = errors.New("AI 모델에 연결할 수 없습니다.")
)

// Client proxies single-turn chat completions to the Hugging Face router.
type Client struct {
	routerURL string
	apiKey    string
	model     string
	httpc     *http.Client
}

func NewClient(routerURL, apiKey, model string) *Client {
	return &Client{
		routerURL: strings.TrimRight(routerURL, "/"),
		apiKey:    apiKey,
		model:     model,
		httpc:     &http.Client{Timeout: 30 * time.Second},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete sends a single user message and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, userMessage string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoToken
	}

	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: userMessage}},
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.routerURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", ErrUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrUpstream
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", ErrUpstream
	}
	if len(out.Choices) == 0 {
		return "", ErrUpstream
	}

	reply := strings.TrimSpace(out.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrUpstream
	}
	return reply, nil
}
