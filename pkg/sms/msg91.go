// Package sms delivers transactional SMS through the MSG91 HTTP API.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://control.msg91.com/api/v5"

// Sender delivers a message to one phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// Config carries MSG91 credentials.
type Config struct {
	AuthKey    string
	SenderID   string
	TemplateID string
	BaseURL    string
}

// Client is a thin MSG91 HTTP client.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     zerolog.Logger
}

// New constructs a Client. BaseURL defaults to the public MSG91 endpoint.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.AuthKey == "" {
		return nil, fmt.Errorf("msg91 auth key must be provided")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cfg:        cfg,
		logger:     logger.With().Str("component", "msg91").Logger(),
	}, nil
}

type flowRequest struct {
	TemplateID string          `json:"template_id"`
	Sender     string          `json:"sender"`
	Recipients []flowRecipient `json:"recipients"`
}

type flowRecipient struct {
	Mobiles string `json:"mobiles"`
	Message string `json:"message"`
}

// Send dispatches the message through the MSG91 flow API.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	payload := flowRequest{
		TemplateID: c.cfg.TemplateID,
		Sender:     c.cfg.SenderID,
		Recipients: []flowRecipient{{Mobiles: phone, Message: message}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/flow/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authkey", c.cfg.AuthKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to dispatch sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("msg91 returned %d: %s", resp.StatusCode, string(detail))
	}

	c.logger.Info().Str("phone", phone).Msg("sms dispatched")

	return nil
}
