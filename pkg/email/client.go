package email

import (
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

const defaultBaseURL = "https://api.sendgrid.com/v3"

var (
	errAPIKeyRequired = errors.New("sendgrid api key is required")
	errFromRequired   = errors.New("sendgrid from address is required")
)

// Message is a single transactional email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Client sends mail through the SendGrid v3 REST API.
type Client struct {
	apiKey     string
	from       string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the email client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if strings.TrimSpace(base) != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

func NewClient(apiKey, from string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errAPIKeyRequired
	}
	if strings.TrimSpace(from) == "" {
		return nil, errFromRequired
	}
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		from:    strings.TrimSpace(from),
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send posts one message to the mail/send endpoint.
func (c *Client) Send(ctx context.Context, msg Message) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return errors.New("recipient is required")
	}

	body := sendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: to}}}},
		From:             emailAddress{Email: c.from},
		Subject:          msg.Subject,
	}
	if msg.TextBody != "" {
		body.Content = append(body.Content, content{Type: "text/plain", Value: msg.TextBody})
	}
	if msg.HTMLBody != "" {
		body.Content = append(body.Content, content{Type: "text/html", Value: msg.HTMLBody})
	}
	if len(body.Content) == 0 {
		return errors.New("message body is required")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mail/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling sendgrid: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
