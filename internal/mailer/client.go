package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pressureprofile/rma-starter/internal/config"
)

const sendURL = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"

// Message is one outbound plain-text email. The sending address is the
// authenticated account; FromName only sets the display name.
type Message struct {
	To       string
	ReplyTo  string
	FromName string
	Subject  string
	Body     string
}

// Client sends email through the Gmail API.
type Client struct {
	config     *config.Config
	httpClient *http.Client
}

// NewClient creates a new Gmail client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// Send submits one message for delivery.
func (c *Client) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString([]byte(encodeMIME(msg))),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.GoogleAccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gmail send: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// encodeMIME renders the message as an RFC 2822 payload. Gmail
// rewrites the From address to the authenticated account and keeps
// the display name.
func encodeMIME(msg Message) string {
	var b strings.Builder
	b.WriteString("From: " + msg.FromName + " <" + msg.ReplyTo + ">\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	if msg.ReplyTo != "" {
		b.WriteString("Reply-To: " + msg.ReplyTo + "\r\n")
	}
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String()
}
