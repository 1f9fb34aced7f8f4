package slides

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pressureprofile/rma-starter/internal/config"
)

const (
	driveBaseURL  = "https://www.googleapis.com/drive/v3/files/"
	slidesBaseURL = "https://slides.googleapis.com/v1/presentations/"
)

// Client talks to the Google Drive and Slides APIs, plus the Apps
// Script bridge that handles the one operation the REST APIs lack:
// appending slides from one presentation to another.
type Client struct {
	config     *config.Config
	httpClient *http.Client
}

// NewClient creates a new Slides client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

func (c *Client) call(ctx context.Context, method, url string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.GoogleAccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("google api: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// CloneTemplate copies a Drive file under a new name and returns the
// id of the copy.
func (c *Client) CloneTemplate(ctx context.Context, templateID, name string) (string, error) {
	var response struct {
		ID string `json:"id"`
	}
	payload := map[string]string{"name": name}
	if err := c.call(ctx, http.MethodPost, driveBaseURL+templateID+"/copy", payload, &response); err != nil {
		return "", fmt.Errorf("failed to clone template: %w", err)
	}
	if response.ID == "" {
		return "", fmt.Errorf("unexpected response from template clone")
	}
	return response.ID, nil
}

// ReplacePlaceholders substitutes text across a whole presentation.
// Matching is case-sensitive; placeholders are expected verbatim.
func (c *Client) ReplacePlaceholders(ctx context.Context, presentationID string, replacements map[string]string) error {
	requests := make([]map[string]interface{}, 0, len(replacements))
	for placeholder, value := range replacements {
		requests = append(requests, map[string]interface{}{
			"replaceAllText": map[string]interface{}{
				"containsText": map[string]interface{}{
					"text":      placeholder,
					"matchCase": true,
				},
				"replaceText": value,
			},
		})
	}

	payload := map[string]interface{}{"requests": requests}
	if err := c.call(ctx, http.MethodPost, slidesBaseURL+presentationID+":batchUpdate", payload, nil); err != nil {
		return fmt.Errorf("failed to replace placeholders: %w", err)
	}
	return nil
}

// AppendSlidesFrom appends every slide of the source presentation to
// the end of the target one, via the Apps Script bridge.
func (c *Client) AppendSlidesFrom(ctx context.Context, sourceID, targetID string) error {
	payload := map[string]string{
		"sourceId": sourceID,
		"targetId": targetID,
	}
	var response struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.call(ctx, http.MethodPost, c.config.SlidesBridgeURL, payload, &response); err != nil {
		return fmt.Errorf("failed to append slides: %w", err)
	}
	if response.Status != "ok" {
		return fmt.Errorf("failed to append slides: %s", response.Message)
	}
	return nil
}

// TrashFile moves a Drive file to the trash.
func (c *Client) TrashFile(ctx context.Context, fileID string) error {
	payload := map[string]bool{"trashed": true}
	if err := c.call(ctx, http.MethodPatch, driveBaseURL+fileID, payload, nil); err != nil {
		return fmt.Errorf("failed to trash file: %w", err)
	}
	return nil
}
