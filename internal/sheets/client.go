package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pressureprofile/rma-starter/internal/config"
)

const baseURL = "https://sheets.googleapis.com/v4/spreadsheets/"

// Client represents a Google Sheets API client
type Client struct {
	config     *config.Config
	httpClient *http.Client
}

// NewClient creates a new Sheets client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

func (c *Client) call(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+c.config.RMASheetID+"/"+path, body)
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
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sheets %s: status %d, body: %s", path, resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// GetValues reads a range (A1 notation or a named range) as rows of
// formatted cell values.
func (c *Client) GetValues(ctx context.Context, rangeRef string) ([][]string, error) {
	var response struct {
		Values [][]string `json:"values"`
	}
	if err := c.call(ctx, http.MethodGet, "values/"+url.PathEscape(rangeRef), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rangeRef, err)
	}
	return response.Values, nil
}

// AppendRow appends one row after the last row of the tracking sheet.
func (c *Client) AppendRow(ctx context.Context, row []string) error {
	rangeRef := url.PathEscape(c.config.RMASheetName + "!A:A")
	path := "values/" + rangeRef + ":append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS"

	payload := map[string]interface{}{
		"values": [][]string{row},
	}
	if err := c.call(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}
