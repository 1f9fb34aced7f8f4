package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/jobs"
	"github.com/pressureprofile/rma-starter/internal/logging"
	"github.com/pressureprofile/rma-starter/internal/models"
	"github.com/pressureprofile/rma-starter/internal/paths"
)

const (
	apiBaseURL     = "https://api.dropboxapi.com/2/"
	contentBaseURL = "https://content.dropboxapi.com/2/"
)

// Client represents a Dropbox API client
type Client struct {
	config     *config.Config
	httpClient *http.Client
}

// NewClient creates a new Dropbox client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// Entry is one item of a folder listing.
type Entry struct {
	Tag       string `json:".tag"`
	Name      string `json:"name"`
	PathLower string `json:"path_lower"`
}

// callAPI performs one RPC-style call against the main API endpoint.
// Dropbox reports failures as an "error_summary" field in a JSON body.
func (c *Client) callAPI(ctx context.Context, path string, params interface{}, out interface{}) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.DropboxAccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var errEnvelope struct {
		ErrorSummary string `json:"error_summary"`
	}
	if err := json.Unmarshal(bodyBytes, &errEnvelope); err == nil && errEnvelope.ErrorSummary != "" {
		return &apiError{Summary: errEnvelope.ErrorSummary, Body: bodyBytes}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dropbox %s: status %d, body: %s", path, resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// apiError carries a Dropbox error_summary plus the raw body, which
// some callers inspect (shared links that already exist, for example).
type apiError struct {
	Summary string
	Body    []byte
}

func (e *apiError) Error() string {
	return fmt.Sprintf("dropbox error: %s", e.Summary)
}

// callContent performs one call against the content endpoint, where
// parameters travel in the Dropbox-API-Arg header and the body carries
// file content.
func (c *Client) callContent(ctx context.Context, path string, params interface{}, contentType string, body io.Reader) (string, error) {
	arg, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal api arg: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, contentBaseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.DropboxAccessToken)
	req.Header.Set("Dropbox-API-Arg", string(arg))
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dropbox %s: status %d, body: %s", path, resp.StatusCode, string(bodyBytes))
	}
	return string(bodyBytes), nil
}

// CopyFolder copies a folder and its contents. Both paths are
// canonicalized first. Returns the lower-cased path of the new folder.
func (c *Client) CopyFolder(ctx context.Context, source, destination string) (string, error) {
	params := map[string]string{
		"from_path": paths.Compliant(source),
		"to_path":   paths.Compliant(destination),
	}
	var response struct {
		Metadata struct {
			PathLower string `json:"path_lower"`
		} `json:"metadata"`
	}
	if err := c.callAPI(ctx, "files/copy_v2", params, &response); err != nil {
		return "", fmt.Errorf("failed to copy folder: %w", err)
	}
	if response.Metadata.PathLower == "" {
		return "", fmt.Errorf("unexpected response from folder copy")
	}
	logging.Debugf("Created %s", response.Metadata.PathLower)
	return response.Metadata.PathLower, nil
}

// ListFolder lists the immediate contents of a folder.
func (c *Client) ListFolder(ctx context.Context, path string) ([]Entry, error) {
	params := map[string]interface{}{
		"path":      paths.Compliant(path),
		"recursive": false,
	}
	var response struct {
		Entries []Entry `json:"entries"`
	}
	if err := c.callAPI(ctx, "files/list_folder", params, &response); err != nil {
		return nil, fmt.Errorf("failed to list folder: %w", err)
	}
	return response.Entries, nil
}

// Download fetches one file as text.
func (c *Client) Download(ctx context.Context, path string) (string, error) {
	params := map[string]string{"path": paths.Compliant(path)}
	text, err := c.callContent(ctx, "files/download", params, "text/plain", nil)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", path, err)
	}
	return text, nil
}

// UploadText stores a string as a file, overwriting any existing one.
func (c *Client) UploadText(ctx context.Context, text, destination string) error {
	params := map[string]interface{}{
		"path": paths.Compliant(destination),
		"mode": "overwrite",
		"mute": true,
	}
	if _, err := c.callContent(ctx, "files/upload", params, "application/octet-stream", strings.NewReader(text)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", destination, err)
	}
	return nil
}

// saveURLStatus is the response shape shared by save_url and its
// check_job_status companion.
type saveURLStatus struct {
	Tag        string `json:".tag"`
	AsyncJobID string `json:"async_job_id"`
	Size       int64  `json:"size"`
}

func (s *saveURLStatus) jobStatus() models.JobStatus {
	switch s.Tag {
	case "complete":
		return models.JobSucceeded
	case "failed":
		return models.JobFailed
	case "async_job_id", "in_progress":
		return models.JobInProgress
	default:
		return models.JobPending
	}
}

// SaveFromURL has Dropbox download a remote URL straight into storage.
// The transfer runs server-side; this call polls it to completion
// within the configured budget.
func (c *Client) SaveFromURL(ctx context.Context, sourceURL, destination string) error {
	params := map[string]string{
		"path": paths.Compliant(destination),
		"url":  sourceURL,
	}
	var initial saveURLStatus
	if err := c.callAPI(ctx, "files/save_url", params, &initial); err != nil {
		return fmt.Errorf("failed to save from url: %w", err)
	}
	if initial.Tag == "complete" {
		return nil
	}
	if initial.Tag != "async_job_id" {
		return fmt.Errorf("unexpected status tag from save_url: %s", initial.Tag)
	}

	checkParams := map[string]string{"async_job_id": initial.AsyncJobID}
	status, err := jobs.Await(ctx, func(ctx context.Context) (models.JobStatus, error) {
		var progress saveURLStatus
		if err := c.callAPI(ctx, "files/save_url/check_job_status", checkParams, &progress); err != nil {
			return "", err
		}
		return progress.jobStatus(), nil
	}, c.config.SaveURLPollAttempts, c.config.SaveURLPollInterval)
	if err != nil {
		return fmt.Errorf("failed to check save_url job: %w", err)
	}
	if status != models.JobSucceeded {
		return fmt.Errorf("save_url did not complete in time (status %s)", status)
	}
	return nil
}

// CreateSharedLink creates a link to a file or folder. The link is not
// specific to the current user. An "already exists" response is
// treated as success: the existing link is returned.
func (c *Client) CreateSharedLink(ctx context.Context, path string) (string, error) {
	params := map[string]string{"path": paths.Compliant(path)}
	var response struct {
		URL string `json:"url"`
	}
	err := c.callAPI(ctx, "sharing/create_shared_link_with_settings", params, &response)
	if err != nil {
		var dbErr *apiError
		if errors.As(err, &dbErr) && strings.HasPrefix(dbErr.Summary, "shared_link_already_exists") {
			var existing struct {
				Error struct {
					SharedLinkAlreadyExists struct {
						Metadata struct {
							URL string `json:"url"`
						} `json:"metadata"`
					} `json:"shared_link_already_exists"`
				} `json:"error"`
			}
			if jsonErr := json.Unmarshal(dbErr.Body, &existing); jsonErr == nil &&
				existing.Error.SharedLinkAlreadyExists.Metadata.URL != "" {
				logging.Debugf("Using existing shared link for %s", path)
				return existing.Error.SharedLinkAlreadyExists.Metadata.URL, nil
			}
		}
		return "", fmt.Errorf("failed to create shared link: %w", err)
	}
	if response.URL == "" {
		return "", fmt.Errorf("unexpected response from shared link creation")
	}
	return response.URL, nil
}

// CreateShortcut writes a minimal Windows internet-shortcut file
// pointing at the given URL. The filename typically ends with ".url".
func (c *Client) CreateShortcut(ctx context.Context, url, filename string) error {
	// The only required field is 'InternetShortcut'.
	content := "[InternetShortcut]\nURL=" + url
	return c.UploadText(ctx, content, filename)
}

var shortcutURLPattern = regexp.MustCompile(`(?i)url\s*=\s*(\S+)`)

// URLFromShortcut reads a shortcut file and extracts its target URL.
// Non-http schemes are rejected; they are probably relative to the
// creator's computer.
func (c *Client) URLFromShortcut(ctx context.Context, filename string) (string, error) {
	content, err := c.Download(ctx, filename)
	if err != nil {
		return "", err
	}
	matches := shortcutURLPattern.FindStringSubmatch(content)
	if len(matches) < 2 {
		return "", fmt.Errorf("no url found in shortcut %s", filename)
	}
	url := matches[1]
	if !strings.HasPrefix(url, "http") {
		return "", fmt.Errorf("shortcut %s has non-http target", filename)
	}
	return url, nil
}

// Search finds files and folders mentioning the query beneath the
// given scope path. Returns the lower-cased paths of all matches.
func (c *Client) Search(ctx context.Context, query, scope string) ([]string, error) {
	params := map[string]interface{}{
		"query": query,
		"options": map[string]string{
			"path": paths.Compliant(scope),
		},
	}
	var response struct {
		Matches []struct {
			Metadata struct {
				Metadata struct {
					PathLower string `json:"path_lower"`
				} `json:"metadata"`
			} `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.callAPI(ctx, "files/search_v2", params, &response); err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	hits := make([]string, 0, len(response.Matches))
	for _, match := range response.Matches {
		hits = append(hits, match.Metadata.Metadata.PathLower)
	}
	return hits, nil
}
