package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/logging"
	"github.com/pressureprofile/rma-starter/internal/models"
)

// Client represents an Asana API client
type Client struct {
	config     *config.Config
	httpClient *http.Client
}

// NewClient creates a new Asana client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// apiError is one entry of the "errors" array Asana returns in an
// otherwise well-formed body.
type apiError struct {
	Message string `json:"message"`
}

// call performs one Asana API round-trip. The path is appended to the
// API base URL. A non-nil payload is wrapped as {"data": payload} and
// sent with the given method (POST unless overridden); a nil payload
// makes a GET. The response body is decoded into out when out is
// non-nil.
func (c *Client) call(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	url := c.config.AsanaBaseURL + path

	var body io.Reader
	if payload != nil {
		wrapped, err := json.Marshal(map[string]interface{}{"data": payload})
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(wrapped)
		if method == "" {
			method = http.MethodPost
		}
	} else {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AsanaAccessToken)
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

	// Asana reports failures as an "errors" array in the body, with or
	// without a 2xx status.
	var errEnvelope struct {
		Errors []apiError `json:"errors"`
	}
	if err := json.Unmarshal(bodyBytes, &errEnvelope); err == nil && len(errEnvelope.Errors) > 0 {
		return fmt.Errorf("asana %s: %s", path, errEnvelope.Errors[0].Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("asana %s: status %d, body: %s", path, resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// GetTask fetches a task by its id
func (c *Client) GetTask(ctx context.Context, taskID string) (*models.TrackerTask, error) {
	var envelope struct {
		Data models.TrackerTask `json:"data"`
	}
	if err := c.call(ctx, "", "tasks/"+taskID, nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &envelope.Data, nil
}

// CreateTask creates a new task in the configured workspace and adds
// it to the given section. Returns the new task id.
func (c *Client) CreateTask(ctx context.Context, title, notes, sectionID, assigneeID string) (string, error) {
	createOptions := map[string]string{
		"assignee":  assigneeID,
		"name":      title,
		"notes":     notes,
		"workspace": c.config.WorkspaceID,
	}

	var envelope struct {
		Data struct {
			GID string `json:"gid"`
		} `json:"data"`
	}
	if err := c.call(ctx, "", "tasks", createOptions, &envelope); err != nil {
		return "", fmt.Errorf("failed to create task: %w", err)
	}
	if envelope.Data.GID == "" {
		return "", fmt.Errorf("unexpected response from task creation")
	}

	addToSection := map[string]string{"task": envelope.Data.GID}
	if err := c.call(ctx, "", "sections/"+sectionID+"/addTask", addToSection, nil); err != nil {
		return "", fmt.Errorf("failed to add task to section: %w", err)
	}

	logging.Debugf("Added new task %s to section %s", envelope.Data.GID, sectionID)
	return envelope.Data.GID, nil
}

// GetTaskAttachments lists a task's attachments, then fetches each one
// for its name and time-limited download URL. Attachments with missing
// or incomplete info are skipped, not fatal.
func (c *Client) GetTaskAttachments(ctx context.Context, taskID string) ([]models.Attachment, error) {
	var listing struct {
		Data []struct {
			GID string `json:"gid"`
		} `json:"data"`
	}
	if err := c.call(ctx, "", "tasks/"+taskID+"/attachments", nil, &listing); err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	attachments := make([]models.Attachment, 0, len(listing.Data))
	for _, entry := range listing.Data {
		if entry.GID == "" {
			logging.Warnf("Attachment has no gid")
			continue
		}
		var detail struct {
			Data models.Attachment `json:"data"`
		}
		if err := c.call(ctx, "", "attachments/"+entry.GID, nil, &detail); err != nil {
			logging.Warnf("Missing or incomplete attachment info: %v", err)
			continue
		}
		if detail.Data.Name == "" || detail.Data.DownloadURL == "" {
			logging.Warnf("Missing or incomplete attachment info for %s", entry.GID)
			continue
		}
		detail.Data.GID = entry.GID
		attachments = append(attachments, detail.Data)
	}
	return attachments, nil
}

// jobEnvelope is Asana's response shape for asynchronous jobs.
type jobEnvelope struct {
	Data struct {
		GID        string `json:"gid"`
		Status     string `json:"status"`
		NewProject struct {
			GID string `json:"gid"`
		} `json:"new_project"`
	} `json:"data"`
}

func (e *jobEnvelope) toJob() *models.AsyncJob {
	return &models.AsyncJob{
		ID:           e.Data.GID,
		Status:       models.JobStatus(e.Data.Status),
		NewProjectID: e.Data.NewProject.GID,
	}
}

// DuplicateProject kicks off an asynchronous duplication of a template
// project, including all its tasks. The template is either one of the
// well-known names ("rma", "csp") resolved from config, or a literal
// project id. The returned handle is typically still in progress;
// callers poll it via GetJobStatus.
func (c *Client) DuplicateProject(ctx context.Context, template, name string) (*models.AsyncJob, error) {
	templateID := template
	switch template {
	case "rma":
		templateID = c.config.RMATemplateProjectID
	case "csp":
		templateID = c.config.CSPTemplateProjectID
	}

	var envelope jobEnvelope
	options := map[string]string{"name": name}
	if err := c.call(ctx, "", "projects/"+templateID+"/duplicate", options, &envelope); err != nil {
		return nil, fmt.Errorf("failed to duplicate project: %w", err)
	}
	if envelope.Data.NewProject.GID == "" {
		return nil, fmt.Errorf("unexpected response from project duplication")
	}
	return envelope.toJob(), nil
}

// GetJobStatus fetches the status of an asynchronous job.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*models.AsyncJob, error) {
	var envelope jobEnvelope
	if err := c.call(ctx, "", "jobs/"+jobID, nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}
	if envelope.Data.Status == "" {
		return nil, fmt.Errorf("unexpected response when getting job status")
	}
	return envelope.toJob(), nil
}

// MoveProject moves a project to a different team.
func (c *Client) MoveProject(ctx context.Context, projectID, teamID string) error {
	var envelope struct {
		Data struct {
			Team struct {
				GID string `json:"gid"`
			} `json:"team"`
		} `json:"data"`
	}
	options := map[string]string{"team": teamID}
	if err := c.call(ctx, http.MethodPut, "projects/"+projectID, options, &envelope); err != nil {
		return fmt.Errorf("failed to move project: %w", err)
	}
	if envelope.Data.Team.GID != teamID {
		return fmt.Errorf("unexpected response from project move")
	}
	return nil
}

// FindProjectTasks returns the tasks of a project whose names contain
// the given phrases, as a sparse phrase-index to task-id mapping.
// Matching is a case-insensitive substring check; each task counts for
// the first phrase it matches. Assumes a 1:1 phrase:task mapping.
func (c *Client) FindProjectTasks(ctx context.Context, projectID string, phrases []string) (map[int]string, error) {
	var envelope struct {
		Data []struct {
			GID  string `json:"gid"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := c.call(ctx, "", "projects/"+projectID+"/tasks", nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}

	found := make(map[int]string)
	for _, task := range envelope.Data {
		nameLower := strings.ToLower(task.Name)
		for i, phrase := range phrases {
			if strings.Contains(nameLower, phrase) {
				found[i] = task.GID
				break
			}
		}
	}
	return found, nil
}

// SetTaskDescription replaces a task's description with the given
// items, one bullet per item, linkified when a URL is supplied.
func (c *Client) SetTaskDescription(ctx context.Context, taskID string, items []models.DescriptionItem) error {
	var html strings.Builder
	html.WriteString("<body><ul>")
	for _, item := range items {
		html.WriteString("<li>")
		if item.Link != "" {
			html.WriteString(`<a href="` + item.Link + `">`)
		}
		html.WriteString(item.Text)
		if item.Link != "" {
			html.WriteString("</a>")
		}
		html.WriteString("</li>")
	}
	html.WriteString("</ul></body>")

	options := map[string]string{"html_notes": html.String()}
	if err := c.call(ctx, http.MethodPut, "tasks/"+taskID, options, nil); err != nil {
		return fmt.Errorf("failed to set task description: %w", err)
	}
	return nil
}

// SupportTaskURL builds the browser URL for a tech-support task.
func (c *Client) SupportTaskURL(taskID string) string {
	return "https://app.asana.com/0/" + c.config.TechSupportProjectID + "/" + taskID + "/f"
}

// ProjectURL builds the browser URL for a project.
func (c *Client) ProjectURL(projectID string) string {
	return "https://app.asana.com/0/" + projectID
}
