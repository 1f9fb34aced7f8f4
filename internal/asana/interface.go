package asana

import (
	"context"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/models"
)

// TrackerClient defines the operations a task-tracker client should implement
type TrackerClient interface {
	GetTask(ctx context.Context, taskID string) (*models.TrackerTask, error)
	CreateTask(ctx context.Context, title, notes, sectionID, assigneeID string) (string, error)
	GetTaskAttachments(ctx context.Context, taskID string) ([]models.Attachment, error)
	DuplicateProject(ctx context.Context, template, name string) (*models.AsyncJob, error)
	GetJobStatus(ctx context.Context, jobID string) (*models.AsyncJob, error)
	MoveProject(ctx context.Context, projectID, teamID string) error
	FindProjectTasks(ctx context.Context, projectID string, phrases []string) (map[int]string, error)
	SetTaskDescription(ctx context.Context, taskID string, items []models.DescriptionItem) error
	SupportTaskURL(taskID string) string
	ProjectURL(projectID string) string
}

// NewTrackerClient creates a new tracker client backed by the Asana REST API
func NewTrackerClient(cfg *config.Config) TrackerClient {
	return NewClient(cfg)
}
