// Package saga orchestrates the RMA intake workflow: one form
// submission fans out across the task tracker, cloud storage, the
// tracking sheet, the slide decks and email. Steps run in a fixed
// order. Early steps must succeed or the run aborts; later steps
// record their failures and let the run continue, because by then the
// RMA number and folder already exist and a partial result is worth
// more than none.
package saga

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/pressureprofile/rma-starter/internal/asana"
	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/dropbox"
	"github.com/pressureprofile/rma-starter/internal/jobs"
	"github.com/pressureprofile/rma-starter/internal/logging"
	"github.com/pressureprofile/rma-starter/internal/mailer"
	"github.com/pressureprofile/rma-starter/internal/models"
	"github.com/pressureprofile/rma-starter/internal/notes"
	"github.com/pressureprofile/rma-starter/internal/paths"
	"github.com/pressureprofile/rma-starter/internal/sheets"
	"github.com/pressureprofile/rma-starter/internal/slides"
)

// Step names used as keys in SagaResult.StepErrors.
const (
	StepDuplicateProject    = "duplicateProject"
	StepDownloadAttachments = "downloadAttachments"
	StepAppendSlides        = "appendSlides"
	StepCreateShortcut      = "createShortcut"
	StepAwaitDuplication    = "awaitDuplication"
	StepCustomizeProject    = "customizeProject"
	StepNotifyCustomer      = "notifyCustomer"
)

// Subfolder names inside every RMA folder, fixed by the folder-tree
// template.
const (
	commsSubfolder  = "1. Customer Communication"
	photosSubfolder = "2. Incoming Photos"
)

// Allocator reserves RMA numbers and records them durably.
type Allocator interface {
	AllocateNext(ctx context.Context, build func(number int) models.RMARecord) (models.RMARecord, error)
}

// DeckAppender adds the RMA summary slide to a product deck.
type DeckAppender interface {
	AppendRMAInfo(ctx context.Context, deckID string, rmaNumber int, folderPath, supportLink string) error
}

// Notifier sends the return instructions to the customer contact.
type Notifier interface {
	NotifyCustomer(ctx context.Context, recipient, contactName, rmaProjectID string, rmaNumber int, officeCode string) error
}

// Coordinator runs the RMA intake workflow.
type Coordinator struct {
	config    *config.Config
	tracker   asana.TrackerClient
	storage   dropbox.StorageClient
	allocator Allocator
	appender  DeckAppender
	notifier  Notifier
	tickets   *TicketCache
}

// NewCoordinator wires a coordinator to the real backing services.
func NewCoordinator(cfg *config.Config) *Coordinator {
	return &Coordinator{
		config:    cfg,
		tracker:   asana.NewTrackerClient(cfg),
		storage:   dropbox.NewStorageClient(cfg),
		allocator: sheets.NewAllocator(cfg),
		appender:  slides.NewAppender(cfg),
		notifier:  mailer.NewMailer(cfg),
		tickets:   NewTicketCache(cfg.TicketCacheTTL),
	}
}

// NewCoordinatorWithClients wires a coordinator to explicit backends.
func NewCoordinatorWithClients(
	cfg *config.Config,
	tracker asana.TrackerClient,
	storage dropbox.StorageClient,
	allocator Allocator,
	appender DeckAppender,
	notifier Notifier,
) *Coordinator {
	return &Coordinator{
		config:    cfg,
		tracker:   tracker,
		storage:   storage,
		allocator: allocator,
		appender:  appender,
		notifier:  notifier,
		tickets:   NewTicketCache(cfg.TicketCacheTTL),
	}
}

// Start launches the coordinator's background workers.
func (c *Coordinator) Start() {
	c.tickets.Start()
}

// Stop halts the coordinator's background workers.
func (c *Coordinator) Stop() {
	c.tickets.Stop()
}

// TicketSummary resolves a support-ticket link or id and returns the
// parsed summary of the ticket notes, fetching and caching it on first
// use.
func (c *Coordinator) TicketSummary(ctx context.Context, linkOrID string) (string, models.SupportTicketSummary, error) {
	ticketID, err := notes.ExtractTaskID(linkOrID)
	if err != nil {
		return "", models.SupportTicketSummary{}, err
	}

	if summary, ok := c.tickets.Get(ticketID); ok {
		return ticketID, summary, nil
	}

	task, err := c.tracker.GetTask(ctx, ticketID)
	if err != nil {
		return "", models.SupportTicketSummary{}, fmt.Errorf("failed to load ticket %s: %w", ticketID, err)
	}
	summary := notes.ExtractSummary(task.Notes)
	c.tickets.Put(ticketID, summary)
	return ticketID, summary, nil
}

// Run executes the whole workflow for one form submission.
//
// Returns an error only when a hard step fails: resolving the ticket,
// allocating the RMA number or creating the RMA folder. Everything
// after that records failures in the result's StepErrors instead.
func (c *Coordinator) Run(ctx context.Context, form models.RMAForm) (*models.SagaResult, error) {
	result := &models.SagaResult{StepErrors: make(map[string]string)}

	ticketID, summary, err := c.TicketSummary(ctx, form.TechSupportLink)
	if err != nil {
		return nil, err
	}
	result.SupportTask = models.SupportTaskRef{
		ID:   ticketID,
		Link: c.tracker.SupportTaskURL(ticketID),
	}

	// Allocate the RMA number and its sheet row in one step. The
	// folder path is derived from the number inside the allocation,
	// so the recorded row is complete from the start.
	parent := paths.Compliant(form.SelectedFolder)
	record, err := c.allocator.AllocateNext(ctx, func(number int) models.RMARecord {
		return models.RMARecord{
			Customer:    form.Customer,
			Description: summary.IssueDescription,
			FolderPath:  fmt.Sprintf("%s/RMA %d", parent, number),
			TicketID:    ticketID,
		}
	})
	if err != nil {
		return nil, err
	}
	result.RMANumber = record.Number

	rmaFolder := fmt.Sprintf("%s/RMA %d", parent, record.Number)
	if _, err := c.storage.CopyFolder(ctx, c.config.RMATemplateFolder, rmaFolder); err != nil {
		// The sheet row for this number already exists and is never
		// deleted; flag it for manual cleanup.
		logging.Errorf("RMA %d is recorded in the sheet but its folder was not created: %v", record.Number, err)
		return nil, fmt.Errorf("failed to create RMA folder: %w", err)
	}

	result.RMAFolder = c.folderRefs(ctx, rmaFolder)
	result.CommsFolder = c.folderRefs(ctx, rmaFolder+"/"+commsSubfolder)
	result.PhotosFolder = c.folderRefs(ctx, rmaFolder+"/"+photosSubfolder)

	// Kick off the tracker-project duplication now and collect it
	// later; the servers typically need tens of seconds.
	projectName := fmt.Sprintf("RMA %d %s", record.Number, form.Customer)
	duplication, dupErr := c.tracker.DuplicateProject(ctx, "rma", projectName)
	if dupErr != nil {
		result.StepErrors[StepDuplicateProject] = dupErr.Error()
	}

	downloaded, err := c.downloadAttachments(ctx, ticketID, result.CommsFolder.Compliant)
	result.DownloadedAttachments = downloaded
	if err != nil {
		result.StepErrors[StepDownloadAttachments] = err.Error()
	}

	if deckID := slides.SelectDeck(summary.Product, form.SlidesLink, c.config.Decks); deckID != "" {
		err := c.appender.AppendRMAInfo(ctx, deckID, record.Number, result.RMAFolder.Compliant, result.SupportTask.Link)
		if err != nil {
			result.StepErrors[StepAppendSlides] = err.Error()
		} else {
			result.AppendedDeck = deckID
		}
	}

	shortcut := result.CommsFolder.Compliant + "/Tech Support Link.url"
	if err := c.storage.CreateShortcut(ctx, result.SupportTask.Link, shortcut); err != nil {
		result.StepErrors[StepCreateShortcut] = err.Error()
	}

	if dupErr == nil {
		c.collectProject(ctx, duplication, result)
	}

	if form.EmailEnabled {
		err := c.notifier.NotifyCustomer(ctx, form.EmailRecipient, summary.ContactName,
			result.RMAProject.ID, record.Number, form.ReturnOffice)
		if err != nil {
			result.StepErrors[StepNotifyCustomer] = err.Error()
		} else {
			result.EmailSent = true
		}
	}

	if len(result.StepErrors) == 0 {
		result.StepErrors = nil
	}
	return result, nil
}

// folderRefs builds the derived view of one folder. A failed link
// creation degrades to an empty link rather than failing the run.
func (c *Coordinator) folderRefs(ctx context.Context, path string) models.FolderRefs {
	compliant := paths.Compliant(path)
	link, err := c.storage.CreateSharedLink(ctx, compliant)
	if err != nil {
		logging.Warnf("Failed to create shared link for %s: %v", compliant, err)
		link = ""
	}
	return models.FolderRefs{
		Compliant: compliant,
		Windows:   paths.AsWindows(compliant),
		Link:      link,
	}
}

// downloadAttachments copies every ticket attachment into the given
// folder, server-side. Per-attachment failures are aggregated; the
// rest still download.
func (c *Coordinator) downloadAttachments(ctx context.Context, ticketID, destinationFolder string) ([]string, error) {
	attachments, err := c.tracker.GetTaskAttachments(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket attachments: %w", err)
	}

	var errs *multierror.Error
	downloaded := []string{}
	for _, attachment := range attachments {
		destination := destinationFolder + "/" + attachment.Name
		if err := c.storage.SaveFromURL(ctx, attachment.DownloadURL, destination); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", attachment.Name, err))
			continue
		}
		downloaded = append(downloaded, destination)
	}
	return downloaded, errs.ErrorOrNil()
}

// collectProject waits for the project duplication to finish, records
// the outcome and customizes the new project. The new project id is
// known from the moment duplication started, so customization proceeds
// even when the job is still running at the polling deadline.
func (c *Coordinator) collectProject(ctx context.Context, duplication *models.AsyncJob, result *models.SagaResult) {
	status, err := jobs.Await(ctx, func(ctx context.Context) (models.JobStatus, error) {
		job, err := c.tracker.GetJobStatus(ctx, duplication.ID)
		if err != nil {
			return "", err
		}
		return job.Status, nil
	}, c.config.DuplicationPollAttempts, c.config.DuplicationPollInterval)
	if err != nil {
		result.StepErrors[StepAwaitDuplication] = err.Error()
		status = duplication.Status
	} else if status != models.JobSucceeded {
		logging.Warnf("Project duplication for RMA %d not finished: %s", result.RMANumber, status)
		result.StepErrors[StepAwaitDuplication] = fmt.Sprintf("duplication status %s", status)
	}

	result.RMAProject = models.ProjectResult{
		ID:     duplication.NewProjectID,
		Link:   c.tracker.ProjectURL(duplication.NewProjectID),
		Status: status,
	}

	if err := c.customizeProject(ctx, result); err != nil {
		result.StepErrors[StepCustomizeProject] = err.Error()
	}
}

// customizeProject moves the duplicated project to the RMA team and
// fills in the standard task descriptions with links into the new
// folder tree.
func (c *Coordinator) customizeProject(ctx context.Context, result *models.SagaResult) error {
	projectID := result.RMAProject.ID

	// New projects land in the template's team by default.
	if err := c.tracker.MoveProject(ctx, projectID, c.config.RMATeamID); err != nil {
		logging.Warnf("Failed to move project %s to RMA team: %v", projectID, err)
	}

	found, err := c.tracker.FindProjectTasks(ctx, projectID, c.config.TaskSearchPhrases)
	if err != nil {
		return err
	}

	var errs *multierror.Error
	for i := range c.config.TaskSearchPhrases {
		taskID, ok := found[i]
		if !ok {
			continue
		}

		items := []models.DescriptionItem{
			{Text: "Tech Support Record", Link: result.SupportTask.Link},
		}
		switch i {
		case 0:
			items = append(items, models.DescriptionItem{
				Text: "Incoming Photos Folder", Link: result.PhotosFolder.Link,
			})
		case 2:
			items = append(items, models.DescriptionItem{
				Text: "Customer Communications Folder", Link: result.CommsFolder.Link,
			})
		}

		if err := c.tracker.SetTaskDescription(ctx, taskID, items); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("task %s: %w", taskID, err))
		}
	}
	return errs.ErrorOrNil()
}
