package models

// JobStatus is the lifecycle state of an asynchronous remote job.
// The string values match the wire values used by the tracker and
// storage services.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobSucceeded  JobStatus = "succeeded"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether polling should stop at this status.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// AsyncJob is a handle to a long-running operation on a remote service.
type AsyncJob struct {
	ID           string    `json:"id"`
	Status       JobStatus `json:"status"`
	NewProjectID string    `json:"newProjectId,omitempty"`
}

// SupportTicketSummary holds the structured fields extracted from the
// free-text notes of a tech-support ticket. Fields the customer skipped
// are empty strings.
type SupportTicketSummary struct {
	CompanyName      string `json:"companyName"`
	ContactName      string `json:"contactName"`
	ContactEmail     string `json:"contactEmail"`
	Distributor      string `json:"distributor"`
	Product          string `json:"product"`
	SerialNumbers    string `json:"serialNumbers"`
	IssueNature      string `json:"issueNature"`
	IssueDescription string `json:"issueDescription"`
}

// TrackerTask is a task fetched from the task tracker.
type TrackerTask struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

// Attachment describes one file attached to a tracker task. The
// download URL is time-limited by the tracker.
type Attachment struct {
	GID         string `json:"gid"`
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// DescriptionItem is one line to be written into a task description,
// optionally rendered as a hyperlink.
type DescriptionItem struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// RMARecord is the durable row appended to the tracking sheet for each
// allocated RMA number. Records are never mutated or deleted.
type RMARecord struct {
	Number      int    `json:"number"`
	Date        string `json:"date"` // UTC yyyy-mm-dd
	Customer    string `json:"customer"`
	Description string `json:"description"`
	FolderPath  string `json:"folderPath"`
	TicketID    string `json:"ticketId"`
}

// RMAForm carries the fields submitted from the Issue RMA form.
type RMAForm struct {
	TechSupportLink string `json:"tech_support_link"`
	Customer        string `json:"customer"`
	SelectedFolder  string `json:"selectedFolder"`
	SlidesLink      string `json:"slidesLink,omitempty"`
	EmailEnabled    bool   `json:"emailEnabled"`
	EmailRecipient  string `json:"email_recipient,omitempty"`
	ReturnOffice    string `json:"returnLocation,omitempty"`
}

// FolderRefs is the derived view of one storage folder: the canonical
// API path, the Windows display path and a shareable link.
type FolderRefs struct {
	Compliant string `json:"compliant"`
	Windows   string `json:"windows"`
	Link      string `json:"link"`
}

// SupportTaskRef identifies the originating tech-support task.
type SupportTaskRef struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// ProjectResult describes the duplicated tracker project for an RMA.
type ProjectResult struct {
	ID     string    `json:"id"`
	Link   string    `json:"link"`
	Status JobStatus `json:"status"`
}

// SagaResult accumulates the per-step outcomes of one RMA workflow run.
// Soft-step failures are recorded in StepErrors rather than aborting
// the run.
type SagaResult struct {
	SupportTask           SupportTaskRef    `json:"supportTask"`
	RMANumber             int               `json:"rmaNumber"`
	RMAFolder             FolderRefs        `json:"rmaFolder"`
	CommsFolder           FolderRefs        `json:"commsFolder"`
	PhotosFolder          FolderRefs        `json:"photosFolder"`
	DownloadedAttachments []string          `json:"downloadedAttachments"`
	AppendedDeck          string            `json:"appendedDeck,omitempty"`
	RMAProject            ProjectResult     `json:"rmaProject"`
	EmailSent             bool              `json:"emailSent"`
	StepErrors            map[string]string `json:"stepErrors,omitempty"`
}
