package slides

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/logging"
)

// deckAPI is the slice of the Slides client the appender needs.
type deckAPI interface {
	CloneTemplate(ctx context.Context, templateID, name string) (string, error)
	ReplacePlaceholders(ctx context.Context, presentationID string, replacements map[string]string) error
	AppendSlidesFrom(ctx context.Context, sourceID, targetID string) error
	TrashFile(ctx context.Context, fileID string) error
}

// Appender adds a filled-in RMA summary slide to a product deck. The
// slide comes from a template presentation: the template is cloned,
// its placeholders replaced, the result appended to the deck and the
// clone trashed.
type Appender struct {
	slides     deckAPI
	templateID string
}

// NewAppender creates an appender using the configured template.
func NewAppender(cfg *config.Config) *Appender {
	return NewAppenderWithClient(NewClient(cfg), cfg)
}

// NewAppenderWithClient creates an appender over an explicit Slides
// backend.
func NewAppenderWithClient(slides deckAPI, cfg *config.Config) *Appender {
	return &Appender{
		slides:     slides,
		templateID: cfg.SlidesTemplateID,
	}
}

// AppendRMAInfo appends the summary slide for one RMA to the given
// deck. The temporary clone is trashed whether or not the append
// succeeds.
func (a *Appender) AppendRMAInfo(ctx context.Context, deckID string, rmaNumber int, folderPath, supportLink string) error {
	date := time.Now().UTC().Format("2006-01-02")

	tempID, err := a.slides.CloneTemplate(ctx, a.templateID, fmt.Sprintf("RMA %d %s", rmaNumber, date))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.slides.TrashFile(ctx, tempID); err != nil {
			logging.Warnf("Failed to trash temporary presentation %s: %v", tempID, err)
		}
	}()

	replacements := map[string]string{
		"{{rma_number}}":        strconv.Itoa(rmaNumber),
		"{{rma_folder}}":        folderPath,
		"{{tech_support_link}}": supportLink,
		"{{rma_issue_date}}":    date,
	}
	if err := a.slides.ReplacePlaceholders(ctx, tempID, replacements); err != nil {
		return err
	}

	if err := a.slides.AppendSlidesFrom(ctx, tempID, deckID); err != nil {
		return err
	}
	logging.Infof("Appended RMA %d slide to deck %s", rmaNumber, deckID)
	return nil
}
