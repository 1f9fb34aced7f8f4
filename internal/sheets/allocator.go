package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/logging"
	"github.com/pressureprofile/rma-starter/internal/models"
)

// ErrMissingColumns means the tracking sheet no longer has the expected
// heading row. Allocation fails closed rather than writing cells into
// the wrong columns.
var ErrMissingColumns = errors.New("tracking sheet is missing required columns")

const (
	colDate        = "rma date"
	colCustomer    = "customer"
	colDescription = "project description"
	colFolder      = "customer rma folder"
	colComms       = "customer comm"
)

var requiredColumns = []string{colDate, colCustomer, colDescription, colFolder, colComms}

// SheetAPI is the slice of the Sheets client the allocator needs.
type SheetAPI interface {
	GetValues(ctx context.Context, rangeRef string) ([][]string, error)
	AppendRow(ctx context.Context, row []string) error
}

// Allocator hands out RMA numbers backed by the tracking sheet: the
// next number is one more than the last one recorded, and the record
// for it is appended before the number is released. The whole
// read-increment-append cycle runs under one lock so concurrent
// requests can never be handed the same number.
type Allocator struct {
	mu            sync.Mutex
	sheet         SheetAPI
	numbersRange  string
	headingsRange string
}

// NewAllocator creates an allocator over the configured tracking sheet.
func NewAllocator(cfg *config.Config) *Allocator {
	return NewAllocatorWithSheet(NewClient(cfg), cfg)
}

// NewAllocatorWithSheet creates an allocator over an explicit sheet
// backend.
func NewAllocatorWithSheet(sheet SheetAPI, cfg *config.Config) *Allocator {
	return &Allocator{
		sheet:         sheet,
		numbersRange:  cfg.RMASheetName + "!A:A",
		headingsRange: cfg.RMAHeadingsRange,
	}
}

// AllocateNext reserves the next RMA number. The build callback turns
// the number into the record to append; it runs inside the critical
// section, so it must not call back into the allocator. The completed
// record, with Number and Date filled in, is returned.
func (a *Allocator) AllocateNext(ctx context.Context, build func(number int) models.RMARecord) (models.RMARecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	columns, err := a.headerColumns(ctx)
	if err != nil {
		return models.RMARecord{}, err
	}

	last, err := a.lastNumber(ctx)
	if err != nil {
		return models.RMARecord{}, err
	}

	record := build(last + 1)
	record.Number = last + 1
	if record.Date == "" {
		record.Date = time.Now().UTC().Format("2006-01-02")
	}

	if err := a.sheet.AppendRow(ctx, recordRow(record, columns)); err != nil {
		return models.RMARecord{}, fmt.Errorf("failed to record rma %d: %w", record.Number, err)
	}
	logging.Infof("Allocated RMA %d for %s", record.Number, record.Customer)
	return record, nil
}

// headerColumns resolves the heading row into a column index per
// required heading. Headings are matched case-insensitively with
// whitespace collapsed.
func (a *Allocator) headerColumns(ctx context.Context) (map[string]int, error) {
	rows, err := a.sheet.GetValues(ctx, a.headingsRange)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: heading row is empty", ErrMissingColumns)
	}

	columns := make(map[string]int)
	for i, heading := range rows[0] {
		normalized := strings.ToLower(strings.Join(strings.Fields(heading), " "))
		if _, taken := columns[normalized]; !taken {
			columns[normalized] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumns, name)
		}
	}
	return columns, nil
}

// lastNumber finds the most recently recorded RMA number: the last
// numeric cell of the number column. Zero means nothing has been
// allocated yet.
func (a *Allocator) lastNumber(ctx context.Context) (int, error) {
	rows, err := a.sheet.GetValues(ctx, a.numbersRange)
	if err != nil {
		return 0, err
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if len(rows[i]) == 0 {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(rows[i][0])); err == nil {
			return n, nil
		}
	}
	return 0, nil
}

// recordRow lays the record out according to the resolved columns. The
// number always goes in the first column; the "customer comm" column
// carries the originating support ticket id.
func recordRow(record models.RMARecord, columns map[string]int) []string {
	width := 1
	for _, i := range columns {
		if i+1 > width {
			width = i + 1
		}
	}

	row := make([]string, width)
	row[0] = strconv.Itoa(record.Number)
	row[columns[colDate]] = record.Date
	row[columns[colCustomer]] = record.Customer
	row[columns[colDescription]] = record.Description
	row[columns[colFolder]] = record.FolderPath
	row[columns[colComms]] = record.TicketID
	return row
}
