package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/models"
)

type fakeSheet struct {
	mu       sync.Mutex
	headings []string
	numbers  [][]string
	appended [][]string
}

func (f *fakeSheet) GetValues(ctx context.Context, rangeRef string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.Contains(rangeRef, "!A:A") {
		out := make([][]string, len(f.numbers))
		copy(out, f.numbers)
		return out, nil
	}
	return [][]string{f.headings}, nil
}

func (f *fakeSheet) AppendRow(ctx context.Context, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, row)
	f.numbers = append(f.numbers, []string{row[0]})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		RMASheetName:     "RMA",
		RMAHeadingsRange: "RmaHeadings",
	}
}

func standardHeadings() []string {
	// Real sheet headings, including uneven spacing and casing.
	return []string{"RMA", "RMA Date", "Customer", "Project  description", "Customer RMA Folder", "Customer Comm"}
}

func TestAllocateNextIncrements(t *testing.T) {
	sheet := &fakeSheet{
		headings: standardHeadings(),
		numbers:  [][]string{{"RMA"}, {"40"}, {"41"}},
	}
	allocator := NewAllocatorWithSheet(sheet, testConfig())

	record, err := allocator.AllocateNext(context.Background(), func(number int) models.RMARecord {
		return models.RMARecord{
			Customer:    "Acme",
			Description: "Broken glove",
			FolderPath:  fmt.Sprintf("/abc/acme/RMA %d", number),
			TicketID:    "1176874649688496",
		}
	})
	require.NoError(t, err)

	assert.Equal(t, 42, record.Number)
	assert.NotEmpty(t, record.Date)

	require.Len(t, sheet.appended, 1)
	row := sheet.appended[0]
	assert.Equal(t, "42", row[0])
	assert.Equal(t, record.Date, row[1])
	assert.Equal(t, "Acme", row[2])
	assert.Equal(t, "Broken glove", row[3])
	assert.Equal(t, "/abc/acme/RMA 42", row[4])
	assert.Equal(t, "1176874649688496", row[5])
}

func TestAllocateNextEmptySheet(t *testing.T) {
	sheet := &fakeSheet{headings: standardHeadings(), numbers: [][]string{{"RMA"}}}
	allocator := NewAllocatorWithSheet(sheet, testConfig())

	record, err := allocator.AllocateNext(context.Background(), func(number int) models.RMARecord {
		return models.RMARecord{Customer: "Acme"}
	})
	require.NoError(t, err)
	assert.Equal(t, 1, record.Number)
}

func TestAllocateNextConcurrentRequestsGetDistinctNumbers(t *testing.T) {
	sheet := &fakeSheet{
		headings: standardHeadings(),
		numbers:  [][]string{{"10"}},
	}
	allocator := NewAllocatorWithSheet(sheet, testConfig())

	const workers = 8
	results := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := allocator.AllocateNext(context.Background(), func(number int) models.RMARecord {
				return models.RMARecord{Customer: "Acme"}
			})
			assert.NoError(t, err)
			results <- record.Number
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for number := range results {
		assert.False(t, seen[number], "number %d allocated twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, workers)
}

func TestAllocateNextFailsClosedOnMissingColumns(t *testing.T) {
	sheet := &fakeSheet{
		headings: []string{"RMA", "RMA Date", "Customer"},
		numbers:  [][]string{{"41"}},
	}
	allocator := NewAllocatorWithSheet(sheet, testConfig())

	_, err := allocator.AllocateNext(context.Background(), func(number int) models.RMARecord {
		return models.RMARecord{}
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))
	// Nothing must be written into unknown columns.
	assert.Empty(t, sheet.appended)
}
