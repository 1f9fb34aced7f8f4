package notes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleNotes is a real ticket-notes layout as produced by the support
// request form.
const sampleNotes = "Your Name:\nJim Smith\n\nEmail:\nmalcolm.hannah@pressureprofile.com\n\nCompany Name:\nAcme\n\nProduct:\nCustom System\n\nSerial Number(s):\n12345\n\nNature of the Issue:\nCan't do something I want to in Chameleon\n\nCan you replicate the problem?:\nIt's intermittent\n\nPlease describe the conditions when this issue occurs or how you can replicate the problem.   The more information you can provide, the quicker it will be for us to diagnose and fix the issue.:\nHello\n\nIf your issue is related to system performance or stability, please describe the applied pressure and duration, temperature, moisture, wireless RF noise environment, etc.:\nAgain\n\n———————————————\nThis task was submitted through Technical Support Request\nhttps://form.asana.com/?hash=59d9c4fdb0d5d9532f5ac5bf7635fb02eb6d0395c1db0ada32d4edf0683bbaf4&id=1175836475924952"

func TestExtractTaskID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare id", "1176874649688496", "1176874649688496"},
		{"bare id with spaces", "  1176874649688496 ", "1176874649688496"},
		{"full url", "https://app.asana.com/0/134017349624135/1176874649688496", "1176874649688496"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTaskID(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTaskIDUnparseable(t *testing.T) {
	for _, input := range []string{"", "not a link", "https://app.asana.com/0/login"} {
		_, err := ExtractTaskID(input)
		assert.True(t, errors.Is(err, ErrTicketIDUnparseable), "input %q", input)
	}
}

func TestFindField(t *testing.T) {
	assert.Equal(t, "Jim Smith", FindField("Your Name", sampleNotes))
	assert.Equal(t, "Acme", FindField("Company Name", sampleNotes))
	assert.Equal(t, "Custom System", FindField("Product", sampleNotes))
	assert.Equal(t, "12345", FindField(`Serial Number\(s\)`, sampleNotes))
}

func TestFindFieldFallback(t *testing.T) {
	// The long form label doesn't end at "Please describe:", so only
	// the looser startsWith-style pattern can match it.
	assert.Equal(t, "Hello", FindField("Please describe", sampleNotes))
}

func TestFindFieldMissing(t *testing.T) {
	assert.Equal(t, "", FindField("Favourite Colour", sampleNotes))
	assert.Equal(t, "", FindField("Company Name", ""))
}

func TestExtractSummary(t *testing.T) {
	summary := ExtractSummary(sampleNotes)

	assert.Equal(t, "Acme", summary.CompanyName)
	assert.Equal(t, "Jim Smith", summary.ContactName)
	assert.Equal(t, "malcolm.hannah@pressureprofile.com", summary.ContactEmail)
	assert.Equal(t, "Custom System", summary.Product)
	assert.Equal(t, "12345", summary.SerialNumbers)
	assert.Equal(t, "Can't do something I want to in Chameleon", summary.IssueNature)
	assert.Equal(t, "Hello", summary.IssueDescription)
	// The form had no distributor field filled in.
	assert.Equal(t, "", summary.Distributor)
}

func TestExtractSummaryEmptyNotes(t *testing.T) {
	summary := ExtractSummary("")
	assert.Equal(t, "", summary.CompanyName)
	assert.Equal(t, "", summary.IssueDescription)
}
