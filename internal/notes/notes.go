package notes

import (
	"errors"
	"regexp"
	"strings"

	"github.com/pressureprofile/rma-starter/internal/models"
)

// ErrTicketIDUnparseable is returned when neither a raw numeric id nor
// a URL ending in one could be recognized.
var ErrTicketIDUnparseable = errors.New("ticket id unparseable")

var allDigits = regexp.MustCompile(`^\d+$`)

// ExtractTaskID accepts either a bare numeric task id or a full task
// URL such as https://app.asana.com/0/134017349624135/1176874649688496
// and returns the trailing numeric id.
func ExtractTaskID(linkOrNumber string) (string, error) {
	trimmed := strings.TrimSpace(linkOrNumber)
	if allDigits.MatchString(trimmed) {
		return trimmed, nil
	}

	// Probably a full http link. Task id is the final part.
	parts := strings.Split(trimmed, "/")
	final := parts[len(parts)-1]
	if allDigits.MatchString(final) {
		return final, nil
	}

	return "", ErrTicketIDUnparseable
}

// FindField finds the value for one field in the ticket notes.
//
// The notes string is something like
// "Company Name:\nAcme\n\nName:\nJim Smith\n...etc." so the primary
// pattern is "<field>:\n<value>\n". When the customer-facing form uses
// a longer label than the one we search for, a looser fallback matches
// "\n\n<field>...:\n<word>\n".
//
// fieldName is treated as a regular-expression fragment, so literal
// metacharacters must arrive pre-escaped (e.g. `Serial Number\(s\)`).
// The function never fails: anything unmatched yields "".
func FindField(fieldName, entireString string) string {
	re, err := regexp.Compile(fieldName + ":\n(.*)\n")
	if err != nil {
		return ""
	}
	matches := re.FindStringSubmatch(entireString)
	if len(matches) < 2 {
		// Try a startsWith-style match.
		re, err = regexp.Compile("\n\n" + fieldName + `[^:]+:\n(\w+)\n`)
		if err != nil {
			return ""
		}
		matches = re.FindStringSubmatch(entireString)
		if len(matches) < 2 {
			return ""
		}
	}
	return matches[1]
}

// ExtractSummary parses the free-text notes of a tech-support ticket
// into a structured summary. Unmatched fields resolve to empty strings
// rather than failing the whole extraction; customers skip optional
// fields all the time.
func ExtractSummary(notesString string) models.SupportTicketSummary {
	return models.SupportTicketSummary{
		CompanyName:      FindField("Company Name", notesString),
		ContactName:      FindField("Your Name", notesString),
		ContactEmail:     FindField("Email", notesString),
		Distributor:      FindField("Distributor", notesString),
		Product:          FindField("Product", notesString),
		SerialNumbers:    FindField(`Serial Number\(s\)`, notesString),
		IssueNature:      FindField("Nature of the Issue", notesString),
		IssueDescription: FindField("Please describe", notesString),
	}
}
