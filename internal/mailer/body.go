package mailer

import (
	"fmt"
	"strings"

	"github.com/pressureprofile/rma-starter/internal/config"
)

// Subject is the fixed subject line of every RMA notification email.
const Subject = "PPS Return Merchandise Authorization"

// BodyText renders the plain-text notification email: a greeting, a
// link to the contact-details form of the new RMA project, and the
// return shipping address of the handling office.
func BodyText(contactName, rmaProjectID string, rmaNumber int, office config.Office) string {
	formURL := "https://app.asana.com/0/" + rmaProjectID + "/form"

	lines := []string{
		"Hi " + contactName,
		"",
		"Further to your discussions with the PPS tech support team, we require the system to be returned to PPS for evaluation.",
		"",
		"Please complete this short form so we can ensure we have the correct contact and return address.",
		formURL,
		"",
		"Please ship the complete system, in the appropriate protective packaging to:",
		office.Contact,
		fmt.Sprintf("RMA %d", rmaNumber),
	}
	lines = append(lines, office.Address...)
	lines = append(lines,
		"",
		"Once we receive the package we will evaluate the system and get back to you as soon as possible.",
		"",
		"Thanks,",
		office.Signature,
	)
	return strings.Join(lines, "\n")
}
