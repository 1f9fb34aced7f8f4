package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressureprofile/rma-starter/internal/config"
)

func TestBodyText(t *testing.T) {
	office := config.DefaultOffices()["UK"]
	body := BodyText("Jim Smith", "1234567890", 987, office)

	assert.True(t, strings.HasPrefix(body, "Hi Jim Smith\n"))
	assert.Contains(t, body, "https://app.asana.com/0/1234567890/form")
	assert.Contains(t, body, "RMA 987")
	assert.Contains(t, body, "121 George Street")
	assert.Contains(t, body, "Glasgow")
	assert.True(t, strings.HasSuffix(body, "Thanks,\nDayi"))
}

func TestBodyTextUSOffice(t *testing.T) {
	office := config.DefaultOffices()["US"]
	body := BodyText("Jim Smith", "p1", 12, office)

	assert.Contains(t, body, "Daniel Park")
	assert.Contains(t, body, "Hawthorne, CA 90250")
	assert.True(t, strings.HasSuffix(body, "Thanks,\nDaniel"))
}

func TestOfficeForUnknownCodeFallsBack(t *testing.T) {
	cfg := &config.Config{
		DefaultOffice: "US",
		Offices:       config.DefaultOffices(),
	}
	office := cfg.OfficeFor("LA")
	assert.Equal(t, "Daniel Park", office.Contact)
}
