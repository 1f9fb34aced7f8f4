package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Office describes one return office: who signs the email, where the
// unit ships to and which address replies go to.
type Office struct {
	Contact   string
	ReplyTo   string
	Signature string
	Address   []string
}

// DeckTable maps the standard product lines to the presentation decks
// that collect their RMA slides.
type DeckTable struct {
	Glove     string
	FingerTPS string
	Spray     string
}

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort int

	// Task tracker (Asana) configuration
	AsanaAccessToken     string
	AsanaBaseURL         string
	WorkspaceID          string
	TechSupportProjectID string
	RMATeamID            string
	RMATemplateProjectID string
	CSPTemplateProjectID string
	TaskSearchPhrases    []string

	// Cloud storage (Dropbox) configuration
	DropboxAccessToken string
	RMATemplateFolder  string

	// Google (Sheets, Drive, Slides, Gmail) configuration
	GoogleAccessToken string
	RMASheetID        string
	RMASheetName      string
	RMAHeadingsRange  string
	SlidesTemplateID  string
	SlidesBridgeURL   string
	Decks             DeckTable

	// Customer notification
	MailFromName  string
	DefaultOffice string
	Offices       map[string]Office

	// Folder search
	Distributors []string

	// Polling budgets
	DuplicationPollAttempts int
	DuplicationPollInterval time.Duration
	SaveURLPollAttempts     int
	SaveURLPollInterval     time.Duration

	// Session cache
	TicketCacheTTL time.Duration
}

// init loads environment variables from .env file
func init() {
	if err := godotenv.Load(); err != nil {
		if err = godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found or error loading it. Using environment variables or defaults.")
		}
	}
}

// NewConfig creates a new configuration with values from environment variables
func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "localhost")
	v.SetDefault("SERVER_PORT", 8080)

	v.SetDefault("ASANA_BASE_URL", "https://app.asana.com/api/1.0/")
	v.SetDefault("ASANA_WORKSPACE_ID", "43506236234351")
	v.SetDefault("TECH_SUPPORT_PROJECT_ID", "1175836475924949")
	v.SetDefault("RMA_TEAM_ID", "1177436406373576")
	v.SetDefault("RMA_TEMPLATE_PROJECT_ID", "1176696000640487")
	v.SetDefault("CSP_TEMPLATE_PROJECT_ID", "1151738461865886")

	v.SetDefault("RMA_TEMPLATE_FOLDER",
		"/+ Customer Projects Global/+ Templates & Reference Info/Template, RMA Folders")

	v.SetDefault("RMA_SHEET_ID", "1hXnJmGlIYshJJjkCZetyVdGDPWNOB35lF7dOkgQgtZg")
	v.SetDefault("RMA_SHEET_NAME", "RMA")
	v.SetDefault("RMA_HEADINGS_RANGE", "RmaHeadings")
	v.SetDefault("SLIDES_TEMPLATE_ID", "1CP_erYaa-H80cNvVTF2fPyTLUdXy_3tGHUXx0KUlmSM")
	v.SetDefault("GLOVE_DECK_ID", "1-jFboSTzBN5fEme2h-bcP8VJYRza4H72e-Oz8RH4f3w")
	v.SetDefault("FINGERTPS_DECK_ID", "1zGiZFtEhCaUiqRln_yVYgA0YuBBmmUnIkpMf4YIf2qQ")
	v.SetDefault("SPRAY_DECK_ID", "1JzXJ2H75VuNFxG05NE73sYx1WBfGkyNagssI723g0X8")

	v.SetDefault("MAIL_FROM_NAME", "PPS Returns Team")
	v.SetDefault("DEFAULT_OFFICE", "US")

	v.SetDefault("DUPLICATION_POLL_ATTEMPTS", 10)
	v.SetDefault("DUPLICATION_POLL_INTERVAL", "2s")
	v.SetDefault("SAVE_URL_POLL_ATTEMPTS", 5)
	v.SetDefault("SAVE_URL_POLL_INTERVAL", "500ms")

	v.SetDefault("TICKET_CACHE_TTL", "10m")

	return &Config{
		ServerHost: v.GetString("SERVER_HOST"),
		ServerPort: v.GetInt("SERVER_PORT"),

		AsanaAccessToken:     v.GetString("ASANA_ACCESS_TOKEN"),
		AsanaBaseURL:         v.GetString("ASANA_BASE_URL"),
		WorkspaceID:          v.GetString("ASANA_WORKSPACE_ID"),
		TechSupportProjectID: v.GetString("TECH_SUPPORT_PROJECT_ID"),
		RMATeamID:            v.GetString("RMA_TEAM_ID"),
		RMATemplateProjectID: v.GetString("RMA_TEMPLATE_PROJECT_ID"),
		CSPTemplateProjectID: v.GetString("CSP_TEMPLATE_PROJECT_ID"),
		TaskSearchPhrases: []string{
			"received photos", "document resolution", "replicate", "notify customer",
		},

		DropboxAccessToken: v.GetString("DROPBOX_ACCESS_TOKEN"),
		RMATemplateFolder:  v.GetString("RMA_TEMPLATE_FOLDER"),

		GoogleAccessToken: v.GetString("GOOGLE_ACCESS_TOKEN"),
		RMASheetID:        v.GetString("RMA_SHEET_ID"),
		RMASheetName:      v.GetString("RMA_SHEET_NAME"),
		RMAHeadingsRange:  v.GetString("RMA_HEADINGS_RANGE"),
		SlidesTemplateID:  v.GetString("SLIDES_TEMPLATE_ID"),
		SlidesBridgeURL:   v.GetString("SLIDES_BRIDGE_URL"),
		Decks: DeckTable{
			Glove:     v.GetString("GLOVE_DECK_ID"),
			FingerTPS: v.GetString("FINGERTPS_DECK_ID"),
			Spray:     v.GetString("SPRAY_DECK_ID"),
		},

		MailFromName:  v.GetString("MAIL_FROM_NAME"),
		DefaultOffice: v.GetString("DEFAULT_OFFICE"),
		Offices:       DefaultOffices(),

		Distributors: []string{
			"Super Tooling", "SysCom", "PPS UK", "PPS KR", "PPS Korea", "WiseTouch",
		},

		DuplicationPollAttempts: v.GetInt("DUPLICATION_POLL_ATTEMPTS"),
		DuplicationPollInterval: v.GetDuration("DUPLICATION_POLL_INTERVAL"),
		SaveURLPollAttempts:     v.GetInt("SAVE_URL_POLL_ATTEMPTS"),
		SaveURLPollInterval:     v.GetDuration("SAVE_URL_POLL_INTERVAL"),

		TicketCacheTTL: v.GetDuration("TICKET_CACHE_TTL"),
	}
}

// DefaultOffices returns the two standard return offices.
func DefaultOffices() map[string]Office {
	return map[string]Office{
		"UK": {
			Contact:   "Dayi Zhang",
			ReplyTo:   "dayi.zhang@pressureprofile.com",
			Signature: "Dayi",
			Address: []string{
				"Inovo",
				"121 George Street",
				"Glasgow",
				"G1 1RD",
				"UK",
			},
		},
		"US": {
			Contact:   "Daniel Park",
			ReplyTo:   "daniel.park@pressureprofile.com",
			Signature: "Daniel",
			Address: []string{
				"Medical Tactile, Inc.",
				"5500 W Rosecrans Ave.",
				"Hawthorne, CA 90250",
				"USA",
			},
		},
	}
}

// OfficeFor resolves a return-office code, falling back to the default
// office for unknown codes.
func (c *Config) OfficeFor(code string) Office {
	if office, ok := c.Offices[code]; ok {
		return office
	}
	return c.Offices[c.DefaultOffice]
}
