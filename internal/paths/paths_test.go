package paths

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompliant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"windows sync path",
			`C:\Users\Jim\Dropbox (PPS)\+ Customer Projects Global\Acme`,
			"/+ Customer Projects Global/Acme",
		},
		{
			"already compliant",
			"/+ Customer Projects Global/Acme",
			"/+ Customer Projects Global/Acme",
		},
		{
			"missing leading slash",
			"acme/RMA 42",
			"/acme/RMA 42",
		},
		{
			"other sync folder name",
			`D:\Dropbox (work)\projects\acme`,
			"/projects/acme",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compliant(tt.input))
		})
	}
}

func TestCompliantIdempotent(t *testing.T) {
	inputs := []string{
		`C:\Users\Jim\Dropbox (PPS)\abc\acme`,
		"/abc/acme",
		"abc/acme",
	}
	for _, input := range inputs {
		once := Compliant(input)
		assert.Equal(t, once, Compliant(once), "input %q", input)
	}
}

func TestTogglePrefix(t *testing.T) {
	short := "/abc/acme 2019-01-01 - 500 tactileglove"
	long := ShippedProjectsPrefix[:len(ShippedProjectsPrefix)-1] + short

	assert.Equal(t, long, TogglePrefix(short))
	assert.Equal(t, short, TogglePrefix(long))
}

func TestTogglePrefixRoundTrip(t *testing.T) {
	for _, input := range []string{
		"/abc/Acme Project",
		ShippedProjectsPrefix + "abc/acme project",
		"no-leading-slash",
	} {
		normalized := Compliant(strings.ToLower(input))
		assert.Equal(t, normalized, TogglePrefix(TogglePrefix(input)), "input %q", input)
	}
}

func TestAsWindows(t *testing.T) {
	got := AsWindows("/+ Customer Projects Global/Acme/RMA 42")
	assert.Equal(t, `Dropbox (PPS)\+ Customer Projects Global\Acme\RMA 42`, got)
}
