// Package paths canonicalizes cloud-storage paths so every component
// agrees on one path shape: forward slashes, relative to the storage
// root, single leading slash.
package paths

import "strings"

const (
	// ShippedProjectsPrefix is the archive root under which all
	// customer project folders live.
	ShippedProjectsPrefix = "/+ customer projects global/z. shipped projects/"

	// windowsRoot is the local sync-folder name prepended when
	// rendering a path for Windows File Explorer.
	windowsRoot = "Dropbox (PPS)"
)

// Compliant converts a path to API-acceptable form: Windows separators
// become "/", any leading material up to and including a segment
// beginning with "Dropbox" (such as "C:/Users/Jim/Dropbox (PPS)") is
// stripped, and a single leading slash is ensured. Case of the
// remainder is preserved. Idempotent.
func Compliant(inputPath string) string {
	inputPath = strings.ReplaceAll(inputPath, "\\", "/")

	segments := strings.Split(inputPath, "/")
	for i, segment := range segments {
		if strings.HasPrefix(strings.ToLower(segment), "dropbox") && i+1 < len(segments) {
			// segment is "Dropbox (PPS)" or "Dropbox (work)" etc.
			// Take everything after it.
			inputPath = strings.Join(segments[i+1:], "/")
			break
		}
	}

	if !strings.HasPrefix(inputPath, "/") {
		inputPath = "/" + inputPath
	}

	return inputPath
}

// TogglePrefix strips the shipped-projects prefix if present, otherwise
// applies it. Input is lower-cased first so comparisons are
// case-insensitive. Toggling twice yields the compliant form of the
// lower-cased input: TogglePrefix(TogglePrefix(p)) == Compliant(lower(p)).
func TogglePrefix(folder string) string {
	folder = strings.ToLower(folder)

	if strings.HasPrefix(folder, ShippedProjectsPrefix) {
		return "/" + folder[len(ShippedProjectsPrefix):]
	}

	prefix := ShippedProjectsPrefix
	if strings.HasPrefix(folder, "/") {
		// Avoid double separator.
		prefix = prefix[:len(prefix)-1]
	}
	return prefix + folder
}

// AsWindows converts a path to a form suitable for Windows File
// Explorer, prefixed with the local sync-folder name.
func AsWindows(path string) string {
	return strings.ReplaceAll(windowsRoot+Compliant(path), "/", "\\")
}
