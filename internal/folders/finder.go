// Package folders locates customer project folders in the shipped
// projects archive: by company and distributor name, by product serial
// number, or by direct path.
package folders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/dropbox"
	"github.com/pressureprofile/rma-starter/internal/logging"
	"github.com/pressureprofile/rma-starter/internal/paths"
	"github.com/pressureprofile/rma-starter/internal/slides"
)

// ErrNotFound means no plausible project folder matched the search.
var ErrNotFound = errors.New("no matching project folders")

// ShortcutInfo is one shortcut file found inside a project folder,
// categorized by what it points at.
type ShortcutInfo struct {
	URL     string `json:"url"`
	Display string `json:"display"`
}

// Info is the derived view of one project folder.
type Info struct {
	Path      string         `json:"path"`
	ShortPath string         `json:"shortPath"`
	Link      string         `json:"link"`
	Shortcuts []ShortcutInfo `json:"shortcuts"`
}

// Finder searches the shipped projects archive.
type Finder struct {
	storage      dropbox.StorageClient
	distributors []string
}

// NewFinder creates a finder over the configured storage account.
func NewFinder(cfg *config.Config) *Finder {
	return NewFinderWithStorage(dropbox.NewStorageClient(cfg), cfg)
}

// NewFinderWithStorage creates a finder over an explicit storage
// backend.
func NewFinderWithStorage(storage dropbox.StorageClient, cfg *config.Config) *Finder {
	return &Finder{storage: storage, distributors: cfg.Distributors}
}

// IsDistributor reports whether a name refers to a known distributor.
// Comparison ignores case and all whitespace, so "PpSuK" matches
// "PPS UK".
func (f *Finder) IsDistributor(candidate string) bool {
	squashed := squash(candidate)
	for _, dist := range f.distributors {
		if squash(dist) == squashed {
			return true
		}
	}
	return false
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// FindShippedProjects searches the archive for a company's project
// folders. Companies with a dedicated top-level folder are found
// there; otherwise the lettered folder ("ABC", "PQRS") for the
// company's first letter is searched. When the company turns up
// nothing and the distributor is on the known-distributor list, the
// same search runs under the distributor's folder, where projects are
// sometimes filed. With stripPrefix the archive prefix is removed from
// the returned paths.
func (f *Finder) FindShippedProjects(ctx context.Context, company, distributor string, stripPrefix bool) ([]string, error) {
	archiveRoot := strings.TrimSuffix(paths.ShippedProjectsPrefix, "/")
	companyLower := strings.ToLower(company)

	listing, err := f.storage.ListFolder(ctx, archiveRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	parent := findDirectFolder(listing, companyLower)
	if parent == "" {
		parent = findLetterFolder(listing, companyLower)
	}
	if parent == "" {
		return nil, fmt.Errorf("%w: no dedicated or letter folder for %s", ErrNotFound, company)
	}

	matches, err := f.findCompanyFolders(ctx, parent, companyLower)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if strings.TrimSpace(distributor) == "" {
			return nil, fmt.Errorf("%w: no folders for %s and no distributor to try", ErrNotFound, company)
		}
		if !f.IsDistributor(distributor) {
			// Customers put all sorts of things in the distributor
			// field; only real distributors have archive folders.
			return nil, fmt.Errorf("%w: no folders for %s and %q is not a known distributor", ErrNotFound, company, distributor)
		}

		// Projects sold through a distributor are sometimes filed
		// under the distributor, e.g. "PPSUK(IBM)" in "PQRS".
		distLower := strings.ToLower(distributor)
		parent = findDirectFolder(listing, distLower)
		if parent == "" {
			parent = findLetterFolder(listing, distLower)
		}
		if parent == "" {
			return nil, fmt.Errorf("%w: no dedicated or letter folder for %s", ErrNotFound, distributor)
		}

		matches, err = f.findCompanyFolders(ctx, parent, companyLower)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no folders for %s in %s", ErrNotFound, company, parent)
		}
	}

	if stripPrefix {
		for i := range matches {
			matches[i] = paths.TogglePrefix(matches[i])
		}
	}
	return matches, nil
}

// FromSerialNumber finds the project folders mentioning a product
// serial number anywhere in their contents. A leading "SN" on the
// serial number is ignored. Matching file paths are reduced to their
// containing project folder, deduplicated in order of discovery.
func (f *Finder) FromSerialNumber(ctx context.Context, serialNumber string) ([]string, error) {
	serial := strings.ToLower(strings.TrimSpace(serialNumber))
	serial = strings.TrimPrefix(serial, "sn")

	archiveRoot := strings.TrimSuffix(paths.ShippedProjectsPrefix, "/")
	candidates, err := f.storage.Search(ctx, serial, archiveRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to search for serial %s: %w", serial, err)
	}

	seen := make(map[string]bool)
	var folders []string
	for _, candidate := range candidates {
		// Keep archive root plus letter folder plus project folder,
		// dropping the file's own path inside the project.
		parts := strings.Split(candidate, "/")
		if len(parts) <= 4 {
			continue
		}
		project := strings.Join(parts[1:5], "/")
		if !seen[project] {
			seen[project] = true
			folders = append(folders, project)
		}
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("%w: serial %s", ErrNotFound, serial)
	}
	return folders, nil
}

// FolderInfo builds the derived view of one project folder: full and
// short paths, a shareable link and the categorized shortcut files it
// contains. The folder may be given with or without the archive
// prefix.
func (f *Finder) FolderInfo(ctx context.Context, folder string) (*Info, error) {
	compliant := paths.Compliant(folder)
	path := compliant
	if toggled := paths.TogglePrefix(compliant); len(toggled) > len(compliant) {
		// Short path given; use the full one.
		path = toggled
	}

	link, err := f.storage.CreateSharedLink(ctx, path)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Path:      path,
		ShortPath: paths.TogglePrefix(path),
		Link:      link,
		Shortcuts: []ShortcutInfo{},
	}

	listing, err := f.storage.ListFolder(ctx, path)
	if err != nil {
		logging.Warnf("Failed to list %s for shortcuts: %v", path, err)
		return info, nil
	}
	for _, entry := range listing {
		if entry.Tag != "file" || !strings.HasSuffix(entry.PathLower, ".url") {
			continue
		}
		url, err := f.storage.URLFromShortcut(ctx, entry.PathLower)
		if err != nil {
			logging.Warnf("Skipping shortcut %s: %v", entry.PathLower, err)
			continue
		}
		shortcut := ShortcutInfo{URL: url, Display: "Unknown"}
		if strings.Contains(url, "google.com/presentation") {
			shortcut.URL = slides.CleanURL(url)
			shortcut.Display = "Slides"
		}
		info.Shortcuts = append(info.Shortcuts, shortcut)
	}
	return info, nil
}

// findCompanyFolders lists a parent folder and returns the paths of
// the subfolders whose names contain the target company.
func (f *Finder) findCompanyFolders(ctx context.Context, parent, target string) ([]string, error) {
	logging.Debugf("Looking for %s in %s", target, parent)
	listing, err := f.storage.ListFolder(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", parent, err)
	}

	var matches []string
	for _, entry := range listing {
		if entry.Tag == "folder" && strings.Contains(strings.ToLower(entry.Name), target) {
			matches = append(matches, entry.PathLower)
		}
	}
	return matches, nil
}

// findDirectFolder returns the first folder whose name contains the
// target, or "".
func findDirectFolder(listing []dropbox.Entry, target string) string {
	for _, entry := range listing {
		if entry.Tag == "folder" && strings.Contains(strings.ToLower(entry.Name), target) {
			return entry.PathLower
		}
	}
	return ""
}

// findLetterFolder returns the lettered folder ("ABC", "PQRS") covering
// the target's first letter, or "".
func findLetterFolder(listing []dropbox.Entry, target string) string {
	if target == "" {
		return ""
	}
	firstLetter := strings.ToUpper(target[:1])
	for _, entry := range listing {
		if entry.Tag != "folder" || len(entry.Name) > 4 {
			continue
		}
		if entry.Name == strings.ToUpper(entry.Name) && strings.Contains(entry.Name, firstLetter) {
			return entry.PathLower
		}
	}
	return ""
}
