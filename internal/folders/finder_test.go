package folders

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/dropbox"
	"github.com/pressureprofile/rma-starter/internal/paths"
)

var archiveRoot = strings.TrimSuffix(paths.ShippedProjectsPrefix, "/")

type fakeStorage struct {
	listings      map[string][]dropbox.Entry
	searchResults []string
	shortcuts     map[string]string
}

func (f *fakeStorage) ListFolder(ctx context.Context, path string) ([]dropbox.Entry, error) {
	listing, ok := f.listings[strings.ToLower(path)]
	if !ok {
		return nil, errors.New("path not found")
	}
	return listing, nil
}

func (f *fakeStorage) Search(ctx context.Context, query, scope string) ([]string, error) {
	return f.searchResults, nil
}

func (f *fakeStorage) URLFromShortcut(ctx context.Context, filename string) (string, error) {
	url, ok := f.shortcuts[filename]
	if !ok {
		return "", errors.New("no url found")
	}
	return url, nil
}

func (f *fakeStorage) CreateSharedLink(ctx context.Context, path string) (string, error) {
	return "https://www.dropbox.com/sh/fake", nil
}

func (f *fakeStorage) CopyFolder(ctx context.Context, source, destination string) (string, error) {
	return destination, nil
}

func (f *fakeStorage) Download(ctx context.Context, path string) (string, error) {
	return "", nil
}

func (f *fakeStorage) UploadText(ctx context.Context, text, destination string) error {
	return nil
}

func (f *fakeStorage) SaveFromURL(ctx context.Context, sourceURL, destination string) error {
	return nil
}

func (f *fakeStorage) CreateShortcut(ctx context.Context, url, filename string) error {
	return nil
}

func folder(name string) dropbox.Entry {
	return dropbox.Entry{Tag: "folder", Name: name, PathLower: archiveRoot + "/" + strings.ToLower(name)}
}

func sub(parent, name string) dropbox.Entry {
	return dropbox.Entry{Tag: "folder", Name: name, PathLower: strings.ToLower(parent + "/" + name)}
}

func finderConfig() *config.Config {
	return &config.Config{
		Distributors: []string{"Super Tooling", "SysCom", "PPS UK", "PPS KR", "PPS Korea", "WiseTouch"},
	}
}

func TestIsDistributor(t *testing.T) {
	finder := NewFinderWithStorage(&fakeStorage{}, finderConfig())

	tests := []struct {
		candidate string
		want      bool
	}{
		{"PPS UK", true},
		{"pps uk", true},
		{"PpSuK", true},
		{"pps   kr", true},
		{"PPSkorea", true},
		{"wise touch", true},
		{"supertoo ling", true},
		{"sys coM", true},
		{"tooling", false},
		{"sys", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, finder.IsDistributor(tt.candidate), "candidate %q", tt.candidate)
	}
}

func TestFindShippedProjectsInLetterFolder(t *testing.T) {
	abc := archiveRoot + "/abc"
	storage := &fakeStorage{
		listings: map[string][]dropbox.Entry{
			archiveRoot: {folder("ABC"), folder("PQRS"), folder("Verily")},
			abc:         {sub(abc, "Acme 2019-01-01 - 500 TactileGlove"), sub(abc, "Apex Labs")},
		},
	}
	finder := NewFinderWithStorage(storage, finderConfig())

	matches, err := finder.FindShippedProjects(context.Background(), "Acme", "", false)
	require.NoError(t, err)
	assert.Equal(t, []string{abc + "/acme 2019-01-01 - 500 tactileglove"}, matches)
}

func TestFindShippedProjectsDedicatedFolder(t *testing.T) {
	verily := archiveRoot + "/verily"
	storage := &fakeStorage{
		listings: map[string][]dropbox.Entry{
			archiveRoot: {folder("ABC"), folder("Verily")},
			verily:      {sub(verily, "Verily 2020-05-05 - 700 FingerTPS")},
		},
	}
	finder := NewFinderWithStorage(storage, finderConfig())

	matches, err := finder.FindShippedProjects(context.Background(), "Verily", "", false)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0], "verily 2020-05-05")
}

func TestFindShippedProjectsFallsBackToDistributor(t *testing.T) {
	// IBM has no folder of its own; the project is filed under the
	// distributor's letter folder as "PPSUK(IBM)".
	ijk := archiveRoot + "/ijk"
	pqrs := archiveRoot + "/pqrs"
	storage := &fakeStorage{
		listings: map[string][]dropbox.Entry{
			archiveRoot: {folder("IJK"), folder("PQRS")},
			ijk:         {sub(ijk, "Initech")},
			pqrs:        {sub(pqrs, "PPSUK(IBM) 2018-03-03 - 300 custom")},
		},
	}
	finder := NewFinderWithStorage(storage, finderConfig())

	matches, err := finder.FindShippedProjects(context.Background(), "IBM", "PPS UK", false)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0], "ppsuk(ibm)")
}

func TestFindShippedProjectsIgnoresUnknownDistributor(t *testing.T) {
	// "Initech" is not on the distributor list, so its folder is never
	// searched even though it exists.
	ijk := archiveRoot + "/ijk"
	storage := &fakeStorage{
		listings: map[string][]dropbox.Entry{
			archiveRoot: {folder("IJK"), folder("Initech")},
			ijk:         {},
			archiveRoot + "/initech": {sub(archiveRoot+"/initech", "Initech(IBM) 2018-03-03 - 300 custom")},
		},
	}
	finder := NewFinderWithStorage(storage, finderConfig())

	_, err := finder.FindShippedProjects(context.Background(), "IBM", "Initech", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "not a known distributor")
}

func TestFindShippedProjectsStripPrefix(t *testing.T) {
	abc := archiveRoot + "/abc"
	storage := &fakeStorage{
		listings: map[string][]dropbox.Entry{
			archiveRoot: {folder("ABC")},
			abc:         {sub(abc, "Acme Project")},
		},
	}
	finder := NewFinderWithStorage(storage, finderConfig())

	matches, err := finder.FindShippedProjects(context.Background(), "Acme", "", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"/abc/acme project"}, matches)
}

func TestFindShippedProjectsNotFound(t *testing.T) {
	storage := &fakeStorage{
		listings: map[string][]dropbox.Entry{
			archiveRoot: {folder("ABC")},
			archiveRoot + "/abc": {},
		},
	}
	finder := NewFinderWithStorage(storage, finderConfig())

	_, err := finder.FindShippedProjects(context.Background(), "Acme", "", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFromSerialNumber(t *testing.T) {
	storage := &fakeStorage{
		searchResults: []string{
			archiveRoot + "/mno/tto engineering 2014-12-30 - 881 tactilehead/3. test plan/sensor performance/sn6085_specs.csv",
			archiveRoot + "/mno/tto engineering 2014-12-30 - 881 tactilehead/5. shipping/sn6085_packing.pdf",
		},
	}
	finder := NewFinderWithStorage(storage, finderConfig())

	folders, err := finder.FromSerialNumber(context.Background(), "SN6085")
	require.NoError(t, err)
	// Two hits inside the same project fold into one folder.
	assert.Equal(t, []string{
		"+ customer projects global/z. shipped projects/mno/tto engineering 2014-12-30 - 881 tactilehead",
	}, folders)
}

func TestFolderInfoCategorizesShortcuts(t *testing.T) {
	project := archiveRoot + "/abc/acme project"
	storage := &fakeStorage{
		listings: map[string][]dropbox.Entry{
			project: {
				{Tag: "file", Name: "Slides.url", PathLower: project + "/slides.url"},
				{Tag: "file", Name: "readme.txt", PathLower: project + "/readme.txt"},
				{Tag: "folder", Name: "RMA 12", PathLower: project + "/rma 12"},
			},
		},
		shortcuts: map[string]string{
			project + "/slides.url": "https://docs.google.com/presentation/d/DEF/edit#slide=id.p3",
		},
	}
	finder := NewFinderWithStorage(storage, finderConfig())

	info, err := finder.FolderInfo(context.Background(), "/abc/Acme Project")
	require.NoError(t, err)

	assert.Equal(t, project, info.Path)
	assert.Equal(t, "/abc/acme project", info.ShortPath)
	assert.NotEmpty(t, info.Link)
	require.Len(t, info.Shortcuts, 1)
	assert.Equal(t, "Slides", info.Shortcuts[0].Display)
	assert.Equal(t, "https://docs.google.com/presentation/d/DEF/edit", info.Shortcuts[0].URL)
}
