package repo

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/crucial707/studybuddy/internal/models"
)

// ArtifactManager is the flat-file store behind a page's saved files: one directory,
// files selected by glob patterns, and a single zip archive for exports.
// Listing and deleting are not transactional.
type ArtifactManager struct {
	Dir         string
	Ext         string   // appended by Save, e.g. ".txt"
	Patterns    []string // doublestar patterns selecting this manager's files
	ExportDir   string
	ArchiveName string
}

// NewArtifactManager creates dir and exportDir. Without patterns the manager selects "*"+ext.
func NewArtifactManager(dir, ext, exportDir, archiveName string, patterns ...string) (*ArtifactManager, error) {
	if len(patterns) == 0 {
		patterns = []string{"*" + ext}
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid artifact pattern %q", p)
		}
	}
	for _, d := range []string{dir, exportDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	return &ArtifactManager{
		Dir:         dir,
		Ext:         ext,
		Patterns:    patterns,
		ExportDir:   exportDir,
		ArchiveName: archiveName,
	}, nil
}

// SanitizeName keeps letters, digits, underscores and hyphens.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, c := range name {
		if unicode.IsLetter(c) || unicode.IsNumber(c) || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (m *ArtifactManager) matches(name string) bool {
	for _, p := range m.Patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// checkName accepts only bare file names of this manager's kind.
func (m *ArtifactManager) checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return ErrInvalidName
	}
	if !m.matches(name) {
		return ErrInvalidName
	}
	return nil
}

// List returns the matching files ordered by name.
func (m *ArtifactManager) List() ([]models.Artifact, error) {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.Dir, err)
	}
	out := make([]models.Artifact, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !m.matches(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		out = append(out, models.Artifact{Name: e.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Save sanitizes name, appends Ext and writes content, overwriting any file of that name.
// It returns the stored file name.
func (m *ArtifactManager) Save(name string, content []byte) (string, error) {
	safe := SanitizeName(name)
	if safe == "" {
		return "", ErrInvalidName
	}
	return m.write(safe+m.Ext, content)
}

// SaveUpload stores an uploaded file keeping its (lowercased) extension, which must
// match one of the manager's patterns.
func (m *ArtifactManager) SaveUpload(filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	safe := SanitizeName(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if safe == "" || !m.matches(safe+ext) {
		return "", ErrInvalidName
	}
	return m.write(safe+ext, content)
}

func (m *ArtifactManager) write(name string, content []byte) (string, error) {
	if err := os.WriteFile(filepath.Join(m.Dir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return name, nil
}

// Read returns the content of a stored file.
func (m *ArtifactManager) Read(name string) ([]byte, error) {
	if err := m.checkName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(m.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Delete removes a stored file. A file that is already gone is not an error.
func (m *ArtifactManager) Delete(name string) error {
	if err := m.checkName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(m.Dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// ArchivePath is where ExportAll writes its zip.
func (m *ArtifactManager) ArchivePath() string {
	return filepath.Join(m.ExportDir, m.ArchiveName)
}

// ExportAll zips every listed file into ArchivePath, replacing a previous archive.
// An empty directory yields a valid empty archive.
func (m *ArtifactManager) ExportAll() (string, error) {
	list, err := m.List()
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(m.ExportDir, tempFilePrefix+"*.zip")
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	zw := zip.NewWriter(tmp)
	for _, a := range list {
		if err := m.addToZip(zw, a); err != nil {
			zw.Close()
			tmp.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("finish archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}

	dst := m.ArchivePath()
	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("move archive: %w", err)
	}
	return dst, nil
}

func (m *ArtifactManager) addToZip(zw *zip.Writer, a models.Artifact) error {
	f, err := os.Open(filepath.Join(m.Dir, a.Name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", a.Name, err)
	}
	defer f.Close()

	hdr := &zip.FileHeader{Name: a.Name, Method: zip.Deflate, Modified: a.Modified}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("zip %s: %w", a.Name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("zip %s: %w", a.Name, err)
	}
	return nil
}
