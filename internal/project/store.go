package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	projectFile   = "project.yml"
	documentsFile = "documents.json"
	attachDir     = "attachments"
	hashDir       = "by_hash"
)

// Store keeps projects on disk, one directory per project ID:
//
//	<root>/<id>/project.yml
//	<root>/<id>/documents.json
//	<root>/<id>/attachments/<name>
//	<root>/by_hash/<content hash>   (holds a project ID)
type Store struct {
	root string
}

// NewStore creates root if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, hashDir), 0o755); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) dir(id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return filepath.Join(s.root, id), nil
}

// Save writes p, replacing any earlier copy.
func (s *Store) Save(p *Project) error {
	dir, err := s.dir(p.ID)
	if err != nil {
		return err
	}
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return writeFileAtomic(filepath.Join(dir, projectFile), data)
}

// Load reads a saved project.
func (s *Store) Load(id string) (*Project, error) {
	dir, err := s.dir(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, projectFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", id, err)
	}
	return Decode(data)
}

// Delete removes a project with its documents and attachments.
func (s *Store) Delete(id string) error {
	dir, err := s.dir(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	s.dropHashes(id)
	return nil
}

// Attachment describes one extracted binary file.
type Attachment struct {
	Name  string         `json:"name" yaml:"name"`
	Entry int            `json:"entry" yaml:"entry"`
	Info  AttachmentInfo `json:"info" yaml:"info"`
}

// ExtractAttachments writes every binary file of p under the project's
// attachments directory. Names are prefixed with the entry index so equal
// file names in different entries do not collide.
func (s *Store) ExtractAttachments(p *Project) ([]Attachment, error) {
	dir, err := s.dir(p.ID)
	if err != nil {
		return nil, err
	}
	return ExtractTo(filepath.Join(dir, attachDir), p)
}

// ExtractTo writes the binary files of p into dir.
func ExtractTo(dir string, p *Project) ([]Attachment, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachments dir: %w", err)
	}
	var out []Attachment
	for i, e := range p.Entries {
		for _, f := range e.BinaryFiles {
			name := AttachmentName(i, f.FileName)
			if err := writeFileAtomic(filepath.Join(dir, name), f.Contents); err != nil {
				return out, err
			}
			out = append(out, Attachment{Name: name, Entry: i, Info: Inspect(f)})
		}
	}
	return out, nil
}

// AttachmentName is the on-disk name of a binary file of entry i.
func AttachmentName(entry int, fileName string) string {
	base := filepath.Base(filepath.Clean("/" + fileName))
	if base == "/" || base == "." {
		base = "file"
	}
	return fmt.Sprintf("%d_%s", entry, base)
}

// AttachmentPath resolves an extracted attachment. The name must be a
// plain file name.
func (s *Store) AttachmentPath(id, name string) (string, error) {
	dir, err := s.dir(id)
	if err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: attachment %q", ErrNotFound, name)
	}
	path := filepath.Join(dir, attachDir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: attachment %q", ErrNotFound, name)
		}
		return "", err
	}
	return path, nil
}

// SaveDocuments stores the already encoded parsed documents of a project.
func (s *Store) SaveDocuments(id string, data []byte) error {
	dir, err := s.dir(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save documents %s: %w", id, err)
	}
	return writeFileAtomic(filepath.Join(dir, documentsFile), data)
}

// LoadDocuments returns what SaveDocuments stored.
func (s *Store) LoadDocuments(id string) ([]byte, error) {
	dir, err := s.dir(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, documentsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: documents for %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load documents %s: %w", id, err)
	}
	return data, nil
}

// IndexHash records that content with the given hash was imported as id.
func (s *Store) IndexHash(hash, id string) error {
	if !validHash(hash) {
		return fmt.Errorf("invalid content hash %q", hash)
	}
	return writeFileAtomic(filepath.Join(s.root, hashDir, hash), []byte(id))
}

// LookupHash returns the project imported from content with this hash, if
// it still exists.
func (s *Store) LookupHash(hash string) (string, bool) {
	if !validHash(hash) {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(s.root, hashDir, hash))
	if err != nil {
		return "", false
	}
	id := strings.TrimSpace(string(data))
	dir, err := s.dir(id)
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(filepath.Join(dir, projectFile)); err != nil {
		return "", false
	}
	return id, true
}

func (s *Store) dropHashes(id string) {
	dir := filepath.Join(s.root, hashDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if data, err := os.ReadFile(path); err == nil && strings.TrimSpace(string(data)) == id {
			os.Remove(path)
		}
	}
}

func validHash(h string) bool {
	if len(h) != 64 {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
