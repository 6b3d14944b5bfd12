package project

import (
	"fmt"
	"time"
)

const legacyVersion = "0.0.0"

// legacyProject is the 0.0.0 layout. Entries had no author field.
type legacyProject struct {
	ID            string        `yaml:"id"`
	FormatVersion string        `yaml:"format_version"`
	Entries       []legacyEntry `yaml:"entries"`
}

type legacyEntry struct {
	Title       string       `yaml:"title"`
	BookName    string       `yaml:"book_name"`
	URL         string       `yaml:"url"`
	Keywords    []string     `yaml:"keywords"`
	TextFiles   []TextFile   `yaml:"text_files"`
	BinaryFiles []BinaryFile `yaml:"binary_files"`
	Memo        string       `yaml:"memo"`
	CreatedAt   time.Time    `yaml:"created_at"`
	LastEdit    time.Time    `yaml:"last_edit"`
}

func (old *legacyProject) migrate() *Project {
	p := &Project{
		ID:            old.ID,
		FormatVersion: FormatVersion,
		Entries:       make([]Entry, 0, len(old.Entries)),
	}
	for _, e := range old.Entries {
		p.Entries = append(p.Entries, Entry{
			Title:       e.Title,
			BookName:    e.BookName,
			URL:         e.URL,
			Keywords:    e.Keywords,
			TextFiles:   e.TextFiles,
			BinaryFiles: e.BinaryFiles,
			Memo:        e.Memo,
			CreatedAt:   e.CreatedAt,
			LastEdit:    e.LastEdit,
		})
	}
	return p
}

// validate rejects binary types the 0.0.0 format did not have.
func (old *legacyProject) validate() error {
	for i, e := range old.Entries {
		for _, f := range e.BinaryFiles {
			switch f.FileType {
			case BinaryPNG, BinaryJPEG, BinaryPDF:
			default:
				return fmt.Errorf("entry %d: binary file %q: type %q not in format %s", i, f.FileName, f.FileType, legacyVersion)
			}
		}
	}
	return nil
}
