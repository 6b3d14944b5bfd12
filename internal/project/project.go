// Package project reads and writes project containers: a list of
// bibliographic entries, each with a Markdown memo and attached text and
// binary files. Containers are YAML documents carrying a format version.
// Older versions are migrated on read.
package project

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// FormatVersion is the version written by Encode.
const FormatVersion = "0.1.0"

var (
	ErrUnsupportedVersion = errors.New("unsupported project format version")
	ErrFormat             = errors.New("malformed project file")
	ErrNotFound           = errors.New("project not found")
)

// TextFileType is the language or format of a text attachment.
type TextFileType string

const (
	TextPlain   TextFileType = "text"
	TextRust    TextFileType = "rust"
	TextTex     TextFileType = "tex"
	TextJSON    TextFileType = "json"
	TextTOML    TextFileType = "toml"
	TextYAML    TextFileType = "yaml"
	TextC       TextFileType = "c"
	TextCpp     TextFileType = "cpp"
	TextOCaml   TextFileType = "ocaml"
	TextSATySFi TextFileType = "satysfi"
	TextAny     TextFileType = "any_text_file"
)

func (t TextFileType) valid() bool {
	switch t {
	case TextPlain, TextRust, TextTex, TextJSON, TextTOML, TextYAML,
		TextC, TextCpp, TextOCaml, TextSATySFi, TextAny:
		return true
	}
	return false
}

// BinaryFileType is the format of a binary attachment.
type BinaryFileType string

const (
	BinaryPNG  BinaryFileType = "png"
	BinaryJPEG BinaryFileType = "jpeg"
	BinaryPDF  BinaryFileType = "pdf"
	BinaryDOCX BinaryFileType = "docx"
)

func (t BinaryFileType) valid() bool {
	switch t {
	case BinaryPNG, BinaryJPEG, BinaryPDF, BinaryDOCX:
		return true
	}
	return false
}

// Project is one container.
type Project struct {
	ID            string  `yaml:"id" json:"id"`
	FormatVersion string  `yaml:"format_version" json:"format_version"`
	Entries       []Entry `yaml:"entries" json:"entries"`
}

// Entry is a single bibliographic record.
type Entry struct {
	Title       string       `yaml:"title" json:"title"`
	BookName    string       `yaml:"book_name" json:"book_name"`
	BookAuthor  string       `yaml:"book_author" json:"book_author"`
	URL         string       `yaml:"url" json:"url"`
	Keywords    []string     `yaml:"keywords" json:"keywords"`
	TextFiles   []TextFile   `yaml:"text_files" json:"text_files"`
	BinaryFiles []BinaryFile `yaml:"binary_files" json:"binary_files"`
	Memo        string       `yaml:"memo" json:"memo"`
	CreatedAt   time.Time    `yaml:"created_at" json:"created_at"`
	LastEdit    time.Time    `yaml:"last_edit" json:"last_edit"`
}

type TextFile struct {
	FileType TextFileType `yaml:"file_type" json:"file_type"`
	FileName string       `yaml:"file_name" json:"file_name"`
	Contents string       `yaml:"contents" json:"contents"`
}

type BinaryFile struct {
	FileType BinaryFileType `yaml:"file_type" json:"file_type"`
	FileName string         `yaml:"file_name" json:"file_name"`
	Contents Blob           `yaml:"contents" json:"-"`
}

// Blob is binary content stored as a base64 string.
type Blob []byte

func (b Blob) MarshalYAML() (any, error) {
	return base64.StdEncoding.EncodeToString(b), nil
}

func (b *Blob) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("line %d: binary contents: %w", n.Line, err)
	}
	*b = raw
	return nil
}

// New returns an empty project with a fresh ID.
func New() *Project {
	return &Project{ID: NewID(), FormatVersion: FormatVersion}
}

// Decode reads a container of any supported version. Legacy containers
// come back migrated to the current version.
func Decode(data []byte) (*Project, error) {
	var head struct {
		FormatVersion string `yaml:"format_version"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	var p *Project
	switch head.FormatVersion {
	case FormatVersion:
		p = &Project{}
		if err := strictUnmarshal(data, p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
	case legacyVersion:
		var old legacyProject
		if err := strictUnmarshal(data, &old); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		if err := old.validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		p = old.migrate()
	case "":
		return nil, fmt.Errorf("%w: missing format_version", ErrFormat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, head.FormatVersion)
	}

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return p, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

func (p *Project) validate() error {
	if p.ID == "" {
		return errors.New("missing id")
	}
	if !ValidID(p.ID) {
		return fmt.Errorf("invalid id %q", p.ID)
	}
	for i, e := range p.Entries {
		for _, f := range e.TextFiles {
			if !f.FileType.valid() {
				return fmt.Errorf("entry %d: text file %q: unknown type %q", i, f.FileName, f.FileType)
			}
		}
		for _, f := range e.BinaryFiles {
			if !f.FileType.valid() {
				return fmt.Errorf("entry %d: binary file %q: unknown type %q", i, f.FileName, f.FileType)
			}
		}
	}
	return nil
}

// Encode writes p at the current format version.
func Encode(p *Project) ([]byte, error) {
	out := *p
	out.FormatVersion = FormatVersion
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	return buf.Bytes(), nil
}
