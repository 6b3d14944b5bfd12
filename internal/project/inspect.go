package project

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fumiama/go-docx"
	pdflib "github.com/ledongthuc/pdf"
)

// AttachmentInfo is what Inspect could learn about a binary file. Fields
// that do not apply to the file type are zero. Error is set when the
// contents could not be read as their declared type.
type AttachmentInfo struct {
	Type       BinaryFileType `json:"type" yaml:"type"`
	Size       int            `json:"size" yaml:"size"`
	Pages      int            `json:"pages,omitempty" yaml:"pages,omitempty"`
	Paragraphs int            `json:"paragraphs,omitempty" yaml:"paragraphs,omitempty"`
	Width      int            `json:"width,omitempty" yaml:"width,omitempty"`
	Height     int            `json:"height,omitempty" yaml:"height,omitempty"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Inspect reads the metadata of a binary attachment. It never fails; a
// damaged file is reported through AttachmentInfo.Error.
func Inspect(f BinaryFile) AttachmentInfo {
	info := AttachmentInfo{Type: f.FileType, Size: len(f.Contents)}
	r := bytes.NewReader(f.Contents)

	switch f.FileType {
	case BinaryPDF:
		pages, err := pdfPages(r, int64(len(f.Contents)))
		if err != nil {
			info.Error = err.Error()
			return info
		}
		info.Pages = pages
	case BinaryDOCX:
		doc, err := docx.Parse(r, int64(len(f.Contents)))
		if err != nil {
			info.Error = err.Error()
			return info
		}
		for _, item := range doc.Document.Body.Items {
			if _, ok := item.(*docx.Paragraph); ok {
				info.Paragraphs++
			}
		}
	case BinaryPNG, BinaryJPEG:
		cfg, _, err := image.DecodeConfig(r)
		if err != nil {
			info.Error = err.Error()
			return info
		}
		info.Width, info.Height = cfg.Width, cfg.Height
	}
	return info
}

// pdfPages counts pages. The pdf reader panics on some damaged files.
func pdfPages(r *bytes.Reader, size int64) (n int, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("read pdf: %v", v)
		}
	}()
	doc, err := pdflib.NewReader(r, size)
	if err != nil {
		return 0, err
	}
	return doc.NumPage(), nil
}
