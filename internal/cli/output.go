package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "":
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected json|yaml)")
	}
}

// Printer writes command results.
type Printer struct {
	w      io.Writer
	format Format
	query  string
}

func NewPrinter(w io.Writer, format Format, query string) *Printer {
	return &Printer{w: w, format: format, query: query}
}

// Print writes data. Values go through their JSON form first so that the
// document tree's "type" discriminants appear in every format.
func (p *Printer) Print(data any) error {
	generic, err := toGeneric(data)
	if err != nil {
		return err
	}
	switch p.format {
	case FormatJSON:
		return p.printJSON(generic)
	case FormatYAML:
		return p.printYAML(generic)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

func toGeneric(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return out, nil
}

func (p *Printer) printJSON(data any) error {
	if p.query == "" {
		enc := json.NewEncoder(p.w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	parsed, err := gojq.Parse(p.query)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	iter := code.Run(data)
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printYAML(data any) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}
