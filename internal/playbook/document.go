package playbook

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is a paragraph-structured source document, in source order.
// It is loaded once and never modified.
type Document struct {
	Source     string
	Paragraphs []string
}

// Text joins the non-blank paragraphs with blank lines.
func (d *Document) Text() string {
	var kept []string
	for _, p := range d.Paragraphs {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// LoadOptions configures remote sources.
type LoadOptions struct {
	S3 S3Config
}

// Load reads a document from a local path or an s3://bucket/key URL.
// .docx files are parsed from their XML body; everything else is treated as
// plain text with blank-line separated paragraphs.
func Load(ctx context.Context, source string, opts LoadOptions) (*Document, error) {
	var data []byte
	if bucket, key, ok := parseS3URL(source); ok {
		d, err := fetchS3(ctx, opts.S3, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", source, err)
		}
		data = d
	} else {
		d, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		data = d
	}

	paragraphs, err := Parse(filepath.Base(source), data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	return &Document{Source: source, Paragraphs: paragraphs}, nil
}

// Parse splits raw file content into paragraphs, choosing the format by the
// file name's extension.
func Parse(name string, data []byte) ([]string, error) {
	if strings.EqualFold(filepath.Ext(name), ".docx") {
		return ParseDocx(bytes.NewReader(data), int64(len(data)))
	}
	return ParseText(string(data)), nil
}

// ParseText splits plain text into paragraphs on blank lines. Line breaks
// inside a paragraph are kept.
func ParseText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.Trim(block, "\n")
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}
