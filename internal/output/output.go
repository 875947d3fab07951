package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/msareview/internal/review"
)

// Writer writes a review result in a specific format.
type Writer interface {
	Write(w io.Writer, res *review.Result) error
}

// Options tunes the writers that support it.
type Options struct {
	// Color enables lipgloss styling in text output.
	Color bool
	// Steps includes intermediate model calls.
	Steps bool
}

// Formats lists the supported output formats.
func Formats() []string {
	return []string{"text", "json", "markdown"}
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string, opts Options) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{Color: opts.Color, Steps: opts.Steps}, nil
	case "json":
		return &JSONWriter{Steps: opts.Steps}, nil
	case "markdown", "md":
		return &MarkdownWriter{Steps: opts.Steps}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteResult writes the result to the specified output (file path or stdout).
func WriteResult(res *review.Result, format, outPath string, opts Options) error {
	writer, err := GetWriter(format, opts)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, res)
}
