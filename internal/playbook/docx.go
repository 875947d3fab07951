package playbook

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxBodyPath = "word/document.xml"

// ParseDocx extracts paragraph text from a .docx container. Every w:p element
// yields one paragraph (empty paragraphs included, as a word processor shows
// them); runs are concatenated, w:tab becomes a tab and w:br a newline.
func ParseDocx(r io.ReaderAt, size int64) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening docx container: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPath {
			body = f
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("docx container has no %s", docxBodyPath)
	}

	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", docxBodyPath, err)
	}
	defer rc.Close()

	return readParagraphs(xml.NewDecoder(rc))
}

func readParagraphs(dec *xml.Decoder) ([]string, error) {
	var (
		paragraphs []string
		current    strings.Builder
		depth      int // w:p nesting, e.g. text boxes inside a paragraph
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				depth++
				if depth == 1 {
					current.Reset()
				} else {
					breakLine(&current)
				}
			case "t":
				inText = true
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				} else {
					breakLine(&current)
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if depth > 0 && inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

// breakLine separates nested paragraph text from the text around it.
func breakLine(b *strings.Builder) {
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
}
