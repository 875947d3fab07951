package playbook

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Section: Limitation of Liability</w:t></w:r></w:p>
<w:p></w:p>
<w:p><w:r><w:t xml:space="preserve">Cap at </w:t></w:r><w:r><w:t>12 months</w:t></w:r><w:r><w:tab/><w:t>fees.</w:t></w:r></w:p>
<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>
</w:body>
</w:document>`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseDocx(t *testing.T) {
	data := buildDocx(t, docxBody)
	paragraphs, err := ParseDocx(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Section: Limitation of Liability",
		"",
		"Cap at 12 months\tfees.",
		"Line one\nLine two",
	}, paragraphs)
}

func TestParseDocx_NestedParagraphKeepsOuterText(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Fees are due in 30 days.</w:t></w:r><w:r><w:pict><w:txbxContent><w:p><w:r><w:t>Boxed note</w:t></w:r></w:p></w:txbxContent></w:pict></w:r><w:r><w:t>Late fees apply.</w:t></w:r></w:p>
<w:p><w:r><w:t>Next clause</w:t></w:r></w:p>
</w:body>
</w:document>`
	data := buildDocx(t, body)
	paragraphs, err := ParseDocx(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Fees are due in 30 days.\nBoxed note\nLate fees apply.",
		"Next clause",
	}, paragraphs)
}

func TestParseDocx_NotAZip(t *testing.T) {
	data := []byte("plain text")
	_, err := ParseDocx(bytes.NewReader(data), int64(len(data)))
	require.Error(t, err)
}

func TestParseDocx_MissingBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ParseDocx(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestParseText(t *testing.T) {
	got := ParseText("First para\nstill first\r\n\r\nSecond\n\n\n\nThird\n")
	assert.Equal(t, []string{"First para\nstill first", "Second", "Third"}, got)
}

func TestLoad_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "playbook.txt")
	require.NoError(t, os.WriteFile(txt, []byte("A\n\nB"), 0o644))
	docx := filepath.Join(dir, "playbook.docx")
	require.NoError(t, os.WriteFile(docx, buildDocx(t, docxBody), 0o644))

	doc, err := Load(context.Background(), txt, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, doc.Paragraphs)
	assert.Equal(t, "A\n\nB", doc.Text())

	doc, err = Load(context.Background(), docx, LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, doc.Paragraphs, 4)
	assert.Equal(t, docx, doc.Source)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.docx"), LoadOptions{})
	require.Error(t, err)
}

func TestLoad_S3RequiresEndpoint(t *testing.T) {
	_, err := Load(context.Background(), "s3://playbooks/msa.docx", LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 endpoint is required")
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in     string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://b/k.docx", "b", "k.docx", true},
		{"s3://b/dir/k.docx", "b", "dir/k.docx", true},
		{"s3://b", "", "", false},
		{"s3:///k", "", "", false},
		{"/local/path.docx", "", "", false},
	}
	for _, tt := range tests {
		bucket, key, ok := parseS3URL(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.bucket, bucket, tt.in)
		assert.Equal(t, tt.key, key, tt.in)
	}
}
