package services

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studywise/backend/models"
)

func TestValidateUpload(t *testing.T) {
	p := NewDocumentProcessor(nil)

	tests := []struct {
		name     string
		filename string
		size     int64
		wantType string
		wantErr  bool
	}{
		{"pdf", "notes.pdf", 1024, models.FileTypePDF, false},
		{"uppercase extension", "NOTES.PDF", 1024, models.FileTypePDF, false},
		{"docx", "essay.docx", 1024, models.FileTypeDocx, false},
		{"markdown", "readme.md", 10, models.FileTypeMD, false},
		{"image", "sheet.jpg", 1024, models.FileTypeImage, false},
		{"empty file", "notes.pdf", 0, "", true},
		{"over size limit", "notes.pdf", models.MaxUploadSize + 1, "", true},
		{"at size limit", "notes.pdf", models.MaxUploadSize, models.FileTypePDF, false},
		{"unsupported extension", "archive.tar.gz", 1024, "", true},
		{"no extension", "notes", 1024, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileType, err := p.ValidateUpload(tt.filename, tt.size)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, fileType)
		})
	}
}

func TestMagicByteSniffing(t *testing.T) {
	assert.True(t, isPDFData([]byte("%PDF-1.7 rest of file")))
	assert.False(t, isPDFData([]byte("plain text")))
	assert.False(t, isPDFData([]byte("%PD")))

	assert.True(t, isZipData([]byte{'P', 'K', 3, 4, 0, 0}))
	assert.False(t, isZipData([]byte("PKZIP but not really")))
	assert.False(t, isZipData([]byte{'P', 'K'}))
}

func TestExtractTextRejectsMismatchedContent(t *testing.T) {
	p := NewDocumentProcessor(nil)
	ctx := context.Background()

	_, _, err := p.ExtractText(ctx, models.FileTypePDF, "fake.pdf", []byte("not a pdf"))
	assert.Error(t, err)

	_, _, err = p.ExtractText(ctx, models.FileTypeDocx, "fake.docx", []byte("not a zip"))
	assert.Error(t, err)

	_, _, err = p.ExtractText(ctx, models.FileTypeText, "bad.txt", []byte{0xff, 0xfe, 0x00, 0x81})
	assert.Error(t, err)
}

func TestExtractTextPlainText(t *testing.T) {
	p := NewDocumentProcessor(nil)

	text, pages, err := p.ExtractText(context.Background(), models.FileTypeMD, "notes.md", []byte("# Title\r\n\r\nSome   spaced    text\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, pages)
	assert.Equal(t, "# Title\n\nSome spaced text", text)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDocxText(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t>world</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := extractDocxText(buildDocx(t, docXML))
	require.NoError(t, err)
	assert.Equal(t, "Hello world\nSecond paragraph", text)
}

func TestExtractDocxTextMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<styles/>"))
	require.NoError(t, zw.Close())

	_, err = extractDocxText(buf.Bytes())
	assert.Error(t, err)
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"collapses spaces", "a   b\t\tc", "a b c"},
		{"windows line endings", "line one\r\nline two", "line one\nline two"},
		{"keeps paragraph breaks", "para one\n\npara two", "para one\n\npara two"},
		{"drops empty lines inside paragraphs", "a\n\n\n\nb", "a\n\nb"},
		{"non-breaking spaces", "a b", "a b"},
		{"empty", "   \n\n  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeText(tt.in))
		})
	}
}
