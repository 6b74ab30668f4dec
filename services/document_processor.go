package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"

	"github.com/studywise/backend/models"
)

// SupportedExtensions maps upload extensions to stored file types
var SupportedExtensions = map[string]string{
	".pdf":  models.FileTypePDF,
	".docx": models.FileTypeDocx,
	".txt":  models.FileTypeText,
	".md":   models.FileTypeMD,
	".png":  models.FileTypeImage,
	".jpg":  models.FileTypeImage,
	".jpeg": models.FileTypeImage,
	".webp": models.FileTypeImage,
}

// ImageMIMETypes maps image extensions to their MIME type for the vision model
var ImageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// DocumentProcessor validates uploads and extracts text from them.
// Image uploads are OCR'd through the Gemini vision model.
type DocumentProcessor struct {
	gemini *GeminiService
}

func NewDocumentProcessor(gemini *GeminiService) *DocumentProcessor {
	return &DocumentProcessor{gemini: gemini}
}

// ValidateUpload checks extension and size, returning the stored file type
func (p *DocumentProcessor) ValidateUpload(filename string, size int64) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("empty file")
	}
	if size > models.MaxUploadSize {
		return "", fmt.Errorf("file exceeds the 10 MB upload limit")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	fileType, ok := SupportedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q (allowed: pdf, docx, txt, md, png, jpg, webp)", ext)
	}
	return fileType, nil
}

// ExtractText extracts plain text from the upload. Magic bytes are checked
// before trusting the extension. Returns the text and a page count (0 when
// the format has no page concept).
func (p *DocumentProcessor) ExtractText(ctx context.Context, fileType, filename string, data []byte) (string, int, error) {
	if len(data) == 0 {
		return "", 0, fmt.Errorf("empty file: %s", filename)
	}

	switch fileType {
	case models.FileTypePDF:
		if !isPDFData(data) {
			return "", 0, fmt.Errorf("file claims pdf but missing %%PDF header: %s", filename)
		}
		return p.extractPDF(data)

	case models.FileTypeDocx:
		if !isZipData(data) {
			return "", 0, fmt.Errorf("file claims docx but is not a valid zip container: %s", filename)
		}
		text, err := extractDocxText(data)
		return text, 0, err

	case models.FileTypeText, models.FileTypeMD:
		if !utf8.Valid(data) {
			return "", 0, fmt.Errorf("text file is not valid UTF-8: %s", filename)
		}
		return normalizeText(string(data)), 0, nil

	case models.FileTypeImage:
		text, err := p.extractImageText(ctx, filename, data)
		return text, 1, err

	default:
		return "", 0, fmt.Errorf("unsupported file type: %s", fileType)
	}
}

func isPDFData(b []byte) bool {
	// PDF starts with "%PDF-"
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZipData(b []byte) bool {
	// ZIP local file header: PK\x03\x04
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func (p *DocumentProcessor) extractPDF(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("pdf reader: %w", err)
	}

	pageCount := reader.NumPage()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", pageCount, fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", pageCount, fmt.Errorf("pdf read: %w", err)
	}

	text := normalizeText(string(b))
	if text == "" {
		return "", pageCount, fmt.Errorf("no text extracted from pdf (scanned document?)")
	}
	return text, pageCount, nil
}

// extractDocxText pulls the <w:t> runs out of word/document.xml
func extractDocxText(zipBytes []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return "", fmt.Errorf("docx zip: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("docx open document.xml: %w", err)
			}
			docXML, _ = io.ReadAll(rc)
			rc.Close()
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("docx missing word/document.xml")
	}

	dec := xml.NewDecoder(bytes.NewReader(docXML))
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				var v string
				_ = dec.DecodeElement(&v, &el)
				if v != "" {
					out.WriteString(v)
					out.WriteString(" ")
				}
			}
		case xml.EndElement:
			// paragraph ends become line breaks so chunking can prefer them
			if el.Name.Local == "p" {
				out.WriteString("\n")
			}
		}
	}

	text := normalizeText(out.String())
	if text == "" {
		return "", fmt.Errorf("no text extracted from docx")
	}
	return text, nil
}

func (p *DocumentProcessor) extractImageText(ctx context.Context, filename string, data []byte) (string, error) {
	if p.gemini == nil {
		return "", fmt.Errorf("image OCR unavailable: AI service not configured")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	mimeType, ok := ImageMIMETypes[ext]
	if !ok {
		mimeType = "image/jpeg"
	}

	text, err := p.gemini.GenerateWithImages(ctx,
		"Extract all text visible in this image. Return only the extracted text, preserving the reading order. Do not add commentary.",
		[][]byte{data}, []string{mimeType}, GenerateOptions{Temperature: 0.1})
	if err != nil {
		return "", fmt.Errorf("image OCR failed: %w", err)
	}

	text = normalizeText(text)
	if text == "" {
		return "", fmt.Errorf("no text found in image")
	}

	slog.Info("Image OCR completed", "filename", filename, "text_length", len(text))
	return text, nil
}

// normalizeText collapses runs of horizontal whitespace while keeping
// paragraph breaks, which the chunker prefers as split points.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var paragraphs []string
	for _, para := range strings.Split(s, "\n\n") {
		lines := make([]string, 0, 4)
		for _, line := range strings.Split(para, "\n") {
			line = strings.Join(strings.Fields(line), " ")
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
