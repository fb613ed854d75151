package rag_service

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/sdiallo/docqa/rag_type"
)

// SupportedFormats lists the file extensions the extractor accepts.
var SupportedFormats = []string{".pdf", ".docx", ".txt", ".html"}

type DocumentExtractor struct {
	logger *slog.Logger
}

func NewDocumentExtractor(logger *slog.Logger) *DocumentExtractor {
	return &DocumentExtractor{logger: logger}
}

// Extract pulls plain text and format-specific metadata out of an
// uploaded file. Unsupported or unparseable input produces a
// ValidationError; the caller maps it to a client error.
func (e *DocumentExtractor) Extract(filename string, data []byte) (string, map[string]interface{}, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return e.extractPDF(data)
	case ".docx":
		return e.extractWord(data)
	case ".txt":
		return string(data), map[string]interface{}{}, nil
	case ".html":
		return e.extractHTML(data)
	default:
		return "", nil, rag_type.NewValidationError(
			"unsupported file format %q, supported formats: %s",
			filepath.Ext(filename), strings.Join(SupportedFormats, ", "))
	}
}

func (e *DocumentExtractor) extractPDF(data []byte) (string, map[string]interface{}, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("Failed to create PDF reader",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", nil, rag_type.NewValidationError("failed to read PDF: %v", err)
	}

	totalPage := reader.NumPage()
	var sb strings.Builder
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("Null page encountered",
				slog.Int("page_number", pageIndex))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Error("Failed to extract text from page",
				slog.Int("page_number", pageIndex),
				slog.String("error", err.Error()))
			return "", nil, rag_type.NewValidationError("failed to extract text from page %d: %v", pageIndex, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return "", nil, rag_type.NewValidationError("no text content extracted from PDF")
	}

	e.logger.Info("Successfully extracted text from PDF",
		slog.Int("total_pages", totalPage),
		slog.Int("total_text_length", sb.Len()))

	return sb.String(), map[string]interface{}{"page_count": totalPage}, nil
}

func (e *DocumentExtractor) extractWord(data []byte) (string, map[string]interface{}, error) {
	mimeType := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	result, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		e.logger.Error("Failed to convert Word document",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", nil, rag_type.NewValidationError("failed to convert Word document: %v", err)
	}

	if len(result.Body) == 0 {
		return "", nil, rag_type.NewValidationError("no text content extracted from Word document")
	}

	metadata := make(map[string]interface{}, len(result.Meta))
	for k, v := range result.Meta {
		metadata[k] = v
	}

	e.logger.Info("Successfully extracted text from Word document",
		slog.Int("text_length", len(result.Body)))

	return result.Body, metadata, nil
}

func (e *DocumentExtractor) extractHTML(data []byte) (string, map[string]interface{}, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, rag_type.NewValidationError("failed to parse HTML: %v", err)
	}

	doc.Find("script, style, noscript").Remove()

	// Element boundaries separate words, so text nodes are collected
	// individually rather than concatenated the way Text() does.
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Find("body").Nodes {
		walk(n)
	}

	text := strings.Join(parts, " ")
	if text == "" {
		return "", nil, rag_type.NewValidationError("no text content extracted from HTML document")
	}

	metadata := map[string]interface{}{}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		metadata["title"] = title
	}

	return text, metadata, nil
}

// TitleFromFilename derives the document title the way uploads name
// documents: the base name without its extension.
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DocTypeFromFilename returns the extension without the dot, e.g. "pdf".
func DocTypeFromFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strings.TrimPrefix(ext, ".")
}

// IsSupportedFormat reports whether the filename's extension is one the
// extractor handles.
func IsSupportedFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedFormats {
		if ext == s {
			return true
		}
	}
	return false
}
