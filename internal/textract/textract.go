package textract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"letterchain/internal/config"
	"letterchain/internal/logging"
)

// Service validates uploaded documents and extracts plain text from them.
// Plain text and HTML are handled inline; binary formats go through the
// registered Extractor for their extension.
type Service struct {
	cfg        *config.Config
	extractors map[string]Extractor
	logger     logging.Logger
}

// Extractor converts one binary document format to plain text
type Extractor interface {
	Extract(data []byte) (string, error)
}

// UnsupportedFormatError is returned when a file's format has no registered
// extractor
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("textract: no extractor registered for %s files", e.Extension)
}

// ValidationError describes why an upload was refused
type ValidationError struct {
	Filename string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("textract: %s: %s", e.Filename, e.Reason)
}

// NewService creates an extraction service with the given upload policy
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:        cfg,
		extractors: make(map[string]Extractor),
		logger:     logging.GetGlobalLogger(),
	}
}

// Register adds an extractor for a file extension (".pdf", ".docx")
func (s *Service) Register(ext string, ex Extractor) {
	s.extractors[strings.ToLower(ext)] = ex
}

// ValidateUpload checks size, extension and MIME type against the
// configured policy. Returns a *ValidationError describing the first
// violation found.
func (s *Service) ValidateUpload(filename, contentType string, size int64) error {
	if size > s.cfg.Uploads.MaxFileSize {
		return &ValidationError{
			Filename: filename,
			Reason:   fmt.Sprintf("file is too large (max %dMB)", s.cfg.Uploads.MaxFileSize/1024/1024),
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return &ValidationError{Filename: filename, Reason: "file must have a valid extension"}
	}
	if !contains(s.cfg.Uploads.AllowedExtensions, ext) {
		return &ValidationError{
			Filename: filename,
			Reason:   fmt.Sprintf("file type not allowed, only %s are supported", strings.Join(s.cfg.Uploads.AllowedExtensions, ", ")),
		}
	}

	if contentType != "" && !contains(s.cfg.Uploads.AllowedMIMETypes, baseMIME(contentType)) {
		return &ValidationError{Filename: filename, Reason: "file MIME type not allowed"}
	}

	return nil
}

// ExtractText converts an uploaded document to plain text
func (s *Service) ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", "":
		return normalizeWhitespace(string(data)), nil
	case ".html", ".htm":
		return StripHTML(string(data))
	}

	if ex, ok := s.extractors[ext]; ok {
		text, err := ex.Extract(data)
		if err != nil {
			s.logger.Error("Text extraction failed", map[string]interface{}{
				"filename": filename,
				"error":    err.Error(),
			})
			return "", fmt.Errorf("failed to extract text from %s: %w", filename, err)
		}
		return normalizeWhitespace(text), nil
	}

	return "", &UnsupportedFormatError{Extension: ext}
}

// skipTags are elements whose text is never document content
var skipTags = []string{
	"script", "style", "noscript", "iframe", "object", "embed",
	"nav", "header", "footer", "aside",
	"meta", "link", "title", "base",
}

// StripHTML reduces an HTML document to its visible text
func StripHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, tag := range skipTags {
		doc.Find(tag).Remove()
	}

	var text string
	if body := doc.Find("body"); body.Length() > 0 {
		text = body.Text()
	} else {
		text = doc.Text()
	}

	return normalizeWhitespace(text), nil
}

var (
	multiSpace   = regexp.MustCompile(`[ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// normalizeWhitespace collapses runs of spaces and blank lines while
// preserving paragraph breaks, which the parsers rely on for structure
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(multiSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func baseMIME(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
