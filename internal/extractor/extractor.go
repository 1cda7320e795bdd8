// Package extractor reads the reference corpus folder and yields normalized text.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"groundchat/internal/domain"
	"groundchat/internal/logging"
	"groundchat/internal/metrics"
)

// PageReader returns the text of each page (or section) of the file at path.
type PageReader func(path string) ([]string, error)

// Extractor enumerates recognized documents in a directory and extracts their text.
type Extractor struct {
	dir     string
	readers map[string]PageReader
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for skipped documents.
func WithLogger(l *slog.Logger) Option { return func(e *Extractor) { e.logger = l } }

// WithMetrics records skipped documents.
func WithMetrics(m *metrics.Metrics) Option { return func(e *Extractor) { e.metrics = m } }

// WithReader registers a reader for an extension such as ".md".
func WithReader(ext string, r PageReader) Option {
	return func(e *Extractor) { e.readers[normalizeExt(ext)] = r }
}

// New creates an extractor for dir recognizing the given extensions.
// Extensions without a built-in reader are read as plain text.
func New(dir string, extensions []string, opts ...Option) *Extractor {
	e := &Extractor{dir: dir, readers: make(map[string]PageReader)}
	for _, ext := range extensions {
		ext = normalizeExt(ext)
		if ext == ".pdf" {
			e.readers[ext] = ReadPDF
		} else {
			e.readers[ext] = ReadPlainText
		}
	}
	for _, o := range opts {
		o(e)
	}
	e.logger = logging.OrDefault(e.logger)
	return e
}

// Extract reads every recognized document in name order. A document that fails is
// skipped and recorded in Corpus.Skipped; a missing directory yields an empty corpus.
func (e *Extractor) Extract(ctx context.Context) domain.Corpus {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		e.logger.Warn("knowledge folder unavailable", "dir", e.dir, "err", err)
		return domain.NewCorpus(e.dir, nil, nil)
	}
	var docs []domain.Document
	var skipped []string
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if entry.IsDir() {
			continue
		}
		read, ok := e.readers[normalizeExt(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		path := filepath.Join(e.dir, entry.Name())
		doc, err := extractDocument(path, read)
		if err != nil {
			e.logger.Warn("skipping document", "path", path, "err", err)
			e.metrics.ObserveExtractionFailure()
			skipped = append(skipped, path)
			continue
		}
		if doc.Text == "" {
			e.logger.Debug("document has no extractable text", "path", path)
			continue
		}
		docs = append(docs, doc)
	}
	corpus := domain.NewCorpus(e.dir, docs, skipped)
	e.logger.Info("corpus extracted", "dir", e.dir, "documents", len(docs), "skipped", len(skipped), "chars", len([]rune(corpus.RawText())))
	return corpus
}

func extractDocument(path string, read PageReader) (doc domain.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", domain.ErrExtraction, path, r)
		}
	}()
	pages, err := read(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %s: %v", domain.ErrExtraction, path, err)
	}
	var b strings.Builder
	for _, p := range pages {
		p = SanitizeText(p)
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteString("\n")
	}
	return domain.Document{Path: path, Pages: len(pages), Text: b.String()}, nil
}

// ReadPDF extracts plain text page by page.
func ReadPDF(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// ReadPlainText treats the whole file as a single section.
func ReadPlainText(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []string{string(data)}, nil
}

// SanitizeText removes NUL bytes and non-printing control characters that some PDF
// extractors emit, keeping newlines and tabs.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 || ch == 0x7f {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
