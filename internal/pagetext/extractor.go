// Package pagetext reads per-page text and word boxes from AIP documents.
package pagetext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/entity"
)

type Config struct {
	// PdfToText is the poppler binary used for word boxes when the native
	// reader finds none. Empty disables that backend.
	PdfToText string
	MaxPages  int // 0 = no limit
}

// Document is the extraction result for one file.
type Document struct {
	Pages     []entity.PageInput
	PageCount int
	Method    string // "native" | "native+poppler" | "text"
	Duration  time.Duration
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on file extension. Missing files, empty
// documents and unreadable PDFs are hard failures; a single bad page is not.
func (e *Extractor) Extract(ctx context.Context, path string) (Document, error) {
	start := time.Now()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, common.NewAppError(common.CodePDFNotFound, path, common.ErrNotFound)
		}
		return Document{}, common.NewAppError(common.CodePDFUnreadable, path, err)
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	var (
		doc Document
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		doc, err = e.extractPDF(ctx, path)
	case constants.TEXT:
		doc, err = e.extractText(path)
	default:
		return Document{}, common.NewAppError(common.CodePDFUnreadable, fmt.Sprintf("unsupported extension %q", ext), common.ErrInvalidInput)
	}
	if err != nil {
		return Document{}, err
	}
	if e.cfg.MaxPages > 0 && len(doc.Pages) > e.cfg.MaxPages {
		doc.Pages = doc.Pages[:e.cfg.MaxPages]
	}
	doc.Duration = time.Since(start)
	e.logger.Debug("pagetext.extract.ok",
		"path", path,
		"method", doc.Method,
		"pages", doc.PageCount,
		"duration_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}

func (e *Extractor) extractText(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, common.NewAppError(common.CodePDFUnreadable, path, err)
	}
	pages := SplitTextPages(string(b))
	if len(pages) == 0 {
		return Document{}, common.NewAppError(common.CodePDFEmpty, path, common.ErrEmptyPDF)
	}
	return Document{Pages: pages, PageCount: len(pages), Method: "text"}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Document, error) {
	info, err := Inspect(path)
	if err != nil {
		return Document{}, common.NewAppError(common.CodePDFUnreadable, path, err)
	}
	if info.PageCount == 0 {
		return Document{}, common.NewAppError(common.CodePDFEmpty, path, common.ErrEmptyPDF)
	}

	pages, err := nativePages(path, e.logger)
	method := "native"
	if err != nil {
		if e.cfg.PdfToText == "" {
			return Document{}, common.NewAppError(common.CodePDFUnreadable, path, err)
		}
		e.logger.Warn("pagetext.native.failed", "path", path, "error", err)
		pages = make([]entity.PageInput, info.PageCount)
		for i := range pages {
			pages[i].PageNo = i + 1
		}
	}
	for i := range pages {
		if i < len(info.Dims) && pages[i].Width <= 0 {
			pages[i].Width, pages[i].Height = info.Dims[i].Width, info.Dims[i].Height
		}
	}

	if e.cfg.PdfToText != "" && missingWords(pages) {
		bbox, perr := e.popplerPages(ctx, path)
		if perr != nil {
			e.logger.Warn("pagetext.poppler.failed", "path", path, "error", perr)
		} else {
			mergePoppler(pages, bbox)
			method = "native+poppler"
		}
	}
	return Document{Pages: pages, PageCount: info.PageCount, Method: method}, nil
}

func missingWords(pages []entity.PageInput) bool {
	for _, p := range pages {
		if !p.HasWords() {
			return true
		}
	}
	return false
}

// mergePoppler fills pages that have no words from the poppler result.
// Poppler text replaces native text only when the native text is empty.
func mergePoppler(pages []entity.PageInput, bbox []entity.PageInput) {
	for i := range pages {
		if i >= len(bbox) || pages[i].HasWords() {
			continue
		}
		src := bbox[i]
		pages[i].Words = src.Words
		if pages[i].Text == "" {
			pages[i].Text = src.Text
			pages[i].DecodeError = ""
		}
		if src.Width > 0 {
			pages[i].Width, pages[i].Height = src.Width, src.Height
		}
	}
}
