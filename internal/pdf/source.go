// Package pdf adapts PDF documents for chapter detection and splitting,
// using pdfcpu for page-level operations and ledongthuc/pdf for
// text-with-typography extraction.
package pdf

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"chapterize/internal/detect"
	"chapterize/internal/types"
)

// Source is a detection view over one PDF file. It implements
// detect.Source.
type Source struct {
	path      string
	pageCount int
	log       *slog.Logger

	outlineLoaded bool
	outline       []outlineEntry
}

type outlineEntry struct {
	title string
	page  int
	level int
}

// Open validates the file and reads its page count. The returned Source
// reopens the file per operation; it holds no file handle.
func Open(path string, log *slog.Logger) (*Source, error) {
	if log == nil {
		log = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("PDF %s has no pages", path)
	}

	return &Source{path: path, pageCount: pageCount, log: log}, nil
}

// Path returns the source file path.
func (s *Source) Path() string { return s.path }

// TotalUnits returns the page count.
func (s *Source) TotalUnits() int { return s.pageCount }

// Paginated reports that PDF positions are page ranges.
func (s *Source) Paginated() bool { return true }

// Outline returns chapters from the PDF bookmark tree, filtered to the
// requested hierarchy level (level <= 0 keeps every level). The boolean is
// false when the document has no bookmarks or they cannot be read; that is
// a signal to try the next strategy, not an error.
func (s *Source) Outline(level int) ([]types.Chapter, bool, error) {
	if err := s.loadOutline(); err != nil {
		s.log.Debug("bookmark extraction failed", "path", s.path, "error", err)
		return nil, false, nil
	}
	if len(s.outline) == 0 {
		return nil, false, nil
	}

	var chapters []types.Chapter
	for _, e := range s.outline {
		if level > 0 && e.level != level {
			continue
		}
		title := strings.TrimSpace(e.title)
		if title == "" {
			continue
		}
		chapters = append(chapters, types.Chapter{
			Title:      title,
			Position:   types.Position{StartPage: e.page, EndPage: e.page},
			Level:      e.level,
			Method:     types.MethodNative,
			Confidence: 1.0,
		})
	}
	return chapters, true, nil
}

func (s *Source) loadOutline() error {
	if s.outlineLoaded {
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	bms, err := api.Bookmarks(f, nil)
	if err != nil {
		return fmt.Errorf("failed to read bookmarks: %w", err)
	}

	s.outline = flattenBookmarks(bms)
	s.outlineLoaded = true
	return nil
}

// flattenBookmarks walks the bookmark tree depth-first with an explicit
// (node, level) stack, assigning level 1 to roots. Children are pushed in
// reverse so entries come out in document order.
func flattenBookmarks(roots []pdfcpu.Bookmark) []outlineEntry {
	type frame struct {
		bm    pdfcpu.Bookmark
		level int
	}

	var stack []frame
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 1})
	}

	var entries []outlineEntry
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.bm.PageFrom > 0 {
			entries = append(entries, outlineEntry{
				title: top.bm.Title,
				page:  top.bm.PageFrom,
				level: top.level,
			})
		}

		kids := top.bm.Kids
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{kids[i], top.level + 1})
		}
	}
	return entries
}

// Headings scans pages for chapter headings by pattern and relative font
// size. Pages that fail to parse are skipped.
func (s *Source) Headings(sensitivity types.Sensitivity) ([]types.Chapter, error) {
	units, err := s.textRuns()
	if err != nil {
		return nil, err
	}

	candidates := detect.AnalyzeUnits(units, sensitivity)

	chapters := make([]types.Chapter, 0, len(candidates))
	for _, c := range candidates {
		page := c.Unit + 1
		chapters = append(chapters, types.Chapter{
			Title:      c.Title,
			Position:   types.Position{StartPage: page, EndPage: page},
			Level:      1,
			Method:     types.MethodStructural,
			Confidence: c.Confidence,
		})
	}
	return chapters, nil
}

// Manifest is not applicable to paginated documents.
func (s *Source) Manifest() ([]types.Chapter, error) {
	return nil, nil
}

// WholeDocument returns the single-chapter fallback covering every page.
func (s *Source) WholeDocument() types.Chapter {
	return types.Chapter{
		Title:      "Complete Document",
		Position:   types.Position{StartPage: 1, EndPage: s.pageCount},
		Level:      1,
		Method:     types.MethodFallback,
		Confidence: 1.0,
	}
}
