// Package epub adapts EPUB containers for chapter detection and splitting:
// outline extraction from the NCX, structural heading analysis, manifest
// fallback, resource resolution and minimal container rebuild.
package epub

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taylorskalyo/goreader/epub"

	"chapterize/internal/detect"
	"chapterize/internal/types"
)

// Source is a detection view over one EPUB file. It implements
// detect.Source. Close releases the underlying archive.
type Source struct {
	path string
	rc   *epub.ReadCloser
	book *epub.Rootfile
	log  *slog.Logger

	// spine holds the hrefs of document items in reading order.
	spine []string
	// spineIndex maps item href to its reading-order position.
	spineIndex map[string]int
	// items maps manifest href to the manifest entry.
	items map[string]*epub.Item
}

// Open opens the EPUB container and indexes its manifest and spine.
func Open(filename string, log *slog.Logger) (*Source, error) {
	if log == nil {
		log = slog.Default()
	}

	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	if len(rc.Rootfiles) == 0 {
		rc.Close()
		return nil, fmt.Errorf("no rootfiles found in epub %s", filename)
	}

	s := &Source{
		path:       filename,
		rc:         rc,
		book:       rc.Rootfiles[0],
		log:        log,
		spineIndex: make(map[string]int),
		items:      make(map[string]*epub.Item),
	}

	for i := range s.book.Manifest.Items {
		item := &s.book.Manifest.Items[i]
		s.items[item.HREF] = item
	}
	for _, ref := range s.book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		s.spineIndex[ref.Item.HREF] = len(s.spine)
		s.spine = append(s.spine, ref.Item.HREF)
	}

	return s, nil
}

// Close releases the underlying archive.
func (s *Source) Close() error {
	s.rc.Close()
	return nil
}

// Path returns the source file path.
func (s *Source) Path() string { return s.path }

// Metadata returns the source package metadata used for preservation.
func (s *Source) Metadata() Metadata {
	m := s.book.Metadata
	return Metadata{
		Title:       m.Title,
		Creator:     m.Creator,
		Language:    m.Language,
		Identifier:  m.Identifier,
		Publisher:   m.Publisher,
		Description: m.Description,
		Rights:      m.Rights,
	}
}

// TotalUnits returns the number of content files in the spine.
func (s *Source) TotalUnits() int { return len(s.spine) }

// Paginated reports that EPUB positions are content units, not page ranges.
func (s *Source) Paginated() bool { return false }

// Item resolves a content reference against the manifest: direct href
// lookup first, then relative to the referencing unit's directory, then a
// base-name match. Returns nil when unresolvable.
func (s *Source) Item(href, fromUnit string) *epub.Item {
	href = strings.SplitN(href, "#", 2)[0]
	if href == "" {
		return nil
	}
	if item, ok := s.items[href]; ok {
		return item
	}
	if fromUnit != "" {
		resolved := path.Clean(path.Join(path.Dir(fromUnit), href))
		if item, ok := s.items[resolved]; ok {
			return item
		}
	}
	base := path.Base(href)
	for h, item := range s.items {
		if path.Base(h) == base {
			return item
		}
	}
	return nil
}

// readItem returns the raw bytes of a manifest item.
func (s *Source) readItem(item *epub.Item) ([]byte, error) {
	r, err := item.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", item.HREF, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", item.HREF, err)
	}
	return data, nil
}

// ReadUnit returns the raw bytes of the content unit with the given href.
func (s *Source) ReadUnit(href string) ([]byte, error) {
	item := s.Item(href, "")
	if item == nil {
		return nil, fmt.Errorf("content unit %s not found in manifest", href)
	}
	return s.readItem(item)
}

// Headings detects chapters per content unit via heading tags h1..hN, with
// N driven by sensitivity and a fixed confidence per tag depth. Units that
// fail to parse are skipped.
func (s *Source) Headings(sensitivity types.Sensitivity) ([]types.Chapter, error) {
	depths := detect.HeadingTagDepths(sensitivity)

	var chapters []types.Chapter
	for i, href := range s.spine {
		data, err := s.ReadUnit(href)
		if err != nil {
			s.log.Warn("skipping unreadable content unit", "unit", href, "error", err)
			continue
		}
		headings, err := scanHeadings(data, depths)
		if err != nil {
			s.log.Warn("skipping unparsable content unit", "unit", href, "error", err)
			continue
		}
		for _, h := range headings {
			chapters = append(chapters, types.Chapter{
				Title: h.text,
				Position: types.Position{
					File:       href,
					Fragment:   h.id,
					SpineIndex: i,
				},
				Level:      h.depth,
				Method:     types.MethodStructural,
				Confidence: detect.TagConfidence(h.depth),
			})
		}
	}
	return chapters, nil
}

// Manifest treats each spine entry as its own chapter: the
// lowest-confidence, always-available strategy.
func (s *Source) Manifest() ([]types.Chapter, error) {
	var chapters []types.Chapter
	for i, href := range s.spine {
		title := ""
		if data, err := s.ReadUnit(href); err == nil {
			title = documentTitle(data)
		}
		if title == "" {
			title = titleFromFilename(href)
		}
		chapters = append(chapters, types.Chapter{
			Title:      title,
			Position:   types.Position{File: href, SpineIndex: i},
			Level:      1,
			Method:     types.MethodManifest,
			Confidence: 0.6,
		})
	}
	return chapters, nil
}

// WholeDocument returns the single-chapter fallback covering the first
// spine unit through document end. Materialization of a fallback chapter
// copies every spine unit.
func (s *Source) WholeDocument() types.Chapter {
	file := ""
	if len(s.spine) > 0 {
		file = s.spine[0]
	}
	return types.Chapter{
		Title:      "Complete Document",
		Position:   types.Position{File: file, SpineIndex: 0},
		Level:      1,
		Method:     types.MethodFallback,
		Confidence: 1.0,
	}
}

// titleFromFilename converts "OEBPS/my_chapter-01.xhtml" to "My Chapter 01".
func titleFromFilename(href string) string {
	stem := path.Base(href)
	stem = strings.TrimSuffix(stem, path.Ext(stem))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)

	words := strings.Fields(stem)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
