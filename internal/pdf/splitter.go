package pdf

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"chapterize/internal/output"
	"chapterize/internal/types"
)

// Splitter materializes detected chapters as standalone PDF files, one
// contiguous page-range copy per chapter.
type Splitter struct {
	OutputDir        string
	Namer            *output.Namer
	PreserveMetadata bool
	Log              *slog.Logger
}

// NewSplitter creates a Splitter writing into outputDir with the given
// filename pattern.
func NewSplitter(outputDir, pattern string, preserveMetadata bool, log *slog.Logger) *Splitter {
	if log == nil {
		log = slog.Default()
	}
	return &Splitter{
		OutputDir:        outputDir,
		Namer:            output.NewNamer(pattern, ".pdf"),
		PreserveMetadata: preserveMetadata,
		Log:              log,
	}
}

// Split writes one PDF per chapter and returns the paths written. On a
// write failure it aborts the remaining chapters and returns the paths
// already written alongside the error, so partial output is never silently
// incomplete.
func (s *Splitter) Split(srcPath string, result *types.DetectionResult) ([]string, error) {
	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source PDF: %w", err)
	}
	defer f.Close()

	var written []string
	for i, ch := range result.Chapters {
		outPath := filepath.Join(s.OutputDir, s.Namer.Name(ch, i+1))
		if err := s.writeChapter(f, ch, outPath); err != nil {
			return written, fmt.Errorf("failed to write chapter %d (%s): %w", i+1, ch.Title, err)
		}
		s.Log.Info("wrote chapter",
			"index", i+1, "title", ch.Title, "pages", ch.PageCount(), "path", outPath)
		written = append(written, outPath)
	}
	return written, nil
}

// writeChapter copies the chapter's page range verbatim into a fresh
// document. pdfcpu carries the source metadata through the copy; when
// metadata preservation is on, the document title is overridden with the
// chapter title.
func (s *Splitter) writeChapter(src *os.File, ch types.Chapter, outPath string) error {
	if _, err := src.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind source: %w", err)
	}

	pages := []string{fmt.Sprintf("%d-%d", ch.Position.StartPage, ch.Position.EndPage)}

	var buf bytes.Buffer
	if err := api.Trim(src, &buf, pages, nil); err != nil {
		return fmt.Errorf("failed to extract pages %s: %w", pages[0], err)
	}

	data := buf.Bytes()
	if s.PreserveMetadata && ch.Title != "" {
		var titled bytes.Buffer
		props := map[string]string{"Title": ch.Title}
		if err := api.AddProperties(bytes.NewReader(data), &titled, props, nil); err != nil {
			// Title override is best-effort; the page copy is still valid.
			s.Log.Warn("failed to set chapter title metadata", "title", ch.Title, "error", err)
		} else {
			data = titled.Bytes()
		}
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to save output file: %w", err)
	}
	return nil
}
