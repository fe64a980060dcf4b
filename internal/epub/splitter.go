package epub

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"chapterize/internal/output"
	"chapterize/internal/types"
)

// OutputFormat selects what a materialized chapter is written as.
type OutputFormat string

const (
	// OutputEPUB rebuilds each chapter as a minimal standalone EPUB.
	OutputEPUB OutputFormat = "epub"
	// OutputPDF renders each chapter to a paginated document via text reflow.
	OutputPDF OutputFormat = "pdf"
)

// Splitter materializes detected chapters from an EPUB source. The same
// boundary resolution and content extraction feed both output formats;
// only the final write step differs.
type Splitter struct {
	Source           *Source
	OutputDir        string
	Format           OutputFormat
	Namer            *output.Namer
	PreserveMetadata bool
	Log              *slog.Logger
}

// NewSplitter creates a Splitter writing into outputDir with the given
// filename pattern and output format.
func NewSplitter(src *Source, outputDir, pattern string, format OutputFormat, preserveMetadata bool, log *slog.Logger) *Splitter {
	if log == nil {
		log = slog.Default()
	}
	if format == "" {
		format = OutputEPUB
	}
	return &Splitter{
		Source:           src,
		OutputDir:        outputDir,
		Format:           format,
		Namer:            output.NewNamer(pattern, "."+string(format)),
		PreserveMetadata: preserveMetadata,
		Log:              log,
	}
}

// Split materializes one output file per chapter and returns the paths
// written. On a write failure it aborts the remaining chapters and returns
// the paths already written alongside the error.
func (s *Splitter) Split(result *types.DetectionResult) ([]string, error) {
	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for i, ch := range result.Chapters {
		outPath := filepath.Join(s.OutputDir, s.Namer.Name(ch, i+1))
		if err := s.materialize(ch, outPath); err != nil {
			return written, fmt.Errorf("failed to write chapter %d (%s): %w", i+1, ch.Title, err)
		}
		s.Log.Info("wrote chapter",
			"index", i+1, "title", ch.Title, "unit", ch.Position.File, "path", outPath)
		written = append(written, outPath)
	}
	return written, nil
}

// materialize extracts one chapter's content units and writes them in the
// configured output format.
func (s *Splitter) materialize(ch types.Chapter, outPath string) error {
	docs, err := s.extract(ch)
	if err != nil {
		return err
	}

	switch s.Format {
	case OutputPDF:
		return s.renderPDF(ch, docs, outPath)
	default:
		return s.buildEPUB(ch, docs, outPath)
	}
}

// extract returns the chapter's content documents. A chapter with a
// fragment anchor is spliced out of its unit; a whole-document fallback
// chapter copies every spine unit; anything else copies its single unit.
func (s *Splitter) extract(ch types.Chapter) ([]Document, error) {
	if ch.Method == types.MethodFallback {
		var docs []Document
		for _, href := range s.Source.spine {
			data, err := s.Source.ReadUnit(href)
			if err != nil {
				s.Log.Warn("skipping unreadable content unit", "unit", href, "error", err)
				continue
			}
			docs = append(docs, Document{Href: href, Title: documentTitle(data), Data: data})
		}
		if len(docs) == 0 {
			return nil, fmt.Errorf("no readable content units in document")
		}
		return docs, nil
	}

	data, err := s.Source.ReadUnit(ch.Position.File)
	if err != nil {
		return nil, err
	}

	if ch.Position.Fragment != "" {
		extracted, err := extractFragment(data, ch.Position.Fragment)
		if err != nil {
			// Malformed unit: fall back to the whole file rather than fail
			// the chapter.
			s.Log.Warn("fragment extraction failed, copying whole unit",
				"unit", ch.Position.File, "fragment", ch.Position.Fragment, "error", err)
		} else {
			data = extracted
		}
	}

	return []Document{{Href: ch.Position.File, Title: ch.Title, Data: data}}, nil
}

// buildEPUB rebuilds the chapter as a minimal self-contained EPUB: the
// extracted unit(s), every resource they reference, and navigation
// pointing at the extracted content.
func (s *Splitter) buildEPUB(ch types.Chapter, docs []Document, outPath string) error {
	meta := Metadata{Title: ch.Title, Language: "en"}
	if s.PreserveMetadata {
		meta = s.Source.Metadata()
		// Title is always overridden with the chapter title.
		meta.Title = ch.Title
	}

	b := NewBuilder(meta)
	for _, doc := range docs {
		b.AddDocument(doc)
		for _, res := range s.Source.Resources(doc.Href, doc.Data) {
			b.AddResource(res)
		}
	}

	if err := b.Build(outPath); err != nil {
		return fmt.Errorf("failed to build chapter epub: %w", err)
	}
	return nil
}
