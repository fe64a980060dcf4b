package epub

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"chapterize/internal/types"
)

// Text-flow layout constants for the paginated render mode. The reflow is
// deliberately naive: fixed-width word wrap, fixed line height, page break
// when vertical space runs out.
const (
	renderPageWidth  = 595.28 // A4 portrait, points
	renderPageHeight = 841.89
	renderMargin     = 50.0
	renderFontSize   = 11.0
	renderLineHeight = 15.0
	renderLineChars  = 90 // character budget per wrapped line
)

// renderPDF writes the chapter's content units as a paginated document:
// markup stripped to plain text and flowed into fixed-size pages.
func (s *Splitter) renderPDF(ch types.Chapter, docs []Document, outPath string) error {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(ch.Title, true)
	if s.PreserveMetadata {
		meta := s.Source.Metadata()
		if meta.Creator != "" {
			pdf.SetAuthor(meta.Creator, true)
		}
	}
	pdf.SetMargins(renderMargin, renderMargin, renderMargin)
	pdf.SetFont("Times", "", renderFontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	y := renderMargin

	writeLine := func(line string) {
		if y+renderLineHeight > renderPageHeight-renderMargin {
			pdf.AddPage()
			y = renderMargin
		}
		pdf.Text(renderMargin, y, tr(line))
		y += renderLineHeight
	}

	// Chapter title as a heading line, then a blank line.
	pdf.SetFont("Times", "B", renderFontSize+4)
	writeLine(ch.Title)
	pdf.SetFont("Times", "", renderFontSize)
	y += renderLineHeight

	for _, doc := range docs {
		text := plainText(doc.Data)
		for _, paragraph := range strings.Split(text, "\n") {
			paragraph = strings.TrimSpace(paragraph)
			if paragraph == "" {
				continue
			}
			for _, line := range wrapText(paragraph, renderLineChars) {
				writeLine(line)
			}
			y += renderLineHeight / 2
		}
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("failed to render chapter PDF: %w", err)
	}
	return nil
}

// wrapText word-wraps text at a fixed character budget. Words longer than
// the budget get a line of their own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var line strings.Builder
	for _, w := range words {
		if line.Len() > 0 && line.Len()+1+len(w) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(w)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
