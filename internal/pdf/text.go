package pdf

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"chapterize/internal/detect"
)

// textRuns extracts per-page text runs with font sizes. Positioned text
// fragments are stitched into lines: fragments sharing a baseline and font
// size belong to the same run. Pages that fail to parse are skipped with a
// warning.
func (s *Source) textRuns() ([][]detect.Run, error) {
	f, r, err := pdf.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for text extraction: %w", err)
	}
	defer f.Close()

	units := make([][]detect.Run, 0, r.NumPage())
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		runs, err := pageRuns(r, pageNum)
		if err != nil {
			s.log.Warn("skipping unparsable page", "page", pageNum, "error", err)
			units = append(units, nil)
			continue
		}
		units = append(units, runs)
	}
	return units, nil
}

// pageRuns reads one page's content and groups text fragments into runs.
// A panic inside the underlying parser (malformed content streams) is
// recovered and reported as a page-level error.
func pageRuns(r *pdf.Reader, pageNum int) (runs []detect.Run, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("content parse panic on page %d: %v", pageNum, rec)
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	content := page.Content()

	var cur detect.Run
	var curY float64
	flush := func() {
		if cur.Text != "" {
			runs = append(runs, cur)
			cur = detect.Run{}
		}
	}

	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		sameLine := cur.Text != "" && t.Y == curY && t.FontSize == cur.Size
		if !sameLine {
			flush()
			cur = detect.Run{Size: t.FontSize}
			curY = t.Y
		}
		cur.Text += t.S
	}
	flush()

	return runs, nil
}
