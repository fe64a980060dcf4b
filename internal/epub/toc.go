package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"chapterize/internal/types"
)

// NCX structures for parsing toc.ncx.
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID       string     `xml:"id,attr"`
	Label    navLabel   `xml:"navLabel"`
	Content  navContent `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// Outline returns chapters from the EPUB's navigation document (toc.ncx),
// filtered to the requested hierarchy level (level <= 0 keeps every
// level). The boolean is false when no usable NCX exists; that signals
// "try the next strategy", not an error.
func (s *Source) Outline(level int) ([]types.Chapter, bool, error) {
	ncxData, err := s.readNCX()
	if err != nil {
		s.log.Debug("no usable navigation document", "path", s.path, "error", err)
		return nil, false, nil
	}

	var toc ncx
	if err := xml.Unmarshal(ncxData, &toc); err != nil {
		s.log.Debug("failed to parse NCX", "path", s.path, "error", err)
		return nil, false, nil
	}
	if len(toc.NavMap.NavPoints) == 0 {
		return nil, false, nil
	}

	entries := s.flattenNavPoints(toc.NavMap.NavPoints)

	var chapters []types.Chapter
	for _, ch := range entries {
		if level > 0 && ch.Level != level {
			continue
		}
		if strings.TrimSpace(ch.Title) == "" {
			continue
		}
		chapters = append(chapters, ch)
	}
	return chapters, true, nil
}

// flattenNavPoints walks the navPoint tree depth-first with an explicit
// (node, level) stack, assigning level 1 to roots. Each destination is
// split on the first '#' into content unit and fragment anchor.
func (s *Source) flattenNavPoints(roots []navPoint) []types.Chapter {
	type frame struct {
		np    navPoint
		level int
	}

	var stack []frame
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 1})
	}

	var chapters []types.Chapter
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		file, fragment := splitHref(top.np.Content.Src)
		if item := s.Item(file, ""); item != nil {
			file = item.HREF
		}
		chapters = append(chapters, types.Chapter{
			Title: strings.TrimSpace(top.np.Label.Text),
			Position: types.Position{
				File:       file,
				Fragment:   fragment,
				SpineIndex: s.spineIndex[file],
			},
			Level:      top.level,
			Method:     types.MethodNative,
			Confidence: 1.0,
		})

		kids := top.np.Children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{kids[i], top.level + 1})
		}
	}
	return chapters
}

// splitHref splits "unit#fragment" on the first '#'; fragment is empty if
// absent.
func splitHref(href string) (file, fragment string) {
	if idx := strings.Index(href, "#"); idx != -1 {
		return href[:idx], href[idx+1:]
	}
	return href, ""
}

// readNCX locates and reads the NCX navigation file: by manifest media
// type first, then by scanning the archive for a .ncx entry.
func (s *Source) readNCX() ([]byte, error) {
	zr, err := zip.OpenReader(s.path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range s.book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no NCX file found in EPUB")
	}

	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) || path.Base(f.Name) == path.Base(ncxPath) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}

	return nil, fmt.Errorf("NCX file %s not found in archive", ncxPath)
}
