// Package output generates deterministic, collision-tolerant output
// filenames from a pattern and chapter metadata.
package output

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"chapterize/internal/types"
)

// DefaultMaxTitleLength bounds the sanitized title used in filenames.
const DefaultMaxTitleLength = 100

// Namer substitutes chapter metadata into a filename pattern.
//
// Recognized placeholders: {index} and {title} for every format,
// {start}, {end} and {pages} for paginated chapters, {file} for archive
// chapters. The output extension is enforced, replacing any recognized
// extension already present in the pattern.
type Namer struct {
	Pattern        string
	Extension      string // e.g. ".pdf" or ".epub"
	MaxTitleLength int
}

// NewNamer creates a Namer with the default title length limit.
func NewNamer(pattern, extension string) *Namer {
	return &Namer{
		Pattern:        pattern,
		Extension:      extension,
		MaxTitleLength: DefaultMaxTitleLength,
	}
}

// recognized output extensions, replaced rather than doubled.
var knownExtensions = map[string]bool{
	".pdf":  true,
	".epub": true,
}

// Name renders the filename for a chapter. Index is 1-based.
func (n *Namer) Name(ch types.Chapter, index int) string {
	maxLen := n.MaxTitleLength
	if maxLen <= 0 {
		maxLen = DefaultMaxTitleLength
	}

	replacements := map[string]string{
		"{index}": fmt.Sprintf("%02d", index),
		"{title}": Sanitize(ch.Title, maxLen),
	}
	if ch.Position.Paginated() {
		replacements["{start}"] = fmt.Sprintf("%d", ch.Position.StartPage)
		replacements["{end}"] = fmt.Sprintf("%d", ch.Position.EndPage)
		replacements["{pages}"] = fmt.Sprintf("%d", ch.PageCount())
	} else {
		stem := path.Base(ch.Position.File)
		stem = strings.TrimSuffix(stem, path.Ext(stem))
		replacements["{file}"] = stem
	}

	name := n.Pattern
	for placeholder, value := range replacements {
		name = strings.ReplaceAll(name, placeholder, value)
	}

	if ext := strings.ToLower(path.Ext(name)); knownExtensions[ext] {
		name = name[:len(name)-len(ext)]
	}
	return name + n.Extension
}

var (
	invalidChars  = `<>:"/\|?*`
	collapseRunRe = regexp.MustCompile(`[\s_]+`)
)

// Sanitize makes a chapter title safe for use as a filename: invalid
// characters become underscores, whitespace/underscore runs collapse to a
// single underscore, the result is trimmed and truncated, and an empty
// result becomes "untitled". Sanitize is idempotent.
func Sanitize(title string, maxLength int) string {
	for _, c := range invalidChars {
		title = strings.ReplaceAll(title, string(c), "_")
	}

	title = collapseRunRe.ReplaceAllString(title, "_")
	title = strings.Trim(title, "_")

	if len(title) > maxLength {
		// Back up to a rune boundary so the cut never splits a
		// multi-byte character.
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = strings.TrimRight(title[:cut], "_")
	}

	if title == "" {
		return "untitled"
	}
	return title
}
