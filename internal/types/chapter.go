// Package types provides shared types used across multiple packages.
// This package has no dependencies on other chapterize packages to avoid import cycles.
package types

import (
	"fmt"
	"strings"
)

// DetectionMethod indicates how a chapter boundary was found.
type DetectionMethod string

const (
	// MethodNative indicates detection from the document's own outline (bookmarks/TOC).
	MethodNative DetectionMethod = "native"
	// MethodStructural indicates detection from heading analysis of the content.
	MethodStructural DetectionMethod = "structural"
	// MethodManifest indicates one chapter per spine entry of an archive document.
	MethodManifest DetectionMethod = "manifest"
	// MethodFallback indicates the synthesized whole-document chapter.
	MethodFallback DetectionMethod = "fallback"
)

// Strategy selects which detection stages run.
type Strategy string

const (
	StrategyNative     Strategy = "native"
	StrategyStructural Strategy = "structural"
	StrategyManifest   Strategy = "manifest"
	StrategyHybrid     Strategy = "hybrid"
)

// ParseStrategy converts a string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyNative:
		return StrategyNative, nil
	case StrategyStructural:
		return StrategyStructural, nil
	case StrategyManifest:
		return StrategyManifest, nil
	case StrategyHybrid:
		return StrategyHybrid, nil
	}
	return "", fmt.Errorf("unknown detection strategy %q", s)
}

// Sensitivity tunes how aggressively heading analysis admits candidates.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// ParseSensitivity converts a string to a Sensitivity.
func ParseSensitivity(s string) (Sensitivity, error) {
	switch Sensitivity(strings.ToLower(s)) {
	case SensitivityLow:
		return SensitivityLow, nil
	case SensitivityMedium:
		return SensitivityMedium, nil
	case SensitivityHigh:
		return SensitivityHigh, nil
	}
	return "", fmt.Errorf("unknown sensitivity %q", s)
}

// Position is a format-neutral document location.
//
// Paginated documents use the 1-based page range [StartPage, EndPage].
// Archive documents use File (path within the container) plus an optional
// Fragment anchor; SpineIndex orders chapters in reading order.
type Position struct {
	StartPage int `json:"start_page,omitempty" yaml:"start_page,omitempty"`
	EndPage   int `json:"end_page,omitempty" yaml:"end_page,omitempty"`

	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	Fragment   string `json:"fragment,omitempty" yaml:"fragment,omitempty"`
	SpineIndex int    `json:"-" yaml:"-"`
}

// Paginated reports whether the position refers to a page range.
func (p Position) Paginated() bool {
	return p.File == ""
}

// Location returns a human-readable location reference.
func (p Position) Location() string {
	if p.Paginated() {
		return fmt.Sprintf("pages %d-%d", p.StartPage, p.EndPage)
	}
	if p.Fragment != "" {
		return p.File + "#" + p.Fragment
	}
	return p.File
}

// Chapter represents one detected chapter.
type Chapter struct {
	Title      string          `json:"title" yaml:"title"`
	Position   Position        `json:"position" yaml:"position"`
	Level      int             `json:"level" yaml:"level"`
	Method     DetectionMethod `json:"method" yaml:"method"`
	Confidence float64         `json:"confidence" yaml:"confidence"`
}

// PageCount returns the number of pages in a paginated chapter, 0 otherwise.
func (c Chapter) PageCount() int {
	if !c.Position.Paginated() {
		return 0
	}
	return c.Position.EndPage - c.Position.StartPage + 1
}

func (c Chapter) String() string {
	return fmt.Sprintf("%s (%s)", c.Title, c.Position.Location())
}

// DetectionResult is the outcome of one detect call. It is immutable once
// returned; chapters are ordered by position and pairwise non-overlapping.
type DetectionResult struct {
	Chapters []Chapter `json:"chapters" yaml:"chapters"`
	// StrategyUsed names the stage that produced the chapters,
	// suffixed with " (fallback)" when a later stage in the chain did.
	StrategyUsed string `json:"strategy_used" yaml:"strategy_used"`
	// TotalUnits is the page count for paginated documents or the number
	// of content files for archive documents.
	TotalUnits int `json:"total_units" yaml:"total_units"`
	// HasNativeStructure reports whether the document exposes an outline.
	HasNativeStructure bool `json:"has_native_structure" yaml:"has_native_structure"`
}

// ChapterCount returns the number of detected chapters.
func (r *DetectionResult) ChapterCount() int {
	return len(r.Chapters)
}

// LowConfidence returns the chapters scoring below the given threshold.
func (r *DetectionResult) LowConfidence(threshold float64) []Chapter {
	var out []Chapter
	for _, ch := range r.Chapters {
		if ch.Confidence < threshold {
			out = append(out, ch)
		}
	}
	return out
}
