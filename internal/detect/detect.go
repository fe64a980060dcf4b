// Package detect implements chapter detection: heading analysis with
// confidence scoring, the ordered strategy chain, and boundary resolution.
package detect

import (
	"fmt"
	"log/slog"
	"sort"

	"chapterize/internal/types"
)

// Source is the format-specific view a document adapter exposes to the
// detector. Implementations return their chapters in document order.
type Source interface {
	// Outline returns chapters from the document's native outline filtered
	// to the requested hierarchy level (level <= 0 disables filtering).
	// The boolean reports whether the document exposes an outline at all;
	// false is not an error, it signals "try the next strategy".
	Outline(level int) ([]types.Chapter, bool, error)

	// Headings returns chapters found by heading analysis of the content.
	Headings(sensitivity types.Sensitivity) ([]types.Chapter, error)

	// Manifest returns one chapter per content unit in reading order, or
	// nil for formats without a manifest.
	Manifest() ([]types.Chapter, error)

	// TotalUnits is the page count or content-file count.
	TotalUnits() int

	// WholeDocument returns a single chapter spanning the entire document.
	WholeDocument() types.Chapter

	// Paginated reports whether positions are page ranges.
	Paginated() bool
}

// Options configure one detection run.
type Options struct {
	Strategy    types.Strategy
	Sensitivity types.Sensitivity
	// Level is the outline hierarchy level to split by (1 = top-level);
	// values <= 0 keep every level.
	Level  int
	Logger *slog.Logger
}

// Detector runs the detection strategy chain over a Source.
type Detector struct {
	src  Source
	opts Options
	log  *slog.Logger
}

// New creates a Detector for the given source.
func New(src Source, opts Options) *Detector {
	if opts.Strategy == "" {
		opts.Strategy = types.StrategyHybrid
	}
	if opts.Sensitivity == "" {
		opts.Sensitivity = types.SensitivityMedium
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Detector{src: src, opts: opts, log: log}
}

// attempt is one stage of the detection chain.
type attempt struct {
	name string
	run  func() ([]types.Chapter, error)
}

// Detect runs the configured strategy and returns a result that is never
// empty: if no stage yields chapters, a single whole-document chapter is
// synthesized.
func (d *Detector) Detect() (*types.DetectionResult, error) {
	chain, err := d.chain()
	if err != nil {
		return nil, err
	}

	_, hasOutline, err := d.src.Outline(0)
	if err != nil {
		return nil, fmt.Errorf("failed to probe document outline: %w", err)
	}

	var chapters []types.Chapter
	strategyUsed := ""
	for i, a := range chain {
		chs, err := a.run()
		if err != nil {
			return nil, fmt.Errorf("%s detection failed: %w", a.name, err)
		}
		if len(chs) == 0 {
			d.log.Debug("strategy yielded no chapters", "strategy", a.name)
			continue
		}
		chapters = chs
		strategyUsed = a.name
		if i > 0 {
			strategyUsed += " (fallback)"
		}
		break
	}

	if len(chapters) > 0 {
		sort.SliceStable(chapters, func(i, j int) bool {
			return positionLess(chapters[i].Position, chapters[j].Position)
		})
		if d.src.Paginated() {
			var droppedChapters []types.Chapter
			chapters, droppedChapters = ResolveRanges(chapters, d.src.TotalUnits())
			for _, ch := range droppedChapters {
				d.log.Warn("dropping chapter with empty page range",
					"title", ch.Title, "start", ch.Position.StartPage, "end", ch.Position.EndPage)
			}
		}
	}

	// Final rule: never hand back an empty sequence.
	if len(chapters) == 0 {
		chapters = []types.Chapter{d.src.WholeDocument()}
		strategyUsed = "fallback"
		d.log.Info("no chapters detected, using whole-document fallback")
	}

	return &types.DetectionResult{
		Chapters:           chapters,
		StrategyUsed:       strategyUsed,
		TotalUnits:         d.src.TotalUnits(),
		HasNativeStructure: hasOutline,
	}, nil
}

// chain builds the ordered (name, attempt) sequence for the strategy.
func (d *Detector) chain() ([]attempt, error) {
	native := attempt{"native", func() ([]types.Chapter, error) {
		chs, _, err := d.src.Outline(d.opts.Level)
		return chs, err
	}}
	structural := attempt{"structural", func() ([]types.Chapter, error) {
		return d.src.Headings(d.opts.Sensitivity)
	}}
	manifest := attempt{"manifest", func() ([]types.Chapter, error) {
		return d.src.Manifest()
	}}

	switch d.opts.Strategy {
	case types.StrategyNative:
		return []attempt{native}, nil
	case types.StrategyStructural:
		return []attempt{structural}, nil
	case types.StrategyManifest:
		return []attempt{manifest}, nil
	case types.StrategyHybrid:
		return []attempt{native, structural, manifest}, nil
	}
	return nil, fmt.Errorf("unknown detection strategy %q", d.opts.Strategy)
}

func positionLess(a, b types.Position) bool {
	if a.Paginated() {
		return a.StartPage < b.StartPage
	}
	return a.SpineIndex < b.SpineIndex
}
