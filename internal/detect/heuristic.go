package detect

import (
	"regexp"
	"strings"

	"chapterize/internal/types"
)

// Thresholds holds the per-sensitivity tunables for heading analysis.
type Thresholds struct {
	// FontSizeRatio is the multiplier over the unit's average font size a
	// run must reach to qualify as a heading by size alone.
	FontSizeRatio float64
	// MinConfidence is the acceptance floor for scored candidates.
	MinConfidence float64
}

var sensitivityThresholds = map[types.Sensitivity]Thresholds{
	types.SensitivityLow:    {FontSizeRatio: 1.5, MinConfidence: 0.8},
	types.SensitivityMedium: {FontSizeRatio: 1.3, MinConfidence: 0.6},
	types.SensitivityHigh:   {FontSizeRatio: 1.2, MinConfidence: 0.4},
}

// ThresholdsFor returns the tunables for a sensitivity preset.
// Unknown values get the medium preset.
func ThresholdsFor(s types.Sensitivity) Thresholds {
	if t, ok := sensitivityThresholds[s]; ok {
		return t
	}
	return sensitivityThresholds[types.SensitivityMedium]
}

// HeadingTagDepths returns the markup heading depths (h1..hN) scanned for a
// sensitivity preset, and is used by archive formats where no absolute font
// metric is available.
func HeadingTagDepths(s types.Sensitivity) []int {
	switch s {
	case types.SensitivityLow:
		return []int{1}
	case types.SensitivityHigh:
		return []int{1, 2, 3}
	default:
		return []int{1, 2}
	}
}

// TagConfidence returns the fixed confidence assigned to a heading found at
// the given markup depth.
func TagConfidence(depth int) float64 {
	switch depth {
	case 1:
		return 1.0
	case 2:
		return 0.7
	default:
		return 0.5
	}
}

var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Chapter\s+(\d+|[IVXLCDM]+)[\s:.-]*(.*)$`),
	regexp.MustCompile(`(?i)^Part\s+(\d+|[IVXLCDM]+)[\s:.-]*(.*)$`),
	regexp.MustCompile(`^(\d+)\.\s+(.+)$`),
}

// MatchesChapterPattern reports whether text looks like an ordinal chapter
// heading ("Chapter 4", "Part II", "3. Methods").
func MatchesChapterPattern(text string) bool {
	for _, re := range chapterPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Score computes the confidence for a potential heading, clamped to [0, 1].
//
// Base 0.5; +0.4 for an ordinal chapter pattern; +0.1 for size >= 16pt or
// +0.05 for size in [14, 16); -0.2 for more than 10 words or -0.1 for 7-10.
func Score(text string, fontSize float64) float64 {
	confidence := 0.5

	if MatchesChapterPattern(text) {
		confidence += 0.4
	}

	if fontSize >= 16 {
		confidence += 0.1
	} else if fontSize >= 14 {
		confidence += 0.05
	}

	words := len(strings.Fields(text))
	if words > 10 {
		confidence -= 0.2
	} else if words > 6 {
		confidence -= 0.1
	}

	if confidence > 1.0 {
		return 1.0
	}
	if confidence < 0.0 {
		return 0.0
	}
	return confidence
}

// Run is one text run within a content unit, with its typographic size.
type Run struct {
	Text string
	Size float64
}

// Candidate is a heading candidate emitted by AnalyzeUnits.
type Candidate struct {
	// Unit is the 0-based index of the content unit the heading was found in.
	Unit       int
	Title      string
	Confidence float64
}

// AnalyzeUnits scans ordered content units for chapter headings using
// pattern matching and relative-typography analysis. At most one candidate
// is emitted per unit: the first run that qualifies and clears the
// confidence floor. Runs that qualify but score below the floor do not
// stop the scan.
func AnalyzeUnits(units [][]Run, sensitivity types.Sensitivity) []Candidate {
	th := ThresholdsFor(sensitivity)

	var candidates []Candidate
	for i, runs := range units {
		avg := averageSize(runs)
		for _, r := range runs {
			text := strings.TrimSpace(r.Text)
			if text == "" {
				continue
			}
			if !qualifies(text, r.Size, avg, th.FontSizeRatio) {
				continue
			}
			confidence := Score(text, r.Size)
			if confidence < th.MinConfidence {
				continue
			}
			candidates = append(candidates, Candidate{
				Unit:       i,
				Title:      text,
				Confidence: confidence,
			})
			break
		}
	}
	return candidates
}

// qualifies applies the two heading tests in order: an ordinal pattern match
// wins regardless of size; otherwise the run must be large relative to the
// unit average and short enough to be a plausible title.
func qualifies(text string, size, avgSize, ratio float64) bool {
	if MatchesChapterPattern(text) {
		return true
	}
	if avgSize > 0 && size >= avgSize*ratio {
		return len(strings.Fields(text)) <= 10
	}
	return false
}

func averageSize(runs []Run) float64 {
	var sum float64
	var n int
	for _, r := range runs {
		if r.Size > 0 {
			sum += r.Size
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
