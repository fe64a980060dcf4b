package detect

import "chapterize/internal/types"

// ResolveRanges converts ordered chapter start pages into closed,
// non-overlapping page ranges: each chapter ends one page before the next
// begins, and the last runs to the end of the document. Chapters whose
// resolved range is degenerate (start > end, from duplicate or
// non-monotonic outline destinations) are returned separately so callers
// can surface them instead of silently losing content.
func ResolveRanges(chapters []types.Chapter, totalPages int) (resolved, dropped []types.Chapter) {
	resolved = make([]types.Chapter, 0, len(chapters))
	for i, ch := range chapters {
		start := ch.Position.StartPage
		end := totalPages
		if i+1 < len(chapters) {
			end = chapters[i+1].Position.StartPage - 1
		}
		if start > end {
			ch.Position.EndPage = end
			dropped = append(dropped, ch)
			continue
		}
		ch.Position.EndPage = end
		resolved = append(resolved, ch)
	}
	return resolved, dropped
}
