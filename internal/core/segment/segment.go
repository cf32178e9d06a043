// Package segment splits text into overlapping, sentence-aware chunks.
package segment

import (
	"fmt"

	"github.com/agenthands/graphrag/internal/core/model"
)

// boundaries end a sentence or line. A window is cut after the right-most one.
var boundaries = map[rune]struct{}{
	'。': {}, '\n': {}, '！': {}, '？': {}, ';': {}, '.': {}, '!': {}, '?': {},
}

// Split cuts text into chunks of at most maxSize runes. Consecutive chunks
// share up to overlap runes. Offsets in the returned chunks are rune offsets.
func Split(text string, maxSize, overlap int) ([]model.Chunk, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", maxSize, overlap)
	}

	runes := []rune(text)
	n := len(runes)
	if n <= maxSize {
		return []model.Chunk{{Index: 0, Start: 0, End: n, Text: text}}, nil
	}

	var chunks []model.Chunk
	emit := func(start, end int) {
		chunks = append(chunks, model.Chunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
	}

	start, lastEnd := 0, 0
	for start < n {
		windowEnd := start + maxSize
		if windowEnd >= n {
			emit(start, n)
			break
		}

		p := splitPoint(runes[start:windowEnd], maxSize/2)
		// a boundary cut that does not reach past the previous chunk would
		// only repeat text already sent, so cut the full window instead
		if p == -1 || start+p+1 <= lastEnd {
			emit(start, windowEnd)
			lastEnd = windowEnd
			start = windowEnd - overlap
			continue
		}

		cut := start + p + 1
		emit(start, cut)
		lastEnd = cut
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks, nil
}

// splitPoint returns the offset of the right-most boundary in window that lies
// strictly after minOffset, or -1.
func splitPoint(window []rune, minOffset int) int {
	for i := len(window) - 1; i > minOffset; i-- {
		if _, ok := boundaries[window[i]]; ok {
			return i
		}
	}
	return -1
}
