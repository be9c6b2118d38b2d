package chunker

import "elements/internal/domain"

// WindowChunker splits text into fixed-size rune windows, preferring
// to break just after a sentence terminator or newline when one falls
// in the second half of the window. Chunks cover the input exactly:
// with zero overlap, concatenating chunk texts reconstructs it.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

func NewWindowChunker(chunkSize, overlap int) *WindowChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &WindowChunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk produces an ordered, deterministic sequence of chunks. Empty
// text yields zero chunks; text shorter than one window yields one.
func (c *WindowChunker) Chunk(text string) []domain.Chunk {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var chunks []domain.Chunk
	start := 0
	idx := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakPoint(runes, start, end)
		}
		chunks = append(chunks, domain.Chunk{
			Text:         string(runes[start:end]),
			Index:        idx,
			SourceOffset: start,
		})
		if end == len(runes) {
			break
		}
		// The boundary break can shrink a window below the overlap,
		// so clamp the next start to keep strictly advancing.
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
		idx++
	}
	return chunks
}

// breakPoint moves the window end back to just past the last sentence
// terminator or newline, but only if that keeps more than half the
// window; otherwise the hard boundary stands.
func breakPoint(runes []rune, start, end int) int {
	for i := end - 1; i > start+(end-start)/2; i-- {
		switch runes[i-1] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	return end
}
