package merge

const (
	// DefaultChunkSize is the largest chunk Split produces, in runes.
	DefaultChunkSize = 4000
	// DefaultChunkOverlap is how many runes consecutive chunks share.
	DefaultChunkOverlap = 500
)

// Split cuts text into chunks of at most size runes for separate
// analysis. Consecutive chunks share overlap runes. Cuts prefer a blank
// line, then a line break, then a space. Text shorter than size is
// returned as the only chunk.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 8
	}

	runes := []rune(text)
	if len(runes) < size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		cut := boundary(runes, start+overlap+1, end)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - overlap
	}
}

// boundary picks the cut point in (lo, hi], just after the best separator,
// or hi when there is none.
func boundary(runes []rune, lo, hi int) int {
	for i := hi - 1; i > lo; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for _, sep := range []rune{'\n', ' '} {
		for i := hi - 1; i >= lo; i-- {
			if runes[i] == sep {
				return i + 1
			}
		}
	}
	return hi
}
