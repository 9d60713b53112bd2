package merge

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortText(t *testing.T) {
	got := Split("short", 100, 10)
	if len(got) != 1 || got[0] != "short" {
		t.Fatalf("Split = %q", got)
	}
}

func TestSplitBounds(t *testing.T) {
	text := strings.Repeat("word ", 300) + "\n\n" + strings.Repeat("другое слово\n", 200)
	const size, overlap = 400, 50

	chunks := Split(text, size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > size {
			t.Errorf("chunk %d has %d runes, limit %d", i, n, size)
		}
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-overlap:])
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with the last %d runes of chunk %d", i, overlap, i-1)
		}
	}
	if !strings.HasSuffix(text, chunks[len(chunks)-1]) {
		t.Error("last chunk must end the text")
	}
}

func TestSplitPrefersBoundaries(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
	chunks := Split(text, 100, 0)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if chunks[0] != strings.Repeat("a", 60)+"\n\n" {
		t.Errorf("first chunk = %q", chunks[0])
	}
}

func TestSplitWithoutSeparators(t *testing.T) {
	text := strings.Repeat("x", 25)
	chunks := Split(text, 10, 2)
	for i, c := range chunks {
		if len(c) > 10 {
			t.Errorf("chunk %d too long: %d", i, len(c))
		}
	}
	if got := strings.Join(chunks, ""); len(got) < len(text) {
		t.Errorf("chunks lost text")
	}
}

func TestSplitDefaults(t *testing.T) {
	text := strings.Repeat("line of text\n", 1000)
	chunks := Split(text, 0, -1)
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > DefaultChunkSize {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
}
