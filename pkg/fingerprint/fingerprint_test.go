package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"collapse", "a  =\n\n\tb", "a = b"},
		{"line comment slashes", "x := 1 // set x\ny := 2", "x := 1 y := 2"},
		{"line comment hash", "x = 1  # set x\ny = 2", "x = 1 y = 2"},
		{"block comment", "a /* one\ntwo */ b", "a b"},
		{"two block comments", "/* a */x/* b */y", "x y"},
		{"unterminated block", "a /* never closed\nb", "a /* never closed b"},
		{"closer before opener", "a */ b /* c", "a */ b /* c"},
		{"comment-only line", "// header\ncode()", "code()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSimilarityFingerprintStableAcrossFormatting(t *testing.T) {
	base := "func add(a, b int) int {\n\treturn a + b\n}"
	variants := []string{
		"func add(a, b int) int { return a + b }",
		"\n\nfunc add(a, b int) int {\n    return a + b\n}\n",
		"// add sums two ints\nfunc add(a, b int) int {\n\treturn a + b // sum\n}",
		"/* doc\n * block\n */\nfunc add(a, b int) int {\n\treturn a + b\n}",
	}
	want := SimilarityFingerprint(base)
	for _, v := range variants {
		assert.Equal(t, want, SimilarityFingerprint(v), "variant %q", v)
	}

	assert.NotEqual(t, want, SimilarityFingerprint("func add(a, b int) int { return a - b }"))
}

func TestFingerprint(t *testing.T) {
	h1 := Fingerprint("hello")
	h2 := Fingerprint("hello")
	h3 := Fingerprint("hello ")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3, "raw fingerprint must be exact")
	assert.Len(t, h1, 32)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", h1)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Fingerprint(""))
}
