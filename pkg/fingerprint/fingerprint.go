package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Fingerprint returns the hex MD5 digest of text.
func Fingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// SimilarityFingerprint returns the fingerprint of the normalized text.
func SimilarityFingerprint(text string) string {
	return Fingerprint(Normalize(text))
}

// Normalize strips comments and collapses whitespace.
func Normalize(text string) string {
	s := strings.TrimSpace(text)
	s = stripBlockComments(s)
	s = stripLineComments(s)
	return strings.Join(strings.Fields(s), " ")
}

// stripBlockComments removes /* ... */ spans. An opener without a closer
// after it ends the scan and leaves the remainder untouched.
func stripBlockComments(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			break
		}
		end := strings.Index(s[start+2:], "*/")
		if end < 0 {
			break
		}
		b.WriteString(s[:start])
		b.WriteByte(' ')
		s = s[start+2+end+2:]
	}
	b.WriteString(s)
	return b.String()
}

func stripLineComments(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
