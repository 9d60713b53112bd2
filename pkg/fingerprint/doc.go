// Package fingerprint turns source text into stable digests.
//
// Two digests are produced. Fingerprint hashes the raw bytes and is used where
// exactness matters, such as deriving entry ids from a finding's content.
// SimilarityFingerprint hashes a normalized form of the text in which
// comments and whitespace differences are erased, so that reformatting or
// re-commenting a file does not change its cache key.
//
// Normalization is deliberately language-agnostic and lossy. It knows about
// /* */ block comments and // and # line comments and nothing else; a '#'
// or '//' inside a string literal is treated as a comment too.
package fingerprint
