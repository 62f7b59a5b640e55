// Package hashutil implements the Hash & File Validator (§4.1): SHA1 of a
// file, and a size+hash validity predicate checked cheap-before-expensive.
package hashutil

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
)

// SHA1 streams path through a SHA1 engine and returns its hex digest.
func SHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Validate returns true iff path exists, its byte length equals size when
// size >= 0, and its SHA1 equals sha1Hex when sha1Hex is non-empty.
func Validate(path string, size int64, sha1Hex string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if size >= 0 && info.Size() != size {
		return false
	}

	if sha1Hex == "" {
		return true
	}

	actual, err := SHA1(path)
	if err != nil {
		return false
	}
	return actual == sha1Hex
}
