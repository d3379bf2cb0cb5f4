package util

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidFileName = errors.New("invalid file name")

	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// SecureFileName reduces a client-supplied file name to a flat ASCII name that is
// safe to use as a path component. Accents are folded, separators become word breaks,
// anything outside [A-Za-z0-9_.-] is dropped and runs of whitespace become "_".
func SecureFileName(name string) (string, error) {
	decomposed := norm.NFKD.String(name)

	var ascii strings.Builder
	ascii.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case r == '/' || r == '\\':
			ascii.WriteByte(' ')
		case r > unicode.MaxASCII:
			// combining marks and non-latin runes are dropped
		default:
			ascii.WriteRune(r)
		}
	}

	words := strings.Fields(ascii.String())
	joined := strings.Join(words, "_")
	cleaned := unsafeFileChars.ReplaceAllString(joined, "")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "", ErrInvalidFileName
	}
	return cleaned, nil
}

// FileExtension returns the lower-cased extension without the leading dot.
func FileExtension(name string) string {
	ext := filepath.Ext(strings.TrimSpace(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
