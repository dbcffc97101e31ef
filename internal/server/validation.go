// validation.go - Client filename sanitization.
//
// SanitizeFilename is the only way a client-supplied name reaches the
// storage directory, so everything it returns must be a plain basename.
package server

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxNameLength is the longest basename most filesystems accept.
const maxNameLength = 255

// reservedNames are device names Windows refuses to use as file stems.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// toASCII decomposes accented characters and drops whatever is left outside ASCII.
func toASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	return out
}

func allowedNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '.' || r == '_' || r == '-'
}

// SanitizeFilename turns a client-supplied name into a safe basename made of
// ASCII letters, digits, '.', '_' and '-'. Directory components are
// flattened, whitespace runs become '_', and leading or trailing '.' and '_'
// are removed so the result can never be "." or ".." or a dotfile.
func SanitizeFilename(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyName
	}

	name := toASCII(raw)

	// Separators of either flavour become word breaks.
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	name = strings.Map(func(r rune) rune {
		if allowedNameRune(r) {
			return r
		}
		return -1
	}, name)

	name = strings.Trim(name, "._")
	if name == "" {
		return "", ErrInvalidName
	}

	// Windows treats "CON.tar.gz" as the device too.
	base, _, _ := strings.Cut(name, ".")
	if reservedNames[strings.ToUpper(base)] {
		name = "_" + name
	}

	if len(name) > maxNameLength {
		name = truncateName(name, maxNameLength)
	}
	return name, nil
}

// truncateName shortens name to at most limit bytes, keeping the extension
// when it fits. name must be ASCII.
func truncateName(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) >= limit {
		return name[:limit]
	}
	stem := strings.TrimSuffix(name, ext)
	return stem[:limit-len(ext)] + ext
}
