package server

import (
	"path/filepath"
	"strconv"
	"strings"
)

// candidateName returns the n-th name tried for safe: safe itself for n == 0,
// otherwise "stem_n.ext". If the suffix would push the result past
// maxNameLength the stem is shortened first, down to one byte, and then the
// extension.
func candidateName(safe string, n int) string {
	if n == 0 {
		return safe
	}
	ext := filepath.Ext(safe)
	stem := strings.TrimSuffix(safe, ext)
	suffix := "_" + strconv.Itoa(n)

	if over := len(stem) + len(suffix) + len(ext) - maxNameLength; over > 0 {
		cut := min(over, max(len(stem)-1, 0))
		stem = stem[:len(stem)-cut]
		over -= cut
		if over > 0 {
			ext = strings.TrimRight(ext[:max(len(ext)-over, 0)], ".")
		}
	}
	return stem + suffix + ext
}

// ResolveCollision returns the first of safe, stem_1.ext, stem_2.ext, ...
// for which exists reports false. The answer is only as good as the moment
// exists was called; callers that write must still create exclusively.
func ResolveCollision(safe string, exists func(candidate string) bool) string {
	name, _ := resolveFrom(safe, 0, exists)
	return name
}

// resolveFrom is ResolveCollision starting at suffix start. It also returns
// the suffix that produced the name so a caller losing a race can resume.
func resolveFrom(safe string, start int, exists func(candidate string) bool) (string, int) {
	for n := start; ; n++ {
		candidate := candidateName(safe, n)
		if !exists(candidate) {
			return candidate, n
		}
	}
}
