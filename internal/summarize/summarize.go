// Package summarize reduces reference text to a character budget before it is
// embedded in a generation prompt. The reduction keeps the first paragraph,
// a bounded evenly-spaced sample of middle paragraphs, and the last
// paragraph, falling back to hard truncation only when that still overflows.
package summarize

import (
	"strings"
	"unicode/utf8"
)

const maxMiddleSamples = 5

// Summarize returns text reduced to at most maxChars bytes. Text already
// within budget is returned unchanged. Deterministic and side-effect free.
func Summarize(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}

	paragraphs := strings.Split(text, "\n\n")
	kept := []string{paragraphs[0]}

	if len(paragraphs) > 3 {
		sampleCount := maxMiddleSamples
		if middle := len(paragraphs) - 2; middle < sampleCount {
			sampleCount = middle
		}
		stride := len(paragraphs) / (sampleCount + 1)
		if stride < 1 {
			stride = 1
		}
		lastIdx := 0
		for i := 1; i <= sampleCount; i++ {
			idx := i * stride
			if idx <= lastIdx || idx >= len(paragraphs)-1 {
				continue
			}
			kept = append(kept, paragraphs[idx])
			lastIdx = idx
		}
	}

	last := paragraphs[len(paragraphs)-1]
	if len(paragraphs) > 1 && last != paragraphs[0] {
		kept = append(kept, last)
	}

	out := strings.Join(kept, "\n\n")
	if len(out) > maxChars {
		out = truncate(out, maxChars)
	}
	return out
}

func truncate(s string, maxChars int) string {
	if maxChars < 0 {
		maxChars = 0
	}
	if maxChars <= 3 {
		return cutAtRune(s, maxChars)
	}
	return cutAtRune(s, maxChars-3) + "..."
}

// cutAtRune cuts s to at most n bytes, backing up so a multi-byte rune is
// never split.
func cutAtRune(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
