package gedcom

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Byte budgets for physical output lines. The first chunk of a value may
// fill a full line; every later chunk shares its line with a continuation
// tag, so its budget is smaller.
const (
	firstChunkBudget = 255
	contChunkBudget  = 248
)

// wrap splits an assembled record line into physical lines within the byte
// budgets. Embedded newlines become CONT lines, over-length segments are
// split at word boundaries into CONC lines, both one level below the line's
// own. Splits never land inside a multi-byte code point, and concatenating
// the chunks of a segment reproduces it exactly. The result ends with a
// newline.
func wrap(line string) string {
	level := int(line[0]-'0') + 1
	conc := "\n" + strconv.Itoa(level) + " CONC "
	cont := "\n" + strconv.Itoa(level) + " CONT "

	segments := strings.Split(line, "\n")
	if n := len(segments); n > 1 && segments[n-1] == "" {
		segments = segments[:n-1]
	}

	budget := firstChunkBudget
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		runes := []rune(segment)
		var chunks []string
		for byteLen(runes) > budget {
			index := min(budget, len(runes)-2)
			for (byteLen(runes[:index]) > budget || whitespaceAt(runes, index)) && index > 1 {
				index--
			}
			chunks = append(chunks, string(runes[:index]))
			runes = runes[index:]
			budget = contChunkBudget
		}
		chunks = append(chunks, string(runes))
		parts = append(parts, strings.Join(chunks, conc))
		budget = contChunkBudget
	}
	return strings.Join(parts, cont) + "\n"
}

func byteLen(runes []rune) int {
	n := 0
	for _, r := range runes {
		n += utf8.RuneLen(r)
	}
	return n
}

// whitespaceAt reports whether the split at index falls inside a whitespace
// run, looking at the runes on either side of the boundary.
func whitespaceAt(runes []rune, index int) bool {
	for _, i := range []int{index - 1, index} {
		if i < 0 || i >= len(runes) {
			continue
		}
		switch runes[i] {
		case ' ', '\t', '\v':
			return true
		}
	}
	return false
}
