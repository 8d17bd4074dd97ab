package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinSentenceLength is the shortest candidate sentence, in runes and
// including the closing period, that Segment keeps.
const MinSentenceLength = 10

// MisdecodedTimes is the multiplication sign "×" whose UTF-8 bytes were read
// back as Windows-1252 (0xC3 0x97). It shows up in image size captions.
const MisdecodedTimes = "\u00c3\u2014"

// Segment splits s into sentences and writes each kept sentence on its own
// line, terminated by '\n'.
//
// Newlines in the input are read as spaces. A sentence ends at every '.';
// candidates shorter than MinSentenceLength runes are dropped, as is any text
// after the final period. Sentences that look like figure captions are
// filtered out, see IsCaption.
func Segment(s string) string {
	var out strings.Builder
	for _, sentence := range Sentences(s) {
		if IsCaption(sentence) {
			continue
		}
		out.WriteString(sentence)
		out.WriteByte('\n')
	}
	return out.String()
}

// Sentences returns the period-terminated candidates of s that are at least
// MinSentenceLength runes long, before caption filtering. Leading spaces are
// part of the sentence.
func Sentences(s string) []string {
	var (
		sentences []string
		current   strings.Builder
		length    int
	)

	for _, r := range s {
		if r == '\n' {
			r = ' '
		}
		current.WriteRune(r)
		length++

		if r != '.' {
			continue
		}
		if length >= MinSentenceLength {
			sentences = append(sentences, current.String())
		}
		current.Reset()
		length = 0
	}
	return sentences
}

// IsCaption reports whether a sentence should be excluded from the corpus:
// it starts with a numeric rune or contains MisdecodedTimes.
func IsCaption(sentence string) bool {
	first, _ := utf8.DecodeRuneInString(sentence)
	if unicode.IsNumber(first) {
		return true
	}
	return strings.Contains(sentence, MisdecodedTimes)
}
