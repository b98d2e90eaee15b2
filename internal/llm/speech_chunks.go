package llm

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// speechChunks splits text into pieces of at most limit characters (runes, as
// counted by the speech endpoint) for synthesis. Pieces end on sentence
// boundaries (UAX #29, which treats 。！？ as terminators) and blank lines
// between chapters are kept with the sentence before them. A single sentence
// longer than limit is cut on grapheme boundaries so combining marks stay with
// their base character.
func speechChunks(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		currentLen = 0
	}

	state := -1
	rest := text
	for rest != "" {
		var sentence string
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		n := utf8.RuneCountInString(sentence)

		if currentLen+n <= limit {
			current.WriteString(sentence)
			currentLen += n
			continue
		}
		flush()
		if n <= limit {
			current.WriteString(sentence)
			currentLen = n
			continue
		}
		chunks = append(chunks, splitGraphemes(sentence, limit)...)
	}
	flush()
	return chunks
}

// splitGraphemes cuts s into runs of at most limit runes without splitting a
// grapheme cluster. A cluster longer than limit on its own becomes its own piece.
func splitGraphemes(s string, limit int) []string {
	var pieces []string
	var b strings.Builder
	count := 0
	emit := func() {
		if p := strings.TrimSpace(b.String()); p != "" {
			pieces = append(pieces, p)
		}
		b.Reset()
		count = 0
	}

	state := -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		n := utf8.RuneCountInString(cluster)
		if count > 0 && count+n > limit {
			emit()
		}
		b.WriteString(cluster)
		count += n
	}
	emit()
	return pieces
}
