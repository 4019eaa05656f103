package retrieval

import (
	"strings"
	"unicode/utf8"
)

// SplitParagraphs cuts text on blank lines and packs paragraphs into chunks of at
// most maxChars runes. A single paragraph longer than maxChars is split on word
// boundaries.
func SplitParagraphs(text string, maxChars int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if maxChars <= 0 {
		maxChars = 1000
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) > maxChars {
			flush()
			chunks = append(chunks, splitWords(para, maxChars)...)
			continue
		}

		if current.Len() > 0 && utf8.RuneCountInString(current.String())+2+utf8.RuneCountInString(para) > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}

func splitWords(para string, maxChars int) []string {
	var chunks []string
	var current strings.Builder
	size := 0

	for _, word := range strings.Fields(para) {
		n := utf8.RuneCountInString(word)
		if size > 0 && size+1+n > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
		if size > 0 {
			current.WriteByte(' ')
			size++
		}
		current.WriteString(word)
		size += n
	}
	if size > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
