package services

import (
	"strings"
	"unicode/utf8"
)

// TextChuncker splits extracted CV text along paragraph and sentence
// boundaries. The analyzer uses it to excerpt oversized CVs down to the
// prompt budget without cutting words in half.
type TextChuncker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
	Excerpt(text string, budget int) string
}

type textChunker struct{}

func NewTextChunker() TextChuncker {
	return &textChunker{}
}

type textPiece struct {
	text string
	sep  string
}

// ChunkText implements TextChuncker. Paragraphs are kept whole when they fit;
// longer ones fall back to sentence splitting.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var pieces []textPiece
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= maxChunkSize {
			pieces = append(pieces, textPiece{text: para, sep: "\n\n"})
			continue
		}
		for _, sentence := range splitSentences(para) {
			pieces = append(pieces, textPiece{text: sentence, sep: " "})
		}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		chunks = append(chunks, current.String())
		current.Reset()
		if overlap > 0 {
			tail := lastRunes(chunks[len(chunks)-1], overlap)
			if tail != "" {
				current.WriteString(tail)
				current.WriteString(" ")
			}
		}
	}

	for _, p := range pieces {
		if current.Len() > 0 && current.Len()+len(p.sep)+len(p.text) > maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(p.sep)
		}
		current.WriteString(p.text)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// Excerpt returns text shortened to roughly budget characters, dropping whole
// trailing chunks rather than cutting mid-sentence. Texts already inside the
// budget come back untouched.
func (tc *textChunker) Excerpt(text string, budget int) string {
	if budget <= 0 || utf8.RuneCountInString(text) <= budget {
		return text
	}

	var b strings.Builder
	for _, chunk := range tc.ChunkText(text, 1000, 0) {
		sep := 0
		if b.Len() > 0 {
			sep = 2
		}
		if b.Len()+sep+len(chunk) > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(chunk)
	}
	if b.Len() == 0 {
		// Single chunk bigger than the whole budget: hard cut.
		return string([]rune(text)[:budget])
	}
	b.WriteString("\n\n[CV truncated]")
	return b.String()
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var sentences []string
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
