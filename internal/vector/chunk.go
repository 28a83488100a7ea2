package vector

import "strings"

// Chunking defaults, in characters.
const (
	DefaultChunkSize    = 600
	DefaultChunkOverlap = 100
)

// ChunkMarkdown splits markdown text into overlapping chunks of roughly
// size characters. Paragraph boundaries are respected where possible;
// paragraphs longer than size are split with a sliding window carrying
// overlap characters between windows.
func ChunkMarkdown(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}

	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		c := strings.TrimSpace(current.String())
		if c != "" {
			chunks = append(chunks, c)
		}
		current.Reset()
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len([]rune(para)) > size {
			flush()
			chunks = append(chunks, slideWindow(para, size, overlap)...)
			continue
		}

		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(para))+2 > size {
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

// slideWindow cuts text into size-character windows stepping by
// size-overlap characters.
func slideWindow(text string, size, overlap int) []string {
	runes := []rune(text)
	step := size - overlap

	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
