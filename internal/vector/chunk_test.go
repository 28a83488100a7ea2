package vector

import (
	"strings"
	"testing"
)

func TestChunkMarkdown_ParagraphPacking(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."
	chunks := ChunkMarkdown(text, 40, 0)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "First paragraph.") || !strings.Contains(chunks[0], "Second paragraph.") {
		t.Errorf("expected first two paragraphs packed together, got %q", chunks[0])
	}
	if chunks[1] != "Third paragraph." {
		t.Errorf("expected third paragraph alone, got %q", chunks[1])
	}
}

func TestChunkMarkdown_LongParagraphSlidesWithOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 20) // 200 chars, no paragraph breaks
	chunks := ChunkMarkdown(text, 100, 20)

	if len(chunks) < 2 {
		t.Fatalf("expected sliding-window chunks, got %d", len(chunks))
	}
	// Each window starts 80 chars after the previous, so consecutive
	// chunks share a 20-char overlap.
	tail := chunks[0][len(chunks[0])-20:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Errorf("expected 20-char overlap between windows:\n%q\n%q", chunks[0], chunks[1])
	}
}

func TestChunkMarkdown_Defaults(t *testing.T) {
	text := strings.Repeat("word ", 300) // 1500 chars
	chunks := ChunkMarkdown(text, 0, -1)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple default-size chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len([]rune(c)) > DefaultChunkSize {
			t.Errorf("chunk exceeds default size: %d chars", len([]rune(c)))
		}
	}
}

func TestChunkMarkdown_EmptyInput(t *testing.T) {
	if chunks := ChunkMarkdown("", 100, 10); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(chunks))
	}
	if chunks := ChunkMarkdown("\n\n  \n\n", 100, 10); len(chunks) != 0 {
		t.Fatalf("expected no chunks for whitespace input, got %d", len(chunks))
	}
}
