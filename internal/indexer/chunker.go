package indexer

import (
	"fmt"
	"strings"
)

// Chunker splits text into overlapping chunks for embedding.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewChunker creates a chunker with the given size and overlap in runes.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}

	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", ". ", " ", ""},
	}, nil
}

// Split divides text into chunks, preferring paragraph and sentence
// boundaries over hard cuts. Adjacent chunks share chunkOverlap runes.
func (c *Chunker) Split(text string) []string {
	pieces := c.split(text, c.separators)

	var chunks []string
	for _, piece := range pieces {
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, piece)
		}
	}
	return chunks
}

func (c *Chunker) split(text string, separators []string) []string {
	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []string{text}
	}

	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var parts []string
	if separator == "" {
		// Hard cut with overlap when no separator applies.
		step := c.chunkSize - c.chunkOverlap
		for i := 0; i < len(runes); i += step {
			end := i + c.chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			parts = append(parts, string(runes[i:end]))
			if end == len(runes) {
				break
			}
		}
		return parts
	}

	// Split on the separator, then merge pieces back up to chunkSize and
	// recurse into pieces that are still too large.
	splits := strings.SplitAfter(text, separator)

	var merged []string
	var current strings.Builder
	for _, piece := range splits {
		if len([]rune(current.String()))+len([]rune(piece)) > c.chunkSize && current.Len() > 0 {
			merged = append(merged, current.String())
			current.Reset()
			// Seed the next chunk with overlap from the previous one.
			if c.chunkOverlap > 0 && len(merged) > 0 {
				prev := []rune(merged[len(merged)-1])
				start := len(prev) - c.chunkOverlap
				if start < 0 {
					start = 0
				}
				current.WriteString(string(prev[start:]))
			}
		}
		current.WriteString(piece)
	}
	if current.Len() > 0 {
		merged = append(merged, current.String())
	}

	for _, piece := range merged {
		if len([]rune(piece)) > c.chunkSize {
			parts = append(parts, c.split(piece, rest)...)
		} else {
			parts = append(parts, piece)
		}
	}
	return parts
}
