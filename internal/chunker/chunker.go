package chunker

import (
	"fmt"
	"iter"

	"github.com/dgallion1/docdistill/internal/document"
)

// Config controls the sliding window.
type Config struct {
	Window  int // Segments per chunk (pages or words).
	Overlap int // Segments shared between consecutive chunks.
}

// DefaultPageConfig is the default window for page-mode extraction.
func DefaultPageConfig() Config {
	return Config{Window: 3, Overlap: 1}
}

// DefaultWordConfig is the default window for word-mode extraction.
func DefaultWordConfig() Config {
	return Config{Window: 2500, Overlap: 100}
}

// Validate rejects configurations that cannot produce a well-formed window
// sequence. Overlap >= Window is legal; the step is clamped to 1.
func (c Config) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("chunker: window must be at least 1, got %d", c.Window)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("chunker: overlap must not be negative, got %d", c.Overlap)
	}
	return nil
}

func (c Config) step() int {
	s := c.Window - c.Overlap
	if s < 1 {
		s = 1
	}
	return s
}

// Chunk is one overlapping window of source segments combined into a single
// text blob. Start and End are 1-based inclusive segment indices.
type Chunk struct {
	Text  string
	Start int
	End   int
}

// Chunks returns a lazy ordered sequence of overlapping windows covering src.
// The sequence is finite and fully determined by (src.Len(), cfg): starting
// at segment 1, each window spans [start, min(start+Window-1, total)] and the
// start advances by max(1, Window-Overlap). The window that reaches the final
// segment is the last one emitted. An empty source yields an empty sequence.
func Chunks(src document.Source, cfg Config) (iter.Seq[Chunk], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	total := src.Len()
	step := cfg.step()

	return func(yield func(Chunk) bool) {
		for start := 1; start <= total; start += step {
			end := start + cfg.Window - 1
			if end > total {
				end = total
			}
			if !yield(Chunk{Text: src.Slice(start, end), Start: start, End: end}) {
				return
			}
			if end == total {
				return
			}
		}
	}, nil
}
