package chunker

import "strings"

// Config controls chunking behavior.
type Config struct {
	WindowSize int // Maximum words per chunk.
	Overlap    int // Words shared by consecutive chunks.
}

// DefaultConfig returns the window used for extractive QA.
func DefaultConfig() Config {
	return Config{
		WindowSize: 400,
		Overlap:    50,
	}
}

// normalize fills in defaults for a zero or invalid window. Overlap of zero
// is valid and is kept.
func (c Config) normalize() Config {
	if c.WindowSize <= 0 {
		c.WindowSize = DefaultConfig().WindowSize
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	return c
}

// Step is the number of words the window advances between chunks. It is
// never less than one, even when Overlap >= WindowSize.
func (c Config) Step() int {
	c = c.normalize()
	step := c.WindowSize - c.Overlap
	if step < 1 {
		step = 1
	}
	return step
}

// Split breaks text into overlapping windows of whitespace-delimited words.
// Words are rejoined with single spaces. Empty text yields no chunks. The
// last chunk is the first window that reaches the final word, so no trailing
// chunk is ever a subset of its predecessor.
func Split(text string, cfg Config) []string {
	return SplitWords(strings.Fields(text), cfg)
}

// SplitWords is Split over an already tokenized word list.
func SplitWords(words []string, cfg Config) []string {
	cfg = cfg.normalize()
	if len(words) == 0 {
		return nil
	}

	step := cfg.Step()
	chunks := make([]string, 0, Count(len(words), cfg))
	for start := 0; start < len(words); start += step {
		end := min(len(words), start+cfg.WindowSize)
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// Count returns how many chunks Split would produce for n words.
func Count(n int, cfg Config) int {
	if n <= 0 {
		return 0
	}
	cfg = cfg.normalize()
	if n <= cfg.WindowSize {
		return 1
	}
	step := cfg.Step()
	return 1 + (n-cfg.WindowSize+step-1)/step
}
