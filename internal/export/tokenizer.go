package export

import (
	"fmt"
	"io"
	"os"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding is the tokenizer encoding used for corpus token counts.
const Encoding = "cl100k_base"

// TokenCounter reports the approximate token count of a chunk of text.
// The corpus is counted chunk by chunk, so implementations must be safe to
// call repeatedly.
type TokenCounter func(text string) int

// NewTiktokenCounter loads the tiktoken encoding. The counter is optional
// everywhere it is used: a load failure means the export runs without a
// token count, never that it fails.
func NewTiktokenCounter() (TokenCounter, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", Encoding, err)
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}

// countFileChunkSize is the read granularity for token counting. Counting
// per chunk keeps memory flat on large corpora at the cost of a slightly
// approximate total across chunk boundaries.
const countFileChunkSize = 1 << 20

// CountFileTokens streams the file at path through count and sums the
// per-chunk results.
func CountFileTokens(path string, count TokenCounter) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	buf := make([]byte, countFileChunkSize)
	total := 0
	for {
		n, err := f.Read(buf)
		if n > 0 {
			total += count(string(buf[:n]))
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read corpus: %w", err)
		}
	}
}
