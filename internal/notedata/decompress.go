// Package notedata decodes the compressed binary blobs that hold note
// content: decompression, wire-format parsing, and text reconstruction.
package notedata

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// ErrDecompress reports that a blob matched neither supported framing.
var ErrDecompress = errors.New("blob is neither gzip nor raw deflate")

// Decompress inflates a note blob. Blobs are normally gzip-framed; some
// databases hold raw deflate streams instead, so that is tried second.
// All-or-nothing: a truncated stream is a failure, never partial output.
func Decompress(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty blob: %w", ErrDecompress)
	}

	if gz, err := gzip.NewReader(bytes.NewReader(blob)); err == nil {
		out, err := io.ReadAll(gz)
		if cerr := gz.Close(); err == nil && cerr == nil {
			return out, nil
		}
	}

	fr := flate.NewReader(bytes.NewReader(blob))
	defer fr.Close()
	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	return out, nil
}
