package codec

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
)

// defaultBrotliLevel matches the teacher's wrapper/compresscache
// BrotliConfig default.
const defaultBrotliLevel = 6

// brotliCodec implements respcache.Codec for brotli via
// github.com/andybalholm/brotli, the same library the teacher's
// wrapper/compresscache BrotliCache wraps.
type brotliCodec struct {
	level int
}

func newBrotliCodec(level int) *brotliCodec {
	return &brotliCodec{level: level}
}

func (c *brotliCodec) Encode(identity []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, c.level)
	if _, err := w.Write(identity); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *brotliCodec) Decode(encoded []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(encoded))
	return io.ReadAll(r)
}
