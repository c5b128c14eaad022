package codec

import (
	"bytes"
	"compress/gzip"
	"io"
)

// gzipCodec implements respcache.Codec for gzip, the same stdlib
// package the teacher's wrapper/compresscache GzipCache uses directly.
type gzipCodec struct{}

func newGzipCodec() *gzipCodec {
	return &gzipCodec{}
}

func (c *gzipCodec) Encode(identity []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(identity); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *gzipCodec) Decode(encoded []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
