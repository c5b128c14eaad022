package codec

import (
	"bytes"
	"compress/flate"
	"io"
)

// deflateCodec implements respcache.Codec for raw deflate via the
// standard library, the same flate package compress/gzip itself is
// layered on.
type deflateCodec struct{}

func newDeflateCodec() *deflateCodec {
	return &deflateCodec{}
}

func (c *deflateCodec) Encode(identity []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
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

func (c *deflateCodec) Decode(encoded []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(encoded))
	defer r.Close()
	return io.ReadAll(r)
}
