package codec

import (
	"github.com/klauspost/compress/zstd"
)

// zstdCodec implements respcache.Codec for Zstandard via
// github.com/klauspost/compress/zstd, promoted from an indirect
// dependency in the teacher's go.mod: the closed Encoding set needs a
// zstd codec and nothing else in the example pack ships one.
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() (*zstdCodec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (c *zstdCodec) Encode(identity []byte) ([]byte, error) {
	return c.enc.EncodeAll(identity, make([]byte, 0, len(identity))), nil
}

func (c *zstdCodec) Decode(encoded []byte) ([]byte, error) {
	return c.dec.DecodeAll(encoded, nil)
}
