// Package codec implements the encode/decode primitives respcache
// depends on abstractly (§6 Codec contract): gzip, deflate, brotli and
// zstd, each satisfying respcache.Codec.
package codec

import "github.com/sandrolain/respcache"

// Set resolves a respcache.Codec for every non-identity encoding in
// the closed set. It is safe for concurrent use.
type Set struct {
	gzip    *gzipCodec
	deflate *deflateCodec
	brotli  *brotliCodec
	zstd    *zstdCodec
}

// NewSet builds a Set with default compression levels, grounded on the
// teacher's wrapper/compresscache default levels (gzip.DefaultCompression,
// brotli level 6).
func NewSet() (*Set, error) {
	z, err := newZstdCodec()
	if err != nil {
		return nil, err
	}
	return &Set{
		gzip:    newGzipCodec(),
		deflate: newDeflateCodec(),
		brotli:  newBrotliCodec(defaultBrotliLevel),
		zstd:    z,
	}, nil
}

// Codec implements respcache.CodecSet.
func (s *Set) Codec(e respcache.Encoding) (respcache.Codec, bool) {
	switch e {
	case respcache.Gzip:
		return s.gzip, true
	case respcache.Deflate:
		return s.deflate, true
	case respcache.Brotli:
		return s.brotli, true
	case respcache.Zstd:
		return s.zstd, true
	default:
		return nil, false
	}
}
