package respcache

import "fmt"

// stubCodec is a reversible, deterministic Codec used across this
// package's tests in place of the real gzip/brotli/deflate/zstd
// implementations from package codec (which would create an import
// cycle if imported here).
type stubCodec struct {
	marker string
}

func (c stubCodec) Encode(identity []byte) ([]byte, error) {
	return append([]byte(c.marker), identity...), nil
}

func (c stubCodec) Decode(encoded []byte) ([]byte, error) {
	prefix := []byte(c.marker)
	if len(encoded) < len(prefix) || string(encoded[:len(prefix)]) != c.marker {
		return nil, fmt.Errorf("stubCodec: missing marker %q", c.marker)
	}
	return encoded[len(prefix):], nil
}

// stubCodecSet resolves a stubCodec for every non-identity Encoding.
type stubCodecSet struct{}

func (stubCodecSet) Codec(e Encoding) (Codec, bool) {
	switch e {
	case Gzip:
		return stubCodec{marker: "GZ:"}, true
	case Deflate:
		return stubCodec{marker: "DF:"}, true
	case Brotli:
		return stubCodec{marker: "BR:"}, true
	case Zstd:
		return stubCodec{marker: "ZS:"}, true
	default:
		return nil, false
	}
}

// emptyCodecSet resolves no codec at all, for exercising the
// ErrCodec path.
type emptyCodecSet struct{}

func (emptyCodecSet) Codec(Encoding) (Codec, bool) { return nil, false }
