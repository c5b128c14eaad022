package respcache

import (
	"bytes"
	"encoding/gob"
)

// CachedBody is a map from Encoding to immutable byte blob (§3, §4.3).
// At least one representation always exists; every representation
// decodes to the same identity payload (assumed by construction, not
// checked). Mutating methods never shrink or mutate in place: they
// return a new value to be put back into the cache (copy-on-write).
type CachedBody struct {
	representations map[Encoding][]byte
}

// NewCachedBody builds a body initially containing the representation
// described by the policy in §4.3 new_with:
//   - source == preferred: store once.
//   - source == Identity: encode to preferred; also keep identity if
//     keepIdentity.
//   - preferred == Identity: decode source to identity, store once.
//   - else: decode source to identity, encode identity to preferred;
//     keep the identity copy if keepIdentity.
func NewCachedBody(bytes []byte, source, preferred Encoding, keepIdentity bool, codecs CodecSet) (*CachedBody, error) {
	b := &CachedBody{representations: make(map[Encoding][]byte, 2)}

	if source == preferred {
		b.representations[source] = bytes
		return b, nil
	}

	if source == Identity {
		encoded, err := encodeWith(codecs, preferred, bytes)
		if err != nil {
			return nil, err
		}
		b.representations[preferred] = encoded
		if keepIdentity {
			b.representations[Identity] = bytes
		}
		return b, nil
	}

	identity, err := decodeWith(codecs, source, bytes)
	if err != nil {
		return nil, err
	}
	if preferred == Identity {
		b.representations[Identity] = identity
		return b, nil
	}
	encoded, err := encodeWith(codecs, preferred, identity)
	if err != nil {
		return nil, err
	}
	b.representations[preferred] = encoded
	if keepIdentity {
		b.representations[Identity] = identity
	}
	return b, nil
}

// Get returns the bytes for encoding, decoding or reencoding on demand
// per §4.3 get. If the representation already exists, newBody is nil.
// Otherwise newBody is a clone of b with the freshly produced
// representation added, for the caller to put back into the cache
// (copy-on-write).
func (b *CachedBody) Get(encoding Encoding, keepIdentity bool, codecs CodecSet) (data []byte, newBody *CachedBody, err error) {
	if existing, ok := b.representations[encoding]; ok {
		return existing, nil, nil
	}

	if len(b.representations) == 0 {
		GetLogger().Error("cached body has no representations", "encoding", encoding.String())
		return []byte{}, nil, nil
	}

	if encoding == Identity {
		identity, _, err := b.decodeFromCheapest(codecs)
		if err != nil {
			return nil, nil, err
		}
		clone := b.clone()
		clone.representations[Identity] = identity
		return identity, clone, nil
	}

	identity, hadIdentity, err := b.identityOrDecodeCheapest(codecs)
	if err != nil {
		return nil, nil, err
	}
	encoded, err := encodeWith(codecs, encoding, identity)
	if err != nil {
		return nil, nil, err
	}
	clone := b.clone()
	clone.representations[encoding] = encoded
	if keepIdentity && !hadIdentity {
		clone.representations[Identity] = identity
	}
	return encoded, clone, nil
}

// Representations returns the set of encodings currently stored,
// useful for diagnostics and tests.
func (b *CachedBody) Representations() []Encoding {
	out := make([]Encoding, 0, len(b.representations))
	for e := range b.representations {
		out = append(out, e)
	}
	return out
}

// Weight estimates b's byte footprint across all stored
// representations (§4.5), with a fixed overhead per representation.
func (b *CachedBody) Weight() uint32 {
	var sum uint64
	for _, data := range b.representations {
		sum += uint64(len(data)) + representationOverhead
	}
	return saturateUint32(sum)
}

// GobEncode lets CachedBody round-trip through gob despite its field
// being unexported, needed by bytestore.Adapt to serialize
// *CachedResponse for byte-oriented backends.
func (b *CachedBody) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b.representations); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode is the GobEncode counterpart.
func (b *CachedBody) GobDecode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&b.representations)
}

func (b *CachedBody) clone() *CachedBody {
	clone := &CachedBody{representations: make(map[Encoding][]byte, len(b.representations)+1)}
	for e, data := range b.representations {
		clone.representations[e] = data
	}
	return clone
}

// decodeFromCheapest decodes the identity payload from whichever stored
// representation is cheapest to decode, per encodingsByDecodingCost.
func (b *CachedBody) decodeFromCheapest(codecs CodecSet) ([]byte, Encoding, error) {
	for _, e := range encodingsByDecodingCost {
		data, ok := b.representations[e]
		if !ok {
			continue
		}
		if e == Identity {
			return data, Identity, nil
		}
		identity, err := decodeWith(codecs, e, data)
		if err != nil {
			return nil, e, err
		}
		return identity, e, nil
	}
	GetLogger().Error("cached body has no decodable representation")
	return []byte{}, Identity, nil
}

// identityOrDecodeCheapest prefers a stored identity representation as
// the reencode source; otherwise it decodes from the cheapest
// available representation.
func (b *CachedBody) identityOrDecodeCheapest(codecs CodecSet) (identity []byte, hadIdentity bool, err error) {
	if data, ok := b.representations[Identity]; ok {
		return data, true, nil
	}
	data, _, err := b.decodeFromCheapest(codecs)
	return data, false, err
}

func encodeWith(codecs CodecSet, e Encoding, identity []byte) ([]byte, error) {
	if e == Identity {
		return identity, nil
	}
	codec, ok := codecs.Codec(e)
	if !ok {
		return nil, wrapCodec("encode", ErrCodec)
	}
	out, err := codec.Encode(identity)
	if err != nil {
		return nil, wrapCodec("encode", err)
	}
	return out, nil
}

func decodeWith(codecs CodecSet, e Encoding, encoded []byte) ([]byte, error) {
	if e == Identity {
		return encoded, nil
	}
	codec, ok := codecs.Codec(e)
	if !ok {
		return nil, wrapCodec("decode", ErrCodec)
	}
	out, err := codec.Decode(encoded)
	if err != nil {
		return nil, wrapCodec("decode", err)
	}
	return out, nil
}
