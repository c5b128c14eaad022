package respcache

import "math"

// CacheWeight estimates the byte-footprint of a value for the backend's
// capacity bookkeeping. Weight is an estimate, not a memory-accounting
// guarantee: summing weights may overcount shared immutable buffers.
type CacheWeight interface {
	Weight() uint32
}

// entryOverhead is the fixed per-entry bookkeeping cost folded into
// CachedResponse.Weight, covering struct fields that aren't otherwise
// counted byte-for-byte (status code, duration, map headers).
const entryOverhead = 64

// representationOverhead is the fixed per-representation bookkeeping
// cost folded into CachedBody.Weight.
const representationOverhead = 16

// saturateUint32 clamps a larger sum to uint32's range so weight
// accounting never wraps (§4.5: "saturated to a 32-bit unsigned
// integer").
func saturateUint32(n uint64) uint32 {
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

func addSaturating(values ...uint64) uint32 {
	var sum uint64
	for _, v := range values {
		sum += v
		if sum > math.MaxUint32 {
			return math.MaxUint32
		}
	}
	return saturateUint32(sum)
}
