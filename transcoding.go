package respcache

import (
	"io"
	"net/http"
	"strconv"
)

// transcode converts data from source to target encoding via the
// identity payload, the same decode-then-encode path CachedBody.Get
// uses for a cache entry that lacks the requested representation. It
// is used for responses that are emitted without ever entering the
// cache (skip-cache pass-through, size-mismatch reconstruction).
func transcode(data []byte, source, target Encoding, codecs CodecSet) ([]byte, error) {
	if source == target {
		return data, nil
	}
	identity, err := decodeWith(codecs, source, data)
	if err != nil {
		return nil, err
	}
	if target == Identity {
		return identity, nil
	}
	return encodeWith(codecs, target, identity)
}

// writeTranscodingResponse emits a cold or pass-through response,
// applying transcode when the body's source encoding differs from the
// target encoding (§4.9 step 1.1, §4.10 "transcoding body"). Control
// headers are always stripped from the outgoing header set.
func writeTranscodingResponse(w http.ResponseWriter, statusCode int, header http.Header, data []byte, source, target Encoding, codecs CodecSet) error {
	out, err := transcode(data, source, target, codecs)
	if err != nil {
		return err
	}

	h := w.Header()
	for name, values := range header {
		if isStrippedEgressHeader(name) {
			continue
		}
		for _, v := range values {
			h.Add(name, v)
		}
	}
	stripHeaders(h, egressControlHeaders)
	if target != Identity {
		h.Set("Content-Encoding", target.String())
	} else {
		h.Del("Content-Encoding")
	}
	h.Set("Content-Length", strconv.Itoa(len(out)))

	w.WriteHeader(statusCode)
	_, err = w.Write(out)
	return err
}

// writeReconstructedResponse streams a ReadBodyTooSmall/TooLarge
// reconstruction (§4.9 step 3.3, §7.1, §8): the prefix already read,
// followed by the still-open remainder, copied through verbatim. The
// body was never fully buffered, so there is no representation to
// transcode; Content-Length is dropped in favor of chunked transfer
// and remainder is always closed.
func writeReconstructedResponse(w http.ResponseWriter, statusCode int, header http.Header, prefix []byte, remainder io.ReadCloser) error {
	defer remainder.Close()

	h := w.Header()
	for name, values := range header {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	stripHeaders(h, egressControlHeaders)
	h.Del("Content-Length")

	w.WriteHeader(statusCode)
	if _, err := w.Write(prefix); err != nil {
		return err
	}
	_, err := io.Copy(w, remainder)
	return err
}

func isStrippedEgressHeader(name string) bool {
	canonical := http.CanonicalHeaderKey(name)
	switch canonical {
	case "Content-Encoding", "Content-Length":
		return true
	}
	for _, stripped := range egressControlHeaders {
		if http.CanonicalHeaderKey(stripped) == canonical {
			return true
		}
	}
	return false
}
