package respcache

import (
	"fmt"
	"io"
)

// unknownContentLength is the sentinel passed as declaredSize when the
// upstream response carried no Content-Length header.
const unknownContentLength int64 = -1

// readBoundedBody reads body per §4.4 new_for / §8 boundary behaviors:
//
//   - If declaredSize is known, exactly that many bytes are expected;
//     reaching EOF earlier is a ReadBodyTooSmall classification.
//   - If declaredSize is unknown, the body is read with a cap of
//     cfg.MaxBodySize bytes; reaching the cap without EOF is a
//     ReadBodyTooLarge classification, and reaching EOF with fewer
//     than cfg.MinBodySize bytes is a ReadBodyTooSmall classification.
//
// Both classifications return *ErrorWithResponsePieces carrying the
// bytes already read and the still-open body, so the caller can
// reconstruct the original stream without re-calling upstream.
func readBoundedBody(body io.ReadCloser, declaredSize int64, cfg CachingConfiguration) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	if declaredSize != unknownContentLength {
		data := make([]byte, declaredSize)
		n, err := io.ReadFull(body, data)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("reading upstream body: %w", err)
		}
		if int64(n) != declaredSize {
			return nil, &ErrorWithResponsePieces{
				Err:    ErrReadBodyTooSmall,
				Pieces: ResponsePieces{Prefix: data[:n], Remainder: body},
			}
		}
		return data, nil
	}

	limited := &io.LimitedReader{R: body, N: cfg.MaxBodySize + 1}
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("reading upstream body: %w", err)
	}
	if int64(len(data)) > cfg.MaxBodySize {
		return nil, &ErrorWithResponsePieces{
			Err:    ErrReadBodyTooLarge,
			Pieces: ResponsePieces{Prefix: data, Remainder: body},
		}
	}
	if int64(len(data)) < cfg.MinBodySize {
		return nil, &ErrorWithResponsePieces{
			Err:    ErrReadBodyTooSmall,
			Pieces: ResponsePieces{Prefix: data, Remainder: body},
		}
	}
	return data, nil
}
