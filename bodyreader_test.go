package respcache

import (
	"io"
	"strings"
	"testing"
)

func TestReadBoundedBodyNilBody(t *testing.T) {
	data, err := readBoundedBody(nil, unknownContentLength, DefaultCachingConfiguration())
	if err != nil || data != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", data, err)
	}
}

func TestReadBoundedBodyExactDeclaredSize(t *testing.T) {
	body := io.NopCloser(strings.NewReader("hello"))
	data, err := readBoundedBody(body, 5, DefaultCachingConfiguration())
	if err != nil || string(data) != "hello" {
		t.Fatalf("got (%q, %v)", data, err)
	}
}

func TestReadBoundedBodyShorterThanDeclaredSize(t *testing.T) {
	body := io.NopCloser(strings.NewReader("hi"))
	_, err := readBoundedBody(body, 10, DefaultCachingConfiguration())
	var withPieces *ErrorWithResponsePieces
	if !asErrorWithPieces(err, &withPieces) {
		t.Fatalf("expected *ErrorWithResponsePieces, got %v", err)
	}
	if withPieces.Err != ErrReadBodyTooSmall {
		t.Errorf("Err = %v, want ErrReadBodyTooSmall", withPieces.Err)
	}
	if string(withPieces.Pieces.Prefix) != "hi" {
		t.Errorf("Prefix = %q", withPieces.Pieces.Prefix)
	}
}

func TestReadBoundedBodyUnknownSizeWithinBounds(t *testing.T) {
	body := io.NopCloser(strings.NewReader("hello"))
	cfg := DefaultCachingConfiguration()
	cfg.MaxBodySize = 100
	data, err := readBoundedBody(body, unknownContentLength, cfg)
	if err != nil || string(data) != "hello" {
		t.Fatalf("got (%q, %v)", data, err)
	}
}

func TestReadBoundedBodyUnknownSizeExceedsMax(t *testing.T) {
	body := io.NopCloser(strings.NewReader("this body is too long for the configured cap"))
	cfg := DefaultCachingConfiguration()
	cfg.MaxBodySize = 5
	_, err := readBoundedBody(body, unknownContentLength, cfg)
	var withPieces *ErrorWithResponsePieces
	if !asErrorWithPieces(err, &withPieces) {
		t.Fatalf("expected *ErrorWithResponsePieces, got %v", err)
	}
	if withPieces.Err != ErrReadBodyTooLarge {
		t.Errorf("Err = %v, want ErrReadBodyTooLarge", withPieces.Err)
	}
	if len(withPieces.Pieces.Prefix) != 6 {
		t.Errorf("expected the prefix to carry MaxBodySize+1 bytes, got %d", len(withPieces.Pieces.Prefix))
	}
}
