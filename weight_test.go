package respcache

import (
	"math"
	"testing"
)

func TestSaturateUint32(t *testing.T) {
	if got := saturateUint32(100); got != 100 {
		t.Errorf("got %d, want 100", got)
	}
	if got := saturateUint32(math.MaxUint32 + 1); got != math.MaxUint32 {
		t.Errorf("got %d, want MaxUint32", got)
	}
}

func TestAddSaturatingNormalSum(t *testing.T) {
	if got := addSaturating(10, 20, 30); got != 60 {
		t.Errorf("got %d, want 60", got)
	}
}

func TestAddSaturatingOverflowClamps(t *testing.T) {
	if got := addSaturating(math.MaxUint32, math.MaxUint32); got != math.MaxUint32 {
		t.Errorf("got %d, want MaxUint32", got)
	}
}
