package providers

import (
	"testing"
)

type fakeElevation struct {
	calls int
	value float64
}

func (f *fakeElevation) Elevation(lat, lon float64) float64 {
	f.calls++
	return f.value
}

func TestElevationCacheMemoizes(t *testing.T) {
	fe := &fakeElevation{value: 123.4}
	cache := NewElevationCache(fe, nil)

	if got := cache.Elevation(50.123456, 30.654321); got != 123.4 {
		t.Fatalf("got %v, want 123.4", got)
	}
	if got := cache.Elevation(50.123456, 30.654321); got != 123.4 {
		t.Fatalf("got %v, want 123.4", got)
	}
	if fe.calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", fe.calls)
	}
}

func TestElevationCacheNilUpstreamReturnsZero(t *testing.T) {
	cache := NewElevationCache(nil, nil)
	if got := cache.Elevation(1, 1); got != 0 {
		t.Fatalf("expected 0 for nil upstream, got %v", got)
	}
}

func TestWindStateSnapshotVersioning(t *testing.T) {
	var w WindState
	s0 := w.Snapshot()
	if s0.Version != 0 {
		t.Fatalf("expected initial version 0, got %d", s0.Version)
	}

	w.Update(5.0, 90.0)
	s1 := w.Snapshot()
	if s1.Version != 1 {
		t.Fatalf("expected version 1 after update, got %d", s1.Version)
	}
	if s1.SpeedMs != 5.0 || s1.FromDeg != 90.0 {
		t.Fatalf("unexpected snapshot values: %+v", s1)
	}
}
