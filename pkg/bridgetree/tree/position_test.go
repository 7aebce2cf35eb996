package tree

import (
	"math/bits"
	"testing"
)

// TestOmmerAltitudesPopcount checks invariant 1 of spec.md section 8 for a
// handful of concrete positions before the fuzz test sweeps the space.
func TestOmmerAltitudesPopcount(t *testing.T) {
	cases := []Position{0, 1, 2, 3, 4, 5, 6, 7, 255, 1024, 1023}
	for _, p := range cases {
		got := len(OmmerAltitudes(p))
		want := bits.OnesCount64(uint64(p)) - int(uint64(p)&1)
		if got != want {
			t.Errorf("OmmerAltitudes(%d): got %d entries, want %d (popcount - lsb)", p, got, want)
		}
		for _, alt := range OmmerAltitudes(p) {
			if alt == 0 || uint64(p)&(uint64(1)<<alt) == 0 {
				t.Errorf("OmmerAltitudes(%d) contains %d, which is not a set bit >= 1", p, alt)
			}
		}
	}
}

// TestAllAltitudesRequiredExtendsAltitudesRequired checks invariant 2.
func TestAllAltitudesRequiredExtendsAltitudesRequired(t *testing.T) {
	for _, p := range []Position{0, 1, 2, 3, 4, 7, 8, 15, 16, 1000} {
		required := AltitudesRequired(p)
		all := AllAltitudesRequired(p)
		if len(all) < len(required) {
			t.Fatalf("AllAltitudesRequired(%d) shorter than AltitudesRequired(%d)", p, p)
		}
		for i, alt := range required {
			if all[i] != alt {
				t.Errorf("AllAltitudesRequired(%d)[%d] = %d, want %d (prefix must match AltitudesRequired)", p, i, all[i], alt)
			}
		}
	}
}

func FuzzPositionInvariants(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1))
	f.Add(uint64(2))
	f.Add(uint64(255))
	f.Add(uint64(1 << 20))

	f.Fuzz(func(t *testing.T, raw uint64) {
		p := Position(raw)

		ommers := OmmerAltitudes(p)
		wantPopcount := bits.OnesCount64(uint64(p)) - int(uint64(p)&1)
		if len(ommers) != wantPopcount {
			t.Fatalf("OmmerAltitudes(%d): got %d entries, want %d", p, len(ommers), wantPopcount)
		}
		for _, alt := range ommers {
			if alt == 0 {
				t.Fatalf("OmmerAltitudes(%d) contains altitude 0", p)
			}
			if uint64(p)&(uint64(1)<<alt) == 0 {
				t.Fatalf("OmmerAltitudes(%d) contains %d, not a set bit", p, alt)
			}
		}

		required := AltitudesRequired(p)
		all := AllAltitudesRequired(p)
		if len(all) < len(required) {
			t.Fatalf("AllAltitudesRequired(%d) (%d) shorter than AltitudesRequired(%d) (%d)", p, len(all), p, len(required))
		}
		for i, alt := range required {
			if all[i] != alt {
				t.Fatalf("AllAltitudesRequired(%d)[%d] = %d, want %d", p, i, all[i], alt)
			}
		}
	})
}
