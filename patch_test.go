package termite

import "testing"

func TestSnapshotAndApplyRoundTrip(t *testing.T) {
	s, err := New(44100, 4)
	if err != nil {
		t.Fatal(err)
	}
	s.GetControls()["resonance"].Set(7)
	s.GetControls()["cutoff"].Set(80)

	snap := Snapshot(s.GetControls())

	s2, err := New(44100, 4)
	if err != nil {
		t.Fatal(err)
	}
	Apply(s2.GetControls(), snap)

	if got := s2.GetControls()["resonance"].CurrentValue(); got != 7 {
		t.Fatalf("expected resonance 7 to round-trip through a patch, got %v", got)
	}
	if got := s2.GetControls()["cutoff"].CurrentValue(); got != 80 {
		t.Fatalf("expected cutoff 80 to round-trip through a patch, got %v", got)
	}
}

func TestApplyIgnoresUnknownControlNames(t *testing.T) {
	s, err := New(44100, 4)
	if err != nil {
		t.Fatal(err)
	}
	Apply(s.GetControls(), map[string]float64{"not-a-real-control": 42})
}

func TestEncodeDecodePatchRoundTrips(t *testing.T) {
	original := map[string]float64{"cutoff": 90, "resonance": 3.5}
	data, err := EncodePatch(original)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodePatch(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("expected decoded patch to have %d entries, got %d", len(original), len(decoded))
	}
	for k, v := range original {
		if decoded[k] != v {
			t.Fatalf("expected %s=%v, got %v", k, v, decoded[k])
		}
	}
}

func TestDecodePatchRejectsInvalidJSON(t *testing.T) {
	if _, err := DecodePatch([]byte("not json")); err == nil {
		t.Fatal("expected an error decoding invalid JSON")
	}
}
