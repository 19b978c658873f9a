package core

import "testing"

func TestComputeRunFingerprint(t *testing.T) {
	counts := map[string]int{"records": 120, "repositories": 8, "tested": 14}

	t.Run("identical inputs reproduce the fingerprint", func(t *testing.T) {
		a := ComputeRunFingerprint(42, "min_sample=10|seed=42", counts)
		b := ComputeRunFingerprint(42, "min_sample=10|seed=42", map[string]int{
			"tested": 14, "records": 120, "repositories": 8,
		})
		if !a.Equals(b) {
			t.Fatalf("map iteration order leaked into the fingerprint: %s vs %s", a, b)
		}
	})

	t.Run("any input change alters the fingerprint", func(t *testing.T) {
		base := ComputeRunFingerprint(42, "cfg", counts)
		if base.Equals(ComputeRunFingerprint(43, "cfg", counts)) {
			t.Fatal("seed change must alter the fingerprint")
		}
		if base.Equals(ComputeRunFingerprint(42, "cfg2", counts)) {
			t.Fatal("config change must alter the fingerprint")
		}
		changed := map[string]int{"records": 121, "repositories": 8, "tested": 14}
		if base.Equals(ComputeRunFingerprint(42, "cfg", changed)) {
			t.Fatal("count change must alter the fingerprint")
		}
	})

	t.Run("fingerprint is hex encoded sha256", func(t *testing.T) {
		h := ComputeRunFingerprint(42, "cfg", counts)
		if len(h) != 64 {
			t.Fatalf("fingerprint length = %d, want 64", len(h))
		}
	})
}
