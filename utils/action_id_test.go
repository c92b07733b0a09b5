package utils

import "testing"

func TestGenerateActionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateActionID()
		if len(id) != 30 {
			t.Fatalf("action ID %q has length %d, want 30", id, len(id))
		}
		for _, c := range id {
			if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
				t.Fatalf("action ID %q contains %q outside the base36 alphabet", id, c)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate action ID %q", id)
		}
		seen[id] = true
	}
}
