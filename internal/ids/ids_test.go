package ids

import (
	"strings"
	"testing"
)

func TestNewPrefix(t *testing.T) {
	for _, k := range []Kind{Project, Employee, Entry} {
		id := New(k)
		if !strings.HasPrefix(id, string(k)+"_") {
			t.Fatalf("id %q missing prefix %q", id, k)
		}
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New(Entry)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
