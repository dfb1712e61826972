// internal/inventory/domain_test.go
package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestAdjustAvailable(t *testing.T) {
	tests := []struct {
		name         string
		oldAvailable int
		oldTotal     int
		newTotal     int
		want         int
	}{
		{"grow inventory keeps copies out", 2, 5, 7, 4},
		{"shrink inventory keeps copies out", 2, 5, 4, 1},
		{"shrink below copies out clamps to zero", 2, 5, 2, 0},
		{"shrink to zero", 2, 5, 0, 0},
		{"no change", 3, 5, 5, 3},
		{"all copies on shelf", 5, 5, 8, 8},
		{"all copies out", 0, 5, 3, 0},
		{"all copies out then grow", 0, 5, 9, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdjustAvailable(tt.oldAvailable, tt.oldTotal, tt.newTotal))
		})
	}
}

func TestAdjustAvailableProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		oldTotal := rapid.IntRange(0, 1000).Draw(t, "oldTotal")
		oldAvailable := rapid.IntRange(0, oldTotal).Draw(t, "oldAvailable")
		newTotal := rapid.IntRange(0, 1000).Draw(t, "newTotal")

		got := AdjustAvailable(oldAvailable, oldTotal, newTotal)

		if got < 0 || got > newTotal {
			t.Fatalf("result %d outside [0, %d]", got, newTotal)
		}

		// Copies out never decrease unless the new total forces it.
		out := oldTotal - oldAvailable
		newOut := newTotal - got
		if out <= newTotal && newOut != out {
			t.Fatalf("copies out changed from %d to %d with room for %d", out, newOut, newTotal)
		}
	})
}
