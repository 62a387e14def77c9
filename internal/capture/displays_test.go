package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDisplayIndex(t *testing.T) {
	tests := []struct {
		name     string
		selector int
		count    int
		want     int
	}{
		{"first", 0, 3, 0},
		{"middle", 1, 3, 1},
		{"last explicit", 2, 3, 2},
		{"negative one is last", -1, 3, 2},
		{"negative from end", -2, 3, 1},
		{"negative past start clamps low", -5, 3, 0},
		{"past end clamps high", 7, 3, 2},
		{"single display", 5, 1, 0},
		{"single display negative", -9, 1, 0},
		{"no displays", 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDisplayIndex(tt.selector, tt.count))
		})
	}
}

func TestResolveDisplayIndexAlwaysInRange(t *testing.T) {
	for count := 1; count <= 4; count++ {
		for selector := -10; selector <= 10; selector++ {
			got := ResolveDisplayIndex(selector, count)
			assert.GreaterOrEqual(t, got, 0, "selector=%d count=%d", selector, count)
			assert.Less(t, got, count, "selector=%d count=%d", selector, count)
		}
	}
}
