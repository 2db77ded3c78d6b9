// SPDX-License-Identifier: EPL-2.0

package utils

import "testing"

func TestCatmullRom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		p0, p1, p2, p3 float32
		t, want        float32
	}{
		{"start", 0, 1, 2, 3, 0, 1},
		{"end", 0, 1, 2, 3, 1, 2},
		{"linear midpoint", 0, 1, 2, 3, 0.5, 1.5},
		{"flat", 0.25, 0.25, 0.25, 0.25, 0.3, 0.25},
		{"peak midpoint", 0, 1, 1, 0, 0.5, 1.125},
	}

	for _, tt := range tests {
		if got := CatmullRom(tt.p0, tt.p1, tt.p2, tt.p3, tt.t); got != tt.want {
			t.Errorf("%s: CatmullRom() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
