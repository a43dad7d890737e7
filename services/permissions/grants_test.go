package permissions

import (
	"reflect"
	"testing"
)

func TestMergeGrantIDs(t *testing.T) {
	tests := []struct {
		name      string
		requested []uint
		existing  []uint
		grantable []uint
		expected  []uint
	}{
		{
			name:      "grant within scope",
			requested: []uint{1, 2},
			existing:  nil,
			grantable: []uint{1, 2, 3},
			expected:  []uint{1, 2},
		},
		{
			name:      "requested outside scope dropped",
			requested: []uint{1, 9},
			existing:  nil,
			grantable: []uint{1},
			expected:  []uint{1},
		},
		{
			name:      "existing outside scope preserved",
			requested: []uint{},
			existing:  []uint{7},
			grantable: []uint{1, 2},
			expected:  []uint{7},
		},
		{
			name:      "revoke within scope",
			requested: []uint{},
			existing:  []uint{1, 7},
			grantable: []uint{1},
			expected:  []uint{7},
		},
		{
			name:      "grant and preserve combined",
			requested: []uint{2, 9},
			existing:  []uint{1, 7},
			grantable: []uint{1, 2},
			expected:  []uint{2, 7},
		},
		{
			name:      "duplicates collapsed",
			requested: []uint{2, 2},
			existing:  []uint{7, 7},
			grantable: []uint{2},
			expected:  []uint{2, 7},
		},
		{
			name:      "empty scope preserves everything",
			requested: []uint{5},
			existing:  []uint{3, 4},
			grantable: nil,
			expected:  []uint{3, 4},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := mergeGrantIDs(tc.requested, tc.existing, tc.grantable)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}
