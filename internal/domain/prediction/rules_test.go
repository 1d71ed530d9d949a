package prediction

import "testing"

func ptr(v int) *int { return &v }

func TestPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		predHome  *int
		predAway  *int
		finalHome int
		finalAway int
		want      int
	}{
		{
			name:      "exact score collects everything",
			predHome:  ptr(2),
			predAway:  ptr(1),
			finalHome: 2,
			finalAway: 1,
			want:      MaxPoints,
		},
		{
			name:      "exact draw collects everything",
			predHome:  ptr(1),
			predAway:  ptr(1),
			finalHome: 1,
			finalAway: 1,
			want:      MaxPoints,
		},
		{
			name:      "direction and difference without exact goals",
			predHome:  ptr(3),
			predAway:  ptr(2),
			finalHome: 2,
			finalAway: 1,
			want:      PointsDirection + PointsExactDiff,
		},
		{
			name:      "direction plus one exact goal count",
			predHome:  ptr(2),
			predAway:  ptr(0),
			finalHome: 2,
			finalAway: 1,
			want:      PointsDirection + PointsExactHome,
		},
		{
			name:      "draw predicted but decided match",
			predHome:  ptr(1),
			predAway:  ptr(1),
			finalHome: 2,
			finalAway: 1,
			want:      PointsExactAway,
		},
		{
			name:      "mirrored score earns no difference bonus",
			predHome:  ptr(1),
			predAway:  ptr(2),
			finalHome: 2,
			finalAway: 1,
			want:      0,
		},
		{
			name:      "wrong direction with one exact goal count",
			predHome:  ptr(0),
			predAway:  ptr(1),
			finalHome: 3,
			finalAway: 1,
			want:      PointsExactAway,
		},
		{
			name:      "completely wrong",
			predHome:  ptr(0),
			predAway:  ptr(3),
			finalHome: 4,
			finalAway: 0,
			want:      0,
		},
		{
			name:      "missing home slot scores zero",
			predHome:  nil,
			predAway:  ptr(1),
			finalHome: 1,
			finalAway: 1,
			want:      0,
		},
		{
			name:      "missing away slot scores zero",
			predHome:  ptr(1),
			predAway:  nil,
			finalHome: 1,
			finalAway: 1,
			want:      0,
		},
		{
			name:      "high scoring draw without exact goals",
			predHome:  ptr(0),
			predAway:  ptr(0),
			finalHome: 2,
			finalAway: 2,
			want:      PointsDirection + PointsExactDiff,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Points(tc.predHome, tc.predAway, tc.finalHome, tc.finalAway)
			if got != tc.want {
				t.Fatalf("Points(%v, %v, %d, %d) = %d, want %d",
					tc.predHome, tc.predAway, tc.finalHome, tc.finalAway, got, tc.want)
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	if got := Display(ptr(2), ptr(1)); got != "2 - 1" {
		t.Fatalf("Display(2, 1) = %q, want %q", got, "2 - 1")
	}
	if got := Display(nil, ptr(1)); got != "" {
		t.Fatalf("Display(nil, 1) = %q, want empty", got)
	}
	if got := Display(ptr(0), nil); got != "" {
		t.Fatalf("Display(0, nil) = %q, want empty", got)
	}
	if got := Display(ptr(0), ptr(0)); got != "0 - 0" {
		t.Fatalf("Display(0, 0) = %q, want %q", got, "0 - 0")
	}
}
