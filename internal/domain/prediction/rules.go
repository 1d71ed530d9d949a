package prediction

// Scoring weights for a single match. A perfect prediction earns all four
// components: direction, both exact goal counts and the exact difference.
const (
	PointsDirection = 5
	PointsExactHome = 2
	PointsExactAway = 2
	PointsExactDiff = 1

	MaxPoints = PointsDirection + PointsExactHome + PointsExactAway + PointsExactDiff
)

// Points scores a predicted pair against the full-time result.
// An incomplete prediction scores zero. The goal-difference bonus only
// applies when the direction matched, so a wrong-way 1:2 vs 2:1 does not
// collect it.
func Points(predHome, predAway *int, finalHome, finalAway int) int {
	if predHome == nil || predAway == nil {
		return 0
	}

	total := 0
	directionMatched := direction(*predHome, *predAway) == direction(finalHome, finalAway)
	if directionMatched {
		total += PointsDirection
	}
	if *predHome == finalHome {
		total += PointsExactHome
	}
	if *predAway == finalAway {
		total += PointsExactAway
	}
	if directionMatched && (*predHome-*predAway) == (finalHome-finalAway) {
		total += PointsExactDiff
	}

	return total
}

func direction(home, away int) int {
	switch {
	case home > away:
		return 1
	case home < away:
		return -1
	default:
		return 0
	}
}
