package domain

// DefaultHintPenalty is the per-hint deduction used by PointsAfterPenalty.
const DefaultHintPenalty = 20

// PointsAfterPenalty computes the award after deducting for used hints,
// floored at zero. The live submission path awards full challenge points
// and does not call this; it exists for a hint flow that was never wired.
func PointsAfterPenalty(base, hintsUsed, penaltyPerHint int) int {
	points := base - hintsUsed*penaltyPerHint
	if points < 0 {
		return 0
	}
	return points
}
