package combat

import "math"

// SoulSplit returns the healing a hit of damage would restore:
// 10% of the first 2000, 5% of the next 2000, 1.25% of the rest, floored.
//
// Postcondition: Returns >= 0 for damage >= 0.
func SoulSplit(damage float64) float64 {
	stage1 := math.Min(damage, 2000) * 0.10
	stage2 := math.Min(math.Max(damage-2000, 0), 2000) * 0.05
	stage3 := math.Max(damage-4000, 0) * 0.0125
	return math.Floor(stage1 + stage2 + stage3)
}

// SoulSplitKill returns the healing of a killing blow: a quarter of the
// damage that was actually absorbed by the remaining health.
func SoulSplitKill(damage, health float64) float64 {
	return math.Min(damage, health) * 0.25
}
