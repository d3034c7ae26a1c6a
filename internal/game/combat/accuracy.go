package combat

import "math"

// F is the shared level curve behind both accuracy and defence ratings:
// 0.0008*level^3 + 4*level + 40.
func F(level float64) float64 {
	return 0.0008*math.Pow(level, 3) + 4*level + 40
}

// AccuracyRating combines the player's level and weapon tier.
func AccuracyRating(level, weaponTier float64) float64 {
	return F(level) + 2.5*F(weaponTier)
}

// DefenceRating scales the target's defence level by the affinity modifier.
func DefenceRating(level float64, a Affinity) float64 {
	return F(level) * a.Modifier()
}

// HitChance returns offensive rating over defensive rating, both floored.
// A defensive rating below 1 guarantees a hit.
//
// Postcondition: Returns 1.0 when floor(DefenceRating) < 1; otherwise >= 0.
func HitChance(playerLevel, weaponTier, bonusAccuracy, defenceLevel float64, a Affinity) float64 {
	accuracy := math.Floor(AccuracyRating(playerLevel, weaponTier)) * bonusAccuracy
	defence := math.Floor(DefenceRating(defenceLevel, a))
	if defence < 1 {
		return 1.0
	}
	return math.Max(accuracy/defence, 0)
}
