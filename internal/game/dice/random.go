package dice

type randomDamage struct{ src Source }

// Damage returns a uniform draw in [min, max].
//
// Precondition: max >= min.
func (r randomDamage) Damage(min, max float64) float64 {
	if max < min {
		panic("dice: Damage called with max < min")
	}
	return r.src.Float64()*(max-min) + min
}

type randomAccuracy struct{ src Source }

func (r randomAccuracy) Hit(chance float64) bool {
	return chanceCheck(r.src, chance)
}

type randomInterval struct{ src Source }

func (r randomInterval) Interval(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.src.Intn(max-min)
}

type randomEffect struct{ src Source }

func (r randomEffect) Occurred(probability float64) bool {
	return chanceCheck(r.src, probability)
}

type randomFamiliar struct{ src Source }

func (r randomFamiliar) StyleValue() float64 { return r.src.Float64() }

func (r randomFamiliar) Hit(chance float64) bool { return chanceCheck(r.src, chance) }

func (r randomFamiliar) Stupid(chance float64) bool { return chanceCheck(r.src, chance) }

type randomRareDrop struct{ src Source }

func (r randomRareDrop) RareDrop() bool { return r.src.Intn(RareDropOdds) == 0 }

// chanceCheck reports true with probability p, with hard edges at 0 and 1.
// No draw is consumed at the edges.
func chanceCheck(src Source, p float64) bool {
	switch {
	case p >= 1:
		return true
	case p <= 0:
		return false
	}
	return src.Float64() < p
}
