package combat

// Player resource limits.
const (
	MaxAdrenaline         = 100
	StartingAdrenaline    = 25
	MaxSummoning          = 60
	SummoningRestore      = 15
	SummoningRestoreTicks = 50
)

// Player holds the player's two resource pools.
type Player struct {
	// Adrenaline is the attack resource, in [0, MaxAdrenaline].
	Adrenaline int
	// Summoning is the familiar resource, in [0, MaxSummoning].
	Summoning int
}

// NewPlayer returns a player who has just sipped an adrenaline flask and has
// a full summoning pool.
func NewPlayer() *Player {
	return &Player{Adrenaline: StartingAdrenaline, Summoning: MaxSummoning}
}

// GainAdrenaline adds delta (which may be negative) and clamps to [0, MaxAdrenaline].
func (p *Player) GainAdrenaline(delta int) {
	p.Adrenaline = min(max(p.Adrenaline+delta, 0), MaxAdrenaline)
}

// RestoreSummoning adds SummoningRestore points up to MaxSummoning.
//
// Postcondition: Returns true iff points were restored.
func (p *Player) RestoreSummoning() bool {
	if p.Summoning >= MaxSummoning {
		return false
	}
	p.Summoning = min(p.Summoning+SummoningRestore, MaxSummoning)
	return true
}

// SpendSummoning removes cost points if the pool can afford them.
//
// Postcondition: Returns false and leaves the pool untouched when Summoning < cost.
func (p *Player) SpendSummoning(cost int) bool {
	if p.Summoning < cost {
		return false
	}
	p.Summoning -= cost
	return true
}
