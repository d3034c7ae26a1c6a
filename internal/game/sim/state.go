package sim

// State is the player's position in the per-tick state machine.
type State int

const (
	// StateAttacking fires the next pending action whenever the global cooldown is clear.
	StateAttacking State = iota
	// StateTrySwitchGear retries rotation selection every tick until one is usable.
	StateTrySwitchGear
	// StateSwitchingGear waits out the gear swap delay.
	StateSwitchingGear
	// StateIdling waits between encounters, or when no rotation is usable.
	StateIdling
)

var stateNames = [...]string{"attacking", "try_switch_gear", "switching_gear", "idling"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
