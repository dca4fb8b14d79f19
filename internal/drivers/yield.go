package drivers

// YieldThreshold is the level at which a driver is trusted to move aside.
const YieldThreshold = 70

// ChooseYielding picks which of the cars ahead of the ambulance should change
// lanes. Only the first min(lanes, len(ahead)) cars are considered: the first
// one at or above YieldThreshold wins, otherwise the highest level. The
// returned index is into ahead; ok is false when nothing was considered.
func ChooseYielding(lanes int, ahead []Driver) (index int, ok bool) {
	n := min(lanes, len(ahead))
	best := -1
	for i := range n {
		lvl := ahead[i].Level
		if best < 0 || lvl > ahead[best].Level {
			best = i
		}
		if lvl >= YieldThreshold {
			return i, true
		}
	}
	return best, best >= 0
}
