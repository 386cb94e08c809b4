package troupe

const (
	// StatCap bounds every skill stat; growth clamps here.
	StatCap = 10

	// Morale is a per-member score in [MoraleFloor, MoraleCap]. Charges
	// floor at zero, rewards clamp at the cap.
	MoraleCap   = 10
	MoraleFloor = 0

	// AllSmallStatGain is the flat raise applied to all eight stats by the
	// all_small growth policy.
	AllSmallStatGain = 1
)
