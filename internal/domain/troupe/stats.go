package troupe

import "fmt"

// StatKind tags one of the eight member skill stats. All stat access goes
// through the Stats array index so duration math and growth share a single
// definition.
type StatKind int

const (
	StatVocal StatKind = iota
	StatDance
	StatRhythm
	StatCharisma
	StatStamina
	StatExpression
	StatTechnique
	StatTeamwork

	NumStats = 8
)

var statNames = [NumStats]string{
	StatVocal:      "vocal",
	StatDance:      "dance",
	StatRhythm:     "rhythm",
	StatCharisma:   "charisma",
	StatStamina:    "stamina",
	StatExpression: "expression",
	StatTechnique:  "technique",
	StatTeamwork:   "teamwork",
}

func (k StatKind) Valid() bool {
	return k >= 0 && k < NumStats
}

func (k StatKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("stat(%d)", int(k))
	}
	return statNames[k]
}

// ParseStatKind maps a config name to its stat tag.
func ParseStatKind(name string) (StatKind, error) {
	for i, n := range statNames {
		if n == name {
			return StatKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

// Stats holds the eight skill values, each in [0, StatCap].
type Stats [NumStats]int

func (s Stats) Get(k StatKind) int {
	if !k.Valid() {
		return 0
	}
	return s[k]
}

// Raise increases one stat, clamped at the cap.
func (s *Stats) Raise(k StatKind, amount int) {
	if !k.Valid() || amount <= 0 {
		return
	}
	v := s[k] + amount
	if v > StatCap {
		v = StatCap
	}
	s[k] = v
}

// RaiseAll increases every stat, each clamped at the cap.
func (s *Stats) RaiseAll(amount int) {
	for k := StatKind(0); k < NumStats; k++ {
		s.Raise(k, amount)
	}
}
