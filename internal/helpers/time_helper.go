package helpers

import "time"

// EAT is East Africa Time, the zone every outbound timestamp is shown in.
var EAT = loadEAT()

func loadEAT() *time.Location {
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		return time.FixedZone("EAT", 3*60*60)
	}
	return loc
}

// ToEAT converts t to EAT. Naive values coming back from the database are
// UTC, so the instant is preserved.
func ToEAT(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(EAT)
}

func ToEATPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	converted := ToEAT(*t)
	return &converted
}
