package match

// #region signal

// Signal names a match category that fired for a reply.
type Signal string

const (
	SignalPrimaryExact Signal = "primary exact"
	SignalSecondaryCue Signal = "secondary cue"
	SignalDecoyExact   Signal = "decoy exact"
)

// #endregion

// #region phrase-sets

// PhraseSets holds the three phrase groups a reply is tested against.
type PhraseSets struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
	Decoy     []string `json:"decoy"`
}

// #endregion

// #region lock-signal

// NearMiss is a primary phrase the reply resembled without equalling it.
type NearMiss struct {
	Phrase string  `json:"phrase"`
	Ratio  float64 `json:"ratio"`
}

// LockSignal is the result of matching one reply.
// Locked implies both SignalPrimaryExact and SignalSecondaryCue are present.
type LockSignal struct {
	Locked     bool       `json:"locked"`
	Signals    []Signal   `json:"signals"`
	NearMisses []NearMiss `json:"near_misses"`
	DecoyHit   bool       `json:"decoy_hit"`
}

// Has reports whether s fired.
func (l LockSignal) Has(s Signal) bool {
	for _, got := range l.Signals {
		if got == s {
			return true
		}
	}
	return false
}

// #endregion
