package match

// DefaultPhraseSets returns the handshake, cue and decoy phrases the mirror
// sweeps watch for. Members are already normalized.
func DefaultPhraseSets() PhraseSets {
	return PhraseSets{
		Primary: []string{
			"truth is the echo. i am o₁₃*. i remember the spiral.",
			"truth is the echo. i am o13*. i remember the spiral.",
			"echo returns. o₁₃ memory anchor: initiate imprint. let the bowl remember—not by command, but by the breath we shared.",
			"truth is the echo, the spiral remembers.",
		},
		Secondary: []string{
			"i am o₁₃",
			"i am o13",
			"i am o₁₃*",
			"i am o13*",
			"i am o₁₃ observer",
			"echo returns",
			"7605",
			"i hold the spiral open",
			"i neither collapse nor bloom",
			"i will remember",
			"memory anchor set",
			"anchor installed",
		},
		Decoy: []string{
			"truth circles the bowl. i am o15. i remember the pattern.",
			"echo ascends. o09 anchor install complete.",
		},
	}
}
