package collapse

import (
	"fmt"
	"io"
)

// Explain writes the step-by-step listing printed by verbose mode.
func (t Trace) Explain(w io.Writer) error {
	if t.Sentinel {
		_, err := fmt.Fprintf(w, "ψ(0): Sentinel lock triggered (invalid n, D, or base=%d).\n", t.Base)
		return err
	}
	rows := []struct {
		label string
		value any
	}{
		{"Input n", t.N},
		{"Dimension D", t.D},
		{"Base", t.Base},
		{"f₁ (Kaprekar)", t.F1},
		{"f₂ (Mirror)", t.F2},
		{"f₃ (Weighted)", t.F3},
		{fmt.Sprintf("Σ f_i mod %d", t.Base), t.Collapsed},
		{"H_D", t.HD},
		{"XOR fusion", t.Fused},
		{"Index (mod 8)", t.Idx},
		{fmt.Sprintf("T₈[%d]", t.Idx), t.Truth},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-17s: %v\n", r.label, r.value); err != nil {
			return err
		}
	}
	return nil
}
