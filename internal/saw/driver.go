package saw

import "math/rand"

// TrialRecord is the immutable result of one completed walk attempt.
// Success and weight are independent outcomes under the weighted method: a
// walk can finish all N steps with a very small but nonzero weight.
type TrialRecord struct {
	Weight              float64 `json:"weight"`
	SquaredDisplacement float64 `json:"squared_displacement"`
	Success             bool    `json:"success"`
}

// Run drives the walker with the chosen step method until it either traps
// or reaches its target length, and reports the outcome. The walker is left
// in its terminal state so the caller can snapshot the trajectory.
func Run(w *Walker, m Method) TrialRecord {
	for w.Alive() && w.Steps() < w.Target() {
		if w.Step(m) == Blocked {
			break
		}
	}
	return TrialRecord{
		Weight:              w.Weight(),
		SquaredDisplacement: w.SquaredDisplacement(),
		Success:             w.Steps() == w.Target(),
	}
}

// RunTrial runs one fresh walk of length n on a default-sized grid. The rng
// must be private to the trial; sharing one generator across concurrent
// trials breaks both independence and reproducibility.
func RunTrial(n int, m Method, rng *rand.Rand) (TrialRecord, error) {
	w, err := NewWalker(n, DefaultGridSize(n), rng)
	if err != nil {
		return TrialRecord{}, err
	}
	return Run(w, m), nil
}
