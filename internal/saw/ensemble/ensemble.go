// Package ensemble runs batches of independent walk trials and reduces them
// into success rates and mean-squared-displacement estimators.
package ensemble

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/banshee-data/polymer.report/internal/saw"
)

// DefaultTrials is the trial count used when the caller passes zero.
const DefaultTrials = 1000

// weightTolerance decides whether a batch was produced by the unweighted
// method: if the mean weight over all records sits within this tolerance of
// 1, every weight is treated as exactly 1.
const weightTolerance = 1e-8

// Stats are the derived statistics for one batch of trials at a fixed N.
// The three displacement estimators cover the success subset, the fail
// subset, and the full batch.
type Stats struct {
	SuccessRate float64 `json:"success_rate"`
	SuccessNorm float64 `json:"success_norm"`
	FailNorm    float64 `json:"fail_norm"`
	BothNorm    float64 `json:"both_norm"`
}

// Result bundles the raw trial records with their reduced statistics.
type Result struct {
	N       int               `json:"n"`
	Method  saw.Method        `json:"-"`
	Trials  int               `json:"trials"`
	Seed    int64             `json:"seed"`
	Records []saw.TrialRecord `json:"-"`
	Stats   Stats             `json:"stats"`
}

// Run executes trials independent walks of length n on gridSize-sided grids
// and aggregates them. gridSize <= 0 selects saw.DefaultGridSize(n). Each
// trial gets its own walker, grid and rand.Rand derived from the base seed
// and the trial index, so results are bit-identical for a given seed no
// matter how many workers run or how the scheduler interleaves them.
// workers <= 0 uses one worker per CPU.
func Run(n, gridSize, trials int, m saw.Method, seed int64, workers int) (*Result, error) {
	if gridSize <= 0 {
		gridSize = saw.DefaultGridSize(n)
	}
	if trials <= 0 {
		trials = DefaultTrials
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > trials {
		workers = trials
	}

	// Validate grid sizing once before spawning anything; every trial uses
	// the same dimensions.
	if _, err := saw.NewWalker(n, gridSize, rand.New(rand.NewSource(seed))); err != nil {
		return nil, fmt.Errorf("configuring %d-step ensemble: %w", n, err)
	}

	records := make([]saw.TrialRecord, trials)

	var wg sync.WaitGroup
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				walker, err := saw.NewWalker(n, gridSize, rand.New(rand.NewSource(seed+int64(i))))
				if err != nil {
					// Sizing was validated up front; a per-trial failure
					// here would be a programming error.
					panic(err)
				}
				records[i] = saw.Run(walker, m)
			}
		}()
	}

	for i := 0; i < trials; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return &Result{
		N:       n,
		Method:  m,
		Trials:  trials,
		Seed:    seed,
		Records: records,
		Stats:   Compute(records),
	}, nil
}

// Compute reduces a batch of trial records into ensemble statistics.
//
// For unweighted batches (mean weight == 1 within tolerance) each estimator
// is the plain sum of squared displacements over its subset divided by the
// full batch size M, not the subset size: absent trials contribute zero.
// That convention is deliberate and keeps the estimators comparable across
// batches with different failure rates.
//
// For weighted batches each estimator is the weight-normalised average
// over its subset. A subset whose weight sum is zero (no failures, or all
// failures trapped with weight 0) yields a defined 0, never a division
// fault.
func Compute(records []saw.TrialRecord) Stats {
	m := len(records)
	if m == 0 {
		return Stats{}
	}

	var successes int
	var weightSum float64
	for _, r := range records {
		if r.Success {
			successes++
		}
		weightSum += r.Weight
	}

	s := Stats{
		SuccessRate: float64(successes) / float64(m) * 100,
	}

	if math.Abs(weightSum/float64(m)-1) < weightTolerance {
		// Unweighted estimators: divide by M for every subset.
		var succSum, failSum, bothSum float64
		for _, r := range records {
			bothSum += r.SquaredDisplacement
			if r.Success {
				succSum += r.SquaredDisplacement
			} else {
				failSum += r.SquaredDisplacement
			}
		}
		s.SuccessNorm = succSum / float64(m)
		s.FailNorm = failSum / float64(m)
		s.BothNorm = bothSum / float64(m)
		return s
	}

	var succW, succWD, failW, failWD, bothW, bothWD float64
	for _, r := range records {
		wd := r.Weight * r.SquaredDisplacement
		bothW += r.Weight
		bothWD += wd
		if r.Success {
			succW += r.Weight
			succWD += wd
		} else {
			failW += r.Weight
			failWD += wd
		}
	}
	s.SuccessNorm = weightedNorm(succWD, succW)
	s.FailNorm = weightedNorm(failWD, failW)
	s.BothNorm = weightedNorm(bothWD, bothW)
	return s
}

// weightedNorm is the degenerate-safe weighted average.
func weightedNorm(weightedSum, weightSum float64) float64 {
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}
