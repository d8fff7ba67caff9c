// Command walk runs one ensemble of self-avoiding walks at a fixed length
// and prints its statistics, optionally rendering a sample trajectory as
// ASCII art or a PNG.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/banshee-data/polymer.report/internal/saw"
	"github.com/banshee-data/polymer.report/internal/saw/ensemble"
	"github.com/banshee-data/polymer.report/internal/saw/monitor"
)

func main() {
	n := flag.Int("n", 20, "Target walk length")
	margin := flag.Int("margin", 3, "Grid margin multiplier (lattice side = margin*N + 3)")
	trials := flag.Int("trials", 1000, "Number of independent trials")
	methodName := flag.String("method", "weighted", "Step method: 'unweighted' or 'weighted'")
	seed := flag.Int64("seed", 1, "Base random seed")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = NumCPU)")
	show := flag.Bool("show", false, "Print one sample trajectory as ASCII art")
	plotFile := flag.String("plot", "", "Optional trajectory plot PNG filename")
	flag.Parse()

	method, err := saw.ParseMethod(*methodName)
	if err != nil {
		log.Fatal(err)
	}

	res, err := ensemble.Run(*n, saw.GridSize(*margin, *n), *trials, method, *seed, *workers)
	if err != nil {
		log.Fatalf("ensemble failed: %v", err)
	}

	fmt.Printf("N=%d method=%s trials=%d seed=%d\n", res.N, method, res.Trials, res.Seed)
	fmt.Printf("success rate: %.2f%%\n", res.Stats.SuccessRate)
	fmt.Printf("mean squared displacement: success=%.4f fail=%.4f both=%.4f\n",
		res.Stats.SuccessNorm, res.Stats.FailNorm, res.Stats.BothNorm)

	if !*show && *plotFile == "" {
		return
	}

	walker, err := saw.NewWalker(*n, saw.GridSize(*margin, *n), rand.New(rand.NewSource(*seed)))
	if err != nil {
		log.Fatal(err)
	}
	rec := saw.Run(walker, method)
	snap := walker.Snapshot()

	if *show {
		fmt.Printf("\nsample walk: steps=%d success=%v weight=%.3g\n", snap.Steps, rec.Success, rec.Weight)
		fmt.Print(renderASCII(snap))
	}
	if *plotFile != "" {
		if err := monitor.SaveTrajectoryPlot(snap, *plotFile); err != nil {
			log.Fatalf("failed to write trajectory plot: %v", err)
		}
		log.Printf("wrote %s", *plotFile)
	}
}

// renderASCII draws the bounding box around the path. The start cell is
// 'S', the final position 'E', other path cells '#'. Only cells the walk
// stepped on are drawn; the pre-seeded mark behind the start is not part of
// the path and stays blank.
func renderASCII(snap saw.Snapshot) string {
	if len(snap.Path) == 0 {
		return ""
	}

	onPath := make(map[saw.Position]bool, len(snap.Path))
	for _, p := range snap.Path {
		onPath[p] = true
	}

	minR, maxR := snap.Path[0].Row, snap.Path[0].Row
	minC, maxC := snap.Path[0].Col, snap.Path[0].Col
	for _, p := range snap.Path {
		if p.Row < minR {
			minR = p.Row
		}
		if p.Row > maxR {
			maxR = p.Row
		}
		if p.Col < minC {
			minC = p.Col
		}
		if p.Col > maxC {
			maxC = p.Col
		}
	}

	start := snap.Path[0]
	end := snap.Path[len(snap.Path)-1]

	var b strings.Builder
	for r := minR; r <= maxR; r++ {
		for c := minC; c <= maxC; c++ {
			switch {
			case r == start.Row && c == start.Col:
				b.WriteByte('S')
			case r == end.Row && c == end.Col:
				b.WriteByte('E')
			case onPath[saw.Position{Row: r, Col: c}]:
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
