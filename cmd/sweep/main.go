// Command sweep runs a scaling sweep of Rosenbluth-Rosenbluth ensembles
// across a range of walk lengths, fits the displacement scaling law, and
// writes the per-N statistics as CSV with optional PNG plots and database
// persistence.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/banshee-data/polymer.report/internal/db"
	"github.com/banshee-data/polymer.report/internal/saw/monitor"
	"github.com/banshee-data/polymer.report/internal/saw/scaling"
	sqlite "github.com/banshee-data/polymer.report/internal/saw/storage/sqlite"
)

func main() {
	rangeSpec := flag.String("n", "4:255:1", "Walk length range as min:max or min:max:step")
	margin := flag.Int("margin", 3, "Grid margin multiplier (lattice side = margin*N + 3)")
	trials := flag.Int("trials", 1000, "Trials per walk length")
	seed := flag.Int64("seed", 1, "Base random seed")
	workers := flag.Int("workers", 0, "Worker goroutines per ensemble (0 = NumCPU)")
	output := flag.String("output", "", "Output CSV filename (defaults to saw-sweep-<timestamp>.csv)")
	plotFile := flag.String("plot", "", "Optional scaling plot PNG filename")
	successPlotFile := flag.String("success-plot", "", "Optional success-rate plot PNG filename")
	dbFile := flag.String("db", "", "Optional results database to persist the sweep into")
	migrationsDir := flag.String("migrations", "db/migrations", "Schema migrations directory")
	flag.Parse()

	spec, err := scaling.ParseNRange(*rangeSpec)
	if err != nil {
		log.Fatalf("invalid -n range: %v", err)
	}

	start := time.Now()
	curve, err := scaling.Sweep(spec.Values(), *margin, *trials, *seed, *workers)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	log.Printf("swept %d walk lengths in %s", len(curve.Points), time.Since(start).Round(time.Millisecond))

	fmt.Printf("fit: slope=%.4f intercept=%.4f nu=%.4f\n", curve.Slope, curve.Intercept, curve.Nu)

	csvFile := *output
	if csvFile == "" {
		csvFile = fmt.Sprintf("saw-sweep-%s.csv", time.Now().Format("20060102_150405"))
	}
	if err := writeCSV(csvFile, curve); err != nil {
		log.Fatalf("failed to write CSV: %v", err)
	}
	log.Printf("wrote %s", csvFile)

	if *plotFile != "" {
		if err := monitor.SaveScalingPlot(curve, *plotFile); err != nil {
			log.Fatalf("failed to write scaling plot: %v", err)
		}
		log.Printf("wrote %s", *plotFile)
	}
	if *successPlotFile != "" {
		if err := monitor.SaveSuccessPlot(curve, *successPlotFile); err != nil {
			log.Fatalf("failed to write success plot: %v", err)
		}
		log.Printf("wrote %s", *successPlotFile)
	}

	if *dbFile != "" {
		if err := persist(*dbFile, *migrationsDir, spec, curve); err != nil {
			log.Fatalf("failed to persist sweep: %v", err)
		}
		log.Printf("persisted sweep to %s", *dbFile)
	}
}

func writeCSV(filename string, curve *scaling.Curve) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"n", "success_rate", "success_norm", "fail_norm", "both_norm"}); err != nil {
		return err
	}
	for _, p := range curve.Points {
		row := []string{
			fmt.Sprintf("%d", p.N),
			fmt.Sprintf("%.4f", p.SuccessRate),
			fmt.Sprintf("%.6f", p.SuccessNorm),
			fmt.Sprintf("%.6f", p.FailNorm),
			fmt.Sprintf("%.6f", p.BothNorm),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func persist(dbFile, migrationsDir string, spec scaling.NRangeSpec, curve *scaling.Curve) error {
	database, err := db.New(dbFile)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateUp(migrationsDir); err != nil {
		return err
	}

	series, err := json.Marshal(curve.Points)
	if err != nil {
		return err
	}

	store := sqlite.NewRunStore(database.DB)
	return store.InsertSweepRun(&sqlite.SweepRun{
		NMin:       spec.Min,
		NMax:       spec.Max,
		NStep:      spec.Step,
		Trials:     curve.Trials,
		Seed:       curve.Seed,
		Slope:      curve.Slope,
		Intercept:  curve.Intercept,
		Nu:         curve.Nu,
		SeriesJSON: series,
	})
}
