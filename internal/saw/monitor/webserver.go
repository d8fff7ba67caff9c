// Package monitor exposes the simulator over HTTP: a JSON API for running
// ensembles and sweeps, plus server-rendered charts for quick inspection.
// It consumes only the core's exported records and snapshots.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/polymer.report/internal/config"
	"github.com/banshee-data/polymer.report/internal/httputil"
	"github.com/banshee-data/polymer.report/internal/saw"
	"github.com/banshee-data/polymer.report/internal/saw/ensemble"
	"github.com/banshee-data/polymer.report/internal/saw/scaling"
	sqlite "github.com/banshee-data/polymer.report/internal/saw/storage/sqlite"
)

// maxAPIWalkLength bounds request sizes on the synchronous API endpoints.
const maxAPIWalkLength = 1024

// WebServer serves the simulation API and charts.
type WebServer struct {
	address string
	server  *http.Server
	store   *sqlite.RunStore
	cfg     *config.SimConfig
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	Store   *sqlite.RunStore
	Config  *config.SimConfig
}

// NewWebServer creates a web server with the provided configuration. A nil
// Store disables persistence; runs are still executed and returned.
func NewWebServer(cfg WebServerConfig) *WebServer {
	ws := &WebServer{
		address: cfg.Address,
		store:   cfg.Store,
		cfg:     cfg.Config,
	}
	if ws.cfg == nil {
		ws.cfg = config.EmptySimConfig()
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.ServeMux(),
	}

	return ws
}

// ServeMux returns the route table, exported so the root server can mount
// it under a prefix.
func (ws *WebServer) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/ensemble", ws.handleEnsemble)
	mux.HandleFunc("/api/sweep", ws.handleSweep)
	mux.HandleFunc("/api/runs", ws.handleListRuns)
	mux.HandleFunc("/api/trajectory", ws.handleTrajectory)
	mux.HandleFunc("/charts/scaling", ws.handleScalingChart)
	mux.HandleFunc("/charts/success", ws.handleSuccessChart)
	mux.HandleFunc("/charts/trajectory", ws.handleTrajectoryChart)

	return mux
}

// Start begins the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{"status": "ok"})
}

// queryInt parses an integer query parameter, falling back to def when
// absent or malformed-negative.
func queryInt(r *http.Request, key string, def int) int {
	if s := r.URL.Query().Get(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}

func queryInt64(r *http.Request, key string, def int64) int64 {
	if s := r.URL.Query().Get(key); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return def
}

func queryMethod(r *http.Request) (saw.Method, error) {
	s := r.URL.Query().Get("method")
	if s == "" {
		return saw.Weighted, nil
	}
	return saw.ParseMethod(s)
}

// handleEnsemble runs one ensemble synchronously and returns its
// statistics. Query params: n (required), trials, method, seed.
func (ws *WebServer) handleEnsemble(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, "method not allowed; use GET or POST")
		return
	}

	n := queryInt(r, "n", 0)
	if n < 1 || n > maxAPIWalkLength {
		httputil.BadRequest(w, fmt.Sprintf("'n' must be in [1,%d]", maxAPIWalkLength))
		return
	}
	method, err := queryMethod(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	trials := queryInt(r, "trials", ws.cfg.GetTrials())
	seed := queryInt64(r, "seed", ws.cfg.GetBaseSeed())

	res, err := ensemble.Run(n, saw.GridSize(ws.cfg.GetGridMargin(), n), trials, method, seed, ws.cfg.GetWorkers())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("ensemble failed: %v", err))
		return
	}

	if ws.store != nil {
		run := &sqlite.EnsembleRun{
			N:           res.N,
			Method:      method.String(),
			Trials:      res.Trials,
			Seed:        res.Seed,
			SuccessRate: res.Stats.SuccessRate,
			SuccessNorm: res.Stats.SuccessNorm,
			FailNorm:    res.Stats.FailNorm,
			BothNorm:    res.Stats.BothNorm,
		}
		if err := ws.store.InsertEnsembleRun(run); err != nil {
			log.Printf("failed to persist ensemble run: %v", err)
		}
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"n":      res.N,
		"method": method.String(),
		"trials": res.Trials,
		"seed":   res.Seed,
		"stats":  res.Stats,
	})
}

// handleSweep runs a scaling sweep synchronously. Query params:
// range ("min:max:step"), trials, seed.
func (ws *WebServer) handleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, "method not allowed; use GET or POST")
		return
	}

	curve, spec, ok := ws.runSweepFromQuery(w, r)
	if !ok {
		return
	}

	if ws.store != nil {
		series, err := json.Marshal(curve.Points)
		if err != nil {
			log.Printf("failed to marshal sweep series: %v", err)
		} else {
			run := &sqlite.SweepRun{
				NMin:       spec.Min,
				NMax:       spec.Max,
				NStep:      spec.Step,
				Trials:     curve.Trials,
				Seed:       curve.Seed,
				Slope:      curve.Slope,
				Intercept:  curve.Intercept,
				Nu:         curve.Nu,
				SeriesJSON: series,
			}
			if err := ws.store.InsertSweepRun(run); err != nil {
				log.Printf("failed to persist sweep run: %v", err)
			}
		}
	}

	httputil.WriteJSONOK(w, curve)
}

// runSweepFromQuery parses sweep parameters and executes the sweep. On
// failure it writes the error response and returns ok=false.
func (ws *WebServer) runSweepFromQuery(w http.ResponseWriter, r *http.Request) (*scaling.Curve, scaling.NRangeSpec, bool) {
	rangeStr := r.URL.Query().Get("range")
	if rangeStr == "" {
		rangeStr = ws.cfg.GetSweepRange()
	}
	spec, err := scaling.ParseNRange(rangeStr)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return nil, spec, false
	}
	if spec.Max > maxAPIWalkLength {
		httputil.BadRequest(w, fmt.Sprintf("range max must not exceed %d", maxAPIWalkLength))
		return nil, spec, false
	}

	trials := queryInt(r, "trials", ws.cfg.GetTrials())
	seed := queryInt64(r, "seed", ws.cfg.GetBaseSeed())

	curve, err := scaling.Sweep(spec.Values(), ws.cfg.GetGridMargin(), trials, seed, ws.cfg.GetWorkers())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("sweep failed: %v", err))
		return nil, spec, false
	}
	return curve, spec, true
}

// handleListRuns returns recent persisted runs of both kinds.
func (ws *WebServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, "method not allowed; use GET")
		return
	}
	if ws.store == nil {
		httputil.ServiceUnavailable(w, "no results database configured")
		return
	}

	limit := queryInt(r, "limit", 20)
	ensembles, err := ws.store.ListEnsembleRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list ensemble runs: %v", err))
		return
	}
	sweeps, err := ws.store.ListSweepRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list sweep runs: %v", err))
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"ensemble_runs": ensembles,
		"sweep_runs":    sweeps,
	})
}

// handleTrajectory runs a single walk and returns the finished walker's
// snapshot: grid visit marks plus the position history, for external
// rendering. Query params: n (required), method, seed.
func (ws *WebServer) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, "method not allowed; use GET")
		return
	}

	snap, rec, ok := ws.runTrajectoryFromQuery(w, r)
	if !ok {
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"record":   rec,
		"snapshot": snap,
	})
}

// runTrajectoryFromQuery executes a single walk for the trajectory
// endpoints. On failure it writes the error response and returns ok=false.
func (ws *WebServer) runTrajectoryFromQuery(w http.ResponseWriter, r *http.Request) (saw.Snapshot, saw.TrialRecord, bool) {
	n := queryInt(r, "n", 0)
	if n < 1 || n > maxAPIWalkLength {
		httputil.BadRequest(w, fmt.Sprintf("'n' must be in [1,%d]", maxAPIWalkLength))
		return saw.Snapshot{}, saw.TrialRecord{}, false
	}
	method, err := queryMethod(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return saw.Snapshot{}, saw.TrialRecord{}, false
	}
	seed := queryInt64(r, "seed", ws.cfg.GetBaseSeed())

	walker, err := saw.NewWalker(n, saw.GridSize(ws.cfg.GetGridMargin(), n), rand.New(rand.NewSource(seed)))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return saw.Snapshot{}, saw.TrialRecord{}, false
	}
	rec := saw.Run(walker, method)
	return walker.Snapshot(), rec, true
}
