package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"upside-down-research.com/oss/rtsearch/internal/config"
	"upside-down-research.com/oss/rtsearch/internal/domain"
	"upside-down-research.com/oss/rtsearch/internal/domain/grid"
	"upside-down-research.com/oss/rtsearch/internal/domain/tiles"
	"upside-down-research.com/oss/rtsearch/internal/o11y"
	"upside-down-research.com/oss/rtsearch/internal/search"
)

// SolveCommand runs the real-time search on an instance file
type SolveCommand struct {
	Instance  string `arg:"" name:"instance" help:"Problem instance file" type:"path"`
	Domain    string `name:"domain" help:"Problem domain: grid or tiles" default:"grid" enum:"grid,tiles"`
	Alg       string `name:"alg" help:"Decision algorithm: one, alltheway, dynamicLookahead, dtrts, dydtrts"`
	Expansion string `name:"expansion" help:"Expansion order: astar or fhat"`
	Lookahead uint   `name:"lookahead" help:"Expansion budget per decision"`
	Out       string `name:"out" help:"Directory for the result JSON (overrides config)"`
	Config    string `name:"config" help:"Configuration file path" type:"path"`
}

// Run executes the solve command
func (cmd *SolveCommand) Run() error {
	cfg, err := config.LoadConfig(cmd.Config)
	if err != nil {
		return err
	}

	alg := cfg.Solver.Algorithm
	if cmd.Alg != "" {
		alg = cmd.Alg
	}
	expansion := cfg.Solver.Expansion
	if cmd.Expansion != "" {
		expansion = cmd.Expansion
	}
	lookahead := cfg.Solver.Lookahead
	if cmd.Lookahead != 0 {
		lookahead = cmd.Lookahead
	}
	outDir := cfg.Output.Directory
	if cmd.Out != "" {
		outDir = cmd.Out
	}

	dom, err := loadDomain(cmd.Domain, cmd.Instance)
	if err != nil {
		return err
	}

	solver, err := search.New(dom, expansion, alg, lookahead)
	if err != nil {
		return err
	}

	log.Info("starting search",
		"instance", cmd.Instance,
		"domain", cmd.Domain,
		"alg", alg,
		"expansion", expansion,
		"lookahead", lookahead)

	started := time.Now()
	res := solver.Search()
	elapsed := time.Since(started)

	log.Info("search finished",
		"found", res.SolutionFound,
		"cost", res.SolutionCost,
		"length", res.SolutionLength,
		"expanded", res.NodesExpanded,
		"generated", res.NodesGenerated,
		"gat", res.GATNodesExpanded,
		"elapsed", elapsed)

	runID := uuid.New().String()
	if outDir != "" {
		doc := &search.ResultDocument{
			RunID:      runID,
			Domain:     cmd.Domain,
			Instance:   cmd.Instance,
			Algorithm:  alg,
			Expansion:  expansion,
			Lookahead:  lookahead,
			FinishedAt: time.Now(),
			Result:     res,
		}
		path, err := search.SaveResult(outDir, doc)
		if err != nil {
			return err
		}
		log.Info("result written", "path", path, "runId", runID)
	}

	if cfg.Telemetry.Enabled {
		o11y.Init(cfg.Telemetry.PushgatewayURL)
		tags := map[string]string{"algorithm": alg, "domain": cmd.Domain}
		o11y.WriteData(tags, res.SolutionCost)
		o11y.SearchCounter.WithLabelValues(alg, cmd.Domain, fmt.Sprintf("%t", res.SolutionFound)).Inc()

		if cfg.Telemetry.InfluxURL != "" {
			sink := o11y.InfluxSink{
				URL:    cfg.Telemetry.InfluxURL,
				Org:    cfg.Telemetry.InfluxOrg,
				Bucket: cfg.Telemetry.InfluxBucket,
				Token:  cfg.Telemetry.InfluxToken,
			}
			err := sink.Record("search_run", tags, map[string]interface{}{
				"run_id":     runID,
				"found":      res.SolutionFound,
				"cost":       res.SolutionCost,
				"length":     res.SolutionLength,
				"expanded":   res.NodesExpanded,
				"gat":        res.GATNodesExpanded,
				"elapsed_ms": elapsed.Milliseconds(),
			})
			if err != nil {
				log.Warn("influx record failed", "error", err)
			}
		}
	}

	if !res.SolutionFound {
		return fmt.Errorf("no solution found")
	}
	return nil
}

func loadDomain(name, instance string) (domain.Domain, error) {
	f, err := os.Open(instance)
	if err != nil {
		return nil, fmt.Errorf("failed to open instance: %w", err)
	}
	defer f.Close()

	switch name {
	case "grid":
		return grid.Parse(f)
	case "tiles":
		return tiles.Parse(f)
	default:
		return nil, fmt.Errorf("unknown domain %q", name)
	}
}
