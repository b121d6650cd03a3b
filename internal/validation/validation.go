package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"upside-down-research.com/oss/rtsearch/internal/config"
	"upside-down-research.com/oss/rtsearch/internal/domain/grid"
	"upside-down-research.com/oss/rtsearch/internal/domain/tiles"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
	Fix     string // Suggested fix
}

func (e ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Field, e.Message)
	if e.Fix != "" {
		msg += fmt.Sprintf("\n  Fix: %s", e.Fix)
	}
	return msg
}

// ValidationResult holds validation results
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

// AddError adds a validation error
func (v *ValidationResult) AddError(field, message, fix string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
		Fix:     fix,
	})
}

// AddWarning adds a validation warning
func (v *ValidationResult) AddWarning(field, message, fix string) {
	v.Warnings = append(v.Warnings, ValidationError{
		Field:   field,
		Message: message,
		Fix:     fix,
	})
}

var validAlgorithms = map[string]bool{
	"one":              true,
	"alltheway":        true,
	"dynamicLookahead": true,
	"dtrts":            true,
	"dydtrts":          true,
}

var validExpansions = map[string]bool{
	"astar": true,
	"fhat":  true,
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}

	if !validAlgorithms[cfg.Solver.Algorithm] {
		result.AddError("solver.algorithm",
			fmt.Sprintf("unknown algorithm %q", cfg.Solver.Algorithm),
			"use one of: one, alltheway, dynamicLookahead, dtrts, dydtrts")
	}
	if !validExpansions[cfg.Solver.Expansion] {
		result.AddError("solver.expansion",
			fmt.Sprintf("unknown expansion order %q", cfg.Solver.Expansion),
			"use astar or fhat")
	}
	if cfg.Solver.Lookahead < 2 {
		result.AddError("solver.lookahead",
			fmt.Sprintf("lookahead %d is below the minimum of 2", cfg.Solver.Lookahead),
			"set solver.lookahead to at least 2")
	}

	if cfg.Output.Directory == "" {
		result.AddWarning("output.directory", "no output directory set; results will not be persisted", "")
	}

	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.PushgatewayURL == "" {
			result.AddError("telemetry.pushgateway_url", "telemetry enabled but no push gateway URL set",
				"set telemetry.pushgateway_url or disable telemetry")
		}
		if cfg.Telemetry.InfluxURL != "" && cfg.Telemetry.InfluxToken == "" {
			result.AddWarning("telemetry.influx_token", "influx URL set without a token", "set INFLUX_TOKEN and use ${INFLUX_TOKEN}")
		}
	}

	return result
}

// ValidateInstance checks that an instance file exists and parses for the
// given domain ("grid" or "tiles")
func ValidateInstance(path, domainName string) *ValidationResult {
	result := &ValidationResult{}

	f, err := os.Open(path)
	if err != nil {
		result.AddError("instance", fmt.Sprintf("cannot open %s: %v", path, err), "")
		return result
	}
	defer f.Close()

	switch domainName {
	case "grid":
		if _, err := grid.Parse(f); err != nil {
			result.AddError("instance", fmt.Sprintf("bad grid map: %v", err), "")
		}
	case "tiles":
		if _, err := tiles.Parse(f); err != nil {
			result.AddError("instance", fmt.Sprintf("bad tile instance: %v", err), "")
		}
	default:
		result.AddError("domain", fmt.Sprintf("unknown domain %q", domainName), "use grid or tiles")
	}

	return result
}

// ValidateOutputDirectory checks the directory exists or can be created and
// is writable
func ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	probe := filepath.Join(dir, ".rtsearch-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	_ = os.Remove(probe)
	return nil
}

// PrintValidationResult prints errors and warnings to stdout
func PrintValidationResult(result *ValidationResult) {
	for _, e := range result.Errors {
		fmt.Printf("❌ %s\n", e.Error())
	}
	for _, w := range result.Warnings {
		fmt.Printf("⚠️  %s: %s\n", w.Field, w.Message)
	}
	if result.IsValid() {
		fmt.Println("✓ Valid")
	}
}
