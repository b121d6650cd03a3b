package commands

import (
	"fmt"
	"os"

	"upside-down-research.com/oss/rtsearch/internal/config"
	"upside-down-research.com/oss/rtsearch/internal/validation"
)

// DoctorCommand runs system diagnostics
type DoctorCommand struct {
	Config string `name:"config" help:"Configuration file path" type:"path"`
}

// Run executes the doctor command
func (cmd *DoctorCommand) Run() error {
	fmt.Println("🏥 Running rtsearch diagnostics...")
	fmt.Println()

	allOk := true

	// Load and validate config
	cfg, err := config.LoadConfig(cmd.Config)
	if err != nil {
		fmt.Printf("❌ Config: %v\n", err)
		allOk = false
	} else {
		result := validation.ValidateConfig(cfg)
		if result.IsValid() {
			fmt.Println("✓ Configuration: valid")
		} else {
			fmt.Println("❌ Configuration: has errors")
			for _, e := range result.Errors {
				fmt.Printf("  • %s\n", e.Error())
			}
			allOk = false
		}
		if len(result.Warnings) > 0 {
			fmt.Println("⚠️  Configuration: has warnings")
			for _, w := range result.Warnings {
				fmt.Printf("  • %s: %s\n", w.Field, w.Message)
			}
		}
	}

	// Check output directory
	if cfg != nil && cfg.Output.Directory != "" {
		err := validation.ValidateOutputDirectory(cfg.Output.Directory)
		if err == nil {
			fmt.Printf("✓ Output directory: %s (writable)\n", cfg.Output.Directory)
		} else {
			fmt.Printf("❌ Output directory: %v\n", err)
			allOk = false
		}
	}

	// Check telemetry wiring
	if cfg != nil && cfg.Telemetry.Enabled {
		if cfg.Telemetry.InfluxToken == "" && os.Getenv("INFLUX_TOKEN") == "" {
			fmt.Println("⚠️  Influx token: not found")
			fmt.Println("  Note: set INFLUX_TOKEN if influx recording is wanted")
		} else {
			fmt.Println("✓ Influx token: configured")
		}
	}

	fmt.Println()
	if allOk {
		fmt.Println("🎉 All systems ready!")
		return nil
	}
	return fmt.Errorf("diagnostics found problems")
}
