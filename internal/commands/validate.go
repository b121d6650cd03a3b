package commands

import (
	"fmt"

	"upside-down-research.com/oss/rtsearch/internal/validation"
)

// ValidateCommand validates a problem instance file
type ValidateCommand struct {
	Instance string `arg:"" name:"instance" help:"Instance file to validate" type:"path"`
	Domain   string `name:"domain" help:"Problem domain: grid or tiles" default:"grid" enum:"grid,tiles"`
}

// Run executes the validate command
func (cmd *ValidateCommand) Run() error {
	fmt.Printf("📋 Validating %s instance: %s\n\n", cmd.Domain, cmd.Instance)

	result := validation.ValidateInstance(cmd.Instance, cmd.Domain)
	validation.PrintValidationResult(result)

	if !result.IsValid() {
		return fmt.Errorf("validation failed")
	}

	return nil
}
