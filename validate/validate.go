// Command validate checks game preset JSON files in a config directory
// (../configs by default, or the first argument). For each preset it checks:
//   - JSON structure and required fields
//   - Catalog symbols are non-blank and unique
//   - The default and offered board sizes can be dealt from the catalog
//   - Settle delay range and the victory message placeholders
//
// Valid presets also report every board size their catalog could fill.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	// Optional texts fall back to empty strings in play
	var warnings []string
	if config.Messages.Match == "" {
		warnings = append(warnings, "⚠ messages.match is empty")
	}
	if config.Messages.Mismatch == "" {
		warnings = append(warnings, "⚠ messages.mismatch is empty")
	}
	if len(config.Difficulties) == 0 {
		warnings = append(warnings, "⚠ difficulties is empty, only the default size is offered")
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Default board: %dx%d (%d pairs)", config.Difficulty, config.Difficulty, engine.PairsFor(config.Difficulty)),
		fmt.Sprintf("✓ Offered boards: %s", formatSizes(config.Difficulties)),
		fmt.Sprintf("✓ Catalog: %d symbols, fills %s", len(config.Catalog), formatSizes(engine.SupportedDifficulties(len(config.Catalog)))),
		fmt.Sprintf("✓ Mismatch delay: %dms", config.SettleDelayMs),
	)
	result.Errors = append(result.Errors, warnings...)

	return result
}

func formatSizes(sizes []int) string {
	if len(sizes) == 0 {
		return "none"
	}
	parts := make([]string, len(sizes))
	for i, d := range sizes {
		parts[i] = fmt.Sprintf("%dx%d", d, d)
	}
	return strings.Join(parts, ", ")
}

// validateDir validates every *.json file in dir and writes a report to out.
// It returns false if any file is invalid or none were found.
func validateDir(dir string, out io.Writer) bool {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Fprintf(out, "Error finding config files: %v\n", err)
		return false
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No config files found in %s\n", dir)
		return false
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(out, "❌ Some configurations have errors")
	}
	return allValid
}

// main validates ../configs, or the directory given as the first argument,
// and exits with non-zero status if any preset is invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	if !validateDir(configDir, os.Stdout) {
		os.Exit(1)
	}
}
