package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validPreset = `{
	"name": "Test Config",
	"description": "Test configuration",
	"difficulty": 2,
	"difficulties": [2, 4],
	"settle_delay_ms": 500,
	"catalog": ["a", "b", "c", "d", "e", "f", "g", "h"],
	"messages": {
		"welcome": "Welcome!",
		"match": "Match!",
		"mismatch": "Nope",
		"victory": "Won in %d moves, %ds"
	}
}`

func writePreset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writePreset(t, t.TempDir(), "test.json", validPreset)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}

	if result.File != "test.json" {
		t.Errorf("Expected file name test.json, got %s", result.File)
	}

	report := strings.Join(result.Errors, "\n")
	for _, want := range []string{"Default board: 2x2 (2 pairs)", "Offered boards: 2x2, 4x4", "Catalog: 8 symbols, fills 2x2, 4x4"} {
		if !strings.Contains(report, want) {
			t.Errorf("Expected %q in report:\n%s", want, report)
		}
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid JSON",
			content: `{"name": "test", invalid json}`,
			wantErr: "Invalid JSON",
		},
		{
			name:    "missing name",
			content: strings.Replace(validPreset, `"Test Config"`, `""`, 1),
			wantErr: "name is required",
		},
		{
			name:    "duplicate symbol",
			content: strings.Replace(validPreset, `"b", "c"`, `"a", "c"`, 1),
			wantErr: "duplicates entry 1",
		},
		{
			name:    "odd board",
			content: strings.Replace(validPreset, `"difficulty": 2`, `"difficulty": 3`, 1),
			wantErr: "odd number of cards",
		},
		{
			name:    "offered board too large",
			content: strings.Replace(validPreset, `[2, 4]`, `[2, 6]`, 1),
			wantErr: "needs 18 symbols",
		},
		{
			name:    "victory placeholders",
			content: strings.Replace(validPreset, `Won in %d moves, %ds`, `Won!`, 1),
			wantErr: "messages.victory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePreset(t, t.TempDir(), "bad.json", tt.content)

			result := validateConfig(path)
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !strings.Contains(strings.Join(result.Errors, "\n"), tt.wantErr) {
				t.Errorf("Expected %q in errors, got %v", tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.json")

	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateConfig_Warnings(t *testing.T) {
	content := strings.Replace(validPreset, `"match": "Match!",`, ``, 1)
	path := writePreset(t, t.TempDir(), "warn.json", content)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("warnings must not invalidate: %v", result.Errors)
	}
	if !strings.Contains(strings.Join(result.Errors, "\n"), "messages.match is empty") {
		t.Errorf("Expected match warning, got %v", result.Errors)
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "good.json", validPreset)

	var out bytes.Buffer
	if !validateDir(dir, &out) {
		t.Fatalf("Expected directory to validate:\n%s", out.String())
	}

	writePreset(t, dir, "broken.json", `{}`)
	out.Reset()
	if validateDir(dir, &out) {
		t.Error("Expected failure with an invalid preset")
	}
	if !strings.Contains(out.String(), "broken.json") || !strings.Contains(out.String(), "❌ INVALID") {
		t.Errorf("unexpected report:\n%s", out.String())
	}

	out.Reset()
	if validateDir(t.TempDir(), &out) {
		t.Error("Expected failure for an empty directory")
	}
}

func TestShippedConfigs(t *testing.T) {
	if _, err := os.Stat("../configs"); os.IsNotExist(err) {
		t.Skip("configs directory not found")
	}

	var out bytes.Buffer
	if !validateDir("../configs", &out) {
		t.Errorf("shipped presets are invalid:\n%s", out.String())
	}
}
