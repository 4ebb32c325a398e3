package model

import "testing"

func TestPackageTypeValidation(t *testing.T) {
	tests := map[string]struct {
		packageType PackageType
		valid       bool
	}{
		"rules valid":    {packageType: TypeRules, valid: true},
		"skill valid":    {packageType: TypeSkill, valid: true},
		"mcp valid":      {packageType: TypeMCP, valid: true},
		"agent valid":    {packageType: TypeAgent, valid: true},
		"hook valid":     {packageType: TypeHook, valid: true},
		"workflow valid": {packageType: TypeWorkflow, valid: true},
		"template valid": {packageType: TypeTemplate, valid: true},
		"bundle valid":   {packageType: TypeBundle, valid: true},
		"empty invalid":  {packageType: "", valid: false},
		"unknown":        {packageType: "plugin", valid: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.packageType.IsValid(); got != tt.valid {
				t.Errorf("PackageType(%q).IsValid() = %v, want %v", tt.packageType, got, tt.valid)
			}
		})
	}
}

func TestIsContentGeneric(t *testing.T) {
	generic := []PackageType{TypeAgent, TypeHook, TypeWorkflow, TypeTemplate, TypeBundle}
	for _, pt := range generic {
		if !pt.IsContentGeneric() {
			t.Errorf("%q should be content-generic", pt)
		}
	}
	specific := []PackageType{TypeRules, TypeSkill, TypeMCP}
	for _, pt := range specific {
		if pt.IsContentGeneric() {
			t.Errorf("%q should not be content-generic", pt)
		}
	}
}

func TestParsePackageType(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    PackageType
		wantErr bool
	}{
		"rules exact":         {input: "rules", want: TypeRules},
		"empty returns rules": {input: "", want: TypeRules},
		"mcp exact":           {input: "mcp", want: TypeMCP},
		"tool alias":          {input: "tool", want: TypeMCP},
		"mcp-server alias":    {input: "mcp-server", want: TypeMCP},
		"command alias":       {input: "command", want: TypeSkill},
		"prompt alias":        {input: "prompt", want: TypeSkill},
		"ruleset alias":       {input: "ruleset", want: TypeRules},
		"uppercase":           {input: "SKILL", want: TypeSkill},
		"whitespace":          {input: "  bundle  ", want: TypeBundle},
		"unknown":             {input: "plugin", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParsePackageType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePackageType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePackageType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePlatform(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    Platform
		wantErr bool
	}{
		"claude-code exact": {input: "claude-code", want: ClaudeCode},
		"claude alias":      {input: "claude", want: ClaudeCode},
		"claudecode alias":  {input: "claudecode", want: ClaudeCode},
		"cursor":            {input: "cursor", want: Cursor},
		"codex":             {input: "codex", want: Codex},
		"uppercase":         {input: "CURSOR", want: Cursor},
		"unknown":           {input: "zed", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParsePlatform(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePlatform(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePlatform(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
