package handler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/cpm/internal/model"
)

func skillTestManifest() *model.PackageManifest {
	return &model.PackageManifest{
		Name:    "code-review",
		Version: "2.0.0",
		Type:    model.TypeSkill,
		Skill: &model.SkillConfig{
			Command:     "/review",
			Description: "Reviews the current diff for issues.",
		},
	}
}

func TestSkillHandlerInstallMaterializesCommandFile(t *testing.T) {
	target := t.TempDir()

	h := NewSkillHandler()
	written, err := h.Install(&InstallContext{
		Manifest:   skillTestManifest(),
		FolderName: "code-review",
		TargetDir:  target,
		Platform:   model.ClaudeCode,
	})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("written = %v, want command file + metadata", written)
	}

	data, err := os.ReadFile(filepath.Join(target, "code-review", "review.md"))
	if err != nil {
		t.Fatalf("command file missing: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "# /review") {
		t.Errorf("command file missing heading: %q", content)
	}
	if !strings.Contains(content, "Reviews the current diff") {
		t.Errorf("command file missing description: %q", content)
	}

	meta, err := ReadMetadata(filepath.Join(target, "code-review"))
	if err != nil || meta == nil {
		t.Fatalf("metadata missing: %v", err)
	}
	if meta.Type != model.TypeSkill {
		t.Errorf("metadata type = %s, want skill", meta.Type)
	}
}

func TestSkillHandlerInstallPrefersScratchContent(t *testing.T) {
	scratch := t.TempDir()
	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(scratch, "review.md"), []byte("# downloaded"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewSkillHandler()
	_, err := h.Install(&InstallContext{
		Manifest:   skillTestManifest(),
		FolderName: "code-review",
		TargetDir:  target,
		ScratchDir: scratch,
		Platform:   model.ClaudeCode,
	})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(target, "code-review", "review.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# downloaded" {
		t.Errorf("scratch content not preferred: %q", data)
	}
}

func TestSkillHandlerInstallRequiresCommand(t *testing.T) {
	manifest := &model.PackageManifest{
		Name:    "broken",
		Version: "1.0.0",
		Type:    model.TypeSkill,
	}

	h := NewSkillHandler()
	_, err := h.Install(&InstallContext{
		Manifest:   manifest,
		FolderName: "broken",
		TargetDir:  t.TempDir(),
		Platform:   model.ClaudeCode,
	})

	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Field != "skill.command" {
		t.Errorf("Field = %q, want skill.command", schemaErr.Field)
	}
}
