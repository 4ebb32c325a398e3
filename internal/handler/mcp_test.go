package handler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauern/cpm/internal/model"
)

func mcpTestManifest(name, command string) *model.PackageManifest {
	return &model.PackageManifest{
		Name:    name,
		Version: "1.0.0",
		Type:    model.TypeMCP,
		MCP: &model.MCPConfig{
			Command: command,
			Args:    []string{"-y", "@cpm/" + name},
		},
	}
}

func readConfigDoc(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	return doc
}

func readServers(t *testing.T, path string) map[string]mcpServerEntry {
	t.Helper()
	doc := readConfigDoc(t, path)
	servers := make(map[string]mcpServerEntry)
	if raw, ok := doc[mcpServersKey]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			t.Fatalf("parsing mcpServers: %v", err)
		}
	}
	return servers
}

func TestMCPHandlerInstallCreatesConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")

	h := NewMCPHandler()
	written, err := h.Install(&InstallContext{
		Manifest:   mcpTestManifest("github-tools", "npx"),
		FolderName: "github-tools",
		ConfigPath: configPath,
		Platform:   model.ClaudeCode,
	})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if len(written) != 1 || written[0] != configPath {
		t.Errorf("written = %v, want the config path", written)
	}

	servers := readServers(t, configPath)
	entry, ok := servers["github-tools"]
	if !ok {
		t.Fatalf("server entry missing: %v", servers)
	}
	if entry.Command != "npx" {
		t.Errorf("command = %q, want npx", entry.Command)
	}
}

func TestMCPHandlerInstallPreservesUnrelatedKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")
	seed := `{
		"theme": "dark",
		"mcpServers": {
			"existing": {"command": "node", "args": ["server.js"]}
		}
	}`
	if err := os.WriteFile(configPath, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewMCPHandler()
	if _, err := h.Install(&InstallContext{
		Manifest:   mcpTestManifest("new-tool", "uvx"),
		FolderName: "new-tool",
		ConfigPath: configPath,
		Platform:   model.ClaudeCode,
	}); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	doc := readConfigDoc(t, configPath)
	if _, ok := doc["theme"]; !ok {
		t.Error("unrelated top-level key was dropped")
	}

	servers := readServers(t, configPath)
	if _, ok := servers["existing"]; !ok {
		t.Error("pre-existing server entry was dropped")
	}
	if _, ok := servers["new-tool"]; !ok {
		t.Error("new server entry missing")
	}
}

func TestMCPHandlerInstallRejectsUnsafeConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")

	h := NewMCPHandler()
	_, err := h.Install(&InstallContext{
		Manifest:   mcpTestManifest("danger", "bash"),
		FolderName: "danger",
		ConfigPath: configPath,
		Platform:   model.ClaudeCode,
	})
	if err == nil {
		t.Fatal("expected rejection for disallowed command")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Errorf("error = %v, want security rejection", err)
	}
	if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
		t.Error("rejected config must not touch the file")
	}
}

func TestMCPHandlerCorruptConfigBackedUp(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".mcp.json")
	if err := os.WriteFile(configPath, []byte("{corrupt"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewMCPHandler()
	if _, err := h.Install(&InstallContext{
		Manifest:   mcpTestManifest("fresh", "npx"),
		FolderName: "fresh",
		ConfigPath: configPath,
		Platform:   model.ClaudeCode,
	}); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	backups, err := filepath.Glob(configPath + ".corrupt-*")
	if err != nil || len(backups) != 1 {
		t.Fatalf("expected one corrupt backup, got %v (%v)", backups, err)
	}
	backupData, err := os.ReadFile(backups[0])
	if err != nil || string(backupData) != "{corrupt" {
		t.Errorf("backup content = %q, want original corrupt bytes", backupData)
	}

	servers := readServers(t, configPath)
	if _, ok := servers["fresh"]; !ok {
		t.Error("fresh config missing new entry after recovery")
	}
}

func TestMCPHandlerUninstallRemovesOnlyTargetKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")
	seed := `{
		"mcpServers": {
			"keep": {"command": "node"},
			"remove": {"command": "npx"}
		}
	}`
	if err := os.WriteFile(configPath, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewMCPHandler()
	removed, err := h.Uninstall(&UninstallContext{
		FolderName: "remove",
		ConfigPath: configPath,
		Platform:   model.ClaudeCode,
	})
	if err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if len(removed) != 1 {
		t.Errorf("removed = %v, want the config path", removed)
	}

	servers := readServers(t, configPath)
	if _, ok := servers["keep"]; !ok {
		t.Error("unrelated server entry was removed")
	}
	if _, ok := servers["remove"]; ok {
		t.Error("target server entry still present")
	}
}

func TestMCPHandlerUninstallMissingIsNotAnError(t *testing.T) {
	h := NewMCPHandler()

	t.Run("no config file", func(t *testing.T) {
		removed, err := h.Uninstall(&UninstallContext{
			FolderName: "ghost",
			ConfigPath: filepath.Join(t.TempDir(), ".mcp.json"),
		})
		if err != nil || removed != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", removed, err)
		}
	})

	t.Run("no matching key", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), ".mcp.json")
		if err := os.WriteFile(configPath, []byte(`{"mcpServers":{}}`), 0o644); err != nil {
			t.Fatal(err)
		}
		removed, err := h.Uninstall(&UninstallContext{
			FolderName: "ghost",
			ConfigPath: configPath,
		})
		if err != nil || removed != nil {
			t.Errorf("got (%v, %v), want (nil, nil)", removed, err)
		}
	})
}

func TestMCPHandlerConcurrentInstallsKeepBothEntries(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")
	h := NewMCPHandler()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, name := range []string{"tool-a", "tool-b"} {
		wg.Add(1)
		go func(idx int, pkg string) {
			defer wg.Done()
			_, errs[idx] = h.Install(&InstallContext{
				Manifest:   mcpTestManifest(pkg, "npx"),
				FolderName: pkg,
				ConfigPath: configPath,
				Platform:   model.ClaudeCode,
			})
		}(i, name)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("install %d failed: %v", i, err)
		}
	}

	servers := readServers(t, configPath)
	if len(servers) != 2 {
		t.Fatalf("servers = %v, want both entries", servers)
	}
}

func TestInstalledServerKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")

	keys, err := InstalledServerKeys(configPath)
	if err != nil || keys != nil {
		t.Errorf("missing file: got (%v, %v), want (nil, nil)", keys, err)
	}

	seed := `{"mcpServers": {"a": {"command": "npx"}, "b": {"command": "node"}}}`
	if err := os.WriteFile(configPath, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	keys, err = InstalledServerKeys(configPath)
	if err != nil {
		t.Fatalf("InstalledServerKeys() error = %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("keys = %v, want 2", keys)
	}
}
