package handler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauern/cpm/internal/lock"
	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/security"
)

// mcpServersKey is the shared config key holding server entries. Other
// top-level keys in the same document belong to the platform and are
// preserved untouched across merges.
const mcpServersKey = "mcpServers"

// mcpServerEntry is one server's config inside the shared document.
type mcpServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// MCPHandler merges external-tool server entries into the platform's
// shared JSON config. All mutation happens under the advisory file
// lock, and a failed security validation aborts the whole install.
type MCPHandler struct{}

// NewMCPHandler creates the external-tool handler.
func NewMCPHandler() *MCPHandler {
	return &MCPHandler{}
}

func (h *MCPHandler) Type() model.PackageType { return model.TypeMCP }

// Install validates the server config and merges it into the shared
// config file under the package's key. Validation failure is fatal:
// a rejected config must never be partially applied.
func (h *MCPHandler) Install(ctx *InstallContext) ([]string, error) {
	cfg := ctx.Manifest.MCP
	if cfg == nil || cfg.Command == "" {
		return nil, &model.SchemaError{Field: "mcp.command", Message: "required for mcp packages"}
	}

	if result := security.ValidateMCPConfig(cfg); !result.Valid {
		return nil, fmt.Errorf("mcp config rejected: %s", result.Reason)
	}

	entry := mcpServerEntry{
		Command: cfg.Command,
		Args:    cfg.Args,
		Env:     cfg.Env,
	}

	err := lock.WithLock(ctx.ConfigPath, func() error {
		doc, servers := readSharedConfig(ctx.ConfigPath)
		servers[ctx.FolderName] = entry
		if err := setServers(doc, servers); err != nil {
			return err
		}
		return writeSharedConfig(ctx.ConfigPath, doc)
	})
	if err != nil {
		return nil, err
	}

	logging.Info("mcp server registered",
		logging.Package(ctx.Manifest.Name),
		logging.Platform(string(ctx.Platform)),
		logging.Path(ctx.ConfigPath))
	return []string{ctx.ConfigPath}, nil
}

// Uninstall removes the package's server key under the lock, leaving
// every other entry and top-level key intact. A missing file or
// missing key removes nothing and is not an error.
func (h *MCPHandler) Uninstall(ctx *UninstallContext) ([]string, error) {
	if _, err := os.Stat(ctx.ConfigPath); os.IsNotExist(err) {
		return nil, nil
	}

	removed := false
	err := lock.WithLock(ctx.ConfigPath, func() error {
		doc, servers := readSharedConfig(ctx.ConfigPath)
		if _, ok := servers[ctx.FolderName]; !ok {
			return nil
		}
		delete(servers, ctx.FolderName)
		if err := setServers(doc, servers); err != nil {
			return err
		}
		removed = true
		return writeSharedConfig(ctx.ConfigPath, doc)
	})
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, nil
	}
	return []string{ctx.ConfigPath}, nil
}

// InstalledServerKeys reads the shared config without taking the lock
// and returns the server keys present. Used by the listing scan, which
// tolerates a concurrent writer.
func InstalledServerKeys(configPath string) ([]string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var doc struct {
		MCPServers map[string]json.RawMessage `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}

	keys := make([]string, 0, len(doc.MCPServers))
	for key := range doc.MCPServers {
		keys = append(keys, key)
	}
	return keys, nil
}

// readSharedConfig loads the shared config document and its server
// map. A missing file yields empty maps. A corrupt file is copied to a
// timestamped backup and replaced with a fresh document, logged as a
// warning; existing unrelated top-level keys survive only when the
// file parses.
func readSharedConfig(path string) (map[string]json.RawMessage, map[string]mcpServerEntry) {
	doc := make(map[string]json.RawMessage)
	servers := make(map[string]mcpServerEntry)

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, servers
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		backup := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixMilli())
		if writeErr := os.WriteFile(backup, data, 0o644); writeErr != nil {
			logging.Warn("backing up corrupt config failed",
				logging.Path(path), logging.Err(writeErr))
		} else {
			logging.Warn("corrupt config backed up, starting fresh",
				logging.Path(path), logging.Operation(backup))
		}
		return make(map[string]json.RawMessage), servers
	}

	if raw, ok := doc[mcpServersKey]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			logging.Warn("unreadable mcpServers section, starting fresh",
				logging.Path(path), logging.Err(err))
			servers = make(map[string]mcpServerEntry)
		}
	}
	return doc, servers
}

// setServers re-encodes the server map into the document.
func setServers(doc map[string]json.RawMessage, servers map[string]mcpServerEntry) error {
	raw, err := json.Marshal(servers)
	if err != nil {
		return fmt.Errorf("serializing mcpServers: %w", err)
	}
	doc[mcpServersKey] = raw
	return nil
}

// writeSharedConfig marshals the document back, re-encoding the server
// map and leaving other keys untouched.
func writeSharedConfig(path string, doc map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
