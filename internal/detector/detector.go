// Package detector provides platform auto-detection. It scans a project
// directory for the marker directories and config files each AI coding
// assistant leaves behind, so commands can target the platforms a
// project actually uses when none are configured explicitly.
package detector

import (
	"os"
	"path/filepath"

	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/util"
)

// DetectedPlatform is one platform found in a project.
type DetectedPlatform struct {
	Platform model.Platform
	// Marker is the path whose presence triggered the detection.
	Marker string
}

// DetectAll scans the project directory for every supported platform
// and returns the ones that appear to be in use, in platform order.
func DetectAll(projectDir string) []DetectedPlatform {
	var detected []DetectedPlatform
	for _, platform := range model.AllPlatforms() {
		if result, found := DetectPlatform(platform, projectDir); found {
			detected = append(detected, result)
		}
	}
	return detected
}

// DetectPlatform checks whether a single platform is in use in the
// project directory.
func DetectPlatform(platform model.Platform, projectDir string) (DetectedPlatform, bool) {
	for _, marker := range platformMarkers(platform, projectDir) {
		if pathExists(marker) {
			return DetectedPlatform{Platform: platform, Marker: marker}, true
		}
	}
	return DetectedPlatform{}, false
}

// IsInstalled is a boolean convenience over DetectPlatform.
func IsInstalled(platform model.Platform, projectDir string) bool {
	_, found := DetectPlatform(platform, projectDir)
	return found
}

// Platforms returns just the platform names from DetectAll.
func Platforms(projectDir string) []model.Platform {
	detected := DetectAll(projectDir)
	platforms := make([]model.Platform, 0, len(detected))
	for _, d := range detected {
		platforms = append(platforms, d.Platform)
	}
	return platforms
}

// platformMarkers lists the paths whose presence indicates the platform
// is set up in the project, most specific first.
func platformMarkers(platform model.Platform, projectDir string) []string {
	switch platform {
	case model.ClaudeCode:
		return []string{
			util.ClaudeRulesPath(projectDir),
			util.ClaudeCommandsPath(projectDir),
			util.ClaudeMCPConfigPath(projectDir),
			filepath.Join(projectDir, ".claude"),
		}
	case model.Cursor:
		return []string{
			util.CursorRulesPath(projectDir),
			util.CursorMCPConfigPath(projectDir),
			filepath.Join(projectDir, ".cursor"),
		}
	case model.Codex:
		return []string{
			util.CodexRulesPath(projectDir),
			util.CodexConfigPath(projectDir),
			filepath.Join(projectDir, ".codex"),
		}
	}
	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
