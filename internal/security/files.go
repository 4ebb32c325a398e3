package security

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// DefaultContentExtensions are the file extensions accepted for
// downloaded package content files.
var DefaultContentExtensions = []string{".md", ".mdc", ".txt", ".json"}

// unsafeFilenameChars are replaced in file names and stripped from
// folder names.
const unsafeFilenameChars = `<>:"|?*`

// SanitizeFilename validates and normalizes a candidate content file
// name. Directory components are stripped so only the base name is
// considered. The sanitized name is returned alongside the result; on
// failure the name is empty.
func SanitizeFilename(name string, allowedExtensions []string) (string, Result) {
	if name == "" {
		return "", fail("filename is empty")
	}
	if strings.ContainsRune(name, 0) {
		return "", fail("filename contains a null byte")
	}

	base := filepath.Base(filepath.ToSlash(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fail(fmt.Sprintf("filename %q has no usable base name", name))
	}
	if strings.HasPrefix(base, ".") {
		return "", fail(fmt.Sprintf("hidden file %q is not allowed", base))
	}

	if len(allowedExtensions) == 0 {
		allowedExtensions = DefaultContentExtensions
	}
	ext := strings.ToLower(filepath.Ext(base))
	allowed := false
	for _, e := range allowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fail(fmt.Sprintf("file extension %q is not allowed", ext))
	}

	sanitized := strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(unsafeFilenameChars, r) {
			return '_'
		}
		return r
	}, base)

	return sanitized, ok()
}

// SanitizeFolderName derives a safe single path segment from a package
// name. Unlike SanitizeFilename this is a hard gate: an unrecoverable
// name returns an error and the caller must abort.
//
// The input is percent-decoded first so encoded traversal sequences
// cannot survive sanitization, and a leading @scope/ segment is
// stripped (@cpm/nextjs-rules becomes nextjs-rules).
func SanitizeFolderName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("package name is empty")
	}

	decoded := name
	if d, err := url.QueryUnescape(name); err == nil {
		decoded = d
	}

	if strings.HasPrefix(decoded, "@") {
		if idx := strings.Index(decoded, "/"); idx >= 0 {
			decoded = decoded[idx+1:]
		} else {
			decoded = strings.TrimPrefix(decoded, "@")
		}
	}

	// Remove traversal sequences, including re-encoded variants that a
	// single decode pass would have exposed.
	for _, seq := range []string{"..", "%2e%2e", "%2E%2E"} {
		decoded = strings.ReplaceAll(decoded, seq, "")
	}

	decoded = strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(unsafeFilenameChars+`/\`, r) {
			return -1
		}
		return r
	}, decoded)

	decoded = strings.TrimSpace(decoded)
	if decoded == "" || strings.Trim(decoded, ".") == "" {
		return "", fmt.Errorf("package name %q sanitizes to nothing usable", name)
	}

	cleaned := filepath.Clean(decoded)
	if cleaned != decoded || strings.ContainsAny(cleaned, `/\`) {
		return "", fmt.Errorf("package name %q does not resolve to a single path segment", name)
	}

	return decoded, nil
}

// IsPathWithinDirectory reports whether path equals dir or lies
// strictly under it. Both are resolved to absolute form; the prefix
// comparison is separator-qualified so /a/dir2 never matches /a/dir.
func IsPathWithinDirectory(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}

	if absPath == absDir {
		return true
	}
	return strings.HasPrefix(absPath, absDir+string(filepath.Separator))
}
