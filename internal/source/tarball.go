package source

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/progress"
	"github.com/klauern/cpm/internal/security"
)

const (
	tarballPriority = 2

	// DefaultDownloadTimeout bounds the full archive download.
	DefaultDownloadTimeout = 30 * time.Second

	maxArchiveBytes = 100 << 20 // 100 MiB
	maxEntryBytes   = 20 << 20  // 20 MiB per extracted file
)

// TarballSource downloads a package's tar.gz archive into the scratch
// directory, extracts it, and parses the manifest from the extracted
// tree. Slower than the direct repository fetch but carries the full
// package contents.
type TarballSource struct {
	httpClient *http.Client

	// allowInsecure relaxes the HTTPS requirement for local test
	// servers. Never set outside tests.
	allowInsecure bool
}

// NewTarballSource creates a tarball archive source. A zero timeout
// selects DefaultDownloadTimeout.
func NewTarballSource(timeout time.Duration) *TarballSource {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	return &TarballSource{
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *TarballSource) Name() string  { return "tarball" }
func (s *TarballSource) Priority() int { return tarballPriority }

// CanFetch reports whether the reference carries a tarball URL with an
// encrypted transport scheme.
func (s *TarballSource) CanFetch(ref *model.PackageReference) bool {
	if ref == nil || ref.Tarball == "" {
		return false
	}
	u, err := url.Parse(ref.Tarball)
	if err != nil {
		return false
	}
	if u.Scheme == "https" {
		return true
	}
	return s.allowInsecure && u.Scheme == "http"
}

// Fetch downloads and extracts the archive, then looks for the
// manifest at the extraction root or one directory below it (archives
// commonly wrap their contents in a single top-level folder). Any
// transport or archive failure is a soft miss.
func (s *TarballSource) Fetch(ctx context.Context, ref *model.PackageReference, scratchDir string) (*model.PackageManifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.Tarball, nil)
	if err != nil {
		return nil, fmt.Errorf("building tarball request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logging.Debug("tarball download failed",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Debug("tarball not available",
			logging.Package(ref.Name),
			logging.Path(ref.Tarball))
		return nil, nil
	}

	bar := progress.New(progress.Options{
		Max:         resp.ContentLength,
		Description: fmt.Sprintf("Downloading %s", ref.BareName()),
	})
	defer bar.Finish() //nolint:errcheck

	body := io.LimitReader(resp.Body, maxArchiveBytes)
	reader := io.TeeReader(body, progressWriter{bar})

	if err := extractTarGz(reader, scratchDir); err != nil {
		logging.Warn("tarball extraction failed",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}

	manifestPath, err := findManifest(scratchDir)
	if err != nil {
		logging.Warn("tarball missing manifest",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		logging.Warn("reading extracted manifest failed",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}

	manifest, err := model.ParseManifest(data)
	if err != nil {
		logging.Warn("tarball manifest invalid",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}
	return manifest, nil
}

// progressWriter adapts a progress.Bar to io.Writer for TeeReader.
type progressWriter struct {
	bar *progress.Bar
}

func (w progressWriter) Write(p []byte) (int, error) {
	_ = w.bar.Add(len(p))
	return len(p), nil
}

// extractTarGz unpacks a gzip-compressed tar stream into destDir.
// Entries whose resolved destination escapes destDir are skipped with
// a warning, as are symlinks and other non-regular entries.
func extractTarGz(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading archive entry: %w", err)
		}

		dest := filepath.Join(destDir, filepath.FromSlash(hdr.Name))
		if !security.IsPathWithinDirectory(dest, destDir) {
			logging.Warn("skipping archive entry outside extraction directory",
				logging.Path(hdr.Name))
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o750); err != nil {
				return fmt.Errorf("creating directory %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
				return fmt.Errorf("creating parent for %s: %w", hdr.Name, err)
			}
			if err := writeEntry(dest, tr); err != nil {
				return fmt.Errorf("writing %s: %w", hdr.Name, err)
			}
		default:
			// Symlinks, hard links, devices: never extracted.
			logging.Warn("skipping non-regular archive entry",
				logging.Path(hdr.Name))
		}
	}
	return nil
}

func writeEntry(dest string, r io.Reader) error {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, maxEntryBytes+1))
	if err != nil {
		return err
	}
	if n > maxEntryBytes {
		return fmt.Errorf("entry exceeds %d byte limit", maxEntryBytes)
	}
	return f.Close()
}

// findManifest locates the manifest file at root, or exactly one
// level down inside a wrapping top-level directory.
func findManifest(root string) (string, error) {
	direct := filepath.Join(root, ManifestFilename)
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		nested := filepath.Join(root, entry.Name(), ManifestFilename)
		if _, err := os.Stat(nested); err == nil {
			return nested, nil
		}
	}
	return "", fmt.Errorf("no %s found in extracted archive", ManifestFilename)
}
