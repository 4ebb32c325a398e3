package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauern/cpm/internal/logging"
	"github.com/klauern/cpm/internal/model"
)

const (
	githubPriority = 1

	// DefaultManifestTimeout bounds the single metadata-file fetch.
	DefaultManifestTimeout = 5 * time.Second

	// ManifestFilename is the manifest document looked up at the root
	// of a package repository or archive.
	ManifestFilename = "cpm.json"

	maxManifestBytes = 1 << 20 // 1 MiB
)

// GitHubSource fetches a package's manifest file directly from the
// raw-content endpoint of its GitHub repository. It is the fastest
// source: a single small HTTPS request, no archive handling.
type GitHubSource struct {
	httpClient *http.Client
	rawBaseURL string
}

// NewGitHubSource creates a GitHub manifest source. A zero timeout
// selects DefaultManifestTimeout.
func NewGitHubSource(timeout time.Duration) *GitHubSource {
	if timeout <= 0 {
		timeout = DefaultManifestTimeout
	}
	return &GitHubSource{
		httpClient: &http.Client{Timeout: timeout},
		rawBaseURL: "https://raw.githubusercontent.com",
	}
}

func (s *GitHubSource) Name() string  { return "github" }
func (s *GitHubSource) Priority() int { return githubPriority }

// CanFetch reports whether the reference carries an HTTPS GitHub
// repository URL.
func (s *GitHubSource) CanFetch(ref *model.PackageReference) bool {
	if ref == nil || ref.Repository == "" {
		return false
	}
	u, err := url.Parse(ref.Repository)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Host)
	return host == "github.com" || host == "www.github.com"
}

// Fetch retrieves and parses the manifest file from the repository's
// default branch. Transport errors, non-200 responses, and parse
// failures are all soft misses.
func (s *GitHubSource) Fetch(ctx context.Context, ref *model.PackageReference, _ string) (*model.PackageManifest, error) {
	repoPath, err := repositoryPath(ref.Repository)
	if err != nil {
		logging.Warn("unusable repository URL",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}

	manifestURL := fmt.Sprintf("%s/%s/HEAD/%s", s.rawBaseURL, repoPath, ManifestFilename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building manifest request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logging.Debug("manifest fetch failed",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Debug("manifest not found in repository",
			logging.Package(ref.Name),
			logging.Path(manifestURL))
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		logging.Debug("reading manifest body failed",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}

	manifest, err := model.ParseManifest(data)
	if err != nil {
		logging.Warn("repository manifest invalid",
			logging.Package(ref.Name), logging.Err(err))
		return nil, nil
	}
	return manifest, nil
}

// repositoryPath extracts "owner/repo" from a GitHub repository URL,
// dropping a trailing ".git" suffix.
func repositoryPath(repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", err
	}
	path := strings.Trim(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("repository URL %q has no owner/repo path", repoURL)
	}
	return parts[0] + "/" + parts[1], nil
}
