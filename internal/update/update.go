// Package update checks GitHub for newer pgquery releases.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pthm/pgquery/internal/version"
)

const (
	ReleasesURL = "https://api.github.com/repos/pthm/pgquery/releases/latest"
	cacheTTL    = 24 * time.Hour
	cacheFile   = "update-check.json"
)

// Info contains update check results.
type Info struct {
	LatestVersion   string    `json:"latest_version"`
	CurrentVersion  string    `json:"current_version"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
	UpdateAvailable bool      `json:"update_available"`
}

type githubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker fetches the latest release and caches the answer on disk.
// The zero value is not usable; call NewChecker.
type Checker struct {
	URL      string
	CacheDir string
	Current  string
	Client   *http.Client
}

// NewChecker returns a Checker for the public release feed, caching under
// $XDG_CACHE_HOME/pgquery (or ~/.cache/pgquery).
func NewChecker() (*Checker, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return &Checker{
		URL:      ReleasesURL,
		CacheDir: dir,
		Current:  version.Version,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// CheckWithCache answers from the cache when it is younger than a day and
// fetches otherwise. Cache write failures are ignored.
func (c *Checker) CheckWithCache(ctx context.Context) (*Info, error) {
	if info, err := c.loadCache(); err == nil && time.Since(info.CheckedAt) < cacheTTL {
		info.CurrentVersion = c.Current
		info.UpdateAvailable = compareVersions(c.Current, info.LatestVersion) < 0
		return info, nil
	}

	info, err := c.Check(ctx)
	if err != nil {
		return nil, err
	}
	_ = c.saveCache(info)
	return info, nil
}

// Check always queries the release feed.
func (c *Checker) Check(ctx context.Context) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "pgquery/"+c.Current)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release feed returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	return &Info{
		LatestVersion:   latest,
		CurrentVersion:  c.Current,
		ReleaseURL:      release.HTMLURL,
		CheckedAt:       time.Now(),
		UpdateAvailable: compareVersions(c.Current, latest) < 0,
	}, nil
}

func cacheDir() (string, error) {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, "pgquery"), nil
}

func (c *Checker) loadCache() (*Info, error) {
	data, err := os.ReadFile(filepath.Join(c.CacheDir, cacheFile))
	if err != nil {
		return nil, err
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Checker) saveCache(info *Info) error {
	if err := os.MkdirAll(c.CacheDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.CacheDir, cacheFile), data, 0o644)
}

// compareVersions returns -1, 0 or 1 as a is older than, equal to or newer
// than b. "dev" sorts after every release. Pre-release suffixes are ignored.
func compareVersions(a, b string) int {
	a = strings.TrimPrefix(a, "v")
	b = strings.TrimPrefix(b, "v")

	if a == "dev" {
		return 1
	}
	if b == "dev" {
		return -1
	}

	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")

	for i := 0; i < max(len(partsA), len(partsB)); i++ {
		numA, numB := versionPart(partsA, i), versionPart(partsB, i)
		switch {
		case numA < numB:
			return -1
		case numA > numB:
			return 1
		}
	}
	return 0
}

func versionPart(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, _ := strconv.Atoi(strings.SplitN(parts[i], "-", 2)[0])
	return n
}
