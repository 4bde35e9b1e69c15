// Package updater checks GitHub releases for a newer focal build and
// can replace the running binary in place.
//
// The version check is best-effort and never fails the caller; the
// self-update downloads the release archive for the current OS/arch,
// extracts the binary, and swaps it in atomically via rename.
package updater

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	githubRepo = "MarianaDuarte/focal"

	// binaryName is what the release archives call the executable.
	binaryName = "focal"
)

// For testing: allow overriding the release endpoint and HTTP client.
var (
	releaseEndpoint = "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	httpClient      = &http.Client{Timeout: 10 * time.Second}
)

// release mirrors the fields we need from the GitHub Releases API.
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// Result describes the outcome of a version check.
type Result struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// CheckVersion queries GitHub for the latest release. It never returns
// an error — network failures leave UpdateAvailable false.
func CheckVersion(current string) *Result {
	res := &Result{CurrentVersion: strings.TrimPrefix(current, "v")}

	rel, err := fetchLatest(current)
	if err != nil {
		return res
	}

	res.LatestVersion = strings.TrimPrefix(rel.TagName, "v")
	res.ReleaseURL = rel.HTMLURL
	res.UpdateAvailable = newer(res.CurrentVersion, res.LatestVersion)
	return res
}

// SelfUpdate downloads the release binary for this OS/arch and
// atomically replaces the running executable.
func SelfUpdate(current string) error {
	rel, err := fetchLatest(current)
	if err != nil {
		return err
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	if !newer(strings.TrimPrefix(current, "v"), latest) {
		return fmt.Errorf("already at latest version (%s)", current)
	}

	asset := fmt.Sprintf("%s_%s_%s_%s.tar.gz", binaryName, latest, runtime.GOOS, runtime.GOARCH)
	var url string
	for _, a := range rel.Assets {
		if a.Name == asset {
			url = a.BrowserDownloadURL
			break
		}
	}
	if url == "" {
		return fmt.Errorf("no release asset for %s/%s (wanted %s)", runtime.GOOS, runtime.GOARCH, asset)
	}

	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("downloading release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %d", resp.StatusCode)
	}

	bin, err := extractBinary(resp.Body)
	if err != nil {
		return fmt.Errorf("extracting binary: %w", err)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding current executable: %w", err)
	}
	if execPath, err = filepath.EvalSymlinks(execPath); err != nil {
		return fmt.Errorf("resolving symlinks: %w", err)
	}

	// Write beside the target, then rename over it. Rename within the
	// same directory keeps the swap atomic.
	tmp := execPath + ".new"
	if err := os.WriteFile(tmp, bin, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}
	if err := os.Rename(tmp, execPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

// fetchLatest retrieves the latest release metadata from GitHub.
func fetchLatest(current string) (*release, error) {
	req, err := http.NewRequest(http.MethodGet, releaseEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", binaryName+"/"+current)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("parsing release info: %w", err)
	}
	return &rel, nil
}

// extractBinary pulls the focal executable out of a .tar.gz archive.
func extractBinary(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if name := filepath.Base(hdr.Name); name == binaryName || name == binaryName+".exe" {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("%s binary not found in archive", binaryName)
}

// newer reports whether latest is a strictly higher semver than
// current. Dev builds never update.
func newer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}

	cur := semverParts(current)
	lat := semverParts(latest)
	for i := 0; i < 3; i++ {
		if lat[i] != cur[i] {
			return lat[i] > cur[i]
		}
	}
	return false
}

// semverParts parses up to three numeric version components, treating
// anything unparseable as 0.
func semverParts(v string) [3]int {
	var out [3]int
	for i, part := range strings.SplitN(v, ".", 3) {
		if i >= 3 {
			break
		}
		// Trim pre-release/build suffixes like "1-rc1".
		if j := strings.IndexAny(part, "-+"); j >= 0 {
			part = part[:j]
		}
		n, err := strconv.Atoi(part)
		if err == nil {
			out[i] = n
		}
	}
	return out
}
