// Package appupdate checks GitHub for a newer release and suggests the
// upgrade command matching how the binary was installed.
package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultLatestReleaseURL = "https://api.github.com/repos/prismhq/prism/releases/latest"
	defaultRequestTimeout   = 1500 * time.Millisecond
)

type InstallMethod string

const (
	InstallMethodUnknown   InstallMethod = "unknown"
	InstallMethodHomebrew  InstallMethod = "homebrew"
	InstallMethodGoInstall InstallMethod = "go_install"
)

type CheckOptions struct {
	CurrentVersion   string
	ExecutablePath   string
	LatestReleaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Result struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	InstallMethod   InstallMethod
	UpgradeHint     string
}

// Check resolves the current install method and compares the running version
// against the latest stable release. Dev builds skip the network entirely.
func Check(ctx context.Context, opts CheckOptions) (Result, error) {
	currentVersion := normalizeReleaseVersion(opts.CurrentVersion)
	method := detectInstallMethod(resolveExecutablePath(opts.ExecutablePath))

	result := Result{
		CurrentVersion: currentVersion,
		InstallMethod:  method,
		UpgradeHint:    upgradeHint(method),
	}

	if currentVersion == "" {
		return result, nil
	}

	latestVersion, err := fetchLatestReleaseVersion(ctx, opts, currentVersion)
	if err != nil {
		return result, err
	}

	result.LatestVersion = latestVersion
	result.UpdateAvailable = semver.Compare(latestVersion, currentVersion) > 0
	return result, nil
}

func fetchLatestReleaseVersion(ctx context.Context, opts CheckOptions, currentVersion string) (string, error) {
	latestURL := strings.TrimSpace(opts.LatestReleaseURL)
	if latestURL == "" {
		latestURL = defaultLatestReleaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, latestURL, nil)
	if err != nil {
		return "", fmt.Errorf("build latest release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "prism/"+currentVersion)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode latest release payload: %w", err)
	}

	latest := normalizeReleaseVersion(payload.TagName)
	if latest == "" {
		return "", fmt.Errorf("latest release tag is not a stable semver: %q", payload.TagName)
	}
	return latest, nil
}

func resolveExecutablePath(explicitPath string) string {
	if p := strings.TrimSpace(explicitPath); p != "" {
		return normalizePathForMatch(p)
	}
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exePath); err == nil && strings.TrimSpace(resolved) != "" {
		exePath = resolved
	}
	return normalizePathForMatch(exePath)
}

func normalizePathForMatch(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return strings.ToLower(filepath.ToSlash(filepath.Clean(path)))
}

func detectInstallMethod(executablePath string) InstallMethod {
	path := normalizePathForMatch(executablePath)
	if path == "" {
		return InstallMethodUnknown
	}

	switch {
	case strings.Contains(path, "/cellar/prism/"), path == "/opt/homebrew/bin/prism":
		return InstallMethodHomebrew
	case looksLikeGoInstallPath(path):
		return InstallMethodGoInstall
	default:
		return InstallMethodUnknown
	}
}

func looksLikeGoInstallPath(path string) bool {
	if strings.HasSuffix(path, "/go/bin/prism") || strings.HasSuffix(path, "/go/bin/prism.exe") {
		return true
	}

	if gobin := normalizePathForMatch(os.Getenv("GOBIN")); gobin != "" {
		if path == gobin+"/prism" || path == gobin+"/prism.exe" {
			return true
		}
	}

	for _, gp := range filepath.SplitList(os.Getenv("GOPATH")) {
		gopath := normalizePathForMatch(gp)
		if gopath == "" {
			continue
		}
		if path == gopath+"/bin/prism" || path == gopath+"/bin/prism.exe" {
			return true
		}
	}

	return false
}

func upgradeHint(method InstallMethod) string {
	switch method {
	case InstallMethodHomebrew:
		return "brew upgrade prismhq/tap/prism"
	default:
		return "go install github.com/prismhq/prism/cmd/prism@latest"
	}
}

// normalizeReleaseVersion canonicalizes stable semver tags and rejects
// anything else, including prereleases and dev builds.
func normalizeReleaseVersion(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	if semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}
