package appupdate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeReleaseVersion(t *testing.T) {
	cases := map[string]string{
		"v1.2.3":        "v1.2.3",
		"1.2.3":         "v1.2.3",
		"v1.2":          "v1.2.0",
		"dev":           "",
		"":              "",
		"v1.2.3-beta.1": "",
		"v1.2.3+build":  "",
	}
	for in, want := range cases {
		if got := normalizeReleaseVersion(in); got != want {
			t.Errorf("normalizeReleaseVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectInstallMethod(t *testing.T) {
	cases := map[string]InstallMethod{
		"/opt/homebrew/bin/prism":             InstallMethodHomebrew,
		"/usr/local/cellar/prism/1.0.0/prism": InstallMethodHomebrew,
		"/home/dev/go/bin/prism":              InstallMethodGoInstall,
		"/home/dev/go/bin/prism.exe":          InstallMethodGoInstall,
		"/tmp/prism":                          InstallMethodUnknown,
		"":                                    InstallMethodUnknown,
	}
	for path, want := range cases {
		if got := detectInstallMethod(path); got != want {
			t.Errorf("detectInstallMethod(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestCheck_DevBuildSkipsNetwork(t *testing.T) {
	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion: "dev",
		ExecutablePath: "/tmp/prism",
		// An unreachable URL proves the network is never touched.
		LatestReleaseURL: "http://127.0.0.1:1",
		Timeout:          100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.UpdateAvailable || result.LatestVersion != "" {
		t.Errorf("result = %+v", result)
	}
	if result.UpgradeHint == "" {
		t.Error("missing upgrade hint")
	}
}

func TestCheck_UpdateAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v2.0.0"}`))
	}))
	defer srv.Close()

	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.0.0",
		ExecutablePath:   "/tmp/prism",
		LatestReleaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.UpdateAvailable || result.LatestVersion != "v2.0.0" {
		t.Errorf("result = %+v", result)
	}
}

func TestCheck_UpToDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.0.0"}`))
	}))
	defer srv.Close()

	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.0.0",
		LatestReleaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.UpdateAvailable {
		t.Errorf("result = %+v", result)
	}
}

func TestCheck_PrereleaseTagRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v2.0.0-rc.1"}`))
	}))
	defer srv.Close()

	_, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.0.0",
		LatestReleaseURL: srv.URL,
	})
	if err == nil {
		t.Fatal("expected error for prerelease tag")
	}
}
