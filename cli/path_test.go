package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPaths(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG directories are only honored on linux")
	}

	if got := filepath.Dir(configDir()); got != os.Getenv("XDG_CONFIG_HOME") {
		t.Errorf("configDir parent = %q, want XDG_CONFIG_HOME", got)
	}

	if got := filepath.Dir(cacheDir()); got != os.Getenv("XDG_CACHE_HOME") {
		t.Errorf("cacheDir parent = %q, want XDG_CACHE_HOME", got)
	}

	if got, want := configPath(baseConfig), filepath.Join(configDir(), "config"); got != want {
		t.Errorf("configPath = %q, want %q", got, want)
	}

	if err := mkdirAllRequired(); err != nil {
		t.Fatalf("mkdirAllRequired: %v", err)
	}

	for _, dir := range []string{configDir(), cacheDir()} {
		fi, err := os.Stat(dir)
		if err != nil || !fi.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
}
