package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	os.Unsetenv("XDG_CACHE_HOME")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".cache", appName)
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestCacheBackend(t *testing.T) {
	tests := []struct {
		name      string
		noCache   bool
		redisAddr string
		want      string
	}{
		{name: "default is file", want: backendFile},
		{name: "redis address selects redis", redisAddr: "localhost:6379", want: backendRedis},
		{name: "no-cache wins", noCache: true, want: backendNull},
		{name: "no-cache wins over redis", noCache: true, redisAddr: "localhost:6379", want: backendNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cacheBackend(tt.noCache, tt.redisAddr); got != tt.want {
				t.Errorf("cacheBackend(%v, %q) = %q, want %q", tt.noCache, tt.redisAddr, got, tt.want)
			}
		})
	}
}

func TestNewCacheRejectsBadRedisDB(t *testing.T) {
	t.Setenv(envRedisAddr, "localhost:6379")
	t.Setenv(envRedisDB, "not-a-number")

	if _, err := newCache(t.Context(), false); err == nil {
		t.Error("newCache with a non-numeric redis db should fail")
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats("", "svg"); !reflect.DeepEqual(got, []string{"svg"}) {
		t.Errorf("parseFormats(empty) = %v, want fallback [svg]", got)
	}
	if got := parseFormats("dot,json", "svg"); !reflect.DeepEqual(got, []string{"dot", "json"}) {
		t.Errorf("parseFormats(dot,json) = %v, want [dot json]", got)
	}
}
