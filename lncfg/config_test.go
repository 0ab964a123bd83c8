package lncfg

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	dir, err := ioutil.TempDir("", "lncfg-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	iniPath := filepath.Join(dir, "lnseedd.conf")
	contents := "seed = seed-one.example.com\nseed = seed-two.example.com\ndebuglevel = debug\n"
	if err := ioutil.WriteFile(iniPath, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := DefaultConfig()
	if err := LoadConfigFile(iniPath, &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Seeds) != 2 {
		t.Fatalf("expected 2 seeds from config file, got %d: %v", len(cfg.Seeds), cfg.Seeds)
	}
	if cfg.DebugLevel != "debug" {
		t.Fatalf("expected debuglevel override, got %q", cfg.DebugLevel)
	}
}

func TestLoadConfigFileMissingIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	if err := LoadConfigFile("/nonexistent/lnseedd.conf", &cfg); err != nil {
		t.Fatalf("expected a missing config file to be silently ignored, got %v", err)
	}
}

func TestLoadConfigFileEmptyPathIsNoop(t *testing.T) {
	cfg := DefaultConfig()
	want := cfg
	if err := LoadConfigFile("", &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Fatalf("expected config to be unchanged with an empty path")
	}
}
