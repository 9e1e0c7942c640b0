package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Translator.MaxHomophones != 16 {
		t.Errorf("max_homophones = %d", cfg.Translator.MaxHomophones)
	}
	if cfg.Translator.MaxCorrections != 4 {
		t.Errorf("max_corrections = %d", cfg.Translator.MaxCorrections)
	}
	if cfg.Translator.Delimiters != " '" {
		t.Errorf("delimiters = %q", cfg.Translator.Delimiters)
	}
	if cfg.Translator.SpellingHints != 0 {
		t.Errorf("spelling_hints = %d", cfg.Translator.SpellingHints)
	}
}

func TestInitConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if cfg.Translator.MaxHomophones != 16 {
		t.Errorf("created config differs from defaults")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Translator.EnableCorrection = true
	cfg.Translator.SpellingHints = 3
	cfg.Dict.TablePath = "elsewhere/table.bin"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Translator.EnableCorrection || loaded.Translator.SpellingHints != 3 {
		t.Errorf("translator section lost: %+v", loaded.Translator)
	}
	if loaded.Dict.TablePath != "elsewhere/table.bin" {
		t.Errorf("dict section lost: %+v", loaded.Dict)
	}
}

func TestLoadMissingConfig(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("loading a missing config should fail")
	}
}
