/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MylesManT/Producer-s-toolkit/internal/domain"
)

func minimalProduction(name string) domain.Production {
	return domain.Production{Name: name, Day: domain.DefaultDayPlan()}
}

func TestInitProductionCreatesStructureAndManifest(t *testing.T) {
	root := t.TempDir()
	prod := minimalProduction("Test Production")

	ph, err := InitProduction(root, prod)
	if err != nil {
		t.Fatalf("InitProduction error: %v", err)
	}
	if ph == nil {
		t.Fatalf("InitProduction returned nil handle")
	}

	if ph.ManifestPath == "" {
		t.Fatalf("ManifestPath not set")
	}
	b, err := os.ReadFile(ph.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var got domain.Production
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if got.Name != prod.Name {
		t.Fatalf("manifest name mismatch: got %q want %q", got.Name, prod.Name)
	}
	if got.Day.StartTime != "08:00" {
		t.Fatalf("day plan not persisted: %+v", got.Day)
	}

	wantDirs := []string{"screenplay", "schedules", BackupsDirName}
	for _, d := range wantDirs {
		p := filepath.Join(root, d)
		if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist", p)
		}
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProduction(root, minimalProduction("Backup Test"))
	if err != nil {
		t.Fatalf("InitProduction error: %v", err)
	}

	// Change something and save again to force a backup
	ph.Production.Metadata.Notes = "changed"
	if err := Save(ph); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	var bakCount int
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			bakCount++
		}
	}
	if bakCount == 0 {
		t.Fatalf("expected at least one backup file, found 0")
	}
}

func TestOpenFallsBackToLatestBackupOnCorruption(t *testing.T) {
	root := t.TempDir()
	prod := minimalProduction("Open From Backup")
	ph, err := InitProduction(root, prod)
	if err != nil {
		t.Fatalf("InitProduction error: %v", err)
	}

	// Force a backup to exist by saving
	ph.Production.Metadata.Notes = "touch"
	if err := Save(ph); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if err := os.WriteFile(ph.ManifestPath, []byte("{ this is not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}

	opened, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if opened.Production.Name != prod.Name {
		t.Fatalf("opened production name mismatch: got %q want %q", opened.Production.Name, prod.Name)
	}
}

func TestOpenMissingProductionFails(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected error for missing manifest with no backups")
	}
}

func TestScreenplayPathResolution(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProduction(root, minimalProduction("Paths"))
	if err != nil {
		t.Fatalf("InitProduction error: %v", err)
	}
	if got := ph.ScreenplayPath(); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
	ph.Production.Screenplay = filepath.Join("screenplay", "day1.fountain")
	want := filepath.Join(root, "screenplay", "day1.fountain")
	if got := ph.ScreenplayPath(); got != want {
		t.Fatalf("relative resolution: got %q want %q", got, want)
	}
	abs := filepath.Join(t.TempDir(), "elsewhere.fountain")
	ph.Production.Screenplay = abs
	if got := ph.ScreenplayPath(); got != abs {
		t.Fatalf("absolute passthrough: got %q", got)
	}
}

func TestAutosaveCrashSnapshotWritesFile(t *testing.T) {
	root := t.TempDir()
	prod := minimalProduction("Crash Snapshot")
	ph, err := InitProduction(root, prod)
	if err != nil {
		t.Fatalf("InitProduction error: %v", err)
	}

	path, err := AutosaveCrashSnapshot(ph)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file does not exist: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var got domain.Production
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if got.Name != prod.Name {
		t.Fatalf("snapshot content mismatch: got %q want %q", got.Name, prod.Name)
	}
}
