package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sparkwire/edmplan/internal/model"
)

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.json")

	profiles := []model.GCodeProfile{
		{
			Name:          "TestProfile1",
			Description:   "Test profile one",
			IsBuiltIn:     false,
			Units:         "mm",
			StartCode:     []string{"G90", "G21"},
			SpindleStart:  "M3 S%d",
			SpindleStop:   "M5",
			HomeAll:       "$H",
			AbsoluteMode:  "G90",
			RapidMove:     "G0",
			FeedMove:      "G1",
			EndCode:       []string{"M5", "M2"},
			CommentPrefix: ";",
			CommentSuffix: "",
			DecimalPlaces: 3,
		},
		{
			Name:          "TestProfile2",
			Description:   "Test profile two",
			IsBuiltIn:     false,
			Units:         "inches",
			StartCode:     []string{"G90", "G20"},
			SpindleStart:  "M3 S%d",
			SpindleStop:   "M5",
			HomeAll:       "G28",
			AbsoluteMode:  "G90",
			RapidMove:     "G0",
			FeedMove:      "G1",
			EndCode:       []string{"M5", "M30"},
			CommentPrefix: "(",
			CommentSuffix: ")",
			DecimalPlaces: 4,
		},
	}

	if err := SaveCustomProfiles(path, profiles); err != nil {
		t.Fatalf("SaveCustomProfiles: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("profiles file was not created")
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}
	if loaded[0].Name != "TestProfile1" {
		t.Errorf("expected name TestProfile1, got %s", loaded[0].Name)
	}
	if loaded[1].Name != "TestProfile2" {
		t.Errorf("expected name TestProfile2, got %s", loaded[1].Name)
	}
	if loaded[0].IsBuiltIn {
		t.Error("loaded profile should not be marked as built-in")
	}
}

func TestLoadCustomProfilesNonExistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.json")

	profiles, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("expected no error for nonexistent file, got: %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("expected 0 profiles for nonexistent file, got %d", len(profiles))
	}
}

func TestLoadCustomProfilesInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")

	if err := os.WriteFile(path, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadCustomProfiles(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestExportAndImportProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exported.json")

	original := model.GCodeProfile{
		Name:          "ExportedProfile",
		Description:   "A profile for export testing",
		IsBuiltIn:     true, // should be stripped on export
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "$H",
		AbsoluteMode:  "G90",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"M5", "M2"},
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 3,
	}

	if err := ExportProfile(path, original); err != nil {
		t.Fatalf("ExportProfile: %v", err)
	}

	imported, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile: %v", err)
	}

	if imported.Name != "ExportedProfile" {
		t.Errorf("expected name ExportedProfile, got %s", imported.Name)
	}
	if imported.IsBuiltIn {
		t.Error("imported profile should not be marked as built-in")
	}
	if len(imported.StartCode) != 2 {
		t.Errorf("expected 2 start codes, got %d", len(imported.StartCode))
	}
}

func TestImportProfileNoName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noname.json")

	if err := os.WriteFile(path, []byte(`{"description": "no name"}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportProfile(path)
	if err == nil {
		t.Fatal("expected error for profile without name")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	path := filepath.Join(dir, "profiles.json")

	if err := SaveCustomProfiles(path, []model.GCodeProfile{}); err != nil {
		t.Fatalf("SaveCustomProfiles should create directories: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("file was not created in nested directory")
	}
}
