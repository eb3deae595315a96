package testutil

import (
	"encoding/json"
	"flag"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// updateGolden rewrites golden files instead of comparing.
// Use: go test ./... -run TestGolden -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// CompareGolden compares got against fixture's golden file name, failing
// with a diff on mismatch. With -update the golden file is written instead.
func CompareGolden(t *testing.T, fixture *Fixture, name string, got []byte) {
	t.Helper()

	goldenPath := fixture.ExpectedPath(name)
	if *updateGolden {
		UpdateGolden(t, fixture, name, got)
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create:\n  go test ./... -run %s -update",
				goldenPath, got, t.Name())
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	if diff := cmp.Diff(string(expected), string(got)); diff != "" {
		t.Fatalf("Golden mismatch for %s/%s (-want +got):\n%s\n\nRun with -update to refresh:\n  go test ./... -run %s -update",
			fixture.Name, name, diff, t.Name())
	}
}

// CompareGoldenJSON compares the indented JSON encoding of got.
func CompareGoldenJSON(t *testing.T, fixture *Fixture, name string, got any) {
	t.Helper()

	data, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal %s: %v", name, err)
	}
	CompareGolden(t, fixture, name, append(data, '\n'))
}

// UpdateGolden writes data to the golden file.
func UpdateGolden(t *testing.T, fixture *Fixture, name string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(fixture.ExpectedDir, 0o755); err != nil {
		t.Fatalf("Failed to create expected directory: %v", err)
	}
	if err := os.WriteFile(fixture.ExpectedPath(name), data, 0o644); err != nil {
		t.Fatalf("Failed to write golden file: %v", err)
	}
}
