package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()

	if len(cat.Varieties) != 8 {
		t.Fatalf("varieties = %d, want 8", len(cat.Varieties))
	}
	if !reflect.DeepEqual(cat.StemLengths, []int{50, 55, 60, 65, 70, 75}) {
		t.Fatalf("stem lengths = %v", cat.StemLengths)
	}
	if !cat.HasVariety("MATTH WHITE") {
		t.Fatalf("default catalog missing MATTH WHITE")
	}
	if cat.HasVariety("TULIP RED") {
		t.Fatalf("unexpected variety accepted")
	}
	if !cat.HasStemLength(65) || cat.HasStemLength(42) {
		t.Fatalf("stem length lookup broken")
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.yaml")} {
		cat, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if !reflect.DeepEqual(cat, Default()) {
			t.Fatalf("Load(%q) changed the defaults", path)
		}
	}
}

func TestLoadOverridesOnlyListedSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `varieties:
  - ROSE RED NAOMI
  - ROSE AVALANCHE
stem_lengths:
  - 40
  - 80
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cat.Varieties, []string{"ROSE RED NAOMI", "ROSE AVALANCHE"}) {
		t.Fatalf("varieties = %v", cat.Varieties)
	}
	if !reflect.DeepEqual(cat.StemLengths, []int{40, 80}) {
		t.Fatalf("stem lengths = %v", cat.StemLengths)
	}
	// Sections absent from the file keep the compiled-in lists.
	if !reflect.DeepEqual(cat.Destinations, Default().Destinations) {
		t.Fatalf("destinations overridden unexpectedly: %v", cat.Destinations)
	}
	if !reflect.DeepEqual(cat.Tags, Default().Tags) {
		t.Fatalf("tags overridden unexpectedly: %v", cat.Tags)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("varieties: [unclosed"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load accepted malformed YAML")
	}
}
