package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog holds the enumerated option sets the forms are allowed to submit.
// The compiled-in defaults match the production deployment; a YAML file can
// override any of the lists for other sites or seasons.
type Catalog struct {
	Varieties    []string `yaml:"varieties" json:"varieties"`
	StemLengths  []int    `yaml:"stem_lengths" json:"stemLengths"`
	Destinations []string `yaml:"destinations" json:"destinations"`
	Tags         []string `yaml:"tags" json:"tags"`
	BucketTypes  []string `yaml:"bucket_types" json:"bucketTypes"`
}

func Default() Catalog {
	return Catalog{
		Varieties: []string{
			"MATTH IRON APRICOT",
			"MATTH IRON PINK",
			"MATTH IRON MARINE",
			"MATTH IRON ROSE",
			"MATTH IRON PURPLE",
			"MATTH GEM",
			"MATTH YELLOW",
			"MATTH WHITE",
		},
		StemLengths: []int{50, 55, 60, 65, 70, 75},
		Destinations: []string{
			"AALSMEER (N.11)",
			"NAALDWIJK (N.10)",
			"RIJNSBURG (N.9)",
		},
		Tags: []string{
			"TAG5 (GIALLO)",
			"TAG5 (VERDE)",
		},
		BucketTypes: []string{
			"BLACK BUCKETS",
			"PROCONA",
		},
	}
}

// Load reads a YAML catalog from path. Empty path or a missing file keeps
// the defaults; lists left empty in the file keep their default values too.
func Load(path string) (Catalog, error) {
	cat := Default()
	if path == "" {
		return cat, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cat, nil
		}
		return cat, fmt.Errorf("read catalog %q: %w", path, err)
	}
	var file Catalog
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cat, fmt.Errorf("parse catalog %q: %w", path, err)
	}
	if len(file.Varieties) > 0 {
		cat.Varieties = file.Varieties
	}
	if len(file.StemLengths) > 0 {
		cat.StemLengths = file.StemLengths
	}
	if len(file.Destinations) > 0 {
		cat.Destinations = file.Destinations
	}
	if len(file.Tags) > 0 {
		cat.Tags = file.Tags
	}
	if len(file.BucketTypes) > 0 {
		cat.BucketTypes = file.BucketTypes
	}
	return cat, nil
}

func (c Catalog) HasVariety(v string) bool {
	for _, have := range c.Varieties {
		if have == v {
			return true
		}
	}
	return false
}

func (c Catalog) HasStemLength(l int) bool {
	for _, have := range c.StemLengths {
		if have == l {
			return true
		}
	}
	return false
}
