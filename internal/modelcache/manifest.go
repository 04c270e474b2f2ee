package modelcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotoba/internal/models"
)

// FormatVersion is bumped whenever the artifact encoding or the feature
// extraction changes in a way that invalidates saved models.
const FormatVersion = 1

// Manifest describes a saved model. It is written after the artifacts, so a
// readable manifest means the artifacts it names were fully written.
type Manifest struct {
	FormatVersion int       `yaml:"format_version"`
	Fingerprint   string    `yaml:"fingerprint"`
	BuildID       string    `yaml:"build_id"`
	BuiltAt       time.Time `yaml:"built_at"`
	Terms         int       `yaml:"terms"`
	Features      int       `yaml:"features"`
	Checksums     Checksums `yaml:"checksums"`
}

// Checksums holds the SHA-256 of each binary artifact.
type Checksums struct {
	Vocabulary string `yaml:"vocabulary"`
	Matrix     string `yaml:"matrix"`
}

// Fingerprint identifies a corpus snapshot: the SHA-256 over the ordered
// words and definitions. Any insert, or a change of order, changes it.
func Fingerprint(terms []models.Term) string {
	h := sha256.New()
	for _, t := range terms {
		// NUL cannot appear in stored text, so it delimits unambiguously.
		h.Write([]byte(t.Word))
		h.Write([]byte{0})
		h.Write([]byte(t.Definition))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse manifest: %v", ErrCorruptModel, err)
	}
	return &m, nil
}
