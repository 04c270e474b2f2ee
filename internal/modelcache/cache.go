// Package modelcache persists a built vector space next to the corpus so a
// restart can skip the rebuild.
package modelcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotoba/internal/vector"
	"github.com/hyperjump/kotoba/pkg/utils"
)

// Artifact file names inside the cache directory.
const (
	VocabularyFile = "vocabulary.bin"
	MatrixFile     = "matrix.bin"
	ManifestFile   = "manifest.yaml"
)

var (
	// ErrModelNotFound means no complete model is saved in the directory.
	ErrModelNotFound = errors.New("model not found")
	// ErrStaleModel means the saved model was built from a different corpus
	// snapshot or with a different format version.
	ErrStaleModel = errors.New("model is stale")
	// ErrCorruptModel means an artifact failed to decode or verify.
	ErrCorruptModel = errors.New("model is corrupt")
)

// Artifacts is a model as stored on disk.
type Artifacts struct {
	Vocabulary *vector.Vocabulary
	Matrix     *vector.Matrix
	Manifest   Manifest
}

// Cache reads and writes model artifacts in one directory.
type Cache struct {
	dir    string
	logger *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger; nil keeps the cache silent.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = utils.OrNop(l) }
}

// New returns a cache rooted at dir. The directory is created on first Save.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{dir: dir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Save writes the artifacts and a fresh manifest. Fields of a.Manifest other
// than Fingerprint, BuildID and BuiltAt are overwritten; an empty BuildID or
// zero BuiltAt is filled in. The previous manifest is removed before any
// artifact is replaced, so an interrupted Save leaves no loadable model.
func (c *Cache) Save(a *Artifacts) (*Manifest, error) {
	if a == nil || a.Vocabulary == nil || a.Matrix == nil {
		return nil, errors.New("incomplete model artifacts")
	}
	start := time.Now()
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create model dir: %w", err)
	}
	if err := os.Remove(c.path(ManifestFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove old manifest: %w", err)
	}

	vocabSum, err := c.writeAtomic(VocabularyFile, func(w io.Writer) error {
		return vector.WriteVocabulary(w, a.Vocabulary)
	})
	if err != nil {
		return nil, err
	}
	matrixSum, err := c.writeAtomic(MatrixFile, func(w io.Writer) error {
		return vector.WriteMatrix(w, a.Matrix)
	})
	if err != nil {
		return nil, err
	}

	m := a.Manifest
	m.FormatVersion = FormatVersion
	if m.BuildID == "" {
		m.BuildID = uuid.NewString()
	}
	if m.BuiltAt.IsZero() {
		m.BuiltAt = time.Now().UTC()
	}
	m.Terms = a.Matrix.Rows()
	m.Features = a.Vocabulary.Size()
	m.Checksums = Checksums{Vocabulary: vocabSum, Matrix: matrixSum}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if _, err := c.writeAtomic(ManifestFile, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return nil, err
	}

	c.logger.Info("Model saved",
		zap.String("dir", c.dir),
		zap.String("build_id", m.BuildID),
		zap.Int("terms", m.Terms),
		zap.Int("features", m.Features),
		zap.Duration("duration", time.Since(start)))
	return &m, nil
}

// Load reads the saved model and checks that it was built from the corpus
// snapshot identified by fingerprint. It returns ErrModelNotFound when any
// artifact is missing and ErrStaleModel when the manifest does not match.
func (c *Cache) Load(fingerprint string) (*Artifacts, error) {
	start := time.Now()
	m, err := c.Manifest()
	if err != nil {
		return nil, err
	}
	if m.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrStaleModel, m.FormatVersion, FormatVersion)
	}
	if m.Fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: corpus fingerprint changed", ErrStaleModel)
	}

	var vocab *vector.Vocabulary
	if err := c.readVerified(VocabularyFile, m.Checksums.Vocabulary, func(r io.Reader) error {
		var err error
		vocab, err = vector.ReadVocabulary(r)
		return err
	}); err != nil {
		return nil, err
	}
	var matrix *vector.Matrix
	if err := c.readVerified(MatrixFile, m.Checksums.Matrix, func(r io.Reader) error {
		var err error
		matrix, err = vector.ReadMatrix(r)
		return err
	}); err != nil {
		return nil, err
	}

	if matrix.Cols() != vocab.Size() {
		return nil, fmt.Errorf("%w: matrix has %d columns, vocabulary has %d features", ErrCorruptModel, matrix.Cols(), vocab.Size())
	}
	if matrix.Rows() != m.Terms {
		return nil, fmt.Errorf("%w: matrix has %d rows, manifest records %d terms", ErrCorruptModel, matrix.Rows(), m.Terms)
	}

	c.logger.Info("Model loaded",
		zap.String("dir", c.dir),
		zap.String("build_id", m.BuildID),
		zap.Int("terms", m.Terms),
		zap.Int("features", m.Features),
		zap.Duration("duration", time.Since(start)))
	return &Artifacts{Vocabulary: vocab, Matrix: matrix, Manifest: *m}, nil
}

// Manifest reads the saved manifest without loading the artifacts.
func (c *Cache) Manifest() (*Manifest, error) {
	m, err := readManifest(c.path(ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	return m, nil
}

// Clear removes every artifact. Missing files are not an error.
func (c *Cache) Clear() error {
	// Manifest first: once it is gone the rest is unreachable.
	for _, name := range []string{ManifestFile, VocabularyFile, MatrixFile} {
		if err := os.Remove(c.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

func (c *Cache) path(name string) string {
	return filepath.Join(c.dir, name)
}

// writeAtomic streams write into a temp file in the cache directory, then
// renames it over name. It returns the hex SHA-256 of what was written.
func (c *Cache) writeAtomic(name string, write func(io.Writer) error) (string, error) {
	tmp, err := os.CreateTemp(c.dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	h := sha256.New()
	if err := write(io.MultiWriter(tmp, h)); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, c.path(name)); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", name, err)
	}
	committed = true
	return hex.EncodeToString(h.Sum(nil)), nil
}

// readVerified checks the SHA-256 of name against want, then decodes it with
// read. Nothing is decoded from a file whose checksum does not match.
func (c *Cache) readVerified(name, want string, read func(io.Reader) error) error {
	f, err := os.Open(c.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s missing", ErrModelNotFound, name)
		}
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	if want == "" {
		return fmt.Errorf("%w: no checksum recorded for %s", ErrCorruptModel, name)
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		return fmt.Errorf("%w: %s checksum mismatch", ErrCorruptModel, name)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", name, err)
	}
	if err := read(f); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", ErrCorruptModel, name, err)
	}
	return nil
}
