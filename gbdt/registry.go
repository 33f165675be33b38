package gbdt

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/pulsemetrics/pulseml/pkg/errors"
)

// ModelRegistry stores and retrieves trained model snapshots by name and
// version. Implementations may back onto a filesystem, object storage or a
// database; the engine itself never performs I/O.
type ModelRegistry interface {
	// Put stores a snapshot under the given name and version, overwriting
	// any existing entry.
	Put(name, version string, snap *Snapshot) error

	// Get retrieves a previously stored snapshot.
	Get(name, version string) (*Snapshot, error)

	// Versions lists the stored versions for a name, in insertion order.
	Versions(name string) ([]string, error)
}

// SampleSource produces aligned feature and target matrices for training.
// Higher-level feature-extraction pipelines implement this to feed the
// engine from raw application data.
type SampleSource interface {
	// Samples returns the feature matrix and its aligned target vector.
	Samples() (*mat.Dense, *mat.VecDense, error)

	// FeatureNames returns the column names of the feature matrix.
	FeatureNames() []string
}

// FitFrom trains the engine from a SampleSource, applying its feature names.
func (e *Engine) FitFrom(src SampleSource, val *ValidationData) error {
	X, y, err := src.Samples()
	if err != nil {
		return errors.Wrap(err, "loading training samples")
	}
	e.SetFeatureNames(src.FeatureNames())
	return e.FitWithValidation(X, y, val)
}

// MemoryRegistry is a process-local ModelRegistry, safe for concurrent use.
type MemoryRegistry struct {
	mu       sync.RWMutex
	models   map[string]map[string]*Snapshot
	versions map[string][]string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		models:   make(map[string]map[string]*Snapshot),
		versions: make(map[string][]string),
	}
}

func (r *MemoryRegistry) Put(name, version string, snap *Snapshot) error {
	if snap == nil {
		return errors.NewValidationError("snapshot", "snapshot must not be nil", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byVersion, ok := r.models[name]
	if !ok {
		byVersion = make(map[string]*Snapshot)
		r.models[name] = byVersion
	}
	if _, exists := byVersion[version]; !exists {
		r.versions[name] = append(r.versions[name], version)
	}
	byVersion[version] = snap
	return nil
}

func (r *MemoryRegistry) Get(name, version string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.models[name][version]
	if !ok {
		return nil, errors.NewModelError("Get", fmt.Sprintf("model %s@%s not found", name, version), nil)
	}
	return snap, nil
}

func (r *MemoryRegistry) Versions(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.versions[name]
	if !ok {
		return nil, errors.NewModelError("Versions", fmt.Sprintf("model %s not found", name), nil)
	}
	out := make([]string, len(versions))
	copy(out, versions)
	return out, nil
}
