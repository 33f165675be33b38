package gbdt

import (
	"io"
	"math/rand"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pulsemetrics/pulseml/pkg/errors"
)

// SnapshotVersion identifies the snapshot schema written by this package.
const SnapshotVersion = "1.0"

// NodeSnapshot is the serialized form of one tree node. Kind is "leaf" or
// "split"; the remaining fields apply to one kind each.
type NodeSnapshot struct {
	Kind        string  `json:"kind"`
	Value       float64 `json:"value,omitempty"`
	SampleCount int     `json:"sample_count,omitempty"`

	Feature   int           `json:"feature,omitempty"`
	Threshold float64       `json:"threshold,omitempty"`
	Gain      float64       `json:"gain,omitempty"`
	Left      *NodeSnapshot `json:"left,omitempty"`
	Right     *NodeSnapshot `json:"right,omitempty"`
}

// TreeSnapshot is the serialized form of one boosted tree.
type TreeSnapshot struct {
	LearningRate float64       `json:"learning_rate"`
	Weight       float64       `json:"weight"`
	Root         *NodeSnapshot `json:"root"`
}

// Snapshot is a complete, self-contained serialization of a trained engine.
// Restoring it yields a model with bit-identical predictions.
type Snapshot struct {
	Version      string         `json:"version"`
	TrainedAt    time.Time      `json:"trained_at"`
	Config       TrainingConfig `json:"config"`
	NumFeatures  int            `json:"num_features"`
	NumClasses   int            `json:"num_class,omitempty"`
	FeatureNames []string       `json:"feature_names,omitempty"`
	Trees        []TreeSnapshot `json:"trees"`
	Metrics      Metrics        `json:"metrics"`
}

// Snapshot captures the trained model. It fails on an unfitted engine.
func (e *Engine) Snapshot() (*Snapshot, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("Engine", "Snapshot")
	}

	trees := make([]TreeSnapshot, len(e.trees))
	for i := range e.trees {
		trees[i] = TreeSnapshot{
			LearningRate: e.trees[i].LearningRate,
			Weight:       e.trees[i].Weight,
			Root:         encodeNode(e.trees[i].Root),
		}
	}

	return &Snapshot{
		Version:      SnapshotVersion,
		TrainedAt:    time.Now().UTC(),
		Config:       e.config,
		NumFeatures:  e.numFeatures,
		NumClasses:   e.config.NumClasses,
		FeatureNames: e.featureNames,
		Trees:        trees,
		Metrics:      e.metrics,
	}, nil
}

// Restore loads a snapshot into the engine, replacing any trained state.
// The engine becomes fitted and ready to predict.
func (e *Engine) Restore(snap *Snapshot) error {
	if snap == nil {
		return errors.NewValidationError("snapshot", "snapshot must not be nil", nil)
	}
	if err := snap.Config.Validate(); err != nil {
		return errors.NewModelError("Restore", "invalid snapshot config", err)
	}
	obj, err := newObjective(snap.Config)
	if err != nil {
		return err
	}

	trees := make(Ensemble, len(snap.Trees))
	for i := range snap.Trees {
		root, err := decodeNode(snap.Trees[i].Root)
		if err != nil {
			return err
		}
		trees[i] = DecisionTree{
			Root:         root,
			LearningRate: snap.Trees[i].LearningRate,
			Weight:       snap.Trees[i].Weight,
		}
	}

	e.config = snap.Config
	e.objective = obj
	e.trees = trees
	e.numFeatures = snap.NumFeatures
	e.featureNames = snap.FeatureNames
	e.metrics = snap.Metrics

	seed := snap.Config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e.rng = rand.New(rand.NewSource(seed))

	e.state = stateTrained
	e.SetFitted()
	return nil
}

// Save writes the engine's snapshot as JSON.
func (e *Engine) Save(w io.Writer) error {
	snap, err := e.Snapshot()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return errors.NewModelError("Save", "encode snapshot", err)
	}
	return nil
}

// Load reads a JSON snapshot and returns a ready-to-predict engine.
func Load(r io.Reader) (*Engine, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, errors.NewModelError("Load", "decode snapshot", err)
	}
	engine, err := New(snap.Config)
	if err != nil {
		return nil, err
	}
	if err := engine.Restore(&snap); err != nil {
		return nil, err
	}
	return engine, nil
}

func encodeNode(n Node) *NodeSnapshot {
	switch v := n.(type) {
	case *Leaf:
		return &NodeSnapshot{
			Kind:        "leaf",
			Value:       v.Value,
			SampleCount: v.SampleCount,
		}
	case *Split:
		return &NodeSnapshot{
			Kind:      "split",
			Feature:   v.Feature,
			Threshold: v.Threshold,
			Gain:      v.Gain,
			Left:      encodeNode(v.Left),
			Right:     encodeNode(v.Right),
		}
	default:
		return nil
	}
}

func decodeNode(ns *NodeSnapshot) (Node, error) {
	if ns == nil {
		return nil, errors.NewModelError("Restore", "missing node", nil)
	}
	switch ns.Kind {
	case "leaf":
		return &Leaf{Value: ns.Value, SampleCount: ns.SampleCount}, nil
	case "split":
		left, err := decodeNode(ns.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeNode(ns.Right)
		if err != nil {
			return nil, err
		}
		return &Split{
			Feature:   ns.Feature,
			Threshold: ns.Threshold,
			Gain:      ns.Gain,
			Left:      left,
			Right:     right,
		}, nil
	default:
		return nil, errors.NewModelError("Restore", "unknown node kind: "+ns.Kind, nil)
	}
}
