package gbdt

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/pulsemetrics/pulseml/pkg/errors"
)

// RenderFormat selects the image format for tree rendering.
type RenderFormat string

const (
	RenderPNG RenderFormat = "png"
	RenderSVG RenderFormat = "svg"
	RenderJPG RenderFormat = "jpg"
)

var renderFormats = map[RenderFormat]graphviz.Format{
	RenderPNG: graphviz.PNG,
	RenderSVG: graphviz.SVG,
	RenderJPG: graphviz.JPG,
}

// RenderTrees writes one image per tree under dir, named
// "<prefix>_00000.<format>" in boosting order. Useful for inspecting what a
// trained model actually learned.
func (e *Engine) RenderTrees(dir, prefix string, format RenderFormat) error {
	if !e.IsFitted() {
		return errors.NewNotFittedError("Engine", "RenderTrees")
	}
	gvFormat, ok := renderFormats[format]
	if !ok {
		return errors.NewValidationError("format", "unsupported render format", string(format))
	}

	names := e.FeatureNames()
	for i := range e.trees {
		tree := &e.trees[i]
		filename := filepath.Join(dir, fmt.Sprintf("%s_%05d.%s", prefix, i, format))
		// The graphviz bindings call into cgo; a panic there must not take
		// down the caller.
		err := errors.SafeExecute("gbdt.RenderTrees", func() error {
			return renderTree(tree, names, gvFormat, filename)
		})
		if err != nil {
			return errors.NewModelError("RenderTrees", fmt.Sprintf("tree %d", i), err)
		}
	}
	return nil
}

func renderTree(tree *DecisionTree, featureNames []string, format graphviz.Format, filename string) error {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return err
	}
	graph, err := gv.Graph()
	if err != nil {
		return err
	}
	defer func() {
		_ = graph.Close()
		_ = gv.Close()
	}()

	counter := 0
	if err := drawNode(graph, tree.Root, featureNames, nil, &counter); err != nil {
		return err
	}
	return gv.RenderFilename(ctx, graph, format, filename)
}

func drawNode(g *cgraph.Graph, n Node, featureNames []string, parent *cgraph.Node, counter *int) error {
	gn, err := g.CreateNodeByName(fmt.Sprintf("n%d", *counter))
	if err != nil {
		return err
	}
	*counter++

	if parent != nil {
		if _, err := g.CreateEdgeByName("", parent, gn); err != nil {
			return err
		}
	}

	switch v := n.(type) {
	case *Leaf:
		gn.Set("label", fmt.Sprintf("value: %.4f\nsamples: %d", v.Value, v.SampleCount))
		gn.Set("shape", "box")
	case *Split:
		name := fmt.Sprintf("feature_%d", v.Feature)
		if v.Feature >= 0 && v.Feature < len(featureNames) {
			name = featureNames[v.Feature]
		}
		gn.Set("label", fmt.Sprintf("%s <= %.4f\ngain: %.4f", name, v.Threshold, v.Gain))
		if err := drawNode(g, v.Left, featureNames, gn, counter); err != nil {
			return err
		}
		if err := drawNode(g, v.Right, featureNames, gn, counter); err != nil {
			return err
		}
	}
	return nil
}
