package ml

import (
	"encoding/json"
	"fmt"
)

// Model is a trained classifier over a single numeric feature row.
type Model interface {
	Predict(row []float64) (int, error)
}

type taggedModel struct {
	Type    string          `json:"type"`
	Nodes   json.RawMessage `json:"nodes"`
	Trees   json.RawMessage `json:"trees"`
	Weights []float64       `json:"weights"`
	Bias    float64         `json:"bias"`
}

// Unmarshal decodes the model part of a bundle artifact. The value is either
// a tagged object ({"type": "decision_tree"|"random_forest"|"logistic", ...})
// or a bare node array, which is read as a decision tree.
func Unmarshal(data []byte) (Model, error) {
	var tagged taggedModel
	if err := json.Unmarshal(data, &tagged); err == nil && tagged.Type != "" {
		return unmarshalTagged(tagged)
	}

	var nodes []TreeNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("unrecognized model payload: %w", err)
	}
	tree := &DecisionTree{Nodes: nodes}
	if err := tree.validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

func unmarshalTagged(tagged taggedModel) (Model, error) {
	switch tagged.Type {
	case "decision_tree":
		var nodes []TreeNode
		if err := json.Unmarshal(tagged.Nodes, &nodes); err != nil {
			return nil, fmt.Errorf("decode decision tree nodes: %w", err)
		}
		tree := &DecisionTree{Nodes: nodes}
		if err := tree.validate(); err != nil {
			return nil, err
		}
		return tree, nil
	case "random_forest":
		var treeNodes [][]TreeNode
		if err := json.Unmarshal(tagged.Trees, &treeNodes); err != nil {
			return nil, fmt.Errorf("decode forest trees: %w", err)
		}
		forest := &RandomForest{}
		for _, nodes := range treeNodes {
			tree := &DecisionTree{Nodes: nodes}
			if err := tree.validate(); err != nil {
				return nil, err
			}
			forest.Trees = append(forest.Trees, tree)
		}
		if len(forest.Trees) == 0 {
			return nil, fmt.Errorf("forest has no trees")
		}
		return forest, nil
	case "logistic":
		model := &Logistic{Weights: tagged.Weights, Bias: tagged.Bias}
		if len(model.Weights) == 0 {
			return nil, fmt.Errorf("logistic model has no weights")
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", tagged.Type)
	}
}
