package ml

import (
	"math"

	"github.com/cockroachdb/errors"
)

// RandomForest averages the leaf distributions of its trees. The predicted class is the
// argmax of the averaged distribution, not a majority vote over tree predictions.
type RandomForest struct {
	Trees    []*DecisionTree `json:"trees"`
	Classes  int             `json:"n_classes"`
	Features int             `json:"n_features"`
}

func (rf *RandomForest) NumClasses() int  { return rf.Classes }
func (rf *RandomForest) NumFeatures() int { return rf.Features }

func (rf *RandomForest) Predict(features []float64) (int, error) {
	proba, err := rf.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

func (rf *RandomForest) PredictProba(features []float64) ([]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, errors.New("randomforest: no trees")
	}
	if len(features) != rf.Features {
		return nil, dimensionError(len(features), rf.Features)
	}

	sum := make([]float64, rf.Classes)
	for i, tree := range rf.Trees {
		proba, err := tree.PredictProba(features)
		if err != nil {
			return nil, errors.Wrapf(err, "randomforest: tree %d", i)
		}
		for c, p := range proba {
			sum[c] += p
		}
	}
	n := float64(len(rf.Trees))
	for c := range sum {
		sum[c] /= n
		if math.IsNaN(sum[c]) {
			return nil, errors.New("randomforest: probability is NaN")
		}
	}
	return sum, nil
}

// Validate checks every tree and propagates the forest dimensions to trees that omit them.
func (rf *RandomForest) Validate() error {
	if len(rf.Trees) == 0 {
		return errors.New("randomforest: no trees")
	}
	for i, tree := range rf.Trees {
		if tree == nil {
			return errors.Newf("randomforest: tree %d is null", i)
		}
		if tree.Classes == 0 {
			tree.Classes = rf.Classes
		}
		if tree.Features == 0 {
			tree.Features = rf.Features
		}
		if tree.Classes != rf.Classes || tree.Features != rf.Features {
			return errors.Newf("randomforest: tree %d is %dx%d, forest is %dx%d",
				i, tree.Features, tree.Classes, rf.Features, rf.Classes)
		}
		if err := tree.Validate(); err != nil {
			return errors.Wrapf(err, "randomforest: tree %d", i)
		}
	}
	return nil
}
