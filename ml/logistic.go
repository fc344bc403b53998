package ml

import (
	"errors"
	"math"
)

// Logistic is a binary logistic scorer: sigmoid(w·x + b) >= 0.5 maps to 1.
type Logistic struct {
	Weights []float64
	Bias    float64
}

func (l *Logistic) Predict(row []float64) (int, error) {
	if len(row) != len(l.Weights) {
		return 0, errors.New("row length does not match weight count")
	}
	score := l.Bias
	for i, w := range l.Weights {
		score += w * row[i]
	}
	if 1/(1+math.Exp(-score)) >= 0.5 {
		return 1, nil
	}
	return 0, nil
}
