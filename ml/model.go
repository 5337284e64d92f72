package ml

// Classifier is a trained classification artifact. Class indices are 0..NumClasses()-1
// and PredictProba returns one probability per class, aligned by index.
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
	NumClasses() int
	NumFeatures() int
}

// Scaler is the deterministic linear transform fit alongside the classifier.
type Scaler interface {
	Transform(features []float64) ([]float64, error)
	NumFeatures() int
}

// FeatureSchema is the ordered list of feature names the model was trained on.
type FeatureSchema []string

// Index returns the position of name in the schema, or -1.
func (s FeatureSchema) Index(name string) int {
	for i, feature := range s {
		if feature == name {
			return i
		}
	}
	return -1
}
