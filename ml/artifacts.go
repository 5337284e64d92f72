package ml

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ArtifactFiles names the three artifact files inside the artifact directory.
type ArtifactFiles struct {
	Model    string
	Scaler   string
	Features string
}

func DefaultArtifactFiles() ArtifactFiles {
	return ArtifactFiles{
		Model:    "wine_cultivar_model.json",
		Scaler:   "scaler.json",
		Features: "selected_features.json",
	}
}

// Artifacts is the read-only state shared by every request. It is built once by
// LoadArtifacts or NewArtifacts and never modified afterwards.
//
// When any artifact fails to load, Classifier, Scaler and Features are all nil and
// Err records why.
type Artifacts struct {
	Dir        string
	Classifier Classifier
	Scaler     Scaler
	Features   FeatureSchema
	Err        error
	LoadedAt   time.Time
}

func (a *Artifacts) ModelLoaded() bool  { return a != nil && a.Classifier != nil }
func (a *Artifacts) ScalerLoaded() bool { return a != nil && a.Scaler != nil }

// Ready reports whether inference is possible.
func (a *Artifacts) Ready() bool {
	return a.ModelLoaded() && a.ScalerLoaded() && len(a.Features) > 0
}

// Schema returns a copy of the feature schema, or nil when unavailable.
func (a *Artifacts) Schema() FeatureSchema {
	if a == nil || a.Features == nil {
		return nil
	}
	return append(FeatureSchema(nil), a.Features...)
}

// NewArtifacts bundles in-memory artifacts after checking that their widths agree.
func NewArtifacts(classifier Classifier, scaler Scaler, features FeatureSchema) (*Artifacts, error) {
	if classifier == nil || scaler == nil || len(features) == 0 {
		return nil, errors.Mark(errors.New("classifier, scaler and features are required"), ErrArtifactLoad)
	}
	if err := checkWidths(classifier, scaler, features); err != nil {
		return nil, errors.Mark(err, ErrArtifactLoad)
	}
	return &Artifacts{
		Classifier: classifier,
		Scaler:     scaler,
		Features:   append(FeatureSchema(nil), features...),
		LoadedAt:   time.Now(),
	}, nil
}

// LoadArtifacts loads the classifier, scaler and feature schema from dir. It never
// fails: on any error the returned Artifacts is in the unavailable state with Err set.
func LoadArtifacts(dir string, files ArtifactFiles, logger *zap.SugaredLogger) *Artifacts {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	modelPath := filepath.Join(dir, files.Model)
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		logger.Warnw("Model file not found", "path", modelPath)
	}

	var errs []error
	features, err := LoadFeatureSchema(filepath.Join(dir, files.Features))
	if err != nil {
		logger.Errorw("Failed to load feature schema", "path", filepath.Join(dir, files.Features), "error", err)
		errs = append(errs, errors.Wrap(err, "feature schema"))
	}
	classifier, err := LoadClassifier(modelPath)
	if err != nil {
		logger.Errorw("Failed to load classifier", "path", modelPath, "error", err)
		errs = append(errs, errors.Wrap(err, "classifier"))
	}
	scaler, err := LoadScaler(filepath.Join(dir, files.Scaler))
	if err != nil {
		logger.Errorw("Failed to load scaler", "path", filepath.Join(dir, files.Scaler), "error", err)
		errs = append(errs, errors.Wrap(err, "scaler"))
	}
	if len(errs) == 0 {
		if err := checkWidths(classifier, scaler, features); err != nil {
			logger.Errorw("Artifacts are inconsistent", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		var combined error
		for _, e := range errs {
			combined = errors.CombineErrors(combined, e)
		}
		combined = errors.WithHint(combined, "check the artifact directory and re-export the model")
		return &Artifacts{
			Dir: dir,
			Err: errors.Mark(errors.Wrapf(combined, "load artifacts from %s", dir), ErrArtifactLoad),
		}
	}

	logger.Infow("Model, scaler and features loaded",
		"dir", dir,
		"features", len(features),
		"classes", classifier.NumClasses())
	return &Artifacts{
		Dir:        dir,
		Classifier: classifier,
		Scaler:     scaler,
		Features:   features,
		LoadedAt:   time.Now(),
	}
}

func checkWidths(classifier Classifier, scaler Scaler, features FeatureSchema) error {
	if scaler.NumFeatures() != len(features) {
		return errors.Wrapf(ErrDimensionMismatch, "scaler expects %d features, schema lists %d",
			scaler.NumFeatures(), len(features))
	}
	if classifier.NumFeatures() != len(features) {
		return errors.Wrapf(ErrDimensionMismatch, "classifier expects %d features, schema lists %d",
			classifier.NumFeatures(), len(features))
	}
	return nil
}
