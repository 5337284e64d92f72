package ml

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// ArtifactFormatVersion is the only classifier/scaler envelope version this build reads.
const ArtifactFormatVersion = 1

// artifactHeader is the envelope every classifier and scaler file carries.
type artifactHeader struct {
	Type          string `json:"type"`
	FormatVersion int    `json:"format_version"`
}

func readArtifact(path string) (artifactHeader, []byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return artifactHeader{}, nil, err
	}
	var header artifactHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return artifactHeader{}, nil, errors.Wrapf(err, "decode %s", path)
	}
	if header.FormatVersion != ArtifactFormatVersion {
		return header, nil, errors.Wrapf(ErrUnsupportedArtifact,
			"%s: format version %d, want %d", path, header.FormatVersion, ArtifactFormatVersion)
	}
	return header, payload, nil
}

// LoadClassifier reads a classifier artifact and dispatches on its type.
func LoadClassifier(path string) (Classifier, error) {
	header, payload, err := readArtifact(path)
	if err != nil {
		return nil, err
	}
	switch header.Type {
	case "random_forest":
		model := &RandomForest{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, errors.Wrapf(err, "decode random forest %s", path)
		}
		if err := model.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid random forest %s", path)
		}
		return model, nil
	case "decision_tree":
		model := &DecisionTree{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, errors.Wrapf(err, "decode decision tree %s", path)
		}
		if err := model.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid decision tree %s", path)
		}
		return model, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedArtifact, "%s: classifier type %q", path, header.Type)
	}
}

// LoadScaler reads a scaler artifact and dispatches on its type.
func LoadScaler(path string) (Scaler, error) {
	header, payload, err := readArtifact(path)
	if err != nil {
		return nil, err
	}
	switch header.Type {
	case "standard":
		scaler := &StandardScaler{}
		if err := json.Unmarshal(payload, scaler); err != nil {
			return nil, errors.Wrapf(err, "decode standard scaler %s", path)
		}
		if err := scaler.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid standard scaler %s", path)
		}
		return scaler, nil
	case "minmax":
		scaler := &MinMaxScaler{}
		if err := json.Unmarshal(payload, scaler); err != nil {
			return nil, errors.Wrapf(err, "decode minmax scaler %s", path)
		}
		if err := scaler.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid minmax scaler %s", path)
		}
		return scaler, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedArtifact, "%s: scaler type %q", path, header.Type)
	}
}

// LoadFeatureSchema reads the ordered feature name list, a JSON array of strings.
func LoadFeatureSchema(path string) (FeatureSchema, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(payload, &names); err != nil {
		return nil, errors.Wrapf(err, "decode feature schema %s", path)
	}
	if len(names) == 0 {
		return nil, errors.Newf("feature schema %s is empty", path)
	}
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, errors.Newf("feature schema %s: blank name at position %d", path, i)
		}
		if _, dup := seen[name]; dup {
			return nil, errors.Newf("feature schema %s: duplicate feature %q", path, name)
		}
		seen[name] = struct{}{}
	}
	return FeatureSchema(names), nil
}
