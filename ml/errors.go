package ml

import "github.com/cockroachdb/errors"

var (
	// ErrArtifactLoad marks any failure to load the classifier, scaler or schema.
	ErrArtifactLoad = errors.New("artifact load failed")

	// ErrDimensionMismatch is returned when a vector does not match the artifact width.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnsupportedArtifact is returned for unknown artifact types or format versions.
	ErrUnsupportedArtifact = errors.New("unsupported artifact")
)

func dimensionError(got, want int) error {
	return errors.Wrapf(ErrDimensionMismatch, "expected %d features, got %d", want, got)
}
