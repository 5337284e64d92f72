package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cultivar/ml/mltest"
	"cultivar/pipeline"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CULTIVAR_MODEL_DIR", "")
	t.Setenv("CULTIVAR_PORT", "")
	t.Setenv("CULTIVAR_LOG_LEVEL", "")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func modelDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mltest.WriteArtifacts(t, dir)
	return dir
}

func TestParseAssignments(t *testing.T) {
	raw, err := parseAssignments([]string{"alcohol=13.5", " ash =2.1", "hue="})
	require.NoError(t, err)
	assert.Equal(t, pipeline.RawInput{"alcohol": "13.5", "ash": "2.1", "hue": ""}, raw)

	for _, args := range [][]string{{"alcohol"}, {"=1"}, {"ash=1", "ash=2"}} {
		_, err := parseAssignments(args)
		assert.Error(t, err, args)
	}
}

func TestPredictCommand(t *testing.T) {
	out, err := runRoot(t, "predict", "--model-dir", modelDir(t),
		"alcohol=13.1", "malic_acid=3.3", "ash=2.4",
		"total_phenols=1.7", "flavanoids=0.8", "color_intensity=7.4")
	require.NoError(t, err, out)

	var resp pipeline.PredictResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.True(t, resp.Success)
	assert.Equal(t, "Cultivar 3", resp.PredictedCultivar)
	assert.Equal(t, 7.4, resp.InputFeatures["color_intensity"])
}

func TestPredictCommandInvalidValue(t *testing.T) {
	out, err := runRoot(t, "predict", "--model-dir", modelDir(t), "alcohol=strong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrValidation))
	assert.Contains(t, out, `"success": false`)
	assert.Contains(t, out, "strong")
}

func TestPredictCommandWithoutArtifacts(t *testing.T) {
	_, err := runRoot(t, "predict", "--model-dir", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrModelUnavailable))
}

func TestFeaturesCommand(t *testing.T) {
	out, err := runRoot(t, "features", "--model-dir", modelDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Model loaded: true")
	for _, name := range mltest.Schema() {
		assert.Contains(t, out, name)
	}
}

func TestFeaturesCommandDegraded(t *testing.T) {
	out, err := runRoot(t, "features", "--model-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "Model loaded: false")
	assert.Contains(t, out, "Scaler loaded: false")
}

func TestEvaluateCommand(t *testing.T) {
	data := filepath.Join(t.TempDir(), "wine.csv")
	require.NoError(t, os.WriteFile(data, []byte(
		"alcohol,malic_acid,ash,total_phenols,flavanoids,color_intensity,cultivar\n"+
			"13.7,1.9,2.4,2.8,3.0,5.5,0\n"+
			"12.3,1.9,2.2,2.2,2.1,3.0,1\n"), 0o600))

	out, err := runRoot(t, "evaluate", "--model-dir", modelDir(t), "--data", data)
	require.NoError(t, err, out)
	assert.Contains(t, out, "accuracy=1.0000 (2/2)")
	assert.Contains(t, out, "Cultivar 2")
}

func TestEvaluateCommandRequiresData(t *testing.T) {
	_, err := runRoot(t, "evaluate")
	assert.Error(t, err)
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := runRoot(t, "features", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBootstrapAppliesOverrides(t *testing.T) {
	dir := modelDir(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("model:\n  cache_size: 4\n"), 0o600))
	t.Setenv("CULTIVAR_MODEL_DIR", "")

	features, _, err := NewRootCmd().Find([]string{"features"})
	require.NoError(t, err)

	opts := &rootOptions{configPath: cfgPath, modelDir: dir, logLevel: "debug"}
	cfg, err := loadConfig(features, opts)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Artifacts.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Model.CacheSize)

	rt, err := bootstrapWith(cfg, true)
	require.NoError(t, err)
	assert.True(t, rt.artifacts.Ready())
}
