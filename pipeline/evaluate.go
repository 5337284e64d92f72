package pipeline

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// LabeledSample is one input with its known cultivar class.
type LabeledSample struct {
	Input RawInput
	Class int
}

// ClassScore holds per-class precision and recall.
type ClassScore struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Support   int     `json:"support"`
}

// Evaluation summarizes a pipeline run over labeled samples.
type Evaluation struct {
	Samples  int          `json:"samples"`
	Correct  int          `json:"correct"`
	Failed   int          `json:"failed"`
	Accuracy float64      `json:"accuracy"`
	Classes  []ClassScore `json:"classes"`
}

// Evaluate runs every sample through the pipeline. Samples the pipeline rejects count
// as failed and as misclassified.
func (p *Pipeline) Evaluate(samples []LabeledSample) Evaluation {
	numClasses := 0
	if p.artifacts.ModelLoaded() {
		numClasses = p.artifacts.Classifier.NumClasses()
	}
	for _, s := range samples {
		if s.Class+1 > numClasses {
			numClasses = s.Class + 1
		}
	}

	truePositive := make([]int, numClasses)
	predicted := make([]int, numClasses)
	actual := make([]int, numClasses)

	eval := Evaluation{Samples: len(samples)}
	for _, s := range samples {
		actual[s.Class]++
		resp, err := p.Run(s.Input)
		if err != nil {
			eval.Failed++
			continue
		}
		if resp.PredictedClass >= numClasses {
			continue
		}
		predicted[resp.PredictedClass]++
		if resp.PredictedClass == s.Class {
			eval.Correct++
			truePositive[s.Class]++
		}
	}

	if eval.Samples > 0 {
		eval.Accuracy = float64(eval.Correct) / float64(eval.Samples)
	}
	for class := 0; class < numClasses; class++ {
		score := ClassScore{Label: CultivarLabel(class), Support: actual[class]}
		if predicted[class] > 0 {
			score.Precision = float64(truePositive[class]) / float64(predicted[class])
		}
		if actual[class] > 0 {
			score.Recall = float64(truePositive[class]) / float64(actual[class])
		}
		eval.Classes = append(eval.Classes, score)
	}
	return eval
}

// ReadLabeledCSV reads samples from CSV with a header row. labelColumn holds the
// zero-based class index; every other column is passed to the extractor as-is, and
// empty cells are left out so that the feature default applies.
func ReadLabeledCSV(r io.Reader, labelColumn string) ([]LabeledSample, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrMalformedInput, "csv is empty")
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read csv header"), ErrMalformedInput)
	}
	labelIdx := -1
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] == labelColumn {
			labelIdx = i
		}
	}
	if labelIdx < 0 {
		return nil, errors.Wrapf(ErrMalformedInput, "csv has no %q column", labelColumn)
	}

	var samples []LabeledSample
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "read csv line %d", line), ErrMalformedInput)
		}
		class, err := strconv.Atoi(strings.TrimSpace(record[labelIdx]))
		if err != nil || class < 0 {
			return nil, errors.Wrapf(ErrMalformedInput, "line %d: invalid class %q", line, record[labelIdx])
		}
		input := make(RawInput, len(header)-1)
		for i, cell := range record {
			if i == labelIdx || strings.TrimSpace(cell) == "" {
				continue
			}
			input[header[i]] = cell
		}
		samples = append(samples, LabeledSample{Input: input, Class: class})
	}
	return samples, nil
}
