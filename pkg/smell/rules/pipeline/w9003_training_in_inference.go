package pipeline

import (
	"strings"

	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

func init() {
	smell.Register(TrainingInInference)
}

// Defaults for the training-in-inference rule.
var (
	DefaultTrainMethods     = []string{"fit"}
	DefaultInferenceMarkers = []string{"app", "predict"}
)

// TrainingInInference flags model training calls in files whose path marks
// them as serving or prediction code.
var TrainingInInference = smell.Definition{
	Meta: trainingInInferenceMeta,
	New:  newTrainingInInference,
}

var trainingInInferenceMeta = smell.Meta{
	ID:          "training-in-inference",
	Code:        "W9003",
	Name:        "pipeline.training_in_inference",
	Group:       "pipeline",
	Description: "Models should not be trained inside application or prediction scripts.",
	Severity:    core.SeverityWarning,
	Kinds:       []pyast.Kind{pyast.KindCall},
	ConfigKeys:  []string{"train_methods", "inference_markers"},
	Rationale: `A serving path that calls fit() retrains on every start or request. The
deployed model then differs from the one that was evaluated and latency grows
with the training set.`,
	BadExample: `# app.py
model = RandomForestClassifier()
model.fit(X, y)`,
	GoodExample: `# app.py
model = joblib.load("model.joblib")`,
	Fix: "Move training to a training script and load the persisted model here.",
}

type trainingInInference struct {
	smell.Base
	methods map[string]bool
	markers []string
}

type trainingInInferenceOptions struct {
	TrainMethods     []string `mapstructure:"train_methods"`
	InferenceMarkers []string `mapstructure:"inference_markers"`
}

func newTrainingInInference(opts smell.Options) (smell.Rule, error) {
	settings := trainingInInferenceOptions{
		TrainMethods:     DefaultTrainMethods,
		InferenceMarkers: DefaultInferenceMarkers,
	}
	if err := opts.Decode(&settings); err != nil {
		return nil, err
	}

	markers := make([]string, 0, len(settings.InferenceMarkers))
	for _, m := range settings.InferenceMarkers {
		markers = append(markers, strings.ToLower(m))
	}
	return &trainingInInference{
		Base:    smell.NewBase(trainingInInferenceMeta),
		methods: smell.StringSet(settings.TrainMethods),
		markers: markers,
	}, nil
}

func (r *trainingInInference) Visit(file *pyast.File, node *pyast.Node) ([]smell.Diagnostic, error) {
	attr := node.CalleeAttribute()
	if attr == nil || !r.methods[attr.Attr] {
		return nil, nil
	}
	if !r.inferencePath(file.Path) {
		return nil, nil
	}
	return []smell.Diagnostic{
		r.Diagnose(file, node.Pos, "Model training detected in a non-training script"),
	}, nil
}

// inferencePath matches against the whole lower-cased path, directories included.
func (r *trainingInInference) inferencePath(path string) bool {
	lower := strings.ToLower(path)
	for _, m := range r.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
