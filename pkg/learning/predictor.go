package learning

// Predictor is the read side of a classifier, used by evaluation and the
// milter.
type Predictor interface {
	Predict(in Input) (Label, error)
	PredictProbabilities(in Input) (Probabilities, error)
	Classify(in Input) (Label, Probabilities, error)
}

// Trainer is the write side of a classifier, used by the train and
// update commands.
type Trainer interface {
	Train(tokens [][]string, labels []Label) error
	TrainExamples(examples []Example) error
	IncrementalUpdate(tokens [][]string, labels []Label) error
	IncrementalUpdateExamples(examples []Example) error
}

var _ Predictor = (*Classifier)(nil)
var _ Trainer = (*Classifier)(nil)
