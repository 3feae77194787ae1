package ml

import (
	"fmt"

	"github.com/drakos74/free-learn/internal/data"
	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// Forest is a random forest baseline trained on the same partitions as the other models.
type Forest struct {
	trees      int
	partitions Partitions
	forest     *randomforest.Forest
}

// NewForest creates a random forest of the given number of trees.
func NewForest(trees int, partitions Partitions) (*Forest, error) {
	if trees <= 0 {
		return nil, fmt.Errorf("tree count must be positive but was %d: %w", trees, ConfigErr)
	}
	return &Forest{
		trees:      trees,
		partitions: partitions,
	}, nil
}

// Train grows the trees on the train partition.
// Records must carry their class index.
func (f *Forest) Train() error {
	train := f.partitions.Train()
	if len(train) == 0 {
		return fmt.Errorf("no train records for forest: %w", EmptyPartitionErr)
	}
	xData := make([][]float64, len(train))
	yData := make([]int, len(train))
	for i, r := range train {
		xData[i] = r.Features()
		yData[i] = r.Class
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: xData, Class: yData}
	forest.Train(f.trees)
	f.forest = forest
	log.Info().Int("trees", f.trees).Int("records", len(train)).Msg("trained forest")
	return nil
}

// FeatureImportance returns the importance of every feature after training.
func (f *Forest) FeatureImportance() []float64 {
	if f.forest == nil {
		return nil
	}
	return f.forest.FeatureImportance
}

// Predict returns the class index with the most votes.
func (f *Forest) Predict(r *data.Record) (int, error) {
	if f.forest == nil {
		return 0, fmt.Errorf("forest is not trained: %w", StageErr)
	}
	votes := f.forest.Vote(r.Features())
	if len(votes) == 0 {
		return 0, fmt.Errorf("no votes for record: %w", StageErr)
	}
	return floats.MaxIdx(votes), nil
}

func (f *Forest) correct(r *data.Record) (bool, error) {
	class, err := f.Predict(r)
	if err != nil {
		return false, err
	}
	return class == r.Class, nil
}

// Validate returns the accuracy over the validation partition.
func (f *Forest) Validate() (float64, error) {
	return accuracy("validation", f.partitions.Validation(), f.correct)
}

// Test returns the accuracy over the test partition.
func (f *Forest) Test() (float64, error) {
	return accuracy("test", f.partitions.Test(), f.correct)
}
