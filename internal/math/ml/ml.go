package ml

import (
	"errors"
	"fmt"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/rs/zerolog/log"
)

var (
	ConfigErr         = errors.New("invalid configuration")
	EmptyPartitionErr = errors.New("empty partition")
	StageErr          = errors.New("invalid stage")
)

// Partitions gives access to the train, validation and test records of a dataset.
type Partitions interface {
	Train() []*data.Record
	Validation() []*data.Record
	Test() []*data.Record
}

// Model is a trained model that can be evaluated on the validation and test partitions.
type Model interface {
	Predict(r *data.Record) (int, error)
	Validate() (float64, error)
	Test() (float64, error)
}

// match decides whether the prediction for the given record is correct.
type match func(r *data.Record) (bool, error)

// accuracy evaluates the given records and returns the percentage of correct predictions.
// An empty set of records has an accuracy of 0.
func accuracy(set string, records []*data.Record, correct match) (float64, error) {
	if len(records) == 0 {
		log.Warn().Str("set", set).Msg("no records to evaluate")
		return 0, nil
	}
	count := 0
	for i, r := range records {
		ok, err := correct(r)
		if err != nil {
			return 0, fmt.Errorf("could not evaluate %s record %d: %w", set, i, err)
		}
		if ok {
			count++
			if count%10 == 0 {
				log.Debug().
					Str("set", set).
					Float64("performance", 100*float64(count)/float64(i+1)).
					Msg("current performance")
			}
		}
	}
	performance := 100 * float64(count) / float64(len(records))
	log.Info().Str("set", set).Int("records", len(records)).Float64("performance", performance).Msg("final performance")
	return performance, nil
}

// Evaluation evaluates a model configuration for the given k.
type Evaluation func(k int) (float64, error)

// SearchK evaluates all k within [from, to] and returns the one with the highest score.
// On equal scores the smallest k wins.
func SearchK(from, to int, eval Evaluation) (int, float64, error) {
	if from <= 0 || to < from {
		return 0, 0, fmt.Errorf("invalid k range [%d,%d]: %w", from, to, ConfigErr)
	}
	bestK := from
	best := -1.0
	for k := from; k <= to; k++ {
		score, err := eval(k)
		if err != nil {
			return 0, 0, fmt.Errorf("could not evaluate k = %d: %w", k, err)
		}
		log.Info().Int("k", k).Float64("performance", score).Msg("evaluated k")
		if score > best {
			best = score
			bestK = k
		}
	}
	log.Info().Int("k", bestK).Float64("performance", best).Msg("best k")
	return bestK, best, nil
}
