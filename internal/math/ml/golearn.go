package ml

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/sjwhitworth/golearn/knn"
)

// GolearnKNN evaluates the golearn nearest neighbour classifier on a csv file
// holding numeric features and a trailing categorical class column.
// It returns the test accuracy as a percentage.
/**
5.1,3.5,1.4,0.2,Iris-setosa
4.9,3.0,1.4,0.2,Iris-setosa
...
*/
func GolearnKNN(file string, k int, trainFraction float64) (float64, error) {
	if k <= 0 {
		return 0, fmt.Errorf("k must be positive but was %d: %w", k, ConfigErr)
	}
	if trainFraction <= 0 || trainFraction >= 1 {
		return 0, fmt.Errorf("train fraction must be within (0,1) but was %f: %w", trainFraction, ConfigErr)
	}
	rawData, err := base.ParseCSVToInstances(file, false)
	if err != nil {
		return 0, fmt.Errorf("could not parse '%s': %w", file, err)
	}

	cls := knn.NewKnnClassifier(string(Euclidean), "linear", k)

	trainData, testData := base.InstancesTrainTestSplit(rawData, 1-trainFraction)
	err = cls.Fit(trainData)
	if err != nil {
		log.Error().Err(err).Msg("could not train knn model")
		return 0, err
	}

	predictions, err := cls.Predict(testData)
	if err != nil {
		log.Error().Err(err).Msg("could not predict on knn model")
		return 0, err
	}

	confusionMat, err := evaluation.GetConfusionMatrix(testData, predictions)
	if err != nil {
		log.Error().Err(err).Msg("could not get confusion matrix")
		return 0, err
	}
	performance := 100 * evaluation.GetAccuracy(confusionMat)
	log.Info().Str("file", file).Int("k", k).Float64("performance", performance).Msg("golearn knn")
	return performance, nil
}
