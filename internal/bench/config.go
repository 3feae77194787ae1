package bench

import (
	"fmt"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/drakos74/free-learn/internal/math/ml"
)

const (
	// Delimited reads numeric features with a trailing label per line.
	Delimited = "delimited"
	// IDX reads an image file and a label file in the IDX binary format.
	IDX = "idx"
)

// SourceConfig describes where the records come from.
type SourceConfig struct {
	Format    string `json:"format" yaml:"format"`
	Path      string `json:"path" yaml:"path"`
	Labels    string `json:"labels" yaml:"labels"`
	Delimiter string `json:"delimiter" yaml:"delimiter"`
	// Limit keeps only the first records of the source, 0 keeps all of them.
	Limit int `json:"limit" yaml:"limit"`
}

// Range is an inclusive range of k values.
type Range struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

type KNNConfig struct {
	Enabled bool      `json:"enabled" yaml:"enabled"`
	K       Range     `json:"k" yaml:"k"`
	Metric  ml.Metric `json:"metric" yaml:"metric"`
}

// KMeansConfig configures the centroid clusterer.
// A zero k range starts from the class count and goes up to a tenth of the train records.
type KMeansConfig struct {
	Enabled  bool  `json:"enabled" yaml:"enabled"`
	K        Range `json:"k" yaml:"k"`
	PerClass bool  `json:"per_class" yaml:"per_class"`
}

type NetworkConfig struct {
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Hidden  []int   `json:"hidden" yaml:"hidden"`
	Rate    float64 `json:"rate" yaml:"rate"`
	Epochs  int     `json:"epochs" yaml:"epochs"`
}

// BaselineConfig enables the library models, zero values disable them.
type BaselineConfig struct {
	// Forest is the number of trees of the random forest.
	Forest int `json:"forest" yaml:"forest"`
	// Lloyd is the number of iterations of the batch k-means.
	Lloyd   int  `json:"lloyd" yaml:"lloyd"`
	Golearn bool `json:"golearn" yaml:"golearn"`
}

type StorageConfig struct {
	Dir  string `json:"dir" yaml:"dir"`
	Void bool   `json:"void" yaml:"void"`
}

// Config is the configuration of a benchmark run.
type Config struct {
	Source   SourceConfig   `json:"source" yaml:"source"`
	Seed     int64          `json:"seed" yaml:"seed"`
	Split    data.Fractions `json:"split" yaml:"split"`
	KNN      KNNConfig      `json:"knn" yaml:"knn"`
	KMeans   KMeansConfig   `json:"kmeans" yaml:"kmeans"`
	Network  NetworkConfig  `json:"network" yaml:"network"`
	Baseline BaselineConfig `json:"baseline" yaml:"baseline"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Metrics  string         `json:"metrics" yaml:"metrics"`
}

// DefaultConfig runs the three models on the idx digits with 15 epochs and k from 1 to 3.
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			Format: IDX,
			Path:   "dataset/train-images-idx3-ubyte",
			Labels: "dataset/train-labels-idx1-ubyte",
		},
		Seed:  1,
		Split: data.DefaultFractions(),
		KNN: KNNConfig{
			Enabled: true,
			K:       Range{From: 1, To: 3},
			Metric:  ml.Euclidean,
		},
		KMeans: KMeansConfig{
			Enabled: true,
		},
		Network: NetworkConfig{
			Enabled: true,
			Hidden:  []int{10},
			Rate:    0.25,
			Epochs:  15,
		},
		Storage: StorageConfig{
			Dir: "file-storage",
		},
	}
}

// Validate checks the settings of the enabled models.
func (c Config) Validate() error {
	if err := c.Split.Validate(); err != nil {
		return err
	}
	switch c.Source.Format {
	case Delimited, IDX:
	default:
		return fmt.Errorf("unknown source format '%s': %w", c.Source.Format, ml.ConfigErr)
	}
	if c.Source.Limit < 0 {
		return fmt.Errorf("negative source limit %d: %w", c.Source.Limit, ml.ConfigErr)
	}
	if c.KNN.Enabled {
		if err := c.KNN.Metric.Validate(); err != nil {
			return err
		}
		if c.KNN.K.From <= 0 || c.KNN.K.To < c.KNN.K.From {
			return fmt.Errorf("invalid knn k range %+v: %w", c.KNN.K, ml.ConfigErr)
		}
	}
	if c.KMeans.Enabled && (c.KMeans.K.From < 0 || c.KMeans.K.To < 0) {
		return fmt.Errorf("invalid k-means k range %+v: %w", c.KMeans.K, ml.ConfigErr)
	}
	if c.Network.Enabled {
		if c.Network.Rate <= 0 || c.Network.Epochs <= 0 {
			return fmt.Errorf("invalid network rate %f or epochs %d: %w", c.Network.Rate, c.Network.Epochs, ml.ConfigErr)
		}
	}
	if c.Baseline.Forest < 0 || c.Baseline.Lloyd < 0 {
		return fmt.Errorf("invalid baseline config %+v: %w", c.Baseline, ml.ConfigErr)
	}
	return nil
}
