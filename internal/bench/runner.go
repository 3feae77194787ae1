package bench

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/drakos74/free-learn/internal/data/source"
	learnmath "github.com/drakos74/free-learn/internal/math"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/drakos74/free-learn/internal/metrics"
	"github.com/drakos74/free-learn/internal/storage"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// Runner prepares a dataset and evaluates the configured models on it.
// All randomness is drawn from a single source seeded by the config.
type Runner struct {
	config  Config
	rng     *rand.Rand
	shard   storage.Shard
	stores  map[string]storage.Persistence
	metrics *metrics.Metrics
	dataset *data.Dataset
}

// NewRunner creates a runner for the given config.
// Every model gets its own storage from the shard.
// A nil shard discards the reports, nil metrics get a fresh registry.
func NewRunner(config Config, shard storage.Shard, m *metrics.Metrics) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if shard == nil {
		shard = storage.VoidShard()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Runner{
		config:  config,
		rng:     rand.New(rand.NewSource(config.Seed)),
		shard:   shard,
		stores:  make(map[string]storage.Persistence),
		metrics: m,
	}, nil
}

// Load reads the records of the configured source.
func (r *Runner) Load() ([]*data.Record, error) {
	var records []*data.Record
	var err error
	switch r.config.Source.Format {
	case Delimited:
		records, _, err = source.LoadDelimited(r.config.Source.Path, r.config.Source.Delimiter)
	case IDX:
		records, err = source.LoadIDX(r.config.Source.Path, r.config.Source.Labels)
	}
	if err != nil {
		return nil, err
	}
	if limit := r.config.Source.Limit; limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

// Prepare loads the records into a new dataset, encodes the classes, normalises and splits it.
func (r *Runner) Prepare(records []*data.Record) (Summary, error) {
	ds := data.New()
	if err := ds.Load(records...); err != nil {
		return Summary{}, err
	}
	ds.CountClasses()
	if err := ds.Normalize(); err != nil {
		return Summary{}, err
	}
	if err := ds.Split(r.rng, r.config.Split); err != nil {
		return Summary{}, err
	}
	r.dataset = ds

	summary := Summary{
		Records:    ds.Size(),
		Dim:        ds.Dim(),
		Classes:    ds.ClassCount(),
		Train:      len(ds.Train()),
		Validation: len(ds.Validation()),
		Test:       len(ds.Test()),
		Means:      make([]float64, ds.Dim()),
	}
	column := make([]float64, ds.Size())
	for d := 0; d < ds.Dim(); d++ {
		for i, record := range ds.Records() {
			column[i] = record.Raw[d]
		}
		summary.Means[d] = stat.Mean(column, nil)
	}
	log.Info().
		Int("records", summary.Records).
		Int("dim", summary.Dim).
		Int("classes", summary.Classes).
		Int("train", summary.Train).
		Int("validation", summary.Validation).
		Int("test", summary.Test).
		Msg("prepared dataset")
	return summary, nil
}

// Dataset returns the prepared dataset.
func (r *Runner) Dataset() *data.Dataset {
	return r.dataset
}

type run struct {
	enabled bool
	exec    func() (Report, error)
}

// Run evaluates all enabled models, stores their reports and records their metrics.
func (r *Runner) Run() ([]Report, error) {
	if r.dataset == nil {
		return nil, fmt.Errorf("dataset is not prepared: %w", ml.StageErr)
	}
	runs := []run{
		{enabled: r.config.KNN.Enabled, exec: r.RunKNN},
		{enabled: r.config.KMeans.Enabled, exec: r.RunKMeans},
		{enabled: r.config.Network.Enabled, exec: r.RunNetwork},
		{enabled: r.config.Baseline.Forest > 0, exec: r.RunForest},
		{enabled: r.config.Baseline.Lloyd > 0, exec: r.RunLloyd},
		{enabled: r.config.Baseline.Golearn, exec: r.RunGolearn},
	}
	reports := make([]Report, 0, len(runs))
	for _, run := range runs {
		if !run.enabled {
			continue
		}
		report, err := run.exec()
		if err != nil {
			return reports, fmt.Errorf("could not run %s: %w", report.Model, err)
		}
		if err := r.record(&report); err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// store returns the storage of the given model, creating it on first use.
func (r *Runner) store(model string) (storage.Persistence, error) {
	if store, ok := r.stores[model]; ok {
		return store, nil
	}
	store, err := r.shard(model)
	if err != nil {
		return nil, fmt.Errorf("could not create storage for %s: %w", model, err)
	}
	r.stores[model] = store
	return store, nil
}

func (r *Runner) record(report *Report) error {
	report.done()
	store, err := r.store(report.Model)
	if err != nil {
		return err
	}
	if err := store.Store(report.Key(), report); err != nil {
		return fmt.Errorf("could not store report for %s: %w", report.Model, err)
	}
	r.metrics.Accuracy(report.Model, "validation", report.Validation)
	r.metrics.Accuracy(report.Model, "test", report.Test)
	r.metrics.Epochs(report.Model, report.Errors)
	r.metrics.Increment(report.Model)
	log.Info().
		Str("id", report.ID.String()).
		Str("model", report.Model).
		Int("k", report.K).
		Float64("validation", report.Validation).
		Float64("test", report.Test).
		Dur("duration", report.Duration).
		Msg("model run")
	return nil
}

// RunKNN picks the k with the best validation accuracy and tests it.
func (r *Runner) RunKNN() (Report, error) {
	report := newReport(KNNModel)
	cfg := r.config.KNN
	knn, err := ml.NewKNN(cfg.K.From, cfg.Metric, r.dataset)
	if err != nil {
		return report, err
	}
	k, validation, err := ml.SearchK(cfg.K.From, cfg.K.To, func(k int) (float64, error) {
		if err := knn.SetK(k); err != nil {
			return 0, err
		}
		return knn.Validate()
	})
	if err != nil {
		return report, err
	}
	if err := knn.SetK(k); err != nil {
		return report, err
	}
	test, err := knn.Test()
	if err != nil {
		return report, err
	}
	report.K = k
	report.Validation = validation
	report.Test = test
	report.Params["metric"] = string(cfg.Metric)
	return report, nil
}

// kRange resolves the k range of the clusterer against the prepared dataset.
func (r *Runner) kRange() (int, int) {
	from := r.config.KMeans.K.From
	if from == 0 {
		from = r.dataset.ClassCount()
	}
	to := r.config.KMeans.K.To
	if to == 0 {
		to = len(r.dataset.Train()) / 10
	}
	if to < from {
		to = from
	}
	return from, to
}

func (r *Runner) kmeans(k int) (*ml.KMeans, error) {
	km, err := ml.NewKMeans(k, r.rng, r.dataset)
	if err != nil {
		return nil, err
	}
	if r.config.KMeans.PerClass {
		err = km.InitClustersPerClass()
	} else {
		err = km.InitClusters()
	}
	if err != nil {
		return nil, err
	}
	if err := km.Train(); err != nil {
		return nil, err
	}
	return km, nil
}

// RunKMeans picks the k with the best validation accuracy, retrains and tests it.
// Per class seeding fixes k to the class count.
func (r *Runner) RunKMeans() (Report, error) {
	report := newReport(KMeansModel)
	report.Params["seeding"] = "random"
	k := r.dataset.ClassCount()
	if r.config.KMeans.PerClass {
		report.Params["seeding"] = "per-class"
	} else {
		from, to := r.kRange()
		best, _, err := ml.SearchK(from, to, func(k int) (float64, error) {
			km, err := r.kmeans(k)
			if err != nil {
				return 0, err
			}
			return km.Validate()
		})
		if err != nil {
			return report, err
		}
		k = best
	}
	km, err := r.kmeans(k)
	if err != nil {
		return report, err
	}
	validation, err := km.Validate()
	if err != nil {
		return report, err
	}
	test, err := km.Test()
	if err != nil {
		return report, err
	}
	report.K = len(km.Clusters())
	report.Validation = validation
	report.Test = test
	return report, nil
}

// RunNetwork trains the network for the configured epochs, tests it and stores its weights.
func (r *Runner) RunNetwork() (Report, error) {
	report := newReport(NetworkModel)
	cfg := r.config.Network
	net, err := ml.NewNetwork(cfg.Hidden, r.dataset.Dim(), r.dataset.ClassCount(), cfg.Rate, r.rng, r.dataset)
	if err != nil {
		return report, err
	}
	errs, err := net.Train(cfg.Epochs)
	if err != nil {
		return report, err
	}
	trend, err := learnmath.Trend(errs)
	if err != nil {
		return report, fmt.Errorf("could not fit error trend: %w", err)
	}
	validation, err := net.Validate()
	if err != nil {
		return report, err
	}
	test, err := net.Test()
	if err != nil {
		return report, err
	}
	store, err := r.store(report.Model)
	if err != nil {
		return report, err
	}
	if err := store.Store(report.SnapshotKey(), net.Snapshot()); err != nil {
		return report, fmt.Errorf("could not store network snapshot: %w", err)
	}
	report.Errors = errs
	report.Trend = trend
	report.Validation = validation
	report.Test = test
	report.Params["hidden"] = fmt.Sprintf("%v", cfg.Hidden)
	report.Params["rate"] = learnmath.Format(cfg.Rate)
	report.Params["epochs"] = strconv.Itoa(cfg.Epochs)
	return report, nil
}

// Snapshot loads the network weights stored for the given report.
func (r *Runner) Snapshot(report Report) (ml.Snapshot, error) {
	var s ml.Snapshot
	store, err := r.store(report.Model)
	if err != nil {
		return s, err
	}
	if err := store.Load(report.SnapshotKey(), &s); err != nil {
		return s, fmt.Errorf("could not load snapshot for %s: %w", report.ID, err)
	}
	return s, nil
}

// RunForest evaluates the random forest baseline.
func (r *Runner) RunForest() (Report, error) {
	report := newReport(ForestModel)
	forest, err := ml.NewForest(r.config.Baseline.Forest, r.dataset)
	if err != nil {
		return report, err
	}
	if err := forest.Train(); err != nil {
		return report, err
	}
	return r.evaluate(report, forest)
}

// RunLloyd evaluates the batch k-means baseline with one cluster per class.
func (r *Runner) RunLloyd() (Report, error) {
	report := newReport(LloydModel)
	k := r.dataset.ClassCount()
	lloyd, err := ml.NewLloyd(k, r.config.Baseline.Lloyd, r.dataset)
	if err != nil {
		return report, err
	}
	if err := lloyd.Train(); err != nil {
		return report, err
	}
	report.K = k
	return r.evaluate(report, lloyd)
}

func (r *Runner) evaluate(report Report, model ml.Model) (Report, error) {
	validation, err := model.Validate()
	if err != nil {
		return report, err
	}
	test, err := model.Test()
	if err != nil {
		return report, err
	}
	report.Validation = validation
	report.Test = test
	return report, nil
}

// RunGolearn exports the dataset and evaluates the golearn classifier on it.
// golearn splits on its own, so only the test accuracy is reported.
func (r *Runner) RunGolearn() (Report, error) {
	report := newReport(GolearnModel)
	k := r.config.KNN.K.From
	if k <= 0 {
		k = 1
	}
	f, err := os.CreateTemp("", "free-learn-*.csv")
	if err != nil {
		return report, fmt.Errorf("could not create export file: %w", err)
	}
	file := f.Name()
	f.Close()
	defer os.Remove(file)

	if err := source.SaveDelimited(file, r.dataset.Records(), ","); err != nil {
		return report, err
	}
	test, err := ml.GolearnKNN(file, k, r.config.Split.Train)
	if err != nil {
		return report, err
	}
	report.K = k
	report.Test = test
	return report, nil
}
