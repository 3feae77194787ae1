package data

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/drakos74/free-learn/internal/buffer"
	"github.com/rs/zerolog/log"
)

var (
	EmptyErr     = errors.New("empty dataset")
	DimensionErr = errors.New("inconsistent feature dimensions")
	FractionsErr = errors.New("invalid split fractions")
)

// Dataset holds all the records and the train, validation and test partitions.
// Partitions reference the records owned by the dataset, they never copy them.
type Dataset struct {
	records    []*Record
	classes    map[int]int
	labels     []int
	ranges     *buffer.StatsCollector
	train      []*Record
	validation []*Record
	test       []*Record
}

// New creates a new empty dataset.
func New() *Dataset {
	return &Dataset{
		records:    make([]*Record, 0),
		classes:    make(map[int]int),
		labels:     make([]int, 0),
		train:      make([]*Record, 0),
		validation: make([]*Record, 0),
		test:       make([]*Record, 0),
	}
}

// Load appends the given records to the dataset.
// All records must share the same feature dimensionality.
// Class indexes counted before are dropped, the next CountClasses or Normalize recounts them.
func (ds *Dataset) Load(records ...*Record) error {
	dim := ds.Dim()
	for i, r := range records {
		if r == nil {
			return fmt.Errorf("nil record at %d", i)
		}
		if len(ds.records) == 0 && i == 0 {
			dim = r.Dim()
		}
		if r.Dim() != dim {
			return fmt.Errorf("record %d has %d features instead of %d: %w", i, r.Dim(), dim, DimensionErr)
		}
	}
	ds.records = append(ds.records, records...)
	if len(records) > 0 {
		ds.classes = make(map[int]int)
		ds.labels = make([]int, 0)
	}
	return nil
}

// Records returns all the records of the dataset.
func (ds *Dataset) Records() []*Record {
	return ds.records
}

// Size returns the number of records.
func (ds *Dataset) Size() int {
	return len(ds.records)
}

// Dim returns the feature dimensionality of the dataset.
func (ds *Dataset) Dim() int {
	if len(ds.records) == 0 {
		return 0
	}
	return ds.records[0].Dim()
}

// CountClasses assigns a dense class index to every record in first-seen order of its label.
// It returns the number of distinct classes.
func (ds *Dataset) CountClasses() int {
	ds.classes = make(map[int]int)
	ds.labels = make([]int, 0)
	for _, r := range ds.records {
		class, ok := ds.classes[r.Label]
		if !ok {
			class = len(ds.labels)
			ds.classes[r.Label] = class
			ds.labels = append(ds.labels, r.Label)
		}
		r.Class = class
	}
	count := len(ds.labels)
	for _, r := range ds.records {
		r.encode(r.Class, count)
	}
	log.Info().Int("classes", count).Int("records", len(ds.records)).Msg("extracted classes")
	return count
}

// ClassCount returns the number of distinct classes found by CountClasses.
func (ds *Dataset) ClassCount() int {
	return len(ds.labels)
}

// ClassOf returns the class index of the given label.
func (ds *Dataset) ClassOf(label int) (int, bool) {
	class, ok := ds.classes[label]
	return class, ok
}

// LabelOf returns the label for the given class index.
func (ds *Dataset) LabelOf(class int) (int, bool) {
	if class < 0 || class >= len(ds.labels) {
		return 0, false
	}
	return ds.labels[class], true
}

// Normalize scales every feature dimension to [0,1] based on its min and max across all records.
// A constant dimension is scaled to 0.
// Classes are counted first if this has not happened yet, so that the class vectors are in place.
func (ds *Dataset) Normalize() error {
	if len(ds.records) == 0 {
		return fmt.Errorf("could not normalize: %w", EmptyErr)
	}
	if len(ds.labels) == 0 {
		ds.CountClasses()
	}
	ranges := buffer.NewStatsCollector(ds.Dim())
	for i, r := range ds.records {
		if err := ranges.Push(r.Raw...); err != nil {
			return fmt.Errorf("could not normalize record %d: %v: %w", i, err, DimensionErr)
		}
	}
	for _, r := range ds.records {
		normalized, err := ranges.Scale(r.Raw...)
		if err != nil {
			return fmt.Errorf("could not normalize record: %v: %w", err, DimensionErr)
		}
		r.Normalized = normalized
		r.encode(r.Class, len(ds.labels))
	}
	ds.ranges = ranges
	log.Debug().Int("dim", ranges.Dim()).Int("records", ranges.Size()).Msg("normalized dataset")
	return nil
}

// Ranges returns the per-dimension statistics collected during normalisation.
func (ds *Dataset) Ranges() []*buffer.Stats {
	if ds.ranges == nil {
		return nil
	}
	return ds.ranges.Stats()
}

// Split samples the train, test and validation partitions in that order.
// Each partition gets floor(N * fraction) records drawn without replacement,
// no record ends up in more than one partition.
func (ds *Dataset) Split(rng *rand.Rand, fractions Fractions) error {
	if err := fractions.Validate(); err != nil {
		return err
	}
	if rng == nil {
		return fmt.Errorf("no random source given for split")
	}
	total := len(ds.records)
	used := make(map[int]struct{}, total)
	ds.train = ds.sample(rng, used, target(total, fractions.Train))
	ds.test = ds.sample(rng, used, target(total, fractions.Test))
	ds.validation = ds.sample(rng, used, target(total, fractions.Validation))
	log.Info().
		Int("train", len(ds.train)).
		Int("test", len(ds.test)).
		Int("validation", len(ds.validation)).
		Int("unused", total-len(used)).
		Msg("split dataset")
	return nil
}

func (ds *Dataset) sample(rng *rand.Rand, used map[int]struct{}, count int) []*Record {
	total := len(ds.records)
	if remaining := total - len(used); count > remaining {
		log.Warn().Int("target", count).Int("remaining", remaining).Msg("not enough records for partition")
		count = remaining
	}
	partition := make([]*Record, 0, count)
	for len(partition) < count {
		idx := rng.Intn(total)
		if _, ok := used[idx]; ok {
			continue
		}
		used[idx] = struct{}{}
		partition = append(partition, ds.records[idx])
	}
	return partition
}

func target(total int, fraction float64) int {
	return int(float64(total) * fraction)
}

// Train returns the training partition.
func (ds *Dataset) Train() []*Record {
	return ds.train
}

// Validation returns the validation partition.
func (ds *Dataset) Validation() []*Record {
	return ds.validation
}

// Test returns the test partition.
func (ds *Dataset) Test() []*Record {
	return ds.test
}
