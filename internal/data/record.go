package data

import "fmt"

// Record is a single example of the dataset.
// Raw features are owned by the record and never change after load,
// normalisation and class encoding only attach derived fields.
type Record struct {
	// Raw holds the features as they were read by the loader.
	Raw []float64 `json:"raw"`
	// Normalized holds the min-max scaled features, it is nil until the dataset is normalised.
	Normalized []float64 `json:"normalized,omitempty"`
	// Label is the class identifier as found in the source.
	Label int `json:"label"`
	// Class is the dense zero-based index of the label in first-seen order.
	Class int `json:"class"`
	// ClassVector is the one-hot encoding of Class.
	ClassVector []float64 `json:"class_vector,omitempty"`
	// Distance is scratch space for the nearest neighbour search.
	Distance float64 `json:"-"`
}

// NewRecord creates a new record for the given label and raw features.
func NewRecord(label int, raw ...float64) *Record {
	features := make([]float64, len(raw))
	copy(features, raw)
	return &Record{
		Raw:   features,
		Label: label,
	}
}

// FromBytes creates a new record out of unsigned byte features e.g. image pixels.
func FromBytes(label int, raw []byte) *Record {
	features := make([]float64, len(raw))
	for i, b := range raw {
		features[i] = float64(b)
	}
	return &Record{
		Raw:   features,
		Label: label,
	}
}

// Features returns the vector models should operate on,
// the normalised features if present, the raw ones otherwise.
func (r *Record) Features() []float64 {
	if r.Normalized != nil {
		return r.Normalized
	}
	return r.Raw
}

// Dim returns the feature dimensionality of the record.
func (r *Record) Dim() int {
	return len(r.Raw)
}

// encode sets the class index and rebuilds the one-hot class vector.
func (r *Record) encode(class int, count int) {
	r.Class = class
	vector := make([]float64, count)
	if class >= 0 && class < count {
		vector[class] = 1
	}
	r.ClassVector = vector
}

func (r Record) String() string {
	return fmt.Sprintf("[%d:%d] %v", r.Label, r.Class, r.Features())
}
