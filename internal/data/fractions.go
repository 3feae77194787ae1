package data

import "fmt"

// Fractions defines the share of the dataset each partition should get.
type Fractions struct {
	Train      float64 `json:"train" yaml:"train"`
	Validation float64 `json:"validation" yaml:"validation"`
	Test       float64 `json:"test" yaml:"test"`
}

// tolerance absorbs float noise in the sum e.g. 0.7 + 0.1 + 0.2
const tolerance = 1e-9

// DefaultFractions is the conventional 75/5/20 split.
func DefaultFractions() Fractions {
	return Fractions{
		Train:      0.75,
		Validation: 0.05,
		Test:       0.20,
	}
}

// Validate checks that every fraction is within [0,1] and the total does not exceed 1.
func (f Fractions) Validate() error {
	for name, v := range map[string]float64{
		"train":      f.Train,
		"validation": f.Validation,
		"test":       f.Test,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s fraction %f out of range: %w", name, v, FractionsErr)
		}
	}
	if sum := f.Train + f.Validation + f.Test; sum > 1+tolerance {
		return fmt.Errorf("fractions sum up to %f: %w", sum, FractionsErr)
	}
	return nil
}
