package bench

import (
	"time"

	"github.com/drakos74/free-learn/internal/storage"
	"github.com/google/uuid"
)

const (
	KNNModel     = "knn"
	KMeansModel  = "kmeans"
	NetworkModel = "network"
	ForestModel  = "forest"
	LloydModel   = "lloyd"
	GolearnModel = "golearn"
)

// Report is the outcome of a single model run.
type Report struct {
	ID         uuid.UUID         `json:"id"`
	Model      string            `json:"model"`
	Params     map[string]string `json:"params"`
	K          int               `json:"k,omitempty"`
	Validation float64           `json:"validation"`
	Test       float64           `json:"test"`
	Errors     []float64         `json:"errors,omitempty"`
	Trend      float64           `json:"trend,omitempty"`
	Started    time.Time         `json:"started"`
	Duration   time.Duration     `json:"duration"`
}

func newReport(model string) Report {
	return Report{
		ID:      uuid.New(),
		Model:   model,
		Params:  make(map[string]string),
		Started: time.Now(),
	}
}

// Key is the storage key of the report.
func (r Report) Key() storage.Key {
	return storage.Key{
		Pair:  r.Model,
		Label: r.ID.String(),
	}
}

// SnapshotKey is the storage key of the network weights of the run.
func (r Report) SnapshotKey() storage.Key {
	return storage.Key{
		Pair:  r.Model,
		Label: r.ID.String() + "_snapshot",
	}
}

func (r *Report) done() {
	r.Duration = time.Since(r.Started)
}

// Summary describes the loaded dataset.
type Summary struct {
	Records    int       `json:"records"`
	Dim        int       `json:"dim"`
	Classes    int       `json:"classes"`
	Train      int       `json:"train"`
	Validation int       `json:"validation"`
	Test       int       `json:"test"`
	Means      []float64 `json:"means"`
}
