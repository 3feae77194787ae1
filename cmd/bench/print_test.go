package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/drakos74/free-learn/internal/bench"
	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	buffer := new(bytes.Buffer)
	Print(buffer, bench.Summary{Records: 20, Dim: 4, Classes: 2, Train: 15, Validation: 1, Test: 4}, []bench.Report{
		{
			Model:      bench.KNNModel,
			K:          3,
			Params:     map[string]string{"metric": "euclidean"},
			Validation: 100,
			Test:       75,
			Duration:   time.Millisecond,
		},
		{
			Model:      bench.NetworkModel,
			Params:     map[string]string{"rate": "0.25", "hidden": "[3]"},
			Validation: 0,
			Test:       50,
			Errors:     []float64{4, 3, 2.5, 2.2},
			Trend:      -0.58,
		},
	})

	out := buffer.String()
	assert.True(t, strings.Contains(out, "records: 20 dim: 4 classes: 2"))
	assert.True(t, strings.Contains(out, "knn"))
	assert.True(t, strings.Contains(out, "metric=euclidean"))
	assert.True(t, strings.Contains(out, "hidden=[3] rate=0.25"))
	assert.True(t, strings.Contains(out, "75.00"))
	assert.True(t, strings.Contains(out, "network epoch error (trend -0.58)"))
}
