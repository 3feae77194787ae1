package metrics

import (
	"io/ioutil"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.Accuracy("knn", "test", 87.5)
	m.Accuracy("knn", "validation", 90)
	m.Epochs("network", []float64{3.2, 2.1, 1.4})
	m.Epochs("network", nil)
	m.Increment("knn")
	m.Increment("knn")

	assert.Equal(t, 87.5, testutil.ToFloat64(m.prometheus.Accuracy.WithLabelValues("knn", "test")))
	assert.Equal(t, 90.0, testutil.ToFloat64(m.prometheus.Accuracy.WithLabelValues("knn", "validation")))
	assert.Equal(t, 1.4, testutil.ToFloat64(m.prometheus.EpochError.WithLabelValues("network")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.prometheus.Runs.WithLabelValues("knn")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Accuracy("kmeans", "test", 50)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `free_learn_accuracy{model="kmeans",partition="test"} 50`))
}
