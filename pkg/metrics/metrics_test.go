package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRows(t *testing.T) {
	m := New("seed")
	m.RecordInserted("pensioners", 3)
	m.RecordInserted("pensioners", 0)
	m.RecordDeleted("payments", 12)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsWritten.WithLabelValues("pensioners", "insert")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.RowsWritten.WithLabelValues("payments", "delete")))
}

func TestFinish(t *testing.T) {
	m := New("ping")
	m.Finish(errors.New("unreachable"))
	assert.Zero(t, testutil.ToFloat64(m.JobLastSuccess))

	m.Finish(nil)
	assert.Positive(t, testutil.ToFloat64(m.JobLastSuccess))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordInserted("users", 1)
	m.RecordDeleted("users", 1)
	m.Finish(nil)
	require.NoError(t, m.Push(context.Background(), "http://localhost:9091", "job"))
}

func TestPush(t *testing.T) {
	var (
		gotPath string
		gotBody string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New("seed")
	m.RecordInserted("benefits", 4)
	require.NoError(t, m.Push(context.Background(), srv.URL, "pensiondb"))

	assert.Equal(t, "/metrics/job/pensiondb/command/seed", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestPush_SkippedWithoutGateway(t *testing.T) {
	m := New("report")
	require.NoError(t, m.Push(context.Background(), "", ""))
}

func TestPush_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New("seed").Push(context.Background(), srv.URL, "pensiondb")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to push metrics"))
}
