package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(drawsTotal.WithLabelValues("success"))
	RecordDraw("success")
	assert.Equal(t, before+1, testutil.ToFloat64(drawsTotal.WithLabelValues("success")))

	beforeUnits := testutil.ToFloat64(unitsDrawn.WithLabelValues("3"))
	RecordUnitsDrawn(3, 4)
	assert.Equal(t, beforeUnits+4, testutil.ToFloat64(unitsDrawn.WithLabelValues("3")))

	SetInventoryRemaining(95)
	assert.Equal(t, float64(95), testutil.ToFloat64(inventoryRemaining))

	beforeFailures := testutil.ToFloat64(persistenceFailures)
	RecordPersistenceFailure()
	assert.Equal(t, beforeFailures+1, testutil.ToFloat64(persistenceFailures))
}

func TestHandler(t *testing.T) {
	RecordCelebration(1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "luckydraw_reveal_celebrations_total")
}
