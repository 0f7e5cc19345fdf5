package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountStoreOperation(t *testing.T) {
	before := testutil.ToFloat64(storeOperations.WithLabelValues("fund", "create", "true"))
	CountStoreOperation("fund", "create", nil)
	CountStoreOperation("fund", "create", errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(storeOperations.WithLabelValues("fund", "create", "true")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(storeOperations.WithLabelValues("fund", "create", "false")), 1.0)
}

func TestObserveExport(t *testing.T) {
	before := testutil.ToFloat64(exportsTotal.WithLabelValues("fund", "pdf", "true"))
	ObserveExport("fund", "pdf", 20*time.Millisecond, nil)
	assert.Equal(t, before+1, testutil.ToFloat64(exportsTotal.WithLabelValues("fund", "pdf", "true")))
}

func TestCountNotificationAndPublish(t *testing.T) {
	CountNotification("publish", nil)
	CountPublish(errors.New("sheets down"))

	assert.GreaterOrEqual(t, testutil.ToFloat64(notifications.WithLabelValues("publish", "true")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(publishes.WithLabelValues("false")), 1.0)
}
