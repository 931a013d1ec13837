package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Boutique-api/internal/infrastructure/metrics"
)

func TestPrometheus_Contadores(t *testing.T) {
	m := metrics.New("test")
	m.QuotaDenied("products")
	m.QuotaDenied("products")
	m.InvoiceCreated()
	m.NotificationSent("stock_low")
	m.TxRetried(1, errors.New("40001"))

	n, err := testutil.GatherAndCount(m.Registry(),
		"test_quota_denials_total", "test_invoices_created_total", "test_notifications_sent_total", "test_tx_retries_total")
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}
