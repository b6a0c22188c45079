package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordModCreated("admin")
	c.RecordModCreated("admin")
	c.RecordLike()
	c.RecordImport(5)
	c.SetModCount(7)
	c.RecordUpstreamCall("list", "ok", 20*time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/mods", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.modsCreated.WithLabelValues("admin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.likes))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.importedMods))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.modCount))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.upstreamCalls.WithLabelValues("list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/mods", "200")))
}

func TestCollectorsUseSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector(prometheus.NewRegistry())
		NewCollector(prometheus.NewRegistry())
	})
}
