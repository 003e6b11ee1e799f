package pipeline

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/protocol"
	"github.com/puzpuzpuz/xsync/v3"
)

// Metrics is the registry holding the request metrics of all pipelines.
// Write it with Metrics.WritePrometheus.
var Metrics = metrics.NewSet()

// commandMetrics holds the metric handles of one command
type commandMetrics struct {
	requests *metrics.Counter
	duration *metrics.Histogram
}

// metricCache resolves metric handles by command without formatting metric names
// on every request
type metricCache struct {
	set      *metrics.Set
	commands *xsync.MapOf[protocol.Command, *commandMetrics]
	errors   *xsync.MapOf[errorKey, *metrics.Counter]
	canceled *metrics.Counter
}

type errorKey struct {
	cmd  protocol.Command
	code common.Code
}

func newMetricCache(set *metrics.Set) *metricCache {
	return &metricCache{
		set:      set,
		commands: xsync.NewMapOf[protocol.Command, *commandMetrics](),
		errors:   xsync.NewMapOf[errorKey, *metrics.Counter](),
		canceled: set.GetOrCreateCounter("dtt_requests_canceled_total"),
	}
}

// observe records one executed request
func (m *metricCache) observe(cmd protocol.Command, start time.Time, err error) {
	cm, _ := m.commands.LoadOrCompute(cmd, func() *commandMetrics {
		return &commandMetrics{
			requests: m.set.GetOrCreateCounter(fmt.Sprintf(`dtt_requests_total{command=%q}`, cmd.String())),
			duration: m.set.GetOrCreateHistogram(fmt.Sprintf(`dtt_request_duration_seconds{command=%q}`, cmd.String())),
		}
	})
	cm.requests.Inc()
	cm.duration.UpdateDuration(start)

	if err == nil {
		return
	}
	key := errorKey{cmd: cmd, code: common.CodeOf(err)}
	counter, _ := m.errors.LoadOrCompute(key, func() *metrics.Counter {
		return m.set.GetOrCreateCounter(fmt.Sprintf(`dtt_request_errors_total{command=%q,code="%d"}`, cmd.String(), key.code))
	})
	counter.Inc()
}

// observeCanceled records a task that was skipped or whose response was discarded
func (m *metricCache) observeCanceled() {
	m.canceled.Inc()
}
