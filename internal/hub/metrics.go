package hub

import "expvar"

var (
	metricHubQueuedTotal       = expvar.NewInt("hub_queued_total")
	metricHubDroppedTotal      = expvar.NewInt("hub_dropped_total")
	metricHubRetryTotal        = expvar.NewInt("hub_retry_total")
	metricHubRetryDroppedTotal = expvar.NewInt("hub_retry_dropped_total")
	metricHubSentTotal         = expvar.NewInt("hub_sent_total")
	metricHubFailedTotal       = expvar.NewInt("hub_failed_total")
	metricHubCircuitOpenTotal  = expvar.NewInt("hub_circuit_open_total")
	metricHubQueueLen          = expvar.NewInt("hub_queue_len")
)
