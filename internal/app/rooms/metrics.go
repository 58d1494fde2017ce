package rooms

import "expvar"

var (
	metricRoomCacheHits      = expvar.NewInt("room_cache_hits_total")
	metricRoomCacheMisses    = expvar.NewInt("room_cache_misses_total")
	metricRoomCacheRaces     = expvar.NewInt("room_cache_fill_skipped_total")
	metricTimeoutsAnnounced  = expvar.NewInt("room_timeouts_announced_total")
	metricJanitorSweepErrors = expvar.NewInt("room_janitor_sweep_errors_total")
)
