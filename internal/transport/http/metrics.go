package httptransport

import "expvar"

var (
	metricPlayersRegistered = expvar.NewInt("players_registered_total")
	metricRoomsCreated      = expvar.NewInt("rooms_created_total")
	metricCommitTotal       = expvar.NewInt("commit_submit_total")
	metricCommitErrors      = expvar.NewInt("commit_submit_errors_total")

	metricSSEConnectionsTotal  = expvar.NewInt("room_sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("room_sse_connections_active")
)
