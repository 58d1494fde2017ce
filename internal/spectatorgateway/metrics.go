package spectatorgateway

import "expvar"

var (
	metricLobbyStreamsOpened = expvar.NewInt("lobby_streams_opened_total")
	metricLobbyStreamsActive = expvar.NewInt("lobby_streams_active")
	metricLobbyEventsSent    = expvar.NewInt("lobby_events_sent_total")
	metricStateReads         = expvar.NewMap("spectator_state_reads_total")
)
