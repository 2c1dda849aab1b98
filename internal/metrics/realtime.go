package metrics

// ConnectionOpened counts an accepted WebSocket connection
func (m *Metrics) ConnectionOpened() {
	m.safeExecute("ConnectionOpened", func() {
		m.WSConnectionsTotal.Inc()
		m.WSConnectionsActive.Inc()
	})
}

// ConnectionClosed decrements the active connection gauge
func (m *Metrics) ConnectionClosed() {
	m.safeExecute("ConnectionClosed", func() {
		m.WSConnectionsActive.Dec()
	})
}

// RecordAuthFailure counts a failed authenticate event by reason
func (m *Metrics) RecordAuthFailure(reason string) {
	m.safeExecute("RecordAuthFailure", func() {
		m.WSAuthFailuresTotal.WithLabelValues(reason).Inc()
	})
}

// RecordBroadcast records one fan-out and its per-connection outcome
func (m *Metrics) RecordBroadcast(event string, delivered, dropped int) {
	m.safeExecute("RecordBroadcast", func() {
		m.BroadcastsTotal.WithLabelValues(event).Inc()
		m.DeliveriesTotal.Add(float64(delivered))
		m.DroppedDeliveries.Add(float64(dropped))
	})
}

// SetPresence sets the session and typing marker gauges
func (m *Metrics) SetPresence(sessions, typingMarkers int) {
	m.safeExecute("SetPresence", func() {
		m.OnlineSessions.Set(float64(sessions))
		m.TypingMarkers.Set(float64(typingMarkers))
	})
}

// IncrementMessagePersisted counts a message write; kind is "channel", "dm" or "reply"
func (m *Metrics) IncrementMessagePersisted(kind string) {
	m.safeExecute("IncrementMessagePersisted", func() {
		m.MessagesPersistedTotal.WithLabelValues(kind).Inc()
	})
}
