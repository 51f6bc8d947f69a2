// Package observability aggregates session counters for the heartbeat and
// the debug server.
package observability

import (
	"sync/atomic"
	"time"
)

// SessionStats counts what the conversation core has processed since start.
// All counters are atomic so workers and the controller update them without
// coordination.
type SessionStats struct {
	StartedAt time.Time

	messagesAppended  uint64
	presenceEvents    uint64
	historyFetches    uint64
	staleFetchesDrops uint64
	sendFailures      uint64
	sends             uint64
}

func NewSessionStats() *SessionStats {
	return &SessionStats{StartedAt: time.Now().UTC()}
}

func (s *SessionStats) IncrMessagesAppended() { atomic.AddUint64(&s.messagesAppended, 1) }
func (s *SessionStats) IncrPresenceEvents()   { atomic.AddUint64(&s.presenceEvents, 1) }
func (s *SessionStats) IncrHistoryFetches()   { atomic.AddUint64(&s.historyFetches, 1) }
func (s *SessionStats) IncrStaleFetchDrops()  { atomic.AddUint64(&s.staleFetchesDrops, 1) }
func (s *SessionStats) IncrSendFailures()     { atomic.AddUint64(&s.sendFailures, 1) }
func (s *SessionStats) IncrSends()            { atomic.AddUint64(&s.sends, 1) }

// Snapshot returns the counters as a loggable map.
func (s *SessionStats) Snapshot() map[string]any {
	return map[string]any{
		"uptime":            time.Since(s.StartedAt).Round(time.Second).String(),
		"messages_appended": atomic.LoadUint64(&s.messagesAppended),
		"presence_events":   atomic.LoadUint64(&s.presenceEvents),
		"history_fetches":   atomic.LoadUint64(&s.historyFetches),
		"stale_fetch_drops": atomic.LoadUint64(&s.staleFetchesDrops),
		"sends":             atomic.LoadUint64(&s.sends),
		"send_failures":     atomic.LoadUint64(&s.sendFailures),
	}
}
