package workers

import (
	"context"
	"log/slog"

	"parley/contract"
)

// PresencePumpWorker drains one presence channel and hands each occurrence
// to the session controller. It ends cleanly when the channel is closed
// (subscription released) or the context is cancelled; either way the
// supervisor does not restart a finished pump.
type PresencePumpWorker struct {
	log     *slog.Logger
	channel contract.PresenceChannel
	deliver func(contract.PresenceEvent)
}

func NewPresencePumpWorker(log *slog.Logger, channel contract.PresenceChannel,
	deliver func(contract.PresenceEvent)) *PresencePumpWorker {
	return &PresencePumpWorker{log: log, channel: channel, deliver: deliver}
}

func (w *PresencePumpWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping presence pump")
			return nil
		case occ, ok := <-w.channel.Events():
			if !ok {
				w.log.Debug("Presence channel closed")
				return nil
			}
			w.deliver(occ)
		}
	}
}
