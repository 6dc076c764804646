package ui

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// UpdateSender provides non-blocking UI update sending with statistics.
// Background work (debounce timers, submissions) notifies the program
// through it without ever waiting on the render loop.
type UpdateSender struct {
	msgChan        chan tea.Msg
	droppedUpdates uint64
	sentUpdates    uint64
	logger         *zap.Logger
	statsInterval  time.Duration
	stopStats      chan struct{}
	closed         atomic.Bool
}

// NewUpdateSender creates a sender with a queue of size buffer.
func NewUpdateSender(buffer int, logger *zap.Logger) *UpdateSender {
	if buffer <= 0 {
		buffer = 16
	}
	us := &UpdateSender{
		msgChan:       make(chan tea.Msg, buffer),
		logger:        logger,
		statsInterval: 30 * time.Second,
		stopStats:     make(chan struct{}),
	}

	// Start periodic stats logging
	go us.logStats()

	return us
}

// SendUpdate sends a message to UI without blocking
func (us *UpdateSender) SendUpdate(msg tea.Msg) {
	select {
	case us.msgChan <- msg:
		atomic.AddUint64(&us.sentUpdates, 1)
	default:
		atomic.AddUint64(&us.droppedUpdates, 1)
	}
}

// NotifyChanged queues a SessionChangedMsg. A change notice already in the
// queue covers this one, so drops are harmless.
func (us *UpdateSender) NotifyChanged() {
	us.SendUpdate(SessionChangedMsg{})
}

// Pump forwards queued messages to send until ctx ends or the sender is
// closed. send is usually tea.Program.Send, which may block while the
// program renders; queued producers never do.
func (us *UpdateSender) Pump(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case msg := <-us.msgChan:
			send(msg)
		case <-us.stopStats:
			return
		case <-ctx.Done():
			return
		}
	}
}

// GetStats returns current statistics
func (us *UpdateSender) GetStats() (sent, dropped uint64) {
	sent = atomic.LoadUint64(&us.sentUpdates)
	dropped = atomic.LoadUint64(&us.droppedUpdates)
	return sent, dropped
}

// logStats periodically logs statistics
func (us *UpdateSender) logStats() {
	ticker := time.NewTicker(us.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, dropped := us.GetStats()
			if dropped > 0 {
				us.logger.Debug("UI update statistics",
					zap.Uint64("sent", sent),
					zap.Uint64("dropped", dropped),
					zap.Float64("drop_rate", float64(dropped)/float64(sent+dropped)*100))
			}
		case <-us.stopStats:
			return
		}
	}
}

// Close stops the update sender and any Pump.
func (us *UpdateSender) Close() {
	if us.closed.CompareAndSwap(false, true) {
		close(us.stopStats)
	}
}
