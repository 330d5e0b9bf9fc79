package cmenv

import "time"

// tickerTimer implements Timer over a time.Ticker running on its own
// goroutine. Stop is safe to call more than once and safe to call
// concurrently with a tick callback in flight.
type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
}

func startTickerTimer(interval time.Duration, onTick func()) *tickerTimer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-t.ticker.C:
				onTick()
			case <-t.done:
				return
			}
		}
	}()

	return t
}

// Stop halts future ticks. A tick already delivered to onTick may still be
// executing when Stop returns (spec.md §5 cancellation semantics).
func (t *tickerTimer) Stop() {
	t.ticker.Stop()
	select {
	case <-t.done:
		// already stopped
	default:
		close(t.done)
	}
}

var _ Timer = (*tickerTimer)(nil)
