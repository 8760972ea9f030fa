package sim

import (
	"context"
	"log"
	"time"
)

// StartTicker steps every running session at the configured tick rate until
// ctx is cancelled.
func (m *Manager) StartTicker(ctx context.Context) {
	dt := m.TickDuration()
	interval := time.Duration(dt * float64(time.Second))

	log.Printf("[SIM] Ticker started (dt=%.4fs)", dt)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[SIM] Ticker stopping")
				return
			case <-ticker.C:
				m.tickAll(dt)
			}
		}
	}()
}
