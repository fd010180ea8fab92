package safe

import (
	"NimbusChat/logger"
)

// Go starts a goroutine that recovers from panic, so a failure in a
// best-effort task (history writes, trace emits) never crashes the gateway.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[safe.Go] panic recovered: %v", r)
			}
		}()
		f()
	}()
}
