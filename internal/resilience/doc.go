// Package resilience groups the fault-tolerance helpers used around external
// calls: circuit breakers (circuitbreaker) and bounded retries (retry).
//
//	text, err := circuitbreaker.Run(cb, func() (string, error) {
//	    return callProvider(ctx)
//	})
//
//	err := retry.WithBackoff(ctx, retry.AIAPIConfig(), func() error {
//	    return publish(ctx)
//	})
package resilience
