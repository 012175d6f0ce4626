// Package resilience groups the fault tolerance helpers used around the
// upstream calendar feeds: a circuit breaker per feed and a bounded retry for
// transient transport failures.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.CalendarSourceConfig("portal"))
//	err := retry.WithBackoff(ctx, retry.CalendarFetchConfig(), func() error {
//	    _, err := cb.Execute(func() (interface{}, error) {
//	        return fetchCalendar(ctx)
//	    })
//	    return err
//	})
package resilience
