// Package parallel fans row work out over a bounded set of goroutines
package parallel

import "sync"
import "sync/atomic"

// ForEach calls body once for every i from 0 to length-1 using at most limit
// goroutines. Workers claim indices from a shared counter. When stop is not nil
// and reports true, no further indices are claimed; the call still waits for
// the bodies already running.
func ForEach(length, limit int, stop func() bool, body func(i int)) {
	if length <= 0 {
		return // No iterations to perform
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > length {
		limit = length
	}
	if limit == 1 {
		for i := 0; i < length; i++ {
			if stop != nil && stop() {
				return
			}
			body(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(limit)
	for n := 0; n < limit; n++ {
		go func() {
			defer wg.Done()
			for {
				if stop != nil && stop() {
					return
				}
				i := int(next.Add(1) - 1)
				if i >= length {
					return
				}
				body(i)
			}
		}()
	}
	wg.Wait()
}
