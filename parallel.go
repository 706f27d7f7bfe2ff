package vp9sr

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Run calls fn for every unit in [0, n) with one goroutine per worker.
// Units are claimed from a shared counter, so each worker stays on a
// single goroutine while the load balances. After the first error no new
// units are claimed; Run waits for the units in flight and returns it.
func (s *Session) Run(n int, fn func(w *Worker, unit int) error) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if n <= 0 {
		return nil
	}
	workers := s.workers
	if len(workers) > n {
		workers = workers[:n]
	}

	var (
		next     atomic.Int64
		failed   atomic.Bool
		once     sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	for _, w := range workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			for !failed.Load() {
				u := int(next.Add(1) - 1)
				if u >= n {
					return
				}
				if err := fn(w, u); err != nil {
					once.Do(func() {
						firstErr = fmt.Errorf("vp9sr: unit %d on worker %d: %w", u, w.index, err)
					})
					failed.Store(true)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	return firstErr
}
