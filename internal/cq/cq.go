// Package cq provides the unbounded queues that connect a
// connection's read goroutine to the single-threaded dispatch loop.
package cq

import "sync"

// Flush runs every queued closure in order and collects the failures.
// It keeps going past errors so one bad message cannot starve the
// ones behind it.
func Flush(queue []func() error) (errs []error) {
	for _, fn := range queue {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Queue passes batches of values from any number of producers to a
// single consumer without ever blocking the consumer. A receive from
// Get yields everything added since the previous receive, in order.
type Queue[T any] struct {
	stop chan struct{}
	once sync.Once

	add chan T
	get chan []T
}

func New[T any]() *Queue[T] {
	q := Queue[T]{
		stop: make(chan struct{}),
		add:  make(chan T),
		get:  make(chan []T),
	}
	go q.run()

	return &q
}

// Stop shuts the queue down, dropping anything still batched. It is
// idempotent. Sends to Add block forever afterwards, so producers
// must select on their own cancellation alongside it.
func (q *Queue[T]) Stop() {
	q.once.Do(func() {
		close(q.stop)
	})
}

// Add returns the channel producers send values into.
func (q *Queue[T]) Add() chan<- T {
	return q.add
}

// Get returns the channel batches arrive on. It never yields an empty
// batch; while nothing is queued a receive blocks, so consumers poll
// it from a select with a default case.
func (q *Queue[T]) Get() <-chan []T {
	return q.get
}

func (q *Queue[T]) run() {
	var batch []T
	var out chan []T

	for {
		select {
		case <-q.stop:
			return

		case v := <-q.add:
			batch = append(batch, v)
			out = q.get

		case out <- batch:
			batch = nil
			out = nil
		}
	}
}
