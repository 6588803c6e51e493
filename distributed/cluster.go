// Package distributed provides the multi-worker form of the pipeline: a
// compute-cluster context and a linear regression estimator that fits over
// row partitions and aggregates partial results.
package distributed

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/tripml/pkg/errors"
	"github.com/YuminosukeSato/tripml/pkg/log"
)

// Cluster is the compute context. It owns a bounded pool of workers that
// execute submitted tasks; estimators bind to it the way a session binds to
// a cluster handle.
type Cluster struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool

	logger log.Logger
}

// NewCluster acquires a compute context with the given number of workers.
// A non-positive count uses the number of CPU cores.
func NewCluster(workers int) *Cluster {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	c := &Cluster{
		workers: workers,
		tasks:   make(chan func()),
		logger:  log.GetLoggerWithName("distributed"),
	}

	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for task := range c.tasks {
				task()
			}
		}()
	}

	c.logger.Debug("cluster started", log.WorkersKey, workers)
	return c
}

// Workers returns the worker count.
func (c *Cluster) Workers() int {
	return c.workers
}

// Submit schedules a task on the cluster. It blocks until a worker accepts
// the task and returns ErrClusterClosed after Close.
func (c *Cluster) Submit(task func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.WithStack(errors.ErrClusterClosed)
	}

	// Held lock also orders Submit against Close, so the channel cannot be
	// closed while a send is in flight.
	c.tasks <- task
	return nil
}

// Close releases the compute context and waits for in-flight tasks.
func (c *Cluster) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.tasks)
	c.wg.Wait()
	c.logger.Debug("cluster closed", log.WorkersKey, c.workers)
}
