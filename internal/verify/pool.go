package verify

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned for submissions after Close.
var ErrPoolClosed = errors.New("verify pool closed")

// Pool runs verifications on a fixed set of workers so CPU-bound
// replays never block request intake. Each job still gets its own
// isolated engine inside Verify; the pool only bounds parallelism.
//
// There is deliberately no mid-replay cancellation: payload limits
// already cap per-job cost, and an abandoned verification must still
// consume its run token so a timed-out client cannot retry into a
// double grant.
type Pool struct {
	verifier *Verifier
	jobs     chan job
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

type job struct {
	sub Submission
	out chan outcome
}

type outcome struct {
	result Result
	err    error
}

// NewPool starts workers goroutines (GOMAXPROCS when workers <= 0).
func NewPool(v *Verifier, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		verifier: v,
		jobs:     make(chan job),
		done:     make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			result, err := p.verifier.Verify(j.sub)
			j.out <- outcome{result: result, err: err}
		case <-p.done:
			return
		}
	}
}

// Submit queues a verification and waits for its verdict. The context
// only guards the wait for a free worker; once a worker picks the job
// up it runs to completion.
func (p *Pool) Submit(ctx context.Context, sub Submission) (Result, error) {
	j := job{sub: sub, out: make(chan outcome, 1)}
	select {
	case p.jobs <- j:
	case <-p.done:
		return Result{}, ErrPoolClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	o := <-j.out
	return o.result, o.err
}

// Close stops the workers after their in-flight jobs complete.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}
