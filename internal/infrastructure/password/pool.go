package password

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-auth-service/internal/domain"
)

// ErrPoolClosed is returned for work submitted after Close.
var ErrPoolClosed = errors.New("hash pool closed")

type job struct {
	run  func()
	done chan struct{}
}

// Pool runs Argon2 computations on a fixed set of worker goroutines so that
// hashing never competes with request dispatch for more than `workers` CPUs.
// It implements domain.PasswordHasher.
type Pool struct {
	hasher    *Argon2
	jobs      chan job
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ domain.PasswordHasher = (*Pool)(nil)

func NewPool(hasher *Argon2, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		hasher: hasher,
		jobs:   make(chan job),
		quit:   make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			j.run()
			close(j.done)
		case <-p.quit:
			return
		}
	}
}

// submit hands fn to a worker and waits for it to finish. If ctx ends first
// the caller stops waiting; a job already picked up still runs to completion.
func (p *Pool) submit(ctx context.Context, fn func()) error {
	j := job{run: fn, done: make(chan struct{})}
	select {
	case p.jobs <- j:
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) Hash(ctx context.Context, pw domain.Password) (string, error) {
	var (
		hash string
		err  error
	)
	if serr := p.submit(ctx, func() { hash, err = p.hasher.Hash(pw.String()) }); serr != nil {
		return "", fmt.Errorf("hash password: %w: %w", domain.ErrUnexpected, serr)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w: %w", domain.ErrUnexpected, err)
	}
	return hash, nil
}

// Verify returns domain.ErrPasswordMismatch for a wrong password; any other
// failure (malformed hash, closed pool, cancelled ctx) wraps domain.ErrUnexpected.
func (p *Pool) Verify(ctx context.Context, hash string, pw domain.Password) error {
	var (
		ok  bool
		err error
	)
	if serr := p.submit(ctx, func() { ok, err = p.hasher.Verify(pw.String(), hash) }); serr != nil {
		return fmt.Errorf("verify password: %w: %w", domain.ErrUnexpected, serr)
	}
	if err != nil {
		return fmt.Errorf("verify password: %w: %w", domain.ErrUnexpected, err)
	}
	if !ok {
		return domain.ErrPasswordMismatch
	}
	return nil
}

// Close stops the workers. Jobs already running finish first.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
		p.wg.Wait()
	})
}
