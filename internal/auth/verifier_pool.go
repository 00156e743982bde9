// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/zero2prod/internal/metrics"
)

// ErrPoolClosed is returned by Verify after Close.
var ErrPoolClosed = errors.New("verifier pool is closed")

type verifyJob struct {
	hash     string
	password string
	result   chan verifyResult
}

type verifyResult struct {
	ok  bool
	err error
}

// VerifierPool runs argon2id verification on a fixed set of worker
// goroutines so a burst of logins cannot pin every request goroutine on
// hashing. The number of concurrent verifications never exceeds the
// worker count.
type VerifierPool struct {
	hasher *PasswordHasher
	jobs   chan verifyJob
	quit   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewVerifierPool starts workers goroutines. workers below 1 is treated as 1.
func NewVerifierPool(workers int, hasher *PasswordHasher) *VerifierPool {
	if workers < 1 {
		workers = 1
	}
	if hasher == nil {
		hasher = NewPasswordHasher(DefaultArgon2Params())
	}

	p := &VerifierPool{
		hasher: hasher,
		jobs:   make(chan verifyJob),
		quit:   make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *VerifierPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case job := <-p.jobs:
			start := time.Now()
			ok, err := p.hasher.Verify(job.hash, job.password)
			metrics.RecordPasswordVerification(ok && err == nil, time.Since(start))
			job.result <- verifyResult{ok: ok, err: err}
		}
	}
}

// Verify checks password against hash on a pool worker. It returns early
// with ctx.Err() if ctx ends first; the worker still finishes the hash.
func (p *VerifierPool) Verify(ctx context.Context, hash, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	job := verifyJob{
		hash:     hash,
		password: password,
		result:   make(chan verifyResult, 1),
	}

	select {
	case <-p.quit:
		return false, ErrPoolClosed
	case <-ctx.Done():
		return false, ctx.Err()
	case p.jobs <- job:
	}

	select {
	case res := <-job.result:
		return res.ok, res.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Close stops the workers and waits for in-flight verifications.
func (p *VerifierPool) Close() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
