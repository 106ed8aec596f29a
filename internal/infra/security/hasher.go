package security

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrHasherClosed is returned when work is submitted after Close.
var ErrHasherClosed = errors.New("security: hasher closed")

type hashResult struct {
	value string
	ok    bool
	err   error
}

// BcryptHasher hashes and verifies passwords and one-time codes on a fixed
// pool of workers. bcrypt is CPU-bound; running it on the pool keeps request
// goroutines from piling the cost onto latency-sensitive paths.
type BcryptHasher struct {
	cost int
	jobs chan func()
	done chan struct{}
}

// NewBcryptHasher starts a hasher with the given bcrypt cost and worker count.
func NewBcryptHasher(cost, workers int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers < 1 {
		workers = 1
	}

	h := &BcryptHasher{
		cost: cost,
		jobs: make(chan func()),
		done: make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		go h.worker()
	}

	return h
}

func (h *BcryptHasher) worker() {
	for {
		select {
		case job := <-h.jobs:
			job()
		case <-h.done:
			return
		}
	}
}

// Close stops the worker pool. In-flight jobs finish; queued submissions fail.
func (h *BcryptHasher) Close() {
	close(h.done)
}

func (h *BcryptHasher) submit(ctx context.Context, fn func() hashResult) (hashResult, error) {
	resCh := make(chan hashResult, 1)

	select {
	case h.jobs <- func() { resCh <- fn() }:
	case <-h.done:
		return hashResult{}, ErrHasherClosed
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}

	select {
	case res := <-resCh:
		return res, nil
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}
}

func (h *BcryptHasher) hash(ctx context.Context, plaintext string) (string, error) {
	res, err := h.submit(ctx, func() hashResult {
		sum, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		if err != nil {
			return hashResult{err: fmt.Errorf("bcrypt hash: %w", err)}
		}
		return hashResult{value: string(sum)}
	})
	if err != nil {
		return "", err
	}

	return res.value, res.err
}

func (h *BcryptHasher) compare(ctx context.Context, hashed, candidate string) (bool, error) {
	res, err := h.submit(ctx, func() hashResult {
		err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(candidate))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return hashResult{ok: false}
		}
		if err != nil {
			return hashResult{err: fmt.Errorf("bcrypt compare: %w", err)}
		}
		return hashResult{ok: true}
	})
	if err != nil {
		return false, err
	}

	return res.ok, res.err
}

// HashCode produces a salted one-way hash of a one-time code.
func (h *BcryptHasher) HashCode(ctx context.Context, code string) (string, error) {
	return h.hash(ctx, code)
}

// CompareCode reports whether candidate matches the stored code hash. A
// mismatch is (false, nil), never an error.
func (h *BcryptHasher) CompareCode(ctx context.Context, hashedCode, candidate string) (bool, error) {
	return h.compare(ctx, hashedCode, candidate)
}

// HashPassword produces a salted one-way hash of an account credential.
func (h *BcryptHasher) HashPassword(ctx context.Context, password string) (string, error) {
	return h.hash(ctx, password)
}

// ComparePassword reports whether candidate matches the stored credential hash.
func (h *BcryptHasher) ComparePassword(ctx context.Context, hashedPassword, candidate string) (bool, error) {
	return h.compare(ctx, hashedPassword, candidate)
}
