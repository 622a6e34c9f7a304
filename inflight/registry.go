package inflight

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/imageloader/request"
)

// Result carries a shared fetch outcome to a waiter.
type Result struct {
	// Data is the fetched payload.
	Data []byte

	// Shared is true when the result was delivered to more than one
	// caller.
	Shared bool
}

// Registry runs at most one fetch per key across concurrent callers.
type Registry struct {
	group singleflight.Group

	mu      sync.Mutex
	waiters map[request.Key]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{waiters: make(map[request.Key]int)}
}

// Do returns fn's result for key, running fn at most once however many
// callers arrive while it is in flight. Errors fan out to every
// current waiter and the record is dropped either way, so the next Do
// for the key starts fresh.
//
// fn runs detached from any single caller's context: a waiter walking
// away never cancels a fetch others still wait on. Each caller honors
// its own ctx while waiting and gets ctx.Err() if it gives up first.
func (r *Registry) Do(ctx context.Context, key request.Key, fn func(context.Context) ([]byte, error)) (Result, error) {
	r.addWaiter(key)
	defer r.dropWaiter(key)

	ch := r.group.DoChan(string(key), func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Result{Shared: res.Shared}, res.Err
		}
		return Result{Data: res.Val.([]byte), Shared: res.Shared}, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Waiters reports how many callers are currently inside Do for key.
func (r *Registry) Waiters(key request.Key) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiters[key]
}

// Forget drops the in-flight record for key. Callers already waiting
// still get the old fetch's result; the next Do starts a new one.
func (r *Registry) Forget(key request.Key) {
	r.group.Forget(string(key))
}

func (r *Registry) addWaiter(key request.Key) {
	r.mu.Lock()
	r.waiters[key]++
	r.mu.Unlock()
}

func (r *Registry) dropWaiter(key request.Key) {
	r.mu.Lock()
	if r.waiters[key]--; r.waiters[key] <= 0 {
		delete(r.waiters, key)
	}
	r.mu.Unlock()
}
