// Package cached decorates a model.Model with an in-process response cache.
// Identical requests against the same underlying model are served from memory
// until the entry expires, which keeps repeated evaluation runs and retried
// workflows from burning provider tokens.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/hupe1980/agentswarm/model"
)

// Options configure the response cache.
type Options struct {
	// MaxCost is the maximum total size of cached responses in bytes.
	MaxCost int64
	// NumCounters sizes the admission counters; ~10x the expected entries.
	NumCounters int64
	// TTL bounds how long a cached response stays valid.
	TTL time.Duration
}

// Model wraps another model.Model and memoizes its responses.
type Model struct {
	inner model.Model
	cache *ristretto.Cache[string, []byte]
	opts  Options
}

// New creates a caching decorator around inner.
func New(inner model.Model, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		MaxCost:     64 << 20,
		NumCounters: 100_000,
		TTL:         15 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: opts.NumCounters,
		MaxCost:     opts.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}

	return &Model{inner: inner, cache: cache, opts: opts}, nil
}

// Generate implements model.Model. Cache misses fall through to the wrapped
// model; errors are never cached.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	key, err := cacheKey(m.inner.Info(), req)
	if err != nil {
		return m.inner.Generate(ctx, req)
	}

	if data, ok := m.cache.Get(key); ok {
		var resp model.Response
		if err := json.Unmarshal(data, &resp); err == nil {
			return &resp, nil
		}
	}

	resp, err := m.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(resp); err == nil {
		m.cache.SetWithTTL(key, data, int64(len(data)), m.opts.TTL)
	}

	return resp, nil
}

// Info returns the wrapped model's metadata.
func (m *Model) Info() model.Info { return m.inner.Info() }

// Wait blocks until pending cache writes are applied. Mostly useful in tests
// and batch jobs that replay the same request immediately.
func (m *Model) Wait() { m.cache.Wait() }

// Close releases the cache resources.
func (m *Model) Close() { m.cache.Close() }

// cacheKey hashes the request together with the model identity, so two
// adapters with different defaults never share entries.
func cacheKey(info model.Info, req model.Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(info.Provider))
	h.Write([]byte{0})
	h.Write([]byte(info.Name))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}
