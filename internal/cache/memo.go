package cache

import (
	"context"
	"time"

	"go-blog-app/internal/logger"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the expiry used when a Memo is built without WithTTL.
const DefaultTTL = 3 * time.Minute

// Func is a computation whose result can be memoized. The bool reports whether
// a value was produced; false is cached as None.
type Func[A, V any] func(ctx context.Context, arg A) (V, bool, error)

// Option configures a Memo.
type Option func(*options)

type options struct {
	ttl time.Duration
	log logger.Logger
}

// WithTTL sets how long results are kept.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithLogger reports store failures to log.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// Memo caches the results of fn in a Store.
// Concurrent misses on the same key share a single call of fn.
type Memo[A, V any] struct {
	name  string
	store Store
	fn    Func[A, V]
	ttl   time.Duration
	log   logger.Logger
	group singleflight.Group
}

// NewMemo wraps fn. name identifies the function in hash-derived keys and
// must be unique among memos sharing a store.
func NewMemo[A, V any](store Store, name string, fn Func[A, V], opts ...Option) *Memo[A, V] {
	o := options{ttl: DefaultTTL, log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Memo[A, V]{
		name:  name,
		store: store,
		fn:    fn,
		ttl:   o.ttl,
		log:   o.log.With(map[string]interface{}{"memo": name}),
	}
}

// Key returns the cache key used for arg.
func (m *Memo[A, V]) Key(arg A) string {
	return ResolveKey(m.name, arg)
}

// Lookup reads the cached result for arg without computing it.
func (m *Memo[A, V]) Lookup(ctx context.Context, arg A) Result[V] {
	return m.lookup(ctx, m.Key(arg))
}

// Get returns the cached result for arg, computing and storing it on a miss.
// Errors from the wrapped function are returned and not cached.
func (m *Memo[A, V]) Get(ctx context.Context, arg A) (V, bool, error) {
	key := m.Key(arg)
	if r := m.lookup(ctx, key); r.Hit() {
		v, ok := r.Get()
		return v, ok, nil
	}

	shared, err, _ := m.group.Do(key, func() (interface{}, error) {
		// A call that finished between the lookup above and Do has already
		// stored its result.
		if r := m.lookup(ctx, key); r.Hit() {
			return r, nil
		}
		v, ok, err := m.fn(ctx, arg)
		if err != nil {
			return nil, err
		}
		r := NoneOf[V]()
		if ok {
			r = SomeOf(v)
		}
		m.save(ctx, key, r)
		return r, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, ok := shared.(Result[V]).Get()
	return v, ok, nil
}

// Forget drops the cached result for arg.
func (m *Memo[A, V]) Forget(ctx context.Context, arg A) error {
	return m.store.Delete(ctx, m.Key(arg))
}

func (m *Memo[A, V]) lookup(ctx context.Context, key string) Result[V] {
	b, found, err := m.store.Get(ctx, key)
	if err != nil {
		m.log.Error(err, "cache read failed, recomputing")
		return MissOf[V]()
	}
	if !found {
		return MissOf[V]()
	}
	r, err := decodeResult[V](b)
	if err != nil {
		m.log.Error(err, "cached entry could not be decoded, recomputing")
		return MissOf[V]()
	}
	return r
}

func (m *Memo[A, V]) save(ctx context.Context, key string, r Result[V]) {
	b, err := encodeResult(r)
	if err != nil {
		m.log.Error(err, "result could not be encoded, not caching")
		return
	}
	if err := m.store.Set(ctx, key, b, m.ttl); err != nil {
		m.log.Error(err, "cache write failed")
	}
}
