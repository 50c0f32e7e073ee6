package primitive

import "context"

// Pooling2DFwdFactory memoizes pooling-forward primitives of type P by their
// descriptor. It owns its cache; create one per execution context.
type Pooling2DFwdFactory[P any] struct {
	cache *Cache[P]
}

// NewPooling2DFwdFactory creates an empty factory.
func NewPooling2DFwdFactory[P any](cfg Config) *Pooling2DFwdFactory[P] {
	return &Pooling2DFwdFactory[P]{cache: NewCache[P](cfg)}
}

// Get returns the primitive previously stored for desc.
func (f *Pooling2DFwdFactory[P]) Get(desc Pooling2DFwdDescriptor) (P, bool) {
	return f.cache.Lookup(desc.Key())
}

// Set stores op for desc, replacing any earlier primitive.
// The factory owns op from now on.
func (f *Pooling2DFwdFactory[P]) Set(desc Pooling2DFwdDescriptor, op P) {
	f.cache.Store(desc.Key(), op)
}

// GetOrCreate returns the primitive for desc, constructing it with build
// on a miss.
func (f *Pooling2DFwdFactory[P]) GetOrCreate(
	ctx context.Context,
	desc Pooling2DFwdDescriptor,
	build func(context.Context, Pooling2DFwdDescriptor) (P, error),
) (P, error) {
	if build == nil {
		var zero P
		return zero, ErrNilBuilder
	}
	key := desc.Key()
	return f.cache.GetOrCreate(ctx, key, func(ctx context.Context) (P, error) {
		f.cache.log().Debug("primitive: constructing",
			"key", key.String(), "legacy_key", desc.LegacyKey())
		return build(ctx, desc)
	})
}

// Stats returns a snapshot of the underlying cache activity.
func (f *Pooling2DFwdFactory[P]) Stats() Stats {
	return f.cache.Stats()
}

// Len returns the number of cached primitives.
func (f *Pooling2DFwdFactory[P]) Len() int {
	return f.cache.Len()
}

// Release releases all cached primitives.
func (f *Pooling2DFwdFactory[P]) Release() {
	f.cache.Release()
}
