package etl

import "context"

// Fetcher retrieves the raw items of one feed with a single request.
type Fetcher[E any] interface {
	Fetch(ctx context.Context) ([]E, error)
}

// Normalizer turns fetched items into records. Items that cannot be
// normalized are reported in the second return value and never abort the batch.
type Normalizer[E, R any] interface {
	Normalize(items []E) ([]R, []*RecordError)
}

// Loader replaces the contents of the target store with records and
// returns how many were written.
type Loader[R any] interface {
	Load(ctx context.Context, records []R) (int, error)
}
