package gridcache

import "context"

// PageFetcher issues exactly one network call per FetchPage invocation and
// returns a typed page or a *TransportError. It carries no retry logic;
// retries belong to the session controller.
//
// A nil cursor requests the first page. Implementations must honor ctx
// cancellation: an abandoned fetch must return promptly and its result is
// discarded by the caller's generation check.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, cursor *string, limit int) (Page[T], error)
}

// PageFetcherFunc adapts a function to the PageFetcher interface.
type PageFetcherFunc[T any] func(ctx context.Context, cursor *string, limit int) (Page[T], error)

func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, cursor *string, limit int) (Page[T], error) {
	return f(ctx, cursor, limit)
}

// TokenSource supplies the bearer credential for outgoing calls. It is
// treated as fallible and possibly slow; the core never inspects the
// credential beyond forwarding it. A nil token means unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (*string, error)
}

// StaticToken is a TokenSource returning a fixed credential.
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (*string, error) {
	if t == "" {
		return nil, nil
	}
	s := string(t)
	return &s, nil
}
