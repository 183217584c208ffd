// Package storage is the gateway to the external object store. It carries
// no business logic: callers decide what to put, what to delete and how to
// react to failures.
package storage

import "context"

// ObjectStore is the capability the rest of the server programs against.
//
// Put stores data under key and returns the public URL of the object.
// Delete removes a single object; callers treat failures as non-fatal.
// KeyFromURL maps a URL previously returned by Put back to its object key.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, error)
}
