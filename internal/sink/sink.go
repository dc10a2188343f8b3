// Package sink persists downloaded assets, either onto the local filesystem
// or into an object store bucket.
package sink

import (
	"context"
	"errors"
	"fmt"
)

// Sink stores the bytes of one asset under `key`.
//
// note: fault injection point
type Sink interface {
	Store(ctx context.Context, key string, data []byte) error
	// Describe returns where `key` ends up, for logs.
	Describe(key string) string
}

// ErrStoreFailed wraps transport or service failures of a remote write.
var ErrStoreFailed = errors.New("sink: store failed")

// PolicyViolation is returned when a write targets a bucket or key the
// object store policy does not allow. No request is made in that case.
type PolicyViolation struct {
	Bucket string
	Key    string
	Reason string
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("sink: policy violation for %s/%s: %s", e.Bucket, e.Key, e.Reason)
}
