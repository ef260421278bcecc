package metering

import (
	"context"
	"crypto/rand"
	"time"
)

// referenceAlphabet avoids characters that are easily confused when a
// customer reads a code over the phone (0/O, 1/I/L, 5/S, 8/B).
const referenceAlphabet = "234679ACDEFGHJKMNPQRTUVWXYZ"

const (
	referenceSuffixLength    = 5
	defaultAllocationRetries = 5
)

// ReferenceExists reports whether a reference code is already tracked.
type ReferenceExists func(ctx context.Context, referenceCode string) (bool, error)

// ReferenceAllocator mints unique, customer-presentable reference codes.
type ReferenceAllocator struct {
	exists     ReferenceExists
	maxRetries int
	now        func() time.Time
}

// AllocatorOption configures the allocator.
type AllocatorOption func(*ReferenceAllocator)

// WithMaxRetries bounds the regenerate-on-collision loop.
func WithMaxRetries(n int) AllocatorOption {
	return func(a *ReferenceAllocator) {
		if n > 0 {
			a.maxRetries = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) AllocatorOption {
	return func(a *ReferenceAllocator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewReferenceAllocator constructs an allocator. The exists check is
// consulted before a code is handed out; collisions trigger a bounded retry.
func NewReferenceAllocator(exists ReferenceExists, opts ...AllocatorOption) *ReferenceAllocator {
	allocator := &ReferenceAllocator{
		exists:     exists,
		maxRetries: defaultAllocationRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(allocator)
	}
	return allocator
}

// Allocate mints a reference code for an application type, e.g.
// NET-20260830-K7MXQ. Codes are never reused and never mutated.
func (a *ReferenceAllocator) Allocate(ctx context.Context, appType ApplicationType) (string, error) {
	prefix := referencePrefix(appType)
	datePart := a.now().UTC().Format("20060102")

	for attempt := 0; attempt < a.maxRetries; attempt++ {
		suffix, err := randomSuffix(referenceSuffixLength)
		if err != nil {
			return "", err
		}
		code := prefix + "-" + datePart + "-" + suffix
		if a.exists == nil {
			return code, nil
		}
		taken, err := a.exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrAllocationExhausted
}

func referencePrefix(appType ApplicationType) string {
	switch appType {
	case TypeNetMetering:
		return "NET"
	case TypeGrossMetering:
		return "GRS"
	case TypeSimpleSetup:
		return "SOL"
	default:
		return "APP"
	}
}

func randomSuffix(length int) (string, error) {
	// Bytes at or above the largest multiple of the alphabet size are
	// discarded so every character stays equally likely.
	limit := 256 - 256%len(referenceAlphabet)
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, referenceAlphabet[int(b)%len(referenceAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
