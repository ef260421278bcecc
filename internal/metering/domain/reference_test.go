package metering

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func TestAllocate_Format(t *testing.T) {
	allocator := NewReferenceAllocator(nil, WithClock(fixedClock))

	pattern := regexp.MustCompile(`^NET-20260830-[234679ACDEFGHJKMNPQRTUVWXYZ]{5}$`)
	code, err := allocator.Allocate(context.Background(), TypeNetMetering)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if !pattern.MatchString(code) {
		t.Fatalf("code %q does not match the reference format", code)
	}
}

func TestAllocate_PrefixPerType(t *testing.T) {
	allocator := NewReferenceAllocator(nil, WithClock(fixedClock))

	cases := []struct {
		appType ApplicationType
		prefix  string
	}{
		{TypeNetMetering, "NET-"},
		{TypeGrossMetering, "GRS-"},
		{TypeSimpleSetup, "SOL-"},
	}
	for _, tc := range cases {
		code, err := allocator.Allocate(context.Background(), tc.appType)
		if err != nil {
			t.Fatalf("allocate %s: %v", tc.appType, err)
		}
		if !strings.HasPrefix(code, tc.prefix) {
			t.Fatalf("expected prefix %q, got %q", tc.prefix, code)
		}
	}
}

func TestAllocate_RetriesOnCollision(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		calls++
		return calls < 3, nil
	}
	allocator := NewReferenceAllocator(exists, WithClock(fixedClock))

	code, err := allocator.Allocate(context.Background(), TypeNetMetering)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if code == "" {
		t.Fatal("expected a code after retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 existence checks, got %d", calls)
	}
}

func TestAllocate_Exhaustion(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		calls++
		return true, nil
	}
	allocator := NewReferenceAllocator(exists, WithClock(fixedClock), WithMaxRetries(4))

	_, err := allocator.Allocate(context.Background(), TypeGrossMetering)
	if !errors.Is(err, ErrAllocationExhausted) {
		t.Fatalf("expected ErrAllocationExhausted, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls)
	}
}

func TestAllocate_ExistsError(t *testing.T) {
	boom := errors.New("store down")
	exists := func(ctx context.Context, code string) (bool, error) {
		return false, boom
	}
	allocator := NewReferenceAllocator(exists, WithClock(fixedClock))

	_, err := allocator.Allocate(context.Background(), TypeNetMetering)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestRandomSuffix_CoversAlphabetEvenly(t *testing.T) {
	seen := make(map[byte]bool, len(referenceAlphabet))
	for i := 0; i < 2000; i++ {
		suffix, err := randomSuffix(referenceSuffixLength)
		if err != nil {
			t.Fatalf("random suffix: %v", err)
		}
		if len(suffix) != referenceSuffixLength {
			t.Fatalf("expected %d characters, got %q", referenceSuffixLength, suffix)
		}
		for j := 0; j < len(suffix); j++ {
			if !strings.ContainsRune(referenceAlphabet, rune(suffix[j])) {
				t.Fatalf("suffix %q contains character outside the alphabet", suffix)
			}
			seen[suffix[j]] = true
		}
	}
	if len(seen) != len(referenceAlphabet) {
		t.Fatalf("expected all %d alphabet characters to appear, saw %d", len(referenceAlphabet), len(seen))
	}
}

func TestReferenceAlphabet_OmitsAmbiguousCharacters(t *testing.T) {
	for _, ambiguous := range "01I5L8SBO" {
		if strings.ContainsRune(referenceAlphabet, ambiguous) {
			t.Fatalf("alphabet must not contain %q", ambiguous)
		}
	}
}
