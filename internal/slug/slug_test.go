package slug

import (
	"context"
	"errors"
	"testing"
)

func TestValidateAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		alias   string
		wantErr error
	}{
		{"valid", "abc1234", nil},
		{"valid with dash", "my-link", nil},
		{"valid with underscore", "my_link", nil},
		{"too short", "ab", ErrTooShort},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", ErrTooLong},
		{"invalid chars", "my link", ErrInvalidChar},
		{"unicode", "liên-kết", ErrInvalidChar},
		{"reserved", "api", ErrReserved},
		{"reserved mixed case", "Dashboard", ErrReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAlias(tt.alias)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAlias(%q) = %v, want %v", tt.alias, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"launch", "launch"},
		{"My Page", "my-page"},
		{"  spaced  ", "spaced"},
		{"a--b---c", "a-b-c"},
		{"-leading-trailing-", "leading-trailing"},
		{"Ünïcode!", "n-code"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeSlug(tt.input); got != tt.want {
				t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	t.Parallel()

	if _, err := ValidateSlug("Launch Page"); err != nil {
		t.Fatalf("expected valid slug, got %v", err)
	}

	if _, err := ValidateSlug("x"); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}

	if _, err := ValidateSlug("dashboard"); !errors.Is(err, ErrReserved) {
		t.Errorf("expected ErrReserved, got %v", err)
	}

	// Normalization applies before the reserved check.
	if _, err := ValidateSlug("  DASHBOARD  "); !errors.Is(err, ErrReserved) {
		t.Errorf("expected ErrReserved after normalization, got %v", err)
	}
}

func TestGenerator_Unique(t *testing.T) {
	t.Parallel()

	gen, err := NewGenerator(DefaultCodeLength)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	code, err := gen.Unique(context.Background(), func(ctx context.Context, code string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("unique: %v", err)
	}
	if len(code) != DefaultCodeLength {
		t.Errorf("expected code length %d, got %d", DefaultCodeLength, len(code))
	}
}

func TestGenerator_UniqueRetriesExhausted(t *testing.T) {
	t.Parallel()

	gen, err := NewGenerator(DefaultCodeLength)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	calls := 0
	_, err = gen.Unique(context.Background(), func(ctx context.Context, code string) (bool, error) {
		calls++
		return true, nil
	})
	if err == nil {
		t.Fatal("expected error when every candidate collides")
	}
	if calls != maxGenerateRetries {
		t.Errorf("expected %d attempts, got %d", maxGenerateRetries, calls)
	}
}

func TestGenerator_UniquePropagatesError(t *testing.T) {
	t.Parallel()

	gen, err := NewGenerator(DefaultCodeLength)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	storeErr := errors.New("store unavailable")
	_, err = gen.Unique(context.Background(), func(ctx context.Context, code string) (bool, error) {
		return false, storeErr
	})
	if !errors.Is(err, storeErr) {
		t.Errorf("expected store error to propagate, got %v", err)
	}
}
