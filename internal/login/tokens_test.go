package login

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestHandoffHappyPath(t *testing.T) {
	tokens := NewTokens()

	lt := tokens.Issue("L1")
	if lt == "" {
		t.Fatal("empty login token")
	}

	ut, err := tokens.Redeem("L1", lt, "U1")
	if err != nil {
		t.Fatal(err)
	}

	userID, err := tokens.Consume(ut)
	if err != nil {
		t.Fatal(err)
	}
	if userID != "U1" {
		t.Fatalf("user = %q, want U1", userID)
	}
}

func TestRedeemLeagueMismatch(t *testing.T) {
	tokens := NewTokens()
	lt := tokens.Issue("L1")

	if _, err := tokens.Redeem("L2", lt, "U1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// a mismatched redeem must not burn the token
	if _, err := tokens.Redeem("L1", lt, "U1"); err != nil {
		t.Fatalf("token should survive a mismatched redeem: %v", err)
	}
}

func TestRedeemIsSingleUse(t *testing.T) {
	tokens := NewTokens()
	lt := tokens.Issue("L1")

	if _, err := tokens.Redeem("L1", lt, "U1"); err != nil {
		t.Fatal(err)
	}
	if _, err := tokens.Redeem("L1", lt, "U1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("second redeem should fail, got %v", err)
	}
}

func TestRedeemUnknownToken(t *testing.T) {
	tokens := NewTokens()

	if _, err := tokens.Redeem("L1", "made-up", "U1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	tokens := NewTokens()
	ut, err := tokens.Redeem("L1", tokens.Issue("L1"), "U1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tokens.Consume(ut); err != nil {
		t.Fatal(err)
	}
	if _, err := tokens.Consume(ut); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("second consume should fail, got %v", err)
	}
}

func TestConsumeUnknownToken(t *testing.T) {
	tokens := NewTokens()

	if _, err := tokens.Consume("made-up"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestConsumeWindow(t *testing.T) {
	now := time.Now()
	tokens := NewTokens()
	tokens.now = func() time.Time { return now }

	ut, err := tokens.Redeem("L1", tokens.Issue("L1"), "U1")
	if err != nil {
		t.Fatal(err)
	}

	// exactly at the boundary the token is still good
	tokens.now = func() time.Time { return now.Add(userTokenTTL) }
	if _, err := tokens.Consume(ut); err != nil {
		t.Fatalf("token at the 45s boundary should consume: %v", err)
	}

	// second token issued back at the base time
	tokens.now = func() time.Time { return now }
	ut, err = tokens.Redeem("L1", tokens.Issue("L1"), "U1")
	if err != nil {
		t.Fatal(err)
	}

	tokens.now = func() time.Time { return now.Add(userTokenTTL + time.Second) }
	if _, err := tokens.Consume(ut); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token should fail, got %v", err)
	}

	// the expired read must still have burned the entry
	tokens.now = func() time.Time { return now }
	if _, err := tokens.Consume(ut); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token must be gone, got %v", err)
	}
}

func TestConcurrentRedeemExactlyOneWins(t *testing.T) {
	tokens := NewTokens()
	lt := tokens.Issue("L1")

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := tokens.Redeem("L1", lt, "U1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("redeem won %d times, want exactly 1", wins)
	}
}

func TestConcurrentConsumeExactlyOneWins(t *testing.T) {
	tokens := NewTokens()
	ut, err := tokens.Redeem("L1", tokens.Issue("L1"), "U1")
	if err != nil {
		t.Fatal(err)
	}

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := tokens.Consume(ut)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("consume won %d times, want exactly 1", wins)
	}
}
