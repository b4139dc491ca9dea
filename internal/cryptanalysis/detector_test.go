package cryptanalysis

import (
	"context"
	"errors"
	"testing"

	"github.com/RowanDark/cifra/internal/cipher"
	"github.com/RowanDark/cifra/internal/dictionary"
)

func TestDetectorRankOrdersByScore(t *testing.T) {
	detector := NewDetector()
	ctx := context.Background()

	ct := cipher.Caesar("O rato roeu a roupa do rei de Roma", 11)
	rankings, err := detector.Rank(ctx, ct, portuguese)
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(rankings) != DefaultKeyspace.Size() {
		t.Fatalf("expected %d rankings, got %d", DefaultKeyspace.Size(), len(rankings))
	}

	top := rankings[0]
	if top.Shift != 11 || top.Confidence != 1.0 || top.Tokens != 9 {
		t.Errorf("unexpected top ranking %+v", top)
	}
	for i := 1; i < len(rankings); i++ {
		prev, cur := rankings[i-1], rankings[i]
		if prev.Score < cur.Score || (prev.Score == cur.Score && prev.Shift > cur.Shift) {
			t.Fatalf("rankings out of order at %d: %+v before %+v", i, prev, cur)
		}
	}
}

func TestDetectorTopMatchesRecover(t *testing.T) {
	detector := NewDetector()
	ctx := context.Background()
	texts := []string{"uif wkh", "Eh Zlvk", "zzz"}
	words := dictionary.New("the", "be", "wish")

	for _, ct := range texts {
		rankings, err := detector.Rank(ctx, ct, words)
		if err != nil {
			t.Fatalf("rank %q: %v", ct, err)
		}
		best, err := Recover(ct, words)
		if err != nil {
			t.Fatalf("recover %q: %v", ct, err)
		}
		if rankings[0].Candidate != best {
			t.Errorf("%q: detector top %+v differs from Recover %+v", ct, rankings[0].Candidate, best)
		}
	}
}

func TestDetectorMinConfidence(t *testing.T) {
	detector := &Detector{Keyspace: DefaultKeyspace, MinConfidence: 0.5}
	rankings, err := detector.Rank(context.Background(), "uif wkh", dictionary.New("the"))
	if err != nil {
		t.Fatalf("rank failed: %v", err)
	}
	if len(rankings) != 2 {
		t.Fatalf("expected the two half-recognised candidates, got %d", len(rankings))
	}
	if rankings[0].Shift != 1 || rankings[1].Shift != 3 {
		t.Errorf("unexpected shifts %d, %d", rankings[0].Shift, rankings[1].Shift)
	}
}

func TestDetectorEdgeCases(t *testing.T) {
	detector := NewDetector()
	ctx := context.Background()

	// Blank input is valid: every candidate scores zero, as with Recover.
	blank, err := detector.Rank(ctx, "   ", portuguese)
	if err != nil {
		t.Fatalf("blank input: %v", err)
	}
	if len(blank) != DefaultKeyspace.Size() || blank[0].Shift != 1 || blank[0].Score != 0 || blank[0].Confidence != 0 {
		t.Errorf("unexpected rankings for blank input: %+v", blank)
	}
	if best, _ := Recover("   ", portuguese); best != blank[0].Candidate {
		t.Errorf("Recover picked %+v, Rank %+v", best, blank[0].Candidate)
	}

	rankings, err := detector.Rank(ctx, "uif", dictionary.WordSet{})
	if !errors.Is(err, ErrEmptyDictionary) {
		t.Errorf("expected ErrEmptyDictionary, got %v", err)
	}
	if len(rankings) == 0 || rankings[0].Shift != 1 {
		t.Errorf("expected shift 1 first for empty dictionary, got %+v", rankings)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := detector.Rank(cancelled, "uif", portuguese); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	bad := &Detector{Keyspace: Keyspace{Min: 20, Max: 2}}
	if _, err := bad.Rank(ctx, "uif", portuguese); !errors.Is(err, ErrInvalidKeyspace) {
		t.Errorf("expected ErrInvalidKeyspace, got %v", err)
	}
}
