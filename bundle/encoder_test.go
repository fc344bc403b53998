package bundle

import (
	"errors"
	"testing"
)

func TestLabelEncoderTransform(t *testing.T) {
	enc := NewLabelEncoder([]string{"Food", "Rent", "Travel"})
	for i, label := range []string{"Food", "Rent", "Travel"} {
		code, err := enc.Transform(label)
		if err != nil {
			t.Fatalf("transform %q failed: %v", label, err)
		}
		if code != i {
			t.Fatalf("transform %q = %d, want %d", label, code, i)
		}
	}
}

func TestLabelEncoderUnknownLabel(t *testing.T) {
	enc := NewLabelEncoder([]string{"High", "Low"})
	_, err := enc.Transform("Medium")
	if err == nil {
		t.Fatal("expected error for unseen label")
	}
	if !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got %v", err)
	}
}

func TestLabelEncoderNormalizesUnicode(t *testing.T) {
	// Precomposed é in the vocabulary, e plus combining acute in the input.
	enc := NewLabelEncoder([]string{"Caf\u00e9"})
	code, err := enc.Transform("Cafe\u0301")
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected code 0, got %d", code)
	}
}
