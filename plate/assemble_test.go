package plate

import (
	"errors"
	"testing"
)

func TestAssembleFullRecord(t *testing.T) {
	rec, err := Assemble(&Record{Region: "品川", Classification: "500", Kana: "あ", Serial: "12-34"})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if rec.FullText != "品川 500 あ 12-34" {
		t.Fatalf("FullText = %q", rec.FullText)
	}
}

func TestAssembleSkipsEmptyFields(t *testing.T) {
	rec, err := Assemble(&Record{Kana: "あ", Serial: "12-34"})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if rec.FullText != "あ 12-34" {
		t.Fatalf("FullText = %q, want empty fields collapsed", rec.FullText)
	}
}

func TestAssembleFailureIsTotal(t *testing.T) {
	if _, err := Assemble(nil); !errors.Is(err, ErrNoPlateDetected) {
		t.Fatalf("nil record: err = %v", err)
	}
	if _, err := Assemble(&Record{}); !errors.Is(err, ErrNoPlateDetected) {
		t.Fatalf("all-empty record: err = %v", err)
	}
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	in := &Record{Region: "品川"}
	if _, err := Assemble(in); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if in.FullText != "" {
		t.Fatalf("input record was mutated: %+v", in)
	}
}
