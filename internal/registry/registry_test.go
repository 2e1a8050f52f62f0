package registry

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolveKnownModel(t *testing.T) {
	r := Default()

	id, err := r.Resolve("GFS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "gfs_seamless" {
		t.Fatalf("expected gfs_seamless, got %s", id)
	}
}

func TestResolveUnknownModel(t *testing.T) {
	r := Default()

	_, err := r.Resolve("FAKE")
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}

func TestNamesPreserveRegistrationOrder(t *testing.T) {
	r := New([][2]string{
		{"B", "b_id"},
		{"A", "a_id"},
		{"C", "c_id"},
	})

	want := []string{"B", "A", "C"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDuplicateNamesKeepFirstEntry(t *testing.T) {
	r := New([][2]string{
		{"A", "first"},
		{"A", "second"},
	})

	if got := len(r.Names()); got != 1 {
		t.Fatalf("expected 1 name, got %d", got)
	}
	id, err := r.Resolve("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "first" {
		t.Fatalf("expected first, got %s", id)
	}
}
