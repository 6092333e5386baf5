package errs

import (
	"errors"
	"testing"
)

func TestWrapKeepsChain(t *testing.T) {
	base := errors.New("boom")
	err := Wrapf(Wrap(base, "read body"), "survey %s", "SV_1")
	if !errors.Is(err, base) {
		t.Fatalf("errors.Is lost the base error: %v", err)
	}
	if err.Error() != "survey SV_1: read body: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	chain := Chain(err)
	if len(chain) != 3 || chain[2] != "boom" {
		t.Fatalf("unexpected chain %#v", chain)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "x") != nil || Wrapf(nil, "x %d", 1) != nil {
		t.Fatal("wrapping nil must return nil")
	}
	if Chain(nil) != nil {
		t.Fatal("chain of nil must be nil")
	}
}
