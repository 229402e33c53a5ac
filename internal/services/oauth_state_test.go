package services

import (
	"context"
	"testing"
)

func TestMemoryOAuthStateStore_SingleUse(t *testing.T) {
	store := NewMemoryOAuthStateStore()
	ctx := context.Background()

	if err := store.Put(ctx, "abc"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err := store.Take(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("first Take: ok=%v err=%v", ok, err)
	}
	ok, err = store.Take(ctx, "abc")
	if err != nil {
		t.Fatalf("second Take: %v", err)
	}
	if ok {
		t.Fatal("state consumed twice")
	}
}

func TestMemoryOAuthStateStore_UnknownState(t *testing.T) {
	store := NewMemoryOAuthStateStore()
	ok, err := store.Take(context.Background(), "never-put")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if ok {
		t.Fatal("unknown state accepted")
	}
}
