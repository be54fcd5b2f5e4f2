package main

import (
	"net/http/httptest"
	"testing"
)

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.2:443":   false,
		"example:1":      false,
		"127.0.0.1":      true,
	}
	for in, want := range cases {
		if got := isLoopbackRemote(in); got != want {
			t.Fatalf("isLoopbackRemote(%q)=%v want %v", in, got, want)
		}
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/v1/ascii?cx=-3&cy=bad", nil)
	if got := queryInt(r, "cx", 0); got != -3 {
		t.Fatalf("cx=%d want -3", got)
	}
	if got := queryInt(r, "cy", 7); got != 7 {
		t.Fatalf("cy=%d want default 7", got)
	}
	if got := queryInt(r, "missing", 2); got != 2 {
		t.Fatalf("missing=%d want 2", got)
	}
}

func TestOpenRuntimeIndex_Disabled(t *testing.T) {
	idx, err := openRuntimeIndex(t.TempDir(), 1, true)
	if err != nil || idx != nil {
		t.Fatalf("expected nil index when disabled, got %v %v", idx, err)
	}
	t.Setenv("DD_INDEX_BACKEND", "bogus")
	if _, err := openRuntimeIndex(t.TempDir(), 1, false); err == nil {
		t.Fatalf("expected unsupported backend error")
	}
}
