package database

import "testing"

func TestCounterPatterns(t *testing.T) {
	got := counterPatterns("eom_rate_limit_")
	want := [2]string{
		`\_transient\_eom\_rate\_limit\_%`,
		`\_transient\_timeout\_eom\_rate\_limit\_%`,
	}
	if got != want {
		t.Errorf("counterPatterns() = %q, want %q", got, want)
	}
}
