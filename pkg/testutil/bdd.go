package testutil

import "testing"

// Given, When and Then wrap subtests with their BDD prefix so test output
// reads as a scenario. No framework behind them, just named subtests.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Given", desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "When", desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Then", desc, fn)
}

func step(t *testing.T, prefix, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(prefix+" "+desc, fn)
}
