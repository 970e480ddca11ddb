package model

import "testing"

func TestParseRole(t *testing.T) {
	for n, want := range map[int]Role{1: RoleCustomer, 2: RoleStaff, 3: RoleAdmin} {
		got, ok := ParseRole(n)
		if !ok || got != want {
			t.Fatalf("ParseRole(%d) = %v, %v", n, got, ok)
		}
	}
	for _, n := range []int{0, 4, -1, 255} {
		if _, ok := ParseRole(n); ok {
			t.Fatalf("ParseRole(%d) should fail", n)
		}
	}
	if RoleCustomer.IsStaff() || !RoleStaff.IsStaff() || !RoleAdmin.IsStaff() {
		t.Fatalf("IsStaff mismatch")
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ReservationStatus
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusConfirmed, StatusConfirmed, true},
		{StatusPending, "borrada", false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestSumAmounts(t *testing.T) {
	if got := SumAmounts(1000, 200); got != 1200 {
		t.Fatalf("got %v", got)
	}
	if got := SumAmounts(0.1, 0.2); got != 0.3 {
		t.Fatalf("cents summing should avoid float drift, got %v", got)
	}
	if got := SumAmounts(99.99); got != 99.99 {
		t.Fatalf("got %v", got)
	}
}
