package validate_test

import (
	"math"
	"testing"

	"mokolo/internal/validate"
)

func TestPhoneAcceptsCameroonAndGhana(t *testing.T) {
	good := []string{
		"+237670000000",
		"237670000000",
		"670000000",
		"+233240000000",
		"0240000000",
		"6 70 00 00 00", // spaces stripped
	}
	for _, p := range good {
		if _, ok := validate.Phone(p); !ok {
			t.Errorf("%q should be a valid phone", p)
		}
	}
	bad := []string{"", "12345", "+14155550100", "abcdefghi", "+237 1 00 00 00 00"}
	for _, p := range bad {
		if _, ok := validate.Phone(p); ok {
			t.Errorf("%q should be rejected", p)
		}
	}
}

func TestEmail(t *testing.T) {
	if _, ok := validate.Email("amina@mokolo.cm"); !ok {
		t.Fatal("valid email rejected")
	}
	for _, e := range []string{"", "no-at-sign", "a@b", "x@y."} {
		if _, ok := validate.Email(e); ok {
			t.Errorf("%q should be rejected", e)
		}
	}
}

func TestQtyClamps(t *testing.T) {
	cases := map[string]int{"": 1, "abc": 1, "0": 1, "-4": 1, "5": 5, "99": 99, "250": 99}
	for in, want := range cases {
		if got := validate.Qty(in); got != want {
			t.Errorf("Qty(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestPassword(t *testing.T) {
	if validate.Password("short1A") {
		t.Fatal("too short should fail")
	}
	if validate.Password("alllowercase1") {
		t.Fatal("missing uppercase should fail")
	}
	if !validate.Password("Correct1horse") {
		t.Fatal("compliant password rejected")
	}
}

func TestStockOp(t *testing.T) {
	for _, op := range []string{"set", "increment", "decrement", "SET"} {
		if _, ok := validate.StockOp(op); !ok {
			t.Errorf("%q should be accepted", op)
		}
	}
	if _, ok := validate.StockOp("reset"); ok {
		t.Fatal("reset is not a stock operation")
	}
}

func TestRole(t *testing.T) {
	if _, ok := validate.Role("MANAGER"); !ok {
		t.Fatal("MANAGER rejected")
	}
	if _, ok := validate.Role("manager"); ok {
		t.Fatal("roles are uppercase enums")
	}
}

func TestID(t *testing.T) {
	if _, ok := validate.ID("prod_abc-123"); !ok {
		t.Fatal("plain id rejected")
	}
	if _, ok := validate.ID("../etc/passwd"); ok {
		t.Fatal("path-looking id accepted")
	}
}

func TestMoney(t *testing.T) {
	if !validate.Money(2500.50) || !validate.Money(0) {
		t.Fatal("valid amounts rejected")
	}
	if validate.Money(-5) {
		t.Fatal("negative amount accepted")
	}
	if validate.Money(math.NaN()) || validate.Money(math.Inf(1)) {
		t.Fatal("non-finite amount accepted")
	}
}
