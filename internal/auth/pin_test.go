package auth

import "testing"

func TestIsValidPin(t *testing.T) {
	valid := []string{"1234", "0000", "12345678"}
	for _, pin := range valid {
		if !IsValidPin(pin) {
			t.Fatalf("expected %q to be valid", pin)
		}
	}

	invalid := []string{"", "123", "123456789", "12a4", "12 34"}
	for _, pin := range invalid {
		if IsValidPin(pin) {
			t.Fatalf("expected %q to be invalid", pin)
		}
	}
}

func TestPinKeyDeterministic(t *testing.T) {
	a := PinKey("4821", "pepper")
	b := PinKey("4821", "pepper")
	if a != b {
		t.Fatalf("same pin and pepper should derive the same key")
	}

	if PinKey("4821", "other") == a {
		t.Fatalf("different pepper should derive a different key")
	}
	if PinKey("4822", "pepper") == a {
		t.Fatalf("different pin should derive a different key")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256 key, got length %d", len(a))
	}
}
