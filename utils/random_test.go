package utils

import "testing"

func TestSecureIntBounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		v, err := SecureInt(5, 10)
		if err != nil {
			t.Fatalf("SecureInt failed: %v", err)
		}
		if v < 5 || v > 10 {
			t.Fatalf("value %d outside [5, 10]", v)
		}
	}
}

func TestSecureIntSingleValue(t *testing.T) {
	v, err := SecureInt(42, 42)
	if err != nil {
		t.Fatalf("SecureInt failed: %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
}

func TestSecureIntNegativeRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		v, err := SecureInt(-3, 2)
		if err != nil {
			t.Fatalf("SecureInt failed: %v", err)
		}
		if v < -3 || v > 2 {
			t.Fatalf("value %d outside [-3, 2]", v)
		}
	}
}

func TestSecureIntInvalidRange(t *testing.T) {
	if _, err := SecureInt(10, 5); err == nil {
		t.Error("expected error for inverted range")
	}
}
