package hostconfig

import "testing"

func TestPanicFuncDefaultsWhenUnset(t *testing.T) {
	c := Config{EnableUnsafePanic: true}
	if got := c.PanicFunc(); got != DefaultUnsafePanicFunc {
		t.Errorf("PanicFunc() = %q, want %q", got, DefaultUnsafePanicFunc)
	}
}

func TestPanicFuncHonorsOverride(t *testing.T) {
	c := Config{UnsafePanicFunc: "my_trap"}
	if got := c.PanicFunc(); got != "my_trap" {
		t.Errorf("PanicFunc() = %q, want %q", got, "my_trap")
	}
}
