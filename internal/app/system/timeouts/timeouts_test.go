package timeouts

import (
	"testing"
	"time"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 42 * time.Second})

	if got := Short(); got != 42*time.Second {
		t.Errorf("Short() = %v, want 42s", got)
	}
	if got := Medium(); got != Defaults().Medium {
		t.Errorf("Medium() = %v, want default %v", got, Defaults().Medium)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Minute})
	Reset()
	if Current() != Defaults() {
		t.Errorf("Current() = %+v after Reset, want %+v", Current(), Defaults())
	}
}
