package config

import "testing"

func TestParseValidArgs(t *testing.T) {
	cfg, err := Parse([]string{"127.0.0.1", "5060"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BindAddr() != "127.0.0.1:5060" {
		t.Fatalf("BindAddr() = %q", cfg.BindAddr())
	}
}

func TestParseWrongArity(t *testing.T) {
	if _, err := Parse([]string{"127.0.0.1"}); err == nil {
		t.Fatal("expected error for missing port")
	}
	if _, err := Parse([]string{"127.0.0.1", "5060", "extra"}); err == nil {
		t.Fatal("expected error for extra argument")
	}
}

func TestParseBadPort(t *testing.T) {
	cases := []string{"not-a-port", "0", "-1", "70000"}
	for _, c := range cases {
		if _, err := Parse([]string{"127.0.0.1", c}); err == nil {
			t.Errorf("port %q: expected error", c)
		}
	}
}
