package cursor

import "testing"

func TestEncodeDecodeResume(t *testing.T) {
	token, err := Encode(New(42, "pool-1", `type = "staking.staked"`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	pos, err := Resume(token, "pool-1", `type = "staking.staked"`)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if pos != 42 {
		t.Fatalf("position = %d, want 42", pos)
	}
	if _, err := Resume(token, "pool-1", ""); err == nil {
		t.Fatal("expected filter mismatch")
	}
	if _, err := Resume(token, "pool-2", `type = "staking.staked"`); err == nil {
		t.Fatal("expected stream mismatch")
	}
}

func TestResumeEmpty(t *testing.T) {
	pos, err := Resume("", "", "")
	if err != nil || pos != 0 {
		t.Fatalf("Resume = %d, %v", pos, err)
	}
	if _, err := Resume("!!", "", ""); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestHashFilter(t *testing.T) {
	if HashFilter("") != "" {
		t.Fatal("empty filter must hash to empty")
	}
	if len(HashFilter("x")) != 16 {
		t.Fatalf("hash length = %d", len(HashFilter("x")))
	}
}
