package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPasswordHash("hunter2hunter2", hash) {
		t.Fatal("correct password must verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("wrong password must not verify")
	}
}

func TestEmptyHashNeverMatches(t *testing.T) {
	// empty hash is the unusable-password marker
	if CheckPasswordHash("", "") {
		t.Fatal("unusable password must never verify")
	}
	if CheckPasswordHash("anything", "") {
		t.Fatal("unusable password must never verify")
	}
}
