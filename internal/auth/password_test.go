package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash equals plaintext")
	}
	if err := ComparePassword(hash, "s3cret"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestIsHashed(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	tests := map[string]bool{
		hash:        true,
		"pw":        false,
		"":          false,
		"$2a$short": false,
	}
	for in, want := range tests {
		if got := IsHashed(in); got != want {
			t.Errorf("IsHashed(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCompareLegacyPassword(t *testing.T) {
	if !CompareLegacyPassword("adminpass", "adminpass") {
		t.Fatal("equal values rejected")
	}
	if CompareLegacyPassword("adminpass", "adminpas") {
		t.Fatal("different values accepted")
	}
}
