package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/argon2"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := hashPassword("hunter2")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash %q is not in PHC format", hash)
	}

	if !verifyPassword("hunter2", hash) {
		t.Error("correct password rejected")
	}
	if verifyPassword("hunter3", hash) {
		t.Error("wrong password accepted")
	}
}

func TestHashPassword_SaltsEveryHash(t *testing.T) {
	a, err := hashPassword("hunter2")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	b, err := hashPassword("hunter2")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if a == b {
		t.Error("identical passwords produced identical hashes")
	}
}

func TestVerifyPassword_HonorsEmbeddedParameters(t *testing.T) {
	// A hash produced under other cost parameters must still verify, so
	// stored hashes survive a change of defaults.
	salt := []byte("somesaltsomesalt")
	key := argon2.IDKey([]byte("hunter2"), salt, 1, 8192, 2, 32)
	hash := fmt.Sprintf("$argon2id$v=%d$m=8192,t=1,p=2$%s$%s",
		argon2.Version,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	if !verifyPassword("hunter2", hash) {
		t.Error("hash with non-default parameters rejected")
	}
	if verifyPassword("hunter3", hash) {
		t.Error("wrong password accepted")
	}
}

func TestVerifyPassword_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=15360,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing sections", "$argon2id$v=19$m=15360,t=2,p=1"},
		{"bad base64 salt", "$argon2id$v=19$m=15360,t=2,p=1$!!!$aGFzaA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if verifyPassword("hunter2", tt.encoded) {
				t.Error("malformed hash accepted")
			}
		})
	}
}
