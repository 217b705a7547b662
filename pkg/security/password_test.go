package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
	"github.com/lawscheduling/lawscheduling-backend/pkg/security"
)

var fastArgon = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("counsel-of-record", fastArgon)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", hash)
	}

	for _, tc := range []struct {
		password string
		want     bool
	}{
		{"counsel-of-record", true},
		{"Counsel-of-record", false},
		{"", false},
	} {
		got, err := security.VerifyPassword(tc.password, hash)
		if err != nil {
			t.Fatalf("VerifyPassword(%q): %v", tc.password, err)
		}
		if got != tc.want {
			t.Fatalf("VerifyPassword(%q) = %v, want %v", tc.password, got, tc.want)
		}
	}
}

func TestHashPasswordSaltsEachHash(t *testing.T) {
	a, _ := security.HashPassword("same-password", fastArgon)
	b, _ := security.HashPassword("same-password", fastArgon)
	if a == b {
		t.Fatal("two hashes of one password should differ")
	}
	if _, err := security.HashPassword("", fastArgon); err == nil {
		t.Fatal("expected empty password to be refused")
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	cases := map[string]error{
		"not-a-hash":                             security.ErrInvalidHash,
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5":   security.ErrInvalidHash,
		"$argon2id$v=16$m=1,t=1,p=1$c2FsdA$a2V5": security.ErrIncompatibleVersion,
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5": security.ErrInvalidHash,
		"$argon2id$v=19$m=1,t=1,p=1$!!!$a2V5":    security.ErrInvalidHash,
		"$argon2id$v=19$m=1,t=1,p=1$c2FsdA$":     security.ErrInvalidHash,
	}
	for encoded, want := range cases {
		if _, err := security.VerifyPassword("irrelevant", encoded); !errors.Is(err, want) {
			t.Errorf("VerifyPassword(%q) error = %v, want %v", encoded, err, want)
		}
	}
}

func TestCheckPolicy(t *testing.T) {
	cfg := config.PasswordConfig{MinLength: 10}
	tests := []struct {
		name     string
		password string
		cfg      config.PasswordConfig
		wantErr  bool
	}{
		{"below configured minimum", "short-pw", cfg, true},
		{"meets configured minimum", "long-enough", cfg, false},
		{"default minimum applies", "1234567", config.PasswordConfig{}, true},
		{"runes not bytes", "ééééééééé", cfg, true},
		{"too long", strings.Repeat("a", 257), cfg, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := security.CheckPolicy(tc.password, tc.cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("CheckPolicy error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
