package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/pkg/config"
	"github.com/harambee-coop/membership-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "harambee-coop",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	memberID := uuid.New()
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		MemberID: memberID,
		Role:     enums.MemberRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	claims, err := ParseAccessToken(testJWTConfig(), token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.MemberID != memberID {
		t.Fatalf("expected member id %s got %s", memberID, claims.MemberID)
	}
	if claims.Role != enums.MemberRoleAdmin {
		t.Fatalf("expected admin role got %s", claims.Role)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := testJWTConfig()

	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.MemberRoleMember}); err == nil {
		t.Fatal("expected error for missing member id")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{MemberID: uuid.New(), Role: "owner"}); err == nil {
		t.Fatal("expected error for invalid role")
	}

	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{MemberID: uuid.New(), Role: enums.MemberRoleMember}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(testJWTConfig(), issued, AccessTokenPayload{
		MemberID: uuid.New(),
		Role:     enums.MemberRoleMember,
	})
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := ParseAccessToken(testJWTConfig(), token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		MemberID: uuid.New(),
		Role:     enums.MemberRoleMember,
	})
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	other := testJWTConfig()
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected bad signature to be rejected")
	}
}
