package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	issued, err := tm.GenerateToken("a@b.com", domain.RoleTechTeam)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if got := issued.ExpiresAt.Sub(issued.IssuedAt); got != time.Hour {
		t.Fatalf("token lifetime = %v, want 1h", got)
	}

	claims, err := tm.ParseToken(issued.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Email != "a@b.com" || claims.Role != domain.RoleTechTeam {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestDefaultTTLIsTwoHours(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	issued, err := tm.GenerateToken("a@b.com", domain.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if got := issued.ExpiresAt.Sub(issued.IssuedAt); got != 2*time.Hour {
		t.Fatalf("token lifetime = %v, want 2h", got)
	}
}

func TestAuthorize(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	userToken, err := tm.GenerateToken("user@example.com", domain.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	adminToken, err := tm.GenerateToken("admin@example.com", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	otherKey, err := NewTokenManager("other-secret", time.Hour).GenerateToken("admin@example.com", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name     string
		token    string
		roles    []string
		wantCode string
	}{
		{name: "admin passes admin gate", token: adminToken.Token, roles: []string{domain.RoleAdmin}},
		{name: "any valid token without roles", token: userToken.Token},
		{name: "user fails admin gate", token: userToken.Token, roles: []string{domain.RoleAdmin}, wantCode: apperrors.CodeForbidden},
		{name: "one of several roles", token: userToken.Token, roles: []string{domain.RoleAdmin, domain.RoleUser}},
		{name: "wrong signing key", token: otherKey.Token, roles: []string{domain.RoleAdmin}, wantCode: apperrors.CodeUnauthorized},
		{name: "garbage", token: "not.a.token", wantCode: apperrors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.Authorize(tt.token, tt.roles...)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Authorize: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("Authorize error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestAuthorizeRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	tm.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	issued, err := tm.GenerateToken("admin@example.com", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tm.now = time.Now

	if _, err := tm.Authorize(issued.Token, domain.RoleAdmin); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("Authorize error = %v, want UNAUTHORIZED", err)
	}
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	claims := &Claims{
		Email: "a@b.com",
		Role:  domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.ParseToken(signed); err == nil {
		t.Fatal("HS512 token accepted")
	}
}

func TestParseRequiresExpiry(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Email: "a@b.com", Role: domain.RoleAdmin}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.ParseToken(signed); err == nil {
		t.Fatal("token without exp accepted")
	}
}
