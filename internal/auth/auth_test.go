package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name    string
		claims  jwt.MapClaims
		want    Claims
		wantErr bool
	}{
		{
			name: "string subject",
			claims: jwt.MapClaims{
				"sub":       "user-1",
				"email":     "admin@storaze.com",
				"role":      "superAdmin",
				"companyId": 7,
				"exp":       exp.Unix(),
			},
			want: Claims{UserID: "user-1", Email: "admin@storaze.com", Role: "superAdmin", CompanyID: "7", ExpiresAt: exp},
		},
		{
			name:   "numeric id",
			claims: jwt.MapClaims{"id": 42, "email": "a@b.com"},
			want:   Claims{UserID: "42", Email: "a@b.com"},
		},
		{
			name:    "no user",
			claims:  jwt.MapClaims{"email": "a@b.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClaims(signedToken(t, tt.claims))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClaims() error = %v", err)
			}
			if got.UserID != tt.want.UserID || got.Email != tt.want.Email || got.Role != tt.want.Role || got.CompanyID != tt.want.CompanyID {
				t.Errorf("ParseClaims() = %+v, want %+v", got, tt.want)
			}
			if !got.ExpiresAt.Equal(tt.want.ExpiresAt) {
				t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, tt.want.ExpiresAt)
			}
		})
	}
}

func TestParseClaimsIgnoresExpiryAndSignature(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()})

	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("Expired tokens should still decode: %v", err)
	}
	if !claims.Expired(time.Now()) {
		t.Error("Claims should report expiry")
	}
}

func TestParseClaimsMalformed(t *testing.T) {
	if _, err := ParseClaims("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	b, _ := GenerateRandomToken(32)
	if a == "" || a == b {
		t.Errorf("Tokens should be non-empty and unique, got %q and %q", a, b)
	}
}
