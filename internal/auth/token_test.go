package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("s3cret", "https://issuer.example/")

	token, err := v.Sign("operator", time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	claims, err := v.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.Subject != "operator" {
		t.Errorf("Subject = %q, want operator", claims.Subject)
	}
	if claims.Issuer != "https://issuer.example" {
		t.Errorf("Issuer = %q", claims.Issuer)
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("s3cret", "issuer")
	now := time.Now()
	valid := func() Claims {
		return Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "op",
			Issuer:    "issuer",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))

	noExp := valid()
	noExp.ExpiresAt = nil

	wrongIssuer := valid()
	wrongIssuer.Issuer = "other"

	noSubject := valid()
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", sign(t, jwt.SigningMethodHS256, []byte("s3cret"), expired), ErrTokenExpired},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), valid()), ErrInvalidToken},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte("s3cret"), valid()), ErrInvalidToken},
		{"missing exp", sign(t, jwt.SigningMethodHS256, []byte("s3cret"), noExp), ErrInvalidToken},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, []byte("s3cret"), wrongIssuer), ErrInvalidToken},
		{"missing subject", sign(t, jwt.SigningMethodHS256, []byte("s3cret"), noSubject), ErrMissingClaims},
		{"garbage", "not.a.token", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("VerifyToken() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerifier_AnyIssuer(t *testing.T) {
	signer := NewVerifier("s3cret", "somewhere")
	token, err := signer.Sign("op", time.Minute)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if _, err := NewVerifier("s3cret", "").VerifyToken(token); err != nil {
		t.Errorf("VerifyToken() without issuer check error = %v", err)
	}
}

func TestClaimsContext(t *testing.T) {
	if got := GetClaimsFromContext(context.Background()); got != nil {
		t.Errorf("GetClaimsFromContext(empty) = %v, want nil", got)
	}

	claims := &Claims{Name: "Ops"}
	ctx := WithClaims(context.Background(), claims)
	if got := GetClaimsFromContext(ctx); got != claims {
		t.Errorf("GetClaimsFromContext() = %v, want %v", got, claims)
	}
}
