package auth

import (
	"testing"
	"time"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Issue("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	subject, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "507f1f77bcf86cd799439011" {
		t.Fatalf("expected subject roundtrip, got %q", subject)
	}
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour)
	verifier := NewJWTService("secret-b", time.Hour)

	token, err := issuer.Issue("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("token signed with a different secret verified")
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", time.Millisecond)

	token, err := svc.Issue("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := svc.Verify(token); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestJWTService_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	if _, err := svc.Verify("not.a.token"); err == nil {
		t.Fatal("malformed token verified")
	}
}
