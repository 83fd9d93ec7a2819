package auth

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestAccountForTarget(t *testing.T) {
	tests := map[string]string{
		"":                         DefaultAccount,
		"http://localhost:5000/":   "localhost:5000",
		"HTTPS://Arma.Example.com": "arma.example.com",
		" https://10.0.0.2:8080 ":  "10.0.0.2:8080",
	}
	for in, want := range tests {
		if got := AccountForTarget(in); got != want {
			t.Errorf("AccountForTarget(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveToken(t *testing.T) {
	store := NewMockStore()

	token, err := ResolveToken(store, "", "http://localhost:5000")
	if err != nil || token != "" {
		t.Fatalf("missing token: got %q, %v", token, err)
	}

	if err := store.SetToken("localhost:5000", "stored"); err != nil {
		t.Fatal(err)
	}
	if token, _ := ResolveToken(store, "", "http://localhost:5000"); token != "stored" {
		t.Errorf("stored token = %q", token)
	}
	if token, _ := ResolveToken(store, " explicit ", "http://localhost:5000"); token != "explicit" {
		t.Errorf("explicit token = %q", token)
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("")

	if _, err := store.GetToken("a"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("GetToken on empty keyring: %v", err)
	}
	if err := store.SetToken("a", "secret"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if got, err := store.GetToken("a"); err != nil || got != "secret" {
		t.Errorf("GetToken = %q, %v", got, err)
	}
	if err := store.DeleteToken("a"); err != nil {
		t.Errorf("DeleteToken: %v", err)
	}
	if err := store.DeleteToken("a"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("second DeleteToken = %v, want ErrTokenNotFound", err)
	}
}
