package login

import (
	"testing"

	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
)

func TestLoginCreatesAccountOnFirstUse(t *testing.T) {
	m := NewManager(logging.NewNop(), 7)
	cid := idgen.NewClientId()

	acct, err := m.Login(cid, "alice", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acct.Username != "alice" {
		t.Fatalf("username = %q, want alice", acct.Username)
	}
	if acct.Ship == nil {
		t.Fatal("expected a ship to be auto-generated for a brand-new account")
	}
	if acct.ClientID != cid {
		t.Fatal("expected the account to bind to the caller's connected client id")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	m := NewManager(logging.NewNop(), 7)
	acct, err := m.Login(idgen.NewClientId(), "bob", "correct")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.Logout(acct)

	if _, err := m.Login(idgen.NewClientId(), "bob", "wrong"); err != ErrWrongPassword {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
}

func TestLoginAlreadyLoggedIn(t *testing.T) {
	m := NewManager(logging.NewNop(), 7)
	if _, err := m.Login(idgen.NewClientId(), "carol", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Login(idgen.NewClientId(), "carol", "pw"); err != ErrAlreadyLoggedIn {
		t.Fatalf("err = %v, want ErrAlreadyLoggedIn", err)
	}
}

func TestLogoutAllowsReLogin(t *testing.T) {
	m := NewManager(logging.NewNop(), 7)
	acct, _ := m.Login(idgen.NewClientId(), "dave", "pw")
	m.Logout(acct)

	second, err := m.Login(idgen.NewClientId(), "dave", "pw")
	if err != nil {
		t.Fatalf("unexpected error re-logging in after logout: %v", err)
	}
	if second.ID != acct.ID {
		t.Fatal("expected the same account identity across logout/login")
	}
}

func TestGenerateShipsAreDeterministicPerSeed(t *testing.T) {
	m1 := NewManager(logging.NewNop(), 99)
	m2 := NewManager(logging.NewNop(), 99)

	a1, _ := m1.Login(idgen.NewClientId(), "erin", "pw")
	a2, _ := m2.Login(idgen.NewClientId(), "erin", "pw")

	if a1.Ship.State.HP != a2.Ship.State.HP {
		t.Fatal("expected identical-seed managers to generate identical starting ships")
	}
}
