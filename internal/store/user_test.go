package store

import (
	"testing"

	"github.com/tskinner/inkwell/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("alice@example.com", "Alice", "hashed-password", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
	if u.Name != "Alice" {
		t.Errorf("name = %q, want %q", u.Name, "Alice")
	}
	if u.PasswordHash != "hashed-password" {
		t.Errorf("password_hash = %q, want %q", u.PasswordHash, "hashed-password")
	}
	if u.IsAdmin {
		t.Error("expected non-admin")
	}
	if u.ID == 0 {
		t.Error("expected non-zero ID")
	}
}

func TestUserCreateAdmin(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("root@example.com", "Root", "h", true)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if !u.IsAdmin {
		t.Error("expected admin flag set")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice@example.com", "Alice", "h", false); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("alice@example.com", "Alice2", "h", false); err == nil {
		t.Fatal("expected error for duplicate email, got nil")
	}
}

func TestUserGetByID(t *testing.T) {
	us := setupUserTestDB(t)

	created, err := us.Create("alice@example.com", "Alice", "h", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := us.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserGetByEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("bob@example.com", "Bob", "h", false); err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := us.GetByEmail("bob@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.Name != "Bob" {
		t.Errorf("name = %q, want %q", u.Name, "Bob")
	}

	missing, err := us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get missing email: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserListAdminsExcludes(t *testing.T) {
	us := setupUserTestDB(t)

	a, _ := us.Create("a@example.com", "A", "h", true)
	b, _ := us.Create("b@example.com", "B", "h", true)
	c, _ := us.Create("c@example.com", "C", "h", true)
	us.Create("d@example.com", "D", "h", false)

	admins, err := us.ListAdmins(a.ID)
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(admins) != 2 {
		t.Fatalf("expected 2 admins, got %d", len(admins))
	}
	if admins[0].ID != b.ID || admins[1].ID != c.ID {
		t.Errorf("admins = [%d %d], want [%d %d]", admins[0].ID, admins[1].ID, b.ID, c.ID)
	}
}

func TestUserListAdminsNoExclude(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("a@example.com", "A", "h", true)
	us.Create("b@example.com", "B", "h", false)

	admins, err := us.ListAdmins(0)
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(admins) != 1 {
		t.Fatalf("expected 1 admin, got %d", len(admins))
	}
}

func TestUserSetAdmin(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("a@example.com", "A", "h", false)
	if err := us.SetAdmin(u.ID, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}

	got, _ := us.GetByID(u.ID)
	if !got.IsAdmin {
		t.Error("expected admin after SetAdmin")
	}
}

func TestUserDelete(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("a@example.com", "A", "h", false)
	if err := us.Delete(u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	got, err := us.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get deleted user: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
