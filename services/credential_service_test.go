package services

import (
	"testing"

	"backend/models"
)

func TestValidate_UsernameTaken(t *testing.T) {
	db := newTestDB(t)
	mustCreateUser(t, db, &models.User{Username: "alice", Email: "alice@example.com"})
	service := NewCredentialService(db)

	conflicts, err := service.Validate("alice", "")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if conflicts["username"] != MsgUsernameTaken {
		t.Fatalf("expected username conflict, got %v", conflicts)
	}
	if _, hasEmail := conflicts["email"]; hasEmail {
		t.Fatalf("unexpected email conflict: %v", conflicts)
	}
}

func TestValidate_BothFieldsConflict(t *testing.T) {
	db := newTestDB(t)
	mustCreateUser(t, db, &models.User{Username: "alice", Email: "alice@example.com"})
	service := NewCredentialService(db)

	conflicts, err := service.Validate("alice", "alice@example.com")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(conflicts) != 2 {
		t.Fatalf("expected two conflicts, got %v", conflicts)
	}
	if conflicts["email"] != MsgEmailTaken {
		t.Fatalf("expected email conflict message, got %q", conflicts["email"])
	}
}

func TestValidate_NoConflicts(t *testing.T) {
	db := newTestDB(t)
	mustCreateUser(t, db, &models.User{Username: "alice", Email: "alice@example.com"})
	service := NewCredentialService(db)

	conflicts, err := service.Validate("bob", "bob@example.com")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", conflicts)
	}
}

func TestValidate_EmptyFieldsSkipped(t *testing.T) {
	db := newTestDB(t)
	mustCreateUser(t, db, &models.User{Username: "alice", Email: "alice@example.com"})
	service := NewCredentialService(db)

	conflicts, err := service.Validate("", "")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts for absent fields, got %v", conflicts)
	}
}

func TestEmailExists(t *testing.T) {
	db := newTestDB(t)
	mustCreateUser(t, db, &models.User{Username: "alice", Email: "alice@example.com"})
	service := NewCredentialService(db)

	exists, err := service.EmailExists("alice@example.com")
	if err != nil {
		t.Fatalf("email exists: %v", err)
	}
	if !exists {
		t.Fatal("expected alice@example.com to exist")
	}

	exists, err = service.EmailExists("new@x.com")
	if err != nil {
		t.Fatalf("email exists: %v", err)
	}
	if exists {
		t.Fatal("expected new@x.com to be free")
	}
}

func TestMapUniqueViolation_SecondCreateSurfacesFieldError(t *testing.T) {
	db := newTestDB(t)
	mustCreateUser(t, db, &models.User{Username: "alice", Email: "alice@example.com"})

	err := db.Create(&models.User{Username: "alice", Email: "other@example.com"}).Error
	if err == nil {
		t.Fatal("expected unique violation")
	}
	fieldErrs := MapUniqueViolation(err)
	if fieldErrs == nil {
		t.Fatalf("expected violation to map to field errors, got raw %v", err)
	}
	if fieldErrs["username"] != MsgUsernameTaken {
		t.Fatalf("expected username message, got %v", fieldErrs)
	}
}

func TestMapUniqueViolation_IgnoresOtherErrors(t *testing.T) {
	if fieldErrs := MapUniqueViolation(nil); fieldErrs != nil {
		t.Fatalf("nil error should not map, got %v", fieldErrs)
	}
}
