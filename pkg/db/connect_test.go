package db

import (
	"testing"
)

func TestCasefoldFunction(t *testing.T) {
	db := openTestDB(t)

	var folded string
	if err := db.QueryRow("SELECT casefold(?)", "Café WORK").Scan(&folded); err != nil {
		t.Fatalf("casefold query failed: %v", err)
	}
	if folded != Fold("Café WORK") {
		t.Errorf("casefold() = %q, Fold() = %q", folded, Fold("Café WORK"))
	}
	if folded != "café work" {
		t.Errorf("casefold() = %q, want %q", folded, "café work")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	if err := UpgradeDB(db, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed: %v", err)
	}

	const insertTag = `INSERT INTO tags (id, name, name_key, created_at) VALUES (?, ?, ?, 0)`
	if _, err := db.Exec(insertTag, "t1", "Work", "work"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := db.Exec(insertTag, "t2", "work", "work")
	if err == nil {
		t.Fatal("expected a unique violation on duplicate name_key")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
	if IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = true, want false", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	if err := UpgradeDB(db, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed: %v", err)
	}

	_, err := db.Exec(`INSERT INTO entries (id, user_id, entry_date, content, category, primary_mood, created_at, updated_at)
VALUES ('e1', 'missing-user', '2024-01-01', 'c', 'cat', 'calm', 0, 0)`)
	if err == nil {
		t.Fatal("expected a foreign key violation for an unknown user")
	}
	if !IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = false, want true", err)
	}
}

func TestUserDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	if err := UpgradeDB(db, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed: %v", err)
	}

	stmts := []string{
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at) VALUES ('u1', 'ann', 'ann@example.com', 'x', 0, 0)`,
		`INSERT INTO entries (id, user_id, entry_date, content, category, primary_mood, created_at, updated_at) VALUES ('e1', 'u1', '2024-01-01', 'c', 'cat', 'calm', 0, 0)`,
		`INSERT INTO tags (id, name, name_key, created_at) VALUES ('t1', 'Work', 'work', 0)`,
		`INSERT INTO entry_tags (entry_id, tag_id) VALUES ('e1', 't1')`,
		`DELETE FROM users WHERE id = 'u1'`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM entry_tags`).Scan(&n); err != nil {
		t.Fatalf("count entry_tags: %v", err)
	}
	if n != 0 {
		t.Errorf("expected entry_tags to be emptied by cascade, found %d rows", n)
	}
}
