package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/reconnect/internal/apperr"
	"github.com/starford/reconnect/internal/models"
)

var base = time.Date(2025, 1, 15, 9, 30, 0, 123456789, time.UTC)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "reconnect-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedContact(t *testing.T, db *DB, id, name string) models.Contact {
	t.Helper()
	c := models.Contact{
		ID:            id,
		FullName:      name,
		Relationship:  models.RelationshipFriend,
		FrequencyDays: 7,
		Priority:      3,
		CreatedAt:     base,
		UpdatedAt:     base,
	}
	if err := db.InsertContact(context.Background(), c); err != nil {
		t.Fatalf("InsertContact: %v", err)
	}
	return c
}

func interaction(id, contactID string, at time.Time) models.Interaction {
	return models.Interaction{ID: id, ContactID: contactID, Type: models.InteractionCall, CreatedAt: at}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"contacts", "interactions", "settings", "schema_migrations"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
	var version int
	_ = db.conn.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}
}

func TestReopenKeepsData(t *testing.T) {
	f, err := os.CreateTemp("", "reconnect-reopen-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	seedContact(t, db, "c1", "Ada")
	db.Close()

	db, err = Open(f.Name())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	n, err := db.CountContacts(context.Background())
	if err != nil || n != 1 {
		t.Errorf("CountContacts = %d, %v; want 1", n, err)
	}
}

func TestContactCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedContact(t, db, "c2", "bob")
	c := seedContact(t, db, "c1", "Alice")

	got, err := db.GetContact(ctx, "c1")
	if err != nil {
		t.Fatalf("GetContact: %v", err)
	}
	if got.FullName != "Alice" || got.LastContactedAt != nil || !got.CreatedAt.Equal(base) {
		t.Errorf("GetContact = %+v", got)
	}

	list, err := db.ListContacts(ctx)
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c1" || list[1].ID != "c2" {
		t.Errorf("ListContacts order = %+v", list)
	}

	c.FullName = "Alice Smith"
	c.Priority = 5
	c.UpdatedAt = base.Add(time.Hour)
	if err := db.UpdateContact(ctx, c); err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	got, _ = db.GetContact(ctx, "c1")
	if got.FullName != "Alice Smith" || got.Priority != 5 {
		t.Errorf("after update = %+v", got)
	}

	if err := db.DeleteContact(ctx, "c1"); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
	if _, err := db.GetContact(ctx, "c1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetContact after delete err = %v, want not found", err)
	}
}

func TestContactMissing(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.UpdateContact(ctx, models.Contact{ID: "ghost", FullName: "x", Relationship: "friend", FrequencyDays: 1, Priority: 1}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateContact missing err = %v", err)
	}
	if err := db.DeleteContact(ctx, "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("DeleteContact missing err = %v", err)
	}
}

func TestAppendInteraction_UpdatesProjection(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedContact(t, db, "c1", "Ada")

	at := base.Add(48 * time.Hour)
	c, err := db.AppendInteraction(ctx, interaction("i1", "c1", at))
	if err != nil {
		t.Fatalf("AppendInteraction: %v", err)
	}
	if c.LastContactedAt == nil || !c.LastContactedAt.Equal(at) {
		t.Errorf("returned lastContactedAt = %v, want %v", c.LastContactedAt, at)
	}

	// An older entry does not move the projection backwards.
	if _, err := db.AppendInteraction(ctx, interaction("i0", "c1", base)); err != nil {
		t.Fatal(err)
	}
	got, _ := db.GetContact(ctx, "c1")
	if got.LastContactedAt == nil || !got.LastContactedAt.Equal(at) {
		t.Errorf("lastContactedAt = %v, want %v", got.LastContactedAt, at)
	}
}

func TestUpdateContact_KeepsProjection(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	c := seedContact(t, db, "c1", "Ada")
	if _, err := db.AppendInteraction(ctx, interaction("i1", "c1", base)); err != nil {
		t.Fatal(err)
	}
	c.LastContactedAt = nil
	c.FullName = "Ada L."
	if err := db.UpdateContact(ctx, c); err != nil {
		t.Fatal(err)
	}
	got, _ := db.GetContact(ctx, "c1")
	if got.LastContactedAt == nil || !got.LastContactedAt.Equal(base) {
		t.Errorf("lastContactedAt = %v, want %v", got.LastContactedAt, base)
	}
}

func TestAppendInteraction_UnknownContact(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_, err := db.AppendInteraction(ctx, interaction("i1", "nobody", base))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	list, _ := db.ListInteractions(ctx, models.InteractionFilter{})
	if len(list) != 0 {
		t.Errorf("ledger has %d entries after failed append", len(list))
	}
}

func TestLedgerIsImmutable(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedContact(t, db, "c1", "Ada")
	if _, err := db.AppendInteraction(ctx, interaction("i1", "c1", base)); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`UPDATE interactions SET notes = 'x'`); err == nil {
		t.Error("update of interaction should fail")
	}
	if _, err := db.conn.Exec(`DELETE FROM interactions`); err == nil {
		t.Error("delete of interaction should fail")
	}
}

func TestDeleteContact_KeepsInteractions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedContact(t, db, "c1", "Ada")
	if _, err := db.AppendInteraction(ctx, interaction("i1", "c1", base)); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteContact(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	list, _ := db.ListInteractions(ctx, models.InteractionFilter{})
	if len(list) != 1 || list[0].ContactID != "c1" {
		t.Errorf("orphaned interactions = %+v", list)
	}
}

func TestListInteractions_OrderAndFilter(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedContact(t, db, "a", "A")
	seedContact(t, db, "b", "B")

	entries := []models.Interaction{
		interaction("1", "a", base),
		interaction("2", "b", base.Add(2*time.Hour)),
		interaction("3", "a", base.Add(time.Hour)),
		interaction("4", "a", base.Add(time.Hour)),
	}
	for _, e := range entries {
		if _, err := db.AppendInteraction(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.ListInteractions(ctx, models.InteractionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2", "4", "3", "1"}
	if len(all) != len(want) {
		t.Fatalf("len = %d, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("all[%d] = %s, want %s", i, all[i].ID, id)
		}
	}

	onlyA, _ := db.ListInteractions(ctx, models.InteractionFilter{ContactID: "a", Limit: 2})
	if len(onlyA) != 2 || onlyA[0].ID != "4" || onlyA[1].ID != "3" {
		t.Errorf("filtered = %+v", onlyA)
	}
}

func TestRebuildProjection(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedContact(t, db, "c1", "Ada")
	seedContact(t, db, "c2", "Bo")
	if _, err := db.AppendInteraction(ctx, interaction("i1", "c1", base)); err != nil {
		t.Fatal(err)
	}

	// Drift the projection behind the ledger's back.
	if _, err := db.conn.Exec(`UPDATE contacts SET last_contacted_at = NULL WHERE id = 'c1'`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`UPDATE contacts SET last_contacted_at = 42 WHERE id = 'c2'`); err != nil {
		t.Fatal(err)
	}

	n, err := db.RebuildProjection(ctx)
	if err != nil {
		t.Fatalf("RebuildProjection: %v", err)
	}
	if n != 2 {
		t.Errorf("changed = %d, want 2", n)
	}
	c1, _ := db.GetContact(ctx, "c1")
	c2, _ := db.GetContact(ctx, "c2")
	if c1.LastContactedAt == nil || !c1.LastContactedAt.Equal(base) {
		t.Errorf("c1 lastContactedAt = %v", c1.LastContactedAt)
	}
	if c2.LastContactedAt != nil {
		t.Errorf("c2 lastContactedAt = %v, want nil", c2.LastContactedAt)
	}

	if n, _ := db.RebuildProjection(ctx); n != 0 {
		t.Errorf("second rebuild changed %d rows", n)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	s, err := db.LoadSettings(ctx)
	if err != nil || s != nil {
		t.Fatalf("LoadSettings on empty db = %v, %v", s, err)
	}

	want := models.Settings{Mode: models.ModeWeekly, CountDaily: 2, CountWeekly: 8, DefaultFrequencies: []int{5, 10}}
	if err := db.SaveSettings(ctx, want); err != nil {
		t.Fatal(err)
	}
	want.CountDaily = 4
	if err := db.SaveSettings(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := db.LoadSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Mode != want.Mode || got.CountDaily != 4 || got.CountWeekly != 8 || len(got.DefaultFrequencies) != 2 {
		t.Errorf("LoadSettings = %+v", got)
	}
}
