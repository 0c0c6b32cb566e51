package seed_test

import (
	"testing"

	"multimodalchat/internal/models"
	"multimodalchat/internal/seed"
	"multimodalchat/internal/store/memory"
)

func TestIfEmptySeedsOnce(t *testing.T) {
	st := memory.NewMessageStore(nil)

	if !seed.IfEmpty(st, nil) {
		t.Fatal("expected empty store to be seeded")
	}
	if seed.IfEmpty(st, nil) {
		t.Fatal("seeding should not repeat")
	}

	got := st.ReadAll()
	if len(got) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got))
	}
	if got[3].Type != models.MessageTypeCode || got[3].Language != "javascript" {
		t.Fatalf("unexpected code message %+v", got[3])
	}
	for i, m := range got {
		if m.ID != int64(i+1) {
			t.Fatalf("seeded ids should come from the store, got %d at %d", m.ID, i)
		}
	}
}
