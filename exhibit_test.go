package atrium

import (
	"testing"
)

func TestExhibitCatalog_ByIdAndOrder(t *testing.T) {
	catalog := MakeExhibitCatalog(
		Exhibit{Id: "atrium", Title: "Atrium"},
		Exhibit{Id: "flock", Title: "Flock"},
		Exhibit{Id: "ledger", Title: "Ledger"},
	)

	if catalog.Len() != 3 {
		t.Fatalf("expected 3 exhibits, got %d", catalog.Len())
	}

	ex, ok := catalog.ById("flock")
	if !ok || ex.Title != "Flock" {
		t.Errorf("lookup failed: %+v (ok=%v)", ex, ok)
	}

	if _, ok := catalog.ById("nope"); ok {
		t.Errorf("unknown id must not resolve")
	}

	all := catalog.All()
	want := []string{"atrium", "flock", "ledger"}
	for i, ex := range all {
		if ex.Id != want[i] {
			t.Errorf("order broken at %d: expected %s, got %s", i, want[i], ex.Id)
		}
	}
}

func TestExhibitCatalog_DuplicateIdPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on duplicate id")
		}
	}()
	MakeExhibitCatalog(Exhibit{Id: "atrium"}, Exhibit{Id: "atrium"})
}

func TestExhibitCatalog_EmptyIdPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on empty id")
		}
	}()
	MakeExhibitCatalog(Exhibit{Id: ""})
}

func TestExhibitCatalog_LookupAndListShareEntries(t *testing.T) {
	catalog := MakeExhibitCatalog(Exhibit{Id: "atrium", Title: "Atrium"})

	byId, _ := catalog.ById("atrium")
	if byId != catalog.All()[0] {
		t.Errorf("lookup and list must hand out the same entry")
	}

	byId.Title = "Renamed"
	again, _ := catalog.ById("atrium")
	if again.Title != "Renamed" {
		t.Errorf("entries are shared pointers; mutation must be visible")
	}
}

func TestExhibitCatalog_RefillReplacesInPlace(t *testing.T) {
	catalog := MakeExhibitCatalog(Exhibit{Id: "old-a"}, Exhibit{Id: "old-b"})
	same := catalog

	catalog.fill([]Exhibit{{Id: "new-a"}, {Id: "new-b"}, {Id: "new-c"}})

	if catalog != same {
		t.Fatalf("refill must reuse the same catalog value")
	}
	if catalog.Len() != 3 {
		t.Errorf("expected 3 after refill, got %d", catalog.Len())
	}
	if _, ok := catalog.ById("old-a"); ok {
		t.Errorf("old entries must be gone after refill")
	}
	if _, ok := catalog.ById("new-c"); !ok {
		t.Errorf("new entries must resolve after refill")
	}
}

func TestExhibitCatalog_EmptyCatalog(t *testing.T) {
	catalog := MakeExhibitCatalog()

	if catalog.Len() != 0 {
		t.Errorf("expected empty catalog, got %d", catalog.Len())
	}
	if _, ok := catalog.ById("anything"); ok {
		t.Errorf("empty catalog must not resolve ids")
	}
	if len(catalog.All()) != 0 {
		t.Errorf("All on empty catalog must be empty")
	}
}
