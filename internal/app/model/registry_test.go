package model

import (
	"slices"
	"sync"
	"testing"

	"gorm.io/gorm/schema"
)

func TestRegistryMatchesStructs(t *testing.T) {
	models := map[Kind]any{
		KindBusiness: &Business{},
		KindReview:   &Review{},
		KindUser:     &User{},
		KindTip:      &Tip{},
		KindCheckin:  &Checkin{},
	}

	for kind, m := range models {
		s, err := schema.Parse(m, &sync.Map{}, schema.NamingStrategy{})
		if err != nil {
			t.Fatalf("%s: schema parse failed: %v", kind, err)
		}
		e, ok := Lookup(kind)
		if !ok {
			t.Fatalf("%s: not registered", kind)
		}
		if s.Table != e.Table {
			t.Fatalf("%s: table mismatch: got %s, want %s", kind, e.Table, s.Table)
		}
		if !slices.Equal(s.DBNames, e.Columns) {
			t.Fatalf("%s: columns mismatch:\n got  %v\n want %v", kind, e.Columns, s.DBNames)
		}
		var pk []string
		for _, f := range s.PrimaryFields {
			pk = append(pk, f.DBName)
		}
		if !slices.Equal(pk, e.PrimaryKey) {
			t.Fatalf("%s: primary key mismatch: got %v, want %v", kind, e.PrimaryKey, pk)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("bogus"); ok {
		t.Fatal("unknown kind should not be found")
	}
}

func TestHasColumn(t *testing.T) {
	review := MustLookup(KindReview)
	if !review.HasColumn("business_id") {
		t.Fatal("reviews should have business_id")
	}
	if review.HasColumn("business_id; DROP TABLE reviews") {
		t.Fatal("unexpected column accepted")
	}
}

func TestReviewsWithoutNames(t *testing.T) {
	got := ReviewsWithoutNames([]Review{{ReviewID: "r1"}, {ReviewID: "r2"}})
	if len(got) != 2 || got[0].ReviewID != "r1" || got[1].ReviewID != "r2" {
		t.Fatalf("unexpected conversion: %+v", got)
	}
	if got[0].UserName != nil || got[0].BusinessName != nil {
		t.Fatal("names should be nil")
	}
}
