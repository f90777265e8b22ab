package query

import (
	"reflect"
	"testing"

	"CoopBankOffice/internal/store"
)

func row(name, pan, acct string, cr, dr, balance float64) store.ClientWithMovement {
	out := store.ClientWithMovement{WeeklyCr: cr, WeeklyDr: dr}
	out.NameFirstHolder = name
	out.PANPrimary = pan
	out.AccountNumber = acct
	out.AccountBalance = balance
	out.ID = pan + "_b1"
	return out
}

var testRows = []store.ClientWithMovement{
	row("Amit Patel", "ABCDE1234F", "1122334455", 1000, 0, 850000),
	row("Sunita Singh", "FGHIJ5678K", "2233445566", 0, 500, 2500000),
	row("Rahul Gupta", "PQRST9012L", "3344556677", 250, 0, 120000),
}

func ids(rows []store.ClientWithMovement) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestFilterSubstringCaseInsensitive(t *testing.T) {
	got := Filter{Name: "pATeL"}.Apply(testRows)
	if len(got) != 1 || got[0].NameFirstHolder != "Amit Patel" {
		t.Fatalf("got %v", ids(got))
	}
	got = Filter{PAN: "hij"}.Apply(testRows)
	if len(got) != 1 || got[0].PANPrimary != "FGHIJ5678K" {
		t.Fatalf("got %v", ids(got))
	}
}

func TestFilterConjunctive(t *testing.T) {
	got := Filter{Name: "a", MinBalance: "500000"}.Apply(testRows)
	want := []string{"ABCDE1234F_b1", "FGHIJ5678K_b1"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
}

func TestFilterNumericMinimum(t *testing.T) {
	got := Filter{MinCr: "300"}.Apply(testRows)
	if len(got) != 1 || got[0].PANPrimary != "ABCDE1234F" {
		t.Fatalf("got %v", ids(got))
	}
}

func TestFilterBadNumberMeansNoConstraint(t *testing.T) {
	for _, raw := range []string{"", "  ", "abc", "NaN"} {
		got := Filter{MinBalance: raw}.Apply(testRows)
		if len(got) != len(testRows) {
			t.Fatalf("MinBalance=%q filtered rows: got %d", raw, len(got))
		}
	}
}

func TestFilterResultSubset(t *testing.T) {
	got := Filter{Name: "zzz-no-such"}.Apply(testRows)
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", ids(got))
	}
}

func TestSortToggle(t *testing.T) {
	s := SortState{}
	s = s.Toggle(ByName)
	if s.Key != ByName || !s.Ascending {
		t.Fatalf("first toggle = %+v", s)
	}
	s = s.Toggle(ByName)
	if s.Ascending {
		t.Fatal("same-key toggle should flip direction")
	}
	s = s.Toggle(ByBalance)
	if s.Key != ByBalance || !s.Ascending {
		t.Fatalf("new-key toggle should reset ascending: %+v", s)
	}
}

func TestSortByNameAndBalance(t *testing.T) {
	rows := append([]store.ClientWithMovement(nil), testRows...)
	SortState{Key: ByName, Ascending: true}.Apply(rows)
	if rows[0].NameFirstHolder != "Amit Patel" || rows[2].NameFirstHolder != "Sunita Singh" {
		t.Fatalf("name asc order: %v", ids(rows))
	}
	SortState{Key: ByBalance, Ascending: false}.Apply(rows)
	if rows[0].AccountBalance != 2500000 || rows[2].AccountBalance != 120000 {
		t.Fatalf("balance desc order: %v", ids(rows))
	}
}

func TestSortUnknownKeyLeavesOrder(t *testing.T) {
	rows := append([]store.ClientWithMovement(nil), testRows...)
	SortState{Key: "bogus", Ascending: true}.Apply(rows)
	if !reflect.DeepEqual(ids(rows), ids(testRows)) {
		t.Fatalf("order changed: %v", ids(rows))
	}
}

func TestPaginateClampsAndConcatenates(t *testing.T) {
	rows := make([]store.ClientWithMovement, 25)
	for i := range rows {
		rows[i].ID = string(rune('a' + i))
	}

	p1 := Paginate(rows, 1, 10)
	p2 := Paginate(rows, 2, 10)
	p3 := Paginate(rows, 3, 10)
	if p1.TotalPages != 3 || p1.TotalRows != 25 {
		t.Fatalf("page 1 = %+v", p1)
	}
	if len(p1.Rows) != 10 || len(p2.Rows) != 10 || len(p3.Rows) != 5 {
		t.Fatalf("page sizes = %d/%d/%d", len(p1.Rows), len(p2.Rows), len(p3.Rows))
	}
	var all []string
	for _, p := range []Page{p1, p2, p3} {
		all = append(all, ids(p.Rows)...)
	}
	if !reflect.DeepEqual(all, ids(rows)) {
		t.Fatal("concatenated pages do not reproduce the full list")
	}

	// Out-of-range pages clamp into [1, totalPages].
	if got := Paginate(rows, 99, 10); got.Page != 3 {
		t.Fatalf("page clamp high = %d", got.Page)
	}
	if got := Paginate(rows, 0, 10); got.Page != 1 {
		t.Fatalf("page clamp low = %d", got.Page)
	}
}

func TestPaginateRejectsUnknownSize(t *testing.T) {
	p := Paginate(testRows, 1, 7)
	if p.PageSize != 10 {
		t.Fatalf("page size fallback = %d, want 10", p.PageSize)
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 5, 25)
	if len(p.Rows) != 0 || p.Page != 1 || p.TotalRows != 0 || p.TotalPages != 0 {
		t.Fatalf("empty paginate = %+v", p)
	}
}
