package office

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CoopBankOffice/internal/store"
	"CoopBankOffice/internal/weekly"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := NewRouter(store.NewMemoryWithFixtures(), weekly.Seeded{}, weekly.FixedChange{Cr: 0.02, Dr: 0.01, Net: 0.01})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Rows    json.RawMessage `json:"rows"`
}

func get(t *testing.T, srv *httptest.Server, path string, wantStatus int) envelope {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", path, resp.StatusCode, wantStatus)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("GET %s: decode: %v", path, err)
	}
	return env
}

func do(t *testing.T, srv *httptest.Server, method, path string, body interface{}, wantStatus int) envelope {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s status = %d, want %d", method, path, resp.StatusCode, wantStatus)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return env
}

func TestListBranches(t *testing.T) {
	srv := testServer(t)
	env := get(t, srv, "/office/branches", http.StatusOK)
	var branches []store.Branch
	if err := json.Unmarshal(env.Rows, &branches); err != nil {
		t.Fatal(err)
	}
	if len(branches) != 5 {
		t.Fatalf("got %d branches", len(branches))
	}
}

func TestBranchManagementUnassignedFallback(t *testing.T) {
	srv := testServer(t)
	env := get(t, srv, "/office/branches/management", http.StatusOK)
	var rows []struct {
		ID          string `json:"id"`
		ManagerName string `json:"manager_name"`
		ClientCount int    `json:"client_count"`
	}
	if err := json.Unmarshal(env.Rows, &rows); err != nil {
		t.Fatal(err)
	}
	byID := map[string]string{}
	for _, r := range rows {
		byID[r.ID] = r.ManagerName
	}
	if byID["b1"] != "Vikram Ahuja" {
		t.Fatalf("b1 manager = %q", byID["b1"])
	}
	if byID["b5"] != "Unassigned" {
		t.Fatalf("b5 manager = %q, want Unassigned", byID["b5"])
	}
}

func TestBranchNotFound(t *testing.T) {
	srv := testServer(t)
	env := get(t, srv, "/office/branches/nope", http.StatusNotFound)
	if env.Success || env.Error == "" {
		t.Fatalf("env = %+v", env)
	}
}

func TestEffectiveWeeksDedupAndStatus(t *testing.T) {
	srv := testServer(t)

	// b1 has v1 Corrected + v2 Active for 2024-07-06: the week appears once.
	env := get(t, srv, "/office/branches/b1/effective-weeks", http.StatusOK)
	var weeks []string
	if err := json.Unmarshal(env.Rows, &weeks); err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 2 || weeks[0] != "2024-07-06" || weeks[1] != "2024-06-29" {
		t.Fatalf("b1 weeks = %v", weeks)
	}

	// b4 only has a Pending batch: no effective weeks, serialized as an
	// empty array rather than null.
	env = get(t, srv, "/office/branches/b4/effective-weeks", http.StatusOK)
	if string(env.Rows) != "[]" {
		t.Fatalf("b4 weeks rows = %s, want []", env.Rows)
	}
}

func TestClientsUniqueByPAN(t *testing.T) {
	srv := testServer(t)
	env := get(t, srv, "/office/clients", http.StatusOK)
	var rows []store.ClientProfile
	if err := json.Unmarshal(env.Rows, &rows); err != nil {
		t.Fatal(err)
	}
	seen := map[string]int{}
	for _, c := range rows {
		seen[c.PANPrimary]++
	}
	if seen["ABCDE1234F"] != 1 {
		t.Fatalf("ABCDE1234F appears %d times in the directory", seen["ABCDE1234F"])
	}
}

func TestSearchByPANReturnsAllBranchRows(t *testing.T) {
	srv := testServer(t)
	env := get(t, srv, "/office/clients/search?pan=ABCDE1234F", http.StatusOK)
	var rows []store.ClientProfile
	if err := json.Unmarshal(env.Rows, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}

func TestUpdateAssignmentsNullClearsFamilyGroup(t *testing.T) {
	srv := testServer(t)

	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/office/clients/ABCDE1234F_b1/assignments",
		strings.NewReader(`{"rm_id":"rm2","family_group_id":null}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var env envelope
	json.NewDecoder(resp.Body).Decode(&env)
	var c store.ClientProfile
	if err := json.Unmarshal(env.Rows, &c); err != nil {
		t.Fatal(err)
	}
	if c.RMID != "rm2" {
		t.Fatalf("rm = %s", c.RMID)
	}
	if c.FamilyGroupID != "" {
		t.Fatalf("family group = %q, want cleared by explicit null", c.FamilyGroupID)
	}
}

func TestBulkAssignmentsBadIDFailsWhole(t *testing.T) {
	srv := testServer(t)
	body := map[string]interface{}{
		"client_ids": []string{"ABCDE1234F_b1", "NOPAN9999X_b1"},
		"rm_id":      "rm2",
	}
	do(t, srv, http.MethodPost, "/office/clients/assignments/bulk", body, http.StatusNotFound)

	env := get(t, srv, "/office/clients/search?pan=ABCDE1234F", http.StatusOK)
	var rows []store.ClientProfile
	json.Unmarshal(env.Rows, &rows)
	for _, c := range rows {
		if c.BranchID == "b1" && c.RMID == "rm2" {
			t.Fatal("failed bulk update changed a row")
		}
	}
}

func TestClientsForWeekRequiresEffectiveBatch(t *testing.T) {
	srv := testServer(t)

	// No Active batch for this week, so the page is empty.
	env := get(t, srv, "/office/branches/b1/clients-for-week?week=2024-06-22&page=1&page_size=10", http.StatusOK)
	var page struct {
		Rows       []store.ClientWithMovement `json:"rows"`
		TotalRows  int                        `json:"total_rows"`
		TotalPages int                        `json:"total_pages"`
	}
	if err := json.Unmarshal(env.Rows, &page); err != nil {
		t.Fatal(err)
	}
	if page.TotalRows != 0 || page.TotalPages != 0 {
		t.Fatalf("page = %+v, want empty", page)
	}
}

func TestClientsForWeekDeterministic(t *testing.T) {
	srv := testServer(t)
	path := "/office/branches/b1/clients-for-week?week=2024-07-06&page=1&page_size=10&sort=pan"
	a := get(t, srv, path, http.StatusOK)
	b := get(t, srv, path, http.StatusOK)
	if !bytes.Equal(a.Rows, b.Rows) {
		t.Fatal("same week and page returned different payloads")
	}
}

func TestClientHistoryRecurrence(t *testing.T) {
	srv := testServer(t)
	env := get(t, srv, "/office/clients/ABCDE1234F_b1/history", http.StatusOK)
	var h []weekly.HistoryEntry
	if err := json.Unmarshal(env.Rows, &h); err != nil {
		t.Fatal(err)
	}
	if len(h) != 2 {
		t.Fatalf("history length = %d, want one entry per effective week", len(h))
	}
	if h[0].ClosingBalance != 850000 {
		t.Fatalf("anchor = %v, want stored balance", h[0].ClosingBalance)
	}
	for i := 0; i < len(h)-1; i++ {
		if h[i].ClosingBalance-h[i].WeeklyCr+h[i].WeeklyDr != h[i+1].ClosingBalance {
			t.Fatalf("recurrence broken at %d: %+v -> %+v", i, h[i], h[i+1])
		}
	}
}

func TestClientHistoryPerBranchAccount(t *testing.T) {
	srv := testServer(t)
	// The same PAN's b3 account walks from the b3 balance over b3's weeks.
	env := get(t, srv, "/office/clients/ABCDE1234F_b3/history", http.StatusOK)
	var h []weekly.HistoryEntry
	if err := json.Unmarshal(env.Rows, &h); err != nil {
		t.Fatal(err)
	}
	if len(h) != 2 {
		t.Fatalf("b3 history length = %d", len(h))
	}
	if h[0].ClosingBalance != 1500000 {
		t.Fatalf("b3 anchor = %v, want the b3 balance", h[0].ClosingBalance)
	}
}

func TestBranchStats(t *testing.T) {
	srv := testServer(t)
	env := get(t, srv, "/office/branches/b1/stats", http.StatusOK)
	var stats struct {
		TotalClients  int     `json:"total_clients"`
		TotalBalance  float64 `json:"total_balance"`
		WeeklyCr      float64 `json:"weekly_cr"`
		WeeklyDr      float64 `json:"weekly_dr"`
		ActiveVersion string  `json:"active_version"`
		UploadWarning string  `json:"upload_warning"`
	}
	if err := json.Unmarshal(env.Rows, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalClients == 0 || stats.TotalBalance <= 0 {
		t.Fatalf("stats = %+v", stats)
	}
	// Net movement comes from u1, the latest Active b1 batch.
	if stats.WeeklyCr != 125000 || stats.WeeklyDr != 110000 {
		t.Fatalf("movement = %v/%v", stats.WeeklyCr, stats.WeeklyDr)
	}
	if stats.ActiveVersion != "v2 (2024-07-06)" {
		t.Fatalf("active version = %q", stats.ActiveVersion)
	}
	// Fixture uploads are from July 2024, far behind the current week.
	if stats.UploadWarning == "" {
		t.Fatal("expected a missing-upload warning")
	}
}

func TestReportBundleMatchesIndividualTabs(t *testing.T) {
	srv := testServer(t)
	env := get(t, srv, "/office/branches/b1/report-bundle", http.StatusOK)
	var bundle struct {
		WeeklySummary  []store.WeeklySummaryRow `json:"weekly_summary"`
		EffectiveWeeks []string                 `json:"effective_weeks"`
	}
	if err := json.Unmarshal(env.Rows, &bundle); err != nil {
		t.Fatal(err)
	}
	if len(bundle.WeeklySummary) != 4 {
		t.Fatalf("bundle summary rows = %d", len(bundle.WeeklySummary))
	}
	if len(bundle.EffectiveWeeks) != 2 {
		t.Fatalf("bundle effective weeks = %v", bundle.EffectiveWeeks)
	}
}

func TestCreateAndListAccountTypes(t *testing.T) {
	srv := testServer(t)
	do(t, srv, http.MethodPost, "/office/account-types", store.AccountType{Name: "Semi-Urban"}, http.StatusCreated)
	env := get(t, srv, "/office/account-types", http.StatusOK)
	var ats []store.AccountType
	json.Unmarshal(env.Rows, &ats)
	if len(ats) != 4 {
		t.Fatalf("got %d account types", len(ats))
	}
}

func TestExportReportContentType(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/office/branches/b1/export")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %s", ct)
	}
}
