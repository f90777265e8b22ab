package office

import (
	"github.com/gorilla/mux"

	"CoopBankOffice/api/clients"
	"CoopBankOffice/api/master"
	"CoopBankOffice/api/reports"
	"CoopBankOffice/api/uploads"
	"CoopBankOffice/internal/store"
	"CoopBankOffice/internal/weekly"
)

// NewRouter builds the /office route table over one store.
func NewRouter(st store.Store, snap weekly.MovementEstimator, change weekly.ChangeEstimator) *mux.Router {
	router := mux.NewRouter()
	r := router.PathPrefix("/office").Subrouter()

	// Masters
	r.HandleFunc("/branches", master.GetBranches(st)).Methods("GET")
	r.HandleFunc("/branches", master.CreateBranch(st)).Methods("POST")
	r.HandleFunc("/branches/management", master.GetBranchManagement(st)).Methods("GET")
	r.HandleFunc("/branches/{id}", master.GetBranch(st)).Methods("GET")
	r.HandleFunc("/branches/{id}", master.UpdateBranch(st)).Methods("PATCH")
	r.HandleFunc("/branches/{id}", master.DeleteBranch(st)).Methods("DELETE")

	r.HandleFunc("/rms", master.GetRMs(st)).Methods("GET")
	r.HandleFunc("/rms", master.CreateRM(st)).Methods("POST")
	r.HandleFunc("/branch-managers", master.GetBranchManagers(st)).Methods("GET")
	r.HandleFunc("/branch-managers", master.CreateBranchManager(st)).Methods("POST")
	r.HandleFunc("/family-groups", master.GetFamilyGroups(st)).Methods("GET")
	r.HandleFunc("/family-groups", master.CreateFamilyGroup(st)).Methods("POST")

	r.HandleFunc("/account-types", master.GetAccountTypes(st)).Methods("GET")
	r.HandleFunc("/account-types", master.CreateAccountType(st)).Methods("POST")
	r.HandleFunc("/account-types/{id}", master.UpdateAccountType(st)).Methods("PATCH")
	r.HandleFunc("/account-types/{id}", master.DeleteAccountType(st)).Methods("DELETE")
	r.HandleFunc("/account-categories", master.GetAccountCategories(st)).Methods("GET")
	r.HandleFunc("/account-categories", master.CreateAccountCategory(st)).Methods("POST")
	r.HandleFunc("/account-categories/{id}", master.UpdateAccountCategory(st)).Methods("PATCH")
	r.HandleFunc("/account-categories/{id}", master.DeleteAccountCategory(st)).Methods("DELETE")

	// Clients
	r.HandleFunc("/clients", clients.GetClients(st)).Methods("GET")
	r.HandleFunc("/clients/search", clients.SearchByPAN(st)).Methods("GET")
	r.HandleFunc("/clients/by-rm/{rmId}", clients.GetClientsByRM(st, change)).Methods("GET")
	r.HandleFunc("/clients/by-family-group/{groupId}", clients.GetClientsByFamilyGroup(st, change)).Methods("GET")
	r.HandleFunc("/clients/assignments/bulk", clients.BulkUpdateAssignments(st)).Methods("POST")
	r.HandleFunc("/clients/{id}/assignments", clients.UpdateAssignments(st)).Methods("PATCH")
	r.HandleFunc("/clients/{id}/history", reports.GetClientHistory(st, snap)).Methods("GET")

	// Uploads
	r.HandleFunc("/uploads", uploads.GetUploads(st)).Methods("GET")
	r.HandleFunc("/uploads", uploads.CreateUpload(st)).Methods("POST")
	r.HandleFunc("/uploads/recent", uploads.GetRecentUploads(st)).Methods("GET")
	r.HandleFunc("/uploads/ingest", uploads.IngestUpload(st)).Methods("POST")
	r.HandleFunc("/uploads/template", uploads.GetTemplate()).Methods("GET")
	r.HandleFunc("/week-endings", uploads.GetWeekEndingDates()).Methods("GET")
	r.HandleFunc("/branches/{id}/uploads", uploads.GetBranchUploads(st)).Methods("GET")
	r.HandleFunc("/branches/{id}/effective-weeks", uploads.GetEffectiveWeeks(st)).Methods("GET")

	// Reports
	r.HandleFunc("/branches/{id}/stats", reports.GetBranchStats(st)).Methods("GET")
	r.HandleFunc("/branches/{id}/weekly-summary", reports.GetWeeklySummary(st)).Methods("GET")
	r.HandleFunc("/branches/{id}/category-breakdown", reports.GetCategoryBreakdown(st)).Methods("GET")
	r.HandleFunc("/branches/{id}/rm-performance", reports.GetRMPerformance(st, change)).Methods("GET")
	r.HandleFunc("/branches/{id}/family-group-summary", reports.GetFamilyGroupSummary(st)).Methods("GET")
	r.HandleFunc("/branches/{id}/clients-for-week", reports.GetClientsForWeek(st, snap)).Methods("GET")
	r.HandleFunc("/branches/{id}/report-bundle", reports.GetReportBundle(st, change)).Methods("GET")
	r.HandleFunc("/branches/{id}/export", reports.ExportReport(st, change)).Methods("GET")

	return router
}
