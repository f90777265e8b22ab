package reports

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"CoopBankOffice/api"
	"CoopBankOffice/internal/store"
	"CoopBankOffice/internal/weekly"
)

// ExportReport writes the full branch report as a workbook, one sheet per
// tab.
func ExportReport(st store.Store, est weekly.ChangeEstimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID := mux.Vars(r)["id"]
		bundle, err := buildBundle(r, st, est, branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}

		xl := excelize.NewFile()
		defer xl.Close()

		writeSheet(xl, "Summary", [][]interface{}{
			{"Total Clients", bundle.Stats.TotalClients},
			{"Total Balance", bundle.Stats.TotalBalance},
			{"Weekly CR", bundle.Stats.WeeklyCr},
			{"Weekly DR", bundle.Stats.WeeklyDr},
			{"Active Version", bundle.Stats.ActiveVersion},
		})

		rows := [][]interface{}{{"Week", "Total CR", "Total DR", "Clients Updated", "KYC Changes"}}
		for _, s := range bundle.WeeklySummary {
			rows = append(rows, []interface{}{s.Week, s.TotalCR, s.TotalDR, s.ClientsUpdated, s.KYCChanges})
		}
		writeSheet(xl, "Weekly Summary", rows)

		rows = [][]interface{}{{"Category", "Clients", "Balance", "CR", "DR"}}
		for _, c := range bundle.Categories {
			rows = append(rows, []interface{}{c.CategoryName, c.TotalClients, c.Balance, c.Cr, c.Dr})
		}
		writeSheet(xl, "Categories", rows)

		rows = [][]interface{}{{"RM", "Clients", "Portfolio", "Weekly Change"}}
		for _, p := range bundle.RMPerformance {
			rows = append(rows, []interface{}{p.RMName, p.Clients, p.TotalPortfolio, p.WeeklyChange})
		}
		writeSheet(xl, "RM Performance", rows)

		rows = [][]interface{}{{"Group", "Clients", "Combined Balance"}}
		for _, g := range bundle.FamilyGroups {
			rows = append(rows, []interface{}{g.GroupName, g.Clients, g.CombinedBalance})
		}
		writeSheet(xl, "Family Groups", rows)

		// The default sheet excelize creates is replaced by Summary.
		xl.DeleteSheet("Sheet1")

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="branch_report_%s.xlsx"`, branchID))
		if err := xl.Write(w); err != nil {
			api.LogError("report export write: %v", err)
		}
	}
}

func writeSheet(xl *excelize.File, name string, rows [][]interface{}) {
	xl.NewSheet(name)
	for i, row := range rows {
		cell := "A" + strconv.Itoa(i+1)
		if err := xl.SetSheetRow(name, cell, &row); err != nil {
			api.LogError("sheet %s row %d: %v", name, i+1, err)
		}
	}
}
