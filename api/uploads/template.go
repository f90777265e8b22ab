package uploads

import (
	"encoding/csv"
	"net/http"

	"CoopBankOffice/api"
)

// templateColumns is the feed layout agreed with the core banking export.
// Header names are matched case-sensitively on ingest.
var templateColumns = []string{
	"panPrimary", "branchId", "rmId", "branchManagerId", "familyGroupId",
	"accountNumber", "panJoint1", "panJoint2", "nameFirstHolder",
	"jointName1", "jointName2", "accountType", "accountCategory",
	"address1", "address2", "address3", "address4",
	"city", "state", "country", "pinCode",
	"contactMobile", "contactEmail", "contactDob",
	"bankName", "bankAcNo", "bankIfsc", "bankMicr",
	"accountBalance", "aaBalPercentage", "freeBalance", "freeBalPercentage",
	"pledgeBalance", "pledgeBalPercentage", "pledgeLock", "lockSBal",
	"lockDate", "freezeZeBal",
}

var templateSamples = [][]string{
	{
		"PANEX1234A", "b1", "rm1", "bm1", "fg1",
		"ACC00011111", "", "", "Example Holder One",
		"", "", "Savings", "PR",
		"12 Sample Street", "", "", "",
		"Mumbai", "Maharashtra", "India", "400001",
		"9800000001", "holder.one@example.com", "1980-01-15",
		"Sample Co-op Bank", "99880011", "SMPL0000123", "400099001",
		"250000", "100", "225000", "90",
		"25000", "10", "", "0",
		"", "0",
	},
	{
		"PANEX5678B", "b2", "rm3", "bm2", "",
		"ACC00022222", "PANJT1111C", "", "Example Holder Two",
		"Joint Holder", "", "Current", "RT",
		"34 Sample Avenue", "Floor 2", "", "",
		"Pune", "Maharashtra", "India", "411001",
		"9800000002", "holder.two@example.com", "1975-06-30",
		"Sample Co-op Bank", "99880022", "SMPL0000123", "400099001",
		"1200000", "100", "1100000", "91.7",
		"100000", "8.3", "Pledged", "50000",
		"2024-05-01", "0",
	},
}

// GetTemplate serves the CSV upload template with the header row and two
// sample rows.
func GetTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="client_upload_template.csv"`)
		cw := csv.NewWriter(w)
		if err := cw.Write(templateColumns); err != nil {
			api.LogError("template write: %v", err)
			return
		}
		for _, row := range templateSamples {
			if err := cw.Write(row); err != nil {
				api.LogError("template write: %v", err)
				return
			}
		}
		cw.Flush()
	}
}
