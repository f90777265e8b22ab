package uploads

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"CoopBankOffice/api"
	"CoopBankOffice/internal/store"
)

const maxUploadBytes = 32 << 20

// IngestStore is what file ingest needs: current client balances to diff
// against, and batch creation.
type IngestStore interface {
	store.ClientStore
	store.UploadStore
}

// IngestUpload accepts a multipart weekly feed file (csv, xlsx or xls),
// totals the balance movement against the stored client rows and registers
// the batch. The file's rows must all belong to the branch named in the form.
func IngestUpload(st IngestStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		branchID := r.FormValue("branch_id")
		weekEnding := r.FormValue("week_ending")
		if branchID == "" || weekEnding == "" {
			api.RespondWithError(w, http.StatusBadRequest, "branch_id and week_ending are required")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "failed to read file")
			return
		}

		rows, err := parseFeed(header.Filename, raw)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		totalCR, totalDR, err := totalMovement(r, st, rows, branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}

		created, err := st.CreateUpload(r.Context(), store.UploadBatch{
			BranchID:   branchID,
			WeekEnding: weekEnding,
			Status:     r.FormValue("status"),
			TotalCR:    totalCR.InexactFloat64(),
			TotalDR:    totalDR.InexactFloat64(),
		})
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondCreated(w, created)
	}
}

// parseFeed turns the uploaded file into header+data rows. Format is chosen
// by extension, with CSV as the fallback.
func parseFeed(filename string, raw []byte) ([][]string, error) {
	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		xl, err := excelize.OpenReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse xlsx: %w", err)
		}
		defer xl.Close()
		sheets := xl.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("xlsx has no sheets")
		}
		rows, err = xl.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
		}
	case ".xls":
		book, err := xls.OpenReader(bytes.NewReader(raw), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("failed to parse xls: %w", err)
		}
		rows = book.ReadAllCells(100000)
	default:
		cr := csv.NewReader(bytes.NewReader(raw))
		cr.FieldsPerRecord = -1
		var err error
		rows, err = cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
	}
	if len(rows) < 2 {
		return nil, errors.New("feed must have a header and at least one data row")
	}
	return rows, nil
}

// totalMovement diffs each feed row's balance against the stored client row.
// A positive delta accrues to the batch CR total, a negative one to DR; a PAN
// not yet on file counts its full balance as CR.
func totalMovement(r *http.Request, st store.ClientStore, rows [][]string, branchID string) (decimal.Decimal, decimal.Decimal, error) {
	head := rows[0]
	panCol, balCol := -1, -1
	rowBranchCol := -1
	for i, name := range head {
		switch strings.TrimSpace(name) {
		case "panPrimary":
			panCol = i
		case "branchId":
			rowBranchCol = i
		case "accountBalance":
			balCol = i
		}
	}
	if panCol < 0 || balCol < 0 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: feed header missing panPrimary or accountBalance", store.ErrValidation)
	}

	totalCR, totalDR := decimal.Zero, decimal.Zero
	for n, row := range rows[1:] {
		if len(row) <= panCol || len(row) <= balCol {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: row %d is short", store.ErrValidation, n+2)
		}
		if rowBranchCol >= 0 && rowBranchCol < len(row) && strings.TrimSpace(row[rowBranchCol]) != branchID {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: row %d belongs to branch %q", store.ErrValidation, n+2, row[rowBranchCol])
		}
		pan := strings.TrimSpace(row[panCol])
		balance, err := decimal.NewFromString(strings.TrimSpace(row[balCol]))
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: row %d has bad accountBalance %q", store.ErrValidation, n+2, row[balCol])
		}

		prior := decimal.Zero
		existing, err := st.GetClient(r.Context(), store.ClientKey{PAN: pan, BranchID: branchID})
		if err == nil {
			prior = decimal.NewFromFloat(existing.AccountBalance)
		} else if !errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, decimal.Zero, err
		}

		delta := balance.Sub(prior)
		if delta.IsPositive() {
			totalCR = totalCR.Add(delta)
		} else {
			totalDR = totalDR.Add(delta.Neg())
		}
	}
	return totalCR, totalDR, nil
}
