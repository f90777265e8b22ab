// Package uploads serves the weekly upload batch registry: listing, the
// effective week ledger, and ingesting new batch files.
package uploads

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"CoopBankOffice/api"
	"CoopBankOffice/internal/config"
	"CoopBankOffice/internal/ledger"
	"CoopBankOffice/internal/store"
)

// GetUploads lists every batch, newest upload first.
func GetUploads(st store.UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batches, err := st.ListUploads(r.Context())
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", batches)
	}
}

// GetRecentUploads lists the newest batches across all branches, capped by
// the limit query param.
func GetRecentUploads(st store.UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := config.RecentUploadLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				api.RespondWithError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}
		batches, err := st.ListUploads(r.Context())
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		if len(batches) > limit {
			batches = batches[:limit]
		}
		api.RespondWithPayload(w, true, "", batches)
	}
}

// GetBranchUploads lists every batch version for one branch.
func GetBranchUploads(st store.UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batches, err := st.UploadsByBranch(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", batches)
	}
}

// GetEffectiveWeeks returns the weeks a branch has an Active batch for,
// newest first. Pending and Corrected batches do not surface weeks.
func GetEffectiveWeeks(st store.UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batches, err := st.UploadsByBranch(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", ledger.EffectiveWeeks(batches, mux.Vars(r)["id"]))
	}
}

// GetWeekEndingDates returns the upcoming upload form's week-ending choices,
// the most recent Saturdays first.
func GetWeekEndingDates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithPayload(w, true, "", ledger.WeekEndingDates(time.Now(), config.WeekPickerDepth))
	}
}

// CreateUpload registers a batch from a JSON body. The store assigns id,
// version and upload time, and supersedes the prior Active batch for the same
// branch and week.
func CreateUpload(st store.UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var b store.UploadBatch
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		created, err := st.CreateUpload(r.Context(), b)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondCreated(w, created)
	}
}
