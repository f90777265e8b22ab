// Package clients serves the client directory and reassignment endpoints.
package clients

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"CoopBankOffice/api"
	"CoopBankOffice/internal/store"
	"CoopBankOffice/internal/weekly"
)

// GetClients lists the directory with one row per PAN. A PAN holding accounts
// at several branches appears once, under the first branch discovered.
func GetClients(st store.ClientStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := st.ListClients(r.Context())
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		seen := make(map[string]bool, len(all))
		unique := make([]store.ClientProfile, 0, len(all))
		for _, c := range all {
			if seen[c.PANPrimary] {
				continue
			}
			seen[c.PANPrimary] = true
			unique = append(unique, c)
		}
		api.RespondWithPayload(w, true, "", unique)
	}
}

// SearchByPAN returns every branch row held under a PAN, one per branch.
func SearchByPAN(st store.ClientStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pan := r.URL.Query().Get("pan")
		if pan == "" {
			api.RespondWithError(w, http.StatusBadRequest, "pan is required")
			return
		}
		rows, err := st.ClientsByPAN(r.Context(), pan)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", rows)
	}
}

// GetClientsByRM lists an RM's book within a branch, annotated with weekly
// movement.
func GetClientsByRM(st store.ClientStore, est weekly.ChangeEstimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID := r.URL.Query().Get("branch_id")
		if branchID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "branch_id is required")
			return
		}
		rows, err := st.ClientsByRM(r.Context(), mux.Vars(r)["rmId"], branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", weekly.Annotate(rows, est))
	}
}

// GetClientsByFamilyGroup lists a family group's members within a branch,
// annotated with weekly movement.
func GetClientsByFamilyGroup(st store.ClientStore, est weekly.ChangeEstimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID := r.URL.Query().Get("branch_id")
		if branchID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "branch_id is required")
			return
		}
		rows, err := st.ClientsByFamilyGroup(r.Context(), mux.Vars(r)["groupId"], branchID)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", weekly.Annotate(rows, est))
	}
}

// assignmentBody distinguishes an absent family_group_id (leave untouched)
// from an explicit null (remove the client from its group).
type assignmentBody struct {
	RMID            *string         `json:"rm_id"`
	BranchManagerID *string         `json:"branch_manager_id"`
	FamilyGroupID   json.RawMessage `json:"family_group_id"`
}

func (b assignmentBody) toUpdate() (store.AssignmentUpdate, error) {
	upd := store.AssignmentUpdate{RMID: b.RMID, BranchManagerID: b.BranchManagerID}
	if len(b.FamilyGroupID) == 0 {
		return upd, nil
	}
	if bytes.Equal(bytes.TrimSpace(b.FamilyGroupID), []byte("null")) {
		upd.ClearFamilyGroup = true
		return upd, nil
	}
	var id string
	if err := json.Unmarshal(b.FamilyGroupID, &id); err != nil {
		return upd, err
	}
	upd.FamilyGroupID = &id
	return upd, nil
}

// UpdateAssignments applies a partial reassignment to one client row,
// addressed by its "PAN_branchId" wire id.
func UpdateAssignments(st store.ClientStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := store.ParseClientKey(mux.Vars(r)["id"])
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		var body assignmentBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		upd, err := body.toUpdate()
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid family_group_id")
			return
		}
		c, err := st.UpdateAssignments(r.Context(), key, upd)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", c)
	}
}

// BulkUpdateAssignments applies one partial update to many client rows as a
// single unit. Any bad id or reference fails the whole batch with no rows
// changed.
func BulkUpdateAssignments(st store.ClientStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientIDs []string `json:"client_ids"`
			assignmentBody
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if len(req.ClientIDs) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "client_ids is required")
			return
		}
		keys := make([]store.ClientKey, 0, len(req.ClientIDs))
		for _, id := range req.ClientIDs {
			key, err := store.ParseClientKey(id)
			if err != nil {
				api.RespondStoreError(w, err)
				return
			}
			keys = append(keys, key)
		}
		upd, err := req.toUpdate()
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid family_group_id")
			return
		}
		n, err := st.BulkUpdateAssignments(r.Context(), keys, upd)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "updated": n})
	}
}
