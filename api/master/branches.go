package master

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"CoopBankOffice/api"
	"CoopBankOffice/internal/store"
)

// GetBranches lists every branch regardless of status.
func GetBranches(st store.BranchStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branches, err := st.ListBranches(r.Context())
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", branches)
	}
}

// BranchManagementRow is the branch list joined with manager name and client
// count for the management screen.
type BranchManagementRow struct {
	store.Branch
	ManagerName string `json:"manager_name"`
	ClientCount int    `json:"client_count"`
}

// GetBranchManagement lists branches with their manager display name and the
// number of client rows held at the branch. A branch with no manager shows
// "Unassigned".
func GetBranchManagement(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		branches, err := st.ListBranches(ctx)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		managers, err := st.ListBranchManagers(ctx)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		clients, err := st.ListClients(ctx)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}

		names := make(map[string]string, len(managers))
		for _, m := range managers {
			names[m.ID] = m.Name
		}
		counts := make(map[string]int)
		for _, c := range clients {
			counts[c.BranchID]++
		}

		rows := make([]BranchManagementRow, 0, len(branches))
		for _, b := range branches {
			row := BranchManagementRow{Branch: b, ManagerName: "Unassigned", ClientCount: counts[b.ID]}
			if name, ok := names[b.ManagerID]; ok {
				row.ManagerName = name
			}
			rows = append(rows, row)
		}
		api.RespondWithPayload(w, true, "", rows)
	}
}

func GetBranch(st store.BranchStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := st.GetBranch(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", b)
	}
}

func CreateBranch(st store.BranchStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var b store.Branch
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		created, err := st.CreateBranch(r.Context(), b)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondCreated(w, created)
	}
}

func UpdateBranch(st store.BranchStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd store.BranchUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		b, err := st.UpdateBranch(r.Context(), mux.Vars(r)["id"], upd)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", b)
	}
}

func DeleteBranch(st store.BranchStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.DeleteBranch(r.Context(), mux.Vars(r)["id"]); err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
