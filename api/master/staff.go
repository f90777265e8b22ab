package master

import (
	"encoding/json"
	"net/http"

	"CoopBankOffice/api"
	"CoopBankOffice/internal/store"
)

func GetRMs(st store.StaffStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rms, err := st.ListRMs(r.Context())
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", rms)
	}
}

func CreateRM(st store.StaffStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rm store.RM
		if err := json.NewDecoder(r.Body).Decode(&rm); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		created, err := st.CreateRM(r.Context(), rm)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondCreated(w, created)
	}
}

func GetBranchManagers(st store.StaffStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bms, err := st.ListBranchManagers(r.Context())
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", bms)
	}
}

func CreateBranchManager(st store.StaffStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var bm store.BranchManager
		if err := json.NewDecoder(r.Body).Decode(&bm); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		created, err := st.CreateBranchManager(r.Context(), bm)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondCreated(w, created)
	}
}

func GetFamilyGroups(st store.FamilyGroupStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fgs, err := st.ListFamilyGroups(r.Context())
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", fgs)
	}
}

func CreateFamilyGroup(st store.FamilyGroupStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fg store.FamilyGroup
		if err := json.NewDecoder(r.Body).Decode(&fg); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		created, err := st.CreateFamilyGroup(r.Context(), fg)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondCreated(w, created)
	}
}
