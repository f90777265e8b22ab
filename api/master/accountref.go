package master

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"CoopBankOffice/api"
	"CoopBankOffice/internal/store"
)

func GetAccountTypes(st store.AccountRefStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ats, err := st.ListAccountTypes(r.Context())
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", ats)
	}
}

func CreateAccountType(st store.AccountRefStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var at store.AccountType
		if err := json.NewDecoder(r.Body).Decode(&at); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		created, err := st.CreateAccountType(r.Context(), at)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondCreated(w, created)
	}
}

func UpdateAccountType(st store.AccountRefStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		at, err := st.UpdateAccountType(r.Context(), mux.Vars(r)["id"], req.Name)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", at)
	}
}

func DeleteAccountType(st store.AccountRefStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.DeleteAccountType(r.Context(), mux.Vars(r)["id"]); err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func GetAccountCategories(st store.AccountRefStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acs, err := st.ListAccountCategories(r.Context())
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", acs)
	}
}

func CreateAccountCategory(st store.AccountRefStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ac store.AccountCategory
		if err := json.NewDecoder(r.Body).Decode(&ac); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		created, err := st.CreateAccountCategory(r.Context(), ac)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondCreated(w, created)
	}
}

// UpdateAccountCategory takes a partial body; omitted fields are untouched.
func UpdateAccountCategory(st store.AccountRefStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name *string `json:"name"`
			Code *string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		ac, err := st.UpdateAccountCategory(r.Context(), mux.Vars(r)["id"], req.Name, req.Code)
		if err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", ac)
	}
}

func DeleteAccountCategory(st store.AccountRefStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.DeleteAccountCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
			api.RespondStoreError(w, err)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
