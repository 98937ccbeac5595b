package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/care-wallet-scheduling/internal/approval"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

func getWalletHandler(svc *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wal, err := svc.GetWallet(r.Context(), principal(r).UserID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, wal)
	}
}

func getTransactionHandler(svc *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := svc.GetTransaction(r.Context(), principal(r).UserID, chi.URLParam(r, "txID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func creditWalletHandler(svc *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uuidParam(w, r, "userID")
		if !ok {
			return
		}
		var req CreditWalletRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		tx, err := svc.Credit(r.Context(), wallet.CreditRequest{
			UserID:      userID,
			Amount:      req.Amount,
			Description: req.Description,
			ReferenceID: req.ReferenceID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func reconcileWalletHandler(svc *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := uuidParam(w, r, "userID")
		if !ok {
			return
		}
		rec, err := svc.Reconcile(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func listPendingDebitsHandler(wf *approval.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		debits, err := wf.ListPending(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, PendingDebitsResponse{Debits: debits, Count: len(debits)})
	}
}

func processDebitHandler(wf *approval.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProcessDebitRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "user_id must be a valid UUID")
			return
		}

		tx, err := wf.Process(r.Context(), approval.ProcessRequest{
			UserID:        userID,
			TransactionID: req.TransactionID,
			Action:        req.Action,
			Description:   req.Description,
			ReferenceID:   req.ReferenceID,
			AdminID:       principal(r).UserID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}
