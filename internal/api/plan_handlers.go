package api

import (
	"net/http"

	"github.com/hackgods/care-wallet-scheduling/internal/subscription"
)

func listPlansHandler(svc *subscription.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := svc.ListActivePlans(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, plans)
	}
}

func purchasePlanHandler(svc *subscription.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		planID, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}
		tx, err := svc.Purchase(r.Context(), principal(r).UserID, planID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func createPlanHandler(svc *subscription.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePlanRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := svc.CreatePlan(r.Context(), subscription.CreatePlanRequest{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Features:    req.Features,
			Duration:    subscription.Duration(req.Duration),
			IsActive:    req.IsActive,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func updatePlanHandler(svc *subscription.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}
		var req UpdatePlanRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		patch := subscription.PlanPatch{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Features:    req.Features,
			IsActive:    req.IsActive,
		}
		if req.Duration != nil {
			d := subscription.Duration(*req.Duration)
			patch.Duration = &d
		}

		p, err := svc.UpdatePlan(r.Context(), id, patch)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
