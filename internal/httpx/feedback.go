package httpx

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/redisx"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"net/http"
	"time"
)

type feedbackReq struct {
	Name    string `json:"feedbackName" validate:"required,max=100"`
	Email   string `json:"feedbackEmail" validate:"required,email"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Message string `json:"message" validate:"required"`
	ItemID  *int64 `json:"itemId" validate:"omitempty,gt=0"`
}

func (a *API) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := a.Feedback.Submit(ctx, rental.FeedbackInput{
		Customer: rental.CustomerInfo{Name: req.Name, Email: req.Email},
		ItemID:   req.ItemID,
		Rating:   req.Rating,
		Message:  req.Message,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Cache.Del(context.WithoutCancel(ctx), redisx.KeyDashboardStats)
	ok(w, http.StatusCreated, map[string]any{"feedback_id": id, "message": "Thank you for your feedback!"})
}

func (a *API) listFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := a.Feedback.Store.ListFeedback(ctx, 0)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	sum, err := a.Feedback.Store.FeedbackSummary(ctx)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"feedback": list, "summary": sum})
}

func (a *API) deleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := a.Feedback.Store.DeleteFeedback(ctx, id); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.Cache.Del(context.WithoutCancel(ctx), redisx.KeyDashboardStats)
	ok(w, http.StatusOK, nil)
}
