package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"net/http"
	"strings"
	"time"
)

type inquiryReq struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Subject   string `json:"subject" validate:"required,max=200"`
	Message   string `json:"message" validate:"required"`
}

type inquiryStatusReq struct {
	ID     int64  `json:"id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=new read replied"`
}

func (a *API) submitInquiry(w http.ResponseWriter, r *http.Request) {
	var req inquiryReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := a.Inquiries.InsertInquiry(ctx, rental.Inquiry{
		Name:    strings.TrimSpace(req.FirstName + " " + req.LastName),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Status:  rental.InquiryNew,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, map[string]any{"inquiry_id": id, "message": "Thank you for your message! We will get back to you soon."})
}

func (a *API) listInquiries(w http.ResponseWriter, r *http.Request) {
	var status *rental.InquiryStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := rental.InquiryStatus(s)
		if !st.Valid() {
			a.writeError(w, r, fmt.Errorf("%w: unknown inquiry status %q", rental.ErrValidation, s))
			return
		}
		status = &st
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := a.Inquiries.ListInquiries(ctx, status)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	counts, err := a.Inquiries.CountInquiries(ctx)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"inquiries": list, "counts": counts})
}

func (a *API) setInquiryStatus(w http.ResponseWriter, r *http.Request) {
	var req inquiryStatusReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := a.Inquiries.SetInquiryStatus(ctx, req.ID, rental.InquiryStatus(req.Status)); err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, nil)
}

func (a *API) deleteInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := a.Inquiries.DeleteInquiry(ctx, id); err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, nil)
}
