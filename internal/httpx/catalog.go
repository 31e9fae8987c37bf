package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"net/http"
	"time"
)

type categoryReq struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	cs, err := a.Categories.ListCategories(ctx)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"categories": cs})
}

func (a *API) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	id, err := a.Categories.InsertCategory(ctx, rental.Category{Name: req.Name, Description: req.Description})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, map[string]any{"category_id": id})
}

func (a *API) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.ID <= 0 {
		a.writeError(w, r, fmt.Errorf("%w: id required", rental.ErrValidation))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := a.Categories.UpdateCategory(ctx, rental.Category{ID: req.ID, Name: req.Name, Description: req.Description}); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.invalidate(context.WithoutCancel(ctx))
	ok(w, http.StatusOK, nil)
}

// deleteCategory: item yang memakai kategori ini jadi tanpa kategori.
func (a *API) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := a.Categories.DeleteCategory(ctx, id); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.invalidate(context.WithoutCancel(ctx))
	ok(w, http.StatusOK, nil)
}
