package httpx

import (
	"context"
	"net/http"
	"time"
)

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tok, admin, err := a.Guard.Login(ctx, req.Username, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"token": tok, "username": admin.Username})
}
