package controllers

import (
	"net/http"

	"github.com/pulppixels/pulppixels-backend/api/responses"
	"github.com/pulppixels/pulppixels-backend/api/validators"
	authsvc "github.com/pulppixels/pulppixels-backend/internal/auth"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

// AdminAuthLogin authenticates an admin-console account.
func AdminAuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resp)
	}
}
