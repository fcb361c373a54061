package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/api/responses"
	"github.com/pulppixels/pulppixels-backend/api/validators"
	"github.com/pulppixels/pulppixels-backend/internal/payments"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

type createOrderRequest struct {
	WallpaperID string `json:"wallpaper_id" validate:"required,uuid4"`
	Email       string `json:"email" validate:"required,email"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
}

// CreateOrder opens a payment gateway order for a paid wallpaper.
func CreateOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wallpaperID, err := uuid.Parse(payload.WallpaperID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallpaper id"))
			return
		}

		order, err := svc.CreateOrder(r.Context(), payments.CreateOrderInput{
			WallpaperID:  wallpaperID,
			Email:        payload.Email,
			AmountRupees: payload.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type verifyPaymentRequest struct {
	WallpaperID       string `json:"wallpaper_id" validate:"required,uuid4"`
	Email             string `json:"email" validate:"required,email"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

type paymentVerifyGuard interface {
	CheckAndMark(ctx context.Context, paymentID string) (bool, error)
	Release(ctx context.Context, paymentID string) error
}

// VerifyPayment checks the gateway signature and records the purchase. The
// guard fences concurrent verifies on the same gateway payment id; a nil
// guard skips the fence.
func VerifyPayment(svc payments.Service, guard paymentVerifyGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wallpaperID, err := uuid.Parse(payload.WallpaperID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallpaper id"))
			return
		}

		if guard != nil {
			already, err := guard.CheckAndMark(r.Context(), payload.RazorpayPaymentID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking idempotency"))
				return
			}
			if already {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "payment verification already in progress"))
				return
			}
		}

		receipt, err := svc.VerifyPayment(r.Context(), payments.VerifyPaymentInput{
			WallpaperID:       wallpaperID,
			Email:             payload.Email,
			RazorpayOrderID:   payload.RazorpayOrderID,
			RazorpayPaymentID: payload.RazorpayPaymentID,
			Signature:         payload.RazorpaySignature,
		})
		if err != nil {
			if guard != nil {
				_ = guard.Release(r.Context(), payload.RazorpayPaymentID)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

type verifyUPIRequest struct {
	WallpaperID   string `json:"wallpaper_id" validate:"required,uuid4"`
	Email         string `json:"email" validate:"required,email"`
	TransactionID string `json:"transaction_id" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
}

// VerifyUPI records a manually confirmed UPI payment. Only available when
// the simulation flag is on.
func VerifyUPI(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload verifyUPIRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wallpaperID, err := uuid.Parse(payload.WallpaperID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallpaper id"))
			return
		}

		receipt, err := svc.VerifyUPI(r.Context(), payments.VerifyUPIInput{
			WallpaperID:   wallpaperID,
			Email:         payload.Email,
			TransactionID: payload.TransactionID,
			AmountRupees:  payload.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}
