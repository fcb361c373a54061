package payments

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulppixels/pulppixels-backend/pkg/db"
	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
	"github.com/pulppixels/pulppixels-backend/pkg/enums"
	pkgerrors "github.com/pulppixels/pulppixels-backend/pkg/errors"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/razorpay"
	"github.com/pulppixels/pulppixels-backend/pkg/storage/supastore"
)

// Service handles checkout orders and payment verification.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*ReceiptDTO, error)
	VerifyUPI(ctx context.Context, input VerifyUPIInput) (*ReceiptDTO, error)
}

// CreateOrderInput opens a gateway order for a paid wallpaper.
type CreateOrderInput struct {
	WallpaperID  uuid.UUID
	Email        string
	AmountRupees int64
}

// VerifyPaymentInput carries the checkout callback fields.
type VerifyPaymentInput struct {
	WallpaperID       uuid.UUID
	Email             string
	RazorpayOrderID   string
	RazorpayPaymentID string
	Signature         string
}

// VerifyUPIInput carries the manual UPI confirmation fields.
type VerifyUPIInput struct {
	WallpaperID   uuid.UUID
	Email         string
	TransactionID string
	AmountRupees  int64
}

// OrderDTO is handed back to the storefront checkout widget.
type OrderDTO struct {
	OrderID      string    `json:"order_id"`
	AmountPaise  int64     `json:"amount"`
	Currency     string    `json:"currency"`
	KeyID        string    `json:"key_id"`
	WallpaperID  uuid.UUID `json:"wallpaper_id"`
	AmountRupees int64     `json:"amount_rupees"`
}

// ReceiptDTO confirms a recorded purchase. The same link that is returned
// here is also queued for email delivery.
type ReceiptDTO struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	EmailQueued bool      `json:"email_queued"`
}

type gateway interface {
	CreateOrder(ctx context.Context, amountRupees int64, receipt string) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

type urlSigner interface {
	CreateSignedURL(ctx context.Context, path string, expiry time.Duration) (*supastore.SignedURL, error)
}

type wallpaperReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Wallpaper, error)
}

// service implements the payments service.
type service struct {
	dbClient    *db.Client
	gateway     gateway
	signer      urlSigner
	wallpapers  wallpaperReader
	urlExpiry   time.Duration
	simulateUPI bool
	logger      *logger.Logger
}

// NewService constructs a payments service instance.
func NewService(dbClient *db.Client, gw gateway, signer urlSigner, wallpapers wallpaperReader, urlExpiry time.Duration, simulateUPI bool, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if signer == nil {
		return nil, fmt.Errorf("url signer required")
	}
	if wallpapers == nil {
		return nil, fmt.Errorf("wallpaper reader required")
	}
	if urlExpiry <= 0 {
		return nil, fmt.Errorf("download url expiry must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		dbClient:    dbClient,
		gateway:     gw,
		signer:      signer,
		wallpapers:  wallpapers,
		urlExpiry:   urlExpiry,
		simulateUPI: simulateUPI,
		logger:      logg,
	}, nil
}

// CreateOrder validates the wallpaper and amount before anything reaches the
// gateway. Free wallpapers never open an order.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if input.AmountRupees <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	wallpaper, err := s.loadWallpaper(ctx, input.WallpaperID)
	if err != nil {
		return nil, err
	}
	if wallpaper.IsFree() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "free wallpapers do not require payment")
	}
	if wallpaper.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallpaper price is invalid")
	}
	if input.AmountRupees != int64(wallpaper.Price) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount does not match the wallpaper price")
	}

	order, err := s.gateway.CreateOrder(ctx, int64(wallpaper.Price), razorpay.NewReceipt())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening gateway order")
	}

	ctx = s.logger.WithStep(s.logger.WithWallpaperID(ctx, wallpaper.ID.String()), "order_created")
	s.logger.Info(ctx, "checkout order opened")

	return &OrderDTO{
		OrderID:      order.ID,
		AmountPaise:  order.AmountPaise,
		Currency:     order.Currency,
		KeyID:        s.gateway.KeyID(),
		WallpaperID:  wallpaper.ID,
		AmountRupees: int64(wallpaper.Price),
	}, nil
}

// VerifyPayment checks the HMAC signature, then records the payment, the
// download request, and the delivery task in one transaction. A bad signature
// writes nothing.
func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*ReceiptDTO, error) {
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if input.RazorpayOrderID == "" || input.RazorpayPaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id, and signature are required")
	}

	if !s.gateway.VerifySignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.Signature) {
		ctx = s.logger.WithStep(ctx, "signature_rejected")
		s.logger.Warn(ctx, "payment signature verification failed")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "payment signature verification failed")
	}

	wallpaper, err := s.loadWallpaper(ctx, input.WallpaperID)
	if err != nil {
		return nil, err
	}

	signed, err := s.signer.CreateSignedURL(ctx, wallpaper.ImagePath, s.urlExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "signing download url")
	}

	orderID := input.RazorpayOrderID
	paymentID := input.RazorpayPaymentID
	payment := &models.Payment{
		ID:                uuid.New(),
		RazorpayOrderID:   &orderID,
		RazorpayPaymentID: &paymentID,
		WallpaperID:       wallpaper.ID,
		PayerEmail:        normalizeEmail(input.Email),
		Amount:            wallpaper.Price,
		Status:            enums.PaymentStatusCompleted,
		Method:            enums.PaymentMethodRazorpay,
	}

	if err := s.recordPurchase(ctx, payment, wallpaper, signed); err != nil {
		return nil, err
	}

	ctx = s.logger.WithStep(s.logger.WithWallpaperID(ctx, wallpaper.ID.String()), "payment_recorded")
	s.logger.Info(ctx, "payment verified and recorded")

	return &ReceiptDTO{
		PaymentID:   payment.ID,
		DownloadURL: signed.URL,
		ExpiresAt:   signed.ExpiresAt,
		EmailQueued: true,
	}, nil
}

// VerifyUPI records a manual UPI confirmation. The pending row transitions to
// completed in the same transaction; real reconciliation is out of band. Only
// available when the simulation flag is on.
func (s *service) VerifyUPI(ctx context.Context, input VerifyUPIInput) (*ReceiptDTO, error) {
	if !s.simulateUPI {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "upi confirmation is not enabled")
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	transactionID := strings.TrimSpace(input.TransactionID)
	if transactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	if input.AmountRupees <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	wallpaper, err := s.loadWallpaper(ctx, input.WallpaperID)
	if err != nil {
		return nil, err
	}
	if input.AmountRupees != int64(wallpaper.Price) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount does not match the wallpaper price")
	}

	signed, err := s.signer.CreateSignedURL(ctx, wallpaper.ImagePath, s.urlExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "signing download url")
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		TransactionID: &transactionID,
		WallpaperID:   wallpaper.ID,
		PayerEmail:    normalizeEmail(input.Email),
		Amount:        wallpaper.Price,
		Status:        enums.PaymentStatusPending,
		Method:        enums.PaymentMethodUPI,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			return err
		}
		if err := repo.UpdatePaymentStatus(ctx, payment.ID, enums.PaymentStatusCompleted); err != nil {
			return err
		}
		return createDeliveryRows(ctx, repo, wallpaper, payment.PayerEmail, signed)
	})
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	ctx = s.logger.WithStep(s.logger.WithWallpaperID(ctx, wallpaper.ID.String()), "upi_recorded")
	s.logger.Info(ctx, "upi payment recorded")

	return &ReceiptDTO{
		PaymentID:   payment.ID,
		DownloadURL: signed.URL,
		ExpiresAt:   signed.ExpiresAt,
		EmailQueued: true,
	}, nil
}

func (s *service) recordPurchase(ctx context.Context, payment *models.Payment, wallpaper *models.Wallpaper, signed *supastore.SignedURL) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			return err
		}
		return createDeliveryRows(ctx, repo, wallpaper, payment.PayerEmail, signed)
	})
	if err != nil {
		return s.mapWriteError(err)
	}
	return nil
}

func createDeliveryRows(ctx context.Context, repo *Repository, wallpaper *models.Wallpaper, email string, signed *supastore.SignedURL) error {
	if _, err := repo.CreateDownloadRequest(ctx, &models.DownloadRequest{
		WallpaperID: wallpaper.ID,
		Email:       email,
		DownloadURL: signed.URL,
		ExpiresAt:   signed.ExpiresAt,
	}); err != nil {
		return err
	}

	_, err := repo.CreateDeliveryTask(ctx, &models.DeliveryTask{
		WallpaperID:    wallpaper.ID,
		WallpaperTitle: wallpaper.Title,
		Email:          email,
		DownloadURL:    signed.URL,
		ExpiresAt:      signed.ExpiresAt,
	})
	return err
}

func (s *service) loadWallpaper(ctx context.Context, id uuid.UUID) (*models.Wallpaper, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallpaper id is required")
	}
	wallpaper, err := s.wallpapers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallpaper not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallpaper")
	}
	return wallpaper, nil
}

func (s *service) mapWriteError(err error) error {
	if db.IsUniqueViolation(err, "razorpay_payment_id") {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment already recorded")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
}

func validateEmail(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}
	return nil
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
