package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/lunchly/internal/middleware"
	"github.com/iliyamo/lunchly/internal/model"
	"github.com/iliyamo/lunchly/internal/queue"
)

// CustomerStore is the customer repository as seen by the handlers.
type CustomerStore interface {
	All(ctx context.Context) ([]*model.Customer, error)
	Get(ctx context.Context, id uint64) (*model.Customer, error)
	GetByName(ctx context.Context, name *string) ([]*model.Customer, error)
	TopTen(ctx context.Context) ([]*model.TopCustomer, error)
	Reservations(ctx context.Context, c *model.Customer) ([]*model.Reservation, error)
	Save(ctx context.Context, c *model.Customer) error
}

// ReservationStore persists reservations.
type ReservationStore interface {
	Save(ctx context.Context, r *model.Reservation) error
}

// EventPublisher sends customer.saved events to the broker.
type EventPublisher interface {
	PublishCustomerSaved(ctx context.Context, event queue.CustomerSavedEvent) error
}

// CachePurger drops cached GET responses after a write.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// SaveRecorder receives metrics about writes.
type SaveRecorder interface {
	CustomerSaved(inserted bool)
	EventPublished(err error)
}

// CustomerHandler serves the customer and reservation endpoints.  Customers
// and Reservations are required; Publisher, Cache and Metrics are optional
// and skipped when nil.
type CustomerHandler struct {
	Customers    CustomerStore
	Reservations ReservationStore
	Publisher    EventPublisher
	Cache        CachePurger
	Metrics      SaveRecorder
	Logger       *log.Entry
}

// NewCustomerHandler constructs a CustomerHandler and panics if a required
// repository is nil.
func NewCustomerHandler(customers CustomerStore, reservations ReservationStore) *CustomerHandler {
	if customers == nil || reservations == nil {
		panic("nil repository passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		Customers:    customers,
		Reservations: reservations,
		Logger:       log.WithField("component", "customer-handler"),
	}
}

// ----- DTOs -----

type customerReq struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone"`
	Notes     *string `json:"notes"`
}

type customerResp struct {
	ID        uint64  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	FullName  string  `json:"full_name"`
	Phone     *string `json:"phone"`
	Notes     *string `json:"notes"`
}

type topCustomerResp struct {
	customerResp
	ReservationCount uint64 `json:"reservation_count"`
}

type reservationReq struct {
	StartAt   time.Time `json:"start_at"`
	NumGuests uint32    `json:"num_guests"`
	Notes     *string   `json:"notes"`
}

type reservationResp struct {
	ID         uint64    `json:"id"`
	CustomerID uint64    `json:"customer_id"`
	StartAt    time.Time `json:"start_at"`
	NumGuests  uint32    `json:"num_guests"`
	Notes      *string   `json:"notes"`
}

func toCustomerResp(c *model.Customer) customerResp {
	return customerResp{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		FullName:  c.FullName(),
		Phone:     c.Phone,
		Notes:     c.Notes,
	}
}

func toCustomerResps(cs []*model.Customer) []customerResp {
	out := make([]customerResp, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCustomerResp(c))
	}
	return out
}

func toReservationResp(r *model.Reservation) reservationResp {
	return reservationResp{ID: r.ID, CustomerID: r.CustomerID, StartAt: r.StartAt, NumGuests: r.NumGuests, Notes: r.Notes}
}

// bind decodes and normalizes a customer body.  Names are required; empty
// phone or notes are stored as NULL.
func (req *customerReq) bind(c echo.Context) (string, bool) {
	if err := c.Bind(req); err != nil {
		return "invalid request body", false
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		return "first_name and last_name are required", false
	}
	req.Phone = emptyToNil(req.Phone)
	req.Notes = emptyToNil(req.Notes)
	return "", true
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id != 0
}

// List handles GET /v1/customers.  With a `search` query parameter it
// returns the name search instead of the full list.
func (h *CustomerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		customers []*model.Customer
		err       error
	)
	if c.QueryParams().Has("search") {
		name := c.QueryParam("search")
		customers, err = h.Customers.GetByName(ctx, &name)
	} else {
		customers, err = h.Customers.All(ctx)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, toCustomerResps(customers))
}

// Top handles GET /v1/customers/top.
func (h *CustomerHandler) Top(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	top, err := h.Customers.TopTen(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]topCustomerResp, 0, len(top))
	for _, t := range top {
		out = append(out, topCustomerResp{customerResp: toCustomerResp(&t.Customer), ReservationCount: t.ReservationCount})
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/customers/:id.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customer, err := h.Customers.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, toCustomerResp(customer))
}

// ListReservations handles GET /v1/customers/:id/reservations.
func (h *CustomerHandler) ListReservations(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customer, err := h.Customers.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	reservations, err := h.Customers.Reservations(ctx, customer)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]reservationResp, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, toReservationResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/customers.
func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if msg, ok := req.bind(c); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	customer := &model.Customer{FirstName: req.FirstName, LastName: req.LastName, Phone: req.Phone, Notes: req.Notes}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Customers.Save(ctx, customer); err != nil {
		return h.fail(c, err)
	}
	h.afterSave(c, customer, true)
	return c.JSON(http.StatusCreated, toCustomerResp(customer))
}

// Update handles PUT /v1/customers/:id.  All four editable fields are
// replaced by the request body.
func (h *CustomerHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	var req customerReq
	if msg, ok := req.bind(c); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customer, err := h.Customers.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Phone = req.Phone
	customer.Notes = req.Notes
	if err := h.Customers.Save(ctx, customer); err != nil {
		return h.fail(c, err)
	}
	h.afterSave(c, customer, false)
	return c.JSON(http.StatusOK, toCustomerResp(customer))
}

// AddReservation handles POST /v1/customers/:id/reservations.
func (h *CustomerHandler) AddReservation(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.StartAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_at is required"})
	}
	if req.NumGuests < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "num_guests must be at least 1"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customer, err := h.Customers.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	res := &model.Reservation{
		CustomerID: customer.ID,
		StartAt:    req.StartAt.UTC(),
		NumGuests:  req.NumGuests,
		Notes:      emptyToNil(req.Notes),
	}
	if err := h.Reservations.Save(ctx, res); err != nil {
		return h.fail(c, err)
	}
	h.purge(c.Request().Context())
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// afterSave records metrics, purges the cache and publishes the event.
// None of these can fail the request.
func (h *CustomerHandler) afterSave(c echo.Context, customer *model.Customer, created bool) {
	if h.Metrics != nil {
		h.Metrics.CustomerSaved(created)
	}
	ctx := c.Request().Context()
	h.purge(ctx)
	if h.Publisher == nil {
		return
	}
	staffID, _ := c.Get(middleware.CtxStaffID).(string)
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	event := queue.NewCustomerSavedEvent(customer, created, staffID, requestID, time.Now())

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	err := h.Publisher.PublishCustomerSaved(pubCtx, event)
	if h.Metrics != nil {
		h.Metrics.EventPublished(err)
	}
}

func (h *CustomerHandler) purge(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Purge(ctx); err != nil {
		h.Logger.WithError(err).Warn("cache purge failed")
	}
}

// fail writes the JSON error for err.  Errors carrying a status code (the
// repository's NotFoundError) keep it; anything else is a 500.
func (h *CustomerHandler) fail(c echo.Context, err error) error {
	if status, ok := statusOf(err); ok {
		return c.JSON(status, echo.Map{"error": err.Error()})
	}
	h.Logger.WithError(err).WithField("route", c.Path()).Error("database error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
