package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bukukas/internal/models"
	"bukukas/internal/money"
	"bukukas/internal/pagination"
	"bukukas/internal/services"
)

// HayabusaPaymentHandler handles hayabusa payout requests.
type HayabusaPaymentHandler struct {
	paymentService services.HayabusaPaymentServicer
	auditService   services.AuditServicer
}

// NewHayabusaPaymentHandler creates a new HayabusaPaymentHandler.
func NewHayabusaPaymentHandler(paymentService services.HayabusaPaymentServicer, auditService services.AuditServicer) *HayabusaPaymentHandler {
	return &HayabusaPaymentHandler{paymentService: paymentService, auditService: auditService}
}

// HayabusaPaymentRequest represents the create and update payload. An empty
// period is derived from payment_date; an omitted group means Simpaskor.
type HayabusaPaymentRequest struct {
	HayabusaUserID     string                       `json:"hayabusa_user_id" binding:"required,uuid"`
	Amount             *money.Amount                `json:"amount" binding:"required,gte=0" swaggertype:"string" example:"250000.00"`
	PaymentDate        string                       `json:"payment_date" binding:"required,datetime=2006-01-02"`
	Period             string                       `json:"period" binding:"max=255" example:"October 2025"`
	Description        string                       `json:"description" binding:"max=1000"`
	TransactionGroupID *string                      `json:"transaction_group_id" binding:"omitempty,uuid"`
	Status             models.HayabusaPaymentStatus `json:"status" binding:"omitempty,hayabusa_status"`
}

func (r *HayabusaPaymentRequest) input() (services.HayabusaPaymentInput, error) {
	date, err := parseDate("payment_date", r.PaymentDate)
	if err != nil {
		return services.HayabusaPaymentInput{}, err
	}
	return services.HayabusaPaymentInput{
		HayabusaUserID:     r.HayabusaUserID,
		Amount:             *r.Amount,
		PaymentDate:        date,
		Period:             r.Period,
		Description:        r.Description,
		TransactionGroupID: r.TransactionGroupID,
		Status:             r.Status,
	}, nil
}

// HayabusaStatusRequest represents the status change payload.
type HayabusaStatusRequest struct {
	Status models.HayabusaPaymentStatus `json:"status" binding:"required,hayabusa_status"`
}

// HayabusaPaymentListQuery holds the list filters.
type HayabusaPaymentListQuery struct {
	pagination.PageRequest
	Status         string `form:"status" binding:"omitempty,hayabusa_status"`
	Period         string `form:"period" binding:"max=255"`
	HayabusaUserID string `form:"hayabusa_user_id" binding:"omitempty,uuid"`
}

// ListHayabusaPayments lists payouts; hayabusa users see their own
// @Summary     List hayabusa payments
// @Tags        hayabusa-payments
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "pending, paid or cancelled"
// @Param       period query string false "Period substring"
// @Param       hayabusa_user_id query string false "Payee ID"
// @Param       page query int false "Page number"
// @Param       per_page query int false "Page size (default 15)"
// @Success     200 {object} PageResponse{data=[]models.HayabusaPayment}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Router      /hayabusa-payments [get]
func (h *HayabusaPaymentHandler) ListHayabusaPayments(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q HayabusaPaymentListQuery
	if err := bindQuery(c, &q); err != nil {
		respondWithError(c, err)
		return
	}

	page, err := h.paymentService.ListHayabusaPayments(actor, services.HayabusaPaymentFilter{
		Status:         optional[models.HayabusaPaymentStatus](q.Status),
		Period:         q.Period,
		HayabusaUserID: q.HayabusaUserID,
	}, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondPage(c, page)
}

// CreateHayabusaPayment records a payout and its expense transaction
// @Summary     Create a hayabusa payment
// @Tags        hayabusa-payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body HayabusaPaymentRequest true "Payment data"
// @Success     201 {object} Response{data=models.HayabusaPayment}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Failure     500 {object} middleware.ErrorResponse "Server error"
// @Router      /hayabusa-payments [post]
func (h *HayabusaPaymentHandler) CreateHayabusaPayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req HayabusaPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.CreateHayabusaPayment(actor, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "CREATE_HAYABUSA_PAYMENT", "hayabusa_payment", payment.ID, c.ClientIP(),
		map[string]any{"hayabusa_user_id": payment.HayabusaUserID, "amount": payment.Amount.String(), "transaction_id": payment.TransactionID})
	respond(c, http.StatusCreated, payment, "Hayabusa payment created successfully")
}

// GetHayabusaPayment returns one payout
// @Summary     Get a hayabusa payment
// @Tags        hayabusa-payments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Success     200 {object} Response{data=models.HayabusaPayment}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /hayabusa-payments/{id} [get]
func (h *HayabusaPaymentHandler) GetHayabusaPayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.GetHayabusaPaymentByID(actor, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, payment, "")
}

// UpdateHayabusaPayment replaces a payout and syncs its transaction
// @Summary     Update a hayabusa payment
// @Tags        hayabusa-payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Param       request body HayabusaPaymentRequest true "Payment data"
// @Success     200 {object} Response{data=models.HayabusaPayment}
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Router      /hayabusa-payments/{id} [put]
func (h *HayabusaPaymentHandler) UpdateHayabusaPayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req HayabusaPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.UpdateHayabusaPayment(actor, c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "UPDATE_HAYABUSA_PAYMENT", "hayabusa_payment", payment.ID, c.ClientIP(),
		map[string]any{"amount": payment.Amount.String(), "status": payment.Status})
	respond(c, http.StatusOK, payment, "Hayabusa payment updated successfully")
}

// UpdateHayabusaPaymentStatus changes a payout's status
// @Summary     Update hayabusa payment status
// @Description Marking a payout paid stamps paid_at once; repeating it keeps the first timestamp.
// @Tags        hayabusa-payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Param       request body HayabusaStatusRequest true "New status"
// @Success     200 {object} Response{data=models.HayabusaPayment}
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Failure     422 {object} middleware.ErrorResponse "Invalid status"
// @Router      /hayabusa-payments/{id}/status [patch]
func (h *HayabusaPaymentHandler) UpdateHayabusaPaymentStatus(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req HayabusaStatusRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.UpdateHayabusaPaymentStatus(actor, c.Param("id"), req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "UPDATE_HAYABUSA_PAYMENT_STATUS", "hayabusa_payment", payment.ID, c.ClientIP(),
		map[string]any{"status": payment.Status})
	respond(c, http.StatusOK, payment, "Hayabusa payment status updated successfully")
}

// DeleteHayabusaPayment removes a payout and its transaction
// @Summary     Delete a hayabusa payment
// @Tags        hayabusa-payments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /hayabusa-payments/{id} [delete]
func (h *HayabusaPaymentHandler) DeleteHayabusaPayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.paymentService.DeleteHayabusaPayment(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "DELETE_HAYABUSA_PAYMENT", "hayabusa_payment", id, c.ClientIP(), nil)
	respondMessage(c, "Hayabusa payment deleted successfully")
}

// GetHayabusaStatistics summarizes visible payouts
// @Summary     Hayabusa payment statistics
// @Tags        hayabusa-payments
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response{data=services.HayabusaStatistics}
// @Router      /hayabusa-payments/statistics [get]
func (h *HayabusaPaymentHandler) GetHayabusaStatistics(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.paymentService.GetHayabusaStatistics(actor)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "")
}

// ListHayabusaUsers lists hayabusa payees with bank details
// @Summary     List hayabusa users
// @Tags        hayabusa-payments
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response{data=[]models.User}
// @Router      /hayabusa-payments/users [get]
func (h *HayabusaPaymentHandler) ListHayabusaUsers(c *gin.Context) {
	users, err := h.paymentService.ListHayabusaUsers()
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, users, "")
}
