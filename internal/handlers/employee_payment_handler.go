package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bukukas/internal/models"
	"bukukas/internal/money"
	"bukukas/internal/pagination"
	"bukukas/internal/services"
)

// EmployeePaymentHandler handles employee payment requests.
type EmployeePaymentHandler struct {
	paymentService services.EmployeePaymentServicer
	auditService   services.AuditServicer
}

// NewEmployeePaymentHandler creates a new EmployeePaymentHandler.
func NewEmployeePaymentHandler(paymentService services.EmployeePaymentServicer, auditService services.AuditServicer) *EmployeePaymentHandler {
	return &EmployeePaymentHandler{paymentService: paymentService, auditService: auditService}
}

// EmployeePaymentRequest represents the create and update payload. Status is
// read on update only.
type EmployeePaymentRequest struct {
	UserID        string                        `json:"user_id" binding:"required,uuid"`
	PaymentType   models.EmployeePaymentType    `json:"payment_type" binding:"required,employee_payment_type"`
	Amount        *money.Amount                 `json:"amount" binding:"required,gte=0" swaggertype:"string" example:"3500000.00"`
	PaymentPeriod string                        `json:"payment_period" binding:"required,max=255" example:"Oktober 2025"`
	PaymentDate   string                        `json:"payment_date" binding:"required,datetime=2006-01-02"`
	Description   string                        `json:"description" binding:"max=1000"`
	Status        *models.EmployeePaymentStatus `json:"status" binding:"omitempty,employee_payment_status"`
}

func (r *EmployeePaymentRequest) input() (services.EmployeePaymentInput, error) {
	date, err := parseDate("payment_date", r.PaymentDate)
	if err != nil {
		return services.EmployeePaymentInput{}, err
	}
	return services.EmployeePaymentInput{
		UserID:        r.UserID,
		PaymentType:   r.PaymentType,
		Amount:        *r.Amount,
		PaymentPeriod: r.PaymentPeriod,
		PaymentDate:   date,
		Description:   r.Description,
		Status:        r.Status,
	}, nil
}

// EmployeePaymentListQuery holds the list filters.
type EmployeePaymentListQuery struct {
	pagination.PageRequest
	Status      string `form:"status" binding:"omitempty,employee_payment_status"`
	PaymentType string `form:"payment_type" binding:"omitempty,employee_payment_type"`
	Period      string `form:"period" binding:"max=255"`
	UserID      string `form:"user_id" binding:"omitempty,uuid"`
}

// ListEmployeePayments lists employee payments
// @Summary     List employee payments
// @Tags        employee-payments
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "pending, approved, paid or cancelled"
// @Param       payment_type query string false "salary, bonus, overtime, allowance or commission"
// @Param       period query string false "Period substring"
// @Param       user_id query string false "Employee ID"
// @Param       page query int false "Page number"
// @Param       per_page query int false "Page size (default 15)"
// @Success     200 {object} PageResponse{data=[]models.EmployeePayment}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Router      /employee-payments [get]
func (h *EmployeePaymentHandler) ListEmployeePayments(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q EmployeePaymentListQuery
	if err := bindQuery(c, &q); err != nil {
		respondWithError(c, err)
		return
	}

	page, err := h.paymentService.ListEmployeePayments(actor, services.EmployeePaymentFilter{
		Status:      optional[models.EmployeePaymentStatus](q.Status),
		PaymentType: optional[models.EmployeePaymentType](q.PaymentType),
		Period:      q.Period,
		UserID:      q.UserID,
	}, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondPage(c, page)
}

// CreateEmployeePayment records a pending employee payment
// @Summary     Create an employee payment
// @Tags        employee-payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body EmployeePaymentRequest true "Payment data"
// @Success     201 {object} Response{data=models.EmployeePayment}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Router      /employee-payments [post]
func (h *EmployeePaymentHandler) CreateEmployeePayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EmployeePaymentRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.CreateEmployeePayment(actor, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "CREATE_EMPLOYEE_PAYMENT", "employee_payment", payment.ID, c.ClientIP(),
		map[string]any{"user_id": payment.UserID, "amount": payment.Amount.String(), "payment_type": payment.PaymentType})
	respond(c, http.StatusCreated, payment, "Employee payment created successfully")
}

// GetEmployeePayment returns one employee payment
// @Summary     Get an employee payment
// @Tags        employee-payments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Success     200 {object} Response{data=models.EmployeePayment}
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /employee-payments/{id} [get]
func (h *EmployeePaymentHandler) GetEmployeePayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.GetEmployeePaymentByID(actor, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, payment, "")
}

// UpdateEmployeePayment replaces an employee payment
// @Summary     Update an employee payment
// @Description status may be set to pending, paid or cancelled; approval goes through the approve endpoint.
// @Tags        employee-payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Param       request body EmployeePaymentRequest true "Payment data"
// @Success     200 {object} Response{data=models.EmployeePayment}
// @Failure     400 {object} middleware.ErrorResponse "Invalid status change"
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Router      /employee-payments/{id} [put]
func (h *EmployeePaymentHandler) UpdateEmployeePayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EmployeePaymentRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.UpdateEmployeePayment(actor, c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "UPDATE_EMPLOYEE_PAYMENT", "employee_payment", payment.ID, c.ClientIP(),
		map[string]any{"amount": payment.Amount.String(), "status": payment.Status})
	respond(c, http.StatusOK, payment, "Employee payment updated successfully")
}

// DeleteEmployeePayment removes an employee payment
// @Summary     Delete an employee payment
// @Tags        employee-payments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /employee-payments/{id} [delete]
func (h *EmployeePaymentHandler) DeleteEmployeePayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.paymentService.DeleteEmployeePayment(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "DELETE_EMPLOYEE_PAYMENT", "employee_payment", id, c.ClientIP(), nil)
	respondMessage(c, "Employee payment deleted successfully")
}

// ApproveEmployeePayment approves a pending employee payment
// @Summary     Approve an employee payment
// @Tags        employee-payments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Success     200 {object} Response{data=models.EmployeePayment}
// @Failure     400 {object} middleware.ErrorResponse "Payment is paid or cancelled"
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /employee-payments/{id}/approve [post]
func (h *EmployeePaymentHandler) ApproveEmployeePayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.ApproveEmployeePayment(actor, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "APPROVE_EMPLOYEE_PAYMENT", "employee_payment", payment.ID, c.ClientIP(), nil)
	respond(c, http.StatusOK, payment, "Employee payment approved successfully")
}

// ListEmployees lists role=user accounts for payee pickers
// @Summary     List employees
// @Tags        employee-payments
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response{data=[]models.User}
// @Router      /employee-payments/employees [get]
func (h *EmployeePaymentHandler) ListEmployees(c *gin.Context) {
	users, err := h.paymentService.ListEmployees()
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, users, "")
}
