package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bukukas/internal/models"
	"bukukas/internal/money"
	"bukukas/internal/pagination"
	"bukukas/internal/report"
	"bukukas/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TransactionHandler handles transaction, statistics and report requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	now                func() time.Time
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService, now: time.Now}
}

// TransactionRequest represents the create and update payload.
// user_id is honored for admin and finance only.
type TransactionRequest struct {
	Description        string                 `json:"description" binding:"required,max=255"`
	Type               models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount             *money.Amount          `json:"amount" binding:"required,gte=0" swaggertype:"string" example:"150000.00"`
	Date               string                 `json:"date" binding:"required,datetime=2006-01-02" example:"2025-10-05"`
	Category           string                 `json:"category" binding:"max=255"`
	ExpenseCategory    string                 `json:"expense_category" binding:"max=255"`
	ExpenseSubcategory string                 `json:"expense_subcategory" binding:"max=255"`
	Notes              string                 `json:"notes" binding:"max=1000"`
	TransactionGroupID string                 `json:"transaction_group_id" binding:"required,uuid"`
	EmployeePaymentID  *string                `json:"employee_payment_id" binding:"omitempty,uuid"`
	UserID             *string                `json:"user_id" binding:"omitempty,uuid"`
	HayabusaUserID     *string                `json:"hayabusa_user_id" binding:"omitempty,uuid"`
}

func (r *TransactionRequest) input() (services.TransactionInput, error) {
	date, err := parseDate("date", r.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		Description:        r.Description,
		Type:               r.Type,
		Amount:             *r.Amount,
		Date:               date,
		Category:           r.Category,
		ExpenseCategory:    r.ExpenseCategory,
		ExpenseSubcategory: r.ExpenseSubcategory,
		Notes:              r.Notes,
		TransactionGroupID: r.TransactionGroupID,
		EmployeePaymentID:  r.EmployeePaymentID,
		UserID:             r.UserID,
		HayabusaUserID:     r.HayabusaUserID,
	}, nil
}

// TransactionListQuery holds the list filters. A limit returns a short
// unpaginated list.
type TransactionListQuery struct {
	pagination.PageRequest
	TransactionGroupID string `form:"transaction_group_id" binding:"omitempty,uuid"`
	Type               string `form:"type" binding:"omitempty,transaction_type"`
	DateFrom           string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo             string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Search             string `form:"search" binding:"max=255"`
	Limit              int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ReportQuery selects the report period. Missing values default to the
// current month.
type ReportQuery struct {
	Type  string `form:"type" binding:"omitempty,report_type"`
	Year  int    `form:"year" binding:"omitempty,min=1900,max=9999"`
	Month int    `form:"month" binding:"omitempty,min=1,max=12"`
}

// ListTransactions lists the transactions visible to the caller
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       transaction_group_id query string false "Group ID"
// @Param       type query string false "income or expense"
// @Param       date_from query string false "YYYY-MM-DD"
// @Param       date_to query string false "YYYY-MM-DD"
// @Param       search query string false "Matches description, category and owner name"
// @Param       limit query int false "Return this many rows without pagination"
// @Param       page query int false "Page number"
// @Param       per_page query int false "Page size (default 15)"
// @Success     200 {object} PageResponse{data=[]models.Transaction}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Failure     422 {object} middleware.ErrorResponse "Invalid filter"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q TransactionListQuery
	if err := bindQuery(c, &q); err != nil {
		respondWithError(c, err)
		return
	}
	filter := services.TransactionFilter{
		GroupID: optional[string](q.TransactionGroupID),
		Type:    optional[models.TransactionType](q.Type),
		Search:  q.Search,
		Limit:   q.Limit,
	}
	if filter.DateFrom, err = parseOptionalDate("date_from", q.DateFrom); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.DateTo, err = parseOptionalDate("date_to", q.DateTo); err != nil {
		respondWithError(c, err)
		return
	}

	page, err := h.transactionService.ListTransactions(actor, filter, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondPage(c, page)
}

// CreateTransaction records a transaction
// @Summary     Create a transaction
// @Description An expense with expense_category "Pembayaran Hayabusa" also records a paid hayabusa payment for hayabusa_user_id.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction data"
// @Success     201 {object} Response{data=models.Transaction}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Failure     500 {object} middleware.ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.CreateTransaction(actor, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "CREATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]any{"type": tx.Type, "amount": tx.Amount.String(), "user_id": tx.UserID})
	respond(c, http.StatusCreated, tx, "Transaction created successfully")
}

// GetTransaction returns one transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} Response{data=models.Transaction}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.GetTransactionByID(actor, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, tx, "")
}

// UpdateTransaction replaces a transaction
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction data"
// @Success     200 {object} Response{data=models.Transaction}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.UpdateTransaction(actor, c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "UPDATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]any{"type": tx.Type, "amount": tx.Amount.String(), "date": tx.Date.Format(dateLayout)})
	respond(c, http.StatusOK, tx, "Transaction updated successfully")
}

// DeleteTransaction removes a transaction
// @Summary     Delete a transaction
// @Description A linked hayabusa payment is deleted with it.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.transactionService.DeleteTransaction(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "DELETE_TRANSACTION", "transaction", id, c.ClientIP(), nil)
	respondMessage(c, "Transaction deleted successfully")
}

// GetStatistics returns flat totals over the caller's visible transactions
// @Summary     Transaction statistics
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response{data=aggregate.Totals}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Router      /transactions/statistics [get]
// @Router      /dashboard/stats [get]
func (h *TransactionHandler) GetStatistics(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.transactionService.GetStatistics(actor)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, totals, "")
}

// GetReport returns a monthly or yearly report
// @Summary     Period report
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "monthly or yearly" default(monthly)
// @Param       year query int false "Year, defaults to the current year"
// @Param       month query int false "Month 1-12, defaults to the current month"
// @Success     200 {object} Response{data=report.Report}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Failure     422 {object} middleware.ErrorResponse "Invalid period"
// @Router      /transactions/reports [get]
func (h *TransactionHandler) GetReport(c *gin.Context) {
	r, ok := h.loadReport(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, r, "")
}

// ExportReport returns the report as a spreadsheet
// @Summary     Export period report
// @Tags        transactions
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       type query string false "monthly or yearly" default(monthly)
// @Param       year query int false "Year"
// @Param       month query int false "Month 1-12"
// @Success     200 {file} file
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Router      /transactions/reports/export [get]
func (h *TransactionHandler) ExportReport(c *gin.Context) {
	r, ok := h.loadReport(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(*r, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="laporan-%s.xlsx"`, r.Summary.Period))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *TransactionHandler) loadReport(c *gin.Context) (*report.Report, bool) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}

	var q ReportQuery
	if err := bindQuery(c, &q); err != nil {
		respondWithError(c, err)
		return nil, false
	}

	r, err := h.transactionService.GetReport(actor, report.NewPeriod(q.Type, q.Year, q.Month, h.now()))
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return r, true
}
