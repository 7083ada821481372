package services

import (
	"io"
	"time"

	"bukukas/internal/aggregate"
	"bukukas/internal/models"
	"bukukas/internal/money"
	"bukukas/internal/pagination"
	"bukukas/internal/policy"
	"bukukas/internal/report"
)

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UserInput carries the writable fields of a user. An empty Password leaves
// the stored hash untouched on update.
type UserInput struct {
	Name              string
	Email             string
	Password          string
	Role              models.Role
	BankName          string
	AccountNumber     string
	AccountHolderName string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	RevokeTokens(userID string) error
	ListUsers(role *models.Role) ([]models.User, error)
	CreateUser(input UserInput, picture *Upload) (*models.User, error)
	UpdateUser(actor policy.Actor, id string, input UserInput, picture *Upload) (*models.User, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
// A positive Limit returns a short unpaginated list.
type TransactionFilter struct {
	GroupID  *string
	Type     *models.TransactionType
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	Limit    int
}

// TransactionInput carries the writable fields of a transaction.
type TransactionInput struct {
	Description        string
	Type               models.TransactionType
	Amount             money.Amount
	Date               time.Time
	Category           string
	ExpenseCategory    string
	ExpenseSubcategory string
	Notes              string
	TransactionGroupID string
	EmployeePaymentID  *string
	UserID             *string
	HayabusaUserID     *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	ListTransactions(actor policy.Actor, filter TransactionFilter, page pagination.PageRequest) (*pagination.Page[models.Transaction], error)
	CreateTransaction(actor policy.Actor, input TransactionInput) (*models.Transaction, error)
	GetTransactionByID(actor policy.Actor, id string) (*models.Transaction, error)
	UpdateTransaction(actor policy.Actor, id string, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(actor policy.Actor, id string) error
	GetStatistics(actor policy.Actor) (*aggregate.Totals, error)
	GetReport(actor policy.Actor, period report.Period) (*report.Report, error)
}

// GroupInput carries the writable fields of a transaction group.
type GroupInput struct {
	Name        string
	Description string
	Type        models.GroupType
	Color       string
	IsActive    *bool
}

// GroupStatistics summarizes the transactions in a group that the caller can see.
type GroupStatistics struct {
	TotalIncome      money.Amount `json:"total_income"`
	TotalExpense     money.Amount `json:"total_expense"`
	NetAmount        money.Amount `json:"net_amount"`
	TransactionCount int64        `json:"transaction_count"`
	LastTransaction  *time.Time   `json:"last_transaction"`
}

// GroupSummary is a group as listed, with its statistics.
type GroupSummary struct {
	models.TransactionGroup
	IsSimpaskor bool            `json:"is_simpaskor"`
	Statistics  GroupStatistics `json:"statistics"`
}

// GroupDetail is a single group with its statistics and transactions.
type GroupDetail struct {
	GroupSummary
	Transactions []models.Transaction `json:"transactions"`
}

// GroupServicer defines the contract for transaction group business logic.
type GroupServicer interface {
	ListGroups(actor policy.Actor) ([]GroupSummary, error)
	GetGroupOptions(actor policy.Actor) ([]models.TransactionGroup, error)
	GetGroupByID(actor policy.Actor, id string) (*GroupDetail, error)
	CreateGroup(actor policy.Actor, input GroupInput) (*models.TransactionGroup, error)
	UpdateGroup(actor policy.Actor, id string, input GroupInput) (*models.TransactionGroup, error)
	DeleteGroup(actor policy.Actor, id string) error
	EnsureSimpaskorGroup(creatorID string) (*models.TransactionGroup, error)
}

// EmployeePaymentFilter holds optional filter parameters for listing employee payments.
type EmployeePaymentFilter struct {
	Status      *models.EmployeePaymentStatus
	PaymentType *models.EmployeePaymentType
	Period      string
	UserID      string
}

// EmployeePaymentInput carries the writable fields of an employee payment.
// Status is honored on update only.
type EmployeePaymentInput struct {
	UserID        string
	PaymentType   models.EmployeePaymentType
	Amount        money.Amount
	PaymentPeriod string
	PaymentDate   time.Time
	Description   string
	Status        *models.EmployeePaymentStatus
}

// EmployeePaymentServicer defines the contract for employee payment business logic.
type EmployeePaymentServicer interface {
	ListEmployeePayments(actor policy.Actor, filter EmployeePaymentFilter, page pagination.PageRequest) (*pagination.Page[models.EmployeePayment], error)
	CreateEmployeePayment(actor policy.Actor, input EmployeePaymentInput) (*models.EmployeePayment, error)
	GetEmployeePaymentByID(actor policy.Actor, id string) (*models.EmployeePayment, error)
	UpdateEmployeePayment(actor policy.Actor, id string, input EmployeePaymentInput) (*models.EmployeePayment, error)
	DeleteEmployeePayment(actor policy.Actor, id string) error
	ApproveEmployeePayment(actor policy.Actor, id string) (*models.EmployeePayment, error)
	ListEmployees() ([]models.User, error)
}

// HayabusaPaymentFilter holds optional filter parameters for listing hayabusa payments.
type HayabusaPaymentFilter struct {
	Status         *models.HayabusaPaymentStatus
	Period         string
	HayabusaUserID string
}

// HayabusaPaymentInput carries the writable fields of a hayabusa payment.
// An empty Period is derived from PaymentDate; an empty Status means pending.
// Status is honored on create only.
type HayabusaPaymentInput struct {
	HayabusaUserID     string
	Amount             money.Amount
	PaymentDate        time.Time
	Period             string
	Description        string
	TransactionGroupID *string
	Status             models.HayabusaPaymentStatus
}

// HayabusaStatistics summarizes the hayabusa payments visible to the caller.
type HayabusaStatistics struct {
	TotalPaid       money.Amount             `json:"total_paid"`
	PendingPayments int64                    `json:"pending_payments"`
	RecentPayments  []models.HayabusaPayment `json:"recent_payments"`
}

// HayabusaPaymentServicer defines the contract for hayabusa payout business logic.
type HayabusaPaymentServicer interface {
	ListHayabusaPayments(actor policy.Actor, filter HayabusaPaymentFilter, page pagination.PageRequest) (*pagination.Page[models.HayabusaPayment], error)
	CreateHayabusaPayment(actor policy.Actor, input HayabusaPaymentInput) (*models.HayabusaPayment, error)
	GetHayabusaPaymentByID(actor policy.Actor, id string) (*models.HayabusaPayment, error)
	UpdateHayabusaPayment(actor policy.Actor, id string, input HayabusaPaymentInput) (*models.HayabusaPayment, error)
	UpdateHayabusaPaymentStatus(actor policy.Actor, id string, status models.HayabusaPaymentStatus) (*models.HayabusaPayment, error)
	DeleteHayabusaPayment(actor policy.Actor, id string) error
	GetHayabusaStatistics(actor policy.Actor) (*HayabusaStatistics, error)
	ListHayabusaUsers() ([]models.User, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
