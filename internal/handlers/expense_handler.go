package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// ExpenseRequest is the full expense payload used by create and replace.
type ExpenseRequest struct {
	Title    string                 `json:"title" binding:"required,max=200"`
	Category models.ExpenseCategory `json:"category" binding:"omitempty,expense_category" example:"food"`
	Amount   *decimal.Decimal       `json:"amount" binding:"required,gt=0,money"`
	Date     *models.Date           `json:"date" binding:"required" swaggertype:"string" example:"2024-11-03"`
	Notes    *string                `json:"notes"`
}

func (r ExpenseRequest) input() services.ExpenseInput {
	return services.ExpenseInput{Title: &r.Title, Category: &r.Category, Amount: r.Amount, Date: r.Date, Notes: r.Notes}
}

// PatchExpenseRequest carries the fields to change; omitted fields are kept.
type PatchExpenseRequest struct {
	Title    *string                 `json:"title" binding:"omitempty,max=200"`
	Category *models.ExpenseCategory `json:"category" binding:"omitempty,expense_category"`
	Amount   *decimal.Decimal        `json:"amount" binding:"omitempty,gt=0,money"`
	Date     *models.Date            `json:"date" swaggertype:"string" example:"2024-11-03"`
	Notes    *string                 `json:"notes"`
}

func (r PatchExpenseRequest) input() services.ExpenseInput {
	return services.ExpenseInput{Title: r.Title, Category: r.Category, Amount: r.Amount, Date: r.Date, Notes: r.Notes}
}

// CreateExpense handles recording a new expense.
// @Summary     Create expense
// @Description Record money spent. The category defaults to "other".
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/ [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"title": expense.Title, "category": expense.Category, "amount": expense.Amount})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetExpenses handles listing the caller's expenses.
// @Summary     List expenses
// @Description List expenses, newest first. Filters are combined.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       title     query string false "Title contains (case-insensitive)"
// @Param       category  query string false "Category"
// @Param       year      query int    false "Calendar year"
// @Param       month     query int    false "Calendar month (1-12)"
// @Param       date_from query string false "Earliest date (YYYY-MM-DD)"
// @Param       date_to   query string false "Latest date (YYYY-MM-DD)"
// @Param       limit     query int    false "Maximum number of entries"
// @Param       ordering  query string false "Sort by date, amount, created_at or category; prefix '-' for descending"
// @Success     200 {object} map[string]interface{} "expenses and count"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/ [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseEntryFilter(c, "title")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if v := c.Query("category"); v != "" {
		category := models.ExpenseCategory(v)
		if !category.Valid() {
			respondWithError(c, apperrors.WithField(apperrors.ErrInvalidInput, "category", "Select a valid choice."))
			return
		}
		filter.Category = &category
	}

	expenses, err := h.expenseService.GetUserExpenses(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses, "count": len(expenses)})
}

// GetExpense handles retrieving one expense.
// @Summary     Get expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense details"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id}/ [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense handles replacing an expense.
// @Summary     Update expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id}/ [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req ExpenseRequest
	h.update(c, &req, func() services.ExpenseInput { return req.input() })
}

// PatchExpense handles partially updating an expense.
// @Summary     Partially update expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Expense ID"
// @Param       request body PatchExpenseRequest true "Fields to change"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id}/ [patch]
func (h *ExpenseHandler) PatchExpense(c *gin.Context) {
	var req PatchExpenseRequest
	h.update(c, &req, func() services.ExpenseInput { return req.input() })
}

func (h *ExpenseHandler) update(c *gin.Context, req interface{}, input func() services.ExpenseInput) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := bindJSON(c, req); err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_EXPENSE", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{"title": expense.Title, "category": expense.Category, "amount": expense.Amount})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles deleting an expense.
// @Summary     Delete expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id}/ [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_EXPENSE", "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Expense deleted successfully"})
}

// GetMonthlyTotal handles the current month's expense sum.
// @Summary     Current month expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.MonthlyTotal "Month label and total"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/monthly_total/ [get]
func (h *ExpenseHandler) GetMonthlyTotal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.expenseService.GetMonthlyTotal(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, total)
}

// GetByCategory handles per-category expense sums.
// @Summary     Expenses by category
// @Description Expense totals per category, largest first. Empty categories are omitted.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]services.CategoryTotal "Category totals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/by_category/ [get]
func (h *ExpenseHandler) GetByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.expenseService.GetTotalsByCategory(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": totals})
}
