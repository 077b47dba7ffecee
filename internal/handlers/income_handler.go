package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/services"
)

// IncomeHandler handles income-related requests.
type IncomeHandler struct {
	incomeService services.IncomeServicer
	auditService  services.AuditServicer
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(incomeService services.IncomeServicer, auditService services.AuditServicer) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService, auditService: auditService}
}

// IncomeRequest is the full income payload used by create and replace.
type IncomeRequest struct {
	Source string           `json:"source" binding:"required,max=200"`
	Amount *decimal.Decimal `json:"amount" binding:"required,gt=0,money"`
	Date   *models.Date     `json:"date" binding:"required" swaggertype:"string" example:"2024-11-03"`
	Notes  *string          `json:"notes"`
}

func (r IncomeRequest) input() services.IncomeInput {
	return services.IncomeInput{Source: &r.Source, Amount: r.Amount, Date: r.Date, Notes: r.Notes}
}

// PatchIncomeRequest carries the fields to change; omitted fields are kept.
type PatchIncomeRequest struct {
	Source *string          `json:"source" binding:"omitempty,max=200"`
	Amount *decimal.Decimal `json:"amount" binding:"omitempty,gt=0,money"`
	Date   *models.Date     `json:"date" swaggertype:"string" example:"2024-11-03"`
	Notes  *string          `json:"notes"`
}

func (r PatchIncomeRequest) input() services.IncomeInput {
	return services.IncomeInput{Source: r.Source, Amount: r.Amount, Date: r.Date, Notes: r.Notes}
}

// CreateIncome handles recording a new income entry.
// @Summary     Create income
// @Description Record money received. The date cannot be in the future.
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body IncomeRequest true "Income details"
// @Success     201 {object} models.Income "Income created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income/ [post]
func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IncomeRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.CreateIncome(userID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INCOME", "income", income.ID, c.ClientIP(),
		map[string]interface{}{"source": income.Source, "amount": income.Amount, "date": income.Date})

	c.JSON(http.StatusCreated, gin.H{"income": income})
}

// GetIncomes handles listing the caller's income entries.
// @Summary     List income
// @Description List income entries, newest first. Filters are combined.
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       source    query string false "Source contains (case-insensitive)"
// @Param       year      query int    false "Calendar year"
// @Param       month     query int    false "Calendar month (1-12)"
// @Param       date_from query string false "Earliest date (YYYY-MM-DD)"
// @Param       date_to   query string false "Latest date (YYYY-MM-DD)"
// @Param       limit     query int    false "Maximum number of entries"
// @Param       ordering  query string false "Sort by date, amount or created_at; prefix '-' for descending"
// @Success     200 {object} map[string]interface{} "incomes and count"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income/ [get]
func (h *IncomeHandler) GetIncomes(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseEntryFilter(c, "source")
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomes, err := h.incomeService.GetUserIncomes(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"incomes": incomes, "count": len(incomes)})
}

// GetIncome handles retrieving one income entry.
// @Summary     Get income by ID
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income ID"
// @Success     200 {object} models.Income "Income details"
// @Failure     400 {object} ErrorResponse "Invalid income ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /income/{id}/ [get]
func (h *IncomeHandler) GetIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.GetIncomeByID(userID, incomeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// UpdateIncome handles replacing an income entry.
// @Summary     Update income
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Income ID"
// @Param       request body IncomeRequest true "Income details"
// @Success     200 {object} models.Income "Updated income"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /income/{id}/ [put]
func (h *IncomeHandler) UpdateIncome(c *gin.Context) {
	var req IncomeRequest
	h.update(c, &req, func() services.IncomeInput { return req.input() })
}

// PatchIncome handles partially updating an income entry.
// @Summary     Partially update income
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Income ID"
// @Param       request body PatchIncomeRequest true "Fields to change"
// @Success     200 {object} models.Income "Updated income"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /income/{id}/ [patch]
func (h *IncomeHandler) PatchIncome(c *gin.Context) {
	var req PatchIncomeRequest
	h.update(c, &req, func() services.IncomeInput { return req.input() })
}

func (h *IncomeHandler) update(c *gin.Context, req interface{}, input func() services.IncomeInput) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := bindJSON(c, req); err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.UpdateIncome(userID, incomeID, input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_INCOME", "income", incomeID, c.ClientIP(),
		map[string]interface{}{"source": income.Source, "amount": income.Amount, "date": income.Date})

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// DeleteIncome handles deleting an income entry.
// @Summary     Delete income
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income ID"
// @Success     200 {object} MessageResponse "Income deleted"
// @Failure     400 {object} ErrorResponse "Invalid income ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /income/{id}/ [delete]
func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteIncome(userID, incomeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INCOME", "income", incomeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Income deleted successfully"})
}

// GetMonthlyTotal handles the current month's income sum.
// @Summary     Current month income
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.MonthlyTotal "Month label and total"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income/monthly_total/ [get]
func (h *IncomeHandler) GetMonthlyTotal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.incomeService.GetMonthlyTotal(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, total)
}
