package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/services"
)

// SavingsGoalHandler handles savings goal requests.
type SavingsGoalHandler struct {
	goalService  services.SavingsGoalServicer
	auditService services.AuditServicer
}

// NewSavingsGoalHandler creates a new SavingsGoalHandler.
func NewSavingsGoalHandler(goalService services.SavingsGoalServicer, auditService services.AuditServicer) *SavingsGoalHandler {
	return &SavingsGoalHandler{goalService: goalService, auditService: auditService}
}

// SavingsGoalRequest is the full goal payload used by create and replace.
type SavingsGoalRequest struct {
	Name          string           `json:"name" binding:"required,max=200"`
	TargetAmount  *decimal.Decimal `json:"target_amount" binding:"required,gt=0,money"`
	CurrentAmount *decimal.Decimal `json:"current_amount" binding:"omitempty,gte=0,money"`
	Deadline      *models.Date     `json:"deadline" binding:"required" swaggertype:"string" example:"2025-06-30"`
}

func (r SavingsGoalRequest) input() services.SavingsGoalInput {
	return services.SavingsGoalInput{Name: &r.Name, TargetAmount: r.TargetAmount, CurrentAmount: r.CurrentAmount, Deadline: r.Deadline}
}

// PatchSavingsGoalRequest carries the fields to change; omitted fields are kept.
type PatchSavingsGoalRequest struct {
	Name          *string          `json:"name" binding:"omitempty,max=200"`
	TargetAmount  *decimal.Decimal `json:"target_amount" binding:"omitempty,gt=0,money"`
	CurrentAmount *decimal.Decimal `json:"current_amount" binding:"omitempty,gte=0,money"`
	Deadline      *models.Date     `json:"deadline" swaggertype:"string" example:"2025-06-30"`
}

func (r PatchSavingsGoalRequest) input() services.SavingsGoalInput {
	return services.SavingsGoalInput{Name: r.Name, TargetAmount: r.TargetAmount, CurrentAmount: r.CurrentAmount, Deadline: r.Deadline}
}

// AddFundsRequest is the amount to add to a goal.
type AddFundsRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required,gt=0,money"`
}

// CreateGoal handles creating a savings goal.
// @Summary     Create savings goal
// @Description Create a goal with nothing saved yet. The deadline cannot be in the past.
// @Tags        savings-goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SavingsGoalRequest true "Goal details"
// @Success     201 {object} services.SavingsGoalView "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings-goals/ [post]
func (h *SavingsGoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SavingsGoalRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	in := req.input()
	in.CurrentAmount = nil
	goal, err := h.goalService.CreateGoal(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SAVINGS_GOAL", "savings_goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"name": goal.Name, "target_amount": goal.TargetAmount, "deadline": goal.Deadline})

	c.JSON(http.StatusCreated, gin.H{"savings_goal": goal})
}

// GetGoals handles listing the caller's savings goals.
// @Summary     List savings goals
// @Description Goals with derived progress, newest first
// @Tags        savings-goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "savings_goals and count"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings-goals/ [get]
func (h *SavingsGoalHandler) GetGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.GetUserGoals(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"savings_goals": goals, "count": len(goals)})
}

// GetGoal handles retrieving one savings goal.
// @Summary     Get savings goal by ID
// @Tags        savings-goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} services.SavingsGoalView "Goal details"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /savings-goals/{id}/ [get]
func (h *SavingsGoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"savings_goal": goal})
}

// UpdateGoal handles replacing a savings goal.
// @Summary     Update savings goal
// @Tags        savings-goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Goal ID"
// @Param       request body SavingsGoalRequest true "Goal details"
// @Success     200 {object} services.SavingsGoalView "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /savings-goals/{id}/ [put]
func (h *SavingsGoalHandler) UpdateGoal(c *gin.Context) {
	var req SavingsGoalRequest
	h.update(c, &req, func() services.SavingsGoalInput { return req.input() })
}

// PatchGoal handles partially updating a savings goal.
// @Summary     Partially update savings goal
// @Tags        savings-goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Goal ID"
// @Param       request body PatchSavingsGoalRequest true "Fields to change"
// @Success     200 {object} services.SavingsGoalView "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /savings-goals/{id}/ [patch]
func (h *SavingsGoalHandler) PatchGoal(c *gin.Context) {
	var req PatchSavingsGoalRequest
	h.update(c, &req, func() services.SavingsGoalInput { return req.input() })
}

func (h *SavingsGoalHandler) update(c *gin.Context, req interface{}, input func() services.SavingsGoalInput) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := bindJSON(c, req); err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SAVINGS_GOAL", "savings_goal", goalID, c.ClientIP(),
		map[string]interface{}{"name": goal.Name, "target_amount": goal.TargetAmount, "current_amount": goal.CurrentAmount})

	c.JSON(http.StatusOK, gin.H{"savings_goal": goal})
}

// DeleteGoal handles deleting a savings goal.
// @Summary     Delete savings goal
// @Tags        savings-goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} MessageResponse "Goal deleted"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /savings-goals/{id}/ [delete]
func (h *SavingsGoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SAVINGS_GOAL", "savings_goal", goalID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Savings goal deleted successfully"})
}

// AddFunds handles depositing into a savings goal.
// @Summary     Add funds to savings goal
// @Description Increase the saved amount by a positive amount
// @Tags        savings-goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Goal ID"
// @Param       request body AddFundsRequest true "Amount to add"
// @Success     200 {object} services.SavingsGoalView "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /savings-goals/{id}/add_funds/ [patch]
func (h *SavingsGoalHandler) AddFunds(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddFundsRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.AddFunds(userID, goalID, *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_FUNDS", "savings_goal", goalID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "current_amount": goal.CurrentAmount})

	c.JSON(http.StatusOK, gin.H{"savings_goal": goal})
}
