package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// SavingsGoal is a goal with the progress fields the server derives.
type SavingsGoal struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	TargetAmount       decimal.Decimal `json:"target_amount"`
	CurrentAmount      decimal.Decimal `json:"current_amount"`
	Deadline           models.Date     `json:"deadline"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
	IsCompleted        bool            `json:"is_completed"`
	IsOnTrack          bool            `json:"is_on_track"`
	DaysRemaining      int             `json:"days_remaining"`
}

// SavingsGoalInput carries goal fields. CurrentAmount is ignored on create.
type SavingsGoalInput struct {
	Name          *string          `json:"name,omitempty"`
	TargetAmount  *decimal.Decimal `json:"target_amount,omitempty"`
	CurrentAmount *decimal.Decimal `json:"current_amount,omitempty"`
	Deadline      *models.Date     `json:"deadline,omitempty"`
}

// SavingsGoalService manages the session user's savings goals.
type SavingsGoalService struct {
	client *Client
}

// NewSavingsGoalService creates a SavingsGoalService on s.
func NewSavingsGoalService(s *Session) *SavingsGoalService {
	return &SavingsGoalService{client: s.Client()}
}

// List returns all goals, newest first.
func (s *SavingsGoalService) List(ctx context.Context) ([]SavingsGoal, error) {
	var out struct {
		SavingsGoals []SavingsGoal `json:"savings_goals"`
	}
	if err := s.client.call(ctx, &Request{Method: http.MethodGet, Path: "/savings-goals/"}, &out); err != nil {
		return nil, err
	}
	return out.SavingsGoals, nil
}

func (s *SavingsGoalService) Get(ctx context.Context, id string) (*SavingsGoal, error) {
	return s.send(ctx, http.MethodGet, goalPath(id), nil)
}

// Create starts a goal with nothing saved.
func (s *SavingsGoalService) Create(ctx context.Context, in SavingsGoalInput) (*SavingsGoal, error) {
	return s.send(ctx, http.MethodPost, "/savings-goals/", in)
}

// Update replaces a goal; name, target and deadline are required.
func (s *SavingsGoalService) Update(ctx context.Context, id string, in SavingsGoalInput) (*SavingsGoal, error) {
	return s.send(ctx, http.MethodPut, goalPath(id), in)
}

// Patch changes only the non-nil fields of in.
func (s *SavingsGoalService) Patch(ctx context.Context, id string, in SavingsGoalInput) (*SavingsGoal, error) {
	return s.send(ctx, http.MethodPatch, goalPath(id), in)
}

func (s *SavingsGoalService) Delete(ctx context.Context, id string) error {
	return s.client.call(ctx, &Request{Method: http.MethodDelete, Path: goalPath(id)}, nil)
}

// AddFunds deposits amount into a goal and returns it with fresh progress.
func (s *SavingsGoalService) AddFunds(ctx context.Context, id string, amount decimal.Decimal) (*SavingsGoal, error) {
	body := struct {
		Amount decimal.Decimal `json:"amount"`
	}{Amount: amount}
	return s.send(ctx, http.MethodPatch, goalPath(id)+"add_funds/", body)
}

func (s *SavingsGoalService) send(ctx context.Context, method, path string, body interface{}) (*SavingsGoal, error) {
	var out struct {
		SavingsGoal SavingsGoal `json:"savings_goal"`
	}
	if err := s.client.call(ctx, &Request{Method: method, Path: path, Body: body}, &out); err != nil {
		return nil, err
	}
	return &out.SavingsGoal, nil
}

func goalPath(id string) string {
	return "/savings-goals/" + url.PathEscape(id) + "/"
}
