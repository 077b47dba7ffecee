package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fintrack/internal/config"
	"fintrack/internal/models"
	"fintrack/internal/server"
	"fintrack/internal/testutil"
)

// APISuite runs the SDK against the real router on an in-memory database.
type APISuite struct {
	suite.Suite
	srv     *httptest.Server
	baseURL string
	ctx     context.Context
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:             "test",
		CORSOrigin:      "*",
		JWTSecret:       "client-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		MaxFailedLogins: 5,
		LockoutDuration: 15 * time.Minute,
	}
	config.Set(cfg)

	db := testutil.SetupTestDB(s.T())
	s.T().Cleanup(func() { testutil.TeardownTestDB(s.T(), db) })

	s.srv = httptest.NewServer(server.NewRouter(db, cfg))
	s.T().Cleanup(s.srv.Close)
	s.baseURL = s.srv.URL + "/api"
	s.ctx = context.Background()
}

// loggedIn registers username and returns a logged-in session.
func (s *APISuite) loggedIn(username string) *Session {
	sess := NewSession(NewMemoryStore(), s.baseURL)
	s.Require().NoError(sess.Register(s.ctx, RegisterRequest{
		Username: username, Password: "password123", Password2: "password123",
	}))
	_, err := sess.Login(s.ctx, username, "password123")
	s.Require().NoError(err)
	return sess
}

func strPtr(v string) *string { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func datePtr(d models.Date) *models.Date { return &d }

func (s *APISuite) TestRegisterDoesNotLogIn() {
	sess := NewSession(NewMemoryStore(), s.baseURL)

	err := sess.Register(s.ctx, RegisterRequest{Username: "erin", Password: "password123", Password2: "password123"})

	s.Require().NoError(err)
	s.Nil(sess.User())
	s.Empty(sess.accessToken())
}

func (s *APISuite) TestRegisterPasswordMismatch() {
	sess := NewSession(NewMemoryStore(), s.baseURL)

	err := sess.Register(s.ctx, RegisterRequest{Username: "erin", Password: "password123", Password2: "password321"})

	s.ErrorIs(err, ErrValidation)
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Contains(apiErr.Fields, "password")
}

func (s *APISuite) TestLoginWrongPassword() {
	s.loggedIn("frank")
	sess := NewSession(NewMemoryStore(), s.baseURL)

	_, err := sess.Login(s.ctx, "frank", "nope-nope")

	s.ErrorIs(err, ErrUnauthorized)
	s.Nil(sess.User())
}

func (s *APISuite) TestRestoreFromSQLiteStore() {
	path := filepath.Join(s.T().TempDir(), "session.db")
	store, err := OpenSQLiteStore(path)
	s.Require().NoError(err)
	defer func() { _ = store.Close() }()

	sess := NewSession(store, s.baseURL)
	s.Require().NoError(sess.Register(s.ctx, RegisterRequest{Username: "gina", Password: "password123", Password2: "password123"}))
	_, err = sess.Login(s.ctx, "gina", "password123")
	s.Require().NoError(err)

	// A new process restores the same user from disk.
	restored := NewSession(store, s.baseURL)
	user, err := restored.Restore(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.Equal("gina", user.Username)
	s.Equal("gina", restored.User().Username)
}

func (s *APISuite) TestRestoreRenewsExpiredAccessToken() {
	sess := s.loggedIn("hank")
	refresh := sess.refreshToken()

	store := NewMemoryStore()
	s.Require().NoError(store.Save(s.ctx, Credentials{Access: "not-a-jwt", Refresh: refresh}))

	restored := NewSession(store, s.baseURL)
	user, err := restored.Restore(s.ctx)

	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.Equal("hank", user.Username)

	stored, _ := store.Load(s.ctx)
	s.NotEqual("not-a-jwt", stored.Access)
	s.Equal(refresh, stored.Refresh)
}

func (s *APISuite) TestRestoreWithRejectedCredentials() {
	store := NewMemoryStore()
	s.Require().NoError(store.Save(s.ctx, Credentials{Access: "bogus", Refresh: "bogus"}))

	sess := NewSession(store, s.baseURL)
	user, err := sess.Restore(s.ctx)

	s.NoError(err)
	s.Nil(user)
	stored, _ := store.Load(s.ctx)
	s.True(stored.Empty())
}

func (s *APISuite) TestRestoreWithNothingStored() {
	user, err := NewSession(NewMemoryStore(), s.baseURL).Restore(s.ctx)

	s.NoError(err)
	s.Nil(user)
}

func (s *APISuite) TestRestoreNetworkFailureKeepsCredentials() {
	store := NewMemoryStore()
	creds := Credentials{Access: "a", Refresh: "r"}
	s.Require().NoError(store.Save(s.ctx, creds))

	sess := NewSession(store, "http://127.0.0.1:1/api", WithTimeout(time.Second))
	user, err := sess.Restore(s.ctx)

	s.Nil(user)
	var netErr *NetworkError
	s.ErrorAs(err, &netErr)
	stored, _ := store.Load(s.ctx)
	s.Equal(creds, stored)
}

func (s *APISuite) TestLogoutRevokesRefreshToken() {
	sess := s.loggedIn("ivy")
	refresh := sess.refreshToken()

	s.Require().NoError(sess.Logout(s.ctx))
	s.Nil(sess.User())
	s.Empty(sess.accessToken())

	// The revoked refresh token can no longer restore a session.
	store := NewMemoryStore()
	s.Require().NoError(store.Save(s.ctx, Credentials{Access: "stale", Refresh: refresh}))
	terminated := false
	restored := NewSession(store, s.baseURL)
	restored.OnTerminated(func() { terminated = true })

	user, err := restored.Restore(s.ctx)
	s.NoError(err)
	s.Nil(user)
	s.True(terminated)
}

func (s *APISuite) TestLogoutWithExpiredAccessTokenStillRevokes() {
	sess := s.loggedIn("iris")
	refresh := sess.refreshToken()
	sess.mu.Lock()
	sess.creds.Access = "not-a-jwt"
	sess.mu.Unlock()

	terminated := false
	sess.OnTerminated(func() { terminated = true })

	s.Require().NoError(sess.Logout(s.ctx))
	s.False(terminated, "logout is not a termination")
	s.Empty(sess.refreshToken())

	_, err := sess.Client().refreshAccess(s.ctx, refresh)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *APISuite) TestIncomeLifecycle() {
	incomes := NewIncomeService(s.loggedIn("jack"))
	today := models.Today()

	created, err := incomes.Create(s.ctx, IncomeInput{
		Source: strPtr("Salary"), Amount: decPtr("3500.00"), Date: datePtr(today),
	})
	s.Require().NoError(err)
	s.Equal("Salary", created.Source)
	s.True(created.Amount.Equal(decimal.NewFromInt(3500)))

	_, err = incomes.Create(s.ctx, IncomeInput{Source: strPtr("Bonus"), Amount: decPtr("250"), Date: datePtr(today)})
	s.Require().NoError(err)

	list, err := incomes.List(s.ctx, EntryFilter{Search: "sal"})
	s.Require().NoError(err)
	s.Len(list, 1)

	patched, err := incomes.Patch(s.ctx, created.ID, IncomeInput{Amount: decPtr("3600")})
	s.Require().NoError(err)
	s.Equal("Salary", patched.Source)
	s.True(patched.Amount.Equal(decimal.NewFromInt(3600)))

	total, err := incomes.MonthlyTotal(s.ctx)
	s.Require().NoError(err)
	s.Equal(today.Format("January 2006"), total.Month)
	s.True(total.Total.Equal(decimal.NewFromInt(3850)), "got %s", total.Total)

	s.Require().NoError(incomes.Delete(s.ctx, created.ID))
	s.ErrorIs(incomes.Delete(s.ctx, created.ID), ErrNotFound)
	_, err = incomes.Get(s.ctx, created.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *APISuite) TestIncomeValidation() {
	incomes := NewIncomeService(s.loggedIn("kate"))
	tomorrow := models.DateOf(time.Now().AddDate(0, 0, 1))

	_, err := incomes.Create(s.ctx, IncomeInput{Source: strPtr("Future"), Amount: decPtr("10"), Date: &tomorrow})
	s.ErrorIs(err, ErrValidation)

	_, err = incomes.Create(s.ctx, IncomeInput{Source: strPtr("Tiny"), Amount: decPtr("0.001"), Date: datePtr(models.Today())})
	s.ErrorIs(err, ErrValidation)
}

func (s *APISuite) TestEntriesAreScopedToOwner() {
	owner := NewExpenseService(s.loggedIn("liam"))
	other := NewExpenseService(s.loggedIn("mona"))
	food := models.CategoryFood

	expense, err := owner.Create(s.ctx, ExpenseInput{
		Title: strPtr("Groceries"), Category: &food, Amount: decPtr("54.30"), Date: datePtr(models.Today()),
	})
	s.Require().NoError(err)

	_, err = other.Get(s.ctx, expense.ID)
	s.ErrorIs(err, ErrNotFound)
	_, err = other.Patch(s.ctx, expense.ID, ExpenseInput{Title: strPtr("Mine now")})
	s.ErrorIs(err, ErrNotFound)
	s.ErrorIs(other.Delete(s.ctx, expense.ID), ErrNotFound)

	list, err := other.List(s.ctx, EntryFilter{})
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *APISuite) TestExpensesByCategory() {
	expenses := NewExpenseService(s.loggedIn("nina"))
	today := datePtr(models.Today())
	food, rent := models.CategoryFood, models.CategoryRent

	for _, in := range []ExpenseInput{
		{Title: strPtr("Groceries"), Category: &food, Amount: decPtr("50.00"), Date: today},
		{Title: strPtr("Bakery"), Category: &food, Amount: decPtr("4.30"), Date: today},
		{Title: strPtr("Flat"), Category: &rent, Amount: decPtr("900"), Date: today},
		{Title: strPtr("Misc"), Amount: decPtr("1"), Date: today},
	} {
		_, err := expenses.Create(s.ctx, in)
		s.Require().NoError(err)
	}

	totals, err := expenses.ByCategory(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(totals, 3)
	s.Equal(models.CategoryRent, totals[0].Category)
	s.Equal(models.CategoryFood, totals[1].Category)
	s.Equal(models.CategoryFood.Label(), totals[1].Label)
	s.True(totals[1].Total.Equal(decimal.RequireFromString("54.30")))
	s.Equal(models.CategoryOther, totals[2].Category)

	list, err := expenses.List(s.ctx, EntryFilter{Category: models.CategoryFood})
	s.Require().NoError(err)
	s.Len(list, 2)

	list, err = expenses.List(s.ctx, EntryFilter{Ordering: "-amount"})
	s.Require().NoError(err)
	s.Require().Len(list, 4)
	s.Equal("Flat", list[0].Title)
	s.Equal("Misc", list[3].Title)

	list, err = expenses.List(s.ctx, EntryFilter{Search: "50%"})
	s.Require().NoError(err)
	s.Empty(list)

	_, err = expenses.List(s.ctx, EntryFilter{Ordering: "title"})
	s.ErrorIs(err, ErrValidation)
}

func (s *APISuite) TestSavingsGoalAddFunds() {
	goals := NewSavingsGoalService(s.loggedIn("omar"))

	goal, err := goals.Create(s.ctx, SavingsGoalInput{
		Name:          strPtr("Holiday"),
		TargetAmount:  decPtr("1000"),
		CurrentAmount: decPtr("999"),
		Deadline:      datePtr(models.Today().AddMonths(6)),
	})
	s.Require().NoError(err)
	s.True(goal.CurrentAmount.IsZero(), "current amount starts at zero")

	goal, err = goals.AddFunds(s.ctx, goal.ID, decimal.RequireFromString("250"))
	s.Require().NoError(err)
	s.True(goal.CurrentAmount.Equal(decimal.NewFromInt(250)))
	s.True(goal.ProgressPercentage.Equal(decimal.NewFromInt(25)))
	s.False(goal.IsCompleted)

	_, err = goals.AddFunds(s.ctx, goal.ID, decimal.RequireFromString("-1"))
	s.ErrorIs(err, ErrValidation)

	goal, err = goals.AddFunds(s.ctx, goal.ID, decimal.RequireFromString("1000"))
	s.Require().NoError(err)
	s.True(goal.IsCompleted)
	s.True(goal.ProgressPercentage.Equal(decimal.NewFromInt(100)))

	list, err := goals.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *APISuite) TestDashboardOverview() {
	sess := s.loggedIn("pia")
	incomes, expenses := NewIncomeService(sess), NewExpenseService(sess)
	today := datePtr(models.Today())

	for i := 0; i < 3; i++ {
		_, err := incomes.Create(s.ctx, IncomeInput{Source: strPtr("Gig"), Amount: decPtr("100"), Date: today})
		s.Require().NoError(err)
	}
	_, err := expenses.Create(s.ctx, ExpenseInput{Title: strPtr("Lunch"), Amount: decPtr("150.50"), Date: today})
	s.Require().NoError(err)

	ov, err := NewDashboardService(sess).Overview(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(ov.RecentIncome, 2)
	s.Len(ov.RecentExpenses, 1)
	s.True(ov.Summary.Balance.Equal(decimal.RequireFromString("149.50")), "got %s", ov.Summary.Balance)
	s.NotEmpty(ov.Summary.MonthlyData)

	activity, err := NewDashboardService(sess).Activity(s.ctx, 1, 2)
	s.Require().NoError(err)
	s.Len(activity.Data, 2)
	s.True(activity.HasNext)
}

func (s *APISuite) TestDashboardOverviewFailsWhole() {
	sess := NewSession(NewMemoryStore(), s.baseURL)

	ov, err := NewDashboardService(sess).Overview(s.ctx, 5)

	s.Nil(ov)
	s.Error(err)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func TestCredentialsEmpty(t *testing.T) {
	assert.True(t, Credentials{}.Empty())
	assert.False(t, Credentials{Refresh: "r"}.Empty())
	require.NotPanics(t, func() { _ = (&APIError{StatusCode: 418}).Error() })
}
