package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fintrack/internal/config"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

var testConfig = &config.Config{
	Env:             "test",
	CORSOrigin:      "http://localhost:3000",
	JWTSecret:       "integration-secret",
	AccessTokenTTL:  15 * time.Minute,
	RefreshTokenTTL: time.Hour,
	MaxFailedLogins: 5,
	LockoutDuration: 15 * time.Minute,
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	config.Set(testConfig)
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return &testApp{DB: db, Router: NewRouter(db, testConfig)}
}

func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// signUp registers username and logs in, returning the token pair.
func (app *testApp) signUp(t *testing.T, username string) (access, refresh string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"password123","password2":"password123"}`, username)
	rec := app.request("POST", "/api/auth/register/", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	body = fmt.Sprintf(`{"username":%q,"password":"password123"}`, username)
	rec = app.request("POST", "/api/auth/login/", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access"].(string), result["refresh"].(string)
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/health", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parseJSON(t, rec)["status"] != "ok" {
		t.Errorf("unexpected health body %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	app := setupApp(t)

	rec := app.request("OPTIONS", "/api/income/", "", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != testConfig.CORSOrigin {
		t.Errorf("expected allowed origin %s, got %q", testConfig.CORSOrigin, got)
	}
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)

	access, refresh := app.signUp(t, "alice")

	rec := app.request("GET", "/api/auth/profile/", "", access)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["username"] != "alice" {
		t.Errorf("unexpected profile %s", rec.Body.String())
	}

	// Refresh tokens cannot be used as access tokens and vice versa.
	rec = app.request("GET", "/api/auth/profile/", "", refresh)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh token as bearer: expected 401, got %d", rec.Code)
	}
	rec = app.request("POST", "/api/auth/refresh/", fmt.Sprintf(`{"refresh":%q}`, access), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("access token as refresh: expected 401, got %d", rec.Code)
	}

	rec = app.request("POST", "/api/auth/refresh/", fmt.Sprintf(`{"refresh":%q}`, refresh), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	renewed := parseJSON(t, rec)["access"].(string)
	if renewed == "" {
		t.Fatal("expected a renewed access token")
	}

	rec = app.request("POST", "/api/auth/logout/", "", renewed)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/auth/refresh/", fmt.Sprintf(`{"refresh":%q}`, refresh), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: expected 401, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_REFRESH_TOKEN" {
		t.Errorf("expected INVALID_REFRESH_TOKEN, got %s", code)
	}
}

func TestRegister_passwordMismatch(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/auth/register/",
		`{"username":"bob","password":"password123","password2":"password124"}`, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var count int64
	app.DB.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no user to be created, got %d", count)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/api/income/", "/api/expenses/", "/api/savings-goals/", "/api/dashboard/"} {
		rec := app.request("GET", path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestEntriesAreScopedToOwner(t *testing.T) {
	app := setupApp(t)
	today := models.Today().String()

	aliceToken, _ := app.signUp(t, "alice")
	bobToken, _ := app.signUp(t, "bob")

	rec := app.request("POST", "/api/income/",
		fmt.Sprintf(`{"source":"Salary","amount":"3500.00","date":%q}`, today), aliceToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	incomeID := parseJSON(t, rec)["income"].(map[string]interface{})["id"].(string)

	for _, req := range []struct{ method, body string }{
		{"GET", ""},
		{"PATCH", `{"amount":"1"}`},
		{"DELETE", ""},
	} {
		rec = app.request(req.method, "/api/income/"+incomeID+"/", req.body, bobToken)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s as other user: expected 404, got %d", req.method, rec.Code)
		}
	}

	rec = app.request("GET", "/api/income/", "", bobToken)
	if list := parseJSON(t, rec)["incomes"].([]interface{}); len(list) != 0 {
		t.Errorf("expected bob to see no income, got %d", len(list))
	}

	rec = app.request("GET", "/api/income/"+incomeID+"/", "", aliceToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get: expected 200, got %d", rec.Code)
	}
	if amount := parseJSON(t, rec)["income"].(map[string]interface{})["amount"]; amount != "3500" {
		t.Errorf("expected amount 3500, got %v", amount)
	}
}

func TestExpensesByCategoryAndDashboard(t *testing.T) {
	app := setupApp(t)
	token, _ := app.signUp(t, "carol")
	today := models.Today().String()

	for _, body := range []string{
		fmt.Sprintf(`{"title":"Groceries","category":"food","amount":"50.00","date":%q}`, today),
		fmt.Sprintf(`{"title":"Snacks","category":"food","amount":"4.30","date":%q}`, today),
		fmt.Sprintf(`{"title":"Bus pass","category":"travel","amount":"30","date":%q}`, today),
	} {
		rec := app.request("POST", "/api/expenses/", body, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create expense: expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}
	rec := app.request("POST", "/api/income/",
		fmt.Sprintf(`{"source":"Salary","amount":"100","date":%q}`, today), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/expenses/by_category/", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("by_category: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	categories := parseJSON(t, rec)["categories"].([]interface{})
	if len(categories) != 2 {
		t.Fatalf("expected two categories, got %v", categories)
	}
	food := categories[0].(map[string]interface{})
	if food["category"] != "food" || food["total"] != "54.3" {
		t.Errorf("expected food 54.3 first, got %v", food)
	}

	rec = app.request("GET", "/api/dashboard/", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)
	if summary["total_expenses"] != "84.3" {
		t.Errorf("expected total expenses 84.3, got %v", summary["total_expenses"])
	}
	if summary["balance"] != "15.7" {
		t.Errorf("expected balance 15.7, got %v", summary["balance"])
	}
	if summary["month_expenses"] != "84.3" {
		t.Errorf("expected month expenses 84.3, got %v", summary["month_expenses"])
	}

	rec = app.request("GET", "/api/activity/?page_size=2", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("activity: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	activity := parseJSON(t, rec)
	// register, login, three expenses and one income
	if activity["total_items"] != float64(6) {
		t.Errorf("expected 6 audit entries, got %v", activity["total_items"])
	}
	if activity["has_next"] != true {
		t.Errorf("expected more pages, got %v", activity["has_next"])
	}
}

func TestSavingsGoalFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.signUp(t, "dave")
	deadline := models.Today().AddMonths(6).String()

	rec := app.request("POST", "/api/savings-goals/",
		fmt.Sprintf(`{"name":"Holiday","target_amount":"1000","deadline":%q}`, deadline), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	goalID := parseJSON(t, rec)["savings_goal"].(map[string]interface{})["id"].(string)

	rec = app.request("PATCH", "/api/savings-goals/"+goalID+"/add_funds/", `{"amount":"250"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("add funds: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	goal := parseJSON(t, rec)["savings_goal"].(map[string]interface{})
	if goal["current_amount"] != "250" || goal["progress_percentage"] != "25" {
		t.Errorf("unexpected goal after deposit %v", goal)
	}

	rec = app.request("PATCH", "/api/savings-goals/"+goalID+"/add_funds/", `{"amount":"-5"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative deposit: expected 400, got %d", rec.Code)
	}
}
