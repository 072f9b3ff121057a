package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/gym-dashboard/internal/ai"
	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/repository/memory"
	"alcyxob/gym-dashboard/internal/service"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "api-test-secret"

type stubAssistant struct{}

func (stubAssistant) Coach(context.Context, []domain.CoachTurn, string) (string, error) {
	return "Keep your back straight.", nil
}

func (stubAssistant) AnalyzeMeal(context.Context, ai.MealInput) (domain.MealAnalysis, error) {
	return domain.MealAnalysis{EstimatedCalories: "500 kcal", Suggestion: "Add vegetables"}, nil
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *state.Store
	auth   service.AuthService
}

func newTestServer(t *testing.T, assistant ai.Assistant) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	store := state.New(ctx, memory.NewFieldStore(), zap.NewNop())
	store.SeedCatalog(ctx)
	logger := zap.NewNop()
	auth := service.NewAuthService(store, testSecret, time.Hour, logger)

	router := gin.New()
	router.Use(RequestLogger(logger))
	SetupRoutes(router, testSecret, store, Services{
		Auth:      auth,
		Activity:  service.NewActivityService(store, logger),
		Coach:     service.NewCoachService(store, assistant, logger),
		Nutrition: service.NewNutritionService(store, assistant, nil, logger),
	})
	return &testServer{t: t, router: router, store: store, auth: auth}
}

// account creates a user of role and returns its ID and a bearer token.
func (s *testServer) account(email string, role domain.Role) (string, string) {
	s.t.Helper()
	u, err := s.auth.CreateStaff(context.Background(), email, email, "password123", role)
	require.NoError(s.t, err)
	token, _, err := s.auth.Login(context.Background(), email, "password123")
	require.NoError(s.t, err)
	return u.ID, token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// =============================================================================
// Middleware
// =============================================================================

func TestAuthMiddleware_Rejections(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/me", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleMiddleware_ClientCannotSeeFinance(t *testing.T) {
	s := newTestServer(t, nil)
	_, clientToken := s.account("client@gym.test", domain.RoleClient)
	_, managerToken := s.account("manager@gym.test", domain.RoleManager)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/payments", clientToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/payments", managerToken, nil).Code)
}

// =============================================================================
// Auth
// =============================================================================

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Name: "Nia", Email: "nia@gym.test", Password: "longenough"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Name: "Nia", Email: "NIA@gym.test", Password: "longenough"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "nia@gym.test", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "nia@gym.test", Password: "longenough"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[LoginResponse](t, w)
	assert.Equal(t, domain.RoleClient, login.User.Role)
	assert.Equal(t, domain.MembershipPending, login.User.Membership.Status)

	w = s.do(http.MethodGet, "/api/v1/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, login.User.ID, decode[UserResponse](t, w).ID)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/api/v1/auth/logout", login.Token, nil).Code)
	_, signedIn := s.store.CurrentUser()
	assert.False(t, signedIn)
}

// =============================================================================
// Users
// =============================================================================

func TestUpdateUser_Permissions(t *testing.T) {
	s := newTestServer(t, nil)
	clientID, clientToken := s.account("c1@gym.test", domain.RoleClient)
	otherID, _ := s.account("c2@gym.test", domain.RoleClient)
	_, deskToken := s.account("desk@gym.test", domain.RoleReceptionist)

	newName := "Renamed"
	w := s.do(http.MethodPut, "/api/v1/users/"+clientID, clientToken, UpdateUserRequest{Name: &newName})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Renamed", decode[UserResponse](t, w).Name)

	w = s.do(http.MethodPut, "/api/v1/users/"+otherID, clientToken, UpdateUserRequest{Name: &newName})
	assert.Equal(t, http.StatusForbidden, w.Code)

	active := domain.Membership{Status: domain.MembershipActive}
	w = s.do(http.MethodPut, "/api/v1/users/"+clientID, clientToken, UpdateUserRequest{Membership: &active})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/v1/users/"+clientID, deskToken, UpdateUserRequest{Membership: &active})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.MembershipActive, decode[UserResponse](t, w).Membership.Status)

	stored, _ := s.store.User(clientID)
	assert.NotEmpty(t, stored.PasswordHash, "profile edits must keep the credential")

	bogus := domain.Membership{Status: "Lifetime"}
	w = s.do(http.MethodPut, "/api/v1/users/"+clientID, deskToken, UpdateUserRequest{Membership: &bogus})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	takenEmail := "c2@gym.test"
	w = s.do(http.MethodPut, "/api/v1/users/"+clientID, clientToken, UpdateUserRequest{Email: &takenEmail})
	assert.Equal(t, http.StatusConflict, w.Code)

	stored, _ = s.store.User(clientID)
	assert.Equal(t, domain.MembershipActive, stored.Membership.Status)
	assert.Equal(t, "c1@gym.test", stored.Email)
}

func TestWorkoutAndProgress(t *testing.T) {
	s := newTestServer(t, nil)
	userID, token := s.account("lifter@gym.test", domain.RoleClient)

	session := domain.WorkoutSession{Exercises: []domain.LoggedExercise{{
		Name:          "Squat",
		CompletedSets: []domain.LoggedSet{{Weight: 100, Reps: 5}, {Weight: 90, Reps: 8}},
	}}}
	w := s.do(http.MethodPost, "/api/v1/users/"+userID+"/workouts", token, session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), state.AchievementFirstWorkout)

	w = s.do(http.MethodGet, "/api/v1/users/"+userID+"/progress?exercise=Squat", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	progress := decode[ProgressResponse](t, w)
	require.Len(t, progress.Points, 1)
	assert.Equal(t, 112.5, progress.Points[0].OneRepMax)

	w = s.do(http.MethodGet, "/api/v1/users/"+userID+"/exercises", token, nil)
	assert.Equal(t, []string{"Squat"}, decode[[]string](t, w))

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/users/"+userID+"/progress", token, nil).Code)
}

// =============================================================================
// Classes
// =============================================================================

func TestBookClass_Outcomes(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	_, adminToken := s.account("admin@gym.test", domain.RoleAdmin)
	firstID, firstToken := s.account("first@gym.test", domain.RoleClient)
	secondID, secondToken := s.account("second@gym.test", domain.RoleClient)

	w := s.do(http.MethodPost, "/api/v1/classes", adminToken, domain.GymClass{Name: "HIIT", Capacity: 1, StartTime: time.Now().Add(24 * time.Hour)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	classID := decode[domain.GymClass](t, w).ID

	book := func(token string) BookingResponse {
		w := s.do(http.MethodPost, "/api/v1/classes/"+classID+"/book", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[BookingResponse](t, w)
	}

	assert.Equal(t, domain.BookingInactiveMembership, book(firstToken).Result)

	for _, id := range []string{firstID, secondID} {
		u, _ := s.store.User(id)
		u.Membership.Status = domain.MembershipActive
		_, err := s.store.UpdateUser(ctx, u)
		require.NoError(t, err)
	}

	first := book(firstToken)
	assert.Equal(t, domain.BookingBooked, first.Result)
	assert.Equal(t, []string{state.AchievementFirstClass}, first.Unlocked)
	assert.Equal(t, domain.BookingAlreadyBooked, book(firstToken).Result)
	assert.Equal(t, domain.BookingFull, book(secondToken).Result)

	class, _ := s.store.Class(classID)
	assert.Equal(t, []string{firstID}, class.BookedClientIDs)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/v1/classes/nope/book", firstToken, nil).Code)
	assert.Equal(t, http.StatusForbidden,
		s.do(http.MethodPost, "/api/v1/classes/"+classID+"/book", firstToken, BookingRequest{UserID: secondID}).Code)
}

// =============================================================================
// Messages
// =============================================================================

func TestMessagesFlow(t *testing.T) {
	s := newTestServer(t, nil)
	aliceID, aliceToken := s.account("alice@gym.test", domain.RoleClient)
	bobID, bobToken := s.account("bob@gym.test", domain.RoleTrainer)

	w := s.do(http.MethodPost, "/api/v1/messages", aliceToken, SendMessageRequest{ReceiverID: bobID, Text: "Hi coach"})
	require.Equal(t, http.StatusCreated, w.Code)
	msg := decode[domain.Message](t, w)
	assert.Equal(t, state.ConversationID(aliceID, bobID), msg.ConversationID)

	w = s.do(http.MethodGet, "/api/v1/messages/unread-count", bobToken, nil)
	assert.Equal(t, 1, decode[map[string]int](t, w)["unread"])

	w = s.do(http.MethodPost, "/api/v1/messages/with/"+bobID+"/read", aliceToken, nil)
	assert.Equal(t, 0, decode[map[string]int](t, w)["updated"], "the sender cannot mark their own message read")

	w = s.do(http.MethodPost, "/api/v1/messages/with/"+aliceID+"/read", bobToken, nil)
	assert.Equal(t, 1, decode[map[string]int](t, w)["updated"])

	w = s.do(http.MethodGet, "/api/v1/messages/with/"+aliceID, bobToken, nil)
	conv := decode[[]domain.Message](t, w)
	require.Len(t, conv, 1)
	assert.True(t, conv[0].IsRead)

	assert.Equal(t, http.StatusNotFound,
		s.do(http.MethodPost, "/api/v1/messages", aliceToken, SendMessageRequest{ReceiverID: "ghost", Text: "?"}).Code)
}

// =============================================================================
// Finance
// =============================================================================

func TestPurchaseMembershipAndReport(t *testing.T) {
	s := newTestServer(t, nil)
	_, clientToken := s.account("buyer@gym.test", domain.RoleClient)
	_, managerToken := s.account("boss@gym.test", domain.RoleManager)

	tier := s.store.Tiers()[0]
	w := s.do(http.MethodPost, "/api/v1/membership/purchase", clientToken, PurchaseMembershipRequest{TierID: tier.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, domain.PaymentCompleted, decode[domain.Payment](t, w).Status)

	w = s.do(http.MethodPost, "/api/v1/membership/purchase", clientToken, PurchaseMembershipRequest{TierID: "gone"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/reports/finance", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[FinanceReport](t, w)
	assert.Equal(t, tier.Price, report.Summary.MonthlyRevenue)
	assert.Equal(t, tier.Price, report.Summary.MRR)
	require.Len(t, report.Summary.Trend, 1)

	w = s.do(http.MethodGet, "/api/v1/notifications", clientToken, nil)
	assert.Len(t, decode[[]domain.Notification](t, w), 1)
}

// =============================================================================
// Assistant
// =============================================================================

func TestCoachEndpoint(t *testing.T) {
	s := newTestServer(t, stubAssistant{})
	_, token := s.account("asker@gym.test", domain.RoleClient)

	w := s.do(http.MethodPost, "/api/v1/coach", token, CoachRequest{Message: "Form tips?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Keep your back straight.", decode[map[string]string](t, w)["reply"])

	w = s.do(http.MethodGet, "/api/v1/coach/history", token, nil)
	assert.Len(t, decode[[]domain.CoachTurn](t, w), 2)
}

func TestCoachEndpoint_Unavailable(t *testing.T) {
	s := newTestServer(t, nil)
	_, token := s.account("asker@gym.test", domain.RoleClient)

	w := s.do(http.MethodPost, "/api/v1/coach", token, CoachRequest{Message: "Hello?"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodGet, "/api/v1/coach/history", token, nil)
	assert.Len(t, decode[[]domain.CoachTurn](t, w), 1, "the question is kept")
}

func TestLogMeal_JSON(t *testing.T) {
	s := newTestServer(t, stubAssistant{})
	_, token := s.account("eater@gym.test", domain.RoleClient)

	w := s.do(http.MethodPost, "/api/v1/meals", token, MealJSONRequest{Description: "Chicken and rice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[MealResponse](t, w)
	require.NotNil(t, resp.Entry.Analysis)
	assert.Equal(t, "500 kcal", resp.Entry.Analysis.EstimatedCalories)
}

func TestLogMeal_MultipartWithoutAI(t *testing.T) {
	s := newTestServer(t, nil)
	_, token := s.account("snapper@gym.test", domain.RoleClient)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("description", "Smoothie"))
	part, err := mw.CreateFormFile("photo", "meal.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/meals", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	resp := decode[MealResponse](t, w)
	assert.Equal(t, "Smoothie", resp.Entry.Description)
	assert.Nil(t, resp.Entry.Analysis)
	assert.NotEmpty(t, resp.Warning)

	w = s.do(http.MethodGet, "/api/v1/meals/"+resp.Entry.ID+"/photo", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no object storage configured, so no photo key")
}

// =============================================================================
// Misc
// =============================================================================

func TestLeaderboardAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	_, token := s.account("runner@gym.test", domain.RoleClient)

	w := s.do(http.MethodGet, "/api/v1/leaderboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
