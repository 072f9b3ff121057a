package api

import (
	"net/http"

	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/service"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Role groups used by the route table.
var (
	managementRoles = []domain.Role{domain.RoleAdmin, domain.RoleManager}
	frontDeskRoles  = []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleReceptionist}
	coachingRoles   = []domain.Role{
		domain.RoleAdmin, domain.RoleManager, domain.RoleTrainer,
		domain.RoleInstructor, domain.RoleNutritionist, domain.RolePhysiotherapist,
	}
	classRoles = []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleInstructor}
	staffRoles = staff()
)

func staff() []domain.Role {
	var out []domain.Role
	for _, r := range domain.Roles {
		if r.IsStaff() {
			out = append(out, r)
		}
	}
	return out
}

func hasRole(role domain.Role, group []domain.Role) bool {
	for _, r := range group {
		if r == role {
			return true
		}
	}
	return false
}

func isManagement(role domain.Role) bool { return hasRole(role, managementRoles) }
func isFrontDesk(role domain.Role) bool  { return hasRole(role, frontDeskRoles) }

// Services bundles what the handlers depend on besides the store.
type Services struct {
	Auth      service.AuthService
	Activity  service.ActivityService
	Coach     service.CoachService
	Nutrition service.NutritionService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, store *state.Store, svc Services) {
	authHandler := NewAuthHandler(svc.Auth, store)
	memberHandler := NewMemberHandler(store, svc.Auth, svc.Activity)
	classHandler := NewClassHandler(store, svc.Activity)
	socialHandler := NewSocialHandler(store)
	opsHandler := NewOperationsHandler(store)
	financeHandler := NewFinanceHandler(store)
	engagementHandler := NewEngagementHandler(store)
	assistantHandler := NewAssistantHandler(store, svc.Coach, svc.Nutrition)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)

		// --- Users and membership ---
		users := protected.Group("/users")
		{
			users.GET("", RoleMiddleware(staffRoles...), memberHandler.ListUsers)
			users.POST("", RoleMiddleware(domain.RoleAdmin), memberHandler.CreateUser)
			users.GET("/:id", memberHandler.GetUser)
			users.PUT("/:id", memberHandler.UpdateUser)
			users.POST("/:id/trainers", RoleMiddleware(frontDeskRoles...), memberHandler.AssignTrainer)
			users.POST("/:id/achievements", RoleMiddleware(coachingRoles...), memberHandler.GrantAchievement)
			users.GET("/:id/workouts", memberHandler.GetWorkouts)
			users.POST("/:id/workouts", memberHandler.LogWorkout)
			users.GET("/:id/progress", memberHandler.GetProgress)
			users.GET("/:id/exercises", memberHandler.GetExerciseNames)
		}
		protected.GET("/trainer/clients", RoleMiddleware(domain.RoleTrainer), memberHandler.GetMyClients)
		protected.POST("/membership/purchase", RoleMiddleware(domain.RoleClient), memberHandler.PurchaseMembership)

		tiers := protected.Group("/tiers")
		{
			tiers.GET("", financeHandler.ListTiers)
			tiers.POST("", RoleMiddleware(managementRoles...), financeHandler.CreateTier)
			tiers.PUT("/:id", RoleMiddleware(managementRoles...), financeHandler.UpdateTier)
			tiers.DELETE("/:id", RoleMiddleware(managementRoles...), financeHandler.DeleteTier)
		}

		// --- Classes ---
		classes := protected.Group("/classes")
		{
			classes.GET("", classHandler.ListClasses)
			classes.POST("", RoleMiddleware(classRoles...), classHandler.CreateClass)
			classes.GET("/occupancy", RoleMiddleware(staffRoles...), classHandler.Occupancy)
			classes.POST("/:id/book", classHandler.BookClass)
			classes.DELETE("/:id/book", classHandler.CancelBooking)
		}

		// --- Communication ---
		notifications := protected.Group("/notifications")
		{
			notifications.GET("", socialHandler.ListNotifications)
			notifications.POST("/read-all", socialHandler.MarkAllNotificationsRead)
			notifications.POST("/:id/read", socialHandler.MarkNotificationRead)
		}
		messages := protected.Group("/messages")
		{
			messages.POST("", socialHandler.SendMessage)
			messages.GET("/unread-count", socialHandler.UnreadCount)
			messages.GET("/with/:userId", socialHandler.GetConversation)
			messages.POST("/with/:userId/read", socialHandler.MarkConversationRead)
		}
		posts := protected.Group("/posts")
		{
			posts.GET("", socialHandler.ListPosts)
			posts.POST("", socialHandler.CreatePost)
			posts.POST("/:id/like", socialHandler.LikePost)
			posts.POST("/:id/comments", socialHandler.AddComment)
		}
		protected.GET("/announcements", socialHandler.ListAnnouncements)
		protected.POST("/announcements", RoleMiddleware(managementRoles...), socialHandler.CreateAnnouncement)

		// --- Operations (staff only) ---
		ops := protected.Group("")
		ops.Use(RoleMiddleware(staffRoles...))
		{
			ops.GET("/tasks", opsHandler.ListTasks)
			ops.POST("/tasks", RoleMiddleware(managementRoles...), opsHandler.CreateTask)
			ops.PUT("/tasks/:id", opsHandler.UpdateTask)
			ops.DELETE("/tasks/:id", RoleMiddleware(managementRoles...), opsHandler.DeleteTask)

			ops.GET("/equipment", opsHandler.ListEquipment)
			ops.POST("/equipment", RoleMiddleware(managementRoles...), opsHandler.CreateEquipment)
			ops.PUT("/equipment/:id", RoleMiddleware(managementRoles...), opsHandler.UpdateEquipment)
			ops.PATCH("/equipment/:id/status", opsHandler.SetEquipmentStatus)
			ops.DELETE("/equipment/:id", RoleMiddleware(managementRoles...), opsHandler.DeleteEquipment)

			ops.GET("/incidents", opsHandler.ListIncidents)
			ops.POST("/incidents", opsHandler.ReportIncident)
			ops.POST("/incidents/:id/resolve", RoleMiddleware(managementRoles...), opsHandler.ResolveIncident)
		}

		// --- Finance (management only) ---
		finance := protected.Group("")
		finance.Use(RoleMiddleware(managementRoles...))
		{
			finance.GET("/payments", financeHandler.ListPayments)
			finance.POST("/payments", financeHandler.RecordPayment)
			finance.GET("/expenses", financeHandler.ListExpenses)
			finance.POST("/expenses", financeHandler.CreateExpense)
			finance.GET("/budgets", financeHandler.ListBudgets)
			finance.PUT("/budgets", financeHandler.SetBudget)
			finance.GET("/reports/finance", financeHandler.Report)
		}

		// --- Engagement ---
		protected.GET("/achievements", engagementHandler.ListAchievements)
		protected.POST("/achievements", RoleMiddleware(managementRoles...), engagementHandler.CreateAchievement)
		protected.GET("/challenges", engagementHandler.ListChallenges)
		protected.POST("/challenges", RoleMiddleware(coachingRoles...), engagementHandler.CreateChallenge)
		protected.POST("/challenges/:id/join", engagementHandler.JoinChallenge)
		protected.GET("/leaderboard", engagementHandler.Leaderboard)
		protected.GET("/routines", engagementHandler.ListRoutines)
		protected.POST("/routines", RoleMiddleware(coachingRoles...), engagementHandler.CreateRoutine)

		// --- AI assistant ---
		protected.POST("/coach", assistantHandler.AskCoach)
		protected.GET("/coach/history", assistantHandler.CoachHistory)
		protected.DELETE("/coach/history", assistantHandler.ClearCoachHistory)
		meals := protected.Group("/meals")
		{
			meals.GET("", assistantHandler.ListMeals)
			meals.POST("", assistantHandler.LogMeal)
			meals.PUT("/:id", assistantHandler.UpdateMeal)
			meals.GET("/:id/photo", assistantHandler.MealPhoto)
		}
	}
}
