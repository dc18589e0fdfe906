package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/arsalan-rana/cricket-bracket/handlers"
	"github.com/arsalan-rana/cricket-bracket/middleware"
	"github.com/arsalan-rana/cricket-bracket/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	fixtureHandler *handlers.FixtureHandler,
	submissionHandler *handlers.SubmissionHandler,
	chipHandler *handlers.ChipHandler,
	bonusHandler *handlers.BonusHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	adminOnly := middleware.Authorize(models.RoleAdmin)

	// Публичные маршруты
	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)
	router.Get("/fixtures", fixtureHandler.List)
	router.Get("/bonus/questions", bonusHandler.Questions)
	router.Get("/leaderboard", leaderboardHandler.Standings)
	router.Get("/leaderboard/{phase}", leaderboardHandler.PhaseScores)
	router.Get("/activity", leaderboardHandler.Activity)
	router.Get("/ws/leaderboard", webSocketHandler.ServeWs)

	// Маршруты участника
	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/predictions", submissionHandler.Save)
		r.Get("/predictions/{phase}", submissionHandler.Picks)
		r.Get("/predictions/{phase}/status", submissionHandler.Status)

		r.Post("/chips/double-up/{match}", chipHandler.ActivateDoubleUp)
		r.Post("/chips/wildcard/{match}", chipHandler.ActivateWildcard)
		r.Post("/chips/wildcard/{match}/register", chipHandler.RegisterWildcard)
		r.Get("/chips", chipHandler.Usage)

		r.Post("/bonus/answers", bonusHandler.SaveAnswers)
		r.Get("/bonus/answers", bonusHandler.Answers)
	})

	// Маршруты администратора
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Put("/admin/fixtures/{match}", fixtureHandler.UpdateWinner)
		r.Put("/admin/bonus/{question}", bonusHandler.SetActualAnswer)
		r.Post("/admin/phases/{phase}/finalize-drafts", submissionHandler.FinalizeDrafts)
		r.Post("/admin/recompute", leaderboardHandler.Recompute)
	})
}
