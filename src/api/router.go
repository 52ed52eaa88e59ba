package api

import (
	"net/http"

	"tally-server/src/handlers"
	"tally-server/src/logging"
	"tally-server/src/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const adminRole = "service_role"

// Deps are the services the router hands to its handlers.
type Deps struct {
	Budgets      handlers.BudgetManager
	Expenses     handlers.ExpenseManager
	FoodReviews  handlers.FoodReviewManager
	FoodToTry    handlers.FoodToTryManager
	Geocoder     handlers.Geocoder
	GeocodeCache handlers.CacheClearer

	Logger         *logging.Logger
	JWTSecret      string
	JWTAudience    string
	AllowedOrigins []string
	DemoMode       bool
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(logging.Middleware(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(deps.AllowedOrigins))
	r.Use(middleware.DemoModeMiddleware(deps.DemoMode))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		auth := middleware.JWTAuthMiddleware(deps.JWTSecret, deps.JWTAudience)

		// Protected routes
		r.With(auth).Group(func(r chi.Router) {
			r.Get("/me", handlers.GetMe())

			// Budget
			r.Get("/budget", handlers.GetBudget(deps.Budgets))
			r.Post("/budget", handlers.SaveBudget(deps.Budgets))
			r.Put("/budget", handlers.SaveBudget(deps.Budgets))
			r.Patch("/budget", handlers.PatchBudget(deps.Budgets))
			r.Delete("/budget", handlers.DeleteBudget(deps.Budgets))
			r.Get("/budget/list", handlers.ListBudgets(deps.Budgets))
			r.Post("/budget/copy", handlers.CopyBudget(deps.Budgets))
			r.Post("/budget/resolve", handlers.ResolveBudget(deps.Budgets))

			// Expenses
			r.Get("/expenses", handlers.ListExpenses(deps.Expenses))
			r.Post("/expenses", handlers.CreateExpense(deps.Expenses))
			r.Get("/expenses/summary", handlers.ExpenseSummary(deps.Expenses))
			r.Get("/expenses/{id}", handlers.GetExpense(deps.Expenses))
			r.Patch("/expenses/{id}", handlers.UpdateExpense(deps.Expenses))
			r.Delete("/expenses/{id}", handlers.DeleteExpense(deps.Expenses))
			r.Get("/categories", handlers.ListCategories())

			// Food reviews
			r.Get("/food-reviews", handlers.ListFoodReviews(deps.FoodReviews))
			r.Post("/food-reviews", handlers.CreateFoodReview(deps.FoodReviews))
			r.Delete("/food-reviews/photos/{photo_id}", handlers.DeletePhoto(deps.FoodReviews))
			r.Get("/food-reviews/{id}", handlers.GetFoodReview(deps.FoodReviews))
			r.Patch("/food-reviews/{id}", handlers.UpdateFoodReview(deps.FoodReviews))
			r.Delete("/food-reviews/{id}", handlers.DeleteFoodReview(deps.FoodReviews))
			r.Post("/food-reviews/{id}/dishes", handlers.AddDish(deps.FoodReviews))
			r.Post("/food-reviews/{id}/photos", handlers.AddPhotos(deps.FoodReviews))

			// Food to try
			r.Get("/food-to-try", handlers.ListFoodToTry(deps.FoodToTry))
			r.Post("/food-to-try", handlers.CreateFoodToTry(deps.FoodToTry))
			r.Get("/food-to-try/roulette", handlers.FoodRoulette(deps.FoodToTry))
			r.Get("/food-to-try/{id}", handlers.GetFoodToTry(deps.FoodToTry))
			r.Patch("/food-to-try/{id}", handlers.UpdateFoodToTry(deps.FoodToTry))
			r.Delete("/food-to-try/{id}", handlers.DeleteFoodToTry(deps.FoodToTry))

			// Geocoding
			r.Get("/geocode/search", handlers.GeocodeSearch(deps.Geocoder))
			r.Get("/geocode/reverse", handlers.ReverseGeocode(deps.Geocoder))
		})

		// Admin routes
		r.With(auth, middleware.RequireRole(adminRole)).Group(func(r chi.Router) {
			r.Post("/admin/cache/geocode/clear", handlers.ClearGeocodeCache(deps.GeocodeCache))
		})
	})

	return r
}
