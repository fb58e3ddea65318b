package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	pharmacyctrl "medreserve/internal/pharmacy/controller"
	reservationctrl "medreserve/internal/reservation/controller"
	searchctrl "medreserve/internal/search/controller"
)

func NewRouter(
	searchCtrl *searchctrl.SearchController,
	reservationCtrl *reservationctrl.ReservationController,
	pharmacyCtrl *pharmacyctrl.PharmacyController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/pharmacy", func(r chi.Router) {
		r.Post("/search", searchCtrl.HandleSearch)
		r.Get("/recommendations/{userID}", searchCtrl.HandleRecommendations)

		r.Post("/reserve", reservationCtrl.HandleReserve)
		r.Post("/pickup/{reservationID}", reservationCtrl.HandlePickup)
		r.Post("/cancel/{reservationID}", reservationCtrl.HandleCancel)
		r.Get("/reservations/{userID}", reservationCtrl.HandleListReservations)

		r.Get("/list", pharmacyCtrl.HandleList)
		r.Get("/inventory/{pharmacyID}", pharmacyCtrl.HandleInventory)
	})

	return r
}
