package discover

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campusmatch/matchengine/internal/app"
)

// Registrar ties the discover service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the discover service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the discover routes to the router
func (r *Registrar) Register(router *mux.Router) {
	service := NewService(r.appCtx)
	router.HandleFunc("/discover", service.HandleRank).Methods(http.MethodGet)
	router.HandleFunc("/discover/search", service.HandleSearch).Methods(http.MethodGet)
}
