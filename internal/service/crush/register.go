package crush

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campusmatch/matchengine/internal/app"
)

// Registrar ties the crush service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the crush service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the crush routes to the router
func (r *Registrar) Register(router *mux.Router) {
	service := NewService(r.appCtx)
	router.HandleFunc("/crushes", service.HandleSend).Methods(http.MethodPost)
	router.HandleFunc("/crushes/sent", service.HandleSent).Methods(http.MethodGet)
	router.HandleFunc("/crushes/remaining", service.HandleRemaining).Methods(http.MethodGet)
}
