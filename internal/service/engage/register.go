package engage

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campusmatch/matchengine/internal/app"
)

// Registrar ties the engage service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the engage service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the engage routes to the router
func (r *Registrar) Register(router *mux.Router) {
	service := NewService(r.appCtx)
	router.HandleFunc("/likes", service.HandleLike).Methods(http.MethodPost)
	router.HandleFunc("/dislikes", service.HandleDislike).Methods(http.MethodPost)
	router.HandleFunc("/likes/count", service.HandleLikeCount).Methods(http.MethodGet)
	router.HandleFunc("/matches", service.HandleMatches).Methods(http.MethodGet)
}
