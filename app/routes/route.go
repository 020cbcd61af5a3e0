package routes

import (
	"net/http"

	"github.com/Rakhulsr/go-classifieds/app/configs"
	"github.com/Rakhulsr/go-classifieds/app/handlers"
	"github.com/Rakhulsr/go-classifieds/app/helpers"
	"github.com/Rakhulsr/go-classifieds/app/middlewares"
	"github.com/Rakhulsr/go-classifieds/app/repositories"
	"github.com/Rakhulsr/go-classifieds/app/storage"
	"github.com/Rakhulsr/go-classifieds/app/utils/pagination"
	"github.com/Rakhulsr/go-classifieds/app/utils/renderer"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const idPattern = "{id:[0-9]+}"

// NewRouter wires repositories, handlers and middleware into the HTTP
// handler served by the application.
func NewRouter(db *gorm.DB, env configs.ENV, store storage.BlobStore, logger zerolog.Logger) http.Handler {
	render := renderer.New(env.Debug)
	validate := helpers.NewValidator()
	pager := pagination.New(env.TotalOnPage)

	categoryRepo := repositories.NewCategoryRepository(db)
	userRepo := repositories.NewUserRepository(db)
	adRepo := repositories.NewAdRepository(db)

	homeHandler := handlers.NewHomeHandler(render)
	adHandler := handlers.NewAdHandler(adRepo, userRepo, categoryRepo, store, env.MaxUploadBytes(), render, validate, pager)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo, render, validate, pager)
	userHandler := handlers.NewUserHandler(userRepo, store, render, validate, pager)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = render.JSON(w, http.StatusNotFound, map[string]string{"error": helpers.NotFoundMessage})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = render.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": http.StatusText(http.StatusMethodNotAllowed)})
	})

	router.HandleFunc("/", homeHandler.Home).Methods("GET")

	router.HandleFunc("/ad/", adHandler.List).Methods("GET")
	router.HandleFunc("/ad/create/", adHandler.Create).Methods("POST")
	router.HandleFunc("/ad/"+idPattern, adHandler.Detail).Methods("GET")
	router.HandleFunc("/ad/"+idPattern+"/add_image/", adHandler.AddImage).Methods("POST")
	router.HandleFunc("/ad/"+idPattern+"/update/", adHandler.Update).Methods("PATCH")
	router.HandleFunc("/ad/"+idPattern+"/delete/", adHandler.Delete).Methods("DELETE")

	router.HandleFunc("/cat/", categoryHandler.List).Methods("GET")
	router.HandleFunc("/cat/create/", categoryHandler.Create).Methods("POST")
	router.HandleFunc("/cat/"+idPattern, categoryHandler.Detail).Methods("GET")
	router.HandleFunc("/cat/"+idPattern+"/update/", categoryHandler.Update).Methods("PATCH")
	router.HandleFunc("/cat/"+idPattern+"/delete/", categoryHandler.Delete).Methods("DELETE")

	router.HandleFunc("/user/", userHandler.List).Methods("GET")
	router.HandleFunc("/user/create/", userHandler.Create).Methods("POST")
	router.HandleFunc("/user/Z/", userHandler.ListWithAdCount).Methods("GET")
	router.HandleFunc("/user/"+idPattern, userHandler.Detail).Methods("GET")
	router.HandleFunc("/user/"+idPattern+"/update/", userHandler.Update).Methods("PATCH")
	router.HandleFunc("/user/"+idPattern+"/delete/", userHandler.Delete).Methods("DELETE")

	if env.Debug {
		router.PathPrefix(env.MediaURL).Handler(
			http.StripPrefix(env.MediaURL, http.FileServer(http.Dir(env.MediaRoot))),
		).Methods("GET", "HEAD")
	}

	var handler http.Handler = router
	handler = middlewares.MethodOverrideMiddleware(handler)
	handler = middlewares.Recoverer(render)(handler)
	handler = middlewares.RequestLogger(logger)(handler)
	return handler
}
