package router

import (
	"net/http"

	"filepower/backend/app/controllers"
	"filepower/backend/app/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Controllers struct {
	HTTP     *controllers.HTTPController
	Auth     *controllers.AuthController
	Admin    *controllers.AdminController
	FileTree *controllers.FileTreeController
	Activity *controllers.ActivityController
}

func NewRouter(c Controllers, mw *middleware.Auth, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", "X-Attempts-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// public
	r.Get("/healthz", c.HTTP.Healthz)
	r.Get("/readyz", c.HTTP.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", c.Auth.Login)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)
			authenticated(r, c, mw)
		})
	})

	return r
}

func authenticated(r chi.Router, c Controllers, mw *middleware.Auth) {
	r.Get("/me", c.Auth.Me)

	r.Route("/folders", func(r chi.Router) {
		r.Get("/", c.FileTree.ListFolders)
		r.Post("/", c.FileTree.CreateFolder)
		r.Get("/{id}", c.FileTree.GetFolder)
		r.Patch("/{id}", c.FileTree.RenameFolder)
		r.Delete("/{id}", c.FileTree.DeleteFolder)
	})

	r.Route("/files", func(r chi.Router) {
		r.Get("/", c.FileTree.ListFiles)
		r.Post("/", c.FileTree.Upload)
		r.Get("/exists", c.FileTree.Exists)
		r.Get("/search", c.FileTree.SearchFiles)
		r.Get("/{id}", c.FileTree.GetFile)
		r.Get("/{id}/content", c.FileTree.Download)
		r.Patch("/{id}", c.FileTree.RenameFile)
		r.Post("/{id}/move", c.FileTree.MoveFile)
		r.Delete("/{id}", c.FileTree.DeleteFile)
	})

	r.Get("/logs", c.Activity.List)

	r.Get("/users", c.Admin.Directory)
	r.Get("/users/lookup", c.Admin.Lookup)
	// admin only
	r.With(mw.RequireAdmin).Post("/users", c.Admin.CreateUser)
	r.With(mw.RequireAdmin).Delete("/users/{id}", c.Admin.DeleteUser)
}
