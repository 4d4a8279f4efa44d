package router

import (
	"net/http"

	"github.com/deppfellow/tours-api/internal/handler"
	"github.com/deppfellow/tours-api/internal/middleware"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/labstack/echo/v4"
)

func registerV1Routes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	registerUserRoutes(v1.Group("/users"), h, m)
	registerTourRoutes(v1.Group("/tours"), h, m)
	registerReviewRoutes(v1.Group("/reviews", m.Auth.Protect), h)
}

func registerUserRoutes(users *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	auth := h.Auth
	users.POST("/signup", handler.Handle(auth.Handler, auth.Signup, http.StatusCreated, &handler.SignupRequest{}))
	users.POST("/login", handler.Handle(auth.Handler, auth.Login, http.StatusOK, &handler.LoginRequest{}))
	users.POST("/forgot-password", handler.Handle(auth.Handler, auth.ForgotPassword, http.StatusOK, &handler.ForgotPasswordRequest{}))
	users.PATCH("/reset-password/:token", handler.Handle(auth.Handler, auth.ResetPassword, http.StatusOK, &handler.ResetPasswordRequest{}))

	me := users.Group("", m.Auth.Protect)
	u := h.Users
	me.GET("/me", handler.Handle(u.Handler, u.Me, http.StatusOK, &handler.EmptyRequest{}))
	me.PATCH("/update-password", handler.Handle(auth.Handler, auth.UpdatePassword, http.StatusOK, &handler.UpdatePasswordRequest{}))
	me.PATCH("/update-profile", handler.Handle(u.Handler, u.UpdateProfile, http.StatusOK, &handler.UpdateProfileRequest{}))
	if u.Service().PhotosEnabled() {
		me.PUT("/update-photo", handler.Handle(u.Handler, u.UpdatePhoto, http.StatusOK, &handler.EmptyRequest{}))
	}
	me.DELETE("/delete-account", handler.HandleNoContent(u.Handler, u.DeleteAccount, http.StatusNoContent, &handler.EmptyRequest{}))

	admin := users.Group("", m.Auth.Protect, middleware.RestrictTo(model.RoleAdmin))
	admin.GET("", handler.Handle(u.Handler, u.List, http.StatusOK, &handler.EmptyRequest{}))
	admin.GET("/:id", handler.GetOne(u.Handler, &handler.ByIDRequest{}, "user", handler.MsgUserRetrieved, u.Service().GetByID))
	admin.PATCH("/:id", handler.UpdateOne(u.Handler, &handler.UpdateUserRequest{}, u.Service().UpdateByID))
	admin.DELETE("/:id", handler.DeleteOne(u.Handler, &handler.ByIDRequest{}, u.Service().DeleteByID))
}

func registerTourRoutes(tours *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	t := h.Tours
	tours.GET("/top-5-cheap", handler.Handle(t.Handler, t.List, http.StatusOK, &handler.EmptyRequest{}), handler.AliasTopTours())
	tours.GET("/basic-metrics", handler.Handle(t.Handler, t.Metrics, http.StatusOK, &handler.EmptyRequest{}))
	tours.GET("/monthly-stats/:year", handler.Handle(t.Handler, t.MonthlyStats, http.StatusOK, &handler.MonthlyStatsRequest{}))

	protected := tours.Group("", m.Auth.Protect)
	protected.GET("", handler.Handle(t.Handler, t.List, http.StatusOK, &handler.EmptyRequest{}))
	protected.GET("/:id", handler.GetOne(t.Handler, &handler.ByIDRequest{}, "tour", handler.MsgTourRetrieved, t.Service().GetByID))

	r := h.Reviews
	protected.GET("/:tourId/reviews", handler.Handle(r.Handler, r.List, http.StatusOK, &handler.TourReviewsRequest{}))
	protected.POST("/:tourId/reviews", handler.Handle(r.Handler, r.Create, http.StatusCreated, &handler.CreateReviewRequest{}),
		middleware.RestrictTo(model.RoleUser))

	staff := tours.Group("", m.Auth.Protect, middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide))
	staff.POST("", handler.Handle(t.Handler, t.Create, http.StatusCreated, &handler.CreateTourRequest{}))
	staff.PATCH("/:id", handler.UpdateOne(t.Handler, &handler.UpdateTourRequest{}, t.Service().UpdateByID))
	staff.DELETE("/:id", handler.DeleteOne(t.Handler, &handler.ByIDRequest{}, t.Service().DeleteByID))
}

func registerReviewRoutes(reviews *echo.Group, h *handler.Handlers) {
	r := h.Reviews
	reviews.GET("", handler.Handle(r.Handler, r.List, http.StatusOK, &handler.TourReviewsRequest{}))
	reviews.GET("/:id", handler.GetOne(r.Handler, &handler.ByIDRequest{}, "review", handler.MsgReviewRetrieved, r.Service().GetByID))

	owner := []echo.MiddlewareFunc{middleware.RestrictTo(model.RoleUser, model.RoleAdmin), r.RequireReviewOwner()}
	reviews.PATCH("/:id", handler.UpdateOne(r.Handler, &handler.UpdateReviewRequest{}, r.Service().UpdateByID), owner...)
	reviews.DELETE("/:id", handler.DeleteOne(r.Handler, &handler.ByIDRequest{}, r.Service().DeleteByID), owner...)
}
