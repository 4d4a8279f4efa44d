package handler

import (
	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/middleware"
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/deppfellow/tours-api/internal/service"
	"github.com/labstack/echo/v4"
)

const (
	MsgProfileUpdated = "Profile updated successfully."
	MsgPhotoUpdated   = "Photo updated successfully."
	MsgMissingPhoto   = "Please upload a photo in the 'photo' field."
	MsgUsersRetrieved = "Users retrieved successfully"
)

type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(h Handler, users *service.UserService) *UserHandler {
	return &UserHandler{Handler: h, users: users}
}

// currentUser is the user attached by Protect. Routes using it are always
// protected.
func currentUser(c echo.Context) *model.User {
	return middleware.GetUser(c)
}

func (h *UserHandler) List(c echo.Context, _ *EmptyRequest) (*Response, error) {
	values := listValues(c)
	users, page, err := h.users.List(c.Request().Context(), values)
	if err != nil {
		return nil, err
	}
	projected, err := projectFields(users, values, nil)
	if err != nil {
		return nil, err
	}
	return list(c, MsgUsersRetrieved, page, "users", projected), nil
}

func (h *UserHandler) Me(c echo.Context, _ *EmptyRequest) (*Response, error) {
	return success(c, MsgUserRetrieved, Data{"user": currentUser(c)}), nil
}

func (h *UserHandler) UpdateProfile(c echo.Context, req *UpdateProfileRequest) (*Response, error) {
	user, err := h.users.UpdateProfile(c.Request().Context(), currentUser(c), req.Name, req.Photo)
	if err != nil {
		return nil, err
	}
	return success(c, MsgProfileUpdated, Data{"user": user}), nil
}

// UpdatePhoto stores the multipart "photo" file as the user's photo.
func (h *UserHandler) UpdatePhoto(c echo.Context, _ *EmptyRequest) (*Response, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		return nil, errs.NewBadRequestError(MsgMissingPhoto, nil, nil, nil)
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	user, err := h.users.UploadPhoto(c.Request().Context(), currentUser(c), file, header.Size, header.Header.Get(echo.HeaderContentType))
	if err != nil {
		return nil, err
	}
	return success(c, MsgPhotoUpdated, Data{"user": user}), nil
}

func (h *UserHandler) DeleteAccount(c echo.Context, _ *EmptyRequest) error {
	return h.users.Deactivate(c.Request().Context(), currentUser(c))
}

func (h *UserHandler) Service() *service.UserService { return h.users }
