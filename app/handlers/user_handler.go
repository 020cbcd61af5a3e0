package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-classifieds/app/helpers"
	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/Rakhulsr/go-classifieds/app/repositories"
	"github.com/Rakhulsr/go-classifieds/app/storage"
	"github.com/Rakhulsr/go-classifieds/app/utils/pagination"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/render"
)

type UserHandler struct {
	baseHandler
	repo  repositories.UserRepositoryImpl
	store storage.BlobStore
}

func NewUserHandler(u repositories.UserRepositoryImpl, store storage.BlobStore, r *render.Render, v *validator.Validate, p pagination.Paginator) *UserHandler {
	return &UserHandler{
		baseHandler: baseHandler{render: r, validator: v, pager: p},
		repo:        u,
		store:       store,
	}
}

// UserRequest is the body of both create and update. Location names are
// resolved get-or-create and only ever added to the user.
type UserRequest struct {
	FirstName string   `json:"first_name" validate:"required,max=50"`
	LastName  *string  `json:"last_name" validate:"omitempty,max=50"`
	Username  string   `json:"username" validate:"required,max=50"`
	Password  string   `json:"password" validate:"required,max=50,bcryptlen"`
	Role      string   `json:"role" validate:"omitempty,oneof=member moderator admin"`
	Age       *int16   `json:"age" validate:"required,min=0"`
	Location  []string `json:"location" validate:"dive,required,max=100"`
}

// UserResponse never carries the password.
type UserResponse struct {
	ID        uint     `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Username  string   `json:"username"`
	Role      string   `json:"role"`
	Age       int16    `json:"age"`
	Location  []string `json:"location"`
}

type UserAdCountResponse struct {
	UserResponse
	TotalAds int64 `json:"total_ads"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Role:      u.Role,
		Age:       u.Age,
		Location:  u.LocationNames(),
	}
}

func applyUserRequest(u *models.User, req *UserRequest) {
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.Username = req.Username
	u.Password = req.Password
	u.Role = req.Role
	u.Age = *req.Age
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, page, err := h.repo.GetPaginated(r.Context(), h.pager, r.URL.Query().Get("page"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}

	_ = h.render.JSON(w, http.StatusOK, userListResponse{Items: items, Total: page.Total, NumPages: page.NumPages})
}

// ListWithAdCount lists users with the number of their published ads.
func (h *UserHandler) ListWithAdCount(w http.ResponseWriter, r *http.Request) {
	users, page, err := h.repo.GetPaginatedWithAdCount(r.Context(), h.pager, r.URL.Query().Get("page"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	items := make([]UserAdCountResponse, 0, len(users))
	for i := range users {
		items = append(items, UserAdCountResponse{
			UserResponse: toUserResponse(&users[i].User),
			TotalAds:     users[i].TotalAds,
		})
	}

	_ = h.render.JSON(w, http.StatusOK, userListResponse{Items: items, Total: page.Total, NumPages: page.NumPages})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := helpers.DecodeAndValidate(r, h.validator, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user := &models.User{}
	applyUserRequest(user, &req)

	if err := h.repo.Create(r.Context(), user, req.Location); err != nil {
		h.respondError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Uint("user_id", user.ID).Msg("user created")
	_ = h.render.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user, err := h.findUser(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := h.findUser(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req UserRequest
	if err := helpers.DecodeAndValidate(r, h.validator, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	applyUserRequest(user, &req)
	if err := h.repo.Update(r.Context(), user, req.Location); err != nil {
		h.respondError(w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, toUserResponse(user))
}

// Delete removes the user and, with them, their ads and the ads' images.
// It reports success whether or not the user existed.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if id, err := helpers.PathID(r); err == nil {
		images, err := h.repo.Delete(r.Context(), id)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		removeBlobs(r, h.store, images)
	}

	_ = h.render.JSON(w, http.StatusOK, statusOK)
}

func (h *UserHandler) findUser(r *http.Request) (*models.User, error) {
	id, err := helpers.PathID(r)
	if err != nil {
		return nil, err
	}

	user, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, helpers.NewNotFoundError()
	}
	return user, nil
}
