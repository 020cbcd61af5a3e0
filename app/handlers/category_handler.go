package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-classifieds/app/helpers"
	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/Rakhulsr/go-classifieds/app/repositories"
	"github.com/Rakhulsr/go-classifieds/app/utils/pagination"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

type CategoryHandler struct {
	baseHandler
	repo repositories.CategoryRepositoryImpl
}

func NewCategoryHandler(c repositories.CategoryRepositoryImpl, r *render.Render, v *validator.Validate, p pagination.Paginator) *CategoryHandler {
	return &CategoryHandler{
		baseHandler: baseHandler{render: r, validator: v, pager: p},
		repo:        c,
	}
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func toCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, page, err := h.repo.GetPaginated(r.Context(), h.pager, r.URL.Query().Get("page"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	items := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResponse(&categories[i]))
	}

	_ = h.render.JSON(w, http.StatusOK, listResponse{Items: items, Total: page.Total, NumPage: page.NumPages})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := helpers.DecodeAndValidate(r, h.validator, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	category := &models.Category{Name: req.Name}
	if err := h.repo.Create(r.Context(), category); err != nil {
		h.respondError(w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *CategoryHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	category, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if category == nil {
		h.notFound(w, r)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	category, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if category == nil {
		h.notFound(w, r)
		return
	}

	var req CategoryRequest
	if err := helpers.DecodeAndValidate(r, h.validator, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	category.Name = req.Name
	if err := h.repo.Update(r.Context(), category); err != nil {
		h.respondError(w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, toCategoryResponse(category))
}

// Delete reports success whether or not the category existed.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if id, err := helpers.PathID(r); err == nil {
		if err := h.repo.Delete(r.Context(), id); err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	_ = h.render.JSON(w, http.StatusOK, statusOK)
}
