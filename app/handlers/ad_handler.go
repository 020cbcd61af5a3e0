package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Rakhulsr/go-classifieds/app/helpers"
	"github.com/Rakhulsr/go-classifieds/app/models"
	"github.com/Rakhulsr/go-classifieds/app/repositories"
	"github.com/Rakhulsr/go-classifieds/app/storage"
	"github.com/Rakhulsr/go-classifieds/app/utils/pagination"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

const (
	imageField = "image"
	imageDir   = "images"

	// Ad.Price is decimal(10,0).
	maxPriceDigits = 10
)

// maxPrice is the smallest price that no longer fits the column.
var maxPrice = decimal.New(1, maxPriceDigits)

type AdHandler struct {
	baseHandler
	repo         repositories.AdRepositoryImpl
	userRepo     repositories.UserRepositoryImpl
	categoryRepo repositories.CategoryRepositoryImpl
	store        storage.BlobStore
	maxUpload    int64
}

func NewAdHandler(
	a repositories.AdRepositoryImpl,
	u repositories.UserRepositoryImpl,
	c repositories.CategoryRepositoryImpl,
	store storage.BlobStore,
	maxUpload int64,
	r *render.Render,
	v *validator.Validate,
	p pagination.Paginator,
) *AdHandler {
	return &AdHandler{
		baseHandler:  baseHandler{render: r, validator: v, pager: p},
		repo:         a,
		userRepo:     u,
		categoryRepo: c,
		store:        store,
		maxUpload:    maxUpload,
	}
}

// AdRequest is the body of both create and update; update replaces every
// field. Absent author_id or category_id means none.
type AdRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	AuthorID    *uint            `json:"author_id"`
	Description string           `json:"description" validate:"max=2000"`
	Price       *decimal.Decimal `json:"price" validate:"-"`
	IsPublished *bool            `json:"is_published" validate:"required"`
	CategoryID  *uint            `json:"category_id"`
}

type AdResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Author      *uint   `json:"author"`
	Price       int64   `json:"price"`
	Description string  `json:"description"`
	IsPublished bool    `json:"is_published"`
	Category    *uint   `json:"category"`
	Image       *string `json:"image"`
}

type AdImageResponse struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

func (h *AdHandler) toAdResponse(ad *models.Ad) AdResponse {
	return AdResponse{
		ID:          ad.ID,
		Name:        ad.Name,
		Author:      ad.AuthorID,
		Price:       ad.Price.IntPart(),
		Description: ad.Description,
		IsPublished: ad.IsPublished,
		Category:    ad.CategoryID,
		Image:       h.imageURL(ad.Image),
	}
}

func (h *AdHandler) imageURL(key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	url := h.store.URL(*key)
	return &url
}

// decodeAd validates the request body and checks that the referenced author
// and category exist.
func (h *AdHandler) decodeAd(r *http.Request) (*AdRequest, error) {
	var req AdRequest
	if err := helpers.DecodeAndValidate(r, h.validator, &req); err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	switch {
	case req.Price == nil:
		fields["price"] = "price is required."
	case req.Price.IsNegative():
		fields["price"] = "price must not be negative."
	case !req.Price.Equal(req.Price.Truncate(0)):
		fields["price"] = "price must be a whole number."
	case req.Price.GreaterThanOrEqual(maxPrice):
		fields["price"] = "price must have at most 10 digits."
	}

	if err := h.checkReferences(r.Context(), &req, fields); err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		return nil, &helpers.APIError{Status: http.StatusBadRequest, Message: "validation failed", Fields: fields}
	}
	return &req, nil
}

func (h *AdHandler) checkReferences(ctx context.Context, req *AdRequest, fields map[string]string) error {
	if req.AuthorID != nil {
		author, err := h.userRepo.FindByID(ctx, *req.AuthorID)
		if err != nil {
			return err
		}
		if author == nil {
			fields["author_id"] = "author_id does not reference an existing user."
		}
	}
	if req.CategoryID != nil {
		category, err := h.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			fields["category_id"] = "category_id does not reference an existing category."
		}
	}
	return nil
}

func applyAdRequest(ad *models.Ad, req *AdRequest) {
	ad.Name = req.Name
	ad.AuthorID = req.AuthorID
	ad.Description = req.Description
	ad.Price = req.Price.Truncate(0)
	ad.IsPublished = *req.IsPublished
	ad.CategoryID = req.CategoryID
}

func (h *AdHandler) List(w http.ResponseWriter, r *http.Request) {
	ads, page, err := h.repo.GetPaginated(r.Context(), h.pager, r.URL.Query().Get("page"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	items := make([]AdResponse, 0, len(ads))
	for i := range ads {
		items = append(items, h.toAdResponse(&ads[i]))
	}

	_ = h.render.JSON(w, http.StatusOK, listResponse{Items: items, Total: page.Total, NumPage: page.NumPages})
}

func (h *AdHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeAd(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ad := &models.Ad{}
	applyAdRequest(ad, req)

	if err := h.repo.Create(r.Context(), ad); err != nil {
		h.respondError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Uint("ad_id", ad.ID).Msg("ad created")
	_ = h.render.JSON(w, http.StatusOK, h.toAdResponse(ad))
}

func (h *AdHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ad, err := h.findAd(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, h.toAdResponse(ad))
}

func (h *AdHandler) Update(w http.ResponseWriter, r *http.Request) {
	ad, err := h.findAd(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	req, err := h.decodeAd(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	applyAdRequest(ad, req)
	if err := h.repo.Update(r.Context(), ad); err != nil {
		h.respondError(w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, h.toAdResponse(ad))
}

// AddImage stores the multipart "image" file and points the ad at it. No
// other column changes.
func (h *AdHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	ad, err := h.findAd(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, r, &helpers.APIError{Status: http.StatusRequestEntityTooLarge, Message: "image is too large"})
			return
		}
		h.respondError(w, r, helpers.NewBadRequestError("expected a multipart form with an image file"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(imageField)
	if err != nil {
		h.respondError(w, r, helpers.NewBadRequestError("image file is required"))
		return
	}
	defer file.Close()

	key, err := h.store.Save(r.Context(), imageDir, header.Filename, file)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.repo.SetImage(r.Context(), ad.ID, key); err != nil {
		h.respondError(w, r, err)
		return
	}
	ad.Image = &key

	hlog.FromRequest(r).Info().Uint("ad_id", ad.ID).Str("image", key).Msg("ad image stored")
	_ = h.render.JSON(w, http.StatusOK, AdImageResponse{ID: ad.ID, Name: ad.Name, Image: h.imageURL(ad.Image)})
}

// Delete reports success whether or not the ad existed. The stored image
// goes with the row.
func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *AdHandler) findAd(r *http.Request) (*models.Ad, error) {
	id, err := helpers.PathID(r)
	if err != nil {
		return nil, err
	}

	ad, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, helpers.NewNotFoundError()
	}
	return ad, nil
}
