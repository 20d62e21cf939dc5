package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
	"github.com/sincro/backoffice/pkg/storage"
	"github.com/sincro/backoffice/pkg/validate"
)

// StoreCategoryFields are the optional store category attributes.
type StoreCategoryFields struct {
	ParentCategoryID *int64  `json:"parent_category_id" validate:"gt=0"`
	StoreDescription *string `json:"store_description"`
	StoreImage       *string `json:"store_image"        validate:"url"`
	StoreSlug        *string `json:"store_slug"         validate:"slug"`
	StoreStatus      *string `json:"store_status"       validate:"max=50"`
	StoreSeoTitle    *string `json:"store_seo_title"    validate:"max=255"`
	StoreSeoKeywords *string `json:"store_seo_keywords" validate:"max=512"`
}

type StoreCategoryInput struct {
	CategoryName string `json:"category_name" validate:"required,min=2,max=255"`
	StoreCategoryFields
}

type StoreCategoryPatch struct {
	CategoryName *string `json:"category_name" validate:"min=2,max=255"`
	StoreCategoryFields
}

func (p StoreCategoryPatch) fields() map[string]any {
	f := p.StoreCategoryFields
	return columns{}.
		set("category_name", p.CategoryName).
		set("parent_category_id", f.ParentCategoryID).
		set("store_description", f.StoreDescription).
		set("store_image", f.StoreImage).
		set("store_slug", f.StoreSlug).
		set("store_status", f.StoreStatus).
		set("store_seo_title", f.StoreSeoTitle).
		set("store_seo_keywords", f.StoreSeoKeywords)
}

type StoreCategoryService struct {
	resource[models.StoreCategory, *models.StoreCategory]
}

func NewStoreCategoryService(store datastore.Store) *StoreCategoryService {
	return &StoreCategoryService{resource[models.StoreCategory, *models.StoreCategory]{
		store: store, noun: "store category", many: "store categories",
	}}
}

func (s *StoreCategoryService) Create(ctx context.Context, in StoreCategoryInput) (*models.StoreCategory, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	f := in.StoreCategoryFields
	return s.create(ctx, &models.StoreCategory{
		CategoryName:     in.CategoryName,
		ParentCategoryID: f.ParentCategoryID,
		StoreDescription: f.StoreDescription,
		StoreImage:       f.StoreImage,
		StoreSlug:        f.StoreSlug,
		StoreStatus:      f.StoreStatus,
		StoreSeoTitle:    f.StoreSeoTitle,
		StoreSeoKeywords: f.StoreSeoKeywords,
	})
}

func (s *StoreCategoryService) Get(ctx context.Context, id int64) (*models.StoreCategory, error) {
	return s.get(ctx, id)
}

func (s *StoreCategoryService) All(ctx context.Context) ([]models.StoreCategory, error) {
	return s.all(ctx)
}

func (s *StoreCategoryService) Update(ctx context.Context, id int64, p StoreCategoryPatch) (*models.StoreCategory, error) {
	return s.update(ctx, id, p)
}

func (s *StoreCategoryService) Delete(ctx context.Context, id int64) error {
	return s.delete(ctx, id)
}

// StoreFields are the optional store attributes.
type StoreFields struct {
	StorePhone            *string          `json:"store_phone"             validate:"max=50"`
	StoreAddress          *string          `json:"store_address"           validate:"max=255"`
	PostalCode            *string          `json:"postal_code"             validate:"max=20"`
	Province              *string          `json:"province"                validate:"max=120"`
	CoverImage            *string          `json:"cover_image"             validate:"url"`
	AdditionalImages      datatypes.JSON   `json:"additional_images"`
	FreeShippingThreshold *decimal.Decimal `json:"free_shipping_threshold" validate:"gte=0"`
	StoreHours            *string          `json:"store_hours"             validate:"max=255"`
	PhotoURL              *string          `json:"photo_url"               validate:"url"`
}

type StoreInput struct {
	StoreName       string `json:"store_name"        validate:"required,min=2,max=255"`
	StoreEmail      string `json:"store_email"       validate:"required,email"`
	StoreCategoryID int64  `json:"store_category_id" validate:"required,gt=0"`
	StoreFields
}

type StorePatch struct {
	StoreName       *string `json:"store_name"        validate:"min=2,max=255"`
	StoreEmail      *string `json:"store_email"       validate:"email"`
	StoreCategoryID *int64  `json:"store_category_id" validate:"gt=0"`
	StoreFields
}

func (p StorePatch) fields() map[string]any {
	f := p.StoreFields
	c := columns{}.
		set("store_name", p.StoreName).
		set("store_email", p.StoreEmail).
		set("store_category_id", p.StoreCategoryID).
		set("store_phone", f.StorePhone).
		set("store_address", f.StoreAddress).
		set("postal_code", f.PostalCode).
		set("province", f.Province).
		set("cover_image", f.CoverImage).
		set("additional_images", f.AdditionalImages).
		set("free_shipping_threshold", f.FreeShippingThreshold).
		set("store_hours", f.StoreHours).
		set("photo_url", f.PhotoURL)
	if len(c) > 0 {
		c["updated_at"] = now()
	}
	return c
}

// StoreFilter selects stores for List.
type StoreFilter struct {
	listing.Params
	CategoryIDs []int64
	Search      string
}

var storeColumns = []string{
	"id", "store_name", "store_email", "store_phone", "store_address",
	"postal_code", "province", "cover_image", "additional_images",
	"free_shipping_threshold", "store_hours", "photo_url", "created_at",
	"updated_at", "store_category_id",
}

var storeCategory = listing.Relation{
	Name:       "store_category",
	Field:      "StoreCategory",
	Table:      "store_categories",
	ForeignKey: "store_category_id",
	Columns:    []string{"id", "category_name"},
}

type StoreService struct {
	resource[models.Store, *models.Store]
	photos storage.Disk
}

func NewStoreService(store datastore.Store, photos storage.Disk) *StoreService {
	return &StoreService{
		resource: resource[models.Store, *models.Store]{store: store, noun: "store", many: "stores"},
		photos:   photos,
	}
}

func (s *StoreService) Create(ctx context.Context, in StoreInput) (*models.Store, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	f := in.StoreFields
	st := &models.Store{
		StoreName:             in.StoreName,
		StoreEmail:            in.StoreEmail,
		StoreCategoryID:       in.StoreCategoryID,
		CoverImage:            f.CoverImage,
		AdditionalImages:      f.AdditionalImages,
		FreeShippingThreshold: nullDecimal(f.FreeShippingThreshold),
		StoreHours:            f.StoreHours,
		PhotoURL:              f.PhotoURL,
	}
	st.StorePhone = deref(f.StorePhone)
	st.StoreAddress = deref(f.StoreAddress)
	st.PostalCode = deref(f.PostalCode)
	st.Province = deref(f.Province)
	return s.create(ctx, st)
}

// Get loads a store with its category.
func (s *StoreService) Get(ctx context.Context, id int64) (*models.Store, error) {
	st, err := first[models.Store](ctx, s.store, listing.From("stores", storeColumns...).With(storeCategory).Eq("id", id))
	if err != nil {
		return nil, fail(ctx, err, "fetch", "store")
	}
	return st, nil
}

func (s *StoreService) All(ctx context.Context) ([]models.Store, error) {
	return s.all(ctx)
}

// Options lists id and name of every store, for pickers.
func (s *StoreService) Options(ctx context.Context) ([]models.StoreOption, error) {
	rows := make([]models.StoreOption, 0)
	if err := s.store.All(ctx, &rows, "id", "store_name"); err != nil {
		return nil, fail(ctx, err, "fetch", "stores")
	}
	return rows, nil
}

func (s *StoreService) Update(ctx context.Context, id int64, p StorePatch) (*models.Store, error) {
	return s.update(ctx, id, p)
}

func (s *StoreService) Delete(ctx context.Context, id int64) error {
	return s.delete(ctx, id)
}

// List filters by store category ids and searches store names.
func (s *StoreService) List(ctx context.Context, f StoreFilter) (listing.Result[models.Store], error) {
	q := listing.From("stores", storeColumns...).
		With(storeCategory).
		In("store_category_id", f.CategoryIDs).
		Match(f.Search, "store_name")
	res, err := listing.Run[models.Store](ctx, s.store, q, f.Params, listing.Envelope{
		Entity:  "stores",
		Message: "Fetched stores successfully",
	})
	return res, fail(ctx, err, "fetch", "stores")
}

// UploadPhoto stores the store photo and records its URL.
func (s *StoreService) UploadPhoto(ctx context.Context, id int64, photo Photo) (*models.Store, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	url, err := savePhoto(ctx, s.photos, "stores", id, photo)
	if err != nil {
		return nil, fail(ctx, err, "upload", "store photo")
	}
	return s.update(ctx, id, StorePatch{StoreFields: StoreFields{PhotoURL: &url}})
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
