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

// CategoryFields are the optional category attributes.
type CategoryFields struct {
	ParentCategoryID       *int64  `json:"parent_category_id"       validate:"gt=0"`
	CategoryType           *string `json:"category_type"            validate:"max=100"`
	CategoryDescription    *string `json:"category_description"`
	CategoryImageURL       *string `json:"category_image_url"       validate:"url"`
	CategorySlug           *string `json:"category_slug"            validate:"slug"`
	CategoryStatus         *string `json:"category_status"          validate:"max=50"`
	CategoryDisplayOrder   *int    `json:"category_display_order"   validate:"gte=0"`
	CategorySeoTitle       *string `json:"category_seo_title"       validate:"max=255"`
	CategorySeoDescription *string `json:"category_seo_description"`
	CategorySeoKeywords    *string `json:"category_seo_keywords"    validate:"max=512"`
}

type CategoryInput struct {
	CategoryName string `json:"category_name" validate:"required,min=2,max=255"`
	CategoryFields
}

type CategoryPatch struct {
	CategoryName *string `json:"category_name" validate:"min=2,max=255"`
	CategoryFields
}

func (p CategoryPatch) fields() map[string]any {
	f := p.CategoryFields
	return columns{}.
		set("category_name", p.CategoryName).
		set("parent_category_id", f.ParentCategoryID).
		set("category_type", f.CategoryType).
		set("category_description", f.CategoryDescription).
		set("category_image_url", f.CategoryImageURL).
		set("category_slug", f.CategorySlug).
		set("category_status", f.CategoryStatus).
		set("category_display_order", f.CategoryDisplayOrder).
		set("category_seo_title", f.CategorySeoTitle).
		set("category_seo_description", f.CategorySeoDescription).
		set("category_seo_keywords", f.CategorySeoKeywords)
}

type CategoryService struct {
	resource[models.Category, *models.Category]
}

func NewCategoryService(store datastore.Store) *CategoryService {
	return &CategoryService{resource[models.Category, *models.Category]{store: store, noun: "category", many: "categories"}}
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	f := in.CategoryFields
	return s.create(ctx, &models.Category{
		CategoryName:           in.CategoryName,
		ParentCategoryID:       f.ParentCategoryID,
		CategoryType:           f.CategoryType,
		CategoryDescription:    f.CategoryDescription,
		CategoryImageURL:       f.CategoryImageURL,
		CategorySlug:           f.CategorySlug,
		CategoryStatus:         f.CategoryStatus,
		CategoryDisplayOrder:   f.CategoryDisplayOrder,
		CategorySeoTitle:       f.CategorySeoTitle,
		CategorySeoDescription: f.CategorySeoDescription,
		CategorySeoKeywords:    f.CategorySeoKeywords,
	})
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return s.get(ctx, id)
}

func (s *CategoryService) All(ctx context.Context) ([]models.Category, error) {
	return s.all(ctx)
}

func (s *CategoryService) Update(ctx context.Context, id int64, p CategoryPatch) (*models.Category, error) {
	return s.update(ctx, id, p)
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.delete(ctx, id)
}

// ProductFields are the optional product attributes.
type ProductFields struct {
	Barcode            *string          `json:"barcode"             validate:"max=64"`
	DiscountedPrice    *decimal.Decimal `json:"discounted_price"    validate:"gte=0"`
	IsDiscount         *bool            `json:"is_discount"`
	UnitPrice          *decimal.Decimal `json:"unit_price"          validate:"gte=0"`
	Quantity           *int             `json:"quantity"            validate:"gte=0"`
	TotalPrice         *decimal.Decimal `json:"total_price"         validate:"gte=0"`
	Subcategory        *int64           `json:"subcategory"         validate:"gt=0"`
	Brand              *string          `json:"brand"               validate:"max=120"`
	Color              *string          `json:"color"               validate:"max=60"`
	SizeAvailable      datatypes.JSON   `json:"size_available"`
	ModelSize          *string          `json:"model_size"          validate:"max=60"`
	ModelHeight        *string          `json:"model_height"        validate:"max=60"`
	Fit                *string          `json:"fit"                 validate:"max=60"`
	Gender             *string          `json:"gender"              validate:"max=30"`
	InventoryStatus    *string          `json:"inventory_status"    validate:"max=50"`
	Customizable       *bool            `json:"customizable"`
	ProductDescription *string          `json:"product_description"`
	AutoCompletion     *bool            `json:"auto_completion"`
	Reservations       *bool            `json:"reservations"`
	CouponsApplied     datatypes.JSON   `json:"coupons_applied"`
	SeoTitle           *string          `json:"seo_title"           validate:"max=255"`
	SeoDescription     *string          `json:"seo_description"`
	SeoKeywords        *string          `json:"seo_keywords"        validate:"max=512"`
	PhotoURL           *string          `json:"photo_url"           validate:"url"`
}

type ProductInput struct {
	ProductName string          `json:"product_name" validate:"required,min=2,max=255"`
	Price       decimal.Decimal `json:"price"        validate:"gte=0"`
	CategoryID  int64           `json:"category_id"  validate:"required,gt=0"`
	ProductFields
}

type ProductPatch struct {
	ProductName *string          `json:"product_name" validate:"min=2,max=255"`
	Price       *decimal.Decimal `json:"price"        validate:"gte=0"`
	CategoryID  *int64           `json:"category_id"  validate:"gt=0"`
	ProductFields
}

func (p ProductPatch) fields() map[string]any {
	f := p.ProductFields
	return columns{}.
		set("product_name", p.ProductName).
		set("price", p.Price).
		set("category_id", p.CategoryID).
		set("barcode", f.Barcode).
		set("discounted_price", f.DiscountedPrice).
		set("is_discount", f.IsDiscount).
		set("unit_price", f.UnitPrice).
		set("quantity", f.Quantity).
		set("total_price", f.TotalPrice).
		set("subcategory", f.Subcategory).
		set("brand", f.Brand).
		set("color", f.Color).
		set("size_available", f.SizeAvailable).
		set("model_size", f.ModelSize).
		set("model_height", f.ModelHeight).
		set("fit", f.Fit).
		set("gender", f.Gender).
		set("inventory_status", f.InventoryStatus).
		set("customizable", f.Customizable).
		set("product_description", f.ProductDescription).
		set("auto_completion", f.AutoCompletion).
		set("reservations", f.Reservations).
		set("coupons_applied", f.CouponsApplied).
		set("seo_title", f.SeoTitle).
		set("seo_description", f.SeoDescription).
		set("seo_keywords", f.SeoKeywords).
		set("photo_url", f.PhotoURL)
}

// ProductFilter selects products for List.
type ProductFilter struct {
	listing.Params
	// CategoryIDs come from a dot-joined "categories" parameter. Empty means
	// every category.
	CategoryIDs []int64
	Search      string
}

var productColumns = []string{
	"id", "product_name", "barcode", "price", "discounted_price", "created_at",
	"is_discount", "unit_price", "quantity", "total_price", "category_id",
	"brand", "color", "product_description", "seo_title", "seo_description",
	"seo_keywords", "photo_url",
}

var productCategory = listing.Relation{
	Name:       "product_categories",
	Field:      "Category",
	Table:      "product_categories",
	ForeignKey: "category_id",
	Columns:    []string{"id", "category_name", "category_slug"},
}

type ProductService struct {
	resource[models.Product, *models.Product]
	photos storage.Disk
}

// NewProductService wires the product actions. photos may be nil when
// uploads are disabled.
func NewProductService(store datastore.Store, photos storage.Disk) *ProductService {
	return &ProductService{
		resource: resource[models.Product, *models.Product]{store: store, noun: "product", many: "products"},
		photos:   photos,
	}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	f := in.ProductFields
	p := &models.Product{
		ProductName:        in.ProductName,
		Price:              in.Price,
		CategoryID:         in.CategoryID,
		DiscountedPrice:    nullDecimal(f.DiscountedPrice),
		IsDiscount:         f.IsDiscount,
		UnitPrice:          nullDecimal(f.UnitPrice),
		Quantity:           f.Quantity,
		TotalPrice:         nullDecimal(f.TotalPrice),
		Subcategory:        f.Subcategory,
		Brand:              f.Brand,
		Color:              f.Color,
		SizeAvailable:      f.SizeAvailable,
		ModelSize:          f.ModelSize,
		ModelHeight:        f.ModelHeight,
		Fit:                f.Fit,
		Gender:             f.Gender,
		InventoryStatus:    f.InventoryStatus,
		Customizable:       f.Customizable,
		ProductDescription: f.ProductDescription,
		AutoCompletion:     f.AutoCompletion,
		Reservations:       f.Reservations,
		CouponsApplied:     f.CouponsApplied,
		SeoTitle:           f.SeoTitle,
		SeoDescription:     f.SeoDescription,
		SeoKeywords:        f.SeoKeywords,
		PhotoURL:           f.PhotoURL,
	}
	p.Barcode = deref(f.Barcode)
	return s.create(ctx, p)
}

// Get loads a product with its category.
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := first[models.Product](ctx, s.store, listing.From("products").With(productCategory).Eq("id", id))
	if err != nil {
		return nil, fail(ctx, err, "fetch", "product")
	}
	return p, nil
}

func (s *ProductService) All(ctx context.Context) ([]models.Product, error) {
	return s.all(ctx)
}

func (s *ProductService) Update(ctx context.Context, id int64, p ProductPatch) (*models.Product, error) {
	return s.update(ctx, id, p)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.delete(ctx, id)
}

// List filters by category ids and searches product names.
func (s *ProductService) List(ctx context.Context, f ProductFilter) (listing.Result[models.Product], error) {
	q := listing.From("products", productColumns...).
		With(productCategory).
		In("category_id", f.CategoryIDs).
		Match(f.Search, "product_name")
	res, err := listing.Run[models.Product](ctx, s.store, q, f.Params, listing.Envelope{
		Entity:  "products",
		Message: "Fetched products successfully",
	})
	return res, fail(ctx, err, "fetch", "products")
}

// UploadPhoto stores the product photo and records its URL.
func (s *ProductService) UploadPhoto(ctx context.Context, id int64, photo Photo) (*models.Product, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	url, err := savePhoto(ctx, s.photos, "products", id, photo)
	if err != nil {
		return nil, fail(ctx, err, "upload", "product photo")
	}
	return s.update(ctx, id, ProductPatch{ProductFields: ProductFields{PhotoURL: &url}})
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
