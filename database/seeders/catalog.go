package seeders

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
)

//go:embed fixtures/catalog.yaml
var catalogYAML []byte

type catalog struct {
	StoreCategories []struct {
		Name string `yaml:"name"`
		Slug string `yaml:"slug"`
	} `yaml:"store_categories"`
	Stores []struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Phone    string `yaml:"phone"`
		Address  string `yaml:"address"`
		Postal   string `yaml:"postal_code"`
		Province string `yaml:"province"`
		Category int    `yaml:"category"`
	} `yaml:"stores"`
	ProductCategories []struct {
		Name string `yaml:"name"`
		Slug string `yaml:"slug"`
	} `yaml:"product_categories"`
	Products []struct {
		Name     string `yaml:"name"`
		Barcode  string `yaml:"barcode"`
		Price    string `yaml:"price"`
		Category int    `yaml:"category"`
		Brand    string `yaml:"brand"`
	} `yaml:"products"`
	Coupons []struct {
		Code   string `yaml:"code"`
		Amount string `yaml:"amount"`
		Status string `yaml:"status"`
	} `yaml:"coupons"`
}

func init() {
	Register("catalog", seedCatalog)
}

// seedCatalog loads the fixture catalogue. Fixture rows refer to each other
// by 1-based position; a table that already has rows is left alone.
func seedCatalog(ctx context.Context, env Env) error {
	var c catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return fmt.Errorf("parse catalog fixture: %w", err)
	}

	if empty, err := isEmpty(ctx, env.Store, "store_categories"); err != nil || !empty {
		return err
	}

	storeCats := make([]int64, len(c.StoreCategories))
	for i, sc := range c.StoreCategories {
		row := &models.StoreCategory{CategoryName: sc.Name, StoreSlug: &sc.Slug}
		if err := env.Store.Create(ctx, row); err != nil {
			return err
		}
		storeCats[i] = row.ID
	}
	for _, s := range c.Stores {
		cat, err := ref(storeCats, s.Category, "store category")
		if err != nil {
			return err
		}
		row := &models.Store{
			StoreName:       s.Name,
			StoreEmail:      s.Email,
			StorePhone:      s.Phone,
			StoreAddress:    s.Address,
			PostalCode:      s.Postal,
			Province:        s.Province,
			StoreCategoryID: cat,
		}
		if err := env.Store.Create(ctx, row); err != nil {
			return err
		}
	}

	productCats := make([]int64, len(c.ProductCategories))
	for i, pc := range c.ProductCategories {
		row := &models.Category{CategoryName: pc.Name, CategorySlug: &pc.Slug}
		if err := env.Store.Create(ctx, row); err != nil {
			return err
		}
		productCats[i] = row.ID
	}
	for _, p := range c.Products {
		cat, err := ref(productCats, p.Category, "product category")
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("product %q: price: %w", p.Name, err)
		}
		row := &models.Product{ProductName: p.Name, Barcode: p.Barcode, Price: price, CategoryID: cat, Brand: &p.Brand}
		if err := env.Store.Create(ctx, row); err != nil {
			return err
		}
	}

	for _, cp := range c.Coupons {
		amount, err := decimal.NewFromString(cp.Amount)
		if err != nil {
			return fmt.Errorf("coupon %q: amount: %w", cp.Code, err)
		}
		row := &models.Coupon{CouponCode: cp.Code, DiscountAmount: amount, CouponStatus: cp.Status}
		if err := env.Store.Create(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func isEmpty(ctx context.Context, store datastore.Store, table string) (bool, error) {
	n, err := store.Count(ctx, listing.From(table, "id"))
	return n == 0, err
}

func ref(ids []int64, pos int, what string) (int64, error) {
	if pos < 1 || pos > len(ids) {
		return 0, fmt.Errorf("fixture refers to %s %d of %d", what, pos, len(ids))
	}
	return ids[pos-1], nil
}
