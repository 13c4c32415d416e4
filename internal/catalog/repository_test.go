package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
)

func TestDecrementStockGuarded(t *testing.T) {
	ctx := context.Background()
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)

	category := mustCreateTestCategory(t, conn, "Jackets")
	product := mustCreateTestProduct(t, conn, category.ID, func(p *models.Product) {
		p.Stock = 3
	})

	ok, err := repo.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "decrement past zero must be refused")

	reloaded, err := repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Stock)
}

func TestDecrementStockMissingProduct(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupCatalogTestDB(t))

	ok, err := repo.DecrementStock(ctx, uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceImagesSwapsWholeSet(t *testing.T) {
	ctx := context.Background()
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)

	category := mustCreateTestCategory(t, conn, "Jackets")
	product := mustCreateTestProduct(t, conn, category.ID, nil)

	first := []models.Image{
		{ID: uuid.New(), URL: "https://cdn.example.com/a.jpg"},
		{ID: uuid.New(), URL: "https://cdn.example.com/b.jpg"},
	}
	require.NoError(t, repo.ReplaceImages(ctx, product.ID, first))

	black := "Black"
	second := []models.Image{
		{ID: uuid.New(), URL: "https://cdn.example.com/c.jpg", Color: &black},
	}
	require.NoError(t, repo.ReplaceImages(ctx, product.ID, second))

	reloaded, err := repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Images, 1)
	assert.Equal(t, "https://cdn.example.com/c.jpg", reloaded.Images[0].URL)
	require.NotNil(t, reloaded.Images[0].Color)
	assert.Equal(t, "Black", *reloaded.Images[0].Color)
	assert.Equal(t, 0, reloaded.Images[0].Position)
}

func TestListProductsExcludesArchivedByDefault(t *testing.T) {
	ctx := context.Background()
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)

	category := mustCreateTestCategory(t, conn, "Jackets")
	live := mustCreateTestProduct(t, conn, category.ID, nil)
	mustCreateTestProduct(t, conn, category.ID, func(p *models.Product) {
		p.Name = "Retired Parka"
		p.IsArchived = true
	})

	products, err := repo.ListProducts(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, live.ID, products[0].ID)

	all, err := repo.ListProducts(ctx, ListFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListProductsFilters(t *testing.T) {
	ctx := context.Background()
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)

	jackets := mustCreateTestCategory(t, conn, "Jackets")
	shoes := mustCreateTestCategory(t, conn, "Shoes")
	mustCreateTestProduct(t, conn, jackets.ID, func(p *models.Product) {
		p.Gender = "Women"
		p.IsFeatured = true
	})
	mustCreateTestProduct(t, conn, shoes.ID, func(p *models.Product) {
		p.Name = "Trail Runner"
		p.Gender = "Men"
	})

	women, err := repo.ListProducts(ctx, ListFilter{Gender: "Women"})
	require.NoError(t, err)
	assert.Len(t, women, 1)

	featured, err := repo.ListProducts(ctx, ListFilter{FeaturedOnly: true})
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	inShoes, err := repo.ListProducts(ctx, ListFilter{CategoryID: &shoes.ID})
	require.NoError(t, err)
	require.Len(t, inShoes, 1)
	assert.Equal(t, "Trail Runner", inShoes[0].Name)
}

func TestSearchProductsCaseInsensitiveAndLimited(t *testing.T) {
	ctx := context.Background()
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)

	category := mustCreateTestCategory(t, conn, "Jackets")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		created := base.Add(time.Duration(i) * time.Minute)
		mustCreateTestProduct(t, conn, category.ID, func(p *models.Product) {
			p.Name = "Storm Parka"
			p.CreatedAt = created
		})
	}
	mustCreateTestProduct(t, conn, category.ID, func(p *models.Product) {
		p.Name = "Sun Hat"
	})

	results, err := repo.SearchProducts(ctx, "sToRm", 8)
	require.NoError(t, err)
	assert.Len(t, results, 8)

	none, err := repo.SearchProducts(ctx, "gloves", 8)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchProductsMatchesCategoryName(t *testing.T) {
	ctx := context.Background()
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)

	category := mustCreateTestCategory(t, conn, "Raincoats")
	mustCreateTestProduct(t, conn, category.ID, func(p *models.Product) {
		p.Name = "Monsoon Shell"
	})

	results, err := repo.SearchProducts(ctx, "raincoat", 8)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFindCategoryByNameCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)

	created := mustCreateTestCategory(t, conn, "Accessories")

	found, err := repo.FindCategoryByName(ctx, "  ACCESSORIES ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}
