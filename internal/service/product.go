package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/metrics"
	"github.com/DukeRupert/estoque/internal/repository"
	"github.com/DukeRupert/estoque/internal/storage"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ProductService manages the product inventory.
type ProductService interface {
	// List returns all products ordered by nome.
	List(ctx context.Context) ([]domain.Product, error)

	// Get returns a product by ID.
	// Returns domain.ENOTFOUND if the product doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// Create validates, uploads the optional image and inserts the product.
	// Returns domain.EINVALID for validation errors and domain.ETOOLARGE for
	// oversized images.
	Create(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error)

	// Update replaces the editable fields. A new image replaces the stored
	// one, which is then deleted.
	Update(ctx context.Context, params domain.UpdateProductParams) (*domain.Product, error)

	// Delete removes the product and schedules removal of its stored images.
	Delete(ctx context.Context, id uuid.UUID) error

	// Summary aggregates the inventory for the dashboard.
	Summary(ctx context.Context) (*domain.ProductSummary, error)
}

// =============================================================================
// Implementation
// =============================================================================

// ImageCleanup schedules deletion of stored objects outside the request.
type ImageCleanup interface {
	EnqueueImageDeletion(ctx context.Context, keys []string) error
}

type productService struct {
	queries            repository.Querier
	storage            storage.Storage
	thumbnailProcessor ThumbnailProcessor
	cleanup            ImageCleanup
	logger             *slog.Logger
}

// NewProductService creates a ProductService. cleanup may be nil, in which
// case orphaned images are deleted inline.
func NewProductService(
	queries repository.Querier,
	storage storage.Storage,
	thumbnailProcessor ThumbnailProcessor,
	cleanup ImageCleanup,
	logger *slog.Logger,
) ProductService {
	return &productService{
		queries:            queries,
		storage:            storage,
		thumbnailProcessor: thumbnailProcessor,
		cleanup:            cleanup,
		logger:             logger,
	}
}

// storedImage is the result of uploading a product image.
type storedImage struct {
	Key          string
	URL          string
	ThumbnailKey string
	ThumbnailURL string
}

func (s *productService) List(ctx context.Context) ([]domain.Product, error) {
	const op = "product.list"

	rows, err := s.queries.ListProducts(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list products")
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, *productToDomain(row))
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	const op = "product.get"

	row, err := s.queries.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "product", id.String())
		}
		return nil, domain.Internal(err, op, "failed to fetch product")
	}
	return productToDomain(row), nil
}

func (s *productService) Create(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	const op = "product.create"

	nome, err := validateProduct(op, params.Nome, params.Preco, params.Quantidade)
	if err != nil {
		return nil, err
	}

	arg := repository.CreateProductParams{
		Nome:       nome,
		Preco:      params.Preco,
		Quantidade: int32(params.Quantidade),
		ImageUrl:   domain.ToNullString(strings.TrimSpace(params.ImageURL)),
	}

	var img *storedImage
	if params.Image != nil {
		img, err = s.uploadImage(ctx, op, params.Image)
		if err != nil {
			return nil, err
		}
		arg.ImageKey = domain.ToNullString(img.Key)
		arg.ImageUrl = domain.ToNullString(img.URL)
		arg.ThumbnailKey = domain.ToNullString(img.ThumbnailKey)
		arg.ThumbnailUrl = domain.ToNullString(img.ThumbnailURL)
	}

	row, err := s.queries.CreateProduct(ctx, arg)
	if err != nil {
		if img != nil {
			s.deleteImage(ctx, img.Key, img.ThumbnailKey)
		}
		return nil, domain.Internal(err, op, "failed to create product")
	}

	metrics.ProductsCreated.Inc()
	s.logger.Info("product created", "product_id", row.ID, "has_image", img != nil)

	return productToDomain(row), nil
}

func (s *productService) Update(ctx context.Context, params domain.UpdateProductParams) (*domain.Product, error) {
	const op = "product.update"

	nome, err := validateProduct(op, params.Nome, params.Preco, params.Quantidade)
	if err != nil {
		return nil, err
	}

	current, err := s.queries.GetProductByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "product", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to fetch product")
	}

	arg := repository.UpdateProductParams{
		ID:           params.ID,
		Nome:         nome,
		Preco:        params.Preco,
		Quantidade:   int32(params.Quantidade),
		ImageKey:     current.ImageKey,
		ImageUrl:     current.ImageUrl,
		ThumbnailKey: current.ThumbnailKey,
		ThumbnailUrl: current.ThumbnailUrl,
	}

	// An explicit URL replaces the image; the previous upload, if any, is dropped.
	if url := strings.TrimSpace(params.ImageURL); url != "" && url != current.ImageUrl.String {
		arg.ImageKey = sql.NullString{}
		arg.ImageUrl = domain.ToNullString(url)
		arg.ThumbnailKey = sql.NullString{}
		arg.ThumbnailUrl = sql.NullString{}
	}

	var img *storedImage
	if params.Image != nil {
		img, err = s.uploadImage(ctx, op, params.Image)
		if err != nil {
			return nil, err
		}
		arg.ImageKey = domain.ToNullString(img.Key)
		arg.ImageUrl = domain.ToNullString(img.URL)
		arg.ThumbnailKey = domain.ToNullString(img.ThumbnailKey)
		arg.ThumbnailUrl = domain.ToNullString(img.ThumbnailURL)
	}

	row, err := s.queries.UpdateProduct(ctx, arg)
	if err != nil {
		if img != nil {
			s.deleteImage(ctx, img.Key, img.ThumbnailKey)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "product", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to update product")
	}

	if current.ImageKey.Valid && current.ImageKey != arg.ImageKey {
		s.deleteImage(ctx, current.ImageKey.String, current.ThumbnailKey.String)
	}

	return productToDomain(row), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "product.delete"

	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	affected, err := s.queries.DeleteProduct(ctx, id)
	if err != nil {
		return domain.Internal(err, op, "failed to delete product")
	}
	if affected == 0 {
		return domain.NotFound(op, "product", id.String())
	}

	s.deleteImage(ctx, product.ImageKey, product.ThumbnailKey)

	s.logger.Info("product deleted", "product_id", id)
	return nil
}

func (s *productService) Summary(ctx context.Context) (*domain.ProductSummary, error) {
	const op = "product.summary"

	row, err := s.queries.CountProducts(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to summarize products")
	}
	return &domain.ProductSummary{
		Count:      row.Count,
		Unidades:   row.Unidades,
		ValorTotal: row.ValorTotal,
	}, nil
}

// =============================================================================
// Image handling
// =============================================================================

// uploadImage validates the upload, stores the original and a JPEG thumbnail
// and returns their keys and public URLs.
func (s *productService) uploadImage(ctx context.Context, op string, upload *domain.ImageUpload) (*storedImage, error) {
	if err := domain.ValidateImageSize(upload.Size); err != nil {
		return nil, withOp(err, op)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Data, domain.MaxImageSize+1))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to read image")
	}
	if err := domain.ValidateImageSize(int64(len(data))); err != nil {
		return nil, withOp(err, op)
	}

	contentType := http.DetectContentType(data)
	if !domain.IsValidImageContentType(contentType) {
		metrics.ImagesUploaded.WithLabelValues("rejected").Inc()
		return nil, domain.Invalid(op, fmt.Sprintf("Unsupported image type: %s. Only JPEG and PNG are supported.", contentType))
	}

	thumbnail, err := s.thumbnailProcessor.GenerateThumbnail(
		bytes.NewReader(data),
		domain.ThumbnailMaxWidth,
		domain.ThumbnailMaxHeight,
	)
	if err != nil {
		metrics.ImagesUploaded.WithLabelValues("rejected").Inc()
		return nil, domain.Invalid(op, "Image could not be decoded")
	}

	id := uuid.New()
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		ext = storage.ExtensionForContentType(contentType)
	}
	key := storage.ProductImageKey(id, ext)
	thumbnailKey := storage.ProductThumbnailKey(id)

	if err := s.storage.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		ContentType: contentType,
		MaxSize:     domain.MaxImageSize,
		Public:      true,
	}); err != nil {
		metrics.ImagesUploaded.WithLabelValues("failed").Inc()
		return nil, domain.Internal(err, op, "failed to upload image")
	}

	if err := s.storage.Put(ctx, thumbnailKey, bytes.NewReader(thumbnail), storage.PutOptions{
		ContentType: "image/jpeg",
		Public:      true,
	}); err != nil {
		_ = s.storage.Delete(ctx, key)
		metrics.ImagesUploaded.WithLabelValues("failed").Inc()
		return nil, domain.Internal(err, op, "failed to upload thumbnail")
	}

	url, err := s.storage.URL(key)
	if err != nil {
		s.deleteImage(ctx, key, thumbnailKey)
		return nil, domain.Internal(err, op, "failed to build image URL")
	}
	thumbnailURL, err := s.storage.URL(thumbnailKey)
	if err != nil {
		s.deleteImage(ctx, key, thumbnailKey)
		return nil, domain.Internal(err, op, "failed to build thumbnail URL")
	}

	metrics.ImagesUploaded.WithLabelValues("stored").Inc()

	return &storedImage{
		Key:          key,
		URL:          url,
		ThumbnailKey: thumbnailKey,
		ThumbnailURL: thumbnailURL,
	}, nil
}

// deleteImage removes stored objects that are no longer referenced. With a
// cleanup queue the deletion is retried in the background; otherwise it is
// attempted once and failures are only logged.
func (s *productService) deleteImage(ctx context.Context, keys ...string) {
	var orphaned []string
	for _, key := range keys {
		if key != "" {
			orphaned = append(orphaned, key)
		}
	}
	if len(orphaned) == 0 {
		return
	}

	if s.cleanup != nil {
		err := s.cleanup.EnqueueImageDeletion(context.WithoutCancel(ctx), orphaned)
		if err == nil {
			return
		}
		s.logger.Warn("failed to enqueue image deletion, deleting inline", "error", err, "keys", orphaned)
	}

	for _, key := range orphaned {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Error("failed to delete image from storage", "error", err, "key", key)
		}
	}
}

// =============================================================================
// Helpers
// =============================================================================

// validateProduct checks every field and reports all failures together.
// It returns the normalized nome.
func validateProduct(op, nome string, preco float64, quantidade int) (string, error) {
	nome = strings.Join(strings.Fields(nome), " ")

	var verr *domain.ValidationError
	add := func(field, message string) {
		if verr == nil {
			verr = domain.NewValidationError(op, field, message)
			return
		}
		verr.Fields[field] = message
	}

	if nome == "" {
		add("nome", "Nome is required")
	}
	if !validPreco(preco) {
		add("preco", "Preco must be zero or greater")
	}
	if quantidade < 0 {
		add("quantidade", "Quantidade must be zero or greater")
	}
	if quantidade > math.MaxInt32 {
		add("quantidade", "Quantidade is too large")
	}

	if verr != nil {
		return "", verr
	}
	return nome, nil
}

func productToDomain(row repository.Product) *domain.Product {
	return &domain.Product{
		ID:           row.ID,
		Nome:         row.Nome,
		Preco:        row.Preco,
		Quantidade:   int(row.Quantidade),
		ImageKey:     domain.NullStringValue(row.ImageKey),
		ImageURL:     domain.NullStringValue(row.ImageUrl),
		ThumbnailKey: domain.NullStringValue(row.ThumbnailKey),
		ThumbnailURL: domain.NullStringValue(row.ThumbnailUrl),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
