package handler

import (
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/DukeRupert/estoque/internal/service"
	"github.com/google/uuid"
)

// =============================================================================
// Handler Configuration
// =============================================================================

const (
	// imageFormField is the multipart field carrying the product image.
	imageFormField = "imagem"

	// maxProductBodyBytes leaves room for the form fields around a
	// maximum-size image.
	maxProductBodyBytes = domain.MaxImageSize + 1<<20

	// multipartMemory is how much of a multipart body is buffered in memory
	// before spilling to temporary files.
	multipartMemory = 8 << 20

	maxJSONBodyBytes = 1 << 20
)

// ProductHandler serves the product inventory.
//
// Routes handled (all require a verified user):
// - GET    /api/products       -> List
// - GET    /api/products/{id}  -> Get
// - POST   /api/products       -> Create
// - PUT    /api/products/{id}  -> Update
// - DELETE /api/products/{id}  -> Delete
type ProductHandler struct {
	products service.ProductService
	logger   *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// productRequest is the JSON body of create and update. Multipart bodies
// carry the same names as form fields.
type productRequest struct {
	Nome       string  `json:"nome"`
	Preco      float64 `json:"preco"`
	Quantidade int     `json:"quantidade"`
	ImageURL   string  `json:"image_url"`
}

// =============================================================================
// Handlers
// =============================================================================

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products with a JSON or multipart body.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, image, cleanup, err := h.parseProductRequest(w, r, "product.create")
	defer cleanup()
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	product, err := h.products.Create(r.Context(), domain.CreateProductParams{
		Nome:       req.Nome,
		Preco:      req.Preco,
		Quantidade: req.Quantidade,
		ImageURL:   req.ImageURL,
		Image:      image,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id}. The stored image is kept unless the
// request carries a new file or URL.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	req, image, cleanup, err := h.parseProductRequest(w, r, "product.update")
	defer cleanup()
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	product, err := h.products.Update(r.Context(), domain.UpdateProductParams{
		ID:         id,
		Nome:       req.Nome,
		Preco:      req.Preco,
		Quantidade: req.Quantidade,
		ImageURL:   req.ImageURL,
		Image:      image,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes registers the product routes behind protect.
func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /api/products", protect(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/products/{id}", protect(http.HandlerFunc(h.Get)))
	mux.Handle("POST /api/products", protect(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /api/products/{id}", protect(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/products/{id}", protect(http.HandlerFunc(h.Delete)))
}

// =============================================================================
// Request Parsing
// =============================================================================

// productID parses the {id} path value. Malformed ids are reported as not
// found, matching what a lookup of an unknown id returns.
func productID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NotFound("product.get", "product", raw)
	}
	return id, nil
}

// parseProductRequest reads a JSON or multipart product body. The returned
// cleanup closes the uploaded file and removes multipart temp files; it is
// always safe to call.
func (h *ProductHandler) parseProductRequest(w http.ResponseWriter, r *http.Request, op string) (productRequest, *domain.ImageUpload, func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req productRequest
		if err := decodeJSON(w, r, maxJSONBodyBytes, &req); err != nil {
			return req, nil, noop, bodyError(err, op)
		}
		return req, nil, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProductBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return productRequest{}, nil, noop, bodyError(err, op)
	}
	cleanup := func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn("failed to remove multipart temp files", "error", err)
		}
	}

	req, err := productFromForm(r, op)
	if err != nil {
		return req, nil, cleanup, err
	}

	file, header, err := r.FormFile(imageFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, cleanup, nil
	}
	if err != nil {
		return req, nil, cleanup, domain.Invalid(op, "Could not read the uploaded image")
	}

	image := &domain.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Data:     file,
	}
	return req, image, func() {
		closeFile(h.logger, file)
		cleanup()
	}, nil
}

// productFromForm reads the text fields of a multipart product form.
func productFromForm(r *http.Request, op string) (productRequest, error) {
	req := productRequest{
		Nome:     r.FormValue("nome"),
		ImageURL: r.FormValue("image_url"),
	}

	fields := make(map[string]string)
	if raw := strings.TrimSpace(r.FormValue("preco")); raw != "" {
		preco, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil {
			fields["preco"] = "Preco must be a number"
		}
		req.Preco = preco
	}
	if raw := strings.TrimSpace(r.FormValue("quantidade")); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			fields["quantidade"] = "Quantidade must be a whole number"
		}
		req.Quantidade = qty
	}

	if len(fields) > 0 {
		return req, &domain.ValidationError{Op: op, Fields: fields}
	}
	return req, nil
}

// bodyError turns a body decoding failure into a domain error.
func bodyError(err error, op string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &domain.Error{Code: domain.ETOOLARGE, Op: op, Message: "Request body too large", Err: err}
	}
	return domain.Wrap(err, domain.EINVALID, op, msgInvalidRequestBody)
}

func closeFile(logger *slog.Logger, f multipart.File) {
	if err := f.Close(); err != nil {
		logger.Warn("failed to close uploaded file", "error", err)
	}
}
