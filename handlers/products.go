package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookstore/models"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// ProductHandler handles the catalog API
type ProductHandler struct {
	db    *sqlx.DB
	cache cache.Cache
}

// NewProductHandler creates a new product handler
func NewProductHandler(db *sqlx.DB, cache cache.Cache) *ProductHandler {
	return &ProductHandler{
		db:    db,
		cache: cache,
	}
}

const (
	productListCacheKey   = "products:list"
	productCacheKeyPrefix = "product:"
)

// itemCacheKey builds the cache key from the parsed id, never the raw
// path segment: "01" and "+1" parse to the same row and must share one
// cache entry.
func itemCacheKey(id int) string {
	return productCacheKeyPrefix + strconv.Itoa(id)
}

func (h *ProductHandler) invalidateProduct(id int) {
	h.cache.Delete(productListCacheKey)
	h.cache.Delete(itemCacheKey(id))
}

// fetchProduct loads one product row. Returns sql.ErrNoRows when the id
// does not exist.
func (h *ProductHandler) fetchProduct(id int) (*models.Product, error) {
	var product models.Product
	err := h.db.QueryRow(
		"SELECT id, name, description, price, inventory, created_at, updated_at FROM products WHERE id = ?", id).
		Scan(&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Inventory, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts handles GET /api/products/ - every product, insertion order
func (h *ProductHandler) ListProducts(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Listing products")

	// Try cache first
	if cached, err := h.cache.Get(productListCacheKey); err == nil {
		if data, ok := cacheBytes(cached); ok {
			logRequest(ctx, "debug", "Serving from cache")
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	rows, err := h.db.Query(
		"SELECT id, name, description, price, inventory, created_at, updated_at FROM products ORDER BY id ASC")
	if err != nil {
		logRequest(ctx, "error", "Failed to query products", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
		return
	}
	defer rows.Close()

	products := []models.Product{} // serialize as [] when empty, not null
	for rows.Next() {
		var product models.Product
		err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Inventory, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			logRequest(ctx, "error", "Failed to scan product", zap.Error(err))
			continue
		}
		products = append(products, product)
	}

	// Cache the result
	response, _ := json.Marshal(products)
	h.cache.Set(productListCacheKey, response, 5*time.Minute)

	logRequest(ctx, "info", "Products retrieved successfully", zap.Int("count", len(products)))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}

// CreateProduct handles POST /api/products/ - validate and persist one product
func (h *ProductHandler) CreateProduct(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	req, fieldErrs, err := decodeProductInput(r)
	if err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}

	if len(fieldErrs) == 0 {
		fieldErrs = validateProduct(req, false)
	}
	if len(fieldErrs) > 0 {
		logRequest(ctx, "error", "Product validation failed", zap.Any("errors", fieldErrs))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(fieldErrs)
		return
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	logRequest(ctx, "info", "Creating product", zap.String("name", *req.Name))

	now := time.Now().UTC()
	result, err := h.db.Exec(
		"INSERT INTO products (name, description, price, inventory, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		*req.Name, description, *req.Price, *req.Inventory, now, now)
	if err != nil {
		logRequest(ctx, "error", "Failed to create product", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Failed to create product"))
		return
	}

	id, _ := result.LastInsertId()

	h.invalidateProduct(int(id))

	logRequest(ctx, "info", "Product created successfully", zap.Int64("product_id", id))

	product := models.Product{
		ID:          int(id),
		Name:        *req.Name,
		Description: description,
		Price:       *req.Price,
		Inventory:   *req.Inventory,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}

// GetProduct handles GET /api/product/{id}/ - retrieve by numeric id
func (h *ProductHandler) GetProduct(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(ctx, "error", "Invalid product ID", zap.String("id", idStr))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid product ID"))
		return
	}

	logRequest(ctx, "info", "Getting product", zap.Int("product_id", id))

	// Try cache first
	cacheKey := itemCacheKey(id)
	if cached, err := h.cache.Get(cacheKey); err == nil {
		if data, ok := cacheBytes(cached); ok {
			logRequest(ctx, "debug", "Serving product from cache", zap.Int("product_id", id))
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	product, err := h.fetchProduct(id)
	if err == sql.ErrNoRows {
		logRequest(ctx, "info", "Product not found", zap.Int("product_id", id))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(errs.NewNotFoundError("Product not found"))
		return
	}
	if err != nil {
		logRequest(ctx, "error", "Failed to query product", zap.Error(err), zap.Int("product_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
		return
	}

	// Cache the result
	response, _ := json.Marshal(product)
	h.cache.Set(cacheKey, response, 10*time.Minute)

	logRequest(ctx, "info", "Product retrieved successfully", zap.Int("product_id", id))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}

// UpdateProduct handles PUT /api/product/{id}/ - partial or full update.
// Present fields are re-validated and applied in one statement; omitted
// fields keep their prior value.
func (h *ProductHandler) UpdateProduct(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(ctx, "error", "Invalid product ID", zap.String("id", idStr))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid product ID"))
		return
	}

	// Existence check comes first: an unknown id is 404 even if the
	// payload would also have been invalid.
	if _, err := h.fetchProduct(id); err != nil {
		if err == sql.ErrNoRows {
			logRequest(ctx, "info", "Product not found for update", zap.Int("product_id", id))
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(errs.NewNotFoundError("Product not found"))
			return
		}
		logRequest(ctx, "error", "Failed to query product", zap.Error(err), zap.Int("product_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
		return
	}

	req, fieldErrs, err := decodeProductInput(r)
	if err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}

	if len(fieldErrs) == 0 {
		fieldErrs = validateProduct(req, true)
	}
	if len(fieldErrs) > 0 {
		logRequest(ctx, "error", "Product validation failed", zap.Any("errors", fieldErrs), zap.Int("product_id", id))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(fieldErrs)
		return
	}

	logRequest(ctx, "info", "Updating product", zap.Int("product_id", id))

	// Build update query dynamically from the fields that were sent
	setParts := []string{}
	args := []interface{}{}

	if req.Name != nil {
		setParts = append(setParts, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Description != nil {
		setParts = append(setParts, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Price != nil {
		setParts = append(setParts, "price = ?")
		args = append(args, *req.Price)
	}
	if req.Inventory != nil {
		setParts = append(setParts, "inventory = ?")
		args = append(args, *req.Inventory)
	}

	if len(setParts) > 0 {
		setParts = append(setParts, "updated_at = ?")
		args = append(args, time.Now().UTC())
		args = append(args, id)

		query := "UPDATE products SET " + strings.Join(setParts, ", ") + " WHERE id = ?"
		if _, err := h.db.Exec(query, args...); err != nil {
			logRequest(ctx, "error", "Failed to update product", zap.Error(err), zap.Int("product_id", id))
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errs.NewInternalServerError("Failed to update product"))
			return
		}

		h.invalidateProduct(id)
	}

	product, err := h.fetchProduct(id)
	if err != nil {
		logRequest(ctx, "error", "Failed to reload product", zap.Error(err), zap.Int("product_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(ctx, "info", "Product updated successfully", zap.Int("product_id", id))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(product)
}

// DeleteProduct handles DELETE /api/product/{id}/ - remove by id.
// Deleting an already-removed id is a plain 404, never a distinct error.
func (h *ProductHandler) DeleteProduct(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(ctx, "error", "Invalid product ID", zap.String("id", idStr))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid product ID"))
		return
	}

	logRequest(ctx, "info", "Deleting product", zap.Int("product_id", id))

	result, err := h.db.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		logRequest(ctx, "error", "Failed to delete product", zap.Error(err), zap.Int("product_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Failed to delete product"))
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		logRequest(ctx, "info", "Product not found for deletion", zap.Int("product_id", id))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(errs.NewNotFoundError("Product not found"))
		return
	}

	h.invalidateProduct(id)

	logRequest(ctx, "info", "Product deleted successfully", zap.Int("product_id", id))

	w.WriteHeader(http.StatusNoContent)
}
