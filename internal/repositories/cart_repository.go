package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
)

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]*models.CartItem, error)
	GetItem(ctx context.Context, cartID uuid.UUID, itemID int64) (*models.CartItem, error)
	GetItemByProduct(ctx context.Context, cartID uuid.UUID, productID int64) (*models.CartItem, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, cartID uuid.UUID, itemID int64) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
	CountItems(ctx context.Context, userID uuid.UUID) (int, error)
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

const cartItemColumns = `ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.added_at,
		p.id, p.category_id, p.name, p.description, p.price, p.stock, p.is_active, p.created_at, p.updated_at`

func scanCartItem(row rowScanner) (*models.CartItem, error) {
	item := &models.CartItem{}
	product := &models.Product{}

	var categoryID sql.NullInt64

	err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.AddedAt,
		&product.ID, &categoryID, &product.Name, &product.Description, &product.Price, &product.Stock, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		id := categoryID.Int64
		product.CategoryID = &id
	}

	item.Product = product

	return item, nil
}

// GetOrCreateCart relies on the unique user_id so two first requests end up with the same cart.
func (r *cartRepository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := r.DB.ExecContext(dbCtx, `INSERT INTO carts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return nil, fmt.Errorf("creating cart: %w", err)
	}

	cart := &models.Cart{}

	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	if err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]*models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at ASC, ci.id ASC`

	rows, err := r.DB.QueryContext(dbCtx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("querying cart items: %w", err)
	}

	defer rows.Close()

	items := []*models.CartItem{}

	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cart item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *cartRepository) getItem(ctx context.Context, where string, args ...any) (*models.CartItem, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ` + where

	item, err := scanCartItem(r.DB.QueryRowContext(dbCtx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying cart item: %w", err)
	}

	return item, nil
}

func (r *cartRepository) GetItem(ctx context.Context, cartID uuid.UUID, itemID int64) (*models.CartItem, error) {
	return r.getItem(ctx, `ci.cart_id = $1 AND ci.id = $2`, cartID, itemID)
}

func (r *cartRepository) GetItemByProduct(ctx context.Context, cartID uuid.UUID, productID int64) (*models.CartItem, error) {
	return r.getItem(ctx, `ci.cart_id = $1 AND ci.product_id = $2`, cartID, productID)
}

func (r *cartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, added_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, item.CartID, item.ProductID, item.Quantity).Scan(&item.ID, &item.AddedAt)
	if _, dup := uniqueViolationOn(err); dup {
		return ErrDuplicateEntry
	}

	return err
}

func (r *cartRepository) exec(ctx context.Context, query string, args ...any) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID int64, quantity int) error {
	return r.exec(ctx, `UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND id = $3`, quantity, cartID, itemID)
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID uuid.UUID, itemID int64) error {
	return r.exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, itemID)
}

func (r *cartRepository) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	_, err := r.DB.ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)

	return err
}

// CountItems counts lines, not units. A user without a cart has zero.
func (r *cartRepository) CountItems(ctx context.Context, userID uuid.UUID) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT COUNT(ci.id)
		FROM carts c
		JOIN cart_items ci ON ci.cart_id = c.id
		WHERE c.user_id = $1
	`

	var count int
	if err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting cart items: %w", err)
	}

	return count, nil
}
