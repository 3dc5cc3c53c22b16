package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OrderBuilder turns the locked cart lines into an order, or refuses with an error that aborts the checkout.
type OrderBuilder func(lines []*models.CartItem) (*models.Order, error)

type OrderRepository interface {
	CreateFromCart(ctx context.Context, userID uuid.UUID, build OrderBuilder) (*models.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	SetPaymentIntent(ctx context.Context, id uuid.UUID, paymentIntentID string) error
	TransitionByPaymentIntent(ctx context.Context, paymentIntentID string, from, to models.OrderStatus) (*models.Order, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderColumns = `id, order_number, user_id, status, full_name, email, phone, address, city, postal_code, country,
		payment_method, payment_intent_id, subtotal, tax, shipping, total, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}

	err := row.Scan(&order.ID, &order.OrderNumber, &order.UserID, &order.Status,
		&order.FullName, &order.Email, &order.Phone, &order.Address, &order.City, &order.PostalCode, &order.Country,
		&order.PaymentMethod, &order.PaymentIntentID, &order.Subtotal, &order.Tax, &order.Shipping, &order.Total,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return order, nil
}

/*
CreateFromCart runs the whole checkout in one transaction:
lock cart, lock products, build, insert order and items, decrement stock, empty cart.
Products are locked in id order so concurrent checkouts cannot deadlock.
*/
func (r *orderRepository) CreateFromCart(ctx context.Context, userID uuid.UUID, build OrderBuilder) (*models.Order, error) {
	dbCtx, cancel := utils.WithTxTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning checkout transaction: %w", err)
	}

	// no-op once committed
	defer func() { _ = tx.Rollback() }()

	lines := []*models.CartItem{}

	var cartID uuid.UUID

	err = tx.QueryRowContext(dbCtx, `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&cartID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no cart yet, build sees an empty cart
	case err != nil:
		return nil, fmt.Errorf("locking cart: %w", err)
	default:
		lines, err = lockCartLines(dbCtx, tx, cartID)
		if err != nil {
			return nil, err
		}
	}

	order, err := build(lines)
	if err != nil {
		return nil, err
	}

	order.UserID = userID

	query := `
		INSERT INTO orders (order_number, user_id, status, full_name, email, phone, address, city, postal_code, country,
			payment_method, subtotal, tax, shipping, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, order.OrderNumber, order.UserID, order.Status,
		order.FullName, order.Email, order.Phone, order.Address, order.City, order.PostalCode, order.Country,
		order.PaymentMethod, order.Subtotal, order.Tax, order.Shipping, order.Total).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if _, dup := uniqueViolationOn(err); dup {
			return nil, ErrDuplicateOrderNumber
		}
		return nil, fmt.Errorf("inserting order: %w", err)
	}

	stockByProduct := make(map[int64]int, len(lines))
	for _, line := range lines {
		stockByProduct[line.ProductID] = line.Product.Stock
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		query := `
			INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`

		if err := tx.QueryRowContext(dbCtx, query, item.OrderID, item.ProductID, item.ProductName, item.ProductPrice, item.Quantity).Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("inserting order item: %w", err)
		}

		if item.ProductID == nil {
			continue
		}

		result, err := tx.ExecContext(dbCtx, `UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`, item.Quantity, *item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("decrementing stock: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("decrementing stock: %w", err)
		}

		if affected == 0 {
			return nil, &StockShortage{ProductID: *item.ProductID, ProductName: item.ProductName, Available: stockByProduct[*item.ProductID]}
		}
	}

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("clearing cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checkout: %w", err)
	}

	return order, nil
}

func lockCartLines(ctx context.Context, tx *sql.Tx, cartID uuid.UUID) ([]*models.CartItem, error) {
	query := `SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY p.id
		FOR UPDATE OF p`

	rows, err := tx.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("locking cart lines: %w", err)
	}

	defer rows.Close()

	lines := []*models.CartItem{}

	for rows.Next() {
		line, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cart line: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (r *orderRepository) getOrder(ctx context.Context, where string, arg any) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	if err := r.attachItems(dbCtx, []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.getOrder(ctx, `id = $1`, id)
}

func (r *orderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return r.getOrder(ctx, `order_number = $1`, orderNumber)
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * size

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(dbCtx, query, userID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	orders := []*models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachItems(dbCtx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// attachItems loads the items of all given orders in one query.
func (r *orderRepository) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[uuid.UUID]*models.Order, len(orders))

	for _, order := range orders {
		order.Items = []models.OrderItem{}
		ids = append(ids, order.ID.String())
		byID[order.ID] = order
	}

	query := `
		SELECT id, order_id, product_id, product_name, product_price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get the order items: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var (
			item      models.OrderItem
			productID sql.NullInt64
		)

		if err := rows.Scan(&item.ID, &item.OrderID, &productID, &item.ProductName, &item.ProductPrice, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		if productID.Valid {
			id := productID.Int64
			item.ProductID = &id
		}

		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	return rows.Err()
}

func (r *orderRepository) execOne(ctx context.Context, query string, args ...any) error {
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

// UpdateOrderStatus never touches the frozen totals.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return r.execOne(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
}

func (r *orderRepository) SetPaymentIntent(ctx context.Context, id uuid.UUID, paymentIntentID string) error {
	return r.execOne(ctx, `UPDATE orders SET payment_intent_id = $1, updated_at = NOW() WHERE id = $2`, paymentIntentID, id)
}

// TransitionByPaymentIntent moves the order only if it is still in the from state. ErrNotFound otherwise.
func (r *orderRepository) TransitionByPaymentIntent(ctx context.Context, paymentIntentID string, from, to models.OrderStatus) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE payment_intent_id = $2 AND status = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, to, paymentIntentID, from))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}
