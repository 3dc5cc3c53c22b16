package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{"id", "order_number", "user_id", "status", "full_name", "email", "phone", "address", "city",
	"postal_code", "country", "payment_method", "payment_intent_id", "subtotal", "tax", "shipping", "total", "created_at", "updated_at"}

// snapshotBuilder mirrors what the order service does with locked lines.
func snapshotBuilder(number string) repository.OrderBuilder {
	return func(lines []*models.CartItem) (*models.Order, error) {
		if len(lines) == 0 {
			return nil, appErrors.EmptyCartError()
		}

		order := &models.Order{OrderNumber: number, Status: models.OrderStatusPending, PaymentMethod: models.PaymentMethodCash}
		for _, line := range lines {
			if line.Quantity > line.Product.Stock {
				return nil, appErrors.StockConflictError(line.Product.Name, line.Product.Stock)
			}
			productID := line.ProductID
			order.Items = append(order.Items, models.OrderItem{
				ProductID:    &productID,
				ProductName:  line.Product.Name,
				ProductPrice: line.Product.Price,
				Quantity:     line.Quantity,
			})
		}
		order.Subtotal = decimal.NewFromInt(25)
		order.Total = decimal.NewFromInt(25)

		return order, nil
	}
}

func expectLockedCart(mock sqlmock.Sqlmock, userID, cartID uuid.UUID, rows *sqlmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM carts WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cartID.String()))
	mock.ExpectQuery(`WHERE ci.cart_id = \$1\s+ORDER BY p.id\s+FOR UPDATE OF p`).
		WithArgs(cartID).
		WillReturnRows(rows)
}

func TestOrderRepository_CreateFromCart(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Success - Order written, stock decremented, cart emptied", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)
		userID, cartID, orderID := uuid.New(), uuid.New(), uuid.New()

		expectLockedCart(mock, userID, cartID, sqlmock.NewRows(cartItemCols).
			AddRow(1, cartID.String(), 10, 2, now, 10, nil, "Mug", "", "10.00", 5, true, now, now).
			AddRow(2, cartID.String(), 11, 1, now, 11, nil, "Tray", "", "5.00", 1, true, now, now))

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(orderID.String(), now, now))
		mock.ExpectQuery(`INSERT INTO order_items`).
			WithArgs(orderID, int64(10), "Mug", sqlmock.AnyArg(), 2).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
		mock.ExpectExec(`UPDATE products SET stock = stock - \$1, updated_at = NOW\(\) WHERE id = \$2 AND stock >= \$1`).
			WithArgs(2, int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO order_items`).
			WithArgs(orderID, int64(11), "Tray", sqlmock.AnyArg(), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
		mock.ExpectExec(`UPDATE products SET stock = stock - \$1`).
			WithArgs(1, int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM cart_items WHERE cart_id = \$1`).
			WithArgs(cartID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		// Act
		order, err := repo.CreateFromCart(ctx, userID, snapshotBuilder("ABCDE12345"))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, orderID, order.ID)
		assert.Equal(t, userID, order.UserID)
		require.Len(t, order.Items, 2)
		assert.Equal(t, int64(100), order.Items[0].ID)
		assert.Equal(t, orderID, order.Items[1].OrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - No cart is an empty cart and nothing is written", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)
		userID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM carts WHERE user_id = \$1 FOR UPDATE`).
			WithArgs(userID).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		// Act
		order, err := repo.CreateFromCart(ctx, userID, snapshotBuilder("ABCDE12345"))

		// Assert
		assert.Nil(t, order)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeEmptyCart))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Builder refusal rolls back", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)
		userID, cartID := uuid.New(), uuid.New()

		expectLockedCart(mock, userID, cartID, sqlmock.NewRows(cartItemCols).
			AddRow(1, cartID.String(), 10, 2, now, 10, nil, "Mug", "", "10.00", 1, true, now, now))
		mock.ExpectRollback()

		// Act
		order, err := repo.CreateFromCart(ctx, userID, snapshotBuilder("ABCDE12345"))

		// Assert
		assert.Nil(t, order)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeStockConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Duplicate order number", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)
		userID, cartID := uuid.New(), uuid.New()

		expectLockedCart(mock, userID, cartID, sqlmock.NewRows(cartItemCols).
			AddRow(1, cartID.String(), 10, 1, now, 10, nil, "Mug", "", "10.00", 5, true, now, now))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_order_number_key"})
		mock.ExpectRollback()

		// Act
		_, err := repo.CreateFromCart(ctx, userID, snapshotBuilder("ABCDE12345"))

		// Assert
		assert.ErrorIs(t, err, repository.ErrDuplicateOrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Guarded decrement matches no row", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)
		userID, cartID, orderID := uuid.New(), uuid.New(), uuid.New()

		expectLockedCart(mock, userID, cartID, sqlmock.NewRows(cartItemCols).
			AddRow(1, cartID.String(), 10, 1, now, 10, nil, "Mug", "", "10.00", 1, true, now, now))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(orderID.String(), now, now))
		mock.ExpectQuery(`INSERT INTO order_items`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
		mock.ExpectExec(`UPDATE products SET stock = stock - \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		// Act
		_, err := repo.CreateFromCart(ctx, userID, snapshotBuilder("ABCDE12345"))

		// Assert
		assert.ErrorIs(t, err, repository.ErrStockConflict)

		var shortage *repository.StockShortage
		require.ErrorAs(t, err, &shortage)
		assert.Equal(t, "Mug", shortage.ProductName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Storage error mid-transaction rolls back", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)
		userID, cartID, orderID := uuid.New(), uuid.New(), uuid.New()
		dbErr := errors.New("disk full")

		expectLockedCart(mock, userID, cartID, sqlmock.NewRows(cartItemCols).
			AddRow(1, cartID.String(), 10, 1, now, 10, nil, "Mug", "", "10.00", 3, true, now, now))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(orderID.String(), now, now))
		mock.ExpectQuery(`INSERT INTO order_items`).
			WillReturnError(dbErr)
		mock.ExpectRollback()

		// Act
		_, err := repo.CreateFromCart(ctx, userID, snapshotBuilder("ABCDE12345"))

		// Assert
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_Queries(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewOrderRepo(db)
	ctx := context.Background()
	now := time.Now()

	orderRow := func(rows *sqlmock.Rows, id, userID uuid.UUID, number string) *sqlmock.Rows {
		return rows.AddRow(id.String(), number, userID.String(), "pending", "Jane Doe", "jane@example.com", "555", "1 Main St",
			"Springfield", "12345", "US", "credit_card", "", "25.00", "2.50", "0.00", "27.50", now, now)
	}

	t.Run("GetOrderByNumber with items", func(t *testing.T) {
		// Arrange
		id, userID := uuid.New(), uuid.New()

		mock.ExpectQuery(`FROM orders WHERE order_number = \$1`).
			WithArgs("ABCDE12345").
			WillReturnRows(orderRow(sqlmock.NewRows(orderCols), id, userID, "ABCDE12345"))
		mock.ExpectQuery(`FROM order_items\s+WHERE order_id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "product_price", "quantity"}).
				AddRow(1, id.String(), 10, "Mug", "10.00", 2).
				AddRow(2, id.String(), nil, "Retired Tray", "5.00", 1))

		// Act
		order, err := repo.GetOrderByNumber(ctx, "ABCDE12345")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.True(t, decimal.RequireFromString("27.50").Equal(order.Total))
		require.Len(t, order.Items, 2)
		assert.Nil(t, order.Items[1].ProductID)
		assert.Equal(t, "Retired Tray", order.Items[1].ProductName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetOrderByID_NotFound", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`FROM orders WHERE id = \$1`).WithArgs(id).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetOrderByID(ctx, id)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListOrdersByUser returns real total", func(t *testing.T) {
		// Arrange
		userID := uuid.New()
		first, second := uuid.New(), uuid.New()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
		rows := orderRow(sqlmock.NewRows(orderCols), first, userID, "AAAAAAAAAA")
		rows = orderRow(rows, second, userID, "BBBBBBBBBB")
		mock.ExpectQuery(`WHERE user_id = \$1\s+ORDER BY created_at DESC, id DESC\s+LIMIT \$2 OFFSET \$3`).
			WithArgs(userID, 2, 2).
			WillReturnRows(rows)
		mock.ExpectQuery(`FROM order_items`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "product_price", "quantity"}).
				AddRow(1, second.String(), 10, "Mug", "10.00", 1))

		// Act
		orders, total, err := repo.ListOrdersByUser(ctx, userID, 2, 2)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		require.Len(t, orders, 2)
		assert.Empty(t, orders[0].Items)
		assert.Len(t, orders[1].Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateOrderStatus", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs("shipped", id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateOrderStatus(ctx, id, models.OrderStatusShipped))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SetPaymentIntent_NotFound", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectExec(`UPDATE orders SET payment_intent_id = \$1`).
			WithArgs("pi_123", id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetPaymentIntent(ctx, id, "pi_123"), repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("TransitionByPaymentIntent", func(t *testing.T) {
		id, userID := uuid.New(), uuid.New()

		mock.ExpectQuery(`UPDATE orders SET status = \$1, updated_at = NOW\(\)\s+WHERE payment_intent_id = \$2 AND status = \$3`).
			WithArgs("processing", "pi_123", "pending").
			WillReturnRows(orderRow(sqlmock.NewRows(orderCols), id, userID, "ABCDE12345"))

		order, err := repo.TransitionByPaymentIntent(ctx, "pi_123", models.OrderStatusPending, models.OrderStatusProcessing)

		require.NoError(t, err)
		assert.Equal(t, id, order.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_ReloadReadsStoredPrices(t *testing.T) {
	// Arrange
	regexpMatcher := sqlmock.QueryMatcherRegexp
	matcher := sqlmock.QueryMatcherFunc(func(expected, actual string) error {
		if strings.Contains(actual, "FROM order") && strings.Contains(actual, "products") {
			return fmt.Errorf("order reload must not read the catalog: %s", actual)
		}
		return regexpMatcher.Match(expected, actual)
	})

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	orders := repository.NewOrderRepo(db)
	products := repository.NewProductRepo(db)
	id, userID, now := uuid.New(), uuid.New(), time.Now()

	newPrice := decimal.RequireFromString("12.50")
	mock.ExpectQuery(`UPDATE products SET`).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(10, nil, "Mug", "", "12.50", 4, true, now, now, nil, nil, nil))

	for _, lookup := range []string{`FROM orders WHERE order_number = \$1`, `FROM orders WHERE id = \$1`} {
		mock.ExpectQuery(lookup).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(id.String(), "ABCDE12345", userID.String(), "pending", "Jane Doe",
				"jane@example.com", "555", "1 Main St", "Springfield", "12345", "US", "cash", "", "20.00", "2.00", "0.00", "22.00", now, now))
		mock.ExpectQuery(`FROM order_items\s+WHERE order_id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "product_price", "quantity"}).
				AddRow(1, id.String(), 10, "Mug", "10.00", 2))
	}

	// Act
	_, err = products.UpdateProduct(ctx, 10, &models.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)

	byNumber, err := orders.GetOrderByNumber(ctx, "ABCDE12345")
	require.NoError(t, err)
	byID, err := orders.GetOrderByID(ctx, id)
	require.NoError(t, err)

	// Assert
	for _, order := range []*models.Order{byNumber, byID} {
		assert.True(t, decimal.RequireFromString("20.00").Equal(order.Subtotal))
		assert.True(t, decimal.RequireFromString("2.00").Equal(order.Tax))
		assert.True(t, decimal.RequireFromString("22.00").Equal(order.Total))
		require.Len(t, order.Items, 1)
		assert.True(t, decimal.RequireFromString("10.00").Equal(order.Items[0].ProductPrice))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
