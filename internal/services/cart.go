package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error)
	AddItem(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*models.CartView, string, error)
	SetQuantity(ctx context.Context, userID uuid.UUID, itemID int64, quantity int) (*models.CartView, string, error)
	Increment(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error)
	Decrement(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error)
	Clear(ctx context.Context, userID uuid.UUID) (*models.CartView, string, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type cartService struct {
	carts      repository.CartRepository
	products   repository.ProductRepository
	calculator pricing.Calculator
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, calculator pricing.Calculator) CartService {
	return &cartService{carts: carts, products: products, calculator: calculator}
}

func (s *cartService) cart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) view(ctx context.Context, cart *models.Cart) (*models.CartView, error) {
	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart items").WithError(err)
	}

	if items == nil {
		items = []*models.CartItem{}
	}

	view := &models.CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     items,
		Totals:    s.calculator.ForCart(items),
		UpdatedAt: cart.UpdatedAt,
	}

	for _, item := range items {
		view.TotalItems += item.Quantity
	}

	return view, nil
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error) {
	cart, err := s.cart(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.view(ctx, cart)
}

// item loads a line of the user's cart with the product's current stock.
func (s *cartService) item(ctx context.Context, cart *models.Cart, itemID int64) (*models.CartItem, error) {
	item, err := s.carts.GetItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.NotFoundError("Item not found in your cart").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to load cart item").WithError(err)
	}

	return item, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*models.CartView, string, error) {
	view, msg, err := s.addItem(ctx, userID, productID, quantity)
	recordCart("add", err)

	return view, msg, err
}

func (s *cartService) addItem(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*models.CartView, string, error) {
	if quantity == 0 {
		quantity = 1
	}

	if quantity < 0 {
		return nil, "", appErrors.MinimumQuantityError()
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", appErrors.NotFoundError("Product not found").WithError(err)
		}
		return nil, "", appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if product.Stock < 1 {
		return nil, "", appErrors.OutOfStockError(product.Name)
	}

	cart, err := s.cart(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	existing, err := s.carts.GetItemByProduct(ctx, cart.ID, productID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", appErrors.DatabaseError("Failed to load cart item").WithError(err)
	}

	var message string

	if existing == nil {
		if quantity > product.Stock {
			return nil, "", appErrors.InsufficientStockError(product.Stock)
		}

		item := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		err := s.carts.AddItem(ctx, item)

		switch {
		case err == nil:
			message = fmt.Sprintf("%s added to cart!", product.Name)
		case errors.Is(err, repository.ErrDuplicateEntry):
			// another request inserted the line first; merge into it
			existing, err = s.carts.GetItemByProduct(ctx, cart.ID, productID)
			if err != nil {
				return nil, "", appErrors.DatabaseError("Failed to load cart item").WithError(err)
			}
		default:
			return nil, "", appErrors.DatabaseError("Failed to add item to cart").WithError(err)
		}
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if newQuantity > product.Stock {
			return nil, "", appErrors.InsufficientStockError(product.Stock)
		}

		if err := s.carts.UpdateItemQuantity(ctx, cart.ID, existing.ID, newQuantity); err != nil {
			return nil, "", appErrors.DatabaseError("Failed to update cart").WithError(err)
		}

		message = fmt.Sprintf("Increased %s quantity to %d", product.Name, newQuantity)
	}

	middleware.LoggerFromContext(ctx).Info("Cart updated", slog.String("userID", userID.String()), slog.Int64("productId", productID))

	view, err := s.view(ctx, cart)
	if err != nil {
		return nil, "", err
	}

	return view, message, nil
}

func (s *cartService) SetQuantity(ctx context.Context, userID uuid.UUID, itemID int64, quantity int) (*models.CartView, string, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	view, msg, err := s.setQuantity(ctx, userID, itemID, func(item *models.CartItem) (int, error) {
		if quantity > item.Product.Stock {
			return 0, appErrors.InsufficientStockError(item.Product.Stock)
		}
		return quantity, nil
	})
	recordCart("set_quantity", err)

	return view, msg, err
}

func (s *cartService) Increment(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
	view, msg, err := s.setQuantity(ctx, userID, itemID, func(item *models.CartItem) (int, error) {
		if item.Quantity+1 > item.Product.Stock {
			return 0, appErrors.StockLimitReachedError(item.Product.Stock)
		}
		return item.Quantity + 1, nil
	})
	recordCart("increment", err)

	return view, msg, err
}

func (s *cartService) Decrement(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
	view, msg, err := s.setQuantity(ctx, userID, itemID, func(item *models.CartItem) (int, error) {
		if item.Quantity-1 < 1 {
			return 0, appErrors.MinimumQuantityError()
		}
		return item.Quantity - 1, nil
	})
	recordCart("decrement", err)

	return view, msg, err
}

// setQuantity applies next to the line's current state. A rejected change leaves the line untouched.
func (s *cartService) setQuantity(ctx context.Context, userID uuid.UUID, itemID int64, next func(*models.CartItem) (int, error)) (*models.CartView, string, error) {
	cart, err := s.cart(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	item, err := s.item(ctx, cart, itemID)
	if err != nil {
		return nil, "", err
	}

	quantity, err := next(item)
	if err != nil {
		return nil, "", err
	}

	if err := s.carts.UpdateItemQuantity(ctx, cart.ID, item.ID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", appErrors.NotFoundError("Item not found in your cart").WithError(err)
		}
		return nil, "", appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	view, err := s.view(ctx, cart)
	if err != nil {
		return nil, "", err
	}

	return view, "Cart updated", nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
	view, msg, err := s.removeItem(ctx, userID, itemID)
	recordCart("remove", err)

	return view, msg, err
}

func (s *cartService) removeItem(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
	cart, err := s.cart(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	item, err := s.item(ctx, cart, itemID)
	if err != nil {
		return nil, "", err
	}

	if err := s.carts.DeleteItem(ctx, cart.ID, item.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", appErrors.NotFoundError("Item not found in your cart").WithError(err)
		}
		return nil, "", appErrors.DatabaseError("Failed to remove item").WithError(err)
	}

	view, err := s.view(ctx, cart)
	if err != nil {
		return nil, "", err
	}

	name := "Item"
	if item.Product != nil {
		name = item.Product.Name
	}

	return view, fmt.Sprintf("%s removed from cart", name), nil
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) (*models.CartView, string, error) {
	cart, err := s.cart(ctx, userID)
	if err != nil {
		recordCart("clear", err)
		return nil, "", err
	}

	if err := s.carts.ClearCart(ctx, cart.ID); err != nil {
		recordCart("clear", err)
		return nil, "", appErrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	view, err := s.view(ctx, cart)
	recordCart("clear", err)
	if err != nil {
		return nil, "", err
	}

	return view, "Cart cleared", nil
}

func (s *cartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.carts.CountItems(ctx, userID)
	if err != nil {
		return 0, appErrors.DatabaseError("Failed to count cart items").WithError(err)
	}

	return count, nil
}

func recordCart(operation string, err error) {
	result := "success"
	if appErr, ok := appErrors.IsAppError(err); ok {
		result = appErr.Code
	} else if err != nil {
		result = "error"
	}

	metrics.RecordCartOperation(operation, result)
}
