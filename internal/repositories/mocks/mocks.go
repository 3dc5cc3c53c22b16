// Package mocks holds testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func errAt(ret mock.Arguments, i int) error {
	if err := ret.Get(i); err != nil {
		return err.(error)
	}

	return nil
}

// UserRepository

type UserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(t testingT) *UserRepository {
	m := &UserRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return errAt(m.Called(ctx, user), 0)
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ret := m.Called(ctx, email)
	user, _ := ret.Get(0).(*models.User)

	return user, errAt(ret, 1)
}

func (m *UserRepository) GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ret := m.Called(ctx, id)
	user, _ := ret.Get(0).(*models.User)

	return user, errAt(ret, 1)
}

// RateLimitRepository

type RateLimitRepository struct {
	mock.Mock
}

var _ repository.RateLimitRepository = (*RateLimitRepository)(nil)

func NewRateLimitRepository(t testingT) *RateLimitRepository {
	m := &RateLimitRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *RateLimitRepository) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error) {
	ret := m.Called(ctx, email)

	return ret.Bool(0), ret.Int(1), ret.Int(2), errAt(ret, 3)
}

// CategoryRepository

type CategoryRepository struct {
	mock.Mock
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository(t testingT) *CategoryRepository {
	m := &CategoryRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *CategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return errAt(m.Called(ctx, category), 0)
}

func (m *CategoryRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	ret := m.Called(ctx)
	categories, _ := ret.Get(0).([]*models.Category)

	return categories, errAt(ret, 1)
}

func (m *CategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	return errAt(m.Called(ctx, id), 0)
}

// ProductRepository

type ProductRepository struct {
	mock.Mock
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(t testingT) *ProductRepository {
	m := &ProductRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return errAt(m.Called(ctx, product), 0)
}

func (m *ProductRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	ret := m.Called(ctx, id)
	product, _ := ret.Get(0).(*models.Product)

	return product, errAt(ret, 1)
}

func (m *ProductRepository) UpdateProduct(ctx context.Context, id int64, patch *models.UpdateProductRequest) (*models.Product, error) {
	ret := m.Called(ctx, id, patch)
	product, _ := ret.Get(0).(*models.Product)

	return product, errAt(ret, 1)
}

func (m *ProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	return errAt(m.Called(ctx, id), 0)
}

func (m *ProductRepository) ListProducts(ctx context.Context, filter models.ProductFilter, page, size int) ([]*models.Product, int, error) {
	ret := m.Called(ctx, filter, page, size)
	products, _ := ret.Get(0).([]*models.Product)

	return products, ret.Int(1), errAt(ret, 2)
}

func (m *ProductRepository) ListRelated(ctx context.Context, product *models.Product, limit int) ([]*models.Product, error) {
	ret := m.Called(ctx, product, limit)
	products, _ := ret.Get(0).([]*models.Product)

	return products, errAt(ret, 1)
}

func (m *ProductRepository) SearchProducts(ctx context.Context, term string, limit int) ([]*models.Product, error) {
	ret := m.Called(ctx, term, limit)
	products, _ := ret.Get(0).([]*models.Product)

	return products, errAt(ret, 1)
}

// CartRepository

type CartRepository struct {
	mock.Mock
}

var _ repository.CartRepository = (*CartRepository)(nil)

func NewCartRepository(t testingT) *CartRepository {
	m := &CartRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *CartRepository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	ret := m.Called(ctx, userID)
	cart, _ := ret.Get(0).(*models.Cart)

	return cart, errAt(ret, 1)
}

func (m *CartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]*models.CartItem, error) {
	ret := m.Called(ctx, cartID)
	items, _ := ret.Get(0).([]*models.CartItem)

	return items, errAt(ret, 1)
}

func (m *CartRepository) GetItem(ctx context.Context, cartID uuid.UUID, itemID int64) (*models.CartItem, error) {
	ret := m.Called(ctx, cartID, itemID)
	item, _ := ret.Get(0).(*models.CartItem)

	return item, errAt(ret, 1)
}

func (m *CartRepository) GetItemByProduct(ctx context.Context, cartID uuid.UUID, productID int64) (*models.CartItem, error) {
	ret := m.Called(ctx, cartID, productID)
	item, _ := ret.Get(0).(*models.CartItem)

	return item, errAt(ret, 1)
}

func (m *CartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	return errAt(m.Called(ctx, item), 0)
}

func (m *CartRepository) UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID int64, quantity int) error {
	return errAt(m.Called(ctx, cartID, itemID, quantity), 0)
}

func (m *CartRepository) DeleteItem(ctx context.Context, cartID uuid.UUID, itemID int64) error {
	return errAt(m.Called(ctx, cartID, itemID), 0)
}

func (m *CartRepository) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return errAt(m.Called(ctx, cartID), 0)
}

func (m *CartRepository) CountItems(ctx context.Context, userID uuid.UUID) (int, error) {
	ret := m.Called(ctx, userID)

	return ret.Int(0), errAt(ret, 1)
}

// OrderRepository

type OrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(t testingT) *OrderRepository {
	m := &OrderRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// CreateFromCart accepts either fixed return values or a function with the method's signature.
func (m *OrderRepository) CreateFromCart(ctx context.Context, userID uuid.UUID, build repository.OrderBuilder) (*models.Order, error) {
	ret := m.Called(ctx, userID, build)

	if fn, ok := ret.Get(0).(func(context.Context, uuid.UUID, repository.OrderBuilder) (*models.Order, error)); ok {
		return fn(ctx, userID, build)
	}

	order, _ := ret.Get(0).(*models.Order)

	return order, errAt(ret, 1)
}

func (m *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	ret := m.Called(ctx, id)
	order, _ := ret.Get(0).(*models.Order)

	return order, errAt(ret, 1)
}

func (m *OrderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	ret := m.Called(ctx, orderNumber)
	order, _ := ret.Get(0).(*models.Order)

	return order, errAt(ret, 1)
}

func (m *OrderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	ret := m.Called(ctx, userID, page, size)
	orders, _ := ret.Get(0).([]*models.Order)

	return orders, ret.Int(1), errAt(ret, 2)
}

func (m *OrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return errAt(m.Called(ctx, id, status), 0)
}

func (m *OrderRepository) SetPaymentIntent(ctx context.Context, id uuid.UUID, paymentIntentID string) error {
	return errAt(m.Called(ctx, id, paymentIntentID), 0)
}

func (m *OrderRepository) TransitionByPaymentIntent(ctx context.Context, paymentIntentID string, from, to models.OrderStatus) (*models.Order, error) {
	ret := m.Called(ctx, paymentIntentID, from, to)
	order, _ := ret.Get(0).(*models.Order)

	return order, errAt(ret, 1)
}
