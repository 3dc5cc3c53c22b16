// Package mocks holds testify mocks for the service interfaces.
package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
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

// MockUserService

type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func NewMockUserService(t testingT) *MockUserService {
	m := &MockUserService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockUserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	ret := m.Called(ctx, req)
	user, _ := ret.Get(0).(*models.User)

	return user, errAt(ret, 1)
}

func (m *MockUserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	ret := m.Called(ctx, req)
	resp, _ := ret.Get(0).(*models.LoginResponse)

	return resp, errAt(ret, 1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ret := m.Called(ctx, id)
	user, _ := ret.Get(0).(*models.User)

	return user, errAt(ret, 1)
}

// MockCatalogService

type MockCatalogService struct {
	mock.Mock
}

var _ service.CatalogService = (*MockCatalogService)(nil)

func NewMockCatalogService(t testingT) *MockCatalogService {
	m := &MockCatalogService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockCatalogService) ListProducts(ctx context.Context, filter models.ProductFilter, page, pageSize int) ([]*models.Product, int, error) {
	ret := m.Called(ctx, filter, page, pageSize)
	products, _ := ret.Get(0).([]*models.Product)

	return products, ret.Int(1), errAt(ret, 2)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id int64) (*models.ProductDetail, error) {
	ret := m.Called(ctx, id)
	detail, _ := ret.Get(0).(*models.ProductDetail)

	return detail, errAt(ret, 1)
}

func (m *MockCatalogService) SearchSuggestions(ctx context.Context, query string) ([]models.SearchSuggestion, error) {
	ret := m.Called(ctx, query)
	suggestions, _ := ret.Get(0).([]models.SearchSuggestion)

	return suggestions, errAt(ret, 1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	ret := m.Called(ctx, req)
	product, _ := ret.Get(0).(*models.Product)

	return product, errAt(ret, 1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {
	ret := m.Called(ctx, id, req)
	product, _ := ret.Get(0).(*models.Product)

	return product, errAt(ret, 1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return errAt(m.Called(ctx, id), 0)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	ret := m.Called(ctx)
	categories, _ := ret.Get(0).([]*models.Category)

	return categories, errAt(ret, 1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	ret := m.Called(ctx, req)
	category, _ := ret.Get(0).(*models.Category)

	return category, errAt(ret, 1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return errAt(m.Called(ctx, id), 0)
}

// MockCartService

type MockCartService struct {
	mock.Mock
}

var _ service.CartService = (*MockCartService)(nil)

func NewMockCartService(t testingT) *MockCartService {
	m := &MockCartService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func cartResult(ret mock.Arguments) (*models.CartView, string, error) {
	view, _ := ret.Get(0).(*models.CartView)

	return view, ret.String(1), errAt(ret, 2)
}

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error) {
	ret := m.Called(ctx, userID)
	view, _ := ret.Get(0).(*models.CartView)

	return view, errAt(ret, 1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*models.CartView, string, error) {
	return cartResult(m.Called(ctx, userID, productID, quantity))
}

func (m *MockCartService) SetQuantity(ctx context.Context, userID uuid.UUID, itemID int64, quantity int) (*models.CartView, string, error) {
	return cartResult(m.Called(ctx, userID, itemID, quantity))
}

func (m *MockCartService) Increment(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
	return cartResult(m.Called(ctx, userID, itemID))
}

func (m *MockCartService) Decrement(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
	return cartResult(m.Called(ctx, userID, itemID))
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID int64) (*models.CartView, string, error) {
	return cartResult(m.Called(ctx, userID, itemID))
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) (*models.CartView, string, error) {
	return cartResult(m.Called(ctx, userID))
}

func (m *MockCartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	ret := m.Called(ctx, userID)

	return ret.Int(0), errAt(ret, 1)
}

// MockOrderService

type MockOrderService struct {
	mock.Mock
}

var _ service.OrderService = (*MockOrderService)(nil)

func NewMockOrderService(t testingT) *MockOrderService {
	m := &MockOrderService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockOrderService) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error) {
	ret := m.Called(ctx, userID, req)
	order, _ := ret.Get(0).(*models.Order)

	return order, errAt(ret, 1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Order, error) {
	ret := m.Called(ctx, userID, id)
	order, _ := ret.Get(0).(*models.Order)

	return order, errAt(ret, 1)
}

func (m *MockOrderService) GetOrderByNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*models.Order, error) {
	ret := m.Called(ctx, userID, orderNumber)
	order, _ := ret.Get(0).(*models.Order)

	return order, errAt(ret, 1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*models.Order, int, error) {
	ret := m.Called(ctx, userID, page, pageSize)
	orders, _ := ret.Get(0).([]*models.Order)

	return orders, ret.Int(1), errAt(ret, 2)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	ret := m.Called(ctx, id, status)
	order, _ := ret.Get(0).(*models.Order)

	return order, errAt(ret, 1)
}

// MockPaymentService

type MockPaymentService struct {
	mock.Mock
}

var _ service.PaymentService = (*MockPaymentService)(nil)

func NewMockPaymentService(t testingT) *MockPaymentService {
	m := &MockPaymentService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPaymentService) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.PaymentIntentResponse, error) {
	ret := m.Called(ctx, userID, orderID)
	resp, _ := ret.Get(0).(*models.PaymentIntentResponse)

	return resp, errAt(ret, 1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return errAt(m.Called(ctx, payload, signature), 0)
}

// MockNotificationService

type MockNotificationService struct {
	mock.Mock
}

var _ service.NotificationService = (*MockNotificationService)(nil)

func NewMockNotificationService(t testingT) *MockNotificationService {
	m := &MockNotificationService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockNotificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	return errAt(m.Called(ctx, order), 0)
}
