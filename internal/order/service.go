// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/mariposa-labs/storefront/internal/auth"
	"github.com/mariposa-labs/storefront/internal/core"
)

var ErrUserNotFound = errors.New("user not found")

// UserDirectory is the slice of the credential store the order flow needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*auth.UserInfo, error)
}

type Service struct {
	repo  Repository
	users UserDirectory
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// PlaceOrder validates the request lines, confirms the buyer exists, and
// delegates to the repository's single-transaction placement.
func (s *Service) PlaceOrder(
	ctx context.Context,
	userID string,
	requests []OrderItemRequest,
) (*Order, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", core.ErrInvalidInput)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	lines := make([]Line, 0, len(requests))
	for _, req := range requests {
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", core.ErrInvalidInput)
		}
		lines = append(lines, Line{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		})
	}

	return s.repo.PlaceOrder(ctx, userID, lines)
}

// GetOrder enforces ownership: a non-admin caller may only read their own
// orders.
func (s *Service) GetOrder(
	ctx context.Context,
	orderID, callerID string,
	callerIsAdmin bool,
) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !callerIsAdmin && order.UserID != callerID {
		return nil, fmt.Errorf("%w: order belongs to another user", core.ErrForbidden)
	}

	return order, nil
}

func (s *Service) ListMyOrders(
	ctx context.Context,
	userID string,
) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAllOrders(ctx context.Context) ([]Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) UpdateStatus(
	ctx context.Context,
	orderID, status string,
) (*Order, error) {
	return s.repo.UpdateStatus(ctx, orderID, status)
}
