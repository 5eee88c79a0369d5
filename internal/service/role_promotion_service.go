package service

import (
	"context"
	"fmt"

	"go-gin-pd-registration/internal/domain"
	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/repository"
	"go-gin-pd-registration/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// RolePromotionService 講者指派後將使用者升級為 presenter，只升不降
type RolePromotionService interface {
	HandlePresenterAssigned(ctx context.Context, tx pgx.Tx, event domain.PresenterAssigned) error
}

type RolePromotionServiceImpl struct {
	userRepository repository.UserRepository
}

// NewRolePromotionService 建立並訂閱 PresenterAssigned
func NewRolePromotionService(userRepository repository.UserRepository, bus *domain.Bus) RolePromotionService {
	s := &RolePromotionServiceImpl{
		userRepository: userRepository,
	}
	bus.PresenterAssigned.Subscribe(s.HandlePresenterAssigned)
	return s
}

func (s *RolePromotionServiceImpl) HandlePresenterAssigned(ctx context.Context, tx pgx.Tx, event domain.PresenterAssigned) error {
	user, err := s.userRepository.FindByIDTx(ctx, tx, event.UserID)
	if err != nil {
		return err
	}
	if user.Tier.IsPresenterOrAbove() {
		return nil
	}

	promoted, err := s.userRepository.PromoteTier(ctx, tx, user.ID, model.TierPresenter)
	if err != nil {
		return fmt.Errorf("promote user %d: %w", user.ID, err)
	}
	if promoted {
		logger.WithComponent("service").Info("user promoted to presenter",
			zap.Int("user_id", user.ID),
			zap.Int("event_id", event.EventID),
			zap.String("from_tier", user.Tier.String()),
		)
	}
	return nil
}
