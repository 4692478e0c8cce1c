package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"shopapi/internal/auth"
	"shopapi/internal/logger"
	"shopapi/internal/model"
	"shopapi/internal/repository"
	"shopapi/internal/validation"
)

// ProfilePatch changes only the fields that are set.
type ProfilePatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// profileFields is the merged profile as it will be stored.
type profileFields struct {
	FirstName string `json:"first_name" validate:"required,uk_name"`
	LastName  string `json:"last_name" validate:"required,uk_name"`
	Phone     string `json:"phone" validate:"required,ua_phone"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,password"`
}

// DeliveryInput is the shipping profile of the caller.
type DeliveryInput struct {
	FirstName   string `json:"first_name" validate:"required,uk_name"`
	LastName    string `json:"last_name" validate:"required,uk_name"`
	Phone       string `json:"phone" validate:"required,ua_phone"`
	City        string `json:"city" validate:"required,uk_text,max=100"`
	PostService string `json:"post_service" validate:"required,oneof=nova_poshta ukrposhta meest"`
	PostOffice  int    `json:"post_office" validate:"required,gt=0,lte=100000"`
}

// UserService manages the profile of the authenticated user.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.User, error)
	ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error

	// Deactivate soft-deletes the user together with its shops and products.
	Deactivate(ctx context.Context, userID string) error

	GetDelivery(ctx context.Context, userID string) (*model.DeliveryInfo, error)
	UpsertDelivery(ctx context.Context, userID string, in DeliveryInput) (*model.DeliveryInfo, error)
}

type userService struct {
	users    repository.UserRepository
	delivery repository.DeliveryRepository
	validate *validation.Validator
	log      *zap.Logger
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, delivery repository.DeliveryRepository, v *validation.Validator, log *zap.Logger) UserService {
	return &userService{users: users, delivery: delivery, validate: v, log: log}
}

func (s *userService) active(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if !u.IsActive {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return s.active(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.User, error) {
	u, err := s.active(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := profileFields{FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
	if patch.FirstName != nil {
		merged.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		merged.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Phone != nil {
		merged.Phone = validation.NormalizePhone(*patch.Phone)
	}
	if err := s.validate.Struct(merged); err != nil {
		return nil, err
	}

	if merged.Phone != u.Phone {
		taken, err := s.users.PhoneTaken(ctx, merged.Phone, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrPhoneTaken
		}
	}

	u.FirstName, u.LastName, u.Phone = merged.FirstName, merged.LastName, merged.Phone
	out, err := s.users.UpdateProfile(ctx, u)
	if err != nil {
		return nil, conflict(notFound(err, ErrUserNotFound), ErrPhoneTaken)
	}
	return out, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if _, err := s.active(ctx, userID); err != nil {
		return err
	}
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	hash, err := s.users.PasswordHash(ctx, userID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if !auth.CheckPassword(hash, in.OldPassword) {
		verr := validation.NewErrors()
		verr.Add("old_password", "is incorrect")
		return verr
	}
	if in.OldPassword == in.NewPassword {
		verr := validation.NewErrors()
		verr.Add("new_password", "must differ from the current password")
		return verr
	}
	newHash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	logger.FromContext(ctx, s.log).Info("password_changed", zap.String("user_id", userID))
	return nil
}

func (s *userService) Deactivate(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrIDRequired
	}
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	logger.FromContext(ctx, s.log).Info("user_deactivated", zap.String("user_id", userID))
	return nil
}

func (s *userService) GetDelivery(ctx context.Context, userID string) (*model.DeliveryInfo, error) {
	if _, err := s.active(ctx, userID); err != nil {
		return nil, err
	}
	d, err := s.delivery.Find(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrDeliveryNotFound)
	}
	return d, nil
}

func (s *userService) UpsertDelivery(ctx context.Context, userID string, in DeliveryInput) (*model.DeliveryInfo, error) {
	if _, err := s.active(ctx, userID); err != nil {
		return nil, err
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.City = strings.TrimSpace(in.City)
	in.Phone = validation.NormalizePhone(in.Phone)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	return s.delivery.Upsert(ctx, &model.DeliveryInfo{
		UserID:      userID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Phone:       in.Phone,
		City:        in.City,
		PostService: in.PostService,
		PostOffice:  in.PostOffice,
	})
}
