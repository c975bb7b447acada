package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joshua-takyi/travelease/internal/helpers"
	"github.com/joshua-takyi/travelease/internal/models"
)

type UserService struct {
	userRepo models.UserRepo
	tokens   *helpers.TokenManager
}

func NewUserService(userRepo models.UserRepo, tokens *helpers.TokenManager) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

type AuthResult struct {
	User  *models.User
	Token string
}

func sanitizeRegistration(req *models.RegisterRequest) {
	req.FirstName = helpers.StringTrim(req.FirstName)
	req.LastName = helpers.StringTrim(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
}

// hashPassword enforces bcrypt's byte limit. The validator's max tag counts
// runes, so multi-byte passwords can pass it and still be too long.
func hashPassword(field, password string) (string, error) {
	if len(password) > helpers.MaxPasswordBytes {
		return "", validationf("%s must be at most %d bytes", field, helpers.MaxPasswordBytes)
	}
	return helpers.HashPassword(password)
}

func (us *UserService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	sanitizeRegistration(&req)
	if err := models.Validate.Struct(req); err != nil {
		return nil, fromValidator(err)
	}

	hash, err := hashPassword("password", req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hash,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if _, err := us.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: an account with this email already exists", ErrConflict)
		}
		return nil, err
	}

	token, _, err := us.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login returns ErrInvalidCredentials for an unknown email, an inactive
// account and a wrong password alike.
func (us *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationf("email and password are required")
	}

	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrRecordNotFound) {
		helpers.CompareDummyPassword(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CheckPassword(user.Password, password) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	token, _, err := us.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (us *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := us.userRepo.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func trimPtr(p *string, fn func(string) string) {
	if p != nil {
		*p = fn(*p)
	}
}

func (us *UserService) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.User, error) {
	trimPtr(update.FirstName, helpers.StringTrim)
	trimPtr(update.LastName, helpers.StringTrim)
	trimPtr(update.Email, func(s string) string { return strings.ToLower(strings.TrimSpace(s)) })
	trimPtr(update.Phone, strings.TrimSpace)
	trimPtr(update.Address, strings.TrimSpace)

	if update.Empty() {
		return nil, validationf("no fields to update")
	}
	if err := models.Validate.Struct(update); err != nil {
		return nil, fromValidator(err)
	}

	user, err := us.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	update.Apply(user)

	if err := us.userRepo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateEmail):
			return nil, fmt.Errorf("%w: an account with this email already exists", ErrConflict)
		case errors.Is(err, models.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (us *UserService) ChangePassword(ctx context.Context, userID int64, req models.PasswordChange) error {
	if err := models.Validate.Struct(req); err != nil {
		return fromValidator(err)
	}

	user, err := us.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CheckPassword(user.Password, req.CurrentPassword) {
		return ErrInvalidCredentials
	}

	hash, err := hashPassword("newPassword", req.NewPassword)
	if err != nil {
		return err
	}
	if err := us.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	return nil
}
