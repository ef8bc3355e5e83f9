package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/repos"
	"github.com/stemtrack/cartline-backend/internal/types"
)

// Identity is what the auth middleware attaches to a request.
type Identity struct {
	OperatorID uuid.UUID
	Name       string
}

type AuthService interface {
	Register(ctx context.Context, name, password string) (*types.Operator, error)
	Login(ctx context.Context, name, password string) (string, error)
	Verify(ctx context.Context, tokenString string) (*Identity, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	operatorRepo repos.OperatorRepo
	secretKey    []byte
	tokenTTL     time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, operatorRepo repos.OperatorRepo, secretKey string, tokenTTL time.Duration) AuthService {
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		operatorRepo: operatorRepo,
		secretKey:    []byte(secretKey),
		tokenTTL:     tokenTTL,
	}
}

func (as *authService) Register(ctx context.Context, name, password string) (*types.Operator, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	exists, err := as.operatorRepo.NameExists(ctx, nil, name)
	if err != nil {
		return nil, fmt.Errorf("check operator name: %w", err)
	}
	if exists {
		return nil, ErrOperatorExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	op := &types.Operator{
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	created, err := as.operatorRepo.Create(ctx, nil, op)
	if err != nil {
		return nil, fmt.Errorf("create operator: %w", err)
	}

	as.log.Info("Operator registered", "operator", created.Name)
	return created, nil
}

func (as *authService) Login(ctx context.Context, name, password string) (string, error) {
	op, err := as.operatorRepo.GetByName(ctx, nil, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("get operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  op.ID.String(),
		"name": op.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(as.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	as.log.Info("Operator logged in", "operator", op.Name)
	return signed, nil
}

func (as *authService) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return as.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	operatorID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Identity{OperatorID: operatorID, Name: name}, nil
}
