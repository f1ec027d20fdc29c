package auth

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	autherrors "go-leavedesk/internal/auth/errors"
	"go-leavedesk/internal/employee"
	"go-leavedesk/internal/shared/clock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (AuthResponse, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetProfile(ctx context.Context, employeeID string) (employee.EmployeeResponse, error)
	UpdateProfile(ctx context.Context, employeeID string, req UpdateProfileRequest) (employee.EmployeeResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	employeeSvc  employee.Service
	rdb          *redis.Client
	clk          clock.Clock
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	employeeSvc employee.Service,
	rdb *redis.Client,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		employeeSvc:  employeeSvc,
		rdb:          rdb,
		clk:          clk,
		logger:       l,
	}
}

// Signup creates the directory entry and the credential record on one
// transaction; a failure on either side leaves nothing behind.
func (s *service) Signup(ctx context.Context, req SignupRequest) (AuthResponse, error) {
	s.logger.Debug("signup requested", zap.String("email", req.Email))

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResponse{}, err
	}

	role := req.Role
	if role == "" {
		role = employee.RoleEmployee
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("signup begin tx failed", zap.Error(err))
		return AuthResponse{}, err
	}
	defer tx.Rollback()

	now := s.clk.Now()
	emp := &employee.Employee{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		Department:   req.Department,
		Role:         role,
		HireDate:     s.clk.Today(),
		LeaveBalance: employee.DefaultLeaveBalance,
		CreatedAt:    now,
	}
	if err := s.employeeRepo.WithTx(tx).Create(ctx, emp); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		s.logger.Error("signup profile persist failed", zap.Error(err))
		return AuthResponse{}, err
	}

	u := &User{
		ID:         uuid.New(),
		EmployeeID: emp.ID,
		Email:      req.Email,
		Password:   string(hash),
		CreatedAt:  now,
	}
	if err := s.repo.WithTx(tx).Create(ctx, u); err != nil {
		s.logger.Error("signup credential persist failed", zap.Error(err))
		return AuthResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("signup commit failed", zap.Error(err))
		return AuthResponse{}, err
	}

	// The new profile is not in the cached directory listing yet.
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, employee.DirectoryCacheKey).Err(); err != nil {
			s.logger.Error("failed to invalidate directory cache after signup", zap.Error(err))
		}
	}

	s.logger.Info("signup success",
		zap.String("user_id", u.ID.String()),
		zap.String("employee_id", emp.ID.String()),
	)

	return AuthResponse{
		ID:         u.ID.String(),
		EmployeeID: emp.ID.String(),
		Email:      req.Email,
		Name:       req.Name,
		Role:       role,
	}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	emp, err := s.employeeSvc.GetByID(ctx, user.EmployeeID.String())
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	accessToken, err := s.generateToken(user.ID.String(), emp.ID, emp.Role, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := s.generateToken(user.ID.String(), emp.ID, emp.Role, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return accessToken, refreshToken, AuthResponse{
		ID:         user.ID.String(),
		EmployeeID: emp.ID,
		Email:      user.Email,
		Name:       emp.Name,
		Role:       emp.Role,
	}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	emp, err := s.employeeSvc.GetByID(ctx, user.EmployeeID.String())
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	newAccessToken, err := s.generateToken(user.ID.String(), emp.ID, emp.Role, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	newRefreshToken, err := s.generateToken(user.ID.String(), emp.ID, emp.Role, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccessToken, newRefreshToken, AuthResponse{
		ID:         user.ID.String(),
		EmployeeID: emp.ID,
		Email:      user.Email,
		Name:       emp.Name,
		Role:       emp.Role,
	}, nil
}

func (s *service) GetProfile(ctx context.Context, employeeID string) (employee.EmployeeResponse, error) {
	return s.employeeSvc.GetByID(ctx, employeeID)
}

func (s *service) UpdateProfile(ctx context.Context, employeeID string, req UpdateProfileRequest) (employee.EmployeeResponse, error) {
	return s.employeeSvc.Update(ctx, employeeID, employee.UpdateEmployeeRequest{
		Name:       req.Name,
		Department: req.Department,
	})
}

func (s *service) generateToken(userID, employeeID, role string, ttl time.Duration) (string, error) {
	now := s.clk.Now()
	claims := jwt.MapClaims{
		"user_id":     userID,
		"employee_id": employeeID,
		"role":        role,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
