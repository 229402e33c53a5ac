package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/repos"
	"github.com/yungbote/roadmapper-backend/internal/requestdata"
	"github.com/yungbote/roadmapper-backend/internal/types"
	"github.com/yungbote/roadmapper-backend/internal/utils"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*types.User, *TokenPair, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context) (*TokenPair, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GithubLoginURL(ctx context.Context) (string, error)
	GithubCallback(ctx context.Context, code, state string) (*types.User, *TokenPair, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	github        GitHubClient
	stateStore    OAuthStateStore
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	github GitHubClient,
	stateStore OAuthStateStore,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		github:        github,
		stateStore:    stateStore,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, username, email, password string) (*types.User, *TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, validationErr("username and password are required")
	}

	exists, err := as.userRepo.UsernameExists(ctx, nil, username)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, validationErr("username %q already registered", username)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    strings.TrimSpace(email),
		Password: hashed,
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := as.userRepo.Create(ctx, tx, []*types.User{user}); cErr != nil {
			return fmt.Errorf("failed to create user: %w", cErr)
		}
		var iErr error
		pair, iErr = as.issueTokens(ctx, tx, user)
		return iErr
	})
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	users, err := as.userRepo.GetByUsernames(ctx, nil, []string{strings.TrimSpace(username)})
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if len(users) == 0 || !utils.CheckPassword(users[0].Password, password) {
		return nil, fmt.Errorf("incorrect username or password: %w", ErrUnauthorized)
	}
	user := users[0]

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var iErr error
		pair, iErr = as.issueTokens(ctx, tx, user)
		return iErr
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) Refresh(ctx context.Context) (*TokenPair, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token in request: %w", ErrUnauthorized)
	}

	var pair *TokenPair
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
		if ftErr != nil {
			return fmt.Errorf("failed to load refresh token: %w", ftErr)
		}
		if len(foundTokens) == 0 {
			return fmt.Errorf("unknown refresh token: %w", ErrUnauthorized)
		}
		existing := foundTokens[0]
		if existing.ExpiresAt.Before(time.Now()) {
			_ = as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID})
			return fmt.Errorf("refresh token expired: %w", ErrUnauthorized)
		}

		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("failed to load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return fmt.Errorf("no user for refresh token: %w", ErrUnauthorized)
		}

		var iErr error
		pair, iErr = as.issueTokens(ctx, tx, users[0])
		if iErr != nil {
			return iErr
		}
		return as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID})
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return fmt.Errorf("no session token in request: %w", ErrUnauthorized)
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
		if ftErr != nil {
			return fmt.Errorf("failed to load session token: %w", ftErr)
		}
		if len(foundTokens) == 0 {
			return nil
		}
		return as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{foundTokens[0].ID})
	})
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", ErrUnauthorized)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", ErrUnauthorized)
	}

	var refreshToken string
	foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if ftErr != nil {
		return ctx, fmt.Errorf("failed to load session token: %w", ftErr)
	}
	if len(foundTokens) > 0 {
		refreshToken = foundTokens[0].RefreshToken
	}

	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: refreshToken,
		UserID:       userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GithubLoginURL(ctx context.Context) (string, error) {
	state := uuid.New().String()
	if err := as.stateStore.Put(ctx, state); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return as.github.AuthorizeURL(state), nil
}

func (as *authService) GithubCallback(ctx context.Context, code, state string) (*types.User, *TokenPair, error) {
	ok, err := as.stateStore.Take(ctx, state)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check oauth state: %w", err)
	}
	if !ok {
		return nil, nil, validationErr("invalid oauth state, please log in again")
	}

	accessToken, err := as.github.ExchangeOAuthCode(ctx, code)
	if err != nil {
		return nil, nil, externalErr("github oauth exchange", err)
	}
	ghUser, err := as.github.GetAuthenticatedUser(ctx, accessToken)
	if err != nil {
		return nil, nil, externalErr("github user fetch", err)
	}

	var user *types.User
	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gErr := as.userRepo.GetByGithubID(ctx, tx, ghUser.ID)
		if gErr != nil {
			return gErr
		}
		if existing != nil {
			existing.GithubAccessToken = accessToken
			existing.GithubUsername = ghUser.Login
			existing.AvatarURL = ghUser.AvatarURL
			if sErr := as.userRepo.Save(ctx, tx, existing); sErr != nil {
				return sErr
			}
			user = existing
		} else {
			username := ghUser.Login
			taken, tErr := as.userRepo.UsernameExists(ctx, tx, username)
			if tErr != nil {
				return tErr
			}
			if taken {
				username = fmt.Sprintf("%s_%s", username, uuid.New().String()[:8])
			}
			githubID := ghUser.ID
			user = &types.User{
				ID:                uuid.New(),
				Username:          username,
				Email:             ghUser.Email,
				GithubID:          &githubID,
				GithubUsername:    ghUser.Login,
				GithubAccessToken: accessToken,
				AvatarURL:         ghUser.AvatarURL,
			}
			if _, cErr := as.userRepo.Create(ctx, tx, []*types.User{user}); cErr != nil {
				return fmt.Errorf("failed to create github user: %w", cErr)
			}
		}
		var iErr error
		pair, iErr = as.issueTokens(ctx, tx, user)
		return iErr
	})
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *types.User) (*TokenPair, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	userToken := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
		return nil, fmt.Errorf("failed to persist session token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: userToken.RefreshToken}, nil
}
