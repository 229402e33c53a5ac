package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/repos"
)

// GithubAccountService exposes the repository-hosting operations that run
// with the user's own access token.
type GithubAccountService interface {
	ListRepos(ctx context.Context, userID uuid.UUID) ([]Repo, error)
	CreateRepo(ctx context.Context, userID uuid.UUID, name, description string, private bool) (*Repo, error)
}

type githubAccountService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	github   GitHubClient
}

func NewGithubAccountService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, github GitHubClient) GithubAccountService {
	return &githubAccountService{
		db:       db,
		log:      baseLog.With("service", "GithubAccountService"),
		userRepo: userRepo,
		github:   github,
	}
}

func (s *githubAccountService) accessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", notFoundErr("user")
	}
	if users[0].GithubAccessToken == "" {
		return "", validationErr("github account not connected")
	}
	return users[0].GithubAccessToken, nil
}

func (s *githubAccountService) ListRepos(ctx context.Context, userID uuid.UUID) ([]Repo, error) {
	token, err := s.accessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	repos, err := s.github.ListRepos(ctx, token)
	if err != nil {
		return nil, externalErr("list repositories", err)
	}
	return repos, nil
}

func (s *githubAccountService) CreateRepo(ctx context.Context, userID uuid.UUID, name, description string, private bool) (*Repo, error) {
	token, err := s.accessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	repo, err := s.github.CreateRepo(ctx, token, name, description, private)
	if err != nil {
		return nil, externalErr("create repository", err)
	}
	return repo, nil
}
