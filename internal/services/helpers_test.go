package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/db"
	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/repos"
	"github.com/yungbote/roadmapper-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(db.AllModels()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

type testEnv struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	tokenRepo    repos.UserTokenRepo
	projectRepo  repos.ProjectRepo
	moduleRepo   repos.ModuleRepo
	taskRepo     repos.TaskRepo
	questionRepo repos.QuestionRepo
	answerRepo   repos.AnswerRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := newTestDB(t)
	log := newTestLogger(t)
	return &testEnv{
		db:           gdb,
		log:          log,
		userRepo:     repos.NewUserRepo(gdb, log),
		tokenRepo:    repos.NewUserTokenRepo(gdb, log),
		projectRepo:  repos.NewProjectRepo(gdb, log),
		moduleRepo:   repos.NewModuleRepo(gdb, log),
		taskRepo:     repos.NewTaskRepo(gdb, log),
		questionRepo: repos.NewQuestionRepo(gdb, log),
		answerRepo:   repos.NewAnswerRepo(gdb, log),
	}
}

func (e *testEnv) completion() CompletionService {
	return NewCompletionService(e.db, e.log, e.projectRepo, e.moduleRepo, e.taskRepo)
}

func (e *testEnv) seedUser(t *testing.T) *types.User {
	t.Helper()
	user := &types.User{
		ID:       uuid.New(),
		Username: "tester-" + uuid.New().String()[:8],
		Email:    "tester@example.com",
		Password: "hashed",
	}
	if _, err := e.userRepo.Create(context.Background(), nil, []*types.User{user}); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedProject(t *testing.T, userID uuid.UUID) *types.Project {
	t.Helper()
	project := &types.Project{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       "CLI task tracker",
		Description: "A terminal todo application with persistence",
	}
	if _, err := e.projectRepo.Create(context.Background(), nil, []*types.Project{project}); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return project
}

func (e *testEnv) seedModule(t *testing.T, projectID uuid.UUID, parentID *uuid.UUID, name string, position int) *types.Module {
	t.Helper()
	module := &types.Module{
		ID:             uuid.New(),
		ProjectID:      projectID,
		ParentModuleID: parentID,
		Name:           name,
		Position:       position,
	}
	if _, err := e.moduleRepo.Create(context.Background(), nil, []*types.Module{module}); err != nil {
		t.Fatalf("failed to seed module %q: %v", name, err)
	}
	return module
}

func (e *testEnv) seedTask(t *testing.T, moduleID uuid.UUID, description string, position int) *types.Task {
	t.Helper()
	task := &types.Task{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		Description: description,
		Position:    position,
	}
	if _, err := e.taskRepo.Create(context.Background(), nil, []*types.Task{task}); err != nil {
		t.Fatalf("failed to seed task %q: %v", description, err)
	}
	return task
}

func (e *testEnv) moduleCompleted(t *testing.T, moduleID uuid.UUID) bool {
	t.Helper()
	modules, err := e.moduleRepo.GetByIDs(context.Background(), nil, []uuid.UUID{moduleID})
	if err != nil || len(modules) == 0 {
		t.Fatalf("failed to reload module: %v", err)
	}
	return modules[0].Completed
}

func (e *testEnv) projectCompleted(t *testing.T, projectID uuid.UUID) bool {
	t.Helper()
	projects, err := e.projectRepo.GetByIDs(context.Background(), nil, []uuid.UUID{projectID})
	if err != nil || len(projects) == 0 {
		t.Fatalf("failed to reload project: %v", err)
	}
	return projects[0].Completed
}

func (e *testEnv) taskCompleted(t *testing.T, taskID uuid.UUID) bool {
	t.Helper()
	tasks, err := e.taskRepo.GetByIDs(context.Background(), nil, []uuid.UUID{taskID})
	if err != nil || len(tasks) == 0 {
		t.Fatalf("failed to reload task: %v", err)
	}
	return tasks[0].Completed
}

// Agent fakes.

type fakeIdeaAgent struct {
	idea *ProjectIdea
	err  error
}

func (f *fakeIdeaAgent) Generate(ctx context.Context) (*ProjectIdea, error) {
	return f.idea, f.err
}

type fakeQuestionAgent struct {
	questions []GeneratedQuestion
	err       error
}

func (f *fakeQuestionAgent) Generate(ctx context.Context, projectDescription string) ([]GeneratedQuestion, error) {
	return f.questions, f.err
}

type fakeRoadmapAgent struct {
	modules    []RoadmapModule
	err        error
	lastQACtx  string
	lastCalled bool
}

func (f *fakeRoadmapAgent) Generate(ctx context.Context, description string, qaContext string) ([]RoadmapModule, error) {
	f.lastCalled = true
	f.lastQACtx = qaContext
	return f.modules, f.err
}

type fakeProgressAgent struct {
	analysis *CommitAnalysis
	err      error
}

func (f *fakeProgressAgent) Analyze(ctx context.Context, taskDescription string, commits []RepoCommit, filesChanged []string) (*CommitAnalysis, error) {
	return f.analysis, f.err
}

type fakeTaskHelpAgent struct {
	help *TaskHelp
	err  error
}

func (f *fakeTaskHelpAgent) Generate(ctx context.Context, taskDescription string, projectContext string) (*TaskHelp, error) {
	return f.help, f.err
}

// fakeGitHubClient satisfies GitHubClient without touching the network.
type fakeGitHubClient struct {
	repos       []Repo
	commits     []RepoCommit
	files       map[string][]string
	oauthToken  string
	user        *GithubUser
	err         error
	filesCalled []string
}

func (f *fakeGitHubClient) ListRepos(ctx context.Context, accessToken string) ([]Repo, error) {
	return f.repos, f.err
}

func (f *fakeGitHubClient) CreateRepo(ctx context.Context, accessToken, name, description string, private bool) (*Repo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &Repo{Name: name, FullName: "owner/" + name, Description: description, Private: private}, nil
}

func (f *fakeGitHubClient) ListRecentCommits(ctx context.Context, accessToken, owner, repo string, sinceDays int) ([]RepoCommit, error) {
	return f.commits, f.err
}

func (f *fakeGitHubClient) ListChangedFiles(ctx context.Context, accessToken, owner, repo, sha string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.filesCalled = append(f.filesCalled, sha)
	return f.files[sha], nil
}

func (f *fakeGitHubClient) ExchangeOAuthCode(ctx context.Context, code string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.oauthToken, nil
}

func (f *fakeGitHubClient) GetAuthenticatedUser(ctx context.Context, accessToken string) (*GithubUser, error) {
	return f.user, f.err
}

func (f *fakeGitHubClient) AuthorizeURL(state string) string {
	return "https://github.com/login/oauth/authorize?state=" + state
}
