package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/repos"
	"github.com/yungbote/roadmapper-backend/internal/types"
)

type AnswerInput struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedChoice string    `json:"selected_choice"`
}

type TaskStatus struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
}

type ModuleStatus struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Completed  bool           `json:"completed"`
	Tasks      []TaskStatus   `json:"tasks"`
	SubModules []ModuleStatus `json:"sub_modules,omitempty"`
}

type ProjectStatus struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Completed bool           `json:"completed"`
	Modules   []ModuleStatus `json:"modules"`
}

type ProjectService interface {
	Create(ctx context.Context, userID uuid.UUID, title, description string) (*types.Project, error)
	GetByID(ctx context.Context, projectID, userID uuid.UUID) (*types.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Project, error)
	GenerateIdea(ctx context.Context) (*ProjectIdea, error)
	GenerateQuestions(ctx context.Context, projectID, userID uuid.UUID) ([]*types.Question, error)
	ListQuestions(ctx context.Context, projectID, userID uuid.UUID) ([]*types.Question, error)
	RecordAnswers(ctx context.Context, projectID, userID uuid.UUID, inputs []AnswerInput) ([]*types.Answer, error)
	Status(ctx context.Context, projectID, userID uuid.UUID) (*ProjectStatus, error)
	ConnectRepository(ctx context.Context, projectID, userID uuid.UUID, repoName, repoURL string) (*types.Project, error)
}

type projectService struct {
	db            *gorm.DB
	log           *logger.Logger
	projectRepo   repos.ProjectRepo
	moduleRepo    repos.ModuleRepo
	taskRepo      repos.TaskRepo
	questionRepo  repos.QuestionRepo
	answerRepo    repos.AnswerRepo
	ideaAgent     IdeaAgent
	questionAgent QuestionAgent
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	moduleRepo repos.ModuleRepo,
	taskRepo repos.TaskRepo,
	questionRepo repos.QuestionRepo,
	answerRepo repos.AnswerRepo,
	ideaAgent IdeaAgent,
	questionAgent QuestionAgent,
) ProjectService {
	return &projectService{
		db:            db,
		log:           baseLog.With("service", "ProjectService"),
		projectRepo:   projectRepo,
		moduleRepo:    moduleRepo,
		taskRepo:      taskRepo,
		questionRepo:  questionRepo,
		answerRepo:    answerRepo,
		ideaAgent:     ideaAgent,
		questionAgent: questionAgent,
	}
}

func (s *projectService) Create(ctx context.Context, userID uuid.UUID, title, description string) (*types.Project, error) {
	if strings.TrimSpace(title) == "" {
		return nil, validationErr("project title is required")
	}
	project := &types.Project{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
	}
	if _, err := s.projectRepo.Create(ctx, nil, []*types.Project{project}); err != nil {
		return nil, err
	}
	return project, nil
}

// getOwned loads a project and enforces ownership.
func (s *projectService) getOwned(ctx context.Context, tx *gorm.DB, projectID, userID uuid.UUID) (*types.Project, error) {
	projects, err := s.projectRepo.GetByIDs(ctx, tx, []uuid.UUID{projectID})
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, notFoundErr("project")
	}
	if projects[0].UserID != userID {
		return nil, ErrForbidden
	}
	return projects[0], nil
}

func (s *projectService) GetByID(ctx context.Context, projectID, userID uuid.UUID) (*types.Project, error) {
	return s.getOwned(ctx, nil, projectID, userID)
}

func (s *projectService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Project, error) {
	return s.projectRepo.GetByUserIDs(ctx, nil, []uuid.UUID{userID})
}

func (s *projectService) GenerateIdea(ctx context.Context) (*ProjectIdea, error) {
	idea, err := s.ideaAgent.Generate(ctx)
	if err != nil {
		return nil, externalErr("idea generation", err)
	}
	return idea, nil
}

func (s *projectService) GenerateQuestions(ctx context.Context, projectID, userID uuid.UUID) ([]*types.Question, error) {
	project, err := s.getOwned(ctx, nil, projectID, userID)
	if err != nil {
		return nil, err
	}

	generated, err := s.questionAgent.Generate(ctx, project.Description)
	if err != nil {
		return nil, externalErr("question generation", err)
	}

	questions := make([]*types.Question, 0, len(generated))
	for _, g := range generated {
		q := &types.Question{
			ID:        uuid.New(),
			ProjectID: projectID,
			Text:      g.Text,
		}
		if err := q.SetChoices(g.Choices); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if _, err := s.questionRepo.Create(ctx, nil, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *projectService) ListQuestions(ctx context.Context, projectID, userID uuid.UUID) ([]*types.Question, error) {
	if _, err := s.getOwned(ctx, nil, projectID, userID); err != nil {
		return nil, err
	}
	return s.questionRepo.GetByProjectIDs(ctx, nil, []uuid.UUID{projectID})
}

// RecordAnswers validates the whole batch before writing anything: every
// question must exist under the project and every selected choice must be one
// of that question's offered choices. Validation stops at the first bad pair
// and nothing is persisted.
func (s *projectService) RecordAnswers(ctx context.Context, projectID, userID uuid.UUID, inputs []AnswerInput) ([]*types.Answer, error) {
	if _, err := s.getOwned(ctx, nil, projectID, userID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return []*types.Answer{}, nil
	}

	questions, err := s.questionRepo.GetByProjectIDs(ctx, nil, []uuid.UUID{projectID})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answers := make([]*types.Answer, 0, len(inputs))
	for _, input := range inputs {
		question, ok := byID[input.QuestionID]
		if !ok {
			return nil, notFoundErr("question " + input.QuestionID.String())
		}
		valid := false
		for _, choice := range question.ChoiceStrings() {
			if choice == input.SelectedChoice {
				valid = true
				break
			}
		}
		if !valid {
			return nil, validationErr("choice %q is not offered by question %q", input.SelectedChoice, question.Text)
		}
		answers = append(answers, &types.Answer{
			ID:             uuid.New(),
			QuestionID:     input.QuestionID,
			SelectedChoice: input.SelectedChoice,
		})
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, txErr := s.answerRepo.Create(ctx, tx, answers)
		return txErr
	}); err != nil {
		return nil, err
	}
	return answers, nil
}

func (s *projectService) Status(ctx context.Context, projectID, userID uuid.UUID) (*ProjectStatus, error) {
	project, err := s.getOwned(ctx, nil, projectID, userID)
	if err != nil {
		return nil, err
	}

	modules, err := s.moduleRepo.GetByProjectIDs(ctx, nil, []uuid.UUID{projectID})
	if err != nil {
		return nil, err
	}
	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	tasks, err := s.taskRepo.GetByModuleIDs(ctx, nil, moduleIDs)
	if err != nil {
		return nil, err
	}
	tasksByModule := make(map[uuid.UUID][]TaskStatus)
	for _, task := range tasks {
		tasksByModule[task.ModuleID] = append(tasksByModule[task.ModuleID], TaskStatus{
			ID:          task.ID,
			Description: task.Description,
			Completed:   task.Completed,
		})
	}

	childrenByParent := make(map[uuid.UUID][]*types.Module)
	var topLevel []*types.Module
	for _, m := range modules {
		if m.ParentModuleID == nil {
			topLevel = append(topLevel, m)
			continue
		}
		childrenByParent[*m.ParentModuleID] = append(childrenByParent[*m.ParentModuleID], m)
	}

	var build func(m *types.Module) ModuleStatus
	build = func(m *types.Module) ModuleStatus {
		status := ModuleStatus{
			ID:        m.ID,
			Name:      m.Name,
			Completed: m.Completed,
			Tasks:     tasksByModule[m.ID],
		}
		if status.Tasks == nil {
			status.Tasks = []TaskStatus{}
		}
		for _, child := range childrenByParent[m.ID] {
			status.SubModules = append(status.SubModules, build(child))
		}
		return status
	}

	result := &ProjectStatus{
		ID:        project.ID,
		Title:     project.Title,
		Completed: project.Completed,
		Modules:   []ModuleStatus{},
	}
	for _, m := range topLevel {
		result.Modules = append(result.Modules, build(m))
	}
	return result, nil
}

func (s *projectService) ConnectRepository(ctx context.Context, projectID, userID uuid.UUID, repoName, repoURL string) (*types.Project, error) {
	if strings.TrimSpace(repoName) == "" || strings.TrimSpace(repoURL) == "" {
		return nil, validationErr("repository name and url are required")
	}
	project, err := s.getOwned(ctx, nil, projectID, userID)
	if err != nil {
		return nil, err
	}
	project.RepoName = repoName
	project.RepoURL = repoURL
	if err := s.projectRepo.Save(ctx, nil, project); err != nil {
		return nil, err
	}
	return project, nil
}
