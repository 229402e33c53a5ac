package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func (e *testEnv) hierarchy(agent TaskHelpAgent) HierarchyService {
	return NewHierarchyService(e.db, e.log, e.projectRepo, e.moduleRepo, e.taskRepo, agent)
}

func TestCreateModule_ValidatesParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hs := env.hierarchy(&fakeTaskHelpAgent{})

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	other := env.seedProject(t, user.ID)
	foreignModule := env.seedModule(t, other.ID, nil, "Elsewhere", 0)

	if _, err := hs.CreateModule(ctx, project.ID, user.ID, "", "", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty name should fail validation, got %v", err)
	}

	// Parent must belong to the same project.
	if _, err := hs.CreateModule(ctx, project.ID, user.ID, "Child", "", &foreignModule.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-project parent should be not found, got %v", err)
	}

	top, err := hs.CreateModule(ctx, project.ID, user.ID, "Top", "the first module", nil)
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	child, err := hs.CreateModule(ctx, project.ID, user.ID, "Child", "", &top.ID)
	if err != nil {
		t.Fatalf("CreateModule(child): %v", err)
	}
	if child.ParentModuleID == nil || *child.ParentModuleID != top.ID {
		t.Fatalf("child not linked to parent: %+v", child)
	}
}

func TestCreateTask_AssignsPositions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hs := env.hierarchy(&fakeTaskHelpAgent{})

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	module := env.seedModule(t, project.ID, nil, "Core", 0)

	first, err := hs.CreateTask(ctx, module.ID, user.ID, "first task")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	second, err := hs.CreateTask(ctx, module.ID, user.ID, "second task")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if first.Position != 0 || second.Position != 1 {
		t.Fatalf("positions not sequential: %d, %d", first.Position, second.Position)
	}

	if _, err := hs.CreateTask(ctx, module.ID, user.ID, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank description should fail validation, got %v", err)
	}
}

func TestListTasks_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hs := env.hierarchy(&fakeTaskHelpAgent{})

	owner := env.seedUser(t)
	stranger := env.seedUser(t)
	project := env.seedProject(t, owner.ID)
	module := env.seedModule(t, project.ID, nil, "Core", 0)
	env.seedTask(t, module.ID, "a task", 0)

	if _, err := hs.ListTasks(ctx, module.ID, stranger.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	tasks, err := hs.ListTasks(ctx, module.ID, owner.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
}

func TestTaskHelp_UsesProjectContext(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	recorded := &recordingTaskHelpAgent{help: &TaskHelp{Overview: "do the thing", Steps: []string{"step one"}}}
	hs := env.hierarchy(recorded)

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	module := env.seedModule(t, project.ID, nil, "Core", 0)
	task := env.seedTask(t, module.ID, "implement persistence", 0)

	help, err := hs.TaskHelp(ctx, task.ID, user.ID)
	if err != nil {
		t.Fatalf("TaskHelp: %v", err)
	}
	if help.Overview != "do the thing" {
		t.Fatalf("unexpected help payload: %+v", help)
	}
	if !strings.Contains(recorded.lastContext, project.Title) {
		t.Fatalf("project title missing from agent context: %q", recorded.lastContext)
	}

	if _, err := hs.TaskHelp(ctx, uuid.New(), user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown task should be not found, got %v", err)
	}
}

func TestTaskHelp_AgentFailureIsExternal(t *testing.T) {
	env := newTestEnv(t)
	hs := env.hierarchy(&fakeTaskHelpAgent{err: errors.New("model unavailable")})

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	module := env.seedModule(t, project.ID, nil, "Core", 0)
	task := env.seedTask(t, module.ID, "implement persistence", 0)

	if _, err := hs.TaskHelp(context.Background(), task.ID, user.ID); !errors.Is(err, ErrExternal) {
		t.Fatalf("expected ErrExternal, got %v", err)
	}
}

type recordingTaskHelpAgent struct {
	help        *TaskHelp
	lastContext string
}

func (r *recordingTaskHelpAgent) Generate(ctx context.Context, taskDescription string, projectContext string) (*TaskHelp, error) {
	r.lastContext = projectContext
	return r.help, nil
}
