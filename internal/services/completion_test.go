package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMarkTaskComplete_CascadesToModuleAndProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cs := env.completion()

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	m1 := env.seedModule(t, project.ID, nil, "Setup", 0)
	m2 := env.seedModule(t, project.ID, nil, "Core", 1)
	t1 := env.seedTask(t, m1.ID, "init repository", 0)
	t2 := env.seedTask(t, m1.ID, "configure tooling", 1)
	t3 := env.seedTask(t, m2.ID, "implement storage", 0)

	if err := cs.MarkTaskComplete(ctx, t1.ID); err != nil {
		t.Fatalf("MarkTaskComplete(t1): %v", err)
	}
	if env.moduleCompleted(t, m1.ID) {
		t.Fatal("module completed with one of two tasks done")
	}

	if err := cs.MarkTaskComplete(ctx, t2.ID); err != nil {
		t.Fatalf("MarkTaskComplete(t2): %v", err)
	}
	if !env.moduleCompleted(t, m1.ID) {
		t.Fatal("module not completed after all tasks done")
	}
	if env.projectCompleted(t, project.ID) {
		t.Fatal("project completed while a module is still open")
	}

	if err := cs.MarkTaskComplete(ctx, t3.ID); err != nil {
		t.Fatalf("MarkTaskComplete(t3): %v", err)
	}
	if !env.moduleCompleted(t, m2.ID) {
		t.Fatal("second module not completed")
	}
	if !env.projectCompleted(t, project.ID) {
		t.Fatal("project not completed after every module completed")
	}
}

func TestMarkTaskComplete_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cs := env.completion()

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	m1 := env.seedModule(t, project.ID, nil, "Only", 0)
	t1 := env.seedTask(t, m1.ID, "the one task", 0)

	for i := 0; i < 3; i++ {
		if err := cs.MarkTaskComplete(ctx, t1.ID); err != nil {
			t.Fatalf("MarkTaskComplete call %d: %v", i+1, err)
		}
	}
	if !env.taskCompleted(t, t1.ID) || !env.moduleCompleted(t, m1.ID) || !env.projectCompleted(t, project.ID) {
		t.Fatal("repeated completion changed the outcome")
	}
}

func TestMarkTaskComplete_NestedModules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cs := env.completion()

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	parent := env.seedModule(t, project.ID, nil, "Backend", 0)
	child := env.seedModule(t, project.ID, &parent.ID, "Database", 0)
	grandchild := env.seedModule(t, project.ID, &child.ID, "Migrations", 0)
	task := env.seedTask(t, grandchild.ID, "write initial migration", 0)

	if err := cs.MarkTaskComplete(ctx, task.ID); err != nil {
		t.Fatalf("MarkTaskComplete: %v", err)
	}
	// The whole chain has exactly one task, so completion ripples to the root.
	if !env.moduleCompleted(t, grandchild.ID) {
		t.Fatal("grandchild not completed")
	}
	if !env.moduleCompleted(t, child.ID) {
		t.Fatal("child not completed after its only sub-module completed")
	}
	if !env.moduleCompleted(t, parent.ID) {
		t.Fatal("parent not completed after its only sub-module completed")
	}
	if !env.projectCompleted(t, project.ID) {
		t.Fatal("project not completed")
	}
}

func TestMarkTaskComplete_IncompleteChildBlocksParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cs := env.completion()

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	parent := env.seedModule(t, project.ID, nil, "Backend", 0)
	child := env.seedModule(t, project.ID, &parent.ID, "API", 0)
	parentTask := env.seedTask(t, parent.ID, "scaffold service", 0)
	env.seedTask(t, child.ID, "add endpoints", 0)

	if err := cs.MarkTaskComplete(ctx, parentTask.ID); err != nil {
		t.Fatalf("MarkTaskComplete: %v", err)
	}
	if env.moduleCompleted(t, parent.ID) {
		t.Fatal("parent completed while a child module is still open")
	}
}

func TestMarkTaskComplete_UnknownTask(t *testing.T) {
	env := newTestEnv(t)
	cs := env.completion()

	err := cs.MarkTaskComplete(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkModuleComplete_Override(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cs := env.completion()

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	m1 := env.seedModule(t, project.ID, nil, "Docs", 0)
	env.seedTask(t, m1.ID, "write readme", 0)

	// Manual completion bypasses the open task.
	if err := cs.MarkModuleComplete(ctx, m1.ID); err != nil {
		t.Fatalf("MarkModuleComplete: %v", err)
	}
	if !env.moduleCompleted(t, m1.ID) {
		t.Fatal("module not completed by override")
	}
	if !env.projectCompleted(t, project.ID) {
		t.Fatal("project not completed after its only module was overridden")
	}
}

func TestMarkModuleComplete_RecomputesParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cs := env.completion()

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	parent := env.seedModule(t, project.ID, nil, "Frontend", 0)
	childA := env.seedModule(t, project.ID, &parent.ID, "Components", 0)
	childB := env.seedModule(t, project.ID, &parent.ID, "Routing", 1)

	if err := cs.MarkModuleComplete(ctx, childA.ID); err != nil {
		t.Fatalf("MarkModuleComplete(childA): %v", err)
	}
	if env.moduleCompleted(t, parent.ID) {
		t.Fatal("parent completed with one child still open")
	}
	if err := cs.MarkModuleComplete(ctx, childB.ID); err != nil {
		t.Fatalf("MarkModuleComplete(childB): %v", err)
	}
	if !env.moduleCompleted(t, parent.ID) {
		t.Fatal("parent not recomputed after both children completed")
	}
	if !env.projectCompleted(t, project.ID) {
		t.Fatal("project not completed")
	}
}

func TestCompletion_ZeroTaskModuleCountsComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cs := env.completion()

	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	empty := env.seedModule(t, project.ID, nil, "Placeholder", 0)
	m := env.seedModule(t, project.ID, nil, "Work", 1)
	task := env.seedTask(t, m.ID, "do the work", 0)

	if err := cs.MarkTaskComplete(ctx, task.ID); err != nil {
		t.Fatalf("MarkTaskComplete: %v", err)
	}
	// The empty sibling was never touched, so it stays incomplete and keeps
	// the project open until something recounts it.
	if env.moduleCompleted(t, empty.ID) {
		t.Fatal("untouched empty module should not flip on a sibling's recount")
	}
	if env.projectCompleted(t, project.ID) {
		t.Fatal("project completed while the empty module row is still open")
	}

	if err := cs.MarkModuleComplete(ctx, empty.ID); err != nil {
		t.Fatalf("MarkModuleComplete(empty): %v", err)
	}
	if !env.projectCompleted(t, project.ID) {
		t.Fatal("project not completed after the empty module was resolved")
	}
}
