package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/roadmapper-backend/internal/types"
)

func (e *testEnv) progress(github GitHubClient, agent ProgressAgent) ProgressService {
	completion := e.completion()
	return NewProgressService(e.db, e.log, e.taskRepo, e.moduleRepo, e.projectRepo, e.userRepo, github, agent, completion)
}

func (e *testEnv) seedConnectedProject(t *testing.T) (*types.User, *types.Project, *types.Task) {
	t.Helper()
	user := e.seedUser(t)
	user.GithubAccessToken = "gho_testtoken"
	if err := e.userRepo.Save(context.Background(), nil, user); err != nil {
		t.Fatalf("failed to store github token: %v", err)
	}
	project := e.seedProject(t, user.ID)
	project.RepoName = "tracker"
	project.RepoURL = "https://github.com/tester/tracker"
	if err := e.projectRepo.Save(context.Background(), nil, project); err != nil {
		t.Fatalf("failed to connect repository: %v", err)
	}
	module := e.seedModule(t, project.ID, nil, "Core", 0)
	task := e.seedTask(t, module.ID, "implement persistence", 0)
	return user, project, task
}

func TestCheckTask_AutoCompletesAboveThreshold(t *testing.T) {
	env := newTestEnv(t)
	user, project, task := env.seedConnectedProject(t)
	_ = user

	github := &fakeGitHubClient{
		commits: []RepoCommit{
			{SHA: "abc123", Message: "add sqlite persistence", Author: "tester", Date: time.Now()},
		},
		files: map[string][]string{"abc123": {"store.go", "store_test.go"}},
	}
	agent := &fakeProgressAgent{analysis: &CommitAnalysis{
		TaskCompleted:   true,
		Confidence:      0.75,
		Reasoning:       "persistence layer landed",
		RelevantCommits: []string{"abc123"},
	}}
	ps := env.progress(github, agent)

	report, err := ps.CheckTask(context.Background(), task.ID, project.UserID)
	if err != nil {
		t.Fatalf("CheckTask: %v", err)
	}
	if !report.AutoCompleted || !report.Completed {
		t.Fatalf("expected auto-completion at confidence 0.75: %+v", report)
	}
	if !env.taskCompleted(t, task.ID) {
		t.Fatal("task row not marked complete")
	}
	// A single task under a single module completes the project too.
	if !env.projectCompleted(t, project.ID) {
		t.Fatal("completion did not cascade from the auto-completed task")
	}
}

func TestCheckTask_BelowThresholdReportsOnly(t *testing.T) {
	env := newTestEnv(t)
	_, project, task := env.seedConnectedProject(t)

	github := &fakeGitHubClient{
		commits: []RepoCommit{{SHA: "abc123", Message: "wip", Author: "tester", Date: time.Now()}},
		files:   map[string][]string{"abc123": {"notes.md"}},
	}
	agent := &fakeProgressAgent{analysis: &CommitAnalysis{
		TaskCompleted: true,
		Confidence:    0.5,
		Reasoning:     "maybe started",
	}}
	ps := env.progress(github, agent)

	report, err := ps.CheckTask(context.Background(), task.ID, project.UserID)
	if err != nil {
		t.Fatalf("CheckTask: %v", err)
	}
	if report.AutoCompleted {
		t.Fatal("auto-completed below the confidence threshold")
	}
	if env.taskCompleted(t, task.ID) {
		t.Fatal("task row flipped despite low confidence")
	}
	if report.Confidence != 0.5 {
		t.Fatalf("report lost the agent confidence: %v", report.Confidence)
	}
}

func TestCheckTask_NegativeVerdictNeverCompletes(t *testing.T) {
	env := newTestEnv(t)
	_, project, task := env.seedConnectedProject(t)

	github := &fakeGitHubClient{}
	agent := &fakeProgressAgent{analysis: &CommitAnalysis{
		TaskCompleted: false,
		Confidence:    0.99,
		Reasoning:     "no related commits",
	}}
	ps := env.progress(github, agent)

	report, err := ps.CheckTask(context.Background(), task.ID, project.UserID)
	if err != nil {
		t.Fatalf("CheckTask: %v", err)
	}
	if report.AutoCompleted || env.taskCompleted(t, task.ID) {
		t.Fatal("negative verdict must not complete the task, whatever the confidence")
	}
}

func TestCheckTask_RequiresConnectedRepository(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	module := env.seedModule(t, project.ID, nil, "Core", 0)
	task := env.seedTask(t, module.ID, "implement persistence", 0)

	ps := env.progress(&fakeGitHubClient{}, &fakeProgressAgent{})
	if _, err := ps.CheckTask(context.Background(), task.ID, user.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation without a repository, got %v", err)
	}
}

func TestCheckTask_RequiresGithubToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	project := env.seedProject(t, user.ID)
	project.RepoName = "tracker"
	project.RepoURL = "https://github.com/tester/tracker"
	if err := env.projectRepo.Save(context.Background(), nil, project); err != nil {
		t.Fatalf("Save: %v", err)
	}
	module := env.seedModule(t, project.ID, nil, "Core", 0)
	task := env.seedTask(t, module.ID, "implement persistence", 0)

	ps := env.progress(&fakeGitHubClient{}, &fakeProgressAgent{})
	if _, err := ps.CheckTask(context.Background(), task.ID, user.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation without a github token, got %v", err)
	}
}

func TestCheckTask_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	_, _, task := env.seedConnectedProject(t)
	stranger := env.seedUser(t)

	ps := env.progress(&fakeGitHubClient{}, &fakeProgressAgent{})
	if _, err := ps.CheckTask(context.Background(), task.ID, stranger.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCheckTask_InspectsAtMostTenCommits(t *testing.T) {
	env := newTestEnv(t)
	_, project, task := env.seedConnectedProject(t)

	var commits []RepoCommit
	for i := 0; i < 15; i++ {
		commits = append(commits, RepoCommit{SHA: uuid.New().String(), Message: "commit", Date: time.Now()})
	}
	github := &fakeGitHubClient{commits: commits, files: map[string][]string{}}
	agent := &fakeProgressAgent{analysis: &CommitAnalysis{TaskCompleted: false, Confidence: 0}}
	ps := env.progress(github, agent)

	if _, err := ps.CheckTask(context.Background(), task.ID, project.UserID); err != nil {
		t.Fatalf("CheckTask: %v", err)
	}
	if len(github.filesCalled) != maxCommitsToInspect {
		t.Fatalf("expected %d file-list fetches, got %d", maxCommitsToInspect, len(github.filesCalled))
	}
}

func TestSplitRepoURL(t *testing.T) {
	cases := []struct {
		in    string
		owner string
		repo  string
		bad   bool
	}{
		{in: "https://github.com/tester/tracker", owner: "tester", repo: "tracker"},
		{in: "https://github.com/tester/tracker.git", owner: "tester", repo: "tracker"},
		{in: "https://github.com/tester/tracker/", owner: "tester", repo: "tracker"},
		{in: "tracker", bad: true},
		{in: "", bad: true},
	}
	for _, tc := range cases {
		owner, repo, err := splitRepoURL(tc.in)
		if tc.bad {
			if err == nil {
				t.Fatalf("splitRepoURL(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("splitRepoURL(%q): %v", tc.in, err)
		}
		if owner != tc.owner || repo != tc.repo {
			t.Fatalf("splitRepoURL(%q) = %q/%q, want %q/%q", tc.in, owner, repo, tc.owner, tc.repo)
		}
	}
}
