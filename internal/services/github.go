package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yungbote/roadmapper-backend/internal/logger"
	"github.com/yungbote/roadmapper-backend/internal/utils"
)

type Repo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	HTMLURL     string `json:"html_url"`
}

type RepoCommit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	URL     string    `json:"url"`
}

type GithubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubClient is the repository-hosting collaborator. Calls are not retried;
// failures propagate to the caller, who may re-invoke the whole operation.
type GitHubClient interface {
	ListRepos(ctx context.Context, accessToken string) ([]Repo, error)
	CreateRepo(ctx context.Context, accessToken, name, description string, private bool) (*Repo, error)
	ListRecentCommits(ctx context.Context, accessToken, owner, repo string, sinceDays int) ([]RepoCommit, error)
	ListChangedFiles(ctx context.Context, accessToken, owner, repo, sha string) ([]string, error)
	ExchangeOAuthCode(ctx context.Context, code string) (string, error)
	GetAuthenticatedUser(ctx context.Context, accessToken string) (*GithubUser, error)
	AuthorizeURL(state string) string
}

type githubClient struct {
	log          *logger.Logger
	apiBaseURL   string
	oauthBaseURL string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

func NewGitHubClient(log *logger.Logger) GitHubClient {
	return &githubClient{
		log:          log.With("service", "GitHubClient"),
		apiBaseURL:   utils.GetEnv("GITHUB_API_BASE_URL", "https://api.github.com", log),
		oauthBaseURL: utils.GetEnv("GITHUB_OAUTH_BASE_URL", "https://github.com", log),
		clientID:     utils.GetEnv("GITHUB_CLIENT_ID", "", log),
		clientSecret: utils.GetEnv("GITHUB_CLIENT_SECRET", "", log),
		redirectURI:  utils.GetEnv("GITHUB_REDIRECT_URI", "", log),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *githubClient) doJSON(ctx context.Context, method, rawURL, accessToken string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, &buf)
	if err != nil {
		return err
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("github http %d: %s", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("github decode error: %w", err)
	}
	return nil
}

func (g *githubClient) ListRepos(ctx context.Context, accessToken string) ([]Repo, error) {
	var repos []Repo
	reqURL := fmt.Sprintf("%s/user/repos?per_page=30&sort=updated", g.apiBaseURL)
	if err := g.doJSON(ctx, http.MethodGet, reqURL, accessToken, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

func (g *githubClient) CreateRepo(ctx context.Context, accessToken, name, description string, private bool) (*Repo, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"private":     private,
		"auto_init":   true,
	}
	var repo Repo
	if err := g.doJSON(ctx, http.MethodPost, g.apiBaseURL+"/user/repos", accessToken, body, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

type githubCommitEntry struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string `json:"html_url"`
}

func (g *githubClient) ListRecentCommits(ctx context.Context, accessToken, owner, repo string, sinceDays int) ([]RepoCommit, error) {
	since := time.Now().AddDate(0, 0, -sinceDays).UTC().Format(time.RFC3339)
	reqURL := fmt.Sprintf("%s/repos/%s/%s/commits?since=%s&per_page=30",
		g.apiBaseURL, url.PathEscape(owner), url.PathEscape(repo), url.QueryEscape(since))

	var entries []githubCommitEntry
	if err := g.doJSON(ctx, http.MethodGet, reqURL, accessToken, nil, &entries); err != nil {
		return nil, err
	}

	commits := make([]RepoCommit, 0, len(entries))
	for _, e := range entries {
		commits = append(commits, RepoCommit{
			SHA:     e.SHA,
			Message: e.Commit.Message,
			Author:  e.Commit.Author.Name,
			Date:    e.Commit.Author.Date,
			URL:     e.HTMLURL,
		})
	}
	return commits, nil
}

func (g *githubClient) ListChangedFiles(ctx context.Context, accessToken, owner, repo, sha string) ([]string, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/commits/%s",
		g.apiBaseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(sha))

	var detail struct {
		Files []struct {
			Filename string `json:"filename"`
		} `json:"files"`
	}
	if err := g.doJSON(ctx, http.MethodGet, reqURL, accessToken, nil, &detail); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(detail.Files))
	for _, f := range detail.Files {
		files = append(files, f.Filename)
	}
	return files, nil
}

func (g *githubClient) ExchangeOAuthCode(ctx context.Context, code string) (string, error) {
	body := map[string]any{
		"client_id":     g.clientID,
		"client_secret": g.clientSecret,
		"code":          code,
		"redirect_uri":  g.redirectURI,
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	reqURL := g.oauthBaseURL + "/login/oauth/access_token"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("github oauth http %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("github oauth decode error: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("github oauth exchange returned no access token")
	}
	return out.AccessToken, nil
}

func (g *githubClient) GetAuthenticatedUser(ctx context.Context, accessToken string) (*GithubUser, error) {
	var user GithubUser
	if err := g.doJSON(ctx, http.MethodGet, g.apiBaseURL+"/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *githubClient) AuthorizeURL(state string) string {
	return fmt.Sprintf("%s/login/oauth/authorize?client_id=%s&redirect_uri=%s&scope=user:email,repo&state=%s",
		g.oauthBaseURL, url.QueryEscape(g.clientID), url.QueryEscape(g.redirectURI), url.QueryEscape(state))
}
