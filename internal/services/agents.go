package services

import "encoding/json"

// Agent result shapes. Every agent calls OpenAIClient.GenerateJSON with a
// strict schema and decodes the returned object into one of these.

type ProjectIdea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type GeneratedQuestion struct {
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

type RoadmapModule struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Tasks       []string        `json:"tasks"`
	SubModules  []RoadmapModule `json:"sub_modules"`
}

type CommitAnalysis struct {
	TaskCompleted   bool     `json:"task_completed"`
	Confidence      float64  `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
	RelevantCommits []string `json:"relevant_commits"`
}

type CodeExample struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type HelpResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type TaskHelp struct {
	Overview     string         `json:"overview"`
	Steps        []string       `json:"steps"`
	CodeExamples []CodeExample  `json:"code_examples"`
	Resources    []HelpResource `json:"resources"`
	Tips         []string       `json:"tips"`
}

// decodeAgentResult round-trips a GenerateJSON result through JSON into a
// typed struct.
func decodeAgentResult(raw map[string]any, out any) error {
	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, out)
}

func stringArraySchema() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}
