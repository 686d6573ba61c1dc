package tool

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/TejasriPacharu/code-help/core"
)

var githubURLPattern = regexp.MustCompile(`https?://github\.com/[\w.-]+/[\w.-]+`)

// NewDetectProject returns the triage tool that identifies the project a
// request is about and loads its metadata into the session context.
func NewDetectProject() Tool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The user's description of the problem",
			},
		},
		"required": []string{"message"},
	}

	return NewFuncTool(
		"detect_project",
		"Detect the project type and issues from the user description and load project metadata.",
		params,
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			message := stringArg(args, "message", "")
			text := strings.ToLower(message)

			key := "slow_api"
			switch {
			case containsAny(text, "memory", "leak", "oom", "crash", "celery"):
				key = "memory_leak"
			case containsAny(text, "slow", "performance", "api", "timeout", "latency"):
				key = "slow_api"
			}

			sc := scenarios[key]
			project := sc.project
			if url := githubURLPattern.FindString(message); url != "" {
				project.GitHubURL = url
			}
			if p, ok := snap.Project(); ok && p.CurrentFile != "" {
				project.CurrentFile = p.CurrentFile
			}

			summary := fmt.Sprintf("Detected project: %s (%s/%s). Path: %s",
				project.Name, project.Language, project.Framework, project.RepoPath)

			return Output{
				Text:  summary,
				Patch: core.Patch{core.FieldProject: project},
			}, nil
		},
	)
}

func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
