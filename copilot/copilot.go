// Package copilot assembles the software engineering copilot: six
// specialists wired into a handoff graph, their tools, and the guardrails
// that gate them. The rest of the repository is roster-agnostic; everything
// specific to the copilot domain lives here.
package copilot

import (
	"fmt"
	"strings"

	"github.com/TejasriPacharu/code-help/agent"
	"github.com/TejasriPacharu/code-help/core"
	"github.com/TejasriPacharu/code-help/guardrail"
	"github.com/TejasriPacharu/code-help/tool"
)

// Specialist names.
const (
	Triage         = "Triage"
	BugDiagnosis   = "Bug Diagnosis"
	Refactoring    = "Refactoring"
	TestGenerator  = "Test Generator"
	SecurityReview = "Security Review"
	Documentation  = "Documentation"
)

// EntrySpecialist is the specialist every new session starts with.
const EntrySpecialist = Triage

// Tools returns the copilot tool registry.
func Tools() *tool.Registry {
	return tool.NewRegistry(
		tool.NewDetectProject(),
		tool.NewAnalyzeLogs(),
		tool.NewTraceError(),
		tool.NewSuggestFix(),
		tool.NewPerformanceMetrics(),
		tool.NewAnalyzeCodeQuality(),
		tool.NewSuggestRefactoring(),
		tool.NewApplyRefactoring(),
		tool.NewGenerateUnitTests(),
		tool.NewAnalyzeCoverage(),
		tool.NewGenerateLoadTests(),
		tool.NewScanVulnerabilities(),
		tool.NewAuditDependencies(),
		tool.NewCheckRateLimiting(),
		tool.NewGenerateAPIDocs(),
		tool.NewExplainCode(),
		tool.NewGenerateDocstrings(),
	)
}

// Guardrails returns the copilot guardrail pipeline: relevance first, then
// jailbreak.
func Guardrails() *guardrail.Pipeline {
	return guardrail.NewPipeline(
		guardrail.NewRelevance(),
		guardrail.NewJailbreak(),
	)
}

var gateAll = []string{guardrail.RelevanceName, guardrail.JailbreakName}

// Specialists returns the copilot roster with its handoff graph. Every
// specialist may return to Triage; Triage may reach every other specialist.
func Specialists() []*agent.Specialist {
	return []*agent.Specialist{
		{
			Name:         Triage,
			Description:  "Routes requests to the appropriate specialist.",
			Tools:        []string{"detect_project"},
			Handoffs:     []string{BugDiagnosis, Refactoring, TestGenerator, SecurityReview, Documentation},
			Guardrails:   gateAll,
			Instructions: triageInstructions,
		},
		{
			Name:         BugDiagnosis,
			Description:  "Analyzes code for bugs, errors, and performance issues.",
			Tools:        []string{"analyze_logs", "trace_error", "suggest_fix", "get_performance_metrics"},
			Handoffs:     []string{Refactoring, TestGenerator, SecurityReview, Triage},
			Guardrails:   gateAll,
			Instructions: bugDiagnosisInstructions,
		},
		{
			Name:         Refactoring,
			Description:  "Improves code structure, readability, and maintainability.",
			Tools:        []string{"analyze_code_quality", "suggest_refactoring", "apply_refactoring"},
			Handoffs:     []string{TestGenerator, SecurityReview, Documentation, Triage},
			Guardrails:   gateAll,
			Instructions: refactoringInstructions,
		},
		{
			Name:         TestGenerator,
			Description:  "Generates unit tests and analyzes test coverage.",
			Tools:        []string{"generate_unit_tests", "analyze_coverage", "generate_load_tests"},
			Handoffs:     []string{BugDiagnosis, SecurityReview, Triage},
			Guardrails:   gateAll,
			Instructions: testGeneratorInstructions,
			OnHandoff:    defaultTestFramework,
		},
		{
			Name:         SecurityReview,
			Description:  "Scans for vulnerabilities and audits dependencies.",
			Tools:        []string{"scan_vulnerabilities", "audit_dependencies", "check_rate_limiting"},
			Handoffs:     []string{Refactoring, TestGenerator, Triage},
			Guardrails:   gateAll,
			Instructions: securityReviewInstructions,
		},
		{
			Name:         Documentation,
			Description:  "Explains code and generates documentation.",
			Tools:        []string{"generate_api_docs", "explain_code", "generate_docstrings"},
			Handoffs:     []string{BugDiagnosis, Refactoring, Triage},
			Guardrails:   gateAll,
			Instructions: documentationInstructions,
		},
	}
}

// Registry builds and validates the copilot specialist registry against the
// copilot tools and guardrails.
func Registry() (*agent.Registry, error) {
	return agent.NewRegistry(Specialists(), agent.KnownNames{
		Tools:      Tools().Names(),
		Guardrails: Guardrails().Names(),
	})
}

// defaultTestFramework seeds the test framework from the project language
// when control transfers to the Test Generator and no framework is set yet.
func defaultTestFramework(ctx *core.Context) core.Patch {
	if tm, ok := ctx.Testing(); ok && tm.Framework != "" {
		return nil
	}

	framework := "pytest"
	if p, ok := ctx.Project(); ok {
		switch p.Language {
		case "javascript", "typescript":
			framework = "jest"
		}
	}

	metrics := core.TestMetrics{Framework: framework}
	if tm, ok := ctx.Testing(); ok {
		metrics.Coverage = tm.Coverage
		metrics.GeneratedTests = tm.GeneratedTests
		metrics.LoadTest = tm.LoadTest
	}
	return core.Patch{core.FieldTesting: metrics}
}

// projectHeader summarizes the loaded project for instruction prompts.
func projectHeader(ctx *core.Context) string {
	p, ok := ctx.Project()
	if !ok {
		return "No project loaded yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Current project: %s (%s/%s)\nPath: %s", p.Name, p.Language, p.Framework, p.RepoPath)
	if p.GitHubURL != "" {
		fmt.Fprintf(&b, "\nGitHub URL: %s", p.GitHubURL)
	}
	if p.CurrentFile != "" {
		fmt.Fprintf(&b, "\nCurrent file: %s", p.CurrentFile)
	}
	return b.String()
}

func triageInstructions(ctx *core.Context) string {
	return "You are the Triage specialist for a software engineering copilot. " +
		"Identify what the user needs and route them to the right specialist.\n\n" +
		projectHeader(ctx) + "\n\n" +
		"Routing:\n" +
		"- Bugs, errors, performance problems -> Bug Diagnosis\n" +
		"- Code structure improvements -> Refactoring\n" +
		"- Tests or coverage -> Test Generator\n" +
		"- Security concerns -> Security Review\n" +
		"- Code explanation or docs -> Documentation\n\n" +
		"If no project is loaded, call detect_project first, then hand off."
}

func bugDiagnosisInstructions(ctx *core.Context) string {
	s := "You are the Bug Diagnosis specialist. You analyze code for bugs and performance issues.\n\n" +
		projectHeader(ctx) + "\n\n" +
		"Workflow:\n" +
		"1. analyze_logs and get_performance_metrics to see symptoms\n" +
		"2. trace_error to find the root cause\n" +
		"3. suggest_fix for concrete fixes\n\n" +
		"Hand off security concerns to Security Review, test needs to Test Generator, " +
		"structural work to Refactoring, and anything else back to Triage."
	if d, ok := ctx.Get(core.FieldDiagnosis); ok {
		if diag, ok := d.(core.Diagnosis); ok && diag.Report != "" {
			s += "\n\nPrevious diagnosis:\n" + diag.Report
		}
	}
	return s
}

func refactoringInstructions(ctx *core.Context) string {
	return "You are the Refactoring specialist. You improve code structure and maintainability.\n\n" +
		projectHeader(ctx) + "\n\n" +
		"Workflow:\n" +
		"1. analyze_code_quality to find smells\n" +
		"2. suggest_refactoring for concrete improvements\n" +
		"3. apply_refactoring to produce the refactored code for a chosen pattern\n\n" +
		"Hand off test needs to Test Generator, security concerns to Security Review, " +
		"documentation to Documentation, and anything else back to Triage."
}

func testGeneratorInstructions(ctx *core.Context) string {
	framework := "pytest"
	if tm, ok := ctx.Testing(); ok && tm.Framework != "" {
		framework = tm.Framework
	}
	return "You are the Test Generator specialist. You write unit tests and analyze coverage.\n\n" +
		projectHeader(ctx) + "\n" +
		"Test framework: " + framework + "\n\n" +
		"Workflow:\n" +
		"1. analyze_coverage to find gaps\n" +
		"2. generate_unit_tests for the uncovered code\n" +
		"3. generate_load_tests when performance is the concern\n\n" +
		"Hand off bugs you find to Bug Diagnosis, security concerns to Security Review, " +
		"and anything else back to Triage."
}

func securityReviewInstructions(ctx *core.Context) string {
	return "You are the Security Review specialist. You find vulnerabilities and audit dependencies.\n\n" +
		projectHeader(ctx) + "\n\n" +
		"Workflow:\n" +
		"1. scan_vulnerabilities for code-level issues\n" +
		"2. audit_dependencies for vulnerable packages\n" +
		"3. check_rate_limiting for abuse protection on API projects\n\n" +
		"Hand off fixes to Refactoring, test needs to Test Generator, " +
		"and anything else back to Triage."
}

func documentationInstructions(ctx *core.Context) string {
	return "You are the Documentation specialist. You explain code and generate documentation.\n\n" +
		projectHeader(ctx) + "\n\n" +
		"Workflow:\n" +
		"1. explain_code for walkthroughs of specific files\n" +
		"2. generate_api_docs for reference documentation\n" +
		"3. generate_docstrings for inline function documentation\n\n" +
		"Hand off bugs to Bug Diagnosis, structural work to Refactoring, " +
		"and anything else back to Triage."
}
