package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TejasriPacharu/code-help/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, fields core.Patch) *core.Context {
	t.Helper()
	ctx := core.NewContext()
	if fields != nil {
		ctx.Merge(fields)
	}
	return ctx
}

// -------------------- Registry Tests --------------------

func TestRegistryExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "nope", "{}", newTestContext(t, nil))

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "UNKNOWN_TOOL", toolErr.Code)
	assert.Equal(t, "nope", toolErr.Tool)
}

func TestRegistryExecuteMalformedArguments(t *testing.T) {
	r := NewRegistry(NewDetectProject())
	_, err := r.Execute(context.Background(), "detect_project", "{not json", newTestContext(t, nil))

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestRegistryExecuteMissingRequiredArgument(t *testing.T) {
	r := NewRegistry(NewDetectProject())
	_, err := r.Execute(context.Background(), "detect_project", "{}", newTestContext(t, nil))

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestRegistryExecuteWrapsErrors(t *testing.T) {
	failing := NewFuncTool("boom", "always fails", noParams(),
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			return Output{}, errors.New("disk on fire")
		})
	r := NewRegistry(failing)

	_, err := r.Execute(context.Background(), "boom", "", newTestContext(t, nil))

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "disk on fire")
}

func TestRegistryExecutePreservesToolError(t *testing.T) {
	failing := NewFuncTool("boom", "always fails", noParams(),
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			return Output{}, NewToolError("boom", "quota exceeded", "RATE_LIMITED")
		})
	r := NewRegistry(failing)

	_, err := r.Execute(context.Background(), "boom", "", newTestContext(t, nil))

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "RATE_LIMITED", toolErr.Code)
}

func TestRegistryDefinitionsSubset(t *testing.T) {
	r := NewRegistry(NewDetectProject(), NewAnalyzeLogs(), NewTraceError())

	defs := r.Definitions([]string{"trace_error", "analyze_logs"})
	require.Len(t, defs, 2)
	assert.Equal(t, "trace_error", defs[0].Name)
	assert.Equal(t, "analyze_logs", defs[1].Name)
	assert.NotEmpty(t, defs[0].Description)
	assert.NotNil(t, defs[0].Parameters)
}

func TestRegistryDeduplicatesNames(t *testing.T) {
	r := NewRegistry(NewDetectProject(), NewDetectProject())
	assert.Equal(t, []string{"detect_project"}, r.Names())
}

// -------------------- Built-in Tool Tests --------------------

func TestDetectProjectSlowAPI(t *testing.T) {
	snap := newTestContext(t, nil)
	r := NewRegistry(NewDetectProject())

	out, err := r.Execute(context.Background(), "detect_project",
		`{"message": "our API is really slow, timeouts everywhere"}`, snap)
	require.NoError(t, err)

	assert.Contains(t, out.Text, "ecommerce-api")
	project, ok := out.Patch[core.FieldProject].(core.ProjectInfo)
	require.True(t, ok)
	assert.Equal(t, "slow_api", project.Scenario)
	assert.Equal(t, "fastapi", project.Framework)
}

func TestDetectProjectMemoryLeak(t *testing.T) {
	r := NewRegistry(NewDetectProject())

	out, err := r.Execute(context.Background(), "detect_project",
		`{"message": "celery workers keep crashing with OOM"}`, newTestContext(t, nil))
	require.NoError(t, err)

	project := out.Patch[core.FieldProject].(core.ProjectInfo)
	assert.Equal(t, "memory_leak", project.Scenario)
	assert.Equal(t, "data-processor", project.Name)
}

func TestDetectProjectExtractsGitHubURL(t *testing.T) {
	r := NewRegistry(NewDetectProject())

	out, err := r.Execute(context.Background(), "detect_project",
		`{"message": "slow api, see https://github.com/acme/ecommerce-api"}`, newTestContext(t, nil))
	require.NoError(t, err)

	project := out.Patch[core.FieldProject].(core.ProjectInfo)
	assert.Equal(t, "https://github.com/acme/ecommerce-api", project.GitHubURL)
}

func TestAnalyzeLogsFiltersByLevel(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewAnalyzeLogs())

	out, err := r.Execute(context.Background(), "analyze_logs", `{"log_level": "ERROR"}`, snap)
	require.NoError(t, err)

	assert.Contains(t, out.Text, "Errors: 1, Warnings: 0")
	assert.NotContains(t, out.Text, "WARNING")
}

func TestTraceErrorWritesDiagnosis(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewTraceError())

	out, err := r.Execute(context.Background(), "trace_error", "{}", snap)
	require.NoError(t, err)

	diag, ok := out.Patch[core.FieldDiagnosis].(core.Diagnosis)
	require.True(t, ok)
	assert.Equal(t, "performance", diag.ErrorType)
	assert.Equal(t, "/products", diag.AffectedEndpoint)
	assert.Contains(t, diag.Report, "N+1")
}

func TestAnalyzeCodeQualityWritesMetrics(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["memory_leak"].project})
	r := NewRegistry(NewAnalyzeCodeQuality())

	out, err := r.Execute(context.Background(), "analyze_code_quality", "{}", snap)
	require.NoError(t, err)

	quality, ok := out.Patch[core.FieldQuality].(core.QualityMetrics)
	require.True(t, ok)
	assert.InDelta(t, 5.8, quality.ComplexityScore, 0.001)
	assert.NotEmpty(t, quality.CodeSmells)
}

func TestGenerateUnitTestsDefaultsFramework(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewGenerateUnitTests())

	out, err := r.Execute(context.Background(), "generate_unit_tests", "{}", snap)
	require.NoError(t, err)

	metrics, ok := out.Patch[core.FieldTesting].(core.TestMetrics)
	require.True(t, ok)
	assert.Equal(t, "pytest", metrics.Framework)
	assert.Equal(t, []string{
		"test_list_products_returns_all",
		"test_list_products_includes_reviews",
		"test_get_user_profile_unknown_user",
	}, metrics.GeneratedTests)
	assert.Contains(t, out.Text, "pytest")
}

func TestGenerateUnitTestsRespectsHandoffDefault(t *testing.T) {
	snap := newTestContext(t, core.Patch{
		core.FieldProject: scenarios["slow_api"].project,
		core.FieldTesting: core.TestMetrics{Framework: "jest"},
	})
	r := NewRegistry(NewGenerateUnitTests())

	out, err := r.Execute(context.Background(), "generate_unit_tests", "{}", snap)
	require.NoError(t, err)

	metrics := out.Patch[core.FieldTesting].(core.TestMetrics)
	assert.Equal(t, "jest", metrics.Framework)
}

func TestScanVulnerabilitiesAccumulates(t *testing.T) {
	prior := core.SecurityFindings{
		Vulnerabilities: []core.Vulnerability{
			{Severity: "LOW", Title: "Debug mode enabled", Location: "settings.py"},
		},
	}
	snap := newTestContext(t, core.Patch{
		core.FieldProject:  scenarios["slow_api"].project,
		core.FieldSecurity: prior,
	})
	r := NewRegistry(NewScanVulnerabilities())

	out, err := r.Execute(context.Background(), "scan_vulnerabilities", "", snap)
	require.NoError(t, err)

	findings := out.Patch[core.FieldSecurity].(core.SecurityFindings)
	assert.Len(t, findings.Vulnerabilities, 3)

	// Second scan with the merged result already in context must not duplicate.
	snap.Merge(out.Patch)
	out2, err := r.Execute(context.Background(), "scan_vulnerabilities", "", snap)
	require.NoError(t, err)
	findings2 := out2.Patch[core.FieldSecurity].(core.SecurityFindings)
	assert.Len(t, findings2.Vulnerabilities, 3)
}

func TestScanVulnerabilitiesScore(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewScanVulnerabilities())

	out, err := r.Execute(context.Background(), "scan_vulnerabilities", "", snap)
	require.NoError(t, err)

	findings := out.Patch[core.FieldSecurity].(core.SecurityFindings)
	// HIGH (15) + MEDIUM (8) deducted from 100.
	assert.InDelta(t, 77.0, findings.Score, 0.001)
}

func TestAuditDependenciesKeepsScanResults(t *testing.T) {
	prior := core.SecurityFindings{
		Score: 77,
		Vulnerabilities: []core.Vulnerability{
			{Severity: "HIGH", Title: "No rate limiting on API endpoints", Location: "main.py"},
		},
	}
	snap := newTestContext(t, core.Patch{
		core.FieldProject:  scenarios["slow_api"].project,
		core.FieldSecurity: prior,
	})
	r := NewRegistry(NewAuditDependencies())

	out, err := r.Execute(context.Background(), "audit_dependencies", "", snap)
	require.NoError(t, err)

	findings := out.Patch[core.FieldSecurity].(core.SecurityFindings)
	assert.NotEmpty(t, findings.DependencyAudit)
	assert.Len(t, findings.Vulnerabilities, 1)
	assert.InDelta(t, 77.0, findings.Score, 0.001)
}

func TestApplyRefactoringPatterns(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewApplyRefactoring())

	tests := []struct {
		pattern string
		want    string
	}{
		{"Repository Pattern", "SQLProductRepository"},
		{"DataLoader / Batch Loading", "ReviewDataLoader"},
		{"Caching Layer (Redis)", "redis_client"},
	}
	for _, tt := range tests {
		out, err := r.Execute(context.Background(), "apply_refactoring",
			`{"pattern": "`+tt.pattern+`"}`, snap)
		require.NoError(t, err, tt.pattern)
		assert.Contains(t, out.Text, tt.want, tt.pattern)
		assert.Nil(t, out.Patch, tt.pattern)
	}
}

func TestApplyRefactoringUnknownPattern(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewApplyRefactoring())

	out, err := r.Execute(context.Background(), "apply_refactoring", `{"pattern": "singleton"}`, snap)
	require.NoError(t, err)

	assert.Contains(t, out.Text, "No code template available for pattern: singleton")
}

func TestGenerateLoadTestsUsesDiagnosedEndpoint(t *testing.T) {
	snap := newTestContext(t, core.Patch{
		core.FieldProject:   scenarios["slow_api"].project,
		core.FieldDiagnosis: core.Diagnosis{ErrorType: "performance", AffectedEndpoint: "/user/1"},
		core.FieldTesting:   core.TestMetrics{Framework: "pytest", Coverage: 23.5},
	})
	r := NewRegistry(NewGenerateLoadTests())

	out, err := r.Execute(context.Background(), "generate_load_tests", "{}", snap)
	require.NoError(t, err)

	metrics, ok := out.Patch[core.FieldTesting].(core.TestMetrics)
	require.True(t, ok)
	require.NotNil(t, metrics.LoadTest)
	assert.Equal(t, "/user/1", metrics.LoadTest.Endpoint)
	assert.Equal(t, 100, metrics.LoadTest.TargetRPS)
	assert.Equal(t, "locust", metrics.LoadTest.Framework)

	// Earlier test-generator state survives the overwrite.
	assert.Equal(t, "pytest", metrics.Framework)
	assert.InDelta(t, 23.5, metrics.Coverage, 0.001)
}

func TestGenerateLoadTestsExplicitArguments(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewGenerateLoadTests())

	out, err := r.Execute(context.Background(), "generate_load_tests",
		`{"endpoint": "/orders", "target_rps": 250}`, snap)
	require.NoError(t, err)

	metrics := out.Patch[core.FieldTesting].(core.TestMetrics)
	assert.Equal(t, "/orders", metrics.LoadTest.Endpoint)
	assert.Equal(t, 250, metrics.LoadTest.TargetRPS)
	assert.Contains(t, out.Text, "Throughput: > 250 RPS")
}

func TestCheckRateLimitingSlowAPI(t *testing.T) {
	prior := core.SecurityFindings{Score: 77, DependencyAudit: []string{"2 vulnerable packages"}}
	snap := newTestContext(t, core.Patch{
		core.FieldProject:  scenarios["slow_api"].project,
		core.FieldSecurity: prior,
	})
	r := NewRegistry(NewCheckRateLimiting())

	out, err := r.Execute(context.Background(), "check_rate_limiting", "", snap)
	require.NoError(t, err)

	assert.Contains(t, out.Text, "NO RATE LIMITING DETECTED")
	assert.Contains(t, out.Text, "slowapi")

	findings := out.Patch[core.FieldSecurity].(core.SecurityFindings)
	assert.Equal(t, "missing", findings.RateLimiting)
	assert.InDelta(t, 77.0, findings.Score, 0.001)
	assert.Equal(t, []string{"2 vulnerable packages"}, findings.DependencyAudit)
}

func TestCheckRateLimitingUnknownForWorkers(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["memory_leak"].project})
	r := NewRegistry(NewCheckRateLimiting())

	out, err := r.Execute(context.Background(), "check_rate_limiting", "", snap)
	require.NoError(t, err)

	findings := out.Patch[core.FieldSecurity].(core.SecurityFindings)
	assert.Equal(t, "unknown", findings.RateLimiting)
}

func TestGenerateDocstringsAllFunctions(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewGenerateDocstrings())

	out, err := r.Execute(context.Background(), "generate_docstrings", "{}", snap)
	require.NoError(t, err)

	assert.Contains(t, out.Text, "## Generated Docstrings")
	assert.Contains(t, out.Text, "list_products()")
	assert.Contains(t, out.Text, "get_user_profile()")
	assert.Contains(t, out.Text, "get_products()")

	doc := out.Patch[core.FieldDocs].(core.Documentation)
	assert.Equal(t, "docstring", doc.Type)
}

func TestGenerateDocstringsSingleFunction(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewGenerateDocstrings())

	out, err := r.Execute(context.Background(), "generate_docstrings",
		`{"function_name": "list_products"}`, snap)
	require.NoError(t, err)

	assert.Contains(t, out.Text, "list_products()")
	assert.NotContains(t, out.Text, "get_user_profile()")

	out2, err := r.Execute(context.Background(), "generate_docstrings",
		`{"function_name": "no_such_function"}`, snap)
	require.NoError(t, err)
	assert.Contains(t, out2.Text, "No docstring template for function: no_such_function")
	assert.Nil(t, out2.Patch)
}

func TestExplainCodeUsesCurrentFile(t *testing.T) {
	project := scenarios["slow_api"].project
	project.CurrentFile = "database.py"
	snap := newTestContext(t, core.Patch{core.FieldProject: project})
	r := NewRegistry(NewExplainCode())

	out, err := r.Execute(context.Background(), "explain_code", "{}", snap)
	require.NoError(t, err)

	assert.True(t, strings.Contains(out.Text, "database.py"))
	doc := out.Patch[core.FieldDocs].(core.Documentation)
	assert.Equal(t, "code_explanation", doc.Type)
}

func TestGenerateAPIDocsWritesOutput(t *testing.T) {
	snap := newTestContext(t, core.Patch{core.FieldProject: scenarios["slow_api"].project})
	r := NewRegistry(NewGenerateAPIDocs())

	out, err := r.Execute(context.Background(), "generate_api_docs", "", snap)
	require.NoError(t, err)

	doc := out.Patch[core.FieldDocs].(core.Documentation)
	assert.Equal(t, "api_reference", doc.Type)
	assert.Contains(t, doc.Output, "GET /products")
}
