package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/TejasriPacharu/code-help/core"
)

// NewAnalyzeLogs returns the diagnosis tool that summarizes recent error
// logs for the active project.
func NewAnalyzeLogs() Tool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"log_level": map[string]any{
				"type":        "string",
				"description": "Filter logs by level (ERROR, WARNING) or 'all'",
				"enum":        []string{"all", "ERROR", "WARNING"},
			},
		},
	}

	return NewFuncTool(
		"analyze_logs",
		"Analyze error logs to identify issues and patterns.",
		params,
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			sc := activeScenario(snap)
			level := stringArg(args, "log_level", "all")

			logs := sc.errorLogs
			if !strings.EqualFold(level, "all") {
				filtered := logs[:0:0]
				for _, l := range logs {
					if strings.EqualFold(l.Level, level) {
						filtered = append(filtered, l)
					}
				}
				logs = filtered
			}
			if len(logs) == 0 {
				return Output{Text: "No error logs found. The application appears to be running healthy."}, nil
			}

			var errors, warnings int
			endpoints := map[string]struct{}{}
			var lines []string
			for _, l := range logs {
				switch l.Level {
				case "ERROR":
					errors++
				case "WARNING":
					warnings++
				}
				if l.Endpoint != "" {
					endpoints[l.Endpoint] = struct{}{}
				}
				lines = append(lines, fmt.Sprintf("[%s] %s: %s", l.Timestamp, l.Level, l.Message))
			}
			names := make([]string, 0, len(endpoints))
			for e := range endpoints {
				names = append(names, e)
			}
			sort.Strings(names)

			text := fmt.Sprintf(
				"Log Analysis for %s:\n- Total entries: %d\n- Errors: %d, Warnings: %d\n- Affected endpoints: %s\n\nRecent logs:\n%s",
				sc.project.Name, len(logs), errors, warnings, strings.Join(names, ", "), strings.Join(lines, "\n"),
			)
			return Output{Text: text}, nil
		},
	)
}

// NewTraceError returns the diagnosis tool that identifies the root cause of
// the active project's failure and records the diagnosis in the session
// context.
func NewTraceError() Tool {
	return NewFuncTool(
		"trace_error",
		"Trace the root cause of an error through the codebase.",
		optionalString("error_type", "Error category to focus on (performance, memory)"),
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			sc := activeScenario(snap)

			var diag core.Diagnosis
			switch sc.key {
			case "slow_api":
				diag = core.Diagnosis{
					ErrorType:        "performance",
					AffectedEndpoint: "/products",
					Report: fmt.Sprintf(
						"Root Cause Analysis:\n"+
							"1. N+1 query problem in main.py:list_products()\n"+
							"   - %d DB queries per request, one get_reviews() call per product\n"+
							"2. Missing caching in database.py:get_orders()\n"+
							"   - Same user orders fetched repeatedly, no TTL or invalidation\n"+
							"3. Connection pool exhaustion\n"+
							"   - Response time: %dms avg, p99 %dms",
						sc.metrics.QueriesPerReq, sc.metrics.AvgResponseMs, sc.metrics.P99ResponseMs,
					),
				}
			case "memory_leak":
				diag = core.Diagnosis{
					ErrorType: "memory",
					Report: "Root Cause Analysis:\n" +
						"1. Unbounded cache growth in tasks.py\n" +
						"   - Module-level CACHE dict is never cleared\n" +
						"2. No cache eviction policy\n" +
						"   - Results accumulate until the worker is OOM-killed",
				}
			default:
				diag = core.Diagnosis{Report: "No significant issues detected in the codebase."}
			}
			if et := stringArg(args, "error_type", ""); et != "" {
				diag.ErrorType = et
			}

			return Output{
				Text:  diag.Report,
				Patch: core.Patch{core.FieldDiagnosis: diag},
			}, nil
		},
	)
}

// NewSuggestFix returns the diagnosis tool that proposes concrete fixes for
// the issues found so far.
func NewSuggestFix() Tool {
	return NewFuncTool(
		"suggest_fix",
		"Suggest code fixes for identified issues.",
		optionalString("issue_type", "Issue category to suggest fixes for"),
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			sc := activeScenario(snap)
			if len(sc.fixes) == 0 {
				return Output{Text: "No specific fixes needed, the code appears healthy."}, nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Suggested fixes for %s:\n", sc.project.Name)
			for _, f := range sc.fixes {
				fmt.Fprintf(&b, "- %s\n", f)
			}
			return Output{Text: b.String()}, nil
		},
	)
}

// NewPerformanceMetrics returns the diagnosis tool that reports the active
// project's performance profile.
func NewPerformanceMetrics() Tool {
	return NewFuncTool(
		"get_performance_metrics",
		"Get performance metrics for the current project.",
		noParams(),
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			sc := activeScenario(snap)
			m := sc.metrics

			text := fmt.Sprintf(
				"Performance Metrics for %s:\n"+
					"- Avg response time: %dms\n"+
					"- P95 response time: %dms\n"+
					"- P99 response time: %dms\n"+
					"- Requests/sec: %d\n"+
					"- Error rate: %.1f%%\n"+
					"- DB queries per request: %d",
				sc.project.Name, m.AvgResponseMs, m.P95ResponseMs, m.P99ResponseMs,
				m.RequestsPerSec, m.ErrorRate*100, m.QueriesPerReq,
			)
			return Output{Text: text}, nil
		},
	)
}
