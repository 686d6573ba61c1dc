package tool

import "github.com/TejasriPacharu/code-help/core"

// scenario bundles the demo fixtures the analysis tools run against, so the
// system is fully exercisable without external services. Real deployments
// replace these tools with ones backed by live repositories and telemetry.
type scenario struct {
	key       string
	project   core.ProjectInfo
	errorLogs []logEntry
	metrics   perfMetrics
	vulns     []core.Vulnerability
	depAudit  []string
	fixes     []string
	smells    []string
	files     map[string]string
}

type logEntry struct {
	Timestamp string
	Level     string
	Message   string
	Endpoint  string
}

type perfMetrics struct {
	AvgResponseMs  int
	P95ResponseMs  int
	P99ResponseMs  int
	RequestsPerSec int
	ErrorRate      float64
	QueriesPerReq  int
}

var scenarios = map[string]scenario{
	"slow_api": {
		key: "slow_api",
		project: core.ProjectInfo{
			Name:      "ecommerce-api",
			RepoPath:  "/repos/ecommerce-api",
			Language:  "python",
			Framework: "fastapi",
			Scenario:  "slow_api",
		},
		errorLogs: []logEntry{
			{Timestamp: "2024-12-09T14:32:15Z", Level: "WARNING", Message: "Slow response detected: GET /products took 5.2s", Endpoint: "/products"},
			{Timestamp: "2024-12-09T14:35:22Z", Level: "WARNING", Message: "Database connection pool exhausted", Endpoint: "/products"},
			{Timestamp: "2024-12-09T14:40:01Z", Level: "ERROR", Message: "Request timeout after 30s", Endpoint: "/products"},
		},
		metrics: perfMetrics{AvgResponseMs: 4800, P95ResponseMs: 8500, P99ResponseMs: 12000, RequestsPerSec: 15, ErrorRate: 0.05, QueriesPerReq: 101},
		vulns: []core.Vulnerability{
			{Severity: "HIGH", Title: "No rate limiting on API endpoints", Location: "main.py", Remediation: "Add per-IP rate limiting (100 req/min)"},
			{Severity: "MEDIUM", Title: "user_id parameter not validated", Location: "main.py", Remediation: "Validate user_id as a positive integer"},
		},
		depAudit: []string{
			"fastapi 0.68.0 → 0.95.0 (CVE-2021-32677 fixed in 0.65.2, upgrade recommended)",
			"requests 2.25.0 → 2.31.0 (CVE-2023-32681)",
		},
		fixes: []string{
			"Batch-load reviews with a DataLoader pattern instead of per-product queries",
			"Cache user orders in Redis with a 5-minute TTL",
			"Use connection pooling for database access",
			"Paginate the /products endpoint",
		},
		smells: []string{
			"N+1 query in list_products (get_reviews called per product)",
			"No caching on get_orders despite expensive query",
			"Duplicated response assembly between /products and /user handlers",
		},
		files: map[string]string{
			"main.py":     "FastAPI app: /products iterates products calling get_reviews per item; /user/{user_id} loads user and orders without caching.",
			"database.py": "Simulated DB layer: get_products returns 100 rows, get_reviews is called once per product, get_orders has no cache.",
		},
	},
	"memory_leak": {
		key: "memory_leak",
		project: core.ProjectInfo{
			Name:      "data-processor",
			RepoPath:  "/repos/data-processor",
			Language:  "python",
			Framework: "celery",
			Scenario:  "memory_leak",
		},
		errorLogs: []logEntry{
			{Timestamp: "2024-12-10T02:11:40Z", Level: "WARNING", Message: "Worker memory usage at 82% and climbing", Endpoint: "worker-1"},
			{Timestamp: "2024-12-10T03:47:03Z", Level: "ERROR", Message: "Worker killed: OOM (rss 3.9GB)", Endpoint: "worker-1"},
		},
		metrics: perfMetrics{AvgResponseMs: 950, P95ResponseMs: 2100, P99ResponseMs: 6400, RequestsPerSec: 40, ErrorRate: 0.02, QueriesPerReq: 3},
		vulns: []core.Vulnerability{
			{Severity: "MEDIUM", Title: "Unvalidated file_path passed to pandas.read_csv", Location: "tasks.py", Remediation: "Restrict file_path to an allow-listed directory"},
		},
		depAudit: []string{
			"celery 5.1.0 → 5.3.1 (CVE-2021-23727)",
		},
		fixes: []string{
			"Replace the module-level CACHE dict with an LRU cache or external store",
			"Evict processed results after aggregation",
			"Cap DataFrame retention and stream large files in chunks",
		},
		smells: []string{
			"Module-level CACHE grows without bound",
			"aggregate_results concatenates every cached frame on each call",
		},
		files: map[string]string{
			"tasks.py":  "Celery tasks: process_data stores each result in a module-level CACHE dict that is never cleared; aggregate_results concatenates all of it.",
			"worker.py": "Worker entrypoint, no resource limits configured.",
		},
	},
}

// activeScenario resolves the demo scenario for the current context,
// defaulting to slow_api when no project has been detected yet.
func activeScenario(snap *core.Context) scenario {
	if p, ok := snap.Project(); ok {
		if s, ok := scenarios[p.Scenario]; ok {
			return s
		}
	}
	return scenarios["slow_api"]
}
