package core

import (
	"sort"
	"sync"
)

// Well-known context field names. The set is closed by convention: new
// specialist capabilities add new field names rather than new merge logic,
// and unknown names are accepted additively so newer tools keep working
// against older engines.
const (
	FieldProject   = "project"
	FieldDiagnosis = "diagnosis"
	FieldQuality   = "quality"
	FieldTesting   = "testing"
	FieldSecurity  = "security"
	FieldDocs      = "documentation"
)

// ProjectInfo describes the codebase under discussion.
type ProjectInfo struct {
	Name        string `json:"name,omitempty"`
	RepoPath    string `json:"repo_path,omitempty"`
	GitHubURL   string `json:"github_url,omitempty"`
	CurrentFile string `json:"current_file,omitempty"`
	Language    string `json:"language,omitempty"`
	Framework   string `json:"framework,omitempty"`
	Scenario    string `json:"scenario,omitempty"`
}

// Diagnosis captures bug-diagnosis results.
type Diagnosis struct {
	ErrorType        string `json:"error_type,omitempty"`
	ErrorMessage     string `json:"error_message,omitempty"`
	AffectedEndpoint string `json:"affected_endpoint,omitempty"`
	Report           string `json:"report,omitempty"`
}

// QualityMetrics captures refactoring analysis results.
type QualityMetrics struct {
	ComplexityScore float64  `json:"complexity_score,omitempty"`
	CodeSmells      []string `json:"code_smells,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// TestMetrics captures test-generation results. GeneratedTests holds the
// names of tests produced so far.
type TestMetrics struct {
	Coverage       float64         `json:"coverage,omitempty"`
	Framework      string          `json:"framework,omitempty"`
	GeneratedTests []string        `json:"generated_tests,omitempty"`
	LoadTest       *LoadTestConfig `json:"load_test,omitempty"`
}

// LoadTestConfig records the load-test setup produced for the project.
type LoadTestConfig struct {
	Endpoint  string `json:"endpoint"`
	TargetRPS int    `json:"target_rps"`
	Framework string `json:"framework"`
}

// Vulnerability is a single security finding.
type Vulnerability struct {
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	Remediation string `json:"remediation,omitempty"`
}

// SecurityFindings captures security-review results. The vulnerability list
// is accumulative: the scanning tool itself unions new findings into the
// value it merges, so the store keeps plain field-overwrite semantics.
type SecurityFindings struct {
	Score           float64         `json:"score,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities,omitempty"`
	DependencyAudit []string        `json:"dependency_audit,omitempty"`
	RateLimiting    string          `json:"rate_limiting,omitempty"` // "configured", "missing" or "unknown"
}

// Documentation captures documentation-generation output.
type Documentation struct {
	Type   string `json:"type,omitempty"`
	Output string `json:"output,omitempty"`
}

// Patch is a partial context update: only the fields present are replaced.
type Patch map[string]any

// Context is the single mutable structured record per session that
// specialists and tools read and write. Mutation is exclusive to the one
// in-flight turn executor, so the internal lock only guards against
// concurrent snapshot readers. Field values are treated as immutable once
// merged: writers construct fresh values rather than mutating in place.
type Context struct {
	mu     sync.RWMutex
	fields map[string]any
}

// NewContext creates an empty context record.
func NewContext() *Context {
	return &Context{fields: map[string]any{}}
}

// Get returns the value and existence flag for a field.
func (c *Context) Get(field string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.fields[field]
	return v, ok
}

// Merge replaces exactly the fields present in the patch, leaving others
// untouched, and returns the sorted names of changed fields. Unknown field
// names are accepted; merging the same patch twice yields the same values.
func (c *Context) Merge(patch Patch) []string {
	if len(patch) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := make([]string, 0, len(patch))
	for k, v := range patch {
		c.fields[k] = v
		changed = append(changed, k)
	}
	sort.Strings(changed)
	return changed
}

// Fields returns a copy of the field map. The values themselves are shared;
// see the immutability note on Context.
func (c *Context) Fields() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.fields))
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

// Project returns the project field if populated.
func (c *Context) Project() (ProjectInfo, bool) {
	v, ok := c.Get(FieldProject)
	if !ok {
		return ProjectInfo{}, false
	}
	p, ok := v.(ProjectInfo)
	return p, ok
}

// Diagnosis returns the diagnosis field if populated.
func (c *Context) Diagnosis() (Diagnosis, bool) {
	v, ok := c.Get(FieldDiagnosis)
	if !ok {
		return Diagnosis{}, false
	}
	d, ok := v.(Diagnosis)
	return d, ok
}

// Security returns the security findings field if populated.
func (c *Context) Security() (SecurityFindings, bool) {
	v, ok := c.Get(FieldSecurity)
	if !ok {
		return SecurityFindings{}, false
	}
	s, ok := v.(SecurityFindings)
	return s, ok
}

// Testing returns the test metrics field if populated.
func (c *Context) Testing() (TestMetrics, bool) {
	v, ok := c.Get(FieldTesting)
	if !ok {
		return TestMetrics{}, false
	}
	t, ok := v.(TestMetrics)
	return t, ok
}

// Quality returns the quality metrics field if populated.
func (c *Context) Quality() (QualityMetrics, bool) {
	v, ok := c.Get(FieldQuality)
	if !ok {
		return QualityMetrics{}, false
	}
	q, ok := v.(QualityMetrics)
	return q, ok
}
