package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/TejasriPacharu/code-help/core"
)

// NewGenerateAPIDocs returns the documentation tool that produces reference
// docs for the active project's endpoints.
func NewGenerateAPIDocs() Tool {
	return NewFuncTool(
		"generate_api_docs",
		"Generate API documentation for the project.",
		noParams(),
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			sc := activeScenario(snap)

			var body string
			switch sc.key {
			case "slow_api":
				body = fmt.Sprintf("# %s API Reference\n\n", sc.project.Name) +
					"## GET /products\n\n" +
					"Returns the full product catalog with reviews attached to each product.\n\n" +
					"Response: `200 OK`, JSON array of product objects.\n\n" +
					"## GET /user/{user_id}\n\n" +
					"Returns the user profile together with the user's order history.\n\n" +
					"Parameters: `user_id` (path, integer, required).\n\n" +
					"Response: `200 OK` with the profile, `404 Not Found` for unknown users.\n"
			case "memory_leak":
				body = fmt.Sprintf("# %s Task Reference\n\n", sc.project.Name) +
					"## process_data(file_path)\n\n" +
					"Celery task that loads a CSV file and caches the resulting frame.\n\n" +
					"## aggregate_results()\n\n" +
					"Concatenates all cached frames into a single aggregate frame.\n"
			}

			doc := core.Documentation{Type: "api_reference", Output: body}
			return Output{
				Text:  body,
				Patch: core.Patch{core.FieldDocs: doc},
			}, nil
		},
	)
}

// NewGenerateDocstrings returns the documentation tool that writes docstrings
// for the active project's functions.
func NewGenerateDocstrings() Tool {
	return NewFuncTool(
		"generate_docstrings",
		"Generate docstrings for functions in the codebase.",
		optionalString("function_name", "Generate a docstring for this function only"),
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			sc := activeScenario(snap)

			docstrings := map[string]string{}
			switch sc.key {
			case "slow_api":
				docstrings = map[string]string{
					"list_products": "def list_products() -> List[Dict[str, Any]]:\n" +
						"    \"\"\"Retrieve all products with their associated reviews.\n\n" +
						"    Warning:\n" +
						"        Current implementation issues O(n) database queries where n\n" +
						"        is the number of products. Use batch loading in production.\n\n" +
						"    Returns:\n" +
						"        List of product dictionaries, each with id, name and reviews.\n" +
						"    \"\"\"",
					"get_user_profile": "def get_user_profile(user_id: int) -> Dict[str, Any]:\n" +
						"    \"\"\"Retrieve the user profile with complete order history.\n\n" +
						"    Args:\n" +
						"        user_id: Unique identifier for the user.\n\n" +
						"    Returns:\n" +
						"        Dict with the user details and the list of orders.\n\n" +
						"    Raises:\n" +
						"        UserNotFoundError: If no user exists with the given ID.\n" +
						"    \"\"\"",
					"get_products": "def get_products() -> List[Dict[str, Any]]:\n" +
						"    \"\"\"Fetch all products from the database.\n\n" +
						"    Note:\n" +
						"        Includes a 100ms simulated delay for demo purposes.\n" +
						"    \"\"\"",
				}
			case "memory_leak":
				docstrings = map[string]string{
					"process_data": "def process_data(file_path: str) -> int:\n" +
						"    \"\"\"Load a CSV file, cache the frame and return its row count.\n\n" +
						"    Warning:\n" +
						"        The module-level cache is never evicted; memory grows with\n" +
						"        every processed file.\n" +
						"    \"\"\"",
					"aggregate_results": "def aggregate_results() -> DataFrame:\n" +
						"    \"\"\"Concatenate every cached frame into one aggregate frame.\"\"\"",
				}
			}

			names := make([]string, 0, len(docstrings))
			if fn := stringArg(args, "function_name", ""); fn != "" {
				if _, ok := docstrings[fn]; ok {
					names = append(names, fn)
				} else {
					return Output{Text: fmt.Sprintf("No docstring template for function: %s", fn)}, nil
				}
			} else {
				for n := range docstrings {
					names = append(names, n)
				}
				sort.Strings(names)
			}

			var b strings.Builder
			b.WriteString("## Generated Docstrings\n")
			for _, n := range names {
				fmt.Fprintf(&b, "\n### %s()\n```python\n%s\n```\n", n, docstrings[n])
			}
			body := b.String()

			doc := core.Documentation{Type: "docstring", Output: body}
			return Output{
				Text:  body,
				Patch: core.Patch{core.FieldDocs: doc},
			}, nil
		},
	)
}

// NewExplainCode returns the documentation tool that walks through a source
// file and explains what it does.
func NewExplainCode() Tool {
	return NewFuncTool(
		"explain_code",
		"Explain how a piece of code works.",
		optionalString("file_name", "File to explain (defaults to the main entrypoint)"),
		func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
			sc := activeScenario(snap)

			target := stringArg(args, "file_name", "")
			if target == "" {
				if p, ok := snap.Project(); ok && p.CurrentFile != "" {
					target = p.CurrentFile
				} else if sc.key == "memory_leak" {
					target = "tasks.py"
				} else {
					target = "main.py"
				}
			}

			summary, ok := sc.files[target]
			if !ok {
				return Output{Text: fmt.Sprintf("File %s not found in %s.", target, sc.project.Name)}, nil
			}

			body := fmt.Sprintf("## Code Explanation: %s\n\n%s", target, summary)
			doc := core.Documentation{Type: "code_explanation", Output: body}
			return Output{
				Text:  body,
				Patch: core.Patch{core.FieldDocs: doc},
			}, nil
		},
	)
}
