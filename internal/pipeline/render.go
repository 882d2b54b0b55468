package pipeline

import (
	"fmt"
	"strings"
)

// containsValidToken reports whether the response text contains the literal
// token "valid" anywhere, case-insensitive. Matching any occurrence mirrors
// the classification contract; "Invalid" therefore also matches, which is
// acceptable because a correction fence takes priority over this check.
func containsValidToken(response string) bool {
	return strings.Contains(strings.ToLower(response), "valid")
}

// renderStandaloneHTML wraps the final diagram source in a self-contained
// page for the download affordance. The browser renders the diagram with
// the mermaid CDN bundle; nothing is rendered server-side.
func renderStandaloneHTML(diagramSource string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>ERD Diagram</title></head>
<body>
    <div class="mermaid">%s</div>
    <script src="https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.min.js"></script>
    <script>mermaid.initialize({startOnLoad: true});</script>
</body>
</html>
`, diagramSource)
}
