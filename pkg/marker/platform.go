package marker

// platformVar is the marker variable naming the OS platform.
const platformVar = "sys_platform"

// Platform projects the marker onto sys_platform and returns the platform
// literal the requirement is pinned to, or ok=false when the marker places
// no equality constraint on the platform.
//
// When several equality clauses mention sys_platform, the last one wins,
// including across "or" branches: sys_platform == "darwin" or
// sys_platform == "linux" reports "linux". Multi-platform markers are not
// expanded into a list; callers that need the full disjunction must walk
// the expression themselves.
func Platform(e Expr) (string, bool) {
	var value string
	var found bool
	Walk(e, func(c Comparison) {
		if c.Var == platformVar && c.Op == "==" {
			value = c.Value
			found = true
		}
	})
	return value, found
}
