// Package message renders the text the hooks hand back to the agent.
package message

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adrianpk/stopgate/internal/policy"
	"github.com/adrianpk/stopgate/internal/status"
)

const indent = "   "

// section is one numbered checklist item.
type section struct {
	title string
	lines []string
}

var complianceSections = []section{
	{
		title: "CLAUDE.md COMPLIANCE (if code written)",
		lines: []string{
			"- boring over clever, local over abstract",
			"- small composable units, stateless with side effects at edges",
			"- fail loud never silent, tests are truth",
			"- type hints everywhere, snake_case files, absolute imports",
			"- Pydantic for contracts, files < 400 lines, functions < 60 lines",
		},
	},
	{
		title: "DOCUMENTATION (if code written)",
		lines: []string{
			"- Read docs/index.md to understand the documentation structure",
			"- Identify ALL docs affected by your changes (architecture, API, operations, etc.)",
			"- Update those docs to reflect current implementation",
			"- Docs are the authoritative source - keep them accurate and current",
			"- Add new docs if you created new components/patterns not yet documented",
		},
	},
	{
		title: "UPDATE PROJECT .claude/MEMORIES.md (create if needed)",
		lines: []string{
			"This is NOT a changelog. Only add HIGH-VALUE entries:",
			"- User preferences that affect future work style",
			"- Architectural decisions with WHY (not what)",
			"- Non-obvious gotchas not documented elsewhere",
			"- Consolidate/update existing entries rather than append duplicates",
			"- If nothing significant learned, skip this step",
		},
	},
}

var commitSection = section{
	title: "COMMIT AND PUSH",
	lines: []string{
		"- Stage all changes: git add -A",
		"- Commit with descriptive message summarizing the work",
		"- Push to remote: git push",
		"- If on a feature branch, consider opening a PR",
	},
}

var statusTemplate = []string{
	"```markdown",
	"---",
	"status: completed",
	"updated: <timestamp>",
	"task: <what was done>",
	"---",
	"## Summary",
	"<accomplishments>",
	"```",
}

// FullChecklist is the first-stop message: every compliance item, the status
// notice when the status file is not valid, and the checks for each detected
// change type in registry order.
func FullChecklist(st status.Result, detected policy.Classification) string {
	blocks := []string{"Before stopping, complete these checks:"}

	if !st.Valid() {
		blocks = append(blocks, statusBlock(st))
	}

	n := 1
	for _, s := range complianceSections {
		blocks = append(blocks, s.render(n))
		n++
	}

	if !detected.Empty() {
		blocks = append(blocks, changeBlock(n, detected))
		n++
	}

	blocks = append(blocks, commitSection.render(n))
	blocks = append(blocks, "After completing these checks, you may stop.")

	return strings.Join(blocks, "\n\n")
}

func (s section) render(n int) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(n) + ". " + s.title + ":")
	for _, l := range s.lines {
		b.WriteString("\n" + indent + l)
	}
	return b.String()
}

func statusBlock(st status.Result) string {
	var b strings.Builder
	b.WriteString("0. 🚫 STATUS FILE UPDATE REQUIRED:")
	for _, l := range strings.Split(StatusProblem(st), "\n") {
		b.WriteString("\n" + indent + l)
	}
	b.WriteString("\n\n" + indent + "Update the status file with:")
	for _, l := range statusTemplate {
		b.WriteString("\n" + indent + l)
	}
	return b.String()
}

func changeBlock(n int, detected policy.Classification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. CHANGE-SPECIFIC TESTING REQUIRED:", n)
	for _, m := range detected {
		fmt.Fprintf(&b, "\n\n%s⚠️  %s DETECTED:", indent, m.Name)
		for _, check := range m.Checks {
			fmt.Fprintf(&b, "\n%s%s- %s", indent, indent, check)
		}
	}
	return b.String()
}

// StatusProblem describes why the status file is not valid. It is empty for
// a valid result.
func StatusProblem(st status.Result) string {
	switch st.State {
	case status.StateMissing:
		return fmt.Sprintf("MISSING: %s\nYou MUST create this file before stopping.", st.Path)
	case status.StateStale:
		return fmt.Sprintf("STALE: %s\nLast modified %d minutes ago. You MUST update it before stopping.", st.Path, st.AgeMinutes())
	case status.StateUnreadable:
		return fmt.Sprintf("ERROR reading %s: %v", st.Path, st.Err)
	default:
		return ""
	}
}

// StatusOnly is the second-stop message when the status file is still not valid.
func StatusOnly(st status.Result) string {
	return fmt.Sprintf(`🚫 STATUS FILE STILL NOT UPDATED

%s

You MUST update the status file with your completion status:

`+"```markdown"+`
---
status: completed  # or: error, blocked, idle
updated: <current timestamp>
task: <final task description>
---

## Summary
<What was accomplished>
`+"```"+`

Write the status file now, then try to stop again.`, StatusProblem(st))
}
