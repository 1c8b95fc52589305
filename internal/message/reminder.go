package message

import (
	"fmt"
	"strings"
	"time"
)

// readDocsTrigger is the phrase that asks for the documentation reminder.
const readDocsTrigger = "read the docs"

// StatusReminder tells the agent to write its working status to path before
// doing anything else. The stop gate later checks this file.
func StatusReminder(path string, now time.Time) string {
	return fmt.Sprintf(`<system-reminder>
MANDATORY: You MUST write your status to %s BEFORE proceeding.

The stop hook will BLOCK you from stopping if this file is missing or stale. Write it NOW.

`+"```markdown"+`
---
status: working
updated: %s
task: <brief description of what you're working on>
---

## Summary
<1-2 sentence summary of current activity>
`+"```"+`

Do NOT skip this step. Update this file when:
- Starting a new subtask
- Encountering blockers
- Completing significant milestones
</system-reminder>`, path, now.UTC().Format(time.RFC3339))
}

// WantsDocs reports whether prompt asks for the documentation to be read.
func WantsDocs(prompt string) bool {
	return strings.Contains(strings.ToLower(prompt), readDocsTrigger)
}

// ReadDocsReminder is the documentation-reading instruction.
func ReadDocsReminder() string {
	return `Use ultrathink to thoroughly understand the documentation.

Before starting this task, you MUST:

1. Read docs/index.md to understand the documentation structure
2. Use the docs-navigator skill pattern to identify relevant docs
3. Match your task keywords to the index keywords
4. Read ONLY the 1-3 most relevant docs (not all)
5. Apply the patterns and conventions documented there

Do NOT skip this step. Do NOT read all docs. Read smart, not everything.`
}
