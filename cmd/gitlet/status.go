package main

import (
	"strings"

	"github.com/systemshift/gitlet/internal/repo"
)

// formatStatus renders the five status sections, current branch starred.
func formatStatus(st repo.StatusReport) string {
	var b strings.Builder
	section := func(title string, lines []string) {
		b.WriteString("=== " + title + " ===\n")
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
		b.WriteString("\n")
	}

	branches := make([]string, len(st.Branches))
	for i, name := range st.Branches {
		if name == st.Current {
			name = "*" + name
		}
		branches[i] = name
	}
	section("Branches", branches)
	section("Staged Files", st.Staged)
	section("Removed Files", st.Removed)
	section("Modifications Not Staged For Commit", st.Modified)
	section("Untracked Files", st.Untracked)
	return b.String()
}
