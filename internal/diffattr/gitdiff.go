package diffattr

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const gitTimeout = 5 * time.Second

// CaptureDiffs collects a unified diff per file from the session's starting
// commit to the working tree, falling back to HEAD when the first attempt
// comes back empty. Every git invocation is fallible by design: failures and
// timeouts degrade to an empty entry, never an error.
func CaptureDiffs(projectDir, startCommit string, files []string) map[string]string {
	diffs := make(map[string]string, len(files))
	for _, f := range files {
		text := ""
		if startCommit != "" {
			text = gitDiff(projectDir, startCommit, f)
		}
		if text == "" {
			text = gitDiff(projectDir, "HEAD", f)
		}
		diffs[f] = text
	}
	return diffs
}

// gitDiff runs `git diff <ref> -- <file>` and returns its output, or "" on
// any failure.
func gitDiff(dir, ref, file string) string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "diff", ref, "--", file)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return string(out)
}

// ListCommits returns the commit hashes reachable in the project since a
// ref, newest first, or nil on any failure.
func ListCommits(projectDir, sinceRef string) []string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	args := []string{"log", "--format=%H"}
	if sinceRef != "" {
		args = append(args, sinceRef+"..HEAD")
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = projectDir
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	var commits []string
	for _, line := range strings.Split(string(out), "\n") {
		if line != "" {
			commits = append(commits, line)
		}
	}
	return commits
}
