package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

type ChangedFile struct {
	Path         string
	ChangedLines []int
	Deleted      bool
	// Untracked files are new to git; every line of them is changed.
	Untracked bool
}

// chunk header: @@ -oldStart,oldLen +newStart,newLen @@
var chunkHeader = regexp.MustCompile(`^@@ \-\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

// GetChangedFiles runs git diff in dir against baseRef and returns the changed
// files with their new-side line numbers, followed by untracked files that
// are not ignored. Paths are relative to dir. A rename is reported as the
// deletion of the old path plus a change of the new one.
func GetChangedFiles(ctx context.Context, dir, baseRef string) ([]ChangedFile, error) {
	if baseRef == "" {
		baseRef = "HEAD"
	}
	cmd := exec.CommandContext(ctx, "git", "diff", "-U0", "--no-color", "--relative", "--find-renames", baseRef)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	changes, err := parseDiff(output)
	if err != nil {
		return nil, err
	}

	cmd = exec.CommandContext(ctx, "git", "ls-files", "--others", "--exclude-standard")
	cmd.Dir = dir
	output, err = cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}
	return mergeUntracked(changes, output), nil
}

// mergeUntracked appends the files listed one per line in output that the
// diff did not already report.
func mergeUntracked(changes []ChangedFile, output []byte) []ChangedFile {
	known := make(map[string]bool, len(changes))
	for _, c := range changes {
		known[c.Path] = true
	}
	for _, line := range strings.Split(string(output), "\n") {
		path := strings.TrimSpace(line)
		if path == "" || known[path] {
			continue
		}
		known[path] = true
		changes = append(changes, ChangedFile{Path: path, ChangedLines: []int{}, Untracked: true})
	}
	return changes
}

// Paths returns the file paths of changes.
func Paths(changes []ChangedFile) []string {
	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		paths = append(paths, c.Path)
	}
	return paths
}

func parseDiff(output []byte) ([]ChangedFile, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var changes []ChangedFile
	var current *ChangedFile

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "diff --git") {
			if current != nil {
				changes = append(changes, *current)
			}
			current = nil
			// diff --git a/path b/path; the b/ side is the new version
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				current = &ChangedFile{Path: strings.TrimPrefix(parts[3], "b/"), ChangedLines: []int{}}
			}
			continue
		}

		if current == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "rename from "):
			// the old path disappears from the new side
			changes = append(changes, ChangedFile{
				Path:         strings.TrimPrefix(line, "rename from "),
				ChangedLines: []int{},
				Deleted:      true,
			})
		case strings.HasPrefix(line, "deleted file mode"):
			current.Deleted = true
		case strings.HasPrefix(line, "+++ /dev/null"):
			current.Deleted = true
		case strings.HasPrefix(line, "@@"):
			matches := chunkHeader.FindStringSubmatch(line)
			if len(matches) < 2 {
				continue
			}
			start, err := strconv.Atoi(matches[1])
			if err != nil {
				return nil, fmt.Errorf("bad chunk header %q: %w", line, err)
			}
			count := 1
			if matches[2] != "" {
				count, _ = strconv.Atoi(matches[2])
			}
			// count 0 is a pure deletion; nothing exists on the new side
			for i := 0; i < count; i++ {
				current.ChangedLines = append(current.ChangedLines, start+i)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read diff: %w", err)
	}

	if current != nil {
		changes = append(changes, *current)
	}

	return changes, nil
}
