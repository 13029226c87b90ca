// Package gitutil shells out to a local git checkout to infer the
// target repository and the latest released tag.
package gitutil

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
)

// Installed reports whether a usable git binary is on PATH.
func Installed() bool {
	if _, err := exec.LookPath("git"); err != nil {
		return false
	}
	return exec.Command("git", "--help").Run() == nil
}

// RemoteURL returns the fetch URL of the current checkout's remote,
// preferring upstream over origin over whatever comes first.
func RemoteURL() (string, error) {
	out, err := exec.Command("git", "remote", "-v").Output()
	if err != nil {
		return "", fmt.Errorf("failed to list git remotes: %w", err)
	}
	return pickRemote(string(out))
}

func pickRemote(out string) (string, error) {
	remotes := make(map[string]string)
	var order []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[2] != "(fetch)" {
			continue
		}
		if _, ok := remotes[fields[0]]; !ok {
			order = append(order, fields[0])
		}
		remotes[fields[0]] = fields[1]
	}

	for _, name := range []string{"upstream", "origin"} {
		if url, ok := remotes[name]; ok {
			return url, nil
		}
	}
	if len(order) > 0 {
		return remotes[order[0]], nil
	}
	return "", fmt.Errorf("no git remotes configured")
}

// LatestTag returns the most recent tag reachable from HEAD, with any
// "-N-gHASH" describe suffix stripped. An empty string means the
// checkout has no tags.
func LatestTag() string {
	out, err := exec.Command("git", "describe", "--tags").Output()
	if err != nil {
		log.Debug("git describe found no tags", "err", err)
		return ""
	}
	return stripDescribeSuffix(strings.TrimSpace(string(out)))
}

// stripDescribeSuffix reduces describe output like v1.2.0-4-g1a2b3c4,
// meaning HEAD is past the tag, to the tag itself.
func stripDescribeSuffix(tag string) string {
	parts := strings.Split(tag, "-")
	if len(parts) >= 3 && strings.HasPrefix(parts[len(parts)-1], "g") {
		return strings.Join(parts[:len(parts)-2], "-")
	}
	return tag
}
