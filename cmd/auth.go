package cmd

import (
	"os"
	"os/exec"
	"strings"

	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
)

const tokenEnv = "GITLAB_ACCESS_TOKEN"

// discoverToken picks the access token: the explicit flag value, then
// the environment, then an authenticated glab CLI.
func discoverToken(flagToken string) string {
	if flagToken != "" {
		return flagToken
	}
	if token := os.Getenv(tokenEnv); token != "" {
		log.Debug("using access token from the environment", "var", tokenEnv)
		return token
	}
	if token := glabToken(); token != "" {
		log.Debug("using access token from glab")
		return token
	}
	return ""
}

// glabToken extracts the token an installed glab CLI is logged in
// with. glab prints its auth status to stderr, one "Token: xxx" line
// per host.
func glabToken() string {
	if _, err := exec.LookPath("glab"); err != nil {
		return ""
	}
	out, err := exec.Command("glab", "auth", "status", "-t").CombinedOutput()
	if err != nil {
		log.Debug("glab auth status failed", "err", err)
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		if _, after, ok := strings.Cut(line, "Token:"); ok {
			if token := strings.TrimSpace(after); token != "" {
				return token
			}
		}
	}
	return ""
}
