package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	appsDir         = "apps"
	credentialsFile = "values-credentials.yaml"
)

// GeneratorConfig is configuration for the manifest generator.
type GeneratorConfig struct {
	// RepoURL is the HTTP(S) URL of the Git repository the generated
	// manifests live in.
	RepoURL string `envconfig:"GIT_REPO_URL"`
	// SubscriptionRepoURL is the URL (typically the SSH form) that Warehouse
	// subscriptions should watch. When empty, it is resolved from the
	// credentials file or falls back to RepoURL.
	SubscriptionRepoURL string `envconfig:"KARGO_GIT_REPO_URL"`
}

// GeneratorConfigFromEnv returns a GeneratorConfig populated from environment
// variables.
func GeneratorConfigFromEnv() GeneratorConfig {
	cfg := GeneratorConfig{}
	envconfig.MustProcess("", &cfg)
	return cfg
}

// credentials is the subset of values-credentials.yaml the generator reads.
type credentials struct {
	GitRepo struct {
		URL string `yaml:"url"`
	} `yaml:"gitRepo"`
	Kargo struct {
		Git struct {
			RepoURL string `yaml:"repoURL"`
		} `yaml:"git"`
	} `yaml:"kargo"`
}

// Origins holds the resolved artifact origin URLs.
type Origins struct {
	// RepoURL is the HTTP(S) form of the origin.
	RepoURL string
	// SubscriptionRepoURL is the form Warehouse subscriptions watch.
	SubscriptionRepoURL string
}

// FindRepoRoot walks up from startDir to the nearest directory containing an
// apps/ directory and returns it.
func FindRepoRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", startDir, err)
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, appsDir)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find %s/ directory above %q", appsDir, startDir)
		}
		dir = parent
	}
}

// ResolveOrigins determines the artifact origin URLs for the repository
// rooted at repoRoot. overrideURL, when non-empty, takes precedence over
// everything for the HTTP(S) form; the GIT_REPO_URL environment variable
// comes next, then the gitRepo.url field of the optional credentials file.
// The subscription form prefers KARGO_GIT_REPO_URL, then kargo.git.repoURL
// from the credentials file (joined with the repository name taken from the
// HTTP(S) URL), and finally falls back to the HTTP(S) form itself.
func ResolveOrigins(cfg GeneratorConfig, repoRoot, overrideURL string) (Origins, error) {
	creds := readCredentials(repoRoot)

	repoURL := overrideURL
	if repoURL == "" {
		repoURL = cfg.RepoURL
	}
	if repoURL == "" && creds != nil {
		repoURL = creds.GitRepo.URL
	}
	if repoURL == "" {
		return Origins{}, fmt.Errorf(
			"GIT_REPO_URL not set and %s not found or invalid", credentialsFile,
		)
	}

	subURL := cfg.SubscriptionRepoURL
	if subURL == "" && creds != nil && creds.Kargo.Git.RepoURL != "" {
		subURL = creds.Kargo.Git.RepoURL
		if repoName := extractRepoName(repoURL); repoName != "" {
			subURL += "/" + repoName
		}
	}
	if subURL == "" {
		subURL = repoURL
	}

	return Origins{
		RepoURL:             repoURL,
		SubscriptionRepoURL: subURL,
	}, nil
}

// readCredentials loads the optional repository-wide credentials file. A
// missing or unparsable file is not an error here; callers fail only when no
// origin URL can be resolved at all.
func readCredentials(repoRoot string) *credentials {
	data, err := os.ReadFile(filepath.Join(repoRoot, credentialsFile))
	if err != nil {
		return nil
	}
	creds := &credentials{}
	if err := yaml.Unmarshal(data, creds); err != nil {
		return nil
	}
	return creds
}

// extractRepoName extracts the repository name from a Git URL, e.g.
// "https://github.com/user/repo.git" -> "repo.git".
func extractRepoName(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-1]
	}
	return ""
}
