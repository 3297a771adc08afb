package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zynbuild/zyn/internal/runner"
)

var commitish = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)

// GitResolver drives the git executable through a runner.Runner.
type GitResolver struct {
	Runner runner.Runner
}

// NewGitResolver returns a GitResolver using r.
func NewGitResolver(r runner.Runner) *GitResolver {
	return &GitResolver{Runner: r}
}

func (g *GitResolver) git(dir string, args ...string) runner.Command {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	return runner.Command{Name: "git", Args: args}
}

// CloneIfMissing clones url into dir unless dir already holds a repository.
func (g *GitResolver) CloneIfMissing(ctx context.Context, url, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dir), err)
	}
	if err := g.Runner.Run(ctx, g.git("", "clone", url, dir)); err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

// ResolveRevision turns ref into a full commit id for the repository at dir.
//
// An empty ref resolves to the remote's HEAD. Otherwise ref is tried as a
// tag, then as a commit id already present locally, and finally as a remote
// branch.
func (g *GitResolver) ResolveRevision(ctx context.Context, dir, ref string) (string, error) {
	remote, _ := g.Runner.Output(ctx, g.git(dir, "remote", "get-url", "origin"))
	if remote == "" {
		remote = dir
	}

	if ref == "" {
		out, err := g.Runner.Output(ctx, g.git(dir, "ls-remote", "origin", "HEAD"))
		if err != nil {
			return "", &ResolutionError{Repo: remote, Err: err, Hint: "check the repository URL and network access"}
		}
		if commit := firstField(out); commit != "" {
			return commit, nil
		}
		return "", &ResolutionError{Repo: remote, Err: errors.New("remote has no HEAD")}
	}

	if err := g.Runner.Run(ctx, g.git(dir, "fetch", "--tags")); err != nil {
		return "", &ResolutionError{Repo: remote, Ref: ref, Err: err, Hint: "check network access"}
	}

	if out, err := g.Runner.Output(ctx, g.git(dir, "rev-list", "-n", "1", "refs/tags/"+ref)); err == nil {
		if commit := firstField(out); commit != "" {
			return commit, nil
		}
	}

	if commitish.MatchString(ref) {
		out, err := g.Runner.Output(ctx, g.git(dir, "rev-parse", "--verify", "--quiet", ref+"^{commit}"))
		if err == nil && firstField(out) != "" {
			return firstField(out), nil
		}
	}

	out, err := g.Runner.Output(ctx, g.git(dir, "ls-remote", "origin", "refs/heads/"+ref))
	if err != nil {
		return "", &ResolutionError{Repo: remote, Ref: ref, Err: err}
	}
	if commit := firstField(out); commit != "" {
		return commit, nil
	}
	return "", &ResolutionError{Repo: remote, Ref: ref, Err: errors.New("no such tag or branch"), Hint: "check the tag in the manifest"}
}

// CheckoutCommit moves the working tree at dir to commit, discarding local
// modifications.
func (g *GitResolver) CheckoutCommit(ctx context.Context, dir, commit string) error {
	if err := g.Runner.Run(ctx, g.git(dir, "fetch", "origin", commit)); err != nil {
		// Some remotes refuse fetches by id; the object may already be local.
		if _, lerr := g.Runner.Output(ctx, g.git(dir, "cat-file", "-e", commit+"^{commit}")); lerr != nil {
			return fmt.Errorf("fetching %s: %w", commit, err)
		}
	}
	if err := g.Runner.Run(ctx, g.git(dir, "reset", "--hard", commit)); err != nil {
		return fmt.Errorf("checking out %s: %w", commit, err)
	}
	return nil
}

// Head returns the commit currently checked out at dir.
func (g *GitResolver) Head(ctx context.Context, dir string) (string, error) {
	out, err := g.Runner.Output(ctx, g.git(dir, "rev-parse", "HEAD"))
	if err != nil {
		return "", fmt.Errorf("reading HEAD of %s: %w", dir, err)
	}
	return firstField(out), nil
}

// TrackedFiles lists the paths git tracks in the working tree at dir,
// slash-separated and relative to dir. Files produced by building in the
// tree, such as a Makefile written by configure, are not included.
func (g *GitResolver) TrackedFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := g.Runner.Output(ctx, g.git(dir, "ls-files", "-z"))
	if err != nil {
		return nil, fmt.Errorf("listing tracked files of %s: %w", dir, err)
	}
	var files []string
	for _, f := range strings.Split(out, "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// PinTag picks the tag a newly added dependency is locked to. With no tag,
// it is the latest tag reachable from the remote's HEAD, or "" when the
// repository has none. A bare version such as "1.2" becomes "v1.2" when
// the prefixed tag exists. The remote is inspected through a bare
// clone in a temporary directory below scratch.
func (g *GitResolver) PinTag(ctx context.Context, url, tag, scratch string) (string, error) {
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", scratch, err)
	}
	tmp, err := os.MkdirTemp(scratch, "bare-")
	if err != nil {
		return "", fmt.Errorf("creating temporary clone directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	if err := g.Runner.Run(ctx, g.git("", "clone", "--bare", "--quiet", url, tmp)); err != nil {
		return "", &ResolutionError{Repo: url, Ref: tag, Err: err, Hint: "check the repository URL and network access"}
	}
	bare := func(args ...string) runner.Command {
		return runner.Command{Name: "git", Args: append([]string{"--git-dir=" + tmp}, args...)}
	}

	if tag == "" {
		out, err := g.Runner.Output(ctx, bare("describe", "--tags", "--abbrev=0"))
		if err != nil {
			// No tags: the dependency follows the remote HEAD.
			return "", nil
		}
		return firstField(out), nil
	}

	if !strings.HasPrefix(tag, "v") {
		out, err := g.Runner.Output(ctx, bare("rev-parse", "--verify", "--quiet", "refs/tags/v"+tag))
		if err == nil && firstField(out) != "" {
			return "v" + tag, nil
		}
	}
	return tag, nil
}

func firstField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}
