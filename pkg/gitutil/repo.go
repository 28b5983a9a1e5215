// Package gitutil wraps the git operations the generator performs:
// submodule creation, ticket branches, and per-step commits.
package gitutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/logging"
)

const gitmodulesFile = ".gitmodules"

// Commits made by the generator carry a fixed signature so runs work on
// machines without a user-level git config.
const (
	commitName  = "IBEX device generator"
	commitEmail = "ibex-device-generator@stfc.ac.uk"
)

// RepoWrapper provides the generator's view of a git repository.
type RepoWrapper struct {
	path string
	repo *git.Repository
}

// Open opens the repository containing path. The path may be a
// subdirectory of the working tree, as the GUI source directory is.
func Open(path string) (*RepoWrapper, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGitOperation, "cannot open git repository at %s", path)
	}
	return &RepoWrapper{path: path, repo: repo}, nil
}

// Path returns the repository root.
func (r *RepoWrapper) Path() string {
	return r.path
}

// IsClean reports whether the working tree has no uncommitted changes.
func (r *RepoWrapper) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrGitOperation, "cannot read worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrGitOperation, "cannot read git status")
	}
	return status.IsClean(), nil
}

// EnsureClean fails with a dirty-tree error when uncommitted changes exist.
func (r *RepoWrapper) EnsureClean() error {
	clean, err := r.IsClean()
	if err != nil {
		return err
	}
	if !clean {
		return errors.Newf(errors.ErrGitDirty,
			"repository %s has uncommitted changes, commit or stash them first", r.path)
	}
	return nil
}

// TicketBranchName is the branch naming convention for generator work.
func TicketBranchName(ticket int, iocName string) string {
	return fmt.Sprintf("Ticket%d_Add_IOC_%s", ticket, iocName)
}

// SwitchToTicketBranch checks out the ticket branch, creating it from the
// current HEAD when it does not exist yet.
func (r *RepoWrapper) SwitchToTicketBranch(ticket int, iocName string) error {
	name := TicketBranchName(ticket, iocName)
	logger := logging.GetLogger("gitutil").With().Str("repo", r.path).Str("branch", name).Logger()

	wt, err := r.repo.Worktree()
	if err != nil {
		return errors.Wrap(err, errors.ErrGitOperation, "cannot read worktree")
	}

	branch := plumbing.NewBranchReferenceName(name)
	_, err = r.repo.Reference(branch, true)
	create := err != nil

	if err := wt.Checkout(&git.CheckoutOptions{Branch: branch, Create: create}); err != nil {
		return errors.Wrapf(err, errors.ErrGitOperation, "cannot switch to branch %s", name)
	}

	logger.Info().Bool("created", create).Msg("switched to ticket branch")
	return nil
}

// CommitAll stages every change in the worktree and commits it.
func (r *RepoWrapper) CommitAll(message string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return errors.Wrap(err, errors.ErrGitOperation, "cannot read worktree")
	}
	if err := wt.AddGlob("."); err != nil {
		return errors.Wrap(err, errors.ErrGitOperation, "cannot stage changes")
	}
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: commitName, Email: commitEmail, When: time.Now()},
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrGitOperation, "cannot commit %q", message)
	}

	logger := logging.GetLogger("gitutil")
	logger.Info().Str("repo", r.path).Str("message", message).Msg("committed")
	return nil
}

// CreateSubmodule registers url as a submodule of this repository at the
// given absolute path, clones it there, and stages both the clone and the
// updated .gitmodules.
func (r *RepoWrapper) CreateSubmodule(name, url, absPath string) error {
	logger := logging.GetLogger("gitutil").With().
		Str("repo", r.path).
		Str("submodule", name).
		Str("url", url).
		Logger()

	relPath, err := filepath.Rel(r.path, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return errors.Newf(errors.ErrGitOperation,
			"submodule path %s is not inside repository %s", absPath, r.path)
	}
	slashPath := filepath.ToSlash(relPath)

	modules := gitcfg.NewModules()
	modulesPath := filepath.Join(r.path, gitmodulesFile)
	if data, err := os.ReadFile(modulesPath); err == nil {
		if err := modules.Unmarshal(data); err != nil {
			return errors.Wrap(err, errors.ErrGitOperation, "cannot parse .gitmodules")
		}
	}
	if _, exists := modules.Submodules[name]; exists {
		return errors.Newf(errors.ErrGitOperation, "submodule %s already exists", name)
	}
	modules.Submodules[name] = &gitcfg.Submodule{Name: name, Path: slashPath, URL: url}

	data, err := modules.Marshal()
	if err != nil {
		return errors.Wrap(err, errors.ErrGitOperation, "cannot serialize .gitmodules")
	}
	if err := os.WriteFile(modulesPath, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrGitOperation, "cannot write .gitmodules")
	}

	if _, err := git.PlainClone(absPath, false, &git.CloneOptions{URL: url}); err != nil {
		return errors.Wrapf(err, errors.ErrGitOperation, "cannot clone %s into %s", url, absPath)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return errors.Wrap(err, errors.ErrGitOperation, "cannot read worktree")
	}
	if _, err := wt.Add(gitmodulesFile); err != nil {
		return errors.Wrap(err, errors.ErrGitOperation, "cannot stage .gitmodules")
	}
	if _, err := wt.Add(slashPath); err != nil {
		return errors.Wrapf(err, errors.ErrGitOperation, "cannot stage submodule at %s", slashPath)
	}

	logger.Info().Str("path", slashPath).Msg("created submodule")
	return nil
}
