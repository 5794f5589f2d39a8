// Package gitlog provides a source that emits one record per commit of a
// local git repository, newest first.
package gitlog

import (
	"context"
	"io"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/adp-project/adp/internal/pipeline"
	"github.com/adp-project/adp/internal/registry"
)

func init() {
	registry.MustRegisterComponent("adp.sources:GitLogSource", newSource)
	registry.MustRegisterEntryPoint("gitlog", "adp.sources:GitLogSource")
}

type sourceParams struct {
	// Path is the repository root; the workdir when empty.
	Path string `yaml:"path"`
	// MaxCount bounds the number of commits emitted; 0 means all.
	MaxCount int `yaml:"max_count" validate:"omitempty,min=0"`
}

// GitLogSource walks the repository history from HEAD.
type GitLogSource struct {
	params sourceParams
}

func newSource(params map[string]any) (any, error) {
	var p sourceParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	return &GitLogSource{params: p}, nil
}

func (s *GitLogSource) Run(ctx context.Context, rc *pipeline.Context) (pipeline.Batch, error) {
	path := s.params.Path
	if path == "" {
		path = rc.WorkDir
	}

	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}

	emitted := 0
	return pipeline.Func(func() (pipeline.Record, error) {
		if s.params.MaxCount > 0 && emitted >= s.params.MaxCount {
			iter.Close()
			return nil, io.EOF
		}

		commit, err := iter.Next()
		if err != nil {
			iter.Close()
			if err == storer.ErrStop || err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}
		emitted++
		return commitRecord(commit), nil
	}), nil
}

func commitRecord(c *object.Commit) pipeline.Record {
	return pipeline.Record{
		"hash":    c.Hash.String(),
		"author":  c.Author.Name,
		"email":   c.Author.Email,
		"when":    c.Author.When.UTC().Format("2006-01-02T15:04:05Z"),
		"message": c.Message,
	}
}

var _ pipeline.Source = (*GitLogSource)(nil)
