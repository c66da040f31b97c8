package transform

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// CopyStep mirrors its input files into the output tree, keeping their paths relative to the source root.
type CopyStep struct {
	source string
	dest   string
	hasher ports.Hasher
}

func newCopyStep(layout domain.Layout, hasher ports.Hasher, to string) (ports.TransformStep, error) {
	dest := filepath.Join(layout.Output, to)
	if !within(layout.Output, dest) {
		err := zerr.With(zerr.Wrap(domain.ErrOutputPathOutsideRoot, "copy destination"), "step", StepCopy)
		return nil, zerr.With(err, "to", to)
	}
	return &CopyStep{source: layout.Source, dest: dest, hasher: hasher}, nil
}

// Name returns the step kind.
func (s *CopyStep) Name() string {
	return StepCopy
}

// Apply copies every input file. Files whose destination already has the same content are left untouched.
func (s *CopyStep) Apply(ctx context.Context, in domain.FileSet, diag io.Writer) (domain.FileSet, error) {
	paths := in.Paths()
	outputs := make([]string, len(paths))
	var unchanged atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, src := range paths {
		rel, err := filepath.Rel(s.source, src)
		if err != nil || !within(s.source, src) {
			rel = filepath.Base(src)
		}
		dst := filepath.Join(s.dest, rel)
		outputs[i] = dst

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			same, err := s.sameContent(src, dst)
			if err != nil {
				return err
			}
			if same {
				unchanged.Add(1)
				return nil
			}
			return copyFile(src, dst)
		})
	}
	if err := g.Wait(); err != nil {
		return domain.FileSet{}, err
	}

	_, _ = fmt.Fprintf(diag, "copied %d files (%d unchanged)\n", len(paths)-int(unchanged.Load()), unchanged.Load())
	return domain.NewFileSet(outputs...), nil
}

func (s *CopyStep) sameContent(src, dst string) (bool, error) {
	if _, err := os.Stat(dst); err != nil {
		return false, nil //nolint:nilerr // a missing destination is simply copied
	}
	srcHash, err := s.hasher.ComputeFileHash(src)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrCopyFailed.Error())
	}
	dstHash, err := s.hasher.ComputeFileHash(dst)
	if err != nil {
		return false, nil //nolint:nilerr // an unreadable destination is overwritten
	}
	return srcHash == dstHash, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // inputs come from the resolved source tree
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, err.Error()), "path", src)
	}
	defer in.Close() //nolint:errcheck // read-only file

	info, err := in.Stat()
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, err.Error()), "path", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, err.Error()), "path", dst)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // below the output dir
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, err.Error()), "path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, err.Error()), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, err.Error()), "path", dst)
	}
	return nil
}
