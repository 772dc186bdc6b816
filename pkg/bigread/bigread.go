// Package bigread decodes a whole tree of MMTF files with a few
// readers running in parallel. It is for timing and for finding the
// files in a local copy of the PDB that we cannot read.
// The layout is that of the PDB's divided directories, a parent with
// many two letter subdirectories, but files directly under the parent
// are read as well.
package bigread

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/andrew-torda/mmtf/pkg/mmtf"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	NReaderDflt = 3   // Default number of reader goroutines
	MaxDirDflt  = 200 // Read this many directories
)

// Options for Scan. Zero values get the defaults.
type Options struct {
	NReader int  // number of files decoded at once
	MaxDir  int  // stop after this many directories, 0 for all of them
	Check   bool // also run Check on every structure
	Log     *zap.Logger
}

// Result has totals over all files.
type Result struct {
	NFile         int   // files we tried
	NFail         int   // could not be decoded
	NInconsistent int   // decoded, but Check failed
	NByte         int64 // size of the files on disk
	NAtom         int64
	Failed        []string // names of files that could not be decoded
}

func (r *Result) add(o Result) {
	r.NFile += o.NFile
	r.NFail += o.NFail
	r.NInconsistent += o.NInconsistent
	r.NByte += o.NByte
	r.NAtom += o.NAtom
	r.Failed = append(r.Failed, o.Failed...)
}

// readOne decodes a file and says how it went.
func readOne(dec *mmtf.Decoder, fullpath string, check bool) (Result, error) {
	res := Result{NFile: 1}
	info, err := os.Stat(fullpath)
	if err != nil {
		return res, err
	}
	res.NByte = info.Size()
	sd, err := dec.DecodeFile(fullpath)
	if err != nil {
		return res, err
	}
	res.NAtom = int64(sd.NumAtoms)
	if check && !sd.HasConsistentData() {
		res.NInconsistent = 1
	}
	return res, nil
}

// listDir gives the plain files and the subdirectories of a directory,
// sorted so runs are repeatable.
func listDir(dir string) (files, dirs []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			dirs = append(dirs, p)
		} else if e.Type().IsRegular() {
			files = append(files, p)
		}
	}
	sort.Strings(files)
	sort.Strings(dirs)
	return files, dirs, nil
}

// Scan decodes every file under parent and its immediate
// subdirectories. Files that cannot be read are counted and logged,
// but do not stop the scan. An error is only returned if parent
// cannot be listed or ctx is cancelled.
func Scan(ctx context.Context, parent string, opts Options) (Result, error) {
	if opts.NReader <= 0 {
		opts.NReader = NReaderDflt
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	files, dirs, err := listDir(parent)
	if err != nil {
		return Result{}, errors.Wrap(err, "bigread")
	}
	if opts.MaxDir > 0 && len(dirs) > opts.MaxDir {
		dirs = dirs[:opts.MaxDir]
	}

	g, ctx := errgroup.WithContext(ctx)
	fnames := make(chan string, 200)
	g.Go(func() error { // feed file names
		defer close(fnames)
		send := func(f string) error {
			select {
			case fnames <- f:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		for _, f := range files {
			if err := send(f); err != nil {
				return err
			}
		}
		for _, d := range dirs {
			sub, _, err := listDir(d)
			if err != nil {
				log.Warn("ignoring directory", zap.String("dir", d), zap.Error(err))
				continue
			}
			for _, f := range sub {
				if err := send(f); err != nil {
					return err
				}
			}
		}
		return nil
	})

	var mu sync.Mutex
	var total Result
	for i := 0; i < opts.NReader; i++ {
		g.Go(func() error {
			dec := mmtf.NewDecoder(log)
			var mine Result
			for f := range fnames {
				res, err := readOne(dec, f, opts.Check)
				if err != nil {
					log.Warn("cannot read", zap.String("file", f), zap.Error(err))
					res.NFail = 1
					res.Failed = []string{f}
				}
				mine.add(res)
				if ctx.Err() != nil {
					break
				}
			}
			mu.Lock()
			total.add(mine)
			mu.Unlock()
			return ctx.Err()
		})
	}
	err = g.Wait()
	sort.Strings(total.Failed)
	log.Info("scan finished", zap.String("dir", parent), zap.Int("files", total.NFile),
		zap.Int("failed", total.NFail), zap.Int64("bytes", total.NByte))
	return total, err
}
