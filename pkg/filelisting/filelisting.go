package filelisting

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/C-Sto/gomftdump/pkg/logger"
	"github.com/C-Sto/gomftdump/pkg/mft"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//Lister sweeps every record of the table and produces timeline rows for each file entry.
//Extension records are skipped, their attributes come in through their base record.
type Lister struct {
	resolver *mft.Resolver
	paths    *PathResolver
	count    uint64
	workers  int
	log      *zap.SugaredLogger

	work chan uint64
	out  chan Entry
	wg   *sync.WaitGroup

	resolved uint64
	skipped  uint64
	failed   uint64
}

type Option func(*Lister)

//WithWorkers sets the number of concurrent resolvers, NumCPU by default
func WithWorkers(n int) Option {
	return func(l *Lister) {
		if n > 0 {
			l.workers = n
		}
	}
}

func WithLogger(z *zap.Logger) Option {
	return func(l *Lister) {
		if z != nil {
			l.log = z.Sugar()
		}
	}
}

//WithPathResolver shares a path cache between listers
func WithPathResolver(p *PathResolver) Option {
	return func(l *Lister) {
		l.paths = p
	}
}

//New creates a lister over records 0 to count-1
func New(resolver *mft.Resolver, count uint64, opts ...Option) (*Lister, error) {
	if resolver == nil {
		return nil, mft.ErrNoReader
	}
	l := &Lister{
		resolver: resolver,
		count:    count,
		workers:  runtime.NumCPU(),
		log:      logger.Logger.Sugar(),
		out:      make(chan Entry, 500),
		wg:       &sync.WaitGroup{},
	}
	for _, o := range opts {
		o(l)
	}
	if l.paths == nil {
		l.paths = NewPathResolver(resolver, DefaultCacheLimit)
	}
	l.work = make(chan uint64, l.workers*2)
	return l, nil
}

//GetOutChan returns a reference to the objects output channel for read only operations
func (l *Lister) GetOutChan() <-chan Entry {
	return l.out
}

//Dump feeds every record index to the workers and closes the output channel when they finish
func (l *Lister) Dump() {
	for i := 0; i < l.workers; i++ {
		l.wg.Add(1)
		go l.worker()
	}
	for i := uint64(0); i < l.count; i++ {
		l.work <- i
	}
	close(l.work)
	l.wg.Wait()
	close(l.out)
	resolved, skipped, failed := l.Stats()
	l.log.Infof("resolved %d entries, skipped %d records, %d failed", resolved, skipped, failed)
}

//Stats are the resolved, skipped and failed record counts so far
func (l *Lister) Stats() (resolved, skipped, failed uint64) {
	return atomic.LoadUint64(&l.resolved), atomic.LoadUint64(&l.skipped), atomic.LoadUint64(&l.failed)
}

func (l *Lister) worker() {
	defer l.wg.Done()
	for index := range l.work {
		entries, err := l.List(index)
		if err != nil {
			if errors.Cause(err) == mft.ErrBadSignature {
				//unused or wiped slot
				atomic.AddUint64(&l.skipped, 1)
				continue
			}
			atomic.AddUint64(&l.failed, 1)
			l.log.Warnf("record %d: %s", index, err)
			continue
		}
		if entries == nil {
			atomic.AddUint64(&l.skipped, 1)
			continue
		}
		atomic.AddUint64(&l.resolved, 1)
		for _, e := range entries {
			l.out <- e
		}
	}
}

//List resolves one record and returns its rows with paths filled in. Extension records
//return nil.
func (l *Lister) List(index uint64) ([]Entry, error) {
	set, err := l.resolver.Resolve(index)
	if err != nil {
		return nil, err
	}
	if !set.Header.IsBase() {
		return nil, nil
	}
	for _, i := range set.Issues {
		l.log.Debugf("%s", i)
	}

	entries := Flatten(set)
	for n := range entries {
		e := &entries[n]
		if index == RootIndex {
			e.FullPath = "."
			continue
		}
		e.Directory = l.paths.Directory(mft.Reference{Index: e.ParentInode, Sequence: e.ParentSequence})
		e.FullPath = e.Directory + separator + e.Filename
		if e.IsDirectory && !e.Deleted && e.Namespace != mft.Dos {
			l.paths.Remember(set.Reference(), e.FullPath)
		}
	}
	return entries, nil
}
