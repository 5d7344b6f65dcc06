package filelisting

import (
	"sync"

	"github.com/C-Sto/gomftdump/pkg/logger"
	"github.com/C-Sto/gomftdump/pkg/mft"
	"go.uber.org/zap"
)

const (
	//RootIndex is the record of the volume root directory
	RootIndex = 5
	//OrphanDir is used in place of a parent that no longer exists
	OrphanDir = "$OrphanFiles"
	//DefaultCacheLimit is how many directory paths are kept
	DefaultCacheLimit = 1000

	separator = `\`
)

//PathResolver rebuilds directory paths by walking parent references up to the root.
//Resolved directory paths are cached by reference. Safe for concurrent use.
type PathResolver struct {
	resolver *mft.Resolver
	limit    int
	log      *zap.SugaredLogger

	mu    sync.Mutex
	cache map[mft.Reference]string
}

func NewPathResolver(r *mft.Resolver, limit int) *PathResolver {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	return &PathResolver{
		resolver: r,
		limit:    limit,
		log:      logger.Logger.Sugar(),
		cache:    map[mft.Reference]string{},
	}
}

func (p *PathResolver) get(ref mft.Reference) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.cache[ref]
	return s, ok
}

//Remember caches the path of a directory
func (p *PathResolver) Remember(ref mft.Reference, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.cache[ref]; !ok && len(p.cache) >= p.limit {
		for k := range p.cache {
			delete(p.cache, k)
			break
		}
	}
	p.cache[ref] = path
}

//CacheLen is the number of cached directory paths
func (p *PathResolver) CacheLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}

//Directory returns the path of the directory parent refers to, "." being the root. When the
//chain breaks (the parent was deleted or reused, or the chain loops) the missing part is
//replaced by $OrphanFiles.
func (p *PathResolver) Directory(parent mft.Reference) string {
	names := []string{}
	refs := []mft.Reference{}
	tracker := map[uint64]bool{}

	prefix := OrphanDir
	current := parent
	for {
		if current.Index == RootIndex {
			prefix = "."
			break
		}
		if cached, ok := p.get(current); ok {
			prefix = cached
			break
		}
		if tracker[current.Index] {
			p.log.Warnf("recursive parent %s, stopping lookup", current)
			break
		}
		tracker[current.Index] = true

		set, err := p.resolver.Resolve(current.Index)
		if err != nil {
			p.log.Debugf("parent %s: %s", current, err)
			break
		}
		if set.Header.Sequence != current.Sequence || !set.InUse() {
			break
		}
		fn, ok := directoryName(set)
		if !ok {
			break
		}
		names = append(names, fn.Name)
		refs = append(refs, current)
		current = fn.Parent
	}

	path := prefix
	for i := len(names) - 1; i >= 0; i-- {
		path = path + separator + names[i]
		p.Remember(refs[i], path)
	}
	return path
}

//directoryName picks the name used for a directory in paths. DOS names are only used when
//there is nothing else.
func directoryName(set *mft.EntryAttributeSet) (mft.FileName, bool) {
	names := set.FileNames()
	for _, fn := range names {
		if !fn.IsDirectory() && !set.IsDirectory() {
			return mft.FileName{}, false
		}
		if fn.Namespace == mft.Dos && len(names) != 1 {
			continue
		}
		return fn, true
	}
	return mft.FileName{}, false
}
