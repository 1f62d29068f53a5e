package main

import (
	"fmt"
	"path/filepath"

	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/jsonvalue"
	"github.com/jacktools/transbuilder/lockfile"
	"github.com/jacktools/transbuilder/store"
	"github.com/jacktools/transbuilder/wizard"
)

// targetSaver persists the target file and, when tracking is on, the lock
// file next to it. A malformed target is copied to .bak before it is first
// overwritten.
type targetSaver struct {
	store  *store.Store
	path   string
	backup bool

	source  *flatpath.Map
	lock    *lockfile.LockFile
	lockKey string
}

func newTargetSaver(st *store.Store, tgt wizard.Target, source *flatpath.Map, track bool) (*targetSaver, error) {
	s := &targetSaver{
		store:  st,
		path:   tgt.Path,
		backup: tgt.Status == store.TargetMalformed,
		source: source,
	}
	if track {
		lf, err := lockfile.Load(st.Fs(), filepath.Dir(tgt.Path))
		if err != nil {
			return nil, err
		}
		s.lock = lf
		s.lockKey = lockfile.TargetKey(tgt.Path)
	}
	return s, nil
}

func (s *targetSaver) Save(target *flatpath.Map) error {
	if s.backup {
		if s.store.Exists(s.path) {
			bak, err := s.store.Backup(s.path)
			if err != nil {
				return fmt.Errorf("backing up %s: %w", s.path, err)
			}
			logger.Debugw("malformed target backed up", "path", bak)
		}
		s.backup = false
	}

	if err := s.store.Persist(target, s.path); err != nil {
		return err
	}

	if s.lock != nil {
		s.lock.Clean(s.lockKey, s.source.Keys())
		if err := s.lock.Save(); err != nil {
			return fmt.Errorf("saving lock file: %w", err)
		}
	}
	logger.Debugw("target saved", "path", s.path, "keys", target.Len())
	return nil
}

// record notes the source value an answer was made from.
func (s *targetSaver) record(key string, source jsonvalue.Value) {
	s.lock.Update(s.lockKey, key, source)
}
