package inmemory

import (
	"context"
	"github.com/gaussfff/momitroll/internal/database"
	"github.com/gaussfff/momitroll/migration"
	"github.com/pkg/errors"
	"sort"
	"sync"
	"time"
)

var ErrNotInitialized = errors.New("in-memory changelog has not been initialized")

// Changelog keeps records in memory, it mirrors the semantics of the mongo changelog
type Changelog struct {
	mu          sync.RWMutex
	initialized bool
	records     map[string]migration.Record
}

var _ database.Changelog = (*Changelog)(nil)

func NewChangelog(records ...migration.Record) *Changelog {
	c := &Changelog{records: make(map[string]migration.Record)}
	for i := range records {
		c.initialized = true
		c.records[records[i].Name] = copyRecord(records[i])
	}

	return c
}

func (c *Changelog) EnsureSchema(_ context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return false, nil
	}

	c.initialized = true
	return true, nil
}

func (c *Changelog) Exists(_ context.Context) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized, nil
}

func (c *Changelog) Insert(_ context.Context, r migration.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validate(r); err != nil {
		return err
	}

	if _, ok := c.records[r.Name]; ok {
		return errors.Wrapf(database.ErrMigrationAlreadyExists, "[%s]", r.Name)
	}

	c.records[r.Name] = copyRecord(r)
	return nil
}

func (c *Changelog) FindOrderedByName(_ context.Context, ascending bool) (migration.Records, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized {
		return nil, ErrNotInitialized
	}

	result := c.all()
	if ascending {
		sort.Sort(result)
	} else {
		sort.Sort(sort.Reverse(result))
	}

	return result, nil
}

func (c *Changelog) FindOneByStatus(
	_ context.Context,
	s migration.Status,
	key database.SortKey,
	order database.SortOrder,
) (*migration.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized {
		return nil, ErrNotInitialized
	}

	var matched migration.Records
	for _, r := range c.all() {
		if r.Status == s {
			matched = append(matched, r)
		}
	}

	if len(matched) == 0 {
		return nil, nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if order == database.Descending {
			return lessBy(key, matched[j], matched[i])
		}
		return lessBy(key, matched[i], matched[j])
	})

	return &matched[0], nil
}

func (c *Changelog) UpdateStatus(
	_ context.Context,
	name string,
	s migration.Status,
	appliedAt *time.Time,
	description *string,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.records[name]
	if !ok {
		return errors.Wrapf(database.ErrMigrationNotFound, "[%s]", name)
	}

	r.Status = s
	r.AppliedAt = appliedAt
	if description != nil {
		r.Description = description
	}

	if err := c.validate(r); err != nil {
		return err
	}

	c.records[name] = copyRecord(r)
	return nil
}

func (c *Changelog) Delete(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[name]; !ok {
		return errors.Wrapf(database.ErrMigrationNotFound, "[%s]", name)
	}

	delete(c.records, name)
	return nil
}

func (c *Changelog) Count(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized {
		return 0, ErrNotInitialized
	}

	return int64(len(c.records)), nil
}

// Get returns a copy of the named record
func (c *Changelog) Get(name string) (migration.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.records[name]
	if !ok {
		return migration.Record{}, false
	}

	return copyRecord(r), true
}

// validate plays the part of the collection validator
func (c *Changelog) validate(r migration.Record) error {
	if !c.initialized {
		return ErrNotInitialized
	}

	if r.Name == "" {
		return errors.New("document failed validation: name is required")
	}

	if !r.Status.IsValid() {
		return errors.Errorf("document failed validation: invalid status [%s]", r.Status)
	}

	return nil
}

func (c *Changelog) all() migration.Records {
	result := make(migration.Records, 0, len(c.records))
	for _, r := range c.records {
		result = append(result, copyRecord(r))
	}

	sort.Sort(result)
	return result
}

func lessBy(key database.SortKey, a, b migration.Record) bool {
	if key == database.SortByAppliedAt {
		// nulls sort first, like mongo does, equal dates fall back to name
		switch {
		case a.AppliedAt == nil:
			return b.AppliedAt != nil
		case b.AppliedAt == nil:
			return false
		case !a.AppliedAt.Equal(*b.AppliedAt):
			return a.AppliedAt.Before(*b.AppliedAt)
		}
	}

	return a.Name < b.Name
}

func copyRecord(r migration.Record) migration.Record {
	result := migration.Record{Name: r.Name, Status: r.Status}
	if r.AppliedAt != nil {
		t := *r.AppliedAt
		result.AppliedAt = &t
	}
	if r.Description != nil {
		d := *r.Description
		result.Description = &d
	}

	return result
}
