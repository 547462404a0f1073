package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eduadmin-backend/shared/database/models"
	"eduadmin-backend/shared/database/models/notification"
	"eduadmin-backend/shared/orgtree"
)

const maxNameLength = 200

// SnapshotCache caches read snapshots between writes.
type SnapshotCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64) ([]orgtree.Record, bool)
	Set(ctx context.Context, gen int64, records []orgtree.Record) error
	Invalidate(ctx context.Context) error
}

// ChangePublisher is told about every committed directory change.
type ChangePublisher interface {
	Publish(msg *notification.WebSocketMessage)
}

// ObjectStore receives directory exports.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	Bucket() string
}

// Options configures a DirectoryService. Every collaborator is optional.
type Options struct {
	RootPolicy orgtree.RootPolicy
	Cache      SnapshotCache
	Publisher  ChangePublisher
	Exports    ObjectStore
	Logger     *zap.Logger
	Now        func() time.Time
}

// DirectoryService orchestrates the organization hierarchy. Writes run their guards
// against the persisted record set inside the repository's write transaction; reads
// derive every projection from a single snapshot.
type DirectoryService struct {
	repo      Repository
	policy    orgtree.RootPolicy
	cache     SnapshotCache
	publisher ChangePublisher
	exports   ObjectStore
	log       *zap.Logger
	now       func() time.Time

	// cacheStale is set when a commit could not advance the cache generation.
	// Reads bypass the cache until a later invalidation succeeds.
	cacheStale atomic.Bool
}

func NewDirectoryService(repo Repository, opts Options) *DirectoryService {
	s := &DirectoryService{
		repo:      repo,
		policy:    opts.RootPolicy,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		exports:   opts.Exports,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if s.policy == "" {
		s.policy = orgtree.RootPolicyWarn
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

type CreateInput struct {
	Name     string
	ParentID *uuid.UUID
	Operator string
}

// CreateResult carries the created node and any soft policy warnings.
type CreateResult struct {
	Node     *orgtree.Node
	Warnings []string
}

// UpdateInput changes only what is set. ParentID moves the node under another parent;
// ClearParent makes it a root. Setting both is a validation error.
type UpdateInput struct {
	Name        *string
	ParentID    *uuid.UUID
	ClearParent bool
	Operator    string
}

type UpdateResult struct {
	Node     *orgtree.Node
	Warnings []string
}

type ListParams struct {
	Skip   int
	Limit  int
	Search string
}

// ListResult pairs one page of the filtered flat list with the full forest.
// Both come from the same snapshot.
type ListResult struct {
	Items []orgtree.Entry
	Total int
	Tree  orgtree.Forest
}

type ExportResult struct {
	Bucket string
	Key    string
	Rows   int
}

const secondRootWarning = "another top-level organization already exists"

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", invalid("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
	return name, nil
}

func findRecord(records []orgtree.Record, id uuid.UUID) (orgtree.Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return orgtree.Record{}, false
}

func nodeIn(records []orgtree.Record, id uuid.UUID) *orgtree.Node {
	return orgtree.Build(records).Index()[id]
}

// Create adds an organization under parent (or as a root) and returns it with its level.
func (s *DirectoryService) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	var result CreateResult
	err = s.repo.Write(ctx, func(tx WriteTx) error {
		records, err := tx.Snapshot(ctx)
		if err != nil {
			return err
		}

		if in.ParentID != nil {
			if _, ok := findRecord(records, *in.ParentID); !ok {
				return &orgtree.Rejection{Reason: orgtree.ReasonParentNotFound}
			}
		} else {
			warn, err := orgtree.CheckRoot(s.policy, uuid.Nil, records)
			if err != nil {
				return err
			}
			if warn {
				result.Warnings = append(result.Warnings, secondRootWarning)
			}
		}

		now := s.now()
		org := models.Organization{
			ID:        uuid.New(),
			Name:      name,
			ParentID:  in.ParentID,
			Creator:   in.Operator,
			Updater:   in.Operator,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(ctx, &org); err != nil {
			return err
		}

		result.Node = nodeIn(append(records, toRecord(org, orgtree.Counts{})), org.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, notification.ActionCreated, result.Node.ID)
	s.log.Info("✅ Organization created",
		zap.String("id", result.Node.ID.String()),
		zap.Int("level", result.Node.Level))
	return &result, nil
}

// Update renames and/or reparents an organization. A rejected reparent leaves the
// record untouched, including the name.
func (s *DirectoryService) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*UpdateResult, error) {
	if in.ClearParent && in.ParentID != nil {
		return nil, invalid("parent_id", "cannot set a parent and clear it in the same request")
	}
	var name string
	if in.Name != nil {
		n, err := normalizeName(*in.Name)
		if err != nil {
			return nil, err
		}
		name = n
	}

	var result UpdateResult
	err := s.repo.Write(ctx, func(tx WriteTx) error {
		records, err := tx.Snapshot(ctx)
		if err != nil {
			return err
		}
		current, ok := findRecord(records, id)
		if !ok {
			return ErrNotFound
		}

		next := current
		if in.Name != nil {
			next.Name = name
		}
		switch {
		case in.ParentID != nil:
			if err := orgtree.ValidateReparent(id, in.ParentID, records); err != nil {
				return err
			}
			next.ParentID = in.ParentID
		case in.ClearParent && current.ParentID != nil:
			warn, err := orgtree.CheckRoot(s.policy, id, records)
			if err != nil {
				return err
			}
			if warn {
				result.Warnings = append(result.Warnings, secondRootWarning)
			}
			next.ParentID = nil
		}
		next.Updater = in.Operator
		next.UpdatedAt = s.now()

		org := toModel(next)
		if err := tx.Update(ctx, &org); err != nil {
			return err
		}

		updated := make([]orgtree.Record, 0, len(records))
		for _, r := range records {
			if r.ID == id {
				r = next
			}
			updated = append(updated, r)
		}
		result.Node = nodeIn(updated, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, notification.ActionUpdated, id)
	s.log.Info("✅ Organization updated", zap.String("id", id.String()))
	return &result, nil
}

// Delete removes exactly one organization when nothing depends on it.
func (s *DirectoryService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Write(ctx, func(tx WriteTx) error {
		records, err := tx.Snapshot(ctx)
		if err != nil {
			return err
		}
		current, ok := findRecord(records, id)
		if !ok {
			return ErrNotFound
		}
		if err := orgtree.CheckDeletion(id, records, current.Direct); err != nil {
			return err
		}

		removed, err := tx.Delete(ctx, id)
		if err != nil {
			return err
		}
		if removed != 1 {
			return fmt.Errorf("delete organization %s: expected 1 row, removed %d", id, removed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.committed(ctx, notification.ActionDeleted, id)
	s.log.Info("🗑️ Organization deleted", zap.String("id", id.String()))
	return nil
}

// Get returns one organization with its level, children and rollup counts.
func (s *DirectoryService) Get(ctx context.Context, id uuid.UUID) (*orgtree.Node, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	node := nodeIn(records, id)
	if node == nil {
		return nil, ErrNotFound
	}
	return node, nil
}

// List filters the flattened directory by name and pages it. The full unfiltered
// forest is returned alongside for diagram rendering.
func (s *DirectoryService) List(ctx context.Context, p ListParams) (*ListResult, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	forest := orgtree.Build(records)
	matched := orgtree.FilterByName(orgtree.Flatten(forest), p.Search)

	return &ListResult{
		Items: orgtree.Page(matched, p.Skip, p.Limit),
		Total: len(matched),
		Tree:  forest,
	}, nil
}

// Options returns the flattened directory for parent pickers. With exclude set, that
// node and its subtree are left out.
func (s *DirectoryService) Options(ctx context.Context, exclude *uuid.UUID) ([]orgtree.Entry, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	entries := orgtree.Flatten(orgtree.Build(records))
	if exclude != nil {
		entries = orgtree.ExcludeSubtree(entries, *exclude)
	}
	return entries, nil
}

// ExportRow is one line of a directory export.
type ExportRow struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	ParentID *uuid.UUID     `json:"parent_id"`
	Level    int            `json:"level"`
	Path     string         `json:"path"`
	Direct   orgtree.Counts `json:"direct"`
	Totals   orgtree.Counts `json:"totals"`
}

// Export writes the flattened directory as a JSON array to object storage.
func (s *DirectoryService) Export(ctx context.Context) (*ExportResult, error) {
	if s.exports == nil {
		return nil, ErrExportDisabled
	}
	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entries := orgtree.Flatten(orgtree.Build(records))
	rows := make([]ExportRow, 0, len(entries))
	var trail []string
	for _, e := range entries {
		trail = append(trail[:e.Level], e.Node.Name)
		rows = append(rows, ExportRow{
			ID:       e.Node.ID,
			Name:     e.Node.Name,
			ParentID: e.Node.ParentID,
			Level:    e.Level,
			Path:     strings.Join(trail, " / "),
			Direct:   e.Node.Direct,
			Totals:   e.Node.Totals,
		})
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	key := fmt.Sprintf("organizations/export-%s.json", s.now().Format("20060102T150405Z"))
	if err := s.exports.PutObject(ctx, key, data, "application/json"); err != nil {
		return nil, err
	}

	s.log.Info("📦 Directory exported", zap.String("key", key), zap.Int("rows", len(rows)))
	return &ExportResult{Bucket: s.exports.Bucket(), Key: key, Rows: len(rows)}, nil
}

func (s *DirectoryService) snapshot(ctx context.Context) ([]orgtree.Record, error) {
	if s.cache != nil && s.cacheUsable(ctx) {
		gen, err := s.cache.Generation(ctx)
		if err == nil {
			if records, ok := s.cache.Get(ctx, gen); ok {
				return records, nil
			}
			records, err := s.repo.Snapshot(ctx)
			if err != nil {
				return nil, fmt.Errorf("load directory snapshot: %w", err)
			}
			if err := s.cache.Set(ctx, gen, records); err != nil {
				s.log.Warn("⚠️ Snapshot cache fill failed", zap.Error(err))
			}
			return records, nil
		}
		s.log.Warn("⚠️ Snapshot cache unavailable, reading database", zap.Error(err))
	}

	records, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load directory snapshot: %w", err)
	}
	return records, nil
}

// cacheUsable reports whether cached snapshots may be served, retrying a failed
// invalidation first.
func (s *DirectoryService) cacheUsable(ctx context.Context) bool {
	if !s.cacheStale.Load() {
		return true
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return false
	}
	s.cacheStale.Store(false)
	s.log.Info("✅ Snapshot cache invalidation recovered")
	return true
}

func (s *DirectoryService) committed(ctx context.Context, action string, id uuid.UUID) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.cacheStale.Store(true)
			s.log.Error("❌ Snapshot cache invalidation failed, bypassing cache", zap.Error(err))
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(notification.NewDirectoryChange(action, id))
	}
}
