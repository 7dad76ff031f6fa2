package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/dberr"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos"
	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/observability"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

// tracer covers the two expensive paths, snapshot rebuilds and link
// resolution. Without a configured provider these spans are no-ops.
var tracer = otel.Tracer("linker")

type CreateTermInput struct {
	CanonicalTerm   string   `json:"canonical_term"`
	StandaloneTitle string   `json:"standalone_title"`
	Description     string   `json:"description"`
	Aliases         []string `json:"aliases"`
}

type UpdateTermInput struct {
	CanonicalTerm   *string `json:"canonical_term"`
	StandaloneTitle *string `json:"standalone_title"`
	Description     *string `json:"description"`
	IsActive        *bool   `json:"is_active"`
}

// DictionaryService owns the term dictionary and its versioned snapshot.
// Every mutation rebuilds the snapshot inside the same transaction, so there
// is no window where the dictionary has changed but the snapshot lags; the
// redis mirror is refreshed best-effort after commit.
type DictionaryService interface {
	CreateTerm(ctx context.Context, in CreateTermInput) (*types.CanonicalTerm, error)
	GetTerm(ctx context.Context, id uuid.UUID) (*types.CanonicalTerm, error)
	ListTerms(ctx context.Context, includeInactive bool) ([]*types.CanonicalTerm, error)
	UpdateTerm(ctx context.Context, id uuid.UUID, in UpdateTermInput) (*types.CanonicalTerm, error)
	DeleteTerm(ctx context.Context, id uuid.UUID) error

	AddAlias(ctx context.Context, termID uuid.UUID, alias string) (*types.TermAlias, error)
	DeleteAlias(ctx context.Context, aliasID uuid.UUID) error

	// CurrentSnapshot serves the render path: cheap version read, then the
	// edge cache, then the full authoritative row.
	CurrentSnapshot(ctx context.Context) (linking.SnapshotView, error)
	RebuildSnapshot(ctx context.Context) (linking.SnapshotView, error)
}

type dictionaryService struct {
	db      *gorm.DB
	log     *logger.Logger
	terms   repos.TermRepo
	aliases repos.AliasRepo
	snaps   repos.SnapshotRepo
	cache   SnapshotCache
}

func NewDictionaryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	terms repos.TermRepo,
	aliases repos.AliasRepo,
	snaps repos.SnapshotRepo,
	cache SnapshotCache,
) DictionaryService {
	return &dictionaryService{
		db:      db,
		log:     baseLog.With("service", "DictionaryService"),
		terms:   terms,
		aliases: aliases,
		snaps:   snaps,
		cache:   cache,
	}
}

func (s *dictionaryService) CreateTerm(ctx context.Context, in CreateTermInput) (*types.CanonicalTerm, error) {
	const op = "dictionary.create_term"

	term := strings.TrimSpace(in.CanonicalTerm)
	title := strings.TrimSpace(in.StandaloneTitle)
	if term == "" {
		return nil, linking.NewError(linking.CodeValidation, op, "canonical_term is required", nil)
	}
	if title == "" {
		return nil, linking.NewError(linking.CodeValidation, op, "standalone_title is required", nil)
	}

	row := &types.CanonicalTerm{
		CanonicalTerm:   term,
		StandaloneTitle: title,
		Description:     strings.TrimSpace(in.Description),
		IsActive:        true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.terms.Create(dbc, []*types.CanonicalTerm{row}); err != nil {
			return err
		}
		for _, alias := range in.Aliases {
			if _, err := s.addAliasRow(dbc, row.ID, alias); err != nil {
				return err
			}
		}
		return s.rebuildInTx(dbc, "mutation")
	})
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	s.refreshMirror(ctx)
	return s.GetTerm(ctx, row.ID)
}

func (s *dictionaryService) GetTerm(ctx context.Context, id uuid.UUID) (*types.CanonicalTerm, error) {
	const op = "dictionary.get_term"
	row, err := s.terms.GetByIDWithAliases(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	if row == nil {
		return nil, linking.NewError(linking.CodeNotFound, op, "term not found", nil)
	}
	return row, nil
}

func (s *dictionaryService) ListTerms(ctx context.Context, includeInactive bool) ([]*types.CanonicalTerm, error) {
	const op = "dictionary.list_terms"
	rows, err := s.terms.List(dbctx.Context{Ctx: ctx}, includeInactive)
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	return rows, nil
}

func (s *dictionaryService) UpdateTerm(ctx context.Context, id uuid.UUID, in UpdateTermInput) (*types.CanonicalTerm, error) {
	const op = "dictionary.update_term"

	updates := map[string]interface{}{}
	if in.CanonicalTerm != nil {
		term := strings.TrimSpace(*in.CanonicalTerm)
		if term == "" {
			return nil, linking.NewError(linking.CodeValidation, op, "canonical_term cannot be empty", nil)
		}
		updates["canonical_term"] = term
		updates["canonical_term_lower"] = strings.ToLower(term)
	}
	if in.StandaloneTitle != nil {
		title := strings.TrimSpace(*in.StandaloneTitle)
		if title == "" {
			return nil, linking.NewError(linking.CodeValidation, op, "standalone_title cannot be empty", nil)
		}
		updates["standalone_title"] = title
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) == 0 {
		return s.GetTerm(ctx, id)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.terms.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return linking.NewError(linking.CodeNotFound, op, "term not found", nil)
		}
		if err := s.terms.UpdateFields(dbc, id, updates); err != nil {
			return err
		}
		return s.rebuildInTx(dbc, "mutation")
	})
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	s.refreshMirror(ctx)
	return s.GetTerm(ctx, id)
}

func (s *dictionaryService) DeleteTerm(ctx context.Context, id uuid.UUID) error {
	const op = "dictionary.delete_term"
	if id == uuid.Nil {
		return linking.NewError(linking.CodeValidation, op, "term id is required", nil)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.terms.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return linking.NewError(linking.CodeNotFound, op, "term not found", nil)
		}
		if err := s.aliases.DeleteByTermIDs(dbc, []uuid.UUID{id}); err != nil {
			return err
		}
		if err := s.terms.DeleteByIDs(dbc, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.rebuildInTx(dbc, "mutation")
	})
	if err != nil {
		return dberr.MapError(op, err)
	}
	s.refreshMirror(ctx)
	return nil
}

func (s *dictionaryService) AddAlias(ctx context.Context, termID uuid.UUID, alias string) (*types.TermAlias, error) {
	const op = "dictionary.add_alias"

	var row *types.TermAlias
	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		term, err := s.terms.GetByID(dbc, termID)
		if err != nil {
			return err
		}
		if term == nil {
			return linking.NewError(linking.CodeNotFound, op, "term not found", nil)
		}
		row, err = s.addAliasRow(dbc, termID, alias)
		if err != nil {
			return err
		}
		return s.rebuildInTx(dbc, "mutation")
	})
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	s.refreshMirror(ctx)
	return row, nil
}

func (s *dictionaryService) DeleteAlias(ctx context.Context, aliasID uuid.UUID) error {
	const op = "dictionary.delete_alias"

	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.aliases.GetByID(dbc, aliasID)
		if err != nil {
			return err
		}
		if row == nil {
			return linking.NewError(linking.CodeNotFound, op, "alias not found", nil)
		}
		if err := s.aliases.DeleteByIDs(dbc, []uuid.UUID{aliasID}); err != nil {
			return err
		}
		return s.rebuildInTx(dbc, "mutation")
	})
	if err != nil {
		return dberr.MapError(op, err)
	}
	s.refreshMirror(ctx)
	return nil
}

// addAliasRow validates one alias inside the caller's transaction. An alias
// that collides with any canonical spelling is rejected so it can never
// shadow another term in the snapshot.
func (s *dictionaryService) addAliasRow(dbc dbctx.Context, termID uuid.UUID, alias string) (*types.TermAlias, error) {
	const op = "dictionary.add_alias"

	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, linking.NewError(linking.CodeValidation, op, "alias is required", nil)
	}
	if existing, err := s.terms.GetByTermLower(dbc, alias); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, linking.NewError(linking.CodeConflict, op, "alias collides with a canonical term", nil)
	}

	rows, err := s.aliases.Create(dbc, []*types.TermAlias{{TermID: termID, AliasTerm: alias}})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

func (s *dictionaryService) RebuildSnapshot(ctx context.Context) (linking.SnapshotView, error) {
	return s.rebuildSnapshot(ctx, "explicit")
}

func (s *dictionaryService) rebuildSnapshot(ctx context.Context, trigger string) (linking.SnapshotView, error) {
	const op = "dictionary.rebuild_snapshot"

	ctx, span := tracer.Start(ctx, "dictionary.rebuild_snapshot",
		trace.WithAttributes(attribute.String("rebuild.trigger", trigger)))
	defer span.End()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.rebuildInTx(dbctx.Context{Ctx: ctx, Tx: tx}, trigger)
	})
	if err != nil {
		err = dberr.MapError(op, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "rebuild failed")
		return linking.SnapshotView{}, err
	}
	s.refreshMirror(ctx)

	view, err := s.CurrentSnapshot(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int64("snapshot.version", view.Version))
	}
	return view, err
}

func (s *dictionaryService) rebuildInTx(dbc dbctx.Context, trigger string) error {
	start := time.Now()
	terms, err := s.terms.ListActiveWithAliases(dbc)
	if err != nil {
		return err
	}
	data := buildSnapshotData(terms)
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	version, err := s.snaps.UpsertData(dbc, datatypes.JSON(raw))
	if err != nil {
		return err
	}
	if metrics := observability.Current(); metrics != nil {
		metrics.ObserveSnapshotRebuild(trigger, version, time.Since(start))
	}
	s.log.Info("snapshot rebuilt", "version", version, "terms", len(data), "trigger", trigger)
	return nil
}

func (s *dictionaryService) CurrentSnapshot(ctx context.Context) (linking.SnapshotView, error) {
	const op = "dictionary.current_snapshot"

	dbc := dbctx.Context{Ctx: ctx}
	version, err := s.snaps.GetVersion(dbc)
	if err != nil {
		return linking.SnapshotView{}, linking.NewError(linking.CodeDictionaryUnavailable, op, "snapshot version read failed", err)
	}
	if version == 0 {
		return s.rebuildSnapshot(ctx, "heal")
	}

	if view, ok, err := s.cache.Get(ctx, version); ok {
		return view, nil
	} else if err != nil {
		if linking.IsCode(err, linking.CodeStaleSnapshot) {
			s.log.Debug("edge cache behind store", "error", err)
		} else {
			s.log.Warn("edge cache read failed", "error", err)
		}
	}

	row, err := s.snaps.Get(dbc)
	if err != nil || row == nil {
		return linking.SnapshotView{}, linking.NewError(linking.CodeDictionaryUnavailable, op, "snapshot load failed", err)
	}
	var data map[string]linking.TermEntry
	if err := json.Unmarshal(row.Data, &data); err != nil {
		s.log.Error("snapshot row unreadable, rebuilding", "version", row.Version, "error", err)
		return s.rebuildSnapshot(ctx, "heal")
	}

	view := linking.SnapshotView{Version: row.Version, Data: data}
	if err := s.cache.Put(ctx, view); err != nil {
		s.log.Warn("edge cache refresh failed", "error", err)
	}
	return view, nil
}

// refreshMirror pushes the freshly committed snapshot to redis. Failures are
// logged and dropped; readers fall back to the store and version gating keeps
// them off stale entries.
func (s *dictionaryService) refreshMirror(ctx context.Context) {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.snaps.Get(dbc)
	if err != nil || row == nil {
		s.log.Warn("mirror refresh skipped", "error", err)
		return
	}
	var data map[string]linking.TermEntry
	if err := json.Unmarshal(row.Data, &data); err != nil {
		s.log.Warn("mirror refresh skipped", "error", err)
		return
	}
	if err := s.cache.Put(ctx, linking.SnapshotView{Version: row.Version, Data: data}); err != nil {
		s.log.Warn("mirror refresh failed", "error", err)
	}
}

// buildSnapshotData flattens active terms and their aliases into the lookup
// the matcher is built from. Canonical spellings always map to their own
// entry; an alias never displaces an existing key, and the sorted term order
// makes collisions resolve the same way on every rebuild.
func buildSnapshotData(terms []*types.CanonicalTerm) map[string]linking.TermEntry {
	data := make(map[string]linking.TermEntry, len(terms))
	for _, t := range terms {
		data[t.CanonicalTermLower] = linking.TermEntry{
			CanonicalTerm:   t.CanonicalTerm,
			StandaloneTitle: t.StandaloneTitle,
		}
	}
	for _, t := range terms {
		entry := linking.TermEntry{
			CanonicalTerm:   t.CanonicalTerm,
			StandaloneTitle: t.StandaloneTitle,
		}
		for _, a := range t.Aliases {
			if _, exists := data[a.AliasTermLower]; exists {
				continue
			}
			data[a.AliasTermLower] = entry
		}
	}
	return data
}
