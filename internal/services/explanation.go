package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/dberr"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos"
	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/linker"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/observability"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type CreateExplanationInput struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata datatypes.JSON `json:"metadata"`
}

type UpdateExplanationInput struct {
	Title    *string        `json:"title"`
	Content  *string        `json:"content"`
	Metadata datatypes.JSON `json:"metadata"`
}

// RenderedExplanation is one article resolved for display: the stored row,
// the computed links, and the content with the overlay applied. Degraded is
// set when the dictionary was unreachable and the article went out unlinked.
type RenderedExplanation struct {
	Explanation     *types.Explanation     `json:"explanation"`
	Content         string                 `json:"content"`
	Links           []linking.ResolvedLink `json:"links"`
	SnapshotVersion int64                  `json:"snapshot_version"`
	Degraded        bool                   `json:"degraded"`
}

// ExplanationService owns article lifecycle and display-time resolution.
// Stored content is plain markdown; links exist only in render output.
type ExplanationService interface {
	Create(ctx context.Context, in CreateExplanationInput) (*types.Explanation, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Explanation, error)
	List(ctx context.Context, limit, offset int) ([]*types.Explanation, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateExplanationInput) (*types.Explanation, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Render(ctx context.Context, id uuid.UUID) (*RenderedExplanation, error)

	// RegenerateHeadingLinks recomputes the heading title set for one
	// article. The repair worker uses it for articles whose links were
	// invalidated by an edit.
	RegenerateHeadingLinks(ctx context.Context, id uuid.UUID) error
}

type explanationService struct {
	db           *gorm.DB
	log          *logger.Logger
	expls        repos.ExplanationRepo
	headingLinks repos.HeadingLinkRepo
	overrideRepo repos.OverrideRepo
	overrides    OverrideService
	dict         DictionaryService
	matchers     MatcherRegistry
	titles       TitleProvider
	linkRoute    string
}

func NewExplanationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	expls repos.ExplanationRepo,
	headingLinks repos.HeadingLinkRepo,
	overrideRepo repos.OverrideRepo,
	overrides OverrideService,
	dict DictionaryService,
	matchers MatcherRegistry,
	titles TitleProvider,
	linkRoute string,
) ExplanationService {
	if linkRoute == "" {
		linkRoute = linker.DefaultLinkRoute
	}
	return &explanationService{
		db:           db,
		log:          baseLog.With("service", "ExplanationService"),
		expls:        expls,
		headingLinks: headingLinks,
		overrideRepo: overrideRepo,
		overrides:    overrides,
		dict:         dict,
		matchers:     matchers,
		titles:       titles,
		linkRoute:    linkRoute,
	}
}

func (s *explanationService) Create(ctx context.Context, in CreateExplanationInput) (*types.Explanation, error) {
	const op = "explanations.create"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, linking.NewError(linking.CodeValidation, op, "title is required", nil)
	}
	if !utf8.ValidString(in.Content) {
		return nil, linking.NewError(linking.CodeMalformedContent, op, "content is not valid utf-8", nil)
	}

	row := &types.Explanation{
		Title:    title,
		Content:  in.Content,
		Metadata: in.Metadata,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.expls.Create(dbc, []*types.Explanation{row}); err != nil {
			return err
		}
		return s.writeHeadingLinks(dbc, row, "create")
	})
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	return row, nil
}

func (s *explanationService) Get(ctx context.Context, id uuid.UUID) (*types.Explanation, error) {
	const op = "explanations.get"
	row, err := s.expls.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	if row == nil {
		return nil, linking.NewError(linking.CodeNotFound, op, "explanation not found", nil)
	}
	return row, nil
}

func (s *explanationService) List(ctx context.Context, limit, offset int) ([]*types.Explanation, error) {
	const op = "explanations.list"
	rows, err := s.expls.List(dbctx.Context{Ctx: ctx}, limit, offset)
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	return rows, nil
}

func (s *explanationService) Update(ctx context.Context, id uuid.UUID, in UpdateExplanationInput) (*types.Explanation, error) {
	const op = "explanations.update"

	if in.Content != nil && !utf8.ValidString(*in.Content) {
		return nil, linking.NewError(linking.CodeMalformedContent, op, "content is not valid utf-8", nil)
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, linking.NewError(linking.CodeValidation, op, "title cannot be empty", nil)
	}

	var updated *types.Explanation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.expls.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return linking.NewError(linking.CodeNotFound, op, "explanation not found", nil)
		}

		// A body-only edit keeps the computed titles; any change to the
		// heading structure throws away the whole set and re-arms the
		// repair worker via the cleared built-at marker.
		headingsChanged := in.Content != nil && linker.HeadingsChanged(row.Content, *in.Content)

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Content != nil {
			updates["content"] = *in.Content
		}
		if in.Metadata != nil {
			updates["metadata"] = in.Metadata
		}
		if headingsChanged {
			updates["heading_links_built_at"] = nil
		}
		if len(updates) > 0 {
			if err := s.expls.UpdateFields(dbc, id, updates); err != nil {
				return err
			}
		}

		if headingsChanged {
			if err := s.headingLinks.DeleteByExplanationIDs(dbc, []uuid.UUID{id}); err != nil {
				return err
			}
			s.log.Info("heading links invalidated", "explanation_id", id)
		}

		updated, err = s.expls.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	return updated, nil
}

func (s *explanationService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "explanations.delete"

	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.expls.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return linking.NewError(linking.CodeNotFound, op, "explanation not found", nil)
		}
		if err := s.headingLinks.DeleteByExplanationIDs(dbc, []uuid.UUID{id}); err != nil {
			return err
		}
		if err := s.overrideRepo.DeleteByExplanationIDs(dbc, []uuid.UUID{id}); err != nil {
			return err
		}
		return s.expls.DeleteByIDs(dbc, []uuid.UUID{id})
	})
	if err != nil {
		return dberr.MapError(op, err)
	}
	return nil
}

func (s *explanationService) Render(ctx context.Context, id uuid.UUID) (*RenderedExplanation, error) {
	ctx, span := tracer.Start(ctx, "explanation.resolve_links",
		trace.WithAttributes(attribute.String("explanation.id", id.String())))
	defer span.End()

	start := time.Now()
	rendered, err := s.render(ctx, id)
	if err != nil {
		observability.Current().ObserveResolve("error", time.Since(start), 0, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		return nil, err
	}

	termLinks, headingLinks := 0, 0
	for _, l := range rendered.Links {
		if l.Source == linking.SourceHeading {
			headingLinks++
		} else {
			termLinks++
		}
	}
	outcome := "linked"
	if rendered.Degraded {
		outcome = "degraded"
	}
	observability.Current().ObserveResolve(outcome, time.Since(start), termLinks, headingLinks)
	span.SetAttributes(
		attribute.Int64("snapshot.version", rendered.SnapshotVersion),
		attribute.Int("links.term", termLinks),
		attribute.Int("links.heading", headingLinks),
		attribute.Bool("resolve.degraded", rendered.Degraded),
	)
	return rendered, nil
}

func (s *explanationService) render(ctx context.Context, id uuid.UUID) (*RenderedExplanation, error) {
	const op = "explanations.render"

	expl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// A dictionary outage degrades the render to heading-only links; it
	// never fails the page.
	var (
		snap     linking.SnapshotView
		matcher  *linker.Matcher
		degraded bool
	)
	snap, err = s.dict.CurrentSnapshot(ctx)
	switch {
	case err == nil:
		matcher = s.matchers.MatcherFor(snap)
	case linking.IsCode(err, linking.CodeDictionaryUnavailable):
		s.log.Warn("dictionary unavailable, degrading to heading-only links", "explanation_id", id, "error", err)
		snap, degraded = linking.SnapshotView{}, true
	default:
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.headingLinks.ListByExplanationID(dbc, id)
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	headings := make([]linker.HeadingTitle, 0, len(rows))
	for _, row := range rows {
		headings = append(headings, linker.HeadingTitle{
			Text:            row.HeadingText,
			StandaloneTitle: row.StandaloneTitle,
		})
	}

	var overrides map[string]linking.OverrideEntry
	if !degraded {
		overrides, err = s.overrides.OverrideMap(dbc, id)
		if err != nil {
			return nil, err
		}
	}

	links := linker.ResolveLinks(linker.ResolveInput{
		Content:      expl.Content,
		Snapshot:     snap,
		Matcher:      matcher,
		HeadingLinks: headings,
		Overrides:    overrides,
	})

	return &RenderedExplanation{
		Explanation:     expl,
		Content:         linker.ApplyLinks(expl.Content, links, s.linkRoute),
		Links:           links,
		SnapshotVersion: snap.Version,
		Degraded:        degraded,
	}, nil
}

func (s *explanationService) RegenerateHeadingLinks(ctx context.Context, id uuid.UUID) error {
	const op = "explanations.regenerate_heading_links"

	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.expls.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return linking.NewError(linking.CodeNotFound, op, "explanation not found", nil)
		}
		return s.writeHeadingLinks(dbc, row, "repair")
	})
	if err != nil {
		return dberr.MapError(op, err)
	}
	return nil
}

// writeHeadingLinks computes titles for every heading of the article,
// replaces the stored set in one shot, and stamps the article as built so
// the repair worker skips it.
func (s *explanationService) writeHeadingLinks(dbc dbctx.Context, row *types.Explanation, trigger string) error {
	headings := linker.ExtractHeadings(row.Content)
	rows := make([]*types.HeadingLink, 0, len(headings))
	seen := map[string]bool{}
	for _, h := range headings {
		// One row per distinct heading text; a repeated heading keeps the
		// first occurrence's title and the duplicate renders unlinked.
		key := strings.ToLower(h.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		title, err := s.titles.TitleFor(dbc.Ctx, row.Title, h.Text)
		if err != nil {
			return err
		}
		rows = append(rows, &types.HeadingLink{
			HeadingText:     h.Text,
			StandaloneTitle: title,
		})
	}
	if err := s.headingLinks.ReplaceForExplanation(dbc, row.ID, rows); err != nil {
		return err
	}
	now := time.Now().UTC()
	err := s.expls.UpdateFields(dbc, row.ID, map[string]interface{}{
		"heading_links_built_at": now,
	})
	if err != nil {
		return err
	}
	row.HeadingLinksBuiltAt = &now
	observability.Current().IncHeadingRebuild(trigger)
	return nil
}
