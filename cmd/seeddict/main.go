package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/app"
	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
)

// seeddict bulk-loads a term dictionary from YAML. It writes through the
// repos and rebuilds the snapshot once at the end, instead of paying one
// rebuild per term like the API does.

type seedTerm struct {
	Term            string   `yaml:"term"`
	StandaloneTitle string   `yaml:"standalone_title"`
	Description     string   `yaml:"description"`
	Aliases         []string `yaml:"aliases"`
	Inactive        bool     `yaml:"inactive"`
}

type seedFile struct {
	Terms []seedTerm `yaml:"terms"`
}

func main() {
	var file string
	var dryRun bool
	flag.StringVar(&file, "file", "dictionary.yaml", "path to the dictionary YAML")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and report without writing")
	flag.Parse()

	raw, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("read %s: %v\n", file, err)
		os.Exit(1)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		fmt.Printf("parse %s: %v\n", file, err)
		os.Exit(1)
	}
	if len(seed.Terms) == 0 {
		fmt.Println("no terms in file")
		return
	}
	if dryRun {
		for _, t := range seed.Terms {
			fmt.Printf("would seed %q (%d aliases)\n", t.Term, len(t.Aliases))
		}
		return
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	created, skipped := 0, 0
	for _, t := range seed.Terms {
		term := strings.TrimSpace(t.Term)
		title := strings.TrimSpace(t.StandaloneTitle)
		if term == "" {
			skipped++
			continue
		}
		if title == "" {
			title = term
		}

		existing, err := application.Repos.Term.GetByTermLower(dbc, term)
		if err != nil {
			fmt.Printf("lookup %q: %v\n", term, err)
			os.Exit(1)
		}
		if existing != nil {
			skipped++
			continue
		}

		row := &types.CanonicalTerm{
			CanonicalTerm:   term,
			StandaloneTitle: title,
			Description:     strings.TrimSpace(t.Description),
			IsActive:        !t.Inactive,
		}
		if _, err := application.Repos.Term.Create(dbc, []*types.CanonicalTerm{row}); err != nil {
			fmt.Printf("create %q: %v\n", term, err)
			os.Exit(1)
		}

		for _, alias := range t.Aliases {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			if taken, err := application.Repos.Alias.GetByAliasLower(dbc, alias); err != nil {
				fmt.Printf("lookup alias %q: %v\n", alias, err)
				os.Exit(1)
			} else if taken != nil {
				fmt.Printf("alias %q already taken, skipping\n", alias)
				continue
			}
			if canonical, err := application.Repos.Term.GetByTermLower(dbc, alias); err != nil {
				fmt.Printf("lookup alias %q: %v\n", alias, err)
				os.Exit(1)
			} else if canonical != nil {
				fmt.Printf("alias %q collides with a canonical term, skipping\n", alias)
				continue
			}
			aliasRow := &types.TermAlias{TermID: row.ID, AliasTerm: alias}
			if _, err := application.Repos.Alias.Create(dbc, []*types.TermAlias{aliasRow}); err != nil {
				fmt.Printf("create alias %q: %v\n", alias, err)
				os.Exit(1)
			}
		}
		created++
	}

	snap, err := application.Services.Dictionary.RebuildSnapshot(ctx)
	if err != nil {
		fmt.Printf("rebuild snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d terms (%d skipped), snapshot version %d\n", created, skipped, snap.Version)
}
