// Package importer turns directories of markdown card files into decks.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/gitsource"
	"github.com/conorfennell/flashdeck/internal/knol"
	"github.com/conorfennell/flashdeck/internal/parser"
	"github.com/conorfennell/flashdeck/internal/storage"
)

// ErrNoAnswer is reported for cards that have a question but no answer.
var ErrNoAnswer = errors.New("card has no answer")

// Store persists imported decks.
type Store interface {
	Get(ctx context.Context, id string) (*domain.Deck, error)
	Save(ctx context.Context, deck *domain.Deck) error
}

// Report summarizes one import run.
type Report struct {
	Decks   int
	Cards   int
	Added   int
	Removed int
	Errors  []error
}

type Importer struct {
	decks    Store
	reposDir string
	logger   *slog.Logger
	now      func() time.Time
}

// New returns an Importer that clones git sources under reposDir.
func New(decks Store, reposDir string, logger *slog.Logger) *Importer {
	return &Importer{
		decks:    decks,
		reposDir: reposDir,
		logger:   logger.With("component", "importer"),
		now:      time.Now,
	}
}

// Import dispatches to ImportGit or ImportDir depending on source.
func (im *Importer) Import(ctx context.Context, source string) (Report, error) {
	if gitsource.IsURL(source) {
		return im.ImportGit(ctx, source)
	}
	return im.ImportDir(ctx, source)
}

// ImportGit clones or pulls repoURL and imports its markdown files.
func (im *Importer) ImportGit(ctx context.Context, repoURL string) (Report, error) {
	localPath, err := gitsource.LocalPath(im.reposDir, repoURL)
	if err != nil {
		return Report{}, err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), os.ModePerm); err != nil {
		return Report{}, fmt.Errorf("failed to create repos directory: %w", err)
	}
	if err := gitsource.Sync(ctx, repoURL, localPath, im.logger); err != nil {
		return Report{}, err
	}
	return im.ImportDir(ctx, localPath)
}

// ImportDir imports every .md file below dir as one deck. Files that fail to
// parse or save are reported in Report.Errors and do not stop the run.
func (im *Importer) ImportDir(ctx context.Context, dir string) (Report, error) {
	var report Report
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		if err := im.importFile(ctx, dir, path, &report); err != nil {
			report.Errors = append(report.Errors, err)
			im.logger.Warn("skipping deck file", "path", path, "error", err)
		}
		return nil
	})
	if walkErr != nil {
		return report, fmt.Errorf("error walking directory %s: %w", dir, walkErr)
	}

	im.logger.Info("import complete",
		"path", dir,
		"decks", report.Decks,
		"cards", report.Cards,
		"added", report.Added,
		"removed", report.Removed,
		"errors", len(report.Errors),
	)
	return report, nil
}

func (im *Importer) importFile(ctx context.Context, root, path string, report *Report) error {
	doc, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, q := range doc.Incomplete {
		report.Errors = append(report.Errors, fmt.Errorf("%w in %s: %q", ErrNoAnswer, path, q))
	}
	if len(doc.Cards) == 0 {
		return nil
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}

	id := knol.DeckID(rel)
	existing, err := im.decks.Get(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("loading deck %s: %w", id, err)
	}

	now := im.now()
	deck := &domain.Deck{
		ID:        id,
		Name:      deckName(doc, path),
		Category:  category(root, rel),
		CreatedAt: now,
		UpdatedAt: now,
	}
	previous := map[string]domain.Card{}
	if existing != nil {
		deck.Description = existing.Description
		deck.CreatedAt = existing.CreatedAt
		for _, card := range existing.Cards {
			previous[card.ID] = card
		}
	}

	seen := map[string]bool{}
	for _, card := range doc.Cards {
		card.ID = knol.CardID(card)
		if seen[card.ID] {
			continue
		}
		seen[card.ID] = true
		if old, ok := previous[card.ID]; ok {
			card.LastStudied = old.LastStudied
			card.IsCorrect = old.IsCorrect
			card.TimesCorrect = old.TimesCorrect
			card.TimesIncorrect = old.TimesIncorrect
		} else {
			report.Added++
		}
		deck.Cards = append(deck.Cards, card)
	}
	for id := range previous {
		if !seen[id] {
			report.Removed++
		}
	}

	if err := im.decks.Save(ctx, deck); err != nil {
		return fmt.Errorf("saving deck %s: %w", deck.ID, err)
	}
	report.Decks++
	report.Cards += len(deck.Cards)
	return nil
}

func deckName(doc *parser.Document, path string) string {
	if doc.Title != "" {
		return doc.Title
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// category is the file's parent directory name, or the import root's name
// for files at the top level.
func category(root, rel string) string {
	parent := filepath.Dir(rel)
	if parent == "." {
		return filepath.Base(filepath.Clean(root))
	}
	return filepath.Base(parent)
}
