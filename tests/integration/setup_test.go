// Package integration exercises the link lifecycle and the tree engine
// end to end against a SQLite database file.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship-core/internal/application/handlers"
	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/services"
	"github.com/ersonp/kinship-core/internal/infrastructure/config"
	"github.com/ersonp/kinship-core/internal/infrastructure/logging"
	"github.com/ersonp/kinship-core/internal/infrastructure/relationaldb/sqlite"
)

var (
	parent = entities.Actor{NumeroH: "P1"}
	mother = entities.Actor{NumeroH: "M1"}
	child  = entities.Actor{NumeroH: "A1"}
	admin  = entities.Actor{NumeroH: "ADM", Admin: true}
)

// stack is the application wired over one database file.
type stack struct {
	repo    *sqlite.Repository
	links   *handlers.LinkHandler
	people  *handlers.PersonHandler
	trees   *handlers.TreeHandler
	imports *handlers.ImportHandler
}

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// newStack opens a fresh database file under a temp dir.
func newStack(t *testing.T) *stack {
	t.Helper()
	return openStack(t, filepath.Join(t.TempDir(), "kin.db"))
}

func openStack(t *testing.T, path string) *stack {
	t.Helper()

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.EnsureSchema(context.Background()))

	logger := logging.Discard()

	return &stack{
		repo:    repo,
		links:   handlers.NewLinkHandler(services.NewLinkService(repo, repo, logger)),
		people:  handlers.NewPersonHandler(repo),
		trees:   handlers.NewTreeHandler(services.NewProfileService(repo, repo)),
		imports: handlers.NewImportHandler(services.NewRosterService(repo)),
	}
}

func (s *stack) addPerson(t *testing.T, req handlers.AddPersonRequest) {
	t.Helper()
	_, err := s.people.HandleAdd(context.Background(), req)
	require.NoError(t, err)
}

func (s *stack) tree(t *testing.T, numeroH string, hidden bool) *handlers.TreeResult {
	t.Helper()
	result, err := s.trees.HandleBuild(context.Background(), handlers.TreeRequest{
		NumeroH:       numeroH,
		IncludeHidden: hidden,
	})
	require.NoError(t, err)
	return result
}

func findNode(nodes []entities.TreeNode, relation entities.Relation) *entities.TreeNode {
	for i := range nodes {
		if nodes[i].Relation == relation {
			return &nodes[i]
		}
	}
	return nil
}

func countVisible(nodes []entities.TreeNode) int {
	n := 0
	for i := range nodes {
		if nodes[i].IsVisible {
			n++
		}
	}
	return n
}
