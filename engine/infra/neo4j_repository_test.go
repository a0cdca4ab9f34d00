package infra_test

import (
	"context"
	"testing"

	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/infra"
	"github.com/compozy/testproject/engine/query"
	"github.com/compozy/testproject/pkg/testhelpers"
	"github.com/stretchr/testify/suite"
)

// Neo4jRepositoryTestSuite runs against the database named by NEO4J_TEST_URI
type Neo4jRepositoryTestSuite struct {
	suite.Suite
	repo *infra.Neo4jRepository
	ctx  context.Context
	idx  cmakedoc.Index
}

func (s *Neo4jRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = testhelpers.SetupNeo4jTest(s.T())

	callables, err := cmakedoc.ParseFile("../cmakedoc/testdata/utils.cmake")
	s.Require().NoError(err)
	s.idx = cmakedoc.Index{Source: "utils.cmake", Callables: callables}
}

func TestNeo4jRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(Neo4jRepositoryTestSuite))
}

func (s *Neo4jRepositoryTestSuite) TestStoreIndex() {
	s.Run("Should store callables keywords and calls", func() {
		s.Require().NoError(s.repo.StoreIndex(s.ctx, s.idx))

		summary, err := s.repo.Summary(s.ctx, "utils.cmake")
		s.Require().NoError(err)
		s.Equal(4, summary.Callables)
		s.Equal(9, summary.Keywords)
		s.Equal(3, summary.Calls)
	})

	s.Run("Should replace a previous index of the same file", func() {
		s.Require().NoError(s.repo.StoreIndex(s.ctx, s.idx))
		s.Require().NoError(s.repo.StoreIndex(s.ctx, cmakedoc.Index{
			Source:    "utils.cmake",
			Callables: s.idx.Callables[:1],
		}))

		summary, err := s.repo.Summary(s.ctx, "utils.cmake")
		s.Require().NoError(err)
		s.Equal(1, summary.Callables)
		s.Equal(6, summary.Keywords)
		s.Equal(0, summary.Calls)
	})
}

func (s *Neo4jRepositoryTestSuite) TestClearFile() {
	s.Run("Should remove everything stored for a file", func() {
		s.Require().NoError(s.repo.StoreIndex(s.ctx, s.idx))
		s.Require().NoError(s.repo.ClearFile(s.ctx, "utils.cmake"))

		summary, err := s.repo.Summary(s.ctx, "utils.cmake")
		s.Require().NoError(err)
		s.Equal(0, summary.Callables)
		s.Equal(0, summary.Keywords)
	})

	s.Run("Should ignore files that were never stored", func() {
		s.NoError(s.repo.ClearFile(s.ctx, "missing.cmake"))
	})
}

func (s *Neo4jRepositoryTestSuite) runTemplate(name string, params map[string]any) []map[string]any {
	template, err := query.GetTemplate(name)
	s.Require().NoError(err)
	cypher, bound, err := template.BuildQuery(params)
	s.Require().NoError(err)
	rows, err := s.repo.Query(s.ctx, cypher, bound)
	s.Require().NoError(err)
	return rows
}

func (s *Neo4jRepositoryTestSuite) TestQueryTemplates() {
	s.Require().NoError(s.repo.StoreIndex(s.ctx, s.idx))
	file := map[string]any{"path": "utils.cmake"}

	s.Run("Should list stored files", func() {
		rows := s.runTemplate("stored_files", nil)
		s.Require().Len(rows, 1)
		s.Equal("utils.cmake", rows[0]["path"])
		s.Equal(int64(4), rows[0]["callables"])
	})

	s.Run("Should list callables in definition order", func() {
		rows := s.runTemplate("file_callables", file)
		s.Require().Len(rows, 4)
		s.Equal("tp_add_library", rows[0]["name"])
		s.Equal(int64(8), rows[0]["line"])
		s.Equal("tp_python_module", rows[3]["name"])
	})

	s.Run("Should find callers of a callable", func() {
		rows := s.runTemplate("callers", map[string]any{"path": "utils.cmake", "name": "_TP_CHECK_VAR_DEFINED"})
		s.Require().Len(rows, 2)
		s.Equal("tp_add_library", rows[0]["caller"])
		s.Equal("tp_python_module", rows[1]["caller"])
	})

	s.Run("Should list required keywords", func() {
		rows := s.runTemplate("required_keywords", file)
		s.Len(rows, 3)
	})

	s.Run("Should find undocumented public callables", func() {
		rows := s.runTemplate("undocumented_callables", file)
		s.Require().Len(rows, 1)
		s.Equal("tp_python_module", rows[0]["name"])
	})

	s.Run("Should find no uncalled private callables", func() {
		s.Empty(s.runTemplate("uncalled_private", file))
	})

	s.Run("Should find keyword usage across files", func() {
		rows := s.runTemplate("keyword_usage", map[string]any{"keyword": "name"})
		s.Require().Len(rows, 1)
		s.Equal("tp_python_module", rows[0]["callable"])
		s.Equal(infra.KeywordOneValue, rows[0]["kind"])
	})
}
