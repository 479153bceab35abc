/*
scenarios_test.go - Tests for the embedded demo scenarios

PURPOSE:
	Every fixture must load through the same validation as API input, and
	loading must leave the database in the expected state.
*/
package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_ListedByID(t *testing.T) {
	list, err := Scenarios()
	require.NoError(t, err)

	ids := make([]string, len(list))
	for i, sc := range list {
		ids[i] = sc.ID
		assert.NotEmpty(t, sc.Name, sc.ID)
	}
	assert.Equal(t, []string{"demo", "fresh-start"}, ids)
}

func TestScenarios_AllLoadWithoutError(t *testing.T) {
	list, err := Scenarios()
	require.NoError(t, err)

	for _, sc := range list {
		t.Run(sc.ID, func(t *testing.T) {
			s := setupTestServer(t, "")
			require.NoError(t, s.h.ApplyScenario(t.Context(), sc.ID))
		})
	}
}

func TestScenario_Demo(t *testing.T) {
	// GIVEN: The demo scenario loaded through the API
	s := setupTestServer(t, "")
	rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "demo"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: It is the current scenario
	rec = s.do(t, http.MethodGet, "/api/scenarios/current", nil, "")
	assert.Equal(t, "demo", decode[ScenarioDTO](t, rec).ID)

	// THEN: Totals follow the score events
	emp := decode[EmployeeDTO](t, s.do(t, http.MethodGet, "/api/employees/EMP001", nil, ""))
	assert.Equal(t, int64(18), emp.TotalScore)
	emp = decode[EmployeeDTO](t, s.do(t, http.MethodGet, "/api/employees/EMP006", nil, ""))
	assert.Equal(t, int64(0), emp.TotalScore)

	// THEN: Resigned and 2025 hires have no 2024 award
	for _, id := range []string{"EMP007", "EMP008"} {
		list := decode[[]AwardDTO](t, s.do(t, http.MethodGet, "/api/employees/"+id+"/awards", nil, ""))
		assert.Empty(t, list, id)
	}

	counts, err := s.h.Store.TableCounts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"employees":           8,
		"score_records":       13,
		"recruitment_records": 4,
		"annual_awards":       6,
	}, counts)
}

func TestScenario_Unknown(t *testing.T) {
	s := setupTestServer(t, "")

	rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetDatabase_RequiresAdmin(t *testing.T) {
	s := setupTestServer(t, "")
	require.NoError(t, s.h.ApplyScenario(t.Context(), "fresh-start"))

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/scenarios/reset", nil, "").Code)

	rec := s.do(t, http.MethodPost, "/api/scenarios/reset", nil, s.token(t))
	require.Equal(t, http.StatusOK, rec.Code)

	counts, err := s.h.Store.TableCounts(t.Context())
	require.NoError(t, err)
	assert.Zero(t, counts["employees"])
	rec = s.do(t, http.MethodGet, "/api/scenarios/current", nil, "")
	assert.Equal(t, "null\n", rec.Body.String())
}
