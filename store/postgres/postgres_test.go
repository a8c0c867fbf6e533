package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redrussianarmy/self-rag/graph"
)

var rowColumns = []string{"id", "run_id", "step", "node_name", "label", "next_node", "state", "created_at"}

type runState struct {
	Question string `json:"question"`
	Attempts int    `json:"attempts"`
}

func TestPostgresCheckpointStore_InitSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresCheckpointStoreWithPool(mock, "")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS checkpoints")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")

	cp := graph.NewCheckpoint("run-1", graph.Route{Step: 3, From: "generate", Label: "useful", To: graph.END},
		runState{Question: "q", Attempts: 1})
	stateJSON, _ := json.Marshal(cp.State)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO checkpoints")).
		WithArgs(cp.ID, "run-1", 3, "generate", "useful", graph.END, stateJSON, cp.Timestamp).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Save(context.Background(), cp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_SaveError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO checkpoints")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("db error"))

	err = store.Save(context.Background(), graph.NewCheckpoint("run", graph.Route{Step: 1}, runState{}))
	assert.ErrorContains(t, err, "failed to save checkpoint")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Load(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")
	now := time.Now()
	stateJSON, _ := json.Marshal(runState{Question: "q", Attempts: 2})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + columns + " FROM checkpoints WHERE id = $1")).
		WithArgs("cp-1").
		WillReturnRows(pgxmock.NewRows(rowColumns).
			AddRow("cp-1", "run-1", 2, "grade_documents", "generate", "generate", stateJSON, now))

	loaded, err := store.Load(context.Background(), "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, 2, loaded.Step)
	assert.Equal(t, "generate", loaded.Next)

	state, err := graph.DecodeState[runState](loaded)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_LoadNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")
	mock.ExpectQuery(regexp.QuoteMeta("FROM checkpoints WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, graph.ErrCheckpointNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")
	now := time.Now()
	s1, _ := json.Marshal(runState{Question: "q"})
	s2, _ := json.Marshal(runState{Question: "q", Attempts: 1})

	mock.ExpectQuery(regexp.QuoteMeta("FROM checkpoints WHERE run_id = $1 ORDER BY step ASC")).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(rowColumns).
			AddRow("cp-1", "run-1", 1, "retrieve", "", "grade_documents", s1, now).
			AddRow("cp-2", "run-1", 2, "grade_documents", "generate", "generate", s2, now))

	list, err := store.List(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "retrieve", list[0].NodeName)
	assert.Equal(t, "generate", list[1].Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_ListEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")
	mock.ExpectQuery(regexp.QuoteMeta("FROM checkpoints WHERE run_id = $1")).
		WithArgs("none").
		WillReturnRows(pgxmock.NewRows(rowColumns))

	list, err := store.List(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Clear(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresCheckpointStoreWithPool(mock, "checkpoints")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM checkpoints WHERE run_id = $1")).
		WithArgs("run-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	require.NoError(t, store.Clear(context.Background(), "run-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
