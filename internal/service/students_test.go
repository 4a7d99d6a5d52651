package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

// storeStub is a map-backed storage.Storage.
type storeStub struct {
	rows    map[int64]types.Student
	nextID  int64
	failAll error
}

func newStoreStub(seed ...types.Student) *storeStub {
	s := &storeStub{rows: make(map[int64]types.Student), nextID: 100}
	for _, st := range seed {
		s.rows[st.ID] = st
	}
	return s
}

func (s *storeStub) ListStudents(context.Context) ([]types.Student, error) {
	if s.failAll != nil {
		return nil, s.failAll
	}
	out := make([]types.Student, 0, len(s.rows))
	for _, st := range s.rows {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *storeStub) GetStudent(_ context.Context, id int64) (types.Student, error) {
	if s.failAll != nil {
		return types.Student{}, s.failAll
	}
	st, ok := s.rows[id]
	if !ok {
		return types.Student{}, fmt.Errorf("stub: %w", storage.ErrNotFound)
	}
	return st, nil
}

func (s *storeStub) CreateStudent(_ context.Context, st types.Student) (types.Student, error) {
	if s.failAll != nil {
		return types.Student{}, s.failAll
	}
	if st.ID == 0 {
		s.nextID++
		st.ID = s.nextID
	}
	if _, ok := s.rows[st.ID]; ok {
		return types.Student{}, fmt.Errorf("stub: %w", storage.ErrAlreadyExists)
	}
	s.rows[st.ID] = st
	return st, nil
}

func (s *storeStub) UpdateStudent(_ context.Context, st types.Student) error {
	if s.failAll != nil {
		return s.failAll
	}
	if _, ok := s.rows[st.ID]; !ok {
		return fmt.Errorf("stub: %w", storage.ErrNotFound)
	}
	s.rows[st.ID] = st
	return nil
}

func (s *storeStub) DeleteStudent(_ context.Context, id int64) error {
	if s.failAll != nil {
		return s.failAll
	}
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("stub: %w", storage.ErrNotFound)
	}
	delete(s.rows, id)
	return nil
}

func (s *storeStub) Ping(context.Context) error { return s.failAll }
func (s *storeStub) Close() error               { return nil }

func newTestService(store storage.Storage) *Students {
	return NewStudents(store, validator.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStudentsListReturnsAll(t *testing.T) {
	svc := newTestService(newStoreStub(
		types.Student{ID: 1, FirstName: "Maija", LastName: "Meikäläinen", Age: 20},
		types.Student{ID: 2, FirstName: "Matti", LastName: "Meikäläinen", Age: 22},
	))

	students, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
}

func TestStudentsGetMissing(t *testing.T) {
	svc := newTestService(newStoreStub())

	_, err := svc.Get(context.Background(), 99)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentsCreate(t *testing.T) {
	store := newStoreStub()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), types.Student{ID: 3, FirstName: "Meeri", LastName: "Meikäläinen", Age: 20})
	require.NoError(t, err)
	require.Equal(t, "Meeri", created.FirstName)
	require.Equal(t, "Meikäläinen", created.LastName)
	require.Equal(t, 20, created.Age)

	got, err := svc.Get(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestStudentsCreateDuplicate(t *testing.T) {
	svc := newTestService(newStoreStub(types.Student{ID: 3, FirstName: "Meeri", LastName: "Meikäläinen", Age: 20}))

	_, err := svc.Create(context.Background(), types.Student{ID: 3, FirstName: "X", LastName: "Y", Age: 1})
	require.ErrorIs(t, err, ErrStudentExists)
}

func TestStudentsCreateValidation(t *testing.T) {
	store := newStoreStub()
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), types.Student{ID: 4, LastName: "Meikäläinen", Age: -1})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	require.Len(t, validationErrs, 2)
	require.Empty(t, store.rows)
}

func TestStudentsUpdate(t *testing.T) {
	store := newStoreStub(types.Student{ID: 1, FirstName: "Mirja", LastName: "Meikäläinen", Age: 27})
	svc := newTestService(store)

	updated := types.Student{ID: 1, FirstName: "Mikko", LastName: "Virtanen", Age: 37}
	require.NoError(t, svc.Update(context.Background(), 1, updated))
	require.Equal(t, updated, store.rows[1])
}

func TestStudentsUpdateIDMismatch(t *testing.T) {
	store := newStoreStub(types.Student{ID: 1, FirstName: "Mirja", LastName: "Meikäläinen", Age: 27})
	svc := newTestService(store)

	err := svc.Update(context.Background(), 1, types.Student{ID: 2, FirstName: "Mikko", LastName: "Virtanen", Age: 37})
	require.ErrorIs(t, err, ErrIDMismatch)
	require.Equal(t, "Mirja", store.rows[1].FirstName)
}

func TestStudentsUpdateMissing(t *testing.T) {
	svc := newTestService(newStoreStub())

	err := svc.Update(context.Background(), 5, types.Student{ID: 5, FirstName: "Mikko", LastName: "Virtanen", Age: 37})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentsDelete(t *testing.T) {
	store := newStoreStub(types.Student{ID: 1, FirstName: "Mummo", LastName: "Mahtavainen", Age: 25})
	svc := newTestService(store)

	require.NoError(t, svc.Delete(context.Background(), 1))
	_, err := svc.Get(context.Background(), 1)
	require.ErrorIs(t, err, ErrStudentNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), 1), ErrStudentNotFound)
}

func TestStudentsStoreFailurePropagates(t *testing.T) {
	boom := errors.New("connection lost")
	store := newStoreStub()
	store.failAll = boom
	svc := newTestService(store)

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, boom)
	_, err = svc.Get(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, svc.Delete(context.Background(), 1), boom)
	require.ErrorIs(t, svc.Healthy(context.Background()), boom)
}

func TestStudentsImportCollectsRowFailures(t *testing.T) {
	store := newStoreStub(types.Student{ID: 1, FirstName: "Maija", LastName: "Meikäläinen", Age: 20})
	svc := newTestService(store)

	// rows 5 and 6 were blank in the sheet
	result, err := svc.Import(context.Background(), []ImportRow{
		{Row: 2, Student: types.Student{ID: 1, FirstName: "Dup", LastName: "Licate", Age: 20}},
		{Row: 3, Student: types.Student{ID: 2, FirstName: "Matti", LastName: "Meikäläinen", Age: 22}},
		{Row: 4, Student: types.Student{FirstName: "Aino", LastName: "Virtanen", Age: 19}},
		{Row: 7, Student: types.Student{ID: 3, LastName: "NoFirstName", Age: 30}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Imported)
	require.Len(t, result.Failed, 2)
	require.Equal(t, []int{2, 7}, []int{result.Failed[0].Row, result.Failed[1].Row})
	require.Len(t, store.rows, 3)
}

func TestStudentsImportAbortsOnStoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	store := newStoreStub()
	store.failAll = boom
	svc := newTestService(store)

	_, err := svc.Import(context.Background(), []ImportRow{
		{Row: 2, Student: types.Student{ID: 1, FirstName: "A", LastName: "B"}},
	})
	require.ErrorIs(t, err, boom)
}
