// Package storagetest holds the behaviour every storage.Storage
// implementation must share. Each backend's tests call Run with a
// constructor that returns an empty store.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

// Run exercises the full Storage contract against fresh stores from newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Helper()

	t.Run("ListReturnsEveryInsertedStudent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		inserted := []types.Student{
			{ID: 1, FirstName: "Maija", LastName: "Meikäläinen", Age: 20},
			{ID: 2, FirstName: "Matti", LastName: "Meikäläinen", Age: 22},
		}
		for _, s := range inserted {
			_, err := store.CreateStudent(ctx, s)
			require.NoError(t, err)
		}

		students, err := store.ListStudents(ctx)
		require.NoError(t, err)
		require.Len(t, students, 2)
		require.ElementsMatch(t, inserted, students)
	})

	t.Run("ListOnEmptyStoreIsEmptyNotNil", func(t *testing.T) {
		store := newStore(t)

		students, err := store.ListStudents(context.Background())
		require.NoError(t, err)
		require.NotNil(t, students)
		require.Empty(t, students)
	})

	t.Run("GetMissingIsNotFound", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetStudent(context.Background(), 99)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("CreateThenGetRoundTrips", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		want := types.Student{ID: 3, FirstName: "Meeri", LastName: "Meikäläinen", Age: 20}

		created, err := store.CreateStudent(ctx, want)
		require.NoError(t, err)
		require.Equal(t, want, created)

		got, err := store.GetStudent(ctx, 3)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("CreateWithoutIDAssignsOne", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first, err := store.CreateStudent(ctx, types.Student{FirstName: "Aino", LastName: "Virtanen", Age: 19})
		require.NoError(t, err)
		require.NotZero(t, first.ID)

		second, err := store.CreateStudent(ctx, types.Student{FirstName: "Eino", LastName: "Virtanen", Age: 21})
		require.NoError(t, err)
		require.NotEqual(t, first.ID, second.ID)

		got, err := store.GetStudent(ctx, second.ID)
		require.NoError(t, err)
		require.Equal(t, "Eino", got.FirstName)
	})

	t.Run("CreateDuplicateIDIsRejected", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateStudent(ctx, types.Student{ID: 5, FirstName: "Ilona", LastName: "Laine", Age: 30})
		require.NoError(t, err)

		_, err = store.CreateStudent(ctx, types.Student{ID: 5, FirstName: "Other", LastName: "Person", Age: 40})
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		got, err := store.GetStudent(ctx, 5)
		require.NoError(t, err)
		require.Equal(t, "Ilona", got.FirstName)
	})

	t.Run("UpdateReplacesFields", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateStudent(ctx, types.Student{ID: 1, FirstName: "Mirja", LastName: "Meikäläinen", Age: 27})
		require.NoError(t, err)

		updated := types.Student{ID: 1, FirstName: "Mikko", LastName: "Virtanen", Age: 37}
		require.NoError(t, store.UpdateStudent(ctx, updated))

		got, err := store.GetStudent(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, updated, got)
	})

	t.Run("UpdateStoresZeroAge", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateStudent(ctx, types.Student{ID: 1, FirstName: "Mirja", LastName: "Meikäläinen", Age: 27})
		require.NoError(t, err)
		require.NoError(t, store.UpdateStudent(ctx, types.Student{ID: 1, FirstName: "Mirja", LastName: "Meikäläinen"}))

		got, err := store.GetStudent(ctx, 1)
		require.NoError(t, err)
		require.Zero(t, got.Age)
	})

	t.Run("UpdateMissingIsNotFound", func(t *testing.T) {
		store := newStore(t)

		err := store.UpdateStudent(context.Background(), types.Student{ID: 42, FirstName: "No", LastName: "One"})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteRemovesStudent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateStudent(ctx, types.Student{ID: 1, FirstName: "Mummo", LastName: "Mahtavainen", Age: 25})
		require.NoError(t, err)

		require.NoError(t, store.DeleteStudent(ctx, 1))

		_, err = store.GetStudent(ctx, 1)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteMissingLeavesStoreUnchanged", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateStudent(ctx, types.Student{ID: 1, FirstName: "Mummo", LastName: "Mahtavainen", Age: 25})
		require.NoError(t, err)

		err = store.DeleteStudent(ctx, 2)
		require.ErrorIs(t, err, storage.ErrNotFound)

		students, err := store.ListStudents(ctx)
		require.NoError(t, err)
		require.Len(t, students, 1)
	})

	t.Run("Ping", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Ping(context.Background()))
	})
}
