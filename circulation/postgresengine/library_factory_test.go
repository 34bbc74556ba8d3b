package postgresengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine"
	. "github.com/AntonStoeckl/library-circulation-go/testutil/postgresengine/helper/postgreswrapper" //nolint:revive
)

func Test_FactoryFunctions_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	testCases := []struct {
		name        string
		factoryFunc func() (*postgresengine.Library, error)
	}{
		{
			name: "NewLibraryFromPGXPool with nil",
			factoryFunc: func() (*postgresengine.Library, error) {
				return postgresengine.NewLibraryFromPGXPool(nil)
			},
		},
		{
			name: "NewLibraryFromPGXPoolWithReplica with nil replica",
			factoryFunc: func() (*postgresengine.Library, error) {
				return postgresengine.NewLibraryFromPGXPoolWithReplica(nil, nil)
			},
		},
		{
			name: "NewLibraryFromSQLDB with nil",
			factoryFunc: func() (*postgresengine.Library, error) {
				return postgresengine.NewLibraryFromSQLDB(nil)
			},
		},
		{
			name: "NewLibraryFromSQLDBWithReplica with nil",
			factoryFunc: func() (*postgresengine.Library, error) {
				return postgresengine.NewLibraryFromSQLDBWithReplica(nil, nil)
			},
		},
		{
			name: "NewLibraryFromSQLX with nil",
			factoryFunc: func() (*postgresengine.Library, error) {
				return postgresengine.NewLibraryFromSQLX(nil)
			},
		},
		{
			name: "NewLibraryFromSQLXWithReplica with nil",
			factoryFunc: func() (*postgresengine.Library, error) {
				return postgresengine.NewLibraryFromSQLXWithReplica(nil, nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			library, err := tc.factoryFunc()

			// assert
			assert.Nil(t, library)
			assert.ErrorIs(t, err, circulation.ErrNilDatabaseConnection)
			assert.Equal(t, circulation.KindStorageFailure, circulation.KindOf(err))
		})
	}
}

func Test_FactoryFunctions_ShouldPanic_WithUnsupportedAdapterType(t *testing.T) {
	t.Setenv("ADAPTER_TYPE", "unsupported")

	assert.Panics(t, func() {
		CreateWrapperWithTestConfig(t)
	})
}

func Test_Schema_IsIdempotent(t *testing.T) {
	assert.Contains(t, postgresengine.Schema(), "CREATE TABLE IF NOT EXISTS books")
	assert.Contains(t, postgresengine.Schema(), "CREATE TABLE IF NOT EXISTS circulation_journal")
	assert.NotContains(t, postgresengine.Schema(), "DROP ")
}
