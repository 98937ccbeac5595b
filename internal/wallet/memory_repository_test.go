package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPendingDebitsDoNotShareRoles(t *testing.T) {
	svc, repo, _ := newTestService(t)
	id := uuid.New()
	require.NoError(t, repo.CreateUser(context.Background(), User{ID: id, Name: "Ada Obi", Email: "ada@example.com", Roles: []string{"patient"}}))
	_, err := svc.Credit(context.Background(), CreditRequest{UserID: id, Amount: dec("10.00")})
	require.NoError(t, err)
	_, err = svc.OpenPendingDebit(context.Background(), id, dec("4.00"), "")
	require.NoError(t, err)

	pending, err := repo.ListPendingDebits(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	pending[0].User.Roles[0] = "admin"

	again, err := repo.ListPendingDebits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"patient"}, again[0].User.Roles)

	u, err := repo.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"patient"}, u.Roles)
}
