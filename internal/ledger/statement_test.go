package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

func TestService_StatementSavings(t *testing.T) {
	svc := NewService(failingStore{})
	accounts := accountLine(t, "S00001", "Ivan", "1200")
	require.NoError(t, svc.Load(strings.NewReader(accounts), strings.NewReader("20230105S00001D             10\n")))

	st, err := svc.Statement("S00001")
	require.NoError(t, err)

	// (1200 + 10) * (1 + 0.01/12) = 1211.0083...
	assert.Equal(t, "1.01", model.FormatMoney(st.Interest))
	assert.Equal(t, "1211.01", model.FormatMoney(st.Balance))
	assert.True(t, st.Balance.Sub(st.Interest).Equal(dec("1210")))
	assert.True(t, st.Account.Balance().Equal(dec("1210")), "live balance = %v", st.Account.Balance())
	assert.Len(t, st.Transactions, 1)
}

func TestService_StatementIsRepeatable(t *testing.T) {
	svc := NewService(failingStore{})
	require.NoError(t, svc.Load(strings.NewReader(accountLine(t, "S00001", "Ivan", "1200")), strings.NewReader("")))

	first, err := svc.Statement("S00001")
	require.NoError(t, err)
	second, err := svc.Statement("S00001")
	require.NoError(t, err)

	assert.True(t, first.Balance.Equal(dec("1201")), "balance = %v", first.Balance)
	assert.True(t, second.Balance.Equal(first.Balance), "second statement = %v", second.Balance)
	assert.True(t, second.Interest.Equal(first.Interest))

	acc, _ := svc.Account("S00001")
	assert.True(t, acc.Balance().Equal(dec("1200")))
}

func TestService_StatementCurrent(t *testing.T) {
	svc := NewService(failingStore{})
	require.NoError(t, svc.Load(strings.NewReader(accountLine(t, "C00001", "Ivan", "1200")), strings.NewReader("")))

	st, err := svc.Statement("C00001")
	require.NoError(t, err)

	assert.True(t, st.Interest.IsZero())
	assert.True(t, st.Balance.Equal(dec("1200")))
	assert.NotNil(t, st.Transactions)
	assert.Empty(t, st.Transactions)
}

func TestService_StatementErrors(t *testing.T) {
	svc := NewService(failingStore{})
	require.NoError(t, svc.Load(strings.NewReader(accountLine(t, "S00001", "Ivan", "1000")), strings.NewReader("")))
	acc, _ := svc.Account("S00001")
	acc.SetLimits(dec("0"), dec("1000"))

	_, err := svc.Statement("S00001")
	assert.ErrorIs(t, err, model.ErrAboveMaxLimit)
	assert.True(t, acc.Balance().Equal(dec("1000")))

	_, err = svc.Statement("S00002")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}
