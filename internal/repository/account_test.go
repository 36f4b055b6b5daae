package repository

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

func newAccount(t *testing.T, number, name, balance string) *model.Account {
	t.Helper()
	kind, err := model.ParseAccountKind(number[:1])
	require.NoError(t, err)
	acc, err := model.NewAccount(kind, number, name, decimal.RequireFromString(balance))
	require.NoError(t, err)
	return acc
}

func TestAccountRegistry_AddGet(t *testing.T) {
	reg := NewAccountRegistry()
	acc := newAccount(t, "S12345", "Ivan Petrov", "100")

	require.NoError(t, reg.Add(acc))

	got, err := reg.Get("S12345")
	require.NoError(t, err)
	assert.Same(t, acc, got)
	assert.Equal(t, 1, reg.Len())
}

func TestAccountRegistry_AddDuplicate(t *testing.T) {
	reg := NewAccountRegistry()
	require.NoError(t, reg.Add(newAccount(t, "S12345", "Ivan Petrov", "100")))

	err := reg.Add(newAccount(t, "S12345", "Petr Ivanov", "5"))
	assert.ErrorIs(t, err, model.ErrAccountExists)
	assert.ErrorIs(t, err, model.ErrDuplicate)

	got, _ := reg.Get("S12345")
	assert.Equal(t, "Ivan Petrov", got.CustomerName())
	assert.Equal(t, 1, reg.Len())
}

func TestAccountRegistry_GetMissing(t *testing.T) {
	reg := NewAccountRegistry()

	_, err := reg.Get("C00001")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAccountRegistry_AllKeepsInsertionOrder(t *testing.T) {
	reg := NewAccountRegistry()
	numbers := []string{"S00010", "C00002", "S00001", "C00341"}
	for _, n := range numbers {
		require.NoError(t, reg.Add(newAccount(t, n, "Owner "+n, "0")))
	}

	var got []string
	for _, acc := range reg.All() {
		got = append(got, acc.Number())
	}
	assert.Equal(t, numbers, got)
}

func TestAccountRegistry_NextFreeNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		kind     model.AccountKind
		want     string
	}{
		{
			name: "empty registry",
			kind: model.AccountKindSavings,
			want: "S00001",
		},
		{
			name:     "after highest savings",
			existing: []string{"S12345", "S00007", "C00341"},
			kind:     model.AccountKindSavings,
			want:     "S12346",
		},
		{
			name:     "current ignores savings",
			existing: []string{"S12345", "C00341"},
			kind:     model.AccountKindCurrent,
			want:     "C00342",
		},
		{
			name:     "gaps are not reused",
			existing: []string{"C00001", "C00005"},
			kind:     model.AccountKindCurrent,
			want:     "C00006",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewAccountRegistry()
			for _, n := range tt.existing {
				require.NoError(t, reg.Add(newAccount(t, n, "Owner", "0")))
			}

			got, err := reg.NextFreeNumber(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccountRegistry_NextFreeNumberExhausted(t *testing.T) {
	reg := NewAccountRegistry()
	require.NoError(t, reg.Add(newAccount(t, "S99999", "Owner", "0")))

	_, err := reg.NextFreeNumber(model.AccountKindSavings)
	assert.ErrorIs(t, err, model.ErrAccountNumbersSpent)

	next, err := reg.NextFreeNumber(model.AccountKindCurrent)
	require.NoError(t, err)
	assert.Equal(t, "C00001", next)
}

func TestAccountRegistry_NextFreeNumberInvalidKind(t *testing.T) {
	_, err := NewAccountRegistry().NextFreeNumber("X")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAccountRegistry_SaveLoad(t *testing.T) {
	reg := NewAccountRegistry()
	require.NoError(t, reg.Add(newAccount(t, "S12345", "Ivan Petrov", "123.45")))
	limited := newAccount(t, "C00341", "Петр Иванов", "1320.56")
	limited.SetLimits(decimal.RequireFromString("-50"), decimal.RequireFromString("5000"))
	require.NoError(t, reg.Add(limited))

	var buf bytes.Buffer
	require.NoError(t, reg.Save(&buf))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	loaded := NewAccountRegistry()
	require.NoError(t, loaded.Load(&buf))
	require.Equal(t, 2, loaded.Len())

	got, err := loaded.Get("C00341")
	require.NoError(t, err)
	assert.Equal(t, "Петр Иванов", got.CustomerName())
	assert.True(t, got.MinLimit().Equal(decimal.RequireFromString("-50")))
	assert.True(t, got.MaxLimit().Equal(decimal.RequireFromString("5000")))
	assert.Equal(t, "S12345", loaded.All()[0].Number())
}

func TestAccountRegistry_LoadSkipsBlankLines(t *testing.T) {
	acc := newAccount(t, "S12345", "Ivan Petrov", "1")
	line, err := acc.Encode()
	require.NoError(t, err)

	reg := NewAccountRegistry()
	require.NoError(t, reg.Load(strings.NewReader("\n"+line+"\r\n\n")))
	assert.Equal(t, 1, reg.Len())
}

func TestAccountRegistry_LoadErrors(t *testing.T) {
	good, err := newAccount(t, "S12345", "Ivan Petrov", "1").Encode()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantLine string
	}{
		{
			name:     "malformed record",
			input:    good + "\nS12346short\n",
			wantErr:  model.ErrMalformedLine,
			wantLine: "line 2",
		},
		{
			name:     "duplicate number",
			input:    good + "\n" + good + "\n",
			wantErr:  model.ErrAccountExists,
			wantLine: "line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewAccountRegistry()
			require.NoError(t, reg.Add(newAccount(t, "C00001", "Existing", "0")))

			err := reg.Load(strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantLine)

			// contents survive a failed load
			assert.Equal(t, 1, reg.Len())
			_, err = reg.Get("C00001")
			assert.NoError(t, err)
		})
	}
}

func TestAccountRegistry_SaveOverflow(t *testing.T) {
	reg := NewAccountRegistry()
	acc := newAccount(t, "C00001", "Ivan", "1")
	acc.SetLimits(decimal.RequireFromString("-10000"), decimal.RequireFromString("12345678901234567"))
	require.NoError(t, reg.Add(acc))

	var buf bytes.Buffer
	err := reg.Save(&buf)
	assert.ErrorIs(t, err, model.ErrFieldOverflow)
	assert.Zero(t, buf.Len())
}
