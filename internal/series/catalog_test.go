package series

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	def, err := Lookup(" ipca ")
	require.NoError(t, err)
	require.Equal(t, "IPCA", def.Name)
	require.Equal(t, "ipca", def.StateID)
	require.Equal(t, KindSIDRA, def.Kind)
	require.Equal(t, 1737, def.TableID)

	_, err = Lookup("SELIC")
	require.ErrorContains(t, err, "unknown series")
	require.Equal(t, []string{"IGPM", "INPC", "IPCA", "IPCA15"}, Names())
}

func TestCanonicalColumn(t *testing.T) {
	t.Parallel()

	require.Equal(t, "NO MES", CanonicalColumn("Variação mensal"))
	require.Equal(t, "MAR", CanonicalColumn("  março "))
	require.Equal(t, "12 MESES", CanonicalColumn("Acumulado   12 meses"))
	require.Equal(t, "OUTRO", CanonicalColumn("outro"))

	m, ok := MonthNumber("Dez")
	require.True(t, ok)
	require.Equal(t, 12, m)
	_, ok = MonthNumber("NO ANO")
	require.False(t, ok)
}
