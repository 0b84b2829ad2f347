package conflict

import (
	"testing"

	"github.com/benoitkugler/reportlayout/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{FirstWins, StrictFail, Union} {
		got, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParsePolicy(config.NewDefaultConfig().Layout.ConflictPolicy)
	require.NoError(t, err)
	assert.Equal(t, FirstWins, got)

	_, err = ParsePolicy("last-wins")
	assert.Error(t, err)
}

func TestRecords(t *testing.T) {
	records := []Record{
		{First: Location{Element: "a", Detail: "x=10"}, Second: Location{Element: "b", Detail: "x=12"}, Kind: Geometry},
	}
	assert.False(t, HasBlocking(records))
	records = append(records, Record{Kind: LineHint, Severity: StrictFail.Severity()})
	assert.True(t, HasBlocking(records))
	assert.Equal(t, "informational geometry conflict: a (x=10) vs b (x=12)", records[0].String())

	loc := Location{Context: "ctx-1", Element: "label", Detail: "anchor-name"}
	assert.Equal(t, "label@ctx-1 (anchor-name)", loc.String())
}
