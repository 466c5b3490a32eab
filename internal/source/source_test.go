package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	cases := []struct {
		label  string
		expect Position
	}{
		{"Torhüter", Goalkeeper},
		{" Abwehr ", Defense},
		{"Mittelfeld", Midfield},
		{"Sturm", Attack},
		{"Attack", Attack},
		{"goalkeeper", Goalkeeper},
	}
	for _, test := range cases {
		position, err := ParsePosition(test.label)
		require.NoError(t, err)
		require.Equal(t, test.expect, position)
	}

	_, err := ParsePosition("Trainer")
	require.Error(t, err)
}

func TestPositionOrder(t *testing.T) {
	require.Less(t, Goalkeeper.Order(), Defense.Order())
	require.Less(t, Defense.Order(), Midfield.Order())
	require.Less(t, Midfield.Order(), Attack.Order())
	require.Equal(t, len(Positions), Position("Coach").Order())
}

func TestOfflineSource(t *testing.T) {
	var src API = Offline()
	require.False(t, src.Connected())
	require.Empty(t, src.Roster())
	require.Empty(t, src.TodayTransfers())
}
