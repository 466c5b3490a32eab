package comunio

import (
	"bytes"
	_ "embed"
	"testing"
	"time"

	"comunio-manager/internal/source"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var (
	//go:embed testdata/team_news.html
	teamNewsPage []byte
	//go:embed testdata/team_news_logged_out.html
	loggedOutPage []byte
	//go:embed testdata/player_info.html
	playerInfoPage []byte
	//go:embed testdata/sell_list.html
	sellListPage []byte
	//go:embed testdata/exchange_market.html
	exchangeMarketPage []byte
)

func mustDocument(t testing.TB, page []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		text     string
		expected int64
	}{
		{text: "Kontostand: 12.345.678 €", expected: 12345678},
		{text: "4.750.000", expected: 4750000},
		{text: "-3", expected: -3},
		{text: "0", expected: 0},
	}
	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			value, err := parseAmount(c.text)
			require.NoError(t, err)
			require.Equal(t, c.expected, value)
		})
	}

	_, err := parseAmount("keine Angabe")
	require.Error(t, err)
}

func TestParseTeamNews(t *testing.T) {
	news, err := parseTeamNews(mustDocument(t, teamNewsPage))
	require.NoError(t, err)

	require.Equal(t, "123456", news.UserId)
	require.Equal(t, int64(12345678), news.Cash)
	require.Equal(t, int64(31250000), news.TeamValue)
	require.Len(t, news.Articles, 3)

	kinds := map[string]int{}
	for _, a := range news.Articles {
		kinds[a.Kind]++
	}
	require.Equal(t, map[string]int{"Transfers": 2, "Spieltag": 1}, kinds)
}

func TestParseTeamNewsLoggedOut(t *testing.T) {
	_, err := parseTeamNews(mustDocument(t, loggedOutPage))
	require.ErrorIs(t, err, ErrLoginRejected)
}

func TestParseScreenName(t *testing.T) {
	name, err := parseScreenName(mustDocument(t, playerInfoPage))
	require.NoError(t, err)
	require.Equal(t, "Hansi", name)

	_, err = parseScreenName(mustDocument(t, loggedOutPage))
	require.Error(t, err)
}

func TestParseRoster(t *testing.T) {
	sellable, err := parseRoster(mustDocument(t, sellListPage), sellableLayout)
	require.NoError(t, err)
	expected := []source.Player{
		{Name: "Manuel Neuer", Position: source.Goalkeeper, Value: 4750000, Points: 48},
		{Name: "Mats Hummels", Position: source.Defense, Value: 3200000, Points: 35},
		{Name: "Max Kruse", Position: source.Attack, Value: 2600000, Points: 12},
		{Name: "Toni Kroos", Position: source.Midfield, Value: 6100000, Points: -3},
		{Name: "Philipp Lahm", Position: source.Defense, Value: 5000000, Points: 40},
	}
	if diff := cmp.Diff(expected, sellable); diff != "" {
		t.Fatal("sellable roster (-want +got)\n", diff)
	}

	onSale, err := parseRoster(mustDocument(t, exchangeMarketPage), onSaleLayout)
	require.NoError(t, err)
	require.Equal(t, []source.Player{
		{Name: "Mario Gomez", Position: source.Attack, Value: 2900000, Points: 22},
	}, onSale)

	// sell list rows are shorter than the exchange market layout
	_, err = parseRoster(mustDocument(t, sellListPage), onSaleLayout)
	require.Error(t, err)
}

func TestParseTransfers(t *testing.T) {
	news, err := parseTeamNews(mustDocument(t, teamNewsPage))
	require.NoError(t, err)

	today := time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)
	transfers, err := parseTransfers(news.Articles, "Hansi", today)
	require.NoError(t, err)
	require.Equal(t, []source.Transfer{
		{Name: "Max Kruse", Amount: 2500000, Type: source.Bought},
		{Name: "Tim Wiese", Amount: 800000, Type: source.Sold},
	}, transfers)

	// transfers of other managers are ignored
	transfers, err = parseTransfers(news.Articles, "Kalle", today)
	require.NoError(t, err)
	require.Equal(t, []source.Transfer{
		{Name: "Ivan Perisic", Amount: 4100000, Type: source.Bought},
	}, transfers)

	// only today's articles count
	transfers, err = parseTransfers(news.Articles, "Hansi", today.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Equal(t, []source.Transfer{
		{Name: "Marco Reus", Amount: 9000000, Type: source.Bought},
	}, transfers)

	transfers, err = parseTransfers(news.Articles, "Hansi", today.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Empty(t, transfers)
}

func TestArticleDate(t *testing.T) {
	require.Equal(t, "01.05.24", articleDate(time.Date(2024, time.May, 1, 23, 59, 0, 0, time.UTC)))
	require.Equal(t, "31.12.99", articleDate(time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC)))
}
