package comunio

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"comunio-manager/internal/components/htmlutil"
	"comunio-manager/internal/source"

	"github.com/PuerkitoBio/goquery"
)

var (
	amountRegex = regexp.MustCompile(`-?\d[\d.]*`)
	digitsRegex = regexp.MustCompile(`\d+`)
)

// parseAmount extracts the first number in text, thousands separators
// ("1.250.000 €") are dropped.
func parseAmount(text string) (int64, error) {
	match := amountRegex.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("no amount in %q", text)
	}
	value, err := strconv.ParseInt(strings.ReplaceAll(match, ".", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", text, err)
	}
	return value, nil
}

type teamNews struct {
	UserId    string
	Cash      int64
	TeamValue int64
	Articles  []article
}

// parseTeamNews reads the manager box and the news articles, it returns
// ErrLoginRejected when the page was not rendered for a logged in user.
func parseTeamNews(doc *goquery.Document) (teamNews, error) {
	userIdBox := doc.Find("div#userid")
	if userIdBox.Length() == 0 {
		return teamNews{}, ErrLoginRejected
	}

	userId := strings.Join(digitsRegex.FindAllString(
		htmlutil.SelectionText(userIdBox.Find("p")), -1,
	), "")
	if userId == "" {
		return teamNews{}, fmt.Errorf("user id box has no id")
	}

	cash, err := parseAmount(htmlutil.SelectionText(doc.Find("div#manager_money p")))
	if err != nil {
		return teamNews{}, fmt.Errorf("cash: %w", err)
	}
	teamValue, err := parseAmount(htmlutil.SelectionText(doc.Find("div#teamvalue p")))
	if err != nil {
		return teamNews{}, fmt.Errorf("team value: %w", err)
	}

	articles, err := parseArticles(doc)
	if err != nil {
		return teamNews{}, err
	}

	return teamNews{
		UserId:    userId,
		Cash:      cash,
		TeamValue: teamValue,
		Articles:  articles,
	}, nil
}

// parseScreenName reads the name shown on the manager's profile page, the
// title carries extra details after a non-breaking space.
func parseScreenName(doc *goquery.Document) (string, error) {
	title := doc.Find("div#title h1").First()
	if title.Length() == 0 {
		return "", fmt.Errorf("profile page has no title")
	}
	raw := htmlutil.GetText(title.Nodes[0])
	name, _, _ := strings.Cut(raw, "\u00a0")
	name = htmlutil.CleanText(name)
	if name == "" {
		return "", fmt.Errorf("profile page has an empty title")
	}
	return name, nil
}

// rosterLayout is the column layout of a roster table.
type rosterLayout struct {
	name     int
	value    int
	points   int
	position int
}

var (
	// players that can be put on the exchange market
	sellableLayout = rosterLayout{name: 0, value: 2, points: 3, position: 4}
	// players currently on the exchange market
	onSaleLayout = rosterLayout{name: 1, value: 4, points: 5, position: 7}
)

func parseRoster(doc *goquery.Document, layout rosterLayout) ([]source.Player, error) {
	minCells := max(layout.name, layout.value, layout.points, layout.position) + 1

	var players []source.Player
	var parseErr error
	doc.Find(".tr1, .tr2").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < minCells {
			parseErr = fmt.Errorf("roster row %d: expected %d cells, got %d", i, minCells, cells.Length())
			return false
		}
		cell := func(idx int) string {
			return htmlutil.SelectionText(cells.Eq(idx))
		}

		value, err := parseAmount(cell(layout.value))
		if err != nil {
			parseErr = fmt.Errorf("roster row %d value: %w", i, err)
			return false
		}
		points, err := parseAmount(cell(layout.points))
		if err != nil {
			parseErr = fmt.Errorf("roster row %d points: %w", i, err)
			return false
		}
		position, err := source.ParsePosition(cell(layout.position))
		if err != nil {
			parseErr = fmt.Errorf("roster row %d: %w", i, err)
			return false
		}

		players = append(players, source.Player{
			Name:     cell(layout.name),
			Position: position,
			Value:    value,
			Points:   points,
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return players, nil
}

type article struct {
	// Date is the site's short date format, DD.MM.YY.
	Date    string
	Kind    string
	Content string
}

const articleKindTransfers = "Transfers"

func parseArticles(doc *goquery.Document) ([]article, error) {
	headers := doc.Find(".article_header1, .article_header2")
	contents := doc.Find(".article_content1, .article_content2")
	if headers.Length() != contents.Length() {
		return nil, fmt.Errorf(
			"news has %d article headers but %d article bodies",
			headers.Length(), contents.Length(),
		)
	}

	articles := make([]article, 0, headers.Length())
	for i := range headers.Length() {
		header := htmlutil.SelectionText(headers.Eq(i))
		date, _, _ := strings.Cut(header, " ")
		_, kind, found := strings.Cut(header, " > ")
		if !found {
			return nil, fmt.Errorf("malformed article header %q", header)
		}
		articles = append(articles, article{
			Date:    date,
			Kind:    strings.TrimSpace(kind),
			Content: htmlutil.SelectionText(contents.Eq(i)),
		})
	}
	return articles, nil
}

func articleDate(t time.Time) string {
	return t.UTC().Format("02.01.06")
}

var transferRegex = regexp.MustCompile(`(.+?) wechselt für ([\d.]+) von (.+?) zu (.+?)\.(?:\s+|$)`)

// parseTransfers extracts the transfers concerning screenName from the
// transfer articles published on today.
func parseTransfers(articles []article, screenName string, today time.Time) ([]source.Transfer, error) {
	date := articleDate(today)

	var transfers []source.Transfer
	for _, a := range articles {
		if a.Kind != articleKindTransfers || a.Date != date {
			continue
		}
		matches := transferRegex.FindAllStringSubmatch(a.Content, -1)
		if len(matches) == 0 && a.Content != "" {
			return nil, fmt.Errorf("transfer article without transfers: %q", a.Content)
		}
		for _, m := range matches {
			name := strings.TrimSpace(m[1])
			seller := strings.TrimSpace(m[3])
			buyer := strings.TrimSpace(m[4])

			var kind source.TransferType
			switch screenName {
			case buyer:
				kind = source.Bought
			case seller:
				kind = source.Sold
			default:
				continue
			}

			amount, err := parseAmount(m[2])
			if err != nil {
				return nil, fmt.Errorf("transfer of %s: %w", name, err)
			}
			transfers = append(transfers, source.Transfer{
				Name:   name,
				Amount: amount,
				Type:   kind,
			})
		}
	}
	return transfers, nil
}
