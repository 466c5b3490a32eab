package comunio

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"comunio-manager/internal/components/assert"
	"comunio-manager/internal/components/chrono"
	"comunio-manager/internal/components/restyutil"
	"comunio-manager/internal/components/telemetry"
	"comunio-manager/internal/source"

	"go.opentelemetry.io/otel/codes"
)

const (
	report_session_connect = "session.connect"
	report_session_offline = "session.offline"
)

const DefaultBaseUrl = "http://www.comunio.de"

// ErrLoginRejected is returned when the site did not accept the credentials.
var ErrLoginRejected = errors.New("login rejected, incorrect credentials")

// ErrMarketValuesUnavailable is returned when so many players are on the
// transfer list that the site hides the market values of the rest.
var ErrMarketValuesUnavailable = errors.New("5 players on the transfer list, market values of the other players are unavailable")

// minRosterSize is the smallest roster for which every market value is
// shown.
const minRosterSize = 6

type Options struct {
	BaseUrl  string
	Username string
	Password string
	// DumpDir is where every fetched page is written to if set.
	DumpDir string
}

// Session is a source.API backed by a logged in comunio account. All data is
// fetched in Connect, a failed connect yields a disconnected session.
type Session struct {
	screenName string
	cash       int64
	teamValue  int64
	roster     []source.Player
	transfers  []source.Transfer

	connected bool
	err       error
}

var _ source.API = (*Session)(nil)

// Connect logs in and loads everything the synchronizer needs. It never
// returns nil, check Connected or Err.
func Connect(ctx context.Context, opts Options, clock chrono.TimeAPI, tel telemetry.API) *Session {
	assert.NotNil(clock)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("comunio_scraper", tel)

	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	s := &Session{screenName: opts.Username}
	err := s.load(ctx, opts, clock, tel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		tel.ReportWarning(report_session_offline, err)
		s.err = err
		s.roster = nil
		s.transfers = nil
		s.cash = 0
		s.teamValue = 0
		return s
	}
	s.connected = true
	tel.ReportDebug(
		"connected",
		telemetry.KV{Key: "screen_name", Value: s.screenName},
		telemetry.KV{Key: "players", Value: len(s.roster)},
		telemetry.KV{Key: "transfers", Value: len(s.transfers)},
	)
	return s
}

func (s *Session) load(ctx context.Context, opts Options, clock chrono.TimeAPI, tel telemetry.API) error {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	var dump restyutil.Output
	if opts.DumpDir != "" {
		dirOutput, err := restyutil.NewDirOutput(opts.DumpDir)
		if err != nil {
			return fmt.Errorf("dump dir: %w", err)
		}
		dump = dirOutput
	}

	c, err := newClient(baseUrl, dump, tel)
	if err != nil {
		tel.ReportBroken(report_session_connect, err)
		return err
	}

	err = c.Login(ctx, opts.Username, opts.Password)
	if err != nil {
		return err
	}

	newsDoc, err := c.Fetch(ctx, pathTeamNews)
	if err != nil {
		return err
	}
	news, err := parseTeamNews(newsDoc)
	if errors.Is(err, ErrLoginRejected) {
		return err
	}
	if err != nil {
		tel.ReportBroken(report_session_connect, fmt.Errorf("team news: %w", err))
		return fmt.Errorf("team news: %w", err)
	}
	s.cash = news.Cash
	s.teamValue = news.TeamValue

	profileDoc, err := c.Fetch(ctx, pathPlayerInfo+"?pid="+url.QueryEscape(news.UserId))
	if err != nil {
		return err
	}
	screenName, err := parseScreenName(profileDoc)
	if err != nil {
		tel.ReportBroken(report_session_connect, fmt.Errorf("profile: %w", err))
		return fmt.Errorf("profile: %w", err)
	}
	s.screenName = screenName

	var roster []source.Player
	for _, page := range []struct {
		path   string
		layout rosterLayout
	}{
		{path: pathSellList, layout: sellableLayout},
		{path: pathExchangeTab + "?takeplayeroff_x=22", layout: onSaleLayout},
	} {
		doc, err := c.Fetch(ctx, page.path)
		if err != nil {
			return err
		}
		players, err := parseRoster(doc, page.layout)
		if err != nil {
			tel.ReportBroken(report_session_connect, fmt.Errorf("roster %s: %w", page.path, err))
			return fmt.Errorf("roster %s: %w", page.path, err)
		}
		roster = append(roster, players...)
	}
	if len(roster) < minRosterSize {
		return ErrMarketValuesUnavailable
	}
	s.roster = roster

	transfers, err := parseTransfers(news.Articles, s.screenName, clock.Now())
	if err != nil {
		tel.ReportBroken(report_session_connect, fmt.Errorf("transfers: %w", err))
		return fmt.Errorf("transfers: %w", err)
	}
	s.transfers = transfers

	return nil
}

// Err describes why the session is disconnected, it is nil when connected.
func (s *Session) Err() error {
	return s.err
}

// ScreenName is the manager's name as shown to other managers, it falls
// back to the username until the profile was read.
func (s *Session) ScreenName() string {
	return s.screenName
}

func (s *Session) Connected() bool {
	return s.connected
}

func (s *Session) Roster() []source.Player {
	return s.roster
}

func (s *Session) Cash() int64 {
	return s.cash
}

func (s *Session) TeamValue() int64 {
	return s.teamValue
}

func (s *Session) TodayTransfers() []source.Transfer {
	return s.transfers
}
