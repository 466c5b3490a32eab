// client.go contains the HTTP side of scraping comunio: the logged in
// session and fetching pages as goquery documents.

package comunio

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"comunio-manager/internal/components/assert"
	"comunio-manager/internal/components/restyutil"
	"comunio-manager/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("internal/scrapers/comunio")

const (
	report_client_login = "client.login"
	report_client_fetch = "client.fetch"
)

const (
	pathLogin       = "/login.phtml"
	pathTeamNews    = "/team_news.phtml"
	pathPlayerInfo  = "/playerInfo.phtml"
	pathSellList    = "/putOnExchangemarket.phtml"
	pathExchangeTab = "/exchangemarket.phtml"
)

type client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	tel telemetry.API
}

// newClient creates a client for baseUrl, dump may be nil.
func newClient(baseUrl string, dump restyutil.Output, tel telemetry.API) (*client, error) {
	assert.NotEmptyStr(baseUrl)
	assert.NotNil(tel)

	parsedBaseUrl, err := url.Parse(baseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(time.Second * 30)

	// 2 requests max per second
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(2, 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.TraceResty(httpClient, tracer)
	if dump != nil {
		restyutil.DumpResty(httpClient, dump, tel)
	}

	return &client{
		BaseUrl: parsedBaseUrl,
		Http:    httpClient,
		tel:     tel,
	}, nil
}

func (c *client) Login(ctx context.Context, username, password string) error {
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"login":  username,
			"pass":   password,
			"action": "login",
		}).
		Post(pathLogin)
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("login request: %w", err))
		return fmt.Errorf("login: %w", err)
	}
	if res.IsError() {
		err := fmt.Errorf("login: unexpected status %s", res.Status())
		c.tel.ReportBroken(report_client_login, err)
		return err
	}
	return nil
}

// Fetch GETs path (which may carry a query) and parses the body.
func (c *client) Fetch(ctx context.Context, path string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, fmt.Errorf("fetch: %w", err), path)
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", path, res.Status())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, fmt.Errorf("parse: %w", err), path)
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
