package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
	report_resty_status   = "resty.status"
)

type instrumentResty struct {
	tel       API
	idcounter *uint64
}

// InstrumentResty reports every request made by the client to the given API,
// failed requests and non-2xx responses are reported as broken/warnings.
func InstrumentResty(client *resty.Client, tel API) {
	var idcounter uint64
	i := instrumentResty{tel: tel, idcounter: &idcounter}

	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id uint64
	// startTime does not need to rely on chrono because only the difference is used.
	startTime time.Time
}

func (i instrumentResty) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	id := atomic.AddUint64(i.idcounter, 1)
	ctx := context.WithValue(req.Context(), reqCtxKey, reqCtx{
		id:        id,
		startTime: time.Now(),
	})
	i.tel.ReportDebug(report_resty_request, id, req.Method, req.URL)

	req.SetContext(ctx)
	return nil
}

func requestInfo(ctx context.Context) (uint64, time.Duration) {
	info, ok := ctx.Value(reqCtxKey).(reqCtx)
	if !ok {
		return 0, 0
	}
	return info.id, time.Since(info.startTime)
}

func (i instrumentResty) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	id, duration := requestInfo(res.Request.Context())

	if res.IsError() {
		i.tel.ReportWarning(
			report_resty_status,
			id,
			res.Request.Method,
			res.Request.URL,
			res.Status(),
		)
		return nil
	}

	i.tel.ReportDebug(
		report_resty_response,
		id,
		duration.String(),
		res.Status(),
	)
	return nil
}

func (i instrumentResty) onError(req *resty.Request, err error) {
	id, duration := requestInfo(req.Context())
	i.tel.ReportBroken(
		report_resty_response,
		err,
		id,
		req.Method,
		req.URL,
		duration.String(),
	)
}
