package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newValidator() *validator.Validate {
	return validator.New()
}

// withURLParams attaches chi URL parameters to req
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// cookieJar carries session cookies between recorded responses and requests
type cookieJar map[string]*http.Cookie

func (j cookieJar) keep(rr *httptest.ResponseRecorder) {
	for _, c := range rr.Result().Cookies() {
		j[c.Name] = c
	}
}

func (j cookieJar) attach(req *http.Request) *http.Request {
	for _, c := range j {
		req.AddCookie(c)
	}
	return req
}

// recordingAuditor collects the actions logged by a handler
type recordingAuditor struct {
	actions []string
	details []interface{}
	err     error
}

func (a *recordingAuditor) LogAction(ctx context.Context, r *http.Request, eventID int, action string, details interface{}) error {
	a.actions = append(a.actions, action)
	a.details = append(a.details, details)
	return a.err
}
