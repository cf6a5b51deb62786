package hubs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/pushmesh/hub-sdk-go/config"
	"github.com/pushmesh/hub-sdk-go/model/hub"
	"github.com/segmentio/ksuid"
)

// Service is the management client for notification hub resources.
type Service interface {

	// Create provisions a new hub from d. On success the submitted
	// description is frozen and the server-side copy is returned, usage
	// counters included.
	Create(ctx context.Context, d *hub.Description) (created *hub.Description, err error)

	// Get fetches the current description of the hub at path, usage
	// counters included.
	Get(ctx context.Context, path string) (d *hub.Description, err error)

	// Update replaces the configuration of an existing hub with d and
	// returns the server-side copy.
	Update(ctx context.Context, d *hub.Description) (updated *hub.Description, err error)

	// Delete removes the hub at path.
	Delete(ctx context.Context, path string) (err error)

	// List returns the paths of all hubs visible to the caller.
	List(ctx context.Context) (paths []string, err error)
}

type service struct {
	clientHttp *http.Client
	url        string
	token      string
}

var ErrInternal = errors.New("internal failure")
var ErrNoAuth = errors.New("unauthenticated request")
var ErrInvalid = errors.New("invalid request")
var ErrConflict = errors.New("hub already exists")
var ErrNotFound = errors.New("hub not found")

const hdrTrackingId = "X-Pm-Tracking-Id"
const contentTypeXml = "application/xml"

const backOffInit = 100 * time.Millisecond
const backOffFactor = 2
const backOffMax = 10 * time.Second

func NewService(clientHttp *http.Client, url, token string) Service {
	return service{
		clientHttp: clientHttp,
		url:        url,
		token:      token,
	}
}

// NewServiceFromConfig builds the client from the environment-driven
// config: the base url from host, port and path, the request deadline
// from the api timeout. Port 443 selects https, any other port plain
// http.
func NewServiceFromConfig(cfg config.Config) Service {
	scheme := "http"
	if cfg.Api.Port == 443 {
		scheme = "https"
	}
	clientHttp := &http.Client{
		Timeout: cfg.Api.Timeout,
	}
	apiUrl := fmt.Sprintf("%s://%s:%d%s", scheme, cfg.Api.Host, cfg.Api.Port, cfg.Api.Path)
	return NewService(clientHttp, apiUrl, cfg.Api.Token)
}

func (svc service) Create(ctx context.Context, d *hub.Description) (created *hub.Description, err error) {

	var reqData []byte
	reqData, err = d.MarshalWireXML()

	var resp *http.Response
	if err == nil {
		hdr := map[string]string{
			"Content-Type":  contentTypeXml,
			"If-None-Match": "*",
		}
		resp, err = svc.send(ctx, http.MethodPut, svc.url+"/"+url.PathEscape(d.Path()), hdr, reqData)
	}

	if err == nil {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			err = ErrNoAuth
		case http.StatusBadRequest:
			err = ErrInvalid
		case http.StatusConflict:
			err = fmt.Errorf("%w: %s", ErrConflict, d.Path())
		}
	}

	var respData []byte
	if err == nil {
		respData, err = io.ReadAll(resp.Body)
	}

	if err == nil {
		created, err = hub.UnmarshalWireXML(respData)
	}

	if err == nil {
		d.Freeze()
	}

	return
}

func (svc service) Get(ctx context.Context, path string) (d *hub.Description, err error) {

	var resp *http.Response
	resp, err = svc.send(ctx, http.MethodGet, svc.url+"/"+url.PathEscape(path), nil, nil)

	if err == nil {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			err = ErrNoAuth
		case http.StatusNotFound:
			err = fmt.Errorf("%w: %s", ErrNotFound, path)
		}
	}

	var respData []byte
	if err == nil {
		respData, err = io.ReadAll(resp.Body)
	}

	if err == nil {
		d, err = hub.UnmarshalWireXML(respData)
	}

	return
}

func (svc service) Update(ctx context.Context, d *hub.Description) (updated *hub.Description, err error) {

	var reqData []byte
	reqData, err = d.MarshalWireXML()

	var resp *http.Response
	if err == nil {
		hdr := map[string]string{
			"Content-Type": contentTypeXml,
			"If-Match":     "*",
		}
		resp, err = svc.send(ctx, http.MethodPut, svc.url+"/"+url.PathEscape(d.Path()), hdr, reqData)
	}

	if err == nil {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			err = ErrNoAuth
		case http.StatusBadRequest:
			err = ErrInvalid
		case http.StatusNotFound:
			err = fmt.Errorf("%w: %s", ErrNotFound, d.Path())
		}
	}

	var respData []byte
	if err == nil {
		respData, err = io.ReadAll(resp.Body)
	}

	if err == nil {
		updated, err = hub.UnmarshalWireXML(respData)
	}

	return
}

func (svc service) Delete(ctx context.Context, path string) (err error) {

	var resp *http.Response
	resp, err = svc.send(ctx, http.MethodDelete, svc.url+"/"+url.PathEscape(path), nil, nil)

	if err == nil {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			err = ErrNoAuth
		case http.StatusNotFound:
			err = fmt.Errorf("%w: %s", ErrNotFound, path)
		}
	}

	return
}

func (svc service) List(ctx context.Context) (paths []string, err error) {

	var resp *http.Response
	resp, err = svc.send(ctx, http.MethodGet, svc.url, nil, nil)

	if err == nil {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			err = ErrNoAuth
		}
	}

	var respData []byte
	if err == nil {
		respData, err = io.ReadAll(resp.Body)
	}

	if err == nil {
		err = sonic.Unmarshal(respData, &paths)
	}

	return
}

// send issues the request with a fresh tracking id, retrying transport
// failures and 5xx responses with capped exponential backoff until the
// caller's context is done.
func (svc service) send(ctx context.Context, method, reqUrl string, hdr map[string]string, body []byte) (resp *http.Response, err error) {
	op := func() (opErr error) {
		var req *http.Request
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, opErr = http.NewRequestWithContext(ctx, method, reqUrl, rdr)
		if opErr != nil {
			opErr = backoff.Permanent(opErr)
			return
		}
		req.Header.Set("Accept", contentTypeXml)
		req.Header.Set("Authorization", "Bearer "+svc.token)
		req.Header.Set(hdrTrackingId, ksuid.New().String())
		for k, v := range hdr {
			req.Header.Set(k, v)
		}
		resp, opErr = svc.clientHttp.Do(req)
		if opErr == nil && resp.StatusCode >= http.StatusInternalServerError {
			_ = resp.Body.Close()
			opErr = fmt.Errorf("%w: status %d", ErrInternal, resp.StatusCode)
		}
		return
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backOffInit
	b.Multiplier = backOffFactor
	b.MaxInterval, b.MaxElapsedTime = backOffMax, backOffMax
	err = backoff.Retry(op, backoff.WithContext(b, ctx))
	return
}
