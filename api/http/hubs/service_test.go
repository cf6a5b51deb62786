package hubs_test

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/pushmesh/hub-sdk-go/api/http/hubs"
	"github.com/pushmesh/hub-sdk-go/config"
	"github.com/pushmesh/hub-sdk-go/emulator"
	"github.com/pushmesh/hub-sdk-go/model"
	"github.com/pushmesh/hub-sdk-go/model/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func newTestService(t *testing.T) (svc hubs.Service, srv *httptest.Server) {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	srv = httptest.NewServer(emulator.NewHandler(testToken, log))
	t.Cleanup(srv.Close)
	svc = hubs.NewService(srv.Client(), srv.URL+"/v1/hubs", testToken)
	svc = hubs.NewLogging(svc, log)
	return
}

func newTestDescription(t *testing.T, path string) (d *hub.Description) {
	d, err := hub.NewDescription(path)
	require.Nil(t, err)
	require.Nil(t, d.SetAccessPasswords("full", "p1", "listen", "p2"))
	require.Nil(t, d.SetFcmCredential(hub.NewFcmCredential(`{"project_id":"demo"}`)))
	require.Nil(t, d.SetUserMetadata("team=push"))
	return
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t)
	d := newTestDescription(t, "alerts")
	//
	created, err := svc.Create(context.TODO(), d)
	require.Nil(t, err)
	assert.Equal(t, "alerts", created.Path())
	assert.Equal(t, int64(1), created.DailyOperations())
	md, present := created.UserMetadata()
	assert.True(t, present)
	assert.Equal(t, "team=push", md)
	//
	// the submitted description is frozen after the round trip
	assert.True(t, d.Frozen())
	assert.ErrorIs(t, d.SetUserMetadata("changed"), model.ErrReadOnly)
	// the returned server copy stays editable
	assert.False(t, created.Frozen())
	//
	_, err = svc.Create(context.TODO(), d)
	assert.ErrorIs(t, err, hubs.ErrConflict)
}

func TestService_Get(t *testing.T) {
	svc, _ := newTestService(t)
	d := newTestDescription(t, "alerts")
	_, err := svc.Create(context.TODO(), d)
	require.Nil(t, err)
	//
	got, err := svc.Get(context.TODO(), "alerts")
	require.Nil(t, err)
	assert.Equal(t, "alerts", got.Path())
	assert.Equal(t, int64(2), got.DailyOperations())
	require.Equal(t, 2, got.Authorization().Len())
	full, found := got.Authorization().Get("full")
	require.True(t, found)
	assert.Equal(t, hub.RightsFull, full.Rights)
	//
	_, err = svc.Get(context.TODO(), "missing")
	assert.ErrorIs(t, err, hubs.ErrNotFound)
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(context.TODO(), newTestDescription(t, "alerts"))
	require.Nil(t, err)
	//
	edit := created.Clone()
	require.Nil(t, edit.SetRegistrationTtl(48*time.Hour))
	require.Nil(t, edit.SetDisabled(true))
	updated, err := svc.Update(context.TODO(), edit)
	require.Nil(t, err)
	assert.Equal(t, 48*time.Hour, updated.RegistrationTtl())
	assert.True(t, updated.IsDisabled())
	//
	_, err = svc.Update(context.TODO(), newTestDescription(t, "missing"))
	assert.ErrorIs(t, err, hubs.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.TODO(), newTestDescription(t, "alerts"))
	require.Nil(t, err)
	//
	require.Nil(t, svc.Delete(context.TODO(), "alerts"))
	_, err = svc.Get(context.TODO(), "alerts")
	assert.ErrorIs(t, err, hubs.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.TODO(), "alerts"), hubs.ErrNotFound)
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService(t)
	paths, err := svc.List(context.TODO())
	require.Nil(t, err)
	assert.Empty(t, paths)
	//
	for _, path := range []string{"orders", "alerts"} {
		_, err = svc.Create(context.TODO(), newTestDescription(t, path))
		require.Nil(t, err)
	}
	paths, err = svc.List(context.TODO())
	require.Nil(t, err)
	assert.Equal(t, []string{"alerts", "orders"}, paths)
}

func TestService_NoAuth(t *testing.T) {
	_, srv := newTestService(t)
	svc := hubs.NewService(srv.Client(), srv.URL+"/v1/hubs", "wrong-token")
	//
	_, err := svc.Get(context.TODO(), "alerts")
	assert.ErrorIs(t, err, hubs.ErrNoAuth)
	_, err = svc.List(context.TODO())
	assert.ErrorIs(t, err, hubs.ErrNoAuth)
	_, err = svc.Create(context.TODO(), newTestDescription(t, "alerts"))
	assert.ErrorIs(t, err, hubs.ErrNoAuth)
}

func TestService_UsageCountersRefresh(t *testing.T) {
	svc, srv := newTestService(t)
	_, err := svc.Create(context.TODO(), newTestDescription(t, "alerts"))
	require.Nil(t, err)
	//
	// inject counters the way a day of traffic would
	body := []byte(`{"dailyOperations":100,"dailyMaxActiveDevices":10,"dailyMaxActiveRegistrations":25}`)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/hubs/alerts/usage", bytes.NewReader(body))
	require.Nil(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.Nil(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	//
	got, err := svc.Get(context.TODO(), "alerts")
	require.Nil(t, err)
	assert.Equal(t, int64(101), got.DailyOperations())
	assert.Equal(t, int64(10), got.DailyMaxActiveDevices())
	assert.Equal(t, int64(25), got.DailyMaxActiveRegistrations())
}

func TestService_NewServiceFromConfig(t *testing.T) {
	_, srv := newTestService(t)
	u, err := url.Parse(srv.URL)
	require.Nil(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.Nil(t, err)
	port, err := strconv.ParseUint(portStr, 10, 16)
	require.Nil(t, err)
	//
	var cfg config.Config
	cfg.Api.Host = host
	cfg.Api.Port = uint16(port)
	cfg.Api.Path = "/v1/hubs"
	cfg.Api.Token = testToken
	cfg.Api.Timeout = 10 * time.Second
	svc := hubs.NewServiceFromConfig(cfg)
	//
	created, err := svc.Create(context.TODO(), newTestDescription(t, "orders"))
	require.Nil(t, err)
	assert.Equal(t, "orders", created.Path())
	paths, err := svc.List(context.TODO())
	require.Nil(t, err)
	assert.Equal(t, []string{"orders"}, paths)
}
