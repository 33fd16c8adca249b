package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wkalt/typewatch/introspection"
	"github.com/wkalt/typewatch/typecache"
	"github.com/wkalt/typewatch/util/testutils"
)

type diagFakeLoader struct{}

func (diagFakeLoader) Load(pkg, middle, typeName string) (*introspection.MembersHandle, error) {
	return &introspection.MembersHandle{
		Namespace: pkg + "::" + middle,
		Name:      typeName,
		Members: []introspection.MemberRecord{
			{Name: "data", TypeID: introspection.FieldTypeString},
		},
	}, nil
}

func TestDiagnosticsServerServesHealthzAndStats(t *testing.T) {
	cache, err := typecache.New(diagFakeLoader{})
	require.NoError(t, err)
	_, _, _, err = cache.AssertFromName("std_msgs/msg/String")
	require.NoError(t, err)
	_, _, _, _, err = cache.AssertTopic("/chatter", "std_msgs/msg/String")
	require.NoError(t, err)

	port, err := testutils.GetOpenPort()
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	srv := newDiagnosticsServer(addr, cache)
	go func() { _ = srv.ListenAndServe() }()
	defer func() { _ = shutdownDiagnosticsServer(context.Background(), srv) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))

	statsResp, err := http.Get("http://" + addr + "/stats")
	require.NoError(t, err)
	statsBody, err := io.ReadAll(statsResp.Body)
	require.NoError(t, statsResp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, statsResp.StatusCode)
	require.Contains(t, string(statsBody), `"type_count":1`)
	require.Contains(t, string(statsBody), `"topics":["/chatter"]`)
}

func TestShutdownDiagnosticsServerStopsAcceptingConnections(t *testing.T) {
	cache, err := typecache.New(diagFakeLoader{})
	require.NoError(t, err)

	port, err := testutils.GetOpenPort()
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	srv := newDiagnosticsServer(addr, cache)
	go func() { _ = srv.ListenAndServe() }()

	var getErr error
	for i := 0; i < 50; i++ {
		_, getErr = http.Get("http://" + addr + "/healthz")
		if getErr == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, getErr)

	require.NoError(t, shutdownDiagnosticsServer(context.Background(), srv))

	_, err = http.Get("http://" + addr + "/healthz")
	require.Error(t, err)
}
