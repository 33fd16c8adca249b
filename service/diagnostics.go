package service

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"

	goccyjson "github.com/goccy/go-json"

	"github.com/wkalt/typewatch/typecache"
	"github.com/wkalt/typewatch/util"
	"github.com/wkalt/typewatch/util/httputil"
	"github.com/wkalt/typewatch/util/mw"
)

// statsResponse is the /stats payload: a coarse snapshot of Type Cache
// occupancy, useful for confirming a long-running monitor is still
// ingesting.
type statsResponse struct {
	TypeCount  int      `json:"type_count"`
	TopicCount int      `json:"topic_count"`
	Topics     []string `json:"topics"`
}

// newDiagnosticsServer builds the diagnostics HTTP server: liveness,
// pprof profiling, and a cache occupancy snapshot.
func newDiagnosticsServer(addr string, cache *typecache.Cache) *http.Server {
	r := mux.NewRouter()
	r.Use(mw.WithRequestID)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		topics := cache.Topics()
		resp := statsResponse{
			TypeCount:  len(cache.OrderedTypes()),
			TopicCount: len(topics),
			Topics:     util.Okeys(topics),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := goccyjson.NewEncoder(w).Encode(resp); err != nil {
			httputil.InternalServerError(r.Context(), w, "failed to encode stats: %w", err)
		}
	})

	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func shutdownDiagnosticsServer(ctx context.Context, srv *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
