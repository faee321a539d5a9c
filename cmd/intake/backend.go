package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/internal/store"
	"github.com/goliatone/go-intake/pkg/draft"
	"github.com/goliatone/go-intake/pkg/draft/httpbackend"
	"github.com/goliatone/go-intake/pkg/draft/redisstore"
)

// Draft backends selectable with --backend.
const (
	backendAuto   = "auto"
	backendMemory = "memory"
	backendHTTP   = "http"
	backendSQL    = "sql"
)

// openBackend returns the draft backend named by kind. "auto" picks the
// remote API when one is configured and the SQL store otherwise.
func openBackend(ctx context.Context, kind string) (draft.Backend, func(), error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" || kind == backendAuto {
		kind = backendSQL
		if cfg.APIURL != "" {
			kind = backendHTTP
		}
	}

	switch kind {
	case backendMemory:
		return draft.NewMemoryBackend(), func() {}, nil
	case backendHTTP:
		if cfg.APIURL == "" {
			return nil, nil, fmt.Errorf("backend %q needs INTAKE_API_URL or apiUrl in the config file", kind)
		}
		client, err := httpbackend.New(cfg.APIURL,
			httpbackend.WithHTTPClient(newHTTPClient(cfg.RequestTimeout)),
			httpbackend.WithHeader("X-Workstation", cfg.Workstation),
		)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using remote draft API", zap.String("url", cfg.APIURL))
		return client, func() {}, nil
	case backendSQL:
		db, err := openDatabase(ctx)
		if err != nil {
			return nil, nil, err
		}
		return store.NewDraftStore(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want auto, memory, http or sql)", kind)
	}
}

func openDatabase(ctx context.Context) (*store.DB, error) {
	db, err := store.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("opened draft database", zap.String("driver", db.Driver))
	return db, nil
}

// openIdentityStore caches the draft identity of one flow, in Redis when
// configured so terminals sharing a Redis instance resume per workstation,
// and in a local file otherwise. Each flow gets its own entry.
func openIdentityStore(flow string) (draft.IdentityStore, func(), error) {
	if cfg.RedisURL == "" {
		return draft.NewFileStore(flowIdentityFile(cfg.IdentityFile, flow)), func() {}, nil
	}
	s, err := redisstore.New(cfg.RedisURL, flowWorkstation(cfg.Workstation, flow))
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("caching draft identity in redis", zap.String("key", s.Key()))
	return s, func() { _ = s.Close() }, nil
}

// flowIdentityFile inserts the flow name before the extension:
// draft.json becomes draft-quiz.json.
func flowIdentityFile(path, flow string) string {
	flow = strings.TrimSpace(flow)
	if flow == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + flow + ext
}

func flowWorkstation(workstation, flow string) string {
	workstation = strings.TrimSpace(workstation)
	if workstation == "" {
		workstation = "default"
	}
	if flow = strings.TrimSpace(flow); flow == "" {
		return workstation
	}
	return workstation + ":" + flow
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		return &http.Client{}
	}
	return &http.Client{Timeout: timeout}
}
