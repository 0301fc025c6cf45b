package repository

import (
	"fmt"
	"path/filepath"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	pkgch "UniPredict/pkg/clickhouse"
	applogger "UniPredict/pkg/logger"
)

// HistoryRegistry maps university ids to their history sources. It is built
// once at startup and read concurrently afterwards.
type HistoryRegistry struct {
	sources map[string]domrepo.HistorySource
	known   map[string]struct{}
}

var _ domrepo.HistoryRegistry = (*HistoryRegistry)(nil)

type RegistryOption func(*registryConfig)

type registryConfig struct {
	dataDir string
	ch      *pkgch.Client
	chTable string
	l       *applogger.Logger
}

// WithDataDir resolves relative file paths against dir.
func WithDataDir(dir string) RegistryOption {
	return func(c *registryConfig) { c.dataDir = dir }
}

// WithClickHouse enables clickhouse history sources reading table.
func WithClickHouse(ch *pkgch.Client, table string) RegistryOption {
	return func(c *registryConfig) {
		c.ch = ch
		c.chTable = table
	}
}

func WithRegistryLogger(l *applogger.Logger) RegistryOption {
	return func(c *registryConfig) { c.l = l }
}

// NewHistoryRegistry builds one source per profile that declares history.
func NewHistoryRegistry(profiles []models.UniversityProfile, opts ...RegistryOption) (*HistoryRegistry, error) {
	cfg := &registryConfig{l: applogger.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &HistoryRegistry{
		sources: make(map[string]domrepo.HistorySource, len(profiles)),
		known:   make(map[string]struct{}, len(profiles)),
	}
	for i := range profiles {
		p := &profiles[i]
		r.known[p.ID] = struct{}{}

		h := p.History
		switch h.Kind {
		case models.HistoryNone:
			continue
		case models.HistoryInline:
			r.sources[p.ID] = NewStaticSource(h.Rows, h.Columns)
		case models.HistoryFile:
			path := h.Path
			if cfg.dataDir != "" && !filepath.IsAbs(path) {
				path = filepath.Join(cfg.dataDir, path)
			}
			r.sources[p.ID] = NewFileSource(path, h.Sheet, h.Columns)
		case models.HistoryClickHouse:
			if cfg.ch == nil {
				cfg.l.Warn("clickhouse history disabled, university has no history",
					applogger.String("university", p.ID))
				continue
			}
			src, err := NewClickHouseSource(cfg.ch, cfg.chTable, p.ID, cfg.l)
			if err != nil {
				return nil, err
			}
			r.sources[p.ID] = src
		default:
			return nil, fmt.Errorf("university '%s': unknown history kind '%s'", p.ID, h.Kind)
		}
	}
	return r, nil
}

func (r *HistoryRegistry) Get(universityID string) (domrepo.HistorySource, error) {
	if src, ok := r.sources[universityID]; ok {
		return src, nil
	}
	if _, ok := r.known[universityID]; !ok {
		return nil, fmt.Errorf("%s: %w", universityID, domrepo.ErrUnknownUniversity)
	}
	return nil, fmt.Errorf("%s: %w", universityID, domrepo.ErrNoHistory)
}
