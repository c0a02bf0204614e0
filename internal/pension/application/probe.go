package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/wyfcoding/pensiondb/internal/pension/domain"
)

// VersionSource 执行方言对应的版本查询，*db.DB 实现了该接口
type VersionSource interface {
	ServerVersion(ctx context.Context) (string, error)
}

// CachePinger 应用缓存的连通性检查，*cache.RedisCache 实现了该接口
type CachePinger interface {
	Ping(ctx context.Context) (string, error)
	Addr() string
}

// ProbeResult 连通性检查结果
type ProbeResult struct {
	ServerVersion string
	Pensioners    int64
	Users         int64
	// 未配置缓存时为空
	CacheAddr    string
	CacheVersion string
}

// Prober 连通性检查：版本查询加两次计数
type Prober struct {
	versions VersionSource
	repo     domain.ReportRepository
	cache    CachePinger
	logger   *slog.Logger
}

// NewProber 创建 Prober，cache 可以为 nil
func NewProber(versions VersionSource, repo domain.ReportRepository, cache CachePinger, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{versions: versions, repo: repo, cache: cache, logger: logger}
}

// Probe 任一步失败都返回包装了 ErrProbeFailed 的错误
func (p *Prober) Probe(ctx context.Context) (*ProbeResult, error) {
	version, err := p.versions.ServerVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: version query: %w", ErrProbeFailed, err)
	}
	res := &ProbeResult{ServerVersion: version}
	p.logger.InfoContext(ctx, "database reachable", "version", version)

	if res.Pensioners, err = p.repo.CountTable(ctx, domain.TablePensioners); err != nil {
		return nil, fmt.Errorf("%w: count %s: %w", ErrProbeFailed, domain.TablePensioners, err)
	}
	if res.Users, err = p.repo.CountTable(ctx, domain.TableUsers); err != nil {
		return nil, fmt.Errorf("%w: count %s: %w", ErrProbeFailed, domain.TableUsers, err)
	}

	if p.cache != nil {
		res.CacheAddr = p.cache.Addr()
		if res.CacheVersion, err = p.cache.Ping(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProbeFailed, err)
		}
		p.logger.InfoContext(ctx, "cache reachable", "addr", res.CacheAddr, "version", res.CacheVersion)
	}
	return res, nil
}

// Render 输出检查结果
func (r *ProbeResult) Render(w io.Writer) error {
	c := &console{w: w}
	c.line("database: OK (%s)", r.ServerVersion)
	c.line("pensioners: %s", formatCount(r.Pensioners))
	c.line("users: %s", formatCount(r.Users))
	if r.CacheAddr != "" {
		c.line("cache %s: OK (%s)", r.CacheAddr, r.CacheVersion)
	}
	return c.err
}
