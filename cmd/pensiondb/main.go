// pensiondb 养老金管理数据库的测试数据生成、诊断与连通性检查工具
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wyfcoding/pensiondb/pkg/config"
	"github.com/wyfcoding/pensiondb/pkg/logger"
	"github.com/wyfcoding/pensiondb/pkg/metrics"
)

const defaultConfigPath = "configs/pensiondb/config.toml"

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute 运行一个子命令并返回退出码：成功为 0，任何失败为 1
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var logged *loggedError
		if !errors.As(err, &logged) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// app 一次命令行调用的共享状态
type app struct {
	configPath string
	stdout     io.Writer
	stderr     io.Writer
}

// runEnv 单个子命令运行期间可用的依赖
type runEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// loggedError 已经写入日志的错误，不再重复输出
type loggedError struct{ err error }

func (e *loggedError) Error() string { return e.err.Error() }

func (e *loggedError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "pensiondb",
		Short:         "Fixture seeding and diagnostics for the pension-management database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "config file path")

	root.AddCommand(
		a.seedCmd(),
		a.topUpCmd(),
		a.reportCmd(),
		a.usersCmd(),
		a.pingCmd(),
	)
	return root
}

// run 加载配置与日志、执行 fn，并在结束时记录耗时和推送指标
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, rt *runEnv) error) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	log, err := a.newLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer log.Close()

	name := cmd.Name()
	ctx := logger.WithRunID(cmd.Context(), uuid.NewString())
	rt := &runEnv{
		cfg:     cfg,
		logger:  logger.FromContext(ctx, log.Logger).With("command", name, "env", cfg.Environment),
		metrics: metrics.New(name),
	}

	done := logger.LogDuration(ctx, log.Logger, "command finished", "command", name)
	err = fn(ctx, rt)
	done()

	rt.metrics.Finish(err)
	if pushErr := rt.metrics.Push(context.WithoutCancel(ctx), cfg.Metrics.PushGateway, cfg.Metrics.Job); pushErr != nil {
		rt.logger.WarnContext(ctx, "metrics not pushed", "error", pushErr)
	}

	if err != nil {
		rt.logger.ErrorContext(ctx, "command failed", "error", err)
		return &loggedError{err: err}
	}
	return nil
}

// newLogger 默认输出到命令的 stderr，stdout 留给报表
func (a *app) newLogger(cfg config.LoggerConfig) (*logger.Logger, error) {
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		return &logger.Logger{Logger: logger.NewWithWriter(a.stderr, cfg)}, nil
	default:
		return logger.New(cfg)
	}
}
