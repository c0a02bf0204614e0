package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/wyfcoding/pensiondb/internal/pension/domain"
	"github.com/wyfcoding/pensiondb/pkg/db"
)

// MidtermNotInstalled 中期支取模块未部署时的提示
const MidtermNotInstalled = "midterm access module not yet installed"

const defaultSampleLimit = 5

// Report 一次诊断的结果
type Report struct {
	Tables     []domain.TableCount
	Pensioners []domain.PensionerSample
	Payments   []domain.PaymentStatusTotal
	Savings    *domain.SavingsSummary

	MidtermInstalled bool
	Applications     []domain.ApplicationStatusCount
	Workflow         []domain.WorkflowProgress

	// 缺表等非致命情况
	Notices []string
}

// Missing 不存在的表
func (r *Report) Missing() []string {
	var out []string
	for _, t := range r.Tables {
		if t.Missing {
			out = append(out, t.Table)
		}
	}
	return out
}

func (r *Report) provisioned(tables ...string) bool {
	for _, t := range r.Tables {
		if t.Missing && slices.Contains(tables, t.Table) {
			return false
		}
	}
	return true
}

// Reporter 只读诊断查询，缺表不视为失败
type Reporter struct {
	repo        domain.ReportRepository
	logger      *slog.Logger
	sampleLimit int
}

// NewReporter 创建 Reporter
func NewReporter(repo domain.ReportRepository, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{repo: repo, logger: logger, sampleLimit: defaultSampleLimit}
}

// Collect 统计各表行数并按已部署的表采样
func (r *Reporter) Collect(ctx context.Context) (*Report, error) {
	report := &Report{}

	for _, table := range domain.FixtureTables {
		n, err := r.repo.CountTable(ctx, table)
		switch {
		case err == nil:
			report.Tables = append(report.Tables, domain.TableCount{Table: table, Rows: n})
		case db.IsMissingTable(err):
			r.logger.WarnContext(ctx, "table not provisioned", "table", table)
			report.Tables = append(report.Tables, domain.TableCount{Table: table, Missing: true})
		default:
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}

	if err := r.collectCore(ctx, report); err != nil {
		return nil, err
	}
	if err := r.collectMidterm(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Reporter) collectCore(ctx context.Context, report *Report) error {
	var err error
	if report.provisioned(domain.TablePensioners, domain.TableBenefits) {
		if report.Pensioners, err = r.repo.LatestPensioners(ctx, r.sampleLimit); err != nil {
			return fmt.Errorf("failed to sample pensioners: %w", err)
		}
	} else {
		report.Notices = append(report.Notices, "pensioner sample unavailable: core tables not provisioned")
	}

	if report.provisioned(domain.TablePayments, domain.TableBenefits) {
		if report.Payments, err = r.repo.PaymentTotalsByStatus(ctx); err != nil {
			return fmt.Errorf("failed to total payments: %w", err)
		}
	} else {
		report.Notices = append(report.Notices, "payment totals unavailable: payments not provisioned")
	}

	if report.provisioned(domain.TableSavingsAccounts, domain.TableSavingsTransactions) {
		summary, err := r.repo.SavingsSummary(ctx)
		if err != nil {
			return fmt.Errorf("failed to summarise savings: %w", err)
		}
		report.Savings = &summary
	} else {
		report.Notices = append(report.Notices, "savings summary unavailable: savings tables not provisioned")
	}
	return nil
}

func (r *Reporter) collectMidterm(ctx context.Context, report *Report) error {
	if !report.provisioned(domain.MidtermTables...) {
		r.logger.InfoContext(ctx, MidtermNotInstalled)
		report.Notices = append(report.Notices, MidtermNotInstalled)
		return nil
	}
	report.MidtermInstalled = true

	var err error
	if report.Applications, err = r.repo.ApplicationsByStatus(ctx); err != nil {
		return fmt.Errorf("failed to count applications: %w", err)
	}
	if report.Workflow, err = r.repo.WorkflowProgress(ctx, r.sampleLimit); err != nil {
		return fmt.Errorf("failed to load workflow progress: %w", err)
	}
	return nil
}

// Render 输出人可读的报表
func (r *Report) Render(w io.Writer) error {
	c := &console{w: w}

	c.section("Tables")
	rows := make([][]string, 0, len(r.Tables))
	for _, t := range r.Tables {
		if t.Missing {
			rows = append(rows, []string{t.Table, "not provisioned"})
			continue
		}
		rows = append(rows, []string{t.Table, formatCount(t.Rows)})
	}
	c.table([]string{"TABLE", "ROWS"}, rows)

	if len(r.Pensioners) > 0 {
		c.section("Latest pensioners")
		rows = nil
		for _, p := range r.Pensioners {
			rows = append(rows, []string{
				fmt.Sprint(p.ID), p.PensionNumber, p.FullName(), string(p.Status), formatCount(p.BenefitCount),
			})
		}
		c.table([]string{"ID", "PENSION NO", "NAME", "STATUS", "BENEFITS"}, rows)
	}

	if len(r.Payments) > 0 {
		c.section("Payments by status")
		rows = nil
		for _, p := range r.Payments {
			rows = append(rows, []string{string(p.Status), formatCount(p.Payments), formatMoney(p.TotalAmount)})
		}
		c.table([]string{"STATUS", "COUNT", "TOTAL"}, rows)
	}

	if s := r.Savings; s != nil {
		c.section("Voluntary savings")
		c.line("accounts:      %s (%s active)", formatCount(s.Accounts), formatCount(s.ActiveAccounts))
		c.line("total balance: %s", formatMoney(s.TotalBalance))
		c.line("transactions:  %s", formatCount(s.Transactions))
		c.line("total fees:    %s", formatMoney(s.TotalFees))
	}

	c.section("Midterm access")
	if !r.MidtermInstalled {
		c.line(MidtermNotInstalled)
	} else {
		rows = nil
		for _, a := range r.Applications {
			rows = append(rows, []string{string(a.Status), formatCount(a.Applications), formatMoney(a.AmountRequested)})
		}
		c.table([]string{"STATUS", "COUNT", "REQUESTED"}, rows)

		if len(r.Workflow) > 0 {
			rows = nil
			for _, wp := range r.Workflow {
				rows = append(rows, []string{
					wp.ApplicationNumber, string(wp.Status), fmt.Sprintf("%d/%d", wp.ApprovedSteps, wp.Steps), formatCount(wp.Documents),
				})
			}
			c.line("")
			c.table([]string{"APPLICATION", "STATUS", "APPROVED", "DOCUMENTS"}, rows)
		}
	}

	for _, n := range r.Notices {
		if n != MidtermNotInstalled {
			c.line("notice: %s", n)
		}
	}
	return c.err
}
