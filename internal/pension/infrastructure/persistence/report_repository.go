// Package persistence 基于 GORM 的仓储实现，写入走模型，诊断查询走原生 SQL
package persistence

import (
	"context"

	"github.com/wyfcoding/pensiondb/internal/pension/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reportRepository 只读诊断查询
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建诊断查询仓储
func NewReportRepository(db *gorm.DB) domain.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CountTable(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw("SELECT COUNT(*) FROM ?", clause.Table{Name: table}).Scan(&n).Error
	return n, err
}

const latestPensionersSQL = `
SELECT p.id, p.pension_number, p.first_name, p.last_name, p.status, p.created_at,
       COUNT(b.id) AS benefit_count
FROM pensioners p
LEFT JOIN benefits b ON b.pensioner_id = p.id AND b.deleted_at IS NULL
WHERE p.deleted_at IS NULL
GROUP BY p.id, p.pension_number, p.first_name, p.last_name, p.status, p.created_at
ORDER BY p.id DESC
LIMIT ?`

func (r *reportRepository) LatestPensioners(ctx context.Context, limit int) ([]domain.PensionerSample, error) {
	var rows []domain.PensionerSample
	err := r.db.WithContext(ctx).Raw(latestPensionersSQL, limit).Scan(&rows).Error
	return rows, err
}

const paymentTotalsSQL = `
SELECT pm.status, COUNT(*) AS payments, COALESCE(SUM(pm.amount), 0) AS total_amount
FROM payments pm
JOIN benefits b ON b.id = pm.benefit_id
WHERE pm.deleted_at IS NULL AND b.deleted_at IS NULL
GROUP BY pm.status
ORDER BY pm.status`

func (r *reportRepository) PaymentTotalsByStatus(ctx context.Context) ([]domain.PaymentStatusTotal, error) {
	var rows []domain.PaymentStatusTotal
	err := r.db.WithContext(ctx).Raw(paymentTotalsSQL).Scan(&rows).Error
	return rows, err
}

const savingsAccountsSQL = `
SELECT COUNT(*) AS accounts,
       COALESCE(SUM(balance), 0) AS total_balance,
       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active_accounts
FROM voluntary_savings_accounts
WHERE deleted_at IS NULL`

const savingsTransactionsSQL = `
SELECT COUNT(*) AS transactions, COALESCE(SUM(fee), 0) AS total_fees
FROM savings_transactions
WHERE deleted_at IS NULL`

func (r *reportRepository) SavingsSummary(ctx context.Context) (domain.SavingsSummary, error) {
	var accounts struct {
		Accounts       int64
		TotalBalance   domain.Money
		ActiveAccounts int64
	}
	if err := r.db.WithContext(ctx).Raw(savingsAccountsSQL, domain.SavingsActive).Scan(&accounts).Error; err != nil {
		return domain.SavingsSummary{}, err
	}

	var txns struct {
		Transactions int64
		TotalFees    domain.Money
	}
	if err := r.db.WithContext(ctx).Raw(savingsTransactionsSQL).Scan(&txns).Error; err != nil {
		return domain.SavingsSummary{}, err
	}

	return domain.SavingsSummary{
		Accounts:       accounts.Accounts,
		TotalBalance:   accounts.TotalBalance,
		ActiveAccounts: accounts.ActiveAccounts,
		Transactions:   txns.Transactions,
		TotalFees:      txns.TotalFees,
	}, nil
}

const applicationsByStatusSQL = `
SELECT status, COUNT(*) AS applications, COALESCE(SUM(amount_requested), 0) AS amount_requested
FROM midterm_access_applications
WHERE deleted_at IS NULL
GROUP BY status
ORDER BY status`

func (r *reportRepository) ApplicationsByStatus(ctx context.Context) ([]domain.ApplicationStatusCount, error) {
	var rows []domain.ApplicationStatusCount
	err := r.db.WithContext(ctx).Raw(applicationsByStatusSQL).Scan(&rows).Error
	return rows, err
}

const workflowProgressSQL = `
SELECT a.application_number, a.status,
       (SELECT COUNT(*) FROM midterm_approval_workflow w
         WHERE w.application_id = a.id AND w.deleted_at IS NULL) AS steps,
       (SELECT COUNT(*) FROM midterm_approval_workflow w
         WHERE w.application_id = a.id AND w.deleted_at IS NULL AND w.status = ?) AS approved_steps,
       (SELECT COUNT(*) FROM midterm_supporting_documents d
         WHERE d.application_id = a.id AND d.deleted_at IS NULL) AS documents
FROM midterm_access_applications a
WHERE a.deleted_at IS NULL
ORDER BY a.id
LIMIT ?`

func (r *reportRepository) WorkflowProgress(ctx context.Context, limit int) ([]domain.WorkflowProgress, error) {
	var rows []domain.WorkflowProgress
	err := r.db.WithContext(ctx).Raw(workflowProgressSQL, domain.StepApproved, limit).Scan(&rows).Error
	return rows, err
}

const loginUsersSQL = `
SELECT u.id, u.username, u.role, u.is_active, u.password_hash,
       p.pension_number, p.first_name, p.last_name
FROM users u
LEFT JOIN pensioners p ON p.id = u.pensioner_id AND p.deleted_at IS NULL
WHERE u.deleted_at IS NULL
ORDER BY u.id`

func (r *reportRepository) LoginUsers(ctx context.Context) ([]domain.LoginUser, error) {
	var rows []domain.LoginUser
	err := r.db.WithContext(ctx).Raw(loginUsersSQL).Scan(&rows).Error
	return rows, err
}
