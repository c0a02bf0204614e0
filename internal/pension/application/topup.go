package application

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/wyfcoding/pensiondb/internal/pension/domain"
	"gorm.io/gorm"
)

// TopUpResult 补齐运行的写入统计，Deleted 始终为空
type TopUpResult = SeedResult

// TopUp 在已有数据上补齐缺失的派生数据，可重复执行
type TopUp struct {
	tx       TxRunner
	newRepo  RepositoryFactory
	fixtures FixtureSet
	opts     SeedOptions
	logger   *slog.Logger

	now func() time.Time
}

// NewTopUp 创建 TopUp
func NewTopUp(tx TxRunner, newRepo RepositoryFactory, fixtures FixtureSet, opts SeedOptions, logger *slog.Logger) *TopUp {
	if logger == nil {
		logger = slog.Default()
	}
	return &TopUp{
		tx:       tx,
		newRepo:  newRepo,
		fixtures: fixtures,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Run 每一行写入前都先做存在性检查，第二次运行不会插入任何数据
func (t *TopUp) Run(ctx context.Context) (*TopUpResult, error) {
	var result *TopUpResult
	err := t.tx.WithTx(ctx, func(tx *gorm.DB) error {
		result = newSeedResult()
		repo := t.newRepo(tx)
		now := t.now().UTC().Truncate(time.Second)

		if err := t.ensureUsers(ctx, repo, result); err != nil {
			return err
		}
		if err := t.ensureSavings(ctx, repo, now, result); err != nil {
			return err
		}
		return t.ensureWorkflow(ctx, repo, now, result)
	})
	if err != nil {
		return nil, err
	}

	for _, table := range domain.FixtureTables {
		if n := result.Inserted[table]; n > 0 {
			t.logger.InfoContext(ctx, "missing rows inserted", "table", table, "rows", n)
		}
	}
	if result.TotalInserted() == 0 {
		t.logger.InfoContext(ctx, "fixture data already complete")
	}
	for _, msg := range result.Skipped {
		t.logger.WarnContext(ctx, "topup step skipped", "reason", msg)
	}
	return result, nil
}

func (t *TopUp) ensureUsers(ctx context.Context, repo domain.FixtureRepository, result *TopUpResult) error {
	hasher := newPasswordHasher(t.opts.BcryptCost)
	for _, f := range t.fixtures.Users {
		existing, err := repo.UserByUsername(ctx, f.Username)
		if err != nil {
			return fmt.Errorf("failed to look up user %s: %w", f.Username, err)
		}
		if existing != nil {
			continue
		}

		var owner *domain.Pensioner
		if f.PensionerIndex != NoPensioner {
			owner, err = repo.PensionerByOffset(ctx, f.PensionerIndex)
			if err != nil {
				return fmt.Errorf("failed to look up pensioner #%d: %w", f.PensionerIndex, err)
			}
			if owner == nil {
				result.skip("user %s: pensioner #%d does not exist", f.Username, f.PensionerIndex)
				continue
			}
		}

		user, err := newUser(f, owner, hasher)
		if err != nil {
			return err
		}
		if err := repo.Insert(ctx, user); err != nil {
			return fmt.Errorf("failed to create user %s: %w", f.Username, err)
		}
		result.inserted(domain.TableUsers)
	}
	return nil
}

// ensureSavings 保证指定领取人有储蓄账户和完整的交易流水
// 已有账户只补交易，不回写余额
func (t *TopUp) ensureSavings(ctx context.Context, repo domain.FixtureRepository, now time.Time, result *TopUpResult) error {
	f := t.fixtures.TopUpSavings
	owner, err := repo.PensionerByOffset(ctx, f.PensionerIndex)
	if err != nil {
		return fmt.Errorf("failed to look up pensioner #%d: %w", f.PensionerIndex, err)
	}
	if owner == nil {
		result.skip("savings: fewer than %d pensioners exist", f.PensionerIndex+1)
		return nil
	}

	account, err := repo.SavingsAccountByPensioner(ctx, owner.ID)
	if err != nil {
		return fmt.Errorf("failed to look up savings account of %s: %w", owner.PensionNumber, err)
	}

	var ordinal int
	if account != nil {
		ordinal, err = domain.AccountOrdinal(account.AccountNumber)
		if err != nil {
			result.skip("savings: %v", err)
			return nil
		}
	} else {
		n, err := repo.CountSavingsAccounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to count savings accounts: %w", err)
		}
		ordinal = int(n) + 1
	}

	plan := planSavings(owner, f, ordinal, t.opts.TransactionsPerAccount, now)
	if account != nil {
		plan.account = account
	}
	return insertSavingsPlan(ctx, repo, plan, func(txn *domain.SavingsTransaction) (bool, error) {
		present, err := repo.TransactionExists(ctx, txn.ReferenceNumber)
		if err != nil {
			return false, fmt.Errorf("failed to check transaction %s: %w", txn.ReferenceNumber, err)
		}
		return present, nil
	}, result)
}

// ensureWorkflow 保证最早一条申请具备三级审批步骤与证明材料
func (t *TopUp) ensureWorkflow(ctx context.Context, repo domain.FixtureRepository, now time.Time, result *TopUpResult) error {
	if !midtermInstalled(ctx, repo) {
		result.skip("%s; workflow not seeded", MidtermNotInstalled)
		return nil
	}

	app, err := repo.FirstApplication(ctx)
	if err != nil {
		return fmt.Errorf("failed to look up first application: %w", err)
	}
	if app == nil {
		result.skip("workflow: no midterm access application exists")
		return nil
	}

	assigned := now
	if app.SubmittedAt != nil {
		assigned = *app.SubmittedAt
	}

	for i, f := range t.fixtures.WorkflowSteps {
		present, err := repo.WorkflowStepExists(ctx, app.ID, f.Level)
		if err != nil {
			return fmt.Errorf("failed to check %s step of %s: %w", f.Level, app.ApplicationNumber, err)
		}
		if present {
			continue
		}
		step := &domain.ApprovalWorkflowStep{
			ApplicationID: app.ID,
			Level:         f.Level,
			ApproverRole:  f.Role,
			Status:        f.Status,
			AssignedAt:    assigned.Add(time.Duration(i) * time.Hour),
			Decision:      f.Decision,
			Comments:      f.Comments,
		}
		if f.Status != domain.StepPending {
			decided := step.AssignedAt.Add(24 * time.Hour)
			step.DecidedAt = &decided
		}
		if err := repo.Insert(ctx, step); err != nil {
			return fmt.Errorf("failed to create %s step of %s: %w", f.Level, app.ApplicationNumber, err)
		}
		result.inserted(domain.TableWorkflowSteps)
	}

	for _, f := range t.fixtures.Documents {
		present, err := repo.DocumentExists(ctx, app.ID, f.Type)
		if err != nil {
			return fmt.Errorf("failed to check %s document of %s: %w", f.Type, app.ApplicationNumber, err)
		}
		if present {
			continue
		}
		name := domain.DocumentFileName(app.ApplicationNumber, f.Type)
		doc := &domain.SupportingDocument{
			ApplicationID:      app.ID,
			DocumentType:       f.Type,
			FileName:           name,
			FilePath:           path.Join("uploads", "midterm", app.ApplicationNumber, name),
			FileSize:           f.FileSize,
			MimeType:           f.MimeType,
			VerificationStatus: f.Status,
		}
		if f.Status == domain.VerificationVerified {
			verified := assigned.Add(12 * time.Hour)
			doc.VerifiedAt = &verified
		}
		if err := repo.Insert(ctx, doc); err != nil {
			return fmt.Errorf("failed to create %s document of %s: %w", f.Type, app.ApplicationNumber, err)
		}
		result.inserted(domain.TableDocuments)
	}
	return nil
}
