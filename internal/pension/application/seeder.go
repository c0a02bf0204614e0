// Package application 测试数据生成、诊断报表与连通性检查的应用服务
package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/pensiondb/internal/pension/domain"
	"gorm.io/gorm"
)

// TxRunner 事务执行器，*db.DB 实现了该接口
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RepositoryFactory 基于事务句柄创建仓储
type RepositoryFactory func(tx *gorm.DB) domain.FixtureRepository

// SeedOptions 生成参数
type SeedOptions struct {
	BcryptCost             int
	PaymentMonths          int
	TransactionsPerAccount int
	// 生产环境下拒绝清库
	Production bool
}

// SeedResult 一次运行的写入统计
type SeedResult struct {
	Inserted map[string]int
	Deleted  map[string]int64
	// 因前置条件不满足而跳过的步骤
	Skipped []string
}

func newSeedResult() *SeedResult {
	return &SeedResult{Inserted: make(map[string]int), Deleted: make(map[string]int64)}
}

func (r *SeedResult) inserted(table string) { r.Inserted[table]++ }

func (r *SeedResult) skip(format string, args ...any) {
	r.Skipped = append(r.Skipped, fmt.Sprintf(format, args...))
}

// TotalInserted 插入总行数
func (r *SeedResult) TotalInserted() int {
	total := 0
	for _, n := range r.Inserted {
		total += n
	}
	return total
}

// Render 按外键顺序输出各表的删除与插入行数
func (r *SeedResult) Render(w io.Writer) error {
	c := &console{w: w}
	var rows [][]string
	for _, table := range domain.FixtureTables {
		deleted, reset := r.Deleted[table]
		inserted := r.Inserted[table]
		if !reset && inserted == 0 {
			continue
		}
		rows = append(rows, []string{table, formatCount(deleted), formatCount(inserted)})
	}
	rows = append(rows, []string{"total", "", formatCount(r.TotalInserted())})
	c.table([]string{"TABLE", "DELETED", "INSERTED"}, rows)
	for _, msg := range r.Skipped {
		c.line("skipped: %s", msg)
	}
	return c.err
}

// Seeder 清空测试数据表并按外键顺序重建全部数据
type Seeder struct {
	tx       TxRunner
	newRepo  RepositoryFactory
	fixtures FixtureSet
	opts     SeedOptions
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewSeeder 创建 Seeder
func NewSeeder(tx TxRunner, newRepo RepositoryFactory, fixtures FixtureSet, opts SeedOptions, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		tx:       tx,
		newRepo:  newRepo,
		fixtures: fixtures,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// seedState 单次运行中已创建的父行，供子行引用
type seedState struct {
	now        time.Time
	pensioners []*domain.Pensioner
	accounts   map[int]*domain.VoluntarySavingsAccount
	hasher     *passwordHasher
}

// Seed 在一个事务内完成清空与重建，任一步失败则整体回滚
func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	if s.opts.Production {
		return nil, ErrResetNotAllowed
	}

	var result *SeedResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// 事务重试时从干净的统计开始
		result = newSeedResult()
		repo := s.newRepo(tx)

		midterm := midtermInstalled(ctx, repo)
		if !midterm {
			result.skip("%s; applications not seeded", MidtermNotInstalled)
		}

		if err := s.reset(ctx, repo, midterm, result); err != nil {
			return err
		}

		st := &seedState{
			now:      s.now().UTC().Truncate(time.Second),
			accounts: make(map[int]*domain.VoluntarySavingsAccount),
			hasher:   newPasswordHasher(s.opts.BcryptCost),
		}

		steps := []func(context.Context, domain.FixtureRepository, *seedState, *SeedResult) error{
			s.seedPensioners,
			s.seedUsers,
			s.seedBenefitsAndPayments,
			s.seedSavings,
		}
		if midterm {
			steps = append(steps, s.seedApplications)
		}
		for _, step := range steps {
			if err := step(ctx, repo, st, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, table := range domain.FixtureTables {
		if n := result.Inserted[table]; n > 0 {
			s.logger.InfoContext(ctx, "fixture table populated", "table", table, "rows", n)
		}
	}
	for _, msg := range result.Skipped {
		s.logger.WarnContext(ctx, "seed step skipped", "reason", msg)
	}
	return result, nil
}

// reset 按外键逆序物理删除
func (s *Seeder) reset(ctx context.Context, repo domain.FixtureRepository, midterm bool, result *SeedResult) error {
	tables := slices.Clone(domain.FixtureTables)
	slices.Reverse(tables)
	for _, table := range tables {
		if !midterm && slices.Contains(domain.MidtermTables, table) {
			continue
		}
		n, err := repo.DeleteAll(ctx, table)
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		result.Deleted[table] = n
	}
	return nil
}

func (s *Seeder) seedPensioners(ctx context.Context, repo domain.FixtureRepository, st *seedState, result *SeedResult) error {
	for i, f := range s.fixtures.Pensioners {
		p := newPensioner(f, s.newID(), i+1)
		if err := repo.Insert(ctx, p); err != nil {
			return fmt.Errorf("failed to create pensioner %s: %w", p.PensionNumber, err)
		}
		st.pensioners = append(st.pensioners, p)
		result.inserted(domain.TablePensioners)
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, repo domain.FixtureRepository, st *seedState, result *SeedResult) error {
	for _, f := range s.fixtures.Users {
		var owner *domain.Pensioner
		if f.PensionerIndex != NoPensioner {
			if f.PensionerIndex >= len(st.pensioners) {
				result.skip("user %s references missing pensioner #%d", f.Username, f.PensionerIndex)
				continue
			}
			owner = st.pensioners[f.PensionerIndex]
		}
		user, err := newUser(f, owner, st.hasher)
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

func (s *Seeder) seedBenefitsAndPayments(ctx context.Context, repo domain.FixtureRepository, st *seedState, result *SeedResult) error {
	today := st.now.Truncate(24 * time.Hour)
	benefitOrdinal := 0

	for i, f := range s.fixtures.Pensioners {
		owner := st.pensioners[i]
		for _, bf := range f.Benefits {
			benefitOrdinal++
			benefit := &domain.Benefit{
				PensionerID:        owner.ID,
				BenefitType:        bf.Type,
				MonthlyAmount:      bf.MonthlyAmount,
				AnnualAmount:       bf.MonthlyAmount.Times(12),
				TotalContributions: bf.TotalContributions,
				StartDate:          bf.StartDate,
				IsActive:           bf.Active,
			}
			if err := repo.Insert(ctx, benefit); err != nil {
				return fmt.Errorf("failed to create %s benefit for %s: %w", bf.Type, owner.PensionNumber, err)
			}
			result.inserted(domain.TableBenefits)

			if !bf.Active {
				continue
			}
			for m := 0; m < s.opts.PaymentMonths; m++ {
				payment := newPayment(owner, benefit, domain.MonthsAgo(today, m), m, benefitOrdinal)
				if err := repo.Insert(ctx, payment); err != nil {
					return fmt.Errorf("failed to create payment %s: %w", payment.Reference, err)
				}
				result.inserted(domain.TablePayments)
			}
		}
	}
	return nil
}

func (s *Seeder) seedSavings(ctx context.Context, repo domain.FixtureRepository, st *seedState, result *SeedResult) error {
	for i, f := range s.fixtures.Savings {
		if f.PensionerIndex >= len(st.pensioners) {
			result.skip("savings account #%d references missing pensioner #%d", i+1, f.PensionerIndex)
			continue
		}
		owner := st.pensioners[f.PensionerIndex]
		plan := planSavings(owner, f, i+1, s.opts.TransactionsPerAccount, st.now)
		if err := insertSavingsPlan(ctx, repo, plan, nil, result); err != nil {
			return err
		}
		st.accounts[f.PensionerIndex] = plan.account
	}
	return nil
}

func (s *Seeder) seedApplications(ctx context.Context, repo domain.FixtureRepository, st *seedState, result *SeedResult) error {
	for i, f := range s.fixtures.Applications {
		account, ok := st.accounts[f.PensionerIndex]
		if !ok {
			result.skip("application #%d: pensioner #%d has no savings account", i+1, f.PensionerIndex)
			continue
		}
		submitted := domain.DaysAgo(st.now, 2*(i+1))
		app := &domain.MidtermAccessApplication{
			PensionerID:       account.PensionerID,
			AccountID:         account.ID,
			ApplicationNumber: domain.ApplicationNumber(submitted, i+1),
			AmountRequested:   f.AmountRequested,
			Reason:            f.Reason,
			Status:            f.Status,
		}
		if f.Status != domain.ApplicationDraft {
			app.SubmittedAt = &submitted
		}
		if err := repo.Insert(ctx, app); err != nil {
			return fmt.Errorf("failed to create application %s: %w", app.ApplicationNumber, err)
		}
		result.inserted(domain.TableApplications)
	}
	return nil
}

// insertSavingsPlan 先插账户再插交易；skip 返回 true 的交易视为已存在
func insertSavingsPlan(ctx context.Context, repo domain.FixtureRepository, plan savingsPlan, skip func(*domain.SavingsTransaction) (bool, error), result *SeedResult) error {
	if plan.account.ID == 0 {
		if err := repo.Insert(ctx, plan.account); err != nil {
			return fmt.Errorf("failed to create savings account %s: %w", plan.account.AccountNumber, err)
		}
		result.inserted(domain.TableSavingsAccounts)
	}

	for _, txn := range plan.transactions {
		if skip != nil {
			present, err := skip(txn)
			if err != nil {
				return err
			}
			if present {
				continue
			}
		}
		txn.AccountID = plan.account.ID
		if err := repo.Insert(ctx, txn); err != nil {
			return fmt.Errorf("failed to create savings transaction %s: %w", txn.ReferenceNumber, err)
		}
		result.inserted(domain.TableSavingsTransactions)
	}
	return nil
}

func midtermInstalled(ctx context.Context, repo domain.FixtureRepository) bool {
	for _, model := range domain.MidtermModels() {
		if !repo.HasTable(ctx, model) {
			return false
		}
	}
	return true
}

func newPensioner(f PensionerFixture, publicID string, ordinal int) *domain.Pensioner {
	return &domain.Pensioner{
		PublicID:          publicID,
		PensionNumber:     domain.PensionNumber(ordinal),
		NationalID:        f.NationalID,
		FirstName:         f.FirstName,
		LastName:          f.LastName,
		DateOfBirth:       f.DateOfBirth,
		Gender:            f.Gender,
		Phone:             f.Phone,
		Email:             f.Email,
		Address:           f.Address,
		Employer:          f.Employer,
		EmployeeNumber:    f.EmployeeNumber,
		EmploymentStart:   f.EmploymentStart,
		EmploymentEnd:     f.EmploymentEnd,
		LastSalary:        f.LastSalary,
		BankName:          f.BankName,
		BankBranch:        f.BankBranch,
		BankAccountNumber: f.BankAccountNumber,
		Status:            f.Status,
	}
}

func newUser(f UserFixture, owner *domain.Pensioner, hasher *passwordHasher) (*domain.User, error) {
	hash, err := hasher.Hash(f.Password)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", f.Username, err)
	}
	user := &domain.User{
		Username:     f.Username,
		PasswordHash: hash,
		Email:        f.Email,
		Role:         f.Role,
		IsActive:     f.Active,
	}
	if owner != nil {
		id := owner.ID
		user.PensionerID = &id
	}
	return user, nil
}

// newPayment 第 m 个月前的支付，当月为待处理，其余已处理
func newPayment(owner *domain.Pensioner, benefit *domain.Benefit, paidOn time.Time, m, benefitOrdinal int) *domain.Payment {
	status := domain.PaymentProcessed
	if m == 0 {
		status = domain.PaymentPending
	}
	method := domain.MethodBankTransfer
	if owner.BankAccountNumber == "" {
		method = domain.MethodMobileMoney
	}
	return &domain.Payment{
		PensionerID:   owner.ID,
		BenefitID:     benefit.ID,
		Amount:        benefit.MonthlyAmount,
		PaymentDate:   paidOn,
		Status:        status,
		PaymentMethod: method,
		Reference:     domain.PaymentReference(paidOn, benefitOrdinal),
	}
}
