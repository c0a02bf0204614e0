package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/wyfcoding/pensiondb/internal/pension/domain"
	"github.com/wyfcoding/pensiondb/internal/pension/infrastructure/persistence"
	"github.com/wyfcoding/pensiondb/pkg/config"
	"github.com/wyfcoding/pensiondb/pkg/db"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

type FixtureSuite struct {
	suite.Suite
	ctx    context.Context
	db     *db.DB
	logger *slog.Logger
	opts   SeedOptions
}

func TestFixtureSuite(t *testing.T) {
	suite.Run(t, new(FixtureSuite))
}

func (s *FixtureSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.opts = SeedOptions{
		BcryptCost:             bcrypt.MinCost,
		PaymentMonths:          6,
		TransactionsPerAccount: 5,
	}

	cfg := config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:" + filepath.Join(s.T().TempDir(), "pension.db") + "?_pragma=foreign_keys(1)",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	d, err := db.Open(s.ctx, cfg, s.logger)
	s.Require().NoError(err)
	s.db = d
}

func (s *FixtureSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *FixtureSuite) migrate(models ...any) {
	s.Require().NoError(s.db.AutoMigrate(models...))
}

func (s *FixtureSuite) newSeeder(fixtures FixtureSet) *Seeder {
	seeder := NewSeeder(s.db, persistence.NewFixtureRepository, fixtures, s.opts, s.logger)
	seeder.now = func() time.Time { return fixedNow }
	return seeder
}

func (s *FixtureSuite) newTopUp() *TopUp {
	topUp := NewTopUp(s.db, persistence.NewFixtureRepository, DefaultFixtures(), s.opts, s.logger)
	topUp.now = func() time.Time { return fixedNow }
	return topUp
}

func (s *FixtureSuite) count(model any) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Count(&n).Error)
	return n
}

func (s *FixtureSuite) seed() *SeedResult {
	res, err := s.newSeeder(DefaultFixtures()).Seed(s.ctx)
	s.Require().NoError(err)
	return res
}

func (s *FixtureSuite) TestSeed_PopulatesEveryTableInOrder() {
	s.migrate(domain.AllModels()...)

	res := s.seed()
	s.Empty(res.Skipped)
	s.Equal(map[string]int{
		domain.TablePensioners:          3,
		domain.TableUsers:               6,
		domain.TableBenefits:            4,
		domain.TablePayments:            18,
		domain.TableSavingsAccounts:     1,
		domain.TableSavingsTransactions: 5,
		domain.TableApplications:        1,
	}, res.Inserted)

	s.EqualValues(len(DefaultFixtures().Pensioners), s.count(&domain.Pensioner{}))

	var pensioners []domain.Pensioner
	s.Require().NoError(s.db.Order("id").Find(&pensioners).Error)
	s.Equal("PN000001", pensioners[0].PensionNumber)
	s.Equal("PN000003", pensioners[2].PensionNumber)
	s.NotEqual(pensioners[0].PublicID, pensioners[1].PublicID)

	var account domain.VoluntarySavingsAccount
	s.Require().NoError(s.db.First(&account).Error)
	s.Equal(pensioners[0].ID, account.PensionerID)
	s.Len(account.AccountNumber, 10)
	ordinal, err := domain.AccountOrdinal(account.AccountNumber)
	s.Require().NoError(err)
	s.Equal(1, ordinal)
	s.Equal(domain.Money(342500), account.Balance)

	var app domain.MidtermAccessApplication
	s.Require().NoError(s.db.First(&app).Error)
	s.Equal("MTA20260313001", app.ApplicationNumber)
	s.Equal(account.ID, app.AccountID)
	s.Require().NotNil(app.SubmittedAt)
}

func (s *FixtureSuite) TestSeed_ForeignKeysResolve() {
	s.migrate(domain.AllModels()...)
	s.seed()

	orphans := map[string]string{
		"users":        "SELECT COUNT(*) FROM users WHERE pensioner_id IS NOT NULL AND pensioner_id NOT IN (SELECT id FROM pensioners)",
		"benefits":     "SELECT COUNT(*) FROM benefits WHERE pensioner_id NOT IN (SELECT id FROM pensioners)",
		"payments":     "SELECT COUNT(*) FROM payments pm WHERE NOT EXISTS (SELECT 1 FROM benefits b WHERE b.id = pm.benefit_id AND b.pensioner_id = pm.pensioner_id)",
		"transactions": "SELECT COUNT(*) FROM savings_transactions WHERE account_id NOT IN (SELECT id FROM voluntary_savings_accounts)",
		"applications": "SELECT COUNT(*) FROM midterm_access_applications a WHERE NOT EXISTS (SELECT 1 FROM voluntary_savings_accounts v WHERE v.id = a.account_id AND v.pensioner_id = a.pensioner_id)",
	}
	for name, query := range orphans {
		var n int64
		s.Require().NoError(s.db.Raw(query).Scan(&n).Error, name)
		s.Zero(n, name)
	}

	// 未停用的津贴才有支付记录，且当月为待处理
	var pending int64
	s.Require().NoError(s.db.Model(&domain.Payment{}).Where("status = ?", domain.PaymentPending).Count(&pending).Error)
	s.EqualValues(3, pending)
}

func (s *FixtureSuite) TestSeed_EnumsWithinClosedSets() {
	s.migrate(domain.AllModels()...)
	s.seed()

	var users []domain.User
	s.Require().NoError(s.db.Find(&users).Error)
	for _, u := range users {
		s.True(u.Role.Valid(), u.Role)
	}
	var payments []domain.Payment
	s.Require().NoError(s.db.Find(&payments).Error)
	for _, p := range payments {
		s.True(p.Status.Valid(), p.Status)
		s.True(p.PaymentMethod.Valid(), p.PaymentMethod)
	}
	var txns []domain.SavingsTransaction
	s.Require().NoError(s.db.Find(&txns).Error)
	for _, t := range txns {
		s.True(t.TransactionType.Valid(), t.TransactionType)
		s.True(t.Status.Valid(), t.Status)
	}
}

func (s *FixtureSuite) TestSeed_TwiceResetsToSameCounts() {
	s.migrate(domain.AllModels()...)
	first := s.seed()
	second := s.seed()

	s.Equal(first.Inserted, second.Inserted)
	s.EqualValues(3, second.Deleted[domain.TablePensioners])
	s.EqualValues(18, second.Deleted[domain.TablePayments])
	s.EqualValues(3, s.count(&domain.Pensioner{}))
	s.EqualValues(6, s.count(&domain.User{}))
	s.EqualValues(5, s.count(&domain.SavingsTransaction{}))
}

func (s *FixtureSuite) TestSeed_RollsBackOnFailure() {
	s.migrate(domain.AllModels()...)
	s.seed()

	broken := DefaultFixtures()
	broken.Users[len(broken.Users)-1].Role = "ROOT"

	_, err := s.newSeeder(broken).Seed(s.ctx)
	s.Require().Error(err)
	s.True(errors.Is(err, domain.ErrInvalidEnum))

	// 清库和已插入的数据都被回滚
	s.EqualValues(3, s.count(&domain.Pensioner{}))
	s.EqualValues(6, s.count(&domain.User{}))
	s.EqualValues(18, s.count(&domain.Payment{}))
}

func (s *FixtureSuite) TestSeed_RefusedInProduction() {
	s.migrate(domain.AllModels()...)
	s.seed()

	s.opts.Production = true
	_, err := s.newSeeder(DefaultFixtures()).Seed(s.ctx)
	s.ErrorIs(err, ErrResetNotAllowed)
	s.EqualValues(3, s.count(&domain.Pensioner{}))
}

func (s *FixtureSuite) TestSeed_WithoutMidtermModule() {
	s.migrate(domain.CoreModels()...)

	res := s.seed()
	s.Zero(res.Inserted[domain.TableApplications])
	s.Require().Len(res.Skipped, 1)
	s.Contains(res.Skipped[0], MidtermNotInstalled)
	s.EqualValues(3, s.count(&domain.Pensioner{}))
}

func (s *FixtureSuite) TestTopUp_CompletesSeededData() {
	s.migrate(domain.AllModels()...)
	s.seed()

	res, err := s.newTopUp().Run(s.ctx)
	s.Require().NoError(err)
	s.Empty(res.Skipped)
	s.Equal(map[string]int{
		domain.TableSavingsAccounts:     1,
		domain.TableSavingsTransactions: 5,
		domain.TableWorkflowSteps:       3,
		domain.TableDocuments:           3,
	}, res.Inserted)

	var pensioners []domain.Pensioner
	s.Require().NoError(s.db.Order("id").Find(&pensioners).Error)
	var account domain.VoluntarySavingsAccount
	s.Require().NoError(s.db.Where("pensioner_id = ?", pensioners[1].ID).First(&account).Error)
	ordinal, err := domain.AccountOrdinal(account.AccountNumber)
	s.Require().NoError(err)
	s.Equal(2, ordinal)

	var refs []string
	s.Require().NoError(s.db.Model(&domain.SavingsTransaction{}).Where("account_id = ?", account.ID).
		Order("reference_number").Pluck("reference_number", &refs).Error)
	s.Equal([]string{"TXN00000021", "TXN00000022", "TXN00000023", "TXN00000024", "TXN00000025"}, refs)

	var steps []domain.ApprovalWorkflowStep
	s.Require().NoError(s.db.Order("id").Find(&steps).Error)
	s.Require().Len(steps, 3)
	s.Equal(domain.Level1, steps[0].Level)
	s.Equal(domain.ApproverPensionOfficer, steps[0].ApproverRole)
	s.NotNil(steps[0].DecidedAt)
	s.Equal(domain.ApproverFinanceManager, steps[2].ApproverRole)
	s.Nil(steps[2].DecidedAt)

	var doc domain.SupportingDocument
	s.Require().NoError(s.db.Where("document_type = ?", domain.DocMedicalReport).First(&doc).Error)
	s.Equal("MTA20260313001_medical_report.pdf", doc.FileName)
	s.Equal("uploads/midterm/MTA20260313001/MTA20260313001_medical_report.pdf", doc.FilePath)
}

func (s *FixtureSuite) TestTopUp_SecondRunInsertsNothing() {
	s.migrate(domain.AllModels()...)
	s.seed()

	_, err := s.newTopUp().Run(s.ctx)
	s.Require().NoError(err)

	res, err := s.newTopUp().Run(s.ctx)
	s.Require().NoError(err)
	s.Zero(res.TotalInserted())
	s.Empty(res.Skipped)
}

func (s *FixtureSuite) TestTopUp_RestoresMissingUser() {
	s.migrate(domain.AllModels()...)
	s.seed()
	s.Require().NoError(s.db.Unscoped().Where("username = ?", "rchikwanha").Delete(&domain.User{}).Error)

	res, err := s.newTopUp().Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, res.Inserted[domain.TableUsers])

	var user domain.User
	s.Require().NoError(s.db.Where("username = ?", "rchikwanha").First(&user).Error)
	s.Require().NotNil(user.PensionerID)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(PensionerPassword)))
}

func (s *FixtureSuite) TestTopUp_EmptyDatabaseSkipsDependentSteps() {
	s.migrate(domain.AllModels()...)

	res, err := s.newTopUp().Run(s.ctx)
	s.Require().NoError(err)

	// 只有工作人员账号可以在没有领取人时创建
	s.Equal(map[string]int{domain.TableUsers: 4}, res.Inserted)
	s.Len(res.Skipped, 4)
	s.Zero(s.count(&domain.VoluntarySavingsAccount{}))
}

func (s *FixtureSuite) TestTopUp_WithoutMidtermModule() {
	s.migrate(domain.CoreModels()...)
	s.seed()

	res, err := s.newTopUp().Run(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(res.Skipped, 1)
	s.Contains(res.Skipped[0], MidtermNotInstalled)
	s.Equal(5, res.Inserted[domain.TableSavingsTransactions])
}

func (s *FixtureSuite) TestSeed_MonthEndDates() {
	s.migrate(domain.AllModels()...)

	for _, now := range []time.Time{
		time.Date(2026, time.March, 31, 10, 30, 0, 0, time.UTC),
		time.Date(2026, time.October, 31, 10, 30, 0, 0, time.UTC),
	} {
		seeder := s.newSeeder(DefaultFixtures())
		seeder.now = func() time.Time { return now }
		res, err := seeder.Seed(s.ctx)
		s.Require().NoError(err, now.Format(time.DateOnly))
		s.Equal(18, res.Inserted[domain.TablePayments])

		var refs []string
		s.Require().NoError(s.db.Model(&domain.Payment{}).Distinct("reference").Pluck("reference", &refs).Error)
		s.Len(refs, 18)
	}

	var payment domain.Payment
	s.Require().NoError(s.db.Where("reference = ?", "PAY-202609-0001").First(&payment).Error)
	s.Equal(30, payment.PaymentDate.Day())
}

func (s *FixtureSuite) TestReporter_SeededDatabase() {
	s.migrate(domain.AllModels()...)
	s.seed()
	_, err := s.newTopUp().Run(s.ctx)
	s.Require().NoError(err)

	report, err := NewReporter(persistence.NewReportRepository(s.db.DB), s.logger).Collect(s.ctx)
	s.Require().NoError(err)
	s.Empty(report.Missing())
	s.Empty(report.Notices)
	s.True(report.MidtermInstalled)

	s.Require().Len(report.Pensioners, 3)
	s.Equal("PN000003", report.Pensioners[0].PensionNumber)
	s.EqualValues(2, report.Pensioners[2].BenefitCount)

	totals := make(map[domain.PaymentStatus]domain.PaymentStatusTotal)
	for _, p := range report.Payments {
		totals[p.Status] = p
	}
	s.EqualValues(3, totals[domain.PaymentPending].Payments)
	s.Equal(domain.MustParseMoney("3420.75"), totals[domain.PaymentPending].TotalAmount)
	s.EqualValues(15, totals[domain.PaymentProcessed].Payments)

	s.Require().NotNil(report.Savings)
	s.EqualValues(2, report.Savings.Accounts)
	s.EqualValues(2, report.Savings.ActiveAccounts)
	s.EqualValues(10, report.Savings.Transactions)

	s.Require().Len(report.Workflow, 1)
	s.EqualValues(3, report.Workflow[0].Steps)
	s.EqualValues(1, report.Workflow[0].ApprovedSteps)
	s.EqualValues(3, report.Workflow[0].Documents)

	var out bytes.Buffer
	s.Require().NoError(report.Render(&out))
	s.Contains(out.String(), "MTA20260313001")
	s.Contains(out.String(), "3,420.75")
	s.Contains(out.String(), "Farai Ndlovu")
	s.NotContains(out.String(), MidtermNotInstalled)
}

func (s *FixtureSuite) TestReporter_MissingMidtermTables() {
	s.migrate(domain.CoreModels()...)
	s.seed()

	report, err := NewReporter(persistence.NewReportRepository(s.db.DB), s.logger).Collect(s.ctx)
	s.Require().NoError(err)
	s.False(report.MidtermInstalled)
	s.ElementsMatch(domain.MidtermTables, report.Missing())
	s.Contains(report.Notices, MidtermNotInstalled)
	s.Len(report.Pensioners, 3)

	var out bytes.Buffer
	s.Require().NoError(report.Render(&out))
	s.Contains(out.String(), MidtermNotInstalled)
	s.Contains(out.String(), "not provisioned")
}

func (s *FixtureSuite) TestReporter_EmptySchema() {
	report, err := NewReporter(persistence.NewReportRepository(s.db.DB), s.logger).Collect(s.ctx)
	s.Require().NoError(err)
	s.Len(report.Missing(), len(domain.FixtureTables))
	s.Nil(report.Savings)
	s.Len(report.Notices, 4)
}

func (s *FixtureSuite) TestLoginChecker() {
	s.migrate(domain.AllModels()...)
	s.seed()
	checker := NewLoginChecker(persistence.NewReportRepository(s.db.DB), DefaultFixtures().Users, s.logger)

	report, err := checker.Check(s.ctx)
	s.Require().NoError(err)
	s.True(report.OK())
	s.Len(report.Users, 6)
	for _, c := range report.Checks {
		if c.Username == "tmoyo" {
			s.Equal("Tendai Moyo", c.Pensioner)
		}
	}

	other, err := bcrypt.GenerateFromPassword([]byte("not-the-fixture"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&domain.User{}).Where("username = ?", "tmoyo").Update("password_hash", string(other)).Error)
	s.Require().NoError(s.db.Model(&domain.User{}).Where("username = ?", "admin").Update("is_active", false).Error)
	s.Require().NoError(s.db.Unscoped().Where("username = ?", "finance").Delete(&domain.User{}).Error)

	report, err = checker.Check(s.ctx)
	s.Require().NoError(err)
	s.False(report.OK())
	s.Len(report.Users, 4)

	got := make(map[string]LoginStatus)
	for _, c := range report.Checks {
		got[c.Username] = c.Status
	}
	s.Equal(map[string]LoginStatus{
		"admin":      LoginInactive,
		"officer":    LoginOK,
		"supervisor": LoginOK,
		"finance":    LoginMissing,
		"tmoyo":      LoginMismatch,
		"rchikwanha": LoginOK,
	}, got)

	var out bytes.Buffer
	s.Require().NoError(report.Render(&out))
	s.Contains(out.String(), "MISMATCH")
}

func (s *FixtureSuite) TestProber() {
	s.migrate(domain.AllModels()...)
	s.seed()

	res, err := NewProber(s.db, persistence.NewReportRepository(s.db.DB), nil, s.logger).Probe(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(res.ServerVersion)
	s.EqualValues(3, res.Pensioners)
	s.EqualValues(6, res.Users)

	var out bytes.Buffer
	s.Require().NoError(res.Render(&out))
	s.Contains(out.String(), "database: OK")
	s.NotContains(out.String(), "cache")
}

func (s *FixtureSuite) TestProber_Failures() {
	repo := persistence.NewReportRepository(s.db.DB)

	// 表未创建
	_, err := NewProber(s.db, repo, nil, s.logger).Probe(s.ctx)
	s.ErrorIs(err, ErrProbeFailed)

	s.migrate(domain.AllModels()...)
	cache := &fakeCache{err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused")}
	_, err = NewProber(s.db, repo, cache, s.logger).Probe(s.ctx)
	s.ErrorIs(err, ErrProbeFailed)
	s.ErrorContains(err, "connection refused")

	res, err := NewProber(s.db, repo, &fakeCache{version: "7.2.4"}, s.logger).Probe(s.ctx)
	s.Require().NoError(err)
	s.Equal("7.2.4", res.CacheVersion)
}

type fakeCache struct {
	version string
	err     error
}

func (f *fakeCache) Ping(context.Context) (string, error) { return f.version, f.err }

func (f *fakeCache) Addr() string { return "localhost:6379" }

// 编译期检查
var (
	_ TxRunner      = (*db.DB)(nil)
	_ VersionSource = (*db.DB)(nil)
)
