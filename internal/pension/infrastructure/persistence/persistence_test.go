package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/pensiondb/internal/pension/domain"
	"github.com/wyfcoding/pensiondb/pkg/config"
	"github.com/wyfcoding/pensiondb/pkg/db"
)

func openTestDB(t *testing.T, models ...any) *db.DB {
	t.Helper()
	d, err := db.Open(context.Background(), config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:" + filepath.Join(t.TempDir(), "pension.db") + "?_pragma=foreign_keys(1)",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, d.AutoMigrate(models...))
	return d
}

func insertPensioner(t *testing.T, repo domain.FixtureRepository, n int) *domain.Pensioner {
	t.Helper()
	p := &domain.Pensioner{
		PublicID:        "00000000-0000-4000-8000-00000000000" + string(rune('0'+n)),
		PensionNumber:   domain.PensionNumber(n),
		NationalID:      "ID-" + domain.PensionNumber(n),
		FirstName:       "Test",
		LastName:        domain.PensionNumber(n),
		DateOfBirth:     time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC),
		Gender:          domain.GenderFemale,
		EmploymentStart: time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC),
		Status:          domain.PensionerActive,
	}
	require.NoError(t, repo.Insert(context.Background(), p))
	return p
}

func TestFixtureRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t, domain.CoreModels()...)
	repo := NewFixtureRepository(d.DB)

	missing, err := repo.PensionerByOffset(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := insertPensioner(t, repo, 1)
	second := insertPensioner(t, repo, 2)

	got, err := repo.PensionerByOffset(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)

	got, err = repo.PensionerByOffset(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got)

	user, err := repo.UserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)

	acct, err := repo.SavingsAccountByPensioner(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, acct)

	exists, err := repo.TransactionExists(ctx, "TXN00000011")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.True(t, repo.HasTable(ctx, &domain.Pensioner{}))
	assert.False(t, repo.HasTable(ctx, &domain.MidtermAccessApplication{}))

	n, err := repo.Count(ctx, &domain.Pensioner{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestFixtureRepository_DeleteAll(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t, domain.CoreModels()...)
	repo := NewFixtureRepository(d.DB)

	insertPensioner(t, repo, 1)
	insertPensioner(t, repo, 2)

	_, err := repo.DeleteAll(ctx, "sqlite_master")
	require.Error(t, err)

	n, err := repo.DeleteAll(ctx, domain.TablePensioners)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// 物理删除，不留软删除行
	var raw int64
	require.NoError(t, d.Raw("SELECT COUNT(*) FROM pensioners").Scan(&raw).Error)
	assert.Zero(t, raw)
}

func TestFixtureRepository_ForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t, domain.CoreModels()...)
	repo := NewFixtureRepository(d.DB)

	err := repo.Insert(ctx, &domain.Benefit{
		PensionerID:   999,
		BenefitType:   domain.BenefitRetirement,
		MonthlyAmount: domain.MustParseMoney("100.00"),
		StartDate:     time.Now(),
	})
	assert.Error(t, err)
}

func TestFixtureRepository_RejectsInvalidEnum(t *testing.T) {
	d := openTestDB(t, domain.CoreModels()...)
	repo := NewFixtureRepository(d.DB)

	err := repo.Insert(context.Background(), &domain.User{Username: "x", PasswordHash: "x", Role: "ROOT"})
	assert.ErrorIs(t, err, domain.ErrInvalidEnum)
}

func TestReportRepository_MissingTable(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t, domain.CoreModels()...)
	repo := NewReportRepository(d.DB)

	n, err := repo.CountTable(ctx, domain.TablePensioners)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.CountTable(ctx, domain.TableApplications)
	require.Error(t, err)
	assert.True(t, db.IsMissingTable(err))

	_, err = repo.ApplicationsByStatus(ctx)
	assert.True(t, db.IsMissingTable(err))
}

func TestReportRepository_LoginUsers(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t, domain.CoreModels()...)
	fixtures := NewFixtureRepository(d.DB)
	p := insertPensioner(t, fixtures, 1)

	pid := p.ID
	require.NoError(t, fixtures.Insert(ctx, &domain.User{Username: "staff", PasswordHash: "h1", Role: domain.RoleAdmin, IsActive: true}))
	require.NoError(t, fixtures.Insert(ctx, &domain.User{Username: "member", PasswordHash: "h2", Role: domain.RolePensioner, IsActive: true, PensionerID: &pid}))

	users, err := NewReportRepository(d.DB).LoginUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Nil(t, users[0].PensionNumber)
	assert.Empty(t, users[0].PensionerName())
	require.NotNil(t, users[1].PensionNumber)
	assert.Equal(t, "PN000001", *users[1].PensionNumber)
	assert.Equal(t, "Test PN000001", users[1].PensionerName())
	assert.True(t, users[1].IsActive)
}
