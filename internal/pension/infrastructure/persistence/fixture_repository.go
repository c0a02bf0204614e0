package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/wyfcoding/pensiondb/internal/pension/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// fixtureRepository 测试数据仓储实现
type fixtureRepository struct {
	db *gorm.DB
}

// NewFixtureRepository 创建仓储，db 通常是一个事务句柄
func NewFixtureRepository(db *gorm.DB) domain.FixtureRepository {
	return &fixtureRepository{db: db}
}

func (r *fixtureRepository) Insert(ctx context.Context, row any) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// DeleteAll 只允许删除已知的测试数据表
func (r *fixtureRepository) DeleteAll(ctx context.Context, table string) (int64, error) {
	if !slices.Contains(domain.FixtureTables, table) {
		return 0, fmt.Errorf("refusing to delete from unknown table %q", table)
	}
	result := r.db.WithContext(ctx).Exec("DELETE FROM ?", clause.Table{Name: table})
	return result.RowsAffected, result.Error
}

func (r *fixtureRepository) Count(ctx context.Context, model any) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(model).Count(&n).Error
	return n, err
}

func (r *fixtureRepository) HasTable(ctx context.Context, model any) bool {
	return r.db.WithContext(ctx).Migrator().HasTable(model)
}

func (r *fixtureRepository) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	return first(r.db.WithContext(ctx).Where("username = ?", username), &user)
}

func (r *fixtureRepository) PensionerByOffset(ctx context.Context, offset int) (*domain.Pensioner, error) {
	var pensioner domain.Pensioner
	return first(r.db.WithContext(ctx).Order("id").Offset(offset), &pensioner)
}

func (r *fixtureRepository) SavingsAccountByPensioner(ctx context.Context, pensionerID uint) (*domain.VoluntarySavingsAccount, error) {
	var account domain.VoluntarySavingsAccount
	return first(r.db.WithContext(ctx).Where("pensioner_id = ?", pensionerID).Order("id"), &account)
}

func (r *fixtureRepository) CountSavingsAccounts(ctx context.Context) (int64, error) {
	return r.Count(ctx, &domain.VoluntarySavingsAccount{})
}

func (r *fixtureRepository) TransactionExists(ctx context.Context, reference string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&domain.SavingsTransaction{}).Where("reference_number = ?", reference))
}

func (r *fixtureRepository) FirstApplication(ctx context.Context) (*domain.MidtermAccessApplication, error) {
	var app domain.MidtermAccessApplication
	return first(r.db.WithContext(ctx).Order("id"), &app)
}

func (r *fixtureRepository) WorkflowStepExists(ctx context.Context, applicationID uint, level domain.WorkflowLevel) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&domain.ApprovalWorkflowStep{}).
		Where("application_id = ? AND level = ?", applicationID, level))
}

func (r *fixtureRepository) DocumentExists(ctx context.Context, applicationID uint, docType domain.DocumentType) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&domain.SupportingDocument{}).
		Where("application_id = ? AND document_type = ?", applicationID, docType))
}

// first 取第一条记录，未找到时返回 (nil, nil)
func first[T any](q *gorm.DB, dest *T) (*T, error) {
	if err := q.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dest, nil
}

func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
