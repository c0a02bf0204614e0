package domain

import (
	"context"
	"time"
)

// FixtureRepository 测试数据写入仓储，所有方法在调用方给定的事务内执行
type FixtureRepository interface {
	// Insert 插入一行并回填主键
	Insert(ctx context.Context, row any) error
	// DeleteAll 物理删除表内全部数据，返回删除行数
	DeleteAll(ctx context.Context, table string) (int64, error)
	// Count 统计表内未删除的行数
	Count(ctx context.Context, model any) (int64, error)
	// HasTable 表是否已部署
	HasTable(ctx context.Context, model any) bool

	// UserByUsername 按用户名查找，不存在时返回 nil
	UserByUsername(ctx context.Context, username string) (*User, error)
	// PensionerByOffset 按主键顺序取第 offset 个领取人（从 0 开始），不存在时返回 nil
	PensionerByOffset(ctx context.Context, offset int) (*Pensioner, error)
	// SavingsAccountByPensioner 取领取人的第一个储蓄账户，不存在时返回 nil
	SavingsAccountByPensioner(ctx context.Context, pensionerID uint) (*VoluntarySavingsAccount, error)
	// CountSavingsAccounts 储蓄账户总数（用于计算账户序号）
	CountSavingsAccounts(ctx context.Context) (int64, error)
	// TransactionExists 按流水号判断交易是否存在
	TransactionExists(ctx context.Context, reference string) (bool, error)
	// FirstApplication 取最早的一条申请，不存在时返回 nil
	FirstApplication(ctx context.Context) (*MidtermAccessApplication, error)
	// WorkflowStepExists 判断申请在某审批层级是否已有步骤
	WorkflowStepExists(ctx context.Context, applicationID uint, level WorkflowLevel) (bool, error)
	// DocumentExists 判断申请是否已有某类材料
	DocumentExists(ctx context.Context, applicationID uint, docType DocumentType) (bool, error)
}

// ReportRepository 只读诊断查询
type ReportRepository interface {
	// CountTable 原始 COUNT(*)，表不存在时返回驱动错误
	CountTable(ctx context.Context, table string) (int64, error)
	LatestPensioners(ctx context.Context, limit int) ([]PensionerSample, error)
	PaymentTotalsByStatus(ctx context.Context) ([]PaymentStatusTotal, error)
	SavingsSummary(ctx context.Context) (SavingsSummary, error)
	ApplicationsByStatus(ctx context.Context) ([]ApplicationStatusCount, error)
	WorkflowProgress(ctx context.Context, limit int) ([]WorkflowProgress, error)
	LoginUsers(ctx context.Context) ([]LoginUser, error)
}

// TableCount 表行数，Missing 表示表不存在
type TableCount struct {
	Table   string
	Rows    int64
	Missing bool
}

// PensionerSample 最近创建的领取人
type PensionerSample struct {
	ID            uint
	PensionNumber string
	FirstName     string
	LastName      string
	Status        PensionerStatus
	BenefitCount  int64
	CreatedAt     time.Time
}

// FullName 姓名
func (p PensionerSample) FullName() string { return p.FirstName + " " + p.LastName }

// PaymentStatusTotal 按状态汇总的支付
type PaymentStatusTotal struct {
	Status      PaymentStatus
	Payments    int64
	TotalAmount Money
}

// SavingsSummary 储蓄账户汇总
type SavingsSummary struct {
	Accounts       int64
	TotalBalance   Money
	Transactions   int64
	TotalFees      Money
	ActiveAccounts int64
}

// ApplicationStatusCount 按状态统计的申请
type ApplicationStatusCount struct {
	Status          ApplicationStatus
	Applications    int64
	AmountRequested Money
}

// WorkflowProgress 申请的审批进度
type WorkflowProgress struct {
	ApplicationNumber string
	Status            ApplicationStatus
	Steps             int64
	ApprovedSteps     int64
	Documents         int64
}

// LoginUser 可登录用户
type LoginUser struct {
	ID            uint
	Username      string
	Role          UserRole
	IsActive      bool
	PasswordHash  string
	PensionNumber *string
	FirstName     *string
	LastName      *string
}

// PensionerName 关联领取人的姓名，无关联时为空
func (u LoginUser) PensionerName() string {
	if u.FirstName == nil || u.LastName == nil {
		return ""
	}
	return *u.FirstName + " " + *u.LastName
}
