// Package domain 养老金管理数据库的实体模型、枚举与派生编号规则
package domain

import (
	"time"

	"gorm.io/gorm"
)

// 表名
const (
	TablePensioners          = "pensioners"
	TableUsers               = "users"
	TableBenefits            = "benefits"
	TablePayments            = "payments"
	TableSavingsAccounts     = "voluntary_savings_accounts"
	TableSavingsTransactions = "savings_transactions"
	TableApplications        = "midterm_access_applications"
	TableWorkflowSteps       = "midterm_approval_workflow"
	TableDocuments           = "midterm_supporting_documents"
)

// FixtureTables 按外键依赖排序（父表在前）
var FixtureTables = []string{
	TablePensioners,
	TableUsers,
	TableBenefits,
	TablePayments,
	TableSavingsAccounts,
	TableSavingsTransactions,
	TableApplications,
	TableWorkflowSteps,
	TableDocuments,
}

// MidtermTables 中期支取模块的表，可能尚未部署
var MidtermTables = []string{TableApplications, TableWorkflowSteps, TableDocuments}

// Pensioner 养老金领取人
type Pensioner struct {
	gorm.Model
	// 对外 ID（uuid）
	PublicID string `gorm:"column:public_id;type:varchar(36);uniqueIndex;not null" json:"public_id"`
	// 养老金编号，如 PN000001
	PensionNumber string `gorm:"column:pension_number;type:varchar(20);uniqueIndex;not null" json:"pension_number"`
	// 身份证号
	NationalID  string    `gorm:"column:national_id;type:varchar(30);uniqueIndex;not null" json:"national_id"`
	FirstName   string    `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	LastName    string    `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	DateOfBirth time.Time `gorm:"column:date_of_birth;not null" json:"date_of_birth"`
	Gender      Gender    `gorm:"column:gender;type:varchar(10);not null" json:"gender"`
	Phone       string    `gorm:"column:phone;type:varchar(30)" json:"phone"`
	Email       string    `gorm:"column:email;type:varchar(150)" json:"email"`
	Address     string    `gorm:"column:address;type:varchar(255)" json:"address"`
	// 雇佣记录
	Employer        string     `gorm:"column:employer;type:varchar(150)" json:"employer"`
	EmployeeNumber  string     `gorm:"column:employee_number;type:varchar(30)" json:"employee_number"`
	EmploymentStart time.Time  `gorm:"column:employment_start;not null" json:"employment_start"`
	EmploymentEnd   *time.Time `gorm:"column:employment_end" json:"employment_end,omitempty"`
	LastSalary      Money      `gorm:"column:last_salary;not null;default:0" json:"last_salary"`
	// 收款银行
	BankName          string          `gorm:"column:bank_name;type:varchar(100)" json:"bank_name"`
	BankBranch        string          `gorm:"column:bank_branch;type:varchar(100)" json:"bank_branch"`
	BankAccountNumber string          `gorm:"column:bank_account_number;type:varchar(40)" json:"bank_account_number"`
	Status            PensionerStatus `gorm:"column:status;type:varchar(30);index;not null" json:"status"`
}

func (Pensioner) TableName() string { return TablePensioners }

func (p *Pensioner) BeforeCreate(tx *gorm.DB) error { return CheckEnums(p.Gender, p.Status) }

// User 登录用户，领取人用户关联一个 Pensioner，工作人员不关联
type User struct {
	gorm.Model
	Username     string     `gorm:"column:username;type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(100);not null" json:"-"`
	Email        string     `gorm:"column:email;type:varchar(150)" json:"email"`
	Role         UserRole   `gorm:"column:role;type:varchar(30);not null" json:"role"`
	IsActive     bool       `gorm:"column:is_active;not null" json:"is_active"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	PensionerID  *uint      `gorm:"column:pensioner_id;index" json:"pensioner_id,omitempty"`
	Pensioner    *Pensioner `gorm:"foreignKey:PensionerID" json:"-"`
}

func (User) TableName() string { return TableUsers }

func (u *User) BeforeCreate(tx *gorm.DB) error { return CheckEnums(u.Role) }

// Benefit 津贴
type Benefit struct {
	gorm.Model
	PensionerID        uint        `gorm:"column:pensioner_id;index;not null" json:"pensioner_id"`
	Pensioner          *Pensioner  `gorm:"foreignKey:PensionerID" json:"-"`
	BenefitType        BenefitType `gorm:"column:benefit_type;type:varchar(20);not null" json:"benefit_type"`
	MonthlyAmount      Money       `gorm:"column:monthly_amount;not null" json:"monthly_amount"`
	AnnualAmount       Money       `gorm:"column:annual_amount;not null" json:"annual_amount"`
	TotalContributions Money       `gorm:"column:total_contributions;not null;default:0" json:"total_contributions"`
	StartDate          time.Time   `gorm:"column:start_date;not null" json:"start_date"`
	IsActive           bool        `gorm:"column:is_active;not null" json:"is_active"`
}

func (Benefit) TableName() string { return TableBenefits }

func (b *Benefit) BeforeCreate(tx *gorm.DB) error { return CheckEnums(b.BenefitType) }

// Payment 津贴支付记录
type Payment struct {
	gorm.Model
	PensionerID   uint          `gorm:"column:pensioner_id;index;not null" json:"pensioner_id"`
	Pensioner     *Pensioner    `gorm:"foreignKey:PensionerID" json:"-"`
	BenefitID     uint          `gorm:"column:benefit_id;index;not null" json:"benefit_id"`
	Benefit       *Benefit      `gorm:"foreignKey:BenefitID" json:"-"`
	Amount        Money         `gorm:"column:amount;not null" json:"amount"`
	PaymentDate   time.Time     `gorm:"column:payment_date;index;not null" json:"payment_date"`
	Status        PaymentStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	PaymentMethod PaymentMethod `gorm:"column:payment_method;type:varchar(20);not null" json:"payment_method"`
	Reference     string        `gorm:"column:reference;type:varchar(40);uniqueIndex;not null" json:"reference"`
}

func (Payment) TableName() string { return TablePayments }

func (p *Payment) BeforeCreate(tx *gorm.DB) error { return CheckEnums(p.Status, p.PaymentMethod) }

// VoluntarySavingsAccount 自愿储蓄账户
type VoluntarySavingsAccount struct {
	gorm.Model
	PensionerID        uint                 `gorm:"column:pensioner_id;index;not null" json:"pensioner_id"`
	Pensioner          *Pensioner           `gorm:"foreignKey:PensionerID" json:"-"`
	AccountNumber      string               `gorm:"column:account_number;type:varchar(20);uniqueIndex;not null" json:"account_number"`
	Balance            Money                `gorm:"column:balance;not null;default:0" json:"balance"`
	AvailableBalance   Money                `gorm:"column:available_balance;not null;default:0" json:"available_balance"`
	TotalContributions Money                `gorm:"column:total_contributions;not null;default:0" json:"total_contributions"`
	TotalWithdrawals   Money                `gorm:"column:total_withdrawals;not null;default:0" json:"total_withdrawals"`
	MonthlyLimit       Money                `gorm:"column:monthly_limit;not null;default:0" json:"monthly_limit"`
	MinimumBalance     Money                `gorm:"column:minimum_balance;not null;default:0" json:"minimum_balance"`
	Status             SavingsAccountStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	AutoSaveEnabled    bool                 `gorm:"column:auto_save_enabled;not null" json:"auto_save_enabled"`
	AutoSaveAmount     Money                `gorm:"column:auto_save_amount;not null;default:0" json:"auto_save_amount"`
	AutoSaveDay        int                  `gorm:"column:auto_save_day;not null;default:0" json:"auto_save_day"`
	OpenedAt           time.Time            `gorm:"column:opened_at;not null" json:"opened_at"`
}

func (VoluntarySavingsAccount) TableName() string { return TableSavingsAccounts }

func (a *VoluntarySavingsAccount) BeforeCreate(tx *gorm.DB) error { return CheckEnums(a.Status) }

// SavingsTransaction 储蓄账户交易流水
type SavingsTransaction struct {
	gorm.Model
	AccountID         uint                     `gorm:"column:account_id;index;not null" json:"account_id"`
	Account           *VoluntarySavingsAccount `gorm:"foreignKey:AccountID" json:"-"`
	TransactionType   TransactionType          `gorm:"column:transaction_type;type:varchar(20);not null" json:"transaction_type"`
	Amount            Money                    `gorm:"column:amount;not null" json:"amount"`
	Fee               Money                    `gorm:"column:fee;not null;default:0" json:"fee"`
	BalanceBefore     Money                    `gorm:"column:balance_before;not null" json:"balance_before"`
	BalanceAfter      Money                    `gorm:"column:balance_after;not null" json:"balance_after"`
	Status            TransactionStatus        `gorm:"column:status;type:varchar(20);not null" json:"status"`
	ReferenceNumber   string                   `gorm:"column:reference_number;type:varchar(20);uniqueIndex;not null" json:"reference_number"`
	ExternalReference string                   `gorm:"column:external_reference;type:varchar(50)" json:"external_reference"`
	Description       string                   `gorm:"column:description;type:varchar(255)" json:"description"`
	TransactionDate   time.Time                `gorm:"column:transaction_date;not null" json:"transaction_date"`
}

func (SavingsTransaction) TableName() string { return TableSavingsTransactions }

func (t *SavingsTransaction) BeforeCreate(tx *gorm.DB) error {
	return CheckEnums(t.TransactionType, t.Status)
}

// MidtermAccessApplication 储蓄中期支取申请
type MidtermAccessApplication struct {
	gorm.Model
	PensionerID       uint                     `gorm:"column:pensioner_id;index;not null" json:"pensioner_id"`
	Pensioner         *Pensioner               `gorm:"foreignKey:PensionerID" json:"-"`
	AccountID         uint                     `gorm:"column:account_id;index;not null" json:"account_id"`
	Account           *VoluntarySavingsAccount `gorm:"foreignKey:AccountID" json:"-"`
	ApplicationNumber string                   `gorm:"column:application_number;type:varchar(20);uniqueIndex;not null" json:"application_number"`
	AmountRequested   Money                    `gorm:"column:amount_requested;not null" json:"amount_requested"`
	Reason            string                   `gorm:"column:reason;type:varchar(500);not null" json:"reason"`
	Status            ApplicationStatus        `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	SubmittedAt       *time.Time               `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
}

func (MidtermAccessApplication) TableName() string { return TableApplications }

func (a *MidtermAccessApplication) BeforeCreate(tx *gorm.DB) error { return CheckEnums(a.Status) }

// ApprovalWorkflowStep 多级审批中的一步
type ApprovalWorkflowStep struct {
	gorm.Model
	ApplicationID uint                      `gorm:"column:application_id;index;not null" json:"application_id"`
	Application   *MidtermAccessApplication `gorm:"foreignKey:ApplicationID" json:"-"`
	Level         WorkflowLevel             `gorm:"column:level;type:varchar(10);not null" json:"level"`
	ApproverRole  ApproverRole              `gorm:"column:approver_role;type:varchar(30);not null" json:"approver_role"`
	Status        WorkflowStepStatus        `gorm:"column:status;type:varchar(20);not null" json:"status"`
	AssignedAt    time.Time                 `gorm:"column:assigned_at;not null" json:"assigned_at"`
	DecidedAt     *time.Time                `gorm:"column:decided_at" json:"decided_at,omitempty"`
	Decision      string                    `gorm:"column:decision;type:varchar(20)" json:"decision"`
	Comments      string                    `gorm:"column:comments;type:varchar(500)" json:"comments"`
}

func (ApprovalWorkflowStep) TableName() string { return TableWorkflowSteps }

func (s *ApprovalWorkflowStep) BeforeCreate(tx *gorm.DB) error {
	return CheckEnums(s.Level, s.ApproverRole, s.Status)
}

// SupportingDocument 申请的证明材料
type SupportingDocument struct {
	gorm.Model
	ApplicationID      uint                      `gorm:"column:application_id;index;not null" json:"application_id"`
	Application        *MidtermAccessApplication `gorm:"foreignKey:ApplicationID" json:"-"`
	DocumentType       DocumentType              `gorm:"column:document_type;type:varchar(30);not null" json:"document_type"`
	FileName           string                    `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	FilePath           string                    `gorm:"column:file_path;type:varchar(500);not null" json:"file_path"`
	FileSize           int64                     `gorm:"column:file_size;not null" json:"file_size"`
	MimeType           string                    `gorm:"column:mime_type;type:varchar(100);not null" json:"mime_type"`
	VerificationStatus VerificationStatus        `gorm:"column:verification_status;type:varchar(20);not null" json:"verification_status"`
	VerifiedAt         *time.Time                `gorm:"column:verified_at" json:"verified_at,omitempty"`
}

func (SupportingDocument) TableName() string { return TableDocuments }

func (d *SupportingDocument) BeforeCreate(tx *gorm.DB) error {
	return CheckEnums(d.DocumentType, d.VerificationStatus)
}

// CoreModels 核心业务表模型，按依赖排序
func CoreModels() []any {
	return []any{
		&Pensioner{},
		&User{},
		&Benefit{},
		&Payment{},
		&VoluntarySavingsAccount{},
		&SavingsTransaction{},
	}
}

// MidtermModels 中期支取模块的表模型
func MidtermModels() []any {
	return []any{
		&MidtermAccessApplication{},
		&ApprovalWorkflowStep{},
		&SupportingDocument{},
	}
}

// AllModels 全部表模型，按依赖排序
func AllModels() []any {
	return append(CoreModels(), MidtermModels()...)
}
