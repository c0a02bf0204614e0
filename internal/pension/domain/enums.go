package domain

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidEnum 枚举字段取值不在允许集合内
var ErrInvalidEnum = errors.New("invalid enum value")

// Enum 封闭集合枚举
type Enum interface {
	Valid() bool
}

// CheckEnums 校验一组枚举值，返回第一个非法值的错误
func CheckEnums(values ...Enum) error {
	for _, v := range values {
		if !v.Valid() {
			return fmt.Errorf("%w: %T(%v)", ErrInvalidEnum, v, v)
		}
	}
	return nil
}

// Gender 性别
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

func (g Gender) Valid() bool { return slices.Contains([]Gender{GenderMale, GenderFemale}, g) }

// PensionerStatus 养老金领取人状态
type PensionerStatus string

const (
	PensionerActive              PensionerStatus = "ACTIVE"
	PensionerSuspended           PensionerStatus = "SUSPENDED"
	PensionerDeceased            PensionerStatus = "DECEASED"
	PensionerPendingVerification PensionerStatus = "PENDING_VERIFICATION"
)

// PensionerStatuses 全部合法状态
var PensionerStatuses = []PensionerStatus{PensionerActive, PensionerSuspended, PensionerDeceased, PensionerPendingVerification}

func (s PensionerStatus) Valid() bool { return slices.Contains(PensionerStatuses, s) }

// UserRole 登录用户角色
type UserRole string

const (
	RoleAdmin          UserRole = "ADMIN"
	RolePensionOfficer UserRole = "PENSION_OFFICER"
	RoleSupervisor     UserRole = "SUPERVISOR"
	RoleFinanceManager UserRole = "FINANCE_MANAGER"
	RolePensioner      UserRole = "PENSIONER"
)

// UserRoles 全部合法角色
var UserRoles = []UserRole{RoleAdmin, RolePensionOfficer, RoleSupervisor, RoleFinanceManager, RolePensioner}

func (r UserRole) Valid() bool { return slices.Contains(UserRoles, r) }

// BenefitType 津贴类型
type BenefitType string

const (
	BenefitRetirement BenefitType = "RETIREMENT"
	BenefitDisability BenefitType = "DISABILITY"
	BenefitSurvivor   BenefitType = "SURVIVOR"
	BenefitMedical    BenefitType = "MEDICAL"
)

// BenefitTypes 全部合法津贴类型
var BenefitTypes = []BenefitType{BenefitRetirement, BenefitDisability, BenefitSurvivor, BenefitMedical}

func (t BenefitType) Valid() bool { return slices.Contains(BenefitTypes, t) }

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentProcessed PaymentStatus = "PROCESSED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentReversed  PaymentStatus = "REVERSED"
)

// PaymentStatuses 全部合法支付状态
var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentProcessed, PaymentFailed, PaymentReversed}

func (s PaymentStatus) Valid() bool { return slices.Contains(PaymentStatuses, s) }

// PaymentMethod 支付方式
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	MethodCheque       PaymentMethod = "CHEQUE"
)

// PaymentMethods 全部合法支付方式
var PaymentMethods = []PaymentMethod{MethodBankTransfer, MethodMobileMoney, MethodCheque}

func (m PaymentMethod) Valid() bool { return slices.Contains(PaymentMethods, m) }

// SavingsAccountStatus 自愿储蓄账户状态
type SavingsAccountStatus string

const (
	SavingsActive SavingsAccountStatus = "ACTIVE"
	SavingsFrozen SavingsAccountStatus = "FROZEN"
	SavingsClosed SavingsAccountStatus = "CLOSED"
)

// SavingsAccountStatuses 全部合法账户状态
var SavingsAccountStatuses = []SavingsAccountStatus{SavingsActive, SavingsFrozen, SavingsClosed}

func (s SavingsAccountStatus) Valid() bool { return slices.Contains(SavingsAccountStatuses, s) }

// TransactionType 储蓄交易类型
type TransactionType string

const (
	TxnDeposit    TransactionType = "DEPOSIT"
	TxnWithdrawal TransactionType = "WITHDRAWAL"
	TxnInterest   TransactionType = "INTEREST"
	TxnFee        TransactionType = "FEE"
)

// TransactionTypes 全部合法交易类型
var TransactionTypes = []TransactionType{TxnDeposit, TxnWithdrawal, TxnInterest, TxnFee}

func (t TransactionType) Valid() bool { return slices.Contains(TransactionTypes, t) }

// TransactionStatus 储蓄交易状态
type TransactionStatus string

const (
	TxnPending   TransactionStatus = "PENDING"
	TxnCompleted TransactionStatus = "COMPLETED"
	TxnFailed    TransactionStatus = "FAILED"
	TxnReversed  TransactionStatus = "REVERSED"
)

// TransactionStatuses 全部合法交易状态
var TransactionStatuses = []TransactionStatus{TxnPending, TxnCompleted, TxnFailed, TxnReversed}

func (s TransactionStatus) Valid() bool { return slices.Contains(TransactionStatuses, s) }

// ApplicationStatus 中期支取申请状态
type ApplicationStatus string

const (
	ApplicationDraft       ApplicationStatus = "DRAFT"
	ApplicationSubmitted   ApplicationStatus = "SUBMITTED"
	ApplicationUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationApproved    ApplicationStatus = "APPROVED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
	ApplicationDisbursed   ApplicationStatus = "DISBURSED"
)

// ApplicationStatuses 全部合法申请状态
var ApplicationStatuses = []ApplicationStatus{
	ApplicationDraft, ApplicationSubmitted, ApplicationUnderReview,
	ApplicationApproved, ApplicationRejected, ApplicationDisbursed,
}

func (s ApplicationStatus) Valid() bool { return slices.Contains(ApplicationStatuses, s) }

// WorkflowLevel 审批层级
type WorkflowLevel string

const (
	Level1 WorkflowLevel = "LEVEL_1"
	Level2 WorkflowLevel = "LEVEL_2"
	Level3 WorkflowLevel = "LEVEL_3"
)

// WorkflowLevels 全部合法审批层级，按审批顺序排列
var WorkflowLevels = []WorkflowLevel{Level1, Level2, Level3}

func (l WorkflowLevel) Valid() bool { return slices.Contains(WorkflowLevels, l) }

// ApproverRole 审批人角色
type ApproverRole string

const (
	ApproverPensionOfficer ApproverRole = "PENSION_OFFICER"
	ApproverSupervisor     ApproverRole = "SUPERVISOR"
	ApproverFinanceManager ApproverRole = "FINANCE_MANAGER"
)

// ApproverRoles 全部合法审批人角色
var ApproverRoles = []ApproverRole{ApproverPensionOfficer, ApproverSupervisor, ApproverFinanceManager}

func (r ApproverRole) Valid() bool { return slices.Contains(ApproverRoles, r) }

// WorkflowStepStatus 审批步骤状态
type WorkflowStepStatus string

const (
	StepPending  WorkflowStepStatus = "PENDING"
	StepApproved WorkflowStepStatus = "APPROVED"
	StepRejected WorkflowStepStatus = "REJECTED"
	StepSkipped  WorkflowStepStatus = "SKIPPED"
)

// WorkflowStepStatuses 全部合法步骤状态
var WorkflowStepStatuses = []WorkflowStepStatus{StepPending, StepApproved, StepRejected, StepSkipped}

func (s WorkflowStepStatus) Valid() bool { return slices.Contains(WorkflowStepStatuses, s) }

// DocumentType 证明材料类型
type DocumentType string

const (
	DocNationalID       DocumentType = "NATIONAL_ID"
	DocProofOfResidence DocumentType = "PROOF_OF_RESIDENCE"
	DocBankStatement    DocumentType = "BANK_STATEMENT"
	DocMedicalReport    DocumentType = "MEDICAL_REPORT"
	DocHardshipLetter   DocumentType = "HARDSHIP_LETTER"
)

// DocumentTypes 全部合法材料类型
var DocumentTypes = []DocumentType{DocNationalID, DocProofOfResidence, DocBankStatement, DocMedicalReport, DocHardshipLetter}

func (t DocumentType) Valid() bool { return slices.Contains(DocumentTypes, t) }

// VerificationStatus 材料核验状态
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// VerificationStatuses 全部合法核验状态
var VerificationStatuses = []VerificationStatus{VerificationPending, VerificationVerified, VerificationRejected}

func (s VerificationStatus) Valid() bool { return slices.Contains(VerificationStatuses, s) }
