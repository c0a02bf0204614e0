package application

import (
	"time"

	"github.com/wyfcoding/pensiondb/internal/pension/domain"
)

// 固定的两组明文密码，写库前经过 bcrypt 处理
const (
	StaffPassword     = "Staff@2024!"
	PensionerPassword = "Pensioner@2024!"
)

// NoPensioner 用户不关联领取人
const NoPensioner = -1

// PensionerFixture 领取人测试数据
type PensionerFixture struct {
	NationalID        string
	FirstName         string
	LastName          string
	DateOfBirth       time.Time
	Gender            domain.Gender
	Phone             string
	Email             string
	Address           string
	Employer          string
	EmployeeNumber    string
	EmploymentStart   time.Time
	EmploymentEnd     *time.Time
	LastSalary        domain.Money
	BankName          string
	BankBranch        string
	BankAccountNumber string
	Status            domain.PensionerStatus
	Benefits          []BenefitFixture
}

// BenefitFixture 津贴测试数据
type BenefitFixture struct {
	Type               domain.BenefitType
	MonthlyAmount      domain.Money
	TotalContributions domain.Money
	StartDate          time.Time
	Active             bool
}

// UserFixture 登录用户测试数据
type UserFixture struct {
	Username string
	Email    string
	Password string
	Role     domain.UserRole
	Active   bool
	// 关联的领取人下标，NoPensioner 表示工作人员
	PensionerIndex int
}

// SavingsFixture 储蓄账户测试数据
type SavingsFixture struct {
	PensionerIndex  int
	MonthlyLimit    domain.Money
	MinimumBalance  domain.Money
	AutoSaveEnabled bool
	AutoSaveAmount  domain.Money
	AutoSaveDay     int
}

// ApplicationFixture 中期支取申请测试数据
type ApplicationFixture struct {
	PensionerIndex  int
	AmountRequested domain.Money
	Reason          string
	Status          domain.ApplicationStatus
}

// WorkflowStepFixture 审批步骤测试数据，按层级顺序
type WorkflowStepFixture struct {
	Level    domain.WorkflowLevel
	Role     domain.ApproverRole
	Status   domain.WorkflowStepStatus
	Decision string
	Comments string
}

// DocumentFixture 证明材料测试数据
type DocumentFixture struct {
	Type     domain.DocumentType
	FileSize int64
	MimeType string
	Status   domain.VerificationStatus
}

// FixtureSet 一整套测试数据
type FixtureSet struct {
	Pensioners []PensionerFixture
	Users      []UserFixture
	// seed 时创建的储蓄账户
	Savings []SavingsFixture
	// topup 时为第二个领取人补建的储蓄账户
	TopUpSavings SavingsFixture
	Applications []ApplicationFixture
	// topup 时为第一条申请补建的审批步骤和材料
	WorkflowSteps []WorkflowStepFixture
	Documents     []DocumentFixture
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// DefaultFixtures 默认测试数据
func DefaultFixtures() FixtureSet {
	return FixtureSet{
		Pensioners: []PensionerFixture{
			{
				NationalID:        "63-123456-A-47",
				FirstName:         "Tendai",
				LastName:          "Moyo",
				DateOfBirth:       date(1958, time.March, 14),
				Gender:            domain.GenderMale,
				Phone:             "+263771234567",
				Email:             "tendai.moyo@example.com",
				Address:           "12 Samora Machel Ave, Harare",
				Employer:          "Ministry of Education",
				EmployeeNumber:    "EMP-004512",
				EmploymentStart:   date(1982, time.January, 10),
				EmploymentEnd:     datePtr(2018, time.March, 31),
				LastSalary:        domain.MustParseMoney("4850.00"),
				BankName:          "CBZ Bank",
				BankBranch:        "Harare Central",
				BankAccountNumber: "01234567890123",
				Status:            domain.PensionerActive,
				Benefits: []BenefitFixture{
					{Type: domain.BenefitRetirement, MonthlyAmount: domain.MustParseMoney("1850.00"), TotalContributions: domain.MustParseMoney("186400.00"), StartDate: date(2018, time.April, 1), Active: true},
					{Type: domain.BenefitMedical, MonthlyAmount: domain.MustParseMoney("150.00"), TotalContributions: domain.MustParseMoney("0"), StartDate: date(2020, time.January, 1), Active: true},
				},
			},
			{
				NationalID:        "08-765432-B-12",
				FirstName:         "Rudo",
				LastName:          "Chikwanha",
				DateOfBirth:       date(1961, time.August, 2),
				Gender:            domain.GenderFemale,
				Phone:             "+263772345678",
				Email:             "rudo.chikwanha@example.com",
				Address:           "45 Jason Moyo St, Bulawayo",
				Employer:          "National Railways",
				EmployeeNumber:    "NRZ-11873",
				EmploymentStart:   date(1985, time.June, 1),
				EmploymentEnd:     datePtr(2021, time.August, 31),
				LastSalary:        domain.MustParseMoney("3920.50"),
				BankName:          "Stanbic Bank",
				BankBranch:        "Bulawayo Main",
				BankAccountNumber: "91400123456",
				Status:            domain.PensionerActive,
				Benefits: []BenefitFixture{
					{Type: domain.BenefitRetirement, MonthlyAmount: domain.MustParseMoney("1420.75"), TotalContributions: domain.MustParseMoney("142310.00"), StartDate: date(2021, time.September, 1), Active: true},
				},
			},
			{
				NationalID:      "42-998877-C-03",
				FirstName:       "Farai",
				LastName:        "Ndlovu",
				DateOfBirth:     date(1970, time.November, 23),
				Gender:          domain.GenderMale,
				Phone:           "+263773456789",
				Address:         "7 Main St, Mutare",
				Employer:        "Mutare City Council",
				EmployeeNumber:  "MCC-2291",
				EmploymentStart: date(1995, time.February, 15),
				LastSalary:      domain.MustParseMoney("2600.00"),
				Status:          domain.PensionerPendingVerification,
				Benefits: []BenefitFixture{
					{Type: domain.BenefitDisability, MonthlyAmount: domain.MustParseMoney("980.00"), TotalContributions: domain.MustParseMoney("61250.00"), StartDate: date(2023, time.May, 1), Active: false},
				},
			},
		},
		Users: []UserFixture{
			{Username: "admin", Email: "admin@pension.local", Password: StaffPassword, Role: domain.RoleAdmin, Active: true, PensionerIndex: NoPensioner},
			{Username: "officer", Email: "officer@pension.local", Password: StaffPassword, Role: domain.RolePensionOfficer, Active: true, PensionerIndex: NoPensioner},
			{Username: "supervisor", Email: "supervisor@pension.local", Password: StaffPassword, Role: domain.RoleSupervisor, Active: true, PensionerIndex: NoPensioner},
			{Username: "finance", Email: "finance@pension.local", Password: StaffPassword, Role: domain.RoleFinanceManager, Active: true, PensionerIndex: NoPensioner},
			{Username: "tmoyo", Email: "tendai.moyo@example.com", Password: PensionerPassword, Role: domain.RolePensioner, Active: true, PensionerIndex: 0},
			{Username: "rchikwanha", Email: "rudo.chikwanha@example.com", Password: PensionerPassword, Role: domain.RolePensioner, Active: true, PensionerIndex: 1},
		},
		Savings: []SavingsFixture{
			{
				PensionerIndex:  0,
				MonthlyLimit:    domain.MustParseMoney("5000.00"),
				MinimumBalance:  domain.MustParseMoney("100.00"),
				AutoSaveEnabled: true,
				AutoSaveAmount:  domain.MustParseMoney("200.00"),
				AutoSaveDay:     25,
			},
		},
		TopUpSavings: SavingsFixture{
			PensionerIndex: 1,
			MonthlyLimit:   domain.MustParseMoney("3000.00"),
			MinimumBalance: domain.MustParseMoney("50.00"),
		},
		Applications: []ApplicationFixture{
			{
				PensionerIndex:  0,
				AmountRequested: domain.MustParseMoney("1200.00"),
				Reason:          "Medical expenses for surgery",
				Status:          domain.ApplicationUnderReview,
			},
		},
		WorkflowSteps: []WorkflowStepFixture{
			{Level: domain.Level1, Role: domain.ApproverPensionOfficer, Status: domain.StepApproved, Decision: "APPROVED", Comments: "Documents verified, hardship confirmed"},
			{Level: domain.Level2, Role: domain.ApproverSupervisor, Status: domain.StepPending},
			{Level: domain.Level3, Role: domain.ApproverFinanceManager, Status: domain.StepPending},
		},
		Documents: []DocumentFixture{
			{Type: domain.DocNationalID, FileSize: 245760, MimeType: "application/pdf", Status: domain.VerificationVerified},
			{Type: domain.DocMedicalReport, FileSize: 512000, MimeType: "application/pdf", Status: domain.VerificationVerified},
			{Type: domain.DocBankStatement, FileSize: 180224, MimeType: "application/pdf", Status: domain.VerificationPending},
		},
	}
}
