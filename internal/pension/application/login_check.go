package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/wyfcoding/pensiondb/internal/pension/domain"
	"golang.org/x/crypto/bcrypt"
)

// LoginStatus 测试账号的核对结果
type LoginStatus string

const (
	LoginOK       LoginStatus = "OK"
	LoginMismatch LoginStatus = "MISMATCH"
	LoginMissing  LoginStatus = "MISSING"
	LoginInactive LoginStatus = "INACTIVE"
)

// LoginCheck 单个测试账号的核对结果
type LoginCheck struct {
	Username  string
	Role      domain.UserRole
	Pensioner string
	Status    LoginStatus
}

// LoginReport 可登录用户列表及测试账号核对结果
type LoginReport struct {
	Users  []domain.LoginUser
	Checks []LoginCheck
}

// OK 全部测试账号均可登录
func (r *LoginReport) OK() bool {
	for _, c := range r.Checks {
		if c.Status != LoginOK {
			return false
		}
	}
	return true
}

// LoginChecker 用存储的 bcrypt 哈希核对测试账号的明文密码
type LoginChecker struct {
	repo     domain.ReportRepository
	fixtures []UserFixture
	logger   *slog.Logger
}

// NewLoginChecker 创建 LoginChecker
func NewLoginChecker(repo domain.ReportRepository, fixtures []UserFixture, logger *slog.Logger) *LoginChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginChecker{repo: repo, fixtures: fixtures, logger: logger}
}

// Check 仅数据库错误返回 error，核对不通过体现在结果中
func (c *LoginChecker) Check(ctx context.Context) (*LoginReport, error) {
	users, err := c.repo.LoginUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	byName := make(map[string]domain.LoginUser, len(users))
	report := &LoginReport{}
	for _, u := range users {
		byName[u.Username] = u
		if u.IsActive && u.PasswordHash != "" {
			report.Users = append(report.Users, u)
		}
	}

	for _, f := range c.fixtures {
		check := LoginCheck{Username: f.Username, Role: f.Role}
		u, ok := byName[f.Username]
		switch {
		case !ok:
			check.Status = LoginMissing
		case !u.IsActive:
			check.Status = LoginInactive
			check.Role = u.Role
		default:
			check.Role = u.Role
			check.Pensioner = u.PensionerName()
			check.Status = verify(u.PasswordHash, f.Password)
		}
		if check.Status != LoginOK {
			c.logger.WarnContext(ctx, "fixture login failed", "username", f.Username, "status", check.Status)
		}
		report.Checks = append(report.Checks, check)
	}
	return report, nil
}

// verify 哈希格式不合法也按不匹配处理
func verify(hash, plain string) LoginStatus {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return LoginMismatch
	}
	return LoginOK
}

// Render 输出用户列表与核对结果
func (r *LoginReport) Render(w io.Writer) error {
	c := &console{w: w}

	c.section("Login-capable users")
	rows := make([][]string, 0, len(r.Users))
	for _, u := range r.Users {
		pensioner := "-"
		if u.PensionNumber != nil {
			pensioner = *u.PensionNumber + " " + u.PensionerName()
		}
		rows = append(rows, []string{fmt.Sprint(u.ID), u.Username, string(u.Role), pensioner})
	}
	c.table([]string{"ID", "USERNAME", "ROLE", "PENSIONER"}, rows)

	c.section("Fixture credentials")
	rows = nil
	for _, check := range r.Checks {
		rows = append(rows, []string{check.Username, string(check.Role), string(check.Status)})
	}
	c.table([]string{"USERNAME", "ROLE", "RESULT"}, rows)
	return c.err
}
