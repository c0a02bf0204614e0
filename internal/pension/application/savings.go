package application

import (
	"fmt"
	"time"

	"github.com/wyfcoding/pensiondb/internal/pension/domain"
)

const (
	// 第 i 笔交易金额 = i * txnUnit
	txnUnit = domain.Money(50000)
	// 手续费百分比
	txnFeePct = 1
	// 每隔几笔出现一次取款
	withdrawalEvery = 4
	// 交易之间相隔的天数
	txnSpacingDays = 3
)

// savingsPlan 一个储蓄账户及其交易流水的确定性生成结果
type savingsPlan struct {
	account      *domain.VoluntarySavingsAccount
	transactions []*domain.SavingsTransaction
}

// planSavings 生成账户和 n 笔交易，余额按顺序前后衔接
// 账户主键在插入后才可知，交易的 AccountID 需由调用方回填
func planSavings(owner *domain.Pensioner, f SavingsFixture, ordinal, n int, now time.Time) savingsPlan {
	account := &domain.VoluntarySavingsAccount{
		PensionerID:     owner.ID,
		AccountNumber:   domain.SavingsAccountNumber(owner.PublicID, ordinal),
		MonthlyLimit:    f.MonthlyLimit,
		MinimumBalance:  f.MinimumBalance,
		Status:          domain.SavingsActive,
		AutoSaveEnabled: f.AutoSaveEnabled,
		AutoSaveAmount:  f.AutoSaveAmount,
		AutoSaveDay:     f.AutoSaveDay,
		OpenedAt:        domain.DaysAgo(now, (n+1)*txnSpacingDays),
	}

	var balance domain.Money
	txns := make([]*domain.SavingsTransaction, 0, n)
	for i := 1; i <= n; i++ {
		amount := txnUnit.Times(i)
		fee := amount.Percent(txnFeePct)

		txnType := domain.TxnDeposit
		after := balance + amount - fee
		if i%withdrawalEvery == 0 {
			txnType = domain.TxnWithdrawal
			after = balance - amount - fee
		}

		txns = append(txns, &domain.SavingsTransaction{
			TransactionType:   txnType,
			Amount:            amount,
			Fee:               fee,
			BalanceBefore:     balance,
			BalanceAfter:      after,
			Status:            domain.TxnCompleted,
			ReferenceNumber:   domain.TransactionReference(domain.TransactionSequence(ordinal, i)),
			ExternalReference: fmt.Sprintf("%s-%02d", account.AccountNumber, i),
			Description:       fmt.Sprintf("%s #%d", describe(txnType), i),
			TransactionDate:   domain.DaysAgo(now, (n-i)*txnSpacingDays),
		})

		if txnType == domain.TxnWithdrawal {
			account.TotalWithdrawals += amount
		} else {
			account.TotalContributions += amount
		}
		balance = after
	}

	account.Balance = balance
	account.AvailableBalance = balance - account.MinimumBalance
	if account.AvailableBalance < 0 {
		account.AvailableBalance = 0
	}
	return savingsPlan{account: account, transactions: txns}
}

func describe(t domain.TransactionType) string {
	switch t {
	case domain.TxnWithdrawal:
		return "Voluntary savings withdrawal"
	default:
		return "Voluntary savings contribution"
	}
}
