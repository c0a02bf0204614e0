package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PensionNumber 养老金编号：PN + 6 位序号
func PensionNumber(ordinal int) string {
	return fmt.Sprintf("PN%06d", ordinal)
}

// SavingsAccountNumber 储蓄账号：VS + 所属人 uuid 前 6 位（大写，去掉连字符）+ 2 位序号
func SavingsAccountNumber(ownerPublicID string, ordinal int) string {
	key := strings.ToUpper(strings.ReplaceAll(ownerPublicID, "-", "")) + "000000"
	return fmt.Sprintf("VS%s%02d", key[:6], ordinal)
}

// AccountOrdinal 从储蓄账号末两位解析账户序号
func AccountOrdinal(accountNumber string) (int, error) {
	if len(accountNumber) != 10 || !strings.HasPrefix(accountNumber, "VS") {
		return 0, fmt.Errorf("malformed savings account number %q", accountNumber)
	}
	n, err := strconv.Atoi(accountNumber[8:])
	if err != nil {
		return 0, fmt.Errorf("malformed savings account number %q: %w", accountNumber, err)
	}
	return n, nil
}

// TransactionSequence 交易流水序号 = 账户序号*10 + 交易序号
func TransactionSequence(accountOrdinal, index int) int {
	return accountOrdinal*10 + index
}

// TransactionReference 交易流水号：TXN + 8 位序号
func TransactionReference(seq int) string {
	return fmt.Sprintf("TXN%08d", seq)
}

// PaymentReference 支付参考号：PAY-年月-4 位津贴序号
func PaymentReference(paymentDate time.Time, benefitOrdinal int) string {
	return fmt.Sprintf("PAY-%s-%04d", paymentDate.Format("200601"), benefitOrdinal)
}

// ApplicationNumber 申请编号：MTA + 年月日 + 3 位序号
func ApplicationNumber(submitted time.Time, ordinal int) string {
	return fmt.Sprintf("MTA%s%03d", submitted.Format("20060102"), ordinal)
}

// DocumentFileName 证明材料文件名
func DocumentFileName(applicationNumber string, docType DocumentType) string {
	return fmt.Sprintf("%s_%s.pdf", applicationNumber, strings.ToLower(string(docType)))
}

// MonthsAgo 以 now 为基准向前偏移 n 个月
// 目标月份天数不足时取该月最后一天，保证每个月份恰好出现一次
func MonthsAgo(now time.Time, n int) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
	t := first.AddDate(0, -n, 0)
	lastDay := t.AddDate(0, 1, -1).Day()
	return t.AddDate(0, 0, min(now.Day(), lastDay)-1)
}

// DaysAgo 以 now 为基准向前偏移 n 天
func DaysAgo(now time.Time, n int) time.Time {
	return now.AddDate(0, 0, -n)
}
