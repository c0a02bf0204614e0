package application

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/wyfcoding/pensiondb/internal/pension/domain"
)

// console 控制台输出，记录第一次写入错误
type console struct {
	w   io.Writer
	err error
}

func (c *console) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.err = err
	return n, err
}

func (c *console) section(title string) {
	fmt.Fprintf(c, "\n== %s ==\n", title)
}

func (c *console) line(format string, args ...any) {
	fmt.Fprintf(c, format+"\n", args...)
}

// table 无边框、不折行的表格
func (c *console) table(header []string, rows [][]string) {
	t := tablewriter.NewWriter(c)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.SetBorder(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.AppendBulk(rows)
	t.Render()
}

// formatMoney 千分位金额，固定两位小数
func formatMoney(m domain.Money) string {
	d := m.Decimal()
	whole := d.Truncate(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	frac := d.Sub(whole).Abs().StringFixed(2)
	return sign + humanize.Comma(whole.Abs().IntPart()) + frac[1:]
}

func formatCount[T int | int64](n T) string {
	return humanize.Comma(int64(n))
}
