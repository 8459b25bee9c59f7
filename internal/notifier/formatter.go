package notifier

import (
	"fmt"
	"strings"
	"time"

	"BillSentinel/internal/model"
)

var levelBadges = map[model.PriorityLevel]string{
	model.PriorityCritical: "🔴",
	model.PriorityHigh:     "🟠",
	model.PriorityMedium:   "🟡",
	model.PriorityLow:      "🟢",
}

// FormatScheduleReport formats a scheduling result into a Telegram message.
func FormatScheduleReport(result *model.SchedulingResult, today time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📋 <b>BillSentinel 排程建議</b> | %s\n\n", today.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("本期預算: $%s\n", result.Budget.StringFixed(2)))
	b.WriteString(fmt.Sprintf("待付總額: $%s\n", result.TotalNeeded.StringFixed(2)))
	if result.IsOverBudget {
		b.WriteString("⚠️ 待付總額超出預算\n")
	}
	b.WriteString("\n")

	if len(result.ScheduledItems) > 0 {
		b.WriteString("💰 <b>建議本期支付:</b>\n")
		for _, item := range result.ScheduledItems {
			writeItemLine(&b, item)
		}
	} else {
		b.WriteString("💰 本期無可支付項目\n")
	}

	if len(result.DeferredItems) > 0 {
		b.WriteString("\n⏸ <b>暫緩項目:</b>\n")
		for _, item := range result.DeferredItems {
			writeItemLine(&b, item)
		}
	}

	if len(result.CriticalItems) > 0 {
		b.WriteString("\n🚨 <b>緊急項目（不論是否入排程）:</b>\n")
		for _, item := range result.CriticalItems {
			b.WriteString(fmt.Sprintf("  %s: %s\n", item.Obligation.Name, item.Reason))
		}
	}

	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("已排程合計: $%s\n", result.ScheduledTotal.StringFixed(2)))
	b.WriteString(fmt.Sprintf("預算餘額: $%s\n", result.RemainingBudget.StringFixed(2)))

	return b.String()
}

func writeItemLine(b *strings.Builder, item model.PriorityAssessment) {
	b.WriteString(fmt.Sprintf("  %s %s: $%s (%s)\n",
		levelBadges[item.Level], item.Obligation.Name,
		item.Obligation.Remaining().StringFixed(2), item.Reason))
}

// FormatOverdueDigest formats the weekly overdue summary.
func FormatOverdueDigest(items []model.PriorityAssessment, today time.Time) string {
	if len(items) == 0 {
		return fmt.Sprintf("✅ <b>逾期檢查</b> | %s\n\n目前沒有逾期帳單", today.Format("2006-01-02"))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("⏰ <b>逾期帳單</b> | %s\n\n", today.Format("2006-01-02")))
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  %s %s: $%s，%s\n",
			levelBadges[item.Level], item.Obligation.Name,
			item.Obligation.Remaining().StringFixed(2), item.Reason))
	}
	b.WriteString("\n使用「逾期順延」提出新的付款日期")
	return b.String()
}

// FormatBudgetStatus formats the current budget state for display.
func FormatBudgetStatus(state *model.BudgetState) string {
	var b strings.Builder
	b.WriteString("📦 <b>預算狀態</b>\n\n")
	b.WriteString(fmt.Sprintf("每月預算: $%s\n", state.MonthlyBudget.StringFixed(2)))
	b.WriteString(fmt.Sprintf("可用餘額: $%s\n", state.Balance.StringFixed(2)))
	b.WriteString(fmt.Sprintf("上次補充: %s\n", state.LastReplenishAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("更新時間: %s\n", state.UpdatedAt.Format("2006-01-02 15:04")))
	return b.String()
}

// FormatRescheduleProposals formats proposed new due dates awaiting confirmation.
func FormatRescheduleProposals(proposals []model.RescheduleProposal) string {
	if len(proposals) == 0 {
		return "目前沒有逾期帳單需要順延"
	}

	var b strings.Builder
	b.WriteString("📅 <b>順延提案</b>（尚未生效）\n\n")
	for _, p := range proposals {
		b.WriteString(fmt.Sprintf("  %s: $%s → %s\n",
			p.Name, p.Amount.StringFixed(2), p.ProposedDate.Format("2006-01-02")))
	}
	b.WriteString("\n回覆「確認順延」以套用")
	return b.String()
}
