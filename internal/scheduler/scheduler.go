package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"BillSentinel/internal/budget"
	"BillSentinel/internal/engine"
	"BillSentinel/internal/model"
	"BillSentinel/internal/notifier"
	"BillSentinel/internal/store"
)

// Scheduler manages all cron tasks and the Telegram command surface.
// Reschedule proposals are held in memory until the user confirms them;
// nothing is persisted before confirmation.
type Scheduler struct {
	Cron           *cron.Cron
	Store          store.Store
	Budget         *budget.Manager
	Notifier       *notifier.TelegramNotifier
	Policy         engine.Policy
	Categories     model.CategoryTable
	RescheduleDays int
	Ctx            context.Context

	mu            sync.Mutex
	pending       []model.RescheduleProposal
	lastScheduled []int64
	lastTotal     decimal.Decimal
	hasLastRun    bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, st store.Store, bm *budget.Manager, tn *notifier.TelegramNotifier, policy engine.Policy, categories model.CategoryTable, rescheduleDays int) *Scheduler {
	return &Scheduler{
		Cron:           cron.New(cron.WithSeconds()),
		Store:          st,
		Budget:         bm,
		Notifier:       tn,
		Policy:         policy,
		Categories:     categories,
		RescheduleDays: rescheduleDays,
		Ctx:            ctx,
	}
}

// RegisterAll registers the daily advice, weekly overdue digest, and monthly
// budget replenish tasks.
func (s *Scheduler) RegisterAll(dailyCron, overdueCron, monthlyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(overdueCron, s.overdueTask); err != nil {
		return fmt.Errorf("register overdue task: %w", err)
	}
	if _, err := s.Cron.AddFunc(monthlyCron, s.monthlyTask); err != nil {
		return fmt.Errorf("register monthly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunDailyNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily scheduling task")
	today := time.Now()

	obligations, err := s.Store.ListOutstanding()
	if err != nil {
		log.Printf("[ERROR] daily list obligations: %v", err)
		s.trySend(fmt.Sprintf("❌ 讀取帳單失敗: %v", err))
		return
	}

	available := s.Budget.Available()
	result := engine.ClassifyAndAllocate(obligations, available, today, s.Policy, s.Categories)

	s.mu.Lock()
	s.lastScheduled = s.lastScheduled[:0]
	for _, item := range result.ScheduledItems {
		s.lastScheduled = append(s.lastScheduled, item.Obligation.ID)
	}
	s.lastTotal = result.ScheduledTotal
	s.hasLastRun = true
	s.mu.Unlock()

	s.trySend(notifier.FormatScheduleReport(result, today))

	if err := s.Store.RecordRun(&store.RunRecord{
		Budget:          result.Budget,
		TotalNeeded:     result.TotalNeeded,
		ScheduledTotal:  result.ScheduledTotal,
		RemainingBudget: result.RemainingBudget,
		ScheduledCount:  len(result.ScheduledItems),
		DeferredCount:   len(result.DeferredItems),
		CriticalCount:   len(result.CriticalItems),
		OverBudget:      result.IsOverBudget,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}

func (s *Scheduler) overdueTask() {
	log.Println("[INFO] running overdue digest task")
	digest, err := s.overdueDigest()
	if err != nil {
		log.Printf("[ERROR] overdue digest: %v", err)
		return
	}
	s.trySend(digest)
}

func (s *Scheduler) monthlyTask() {
	log.Println("[INFO] running monthly budget replenish")
	now := time.Now()
	s.Budget.MonthlyReplenish(now)
	state := s.Budget.GetState()
	s.trySend("📅 <b>月度預算已補充</b>\n\n" + notifier.FormatBudgetStatus(&state))
}

func (s *Scheduler) overdueDigest() (string, error) {
	today := time.Now()
	overdue, err := s.Store.ListOverdue(today)
	if err != nil {
		return "", fmt.Errorf("list overdue: %w", err)
	}
	items := make([]model.PriorityAssessment, 0, len(overdue))
	for _, o := range overdue {
		items = append(items, engine.Classify(o, today, s.Policy, s.Categories))
	}
	return notifier.FormatOverdueDigest(items, today), nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "查看排程", "/schedule":
		s.dailyTask()
		return ""

	case "查看逾期", "/overdue":
		digest, err := s.overdueDigest()
		if err != nil {
			return fmt.Sprintf("❌ 讀取逾期帳單失敗: %v", err)
		}
		return digest

	case "查看預算", "/budget":
		state := s.Budget.GetState()
		return notifier.FormatBudgetStatus(&state)

	case "逾期順延", "/reschedule":
		return s.proposeReschedule()

	case "確認順延", "/confirm":
		return s.confirmReschedule()

	case "確認付款", "/pay":
		return s.commitPayments()

	default:
		return "可用命令:\n• 查看排程\n• 查看逾期\n• 查看預算\n• 逾期順延 → 確認順延\n• 確認付款"
	}
}

func (s *Scheduler) proposeReschedule() string {
	today := time.Now()
	overdue, err := s.Store.ListOverdue(today)
	if err != nil {
		return fmt.Sprintf("❌ 讀取逾期帳單失敗: %v", err)
	}
	proposals := engine.ProposeReschedule(overdue, today, s.RescheduleDays)

	s.mu.Lock()
	s.pending = proposals
	s.mu.Unlock()

	return notifier.FormatRescheduleProposals(proposals)
}

func (s *Scheduler) confirmReschedule() string {
	s.mu.Lock()
	proposals := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(proposals) == 0 {
		return "沒有待確認的順延提案，請先使用「逾期順延」"
	}
	if err := s.Store.ApplyReschedules(proposals); err != nil {
		return fmt.Sprintf("❌ 套用順延失敗: %v", err)
	}
	return fmt.Sprintf("✅ 已順延 %d 筆帳單", len(proposals))
}

func (s *Scheduler) commitPayments() string {
	s.mu.Lock()
	ids := make([]int64, len(s.lastScheduled))
	copy(ids, s.lastScheduled)
	total := s.lastTotal
	hasRun := s.hasLastRun
	s.hasLastRun = false
	s.lastScheduled = nil
	s.mu.Unlock()

	if !hasRun {
		return "沒有可確認的排程，請先使用「查看排程」"
	}
	if len(ids) == 0 {
		return "最近一次排程沒有可支付項目"
	}
	if err := s.Store.MarkPaid(ids); err != nil {
		return fmt.Sprintf("❌ 標記付款失敗: %v", err)
	}
	spent := s.Budget.Commit(total)
	return fmt.Sprintf("✅ 已支付 %d 筆帳單，合計 $%s", len(ids), spent.StringFixed(2))
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
