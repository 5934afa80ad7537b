package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"gagyebu/internal/dto"
	"gagyebu/internal/models"

	"go.uber.org/zap"
)

// amountSummer is the aggregate the statistics service needs.
type amountSummer interface {
	SumAmount(ctx context.Context, txType models.TransactionType, from, to time.Time) (float64, error)
}

type StatisticsService struct {
	transactions amountSummer
	logger       *zap.Logger
	now          func() time.Time
}

func NewStatisticsService(transactions amountSummer, logger *zap.Logger) *StatisticsService {
	return &StatisticsService{
		transactions: transactions,
		logger:       logger,
		now:          time.Now,
	}
}

// Summary computes the day and month expense/income totals around the target
// date (empty = now).
func (s *StatisticsService) Summary(ctx context.Context, dateValue string) (*dto.StatisticsSummary, error) {
	target := s.now().UTC()
	if dateValue != "" {
		parsed, err := parseFlexibleDate(dateValue)
		if err != nil {
			return nil, err
		}
		target = parsed.UTC()
	}

	dayStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	monthStart := time.Date(target.Year(), target.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	dayExpense, err := s.transactions.SumAmount(ctx, models.TypeExpense, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to sum daily expenses: %w", err)
	}
	dayIncome, err := s.transactions.SumAmount(ctx, models.TypeIncome, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to sum daily income: %w", err)
	}
	monthExpense, err := s.transactions.SumAmount(ctx, models.TypeExpense, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly expenses: %w", err)
	}
	monthIncome, err := s.transactions.SumAmount(ctx, models.TypeIncome, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly income: %w", err)
	}

	return &dto.StatisticsSummary{
		Today: dto.DaySummary{
			Expense: round2(dayExpense),
			Income:  round2(dayIncome),
		},
		ThisMonth: dto.MonthSummary{
			Expense:   round2(monthExpense),
			Income:    round2(monthIncome),
			NetIncome: round2(monthIncome - monthExpense),
		},
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
