package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/library-seat-booking/internal/absence"
	"github.com/iliyamo/library-seat-booking/internal/metrics"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/queue"
	"github.com/iliyamo/library-seat-booking/internal/repository"
)

// Sweep triggers.
const (
	TriggerHTTP = "http"
	TriggerCron = "cron"
)

// AbsenceService runs the absence sweep and persists its result.
type AbsenceService struct {
	d Deps
}

func NewAbsenceService(d Deps) *AbsenceService { return &AbsenceService{d: d.withDefaults()} }

// Run sweeps rawDate (today when empty) and upserts one absent row per
// slot.  Seat and payment state are never touched.
func (s *AbsenceService) Run(ctx context.Context, rawDate, trigger string) (absence.Result, error) {
	res, err := s.run(ctx, rawDate, trigger)
	s.d.Metrics.SweepRun(trigger, metrics.Result(err))
	return res, err
}

func (s *AbsenceService) run(ctx context.Context, rawDate, trigger string) (absence.Result, error) {
	now := s.d.Clock.Now()
	date, err := resolveDate(rawDate, s.d.Clock)
	if err != nil {
		return absence.Result{}, err
	}
	admissions, err := s.d.Admissions.List(ctx, repository.AdmissionFilter{PaymentStatus: model.AdmissionPaid})
	if err != nil {
		return absence.Result{}, fmt.Errorf("list admissions: %w", err)
	}
	records, err := s.d.Attendance.ListByDate(ctx, date)
	if err != nil {
		return absence.Result{}, fmt.Errorf("list attendance: %w", err)
	}

	res := absence.Sweep(admissions, records, date, now)
	written, err := s.d.Attendance.UpsertAbsences(ctx, res.Absences)
	if err != nil {
		return absence.Result{}, fmt.Errorf("upsert absences: %w", err)
	}
	s.d.Metrics.AbsencesMarked(written)
	s.d.Log.Info("absence sweep finished", "date", date, "trigger", trigger, "absent", res.Count, "written", written)

	if res.Count > 0 {
		users := make([]string, 0, res.Count)
		seen := make(map[string]bool)
		for _, a := range res.Absences {
			if !seen[a.UserID] {
				seen[a.UserID] = true
				users = append(users, a.UserID)
			}
		}
		s.d.publish(ctx, queue.TypeAbsenceMarked, queue.AbsenceMarkedEvent{Date: date, Count: res.Count, UserIDs: users, Trigger: trigger})
	}
	return res, nil
}

// Job adapts Run to the scheduler.
func (s *AbsenceService) Job() absence.Job {
	return func(ctx context.Context) error {
		_, err := s.Run(ctx, "", TriggerCron)
		return err
	}
}
