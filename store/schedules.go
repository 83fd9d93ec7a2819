package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"arma3-server-manager/arma"
	"arma3-server-manager/optimistic"
)

// ScheduleAPI is the slice of the backend client used by Schedules.
type ScheduleAPI interface {
	ListSchedules(ctx context.Context) ([]arma.Schedule, error)
	CreateSchedule(ctx context.Context, req arma.ScheduleRequest) (int64, error)
	UpdateSchedule(ctx context.Context, id int64, update arma.ScheduleUpdate) error
	ToggleSchedule(ctx context.Context, id int64, enabled bool) error
	DeleteSchedule(ctx context.Context, id int64) error
	TriggerSchedule(ctx context.Context, id int64) (string, error)
}

// NewSchedule describes a schedule to create. Empty Recurrence means
// arma.DefaultRecurrence and a nil Enabled means enabled.
type NewSchedule struct {
	Name       string
	Action     string
	Recurrence string
	Enabled    *bool
}

var scheduleActions = []string{
	arma.ScheduleServerRestart,
	arma.ScheduleServerStart,
	arma.ScheduleServerStop,
	arma.ScheduleModUpdate,
}

// Validate reports the first problem with ns, matching the create form's rules.
func (ns NewSchedule) Validate() error {
	if strings.TrimSpace(ns.Name) == "" {
		return fmt.Errorf("schedule name is required")
	}
	if !slices.Contains(scheduleActions, ns.Action) {
		return fmt.Errorf("unknown schedule action %q", ns.Action)
	}
	if ns.Recurrence != "" && !slices.Contains(arma.ScheduleRecurrences, ns.Recurrence) {
		return fmt.Errorf("unknown recurrence %q", ns.Recurrence)
	}
	return nil
}

type Schedules struct {
	*optimistic.Collection[arma.Schedule]
	api ScheduleAPI
}

func NewSchedules(api ScheduleAPI, conn *gorm.DB) *Schedules {
	onSuccess, onError := journal(conn, "schedules")
	s := &Schedules{api: api}
	s.Collection = optimistic.New[arma.Schedule](optimistic.RemoteFuncs[arma.Schedule]{
		CreateFunc: func(ctx context.Context, sch arma.Schedule) (arma.Schedule, error) {
			id, err := api.CreateSchedule(ctx, arma.ScheduleRequest{
				Name:       sch.Name,
				CeleryName: sch.CeleryName,
				Action:     sch.Action,
				Enabled:    sch.Enabled,
			})
			if err != nil {
				return arma.Schedule{}, err
			}
			sch.ID = id
			return sch, nil
		},
		UpdateFunc: func(ctx context.Context, sch arma.Schedule) error {
			return api.UpdateSchedule(ctx, sch.ID, arma.ScheduleUpdate{
				Name:       &sch.Name,
				CeleryName: &sch.CeleryName,
				Action:     &sch.Action,
				Enabled:    &sch.Enabled,
			})
		},
		DeleteFunc: func(ctx context.Context, sch arma.Schedule) error {
			return api.DeleteSchedule(ctx, sch.ID)
		},
	}, optimistic.Options[arma.Schedule]{
		Name: "schedule",
		Key:  func(sch arma.Schedule) string { return idKey(sch.ID) },
		Adopt: func(draft, server arma.Schedule) arma.Schedule {
			draft.ID = server.ID
			return draft
		},
		OnSuccess: onSuccess,
		OnError:   onError,
	})
	return s
}

func (s *Schedules) Refresh(ctx context.Context) error {
	schedules, err := s.api.ListSchedules(ctx)
	if err != nil {
		return err
	}
	s.Load(schedules)
	return nil
}

func (s *Schedules) ByID(id int64) (optimistic.Item[arma.Schedule], bool) {
	return s.Find(func(sch arma.Schedule) bool { return sch.ID == id })
}

func (s *Schedules) Create(ns NewSchedule) (*optimistic.Result, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	sch := arma.Schedule{
		Name:       strings.TrimSpace(ns.Name),
		Action:     ns.Action,
		CeleryName: ns.Recurrence,
		Enabled:    true,
	}
	if sch.CeleryName == "" {
		sch.CeleryName = arma.DefaultRecurrence
	}
	if ns.Enabled != nil {
		sch.Enabled = *ns.Enabled
	}
	return s.Insert(sch), nil
}

// Toggle flips the enabled flag of schedule id.
func (s *Schedules) Toggle(id string) *optimistic.Result {
	return s.UpdateWith(id, func(sch arma.Schedule) arma.Schedule {
		sch.Enabled = !sch.Enabled
		return sch
	}, func(ctx context.Context, sch arma.Schedule) error {
		return s.api.ToggleSchedule(ctx, sch.ID, sch.Enabled)
	})
}

// Trigger runs schedule id's action now and returns the backend message.
func (s *Schedules) Trigger(ctx context.Context, id int64) (string, error) {
	return s.api.TriggerSchedule(ctx, id)
}
