package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/timecalc"
	"github.com/julianstephens/shiftlog/internal/tracker"
	"github.com/julianstephens/shiftlog/internal/utils"
)

type InCmd struct{}

func (c *InCmd) Run(ctx *Context) error {
	if err := ctx.Tracker.CheckDayRollover(); err != nil {
		return err
	}

	session, err := ctx.Tracker.ClockIn()
	if err != nil {
		if errors.Is(err, tracker.ErrAlreadyWorking) {
			fmt.Printf("Already clocked in since %s.\n", FormatClock(*session.ComputedStartTime))
			return nil
		}
		return err
	}

	fmt.Printf("✓ Clocked in at %s", FormatClock(*session.RealStartTime))
	if !session.ComputedStartTime.Equal(*session.RealStartTime) {
		fmt.Printf(" (counting from %s)", FormatClock(*session.ComputedStartTime))
	}
	fmt.Println()
	return nil
}

type OutCmd struct{}

func (c *OutCmd) Run(ctx *Context) error {
	if err := ctx.Tracker.CheckDayRollover(); err != nil {
		return err
	}

	rec, err := ctx.Tracker.ClockOut()
	if err != nil {
		if errors.Is(err, tracker.ErrNoOpenSession) {
			fmt.Println("Not clocked in. Use 'shiftlog in' to start a session.")
			return nil
		}
		return err
	}

	fmt.Printf("✓ Clocked out. Worked %s", FormatMinutes(rec.WorkMinutes))
	if rec.OvertimeMinutes > 0 {
		fmt.Printf(" (+%s overtime)", FormatMinutes(rec.OvertimeMinutes))
	}
	fmt.Println()
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	session, settings, err := ctx.Tracker.Status()
	if err != nil {
		return err
	}

	work, overtime, err := ctx.Tracker.TodayTotals()
	if err != nil {
		return err
	}

	switch session.Status {
	case constants.StatusWorking:
		fmt.Printf("Status: working since %s\n", FormatClock(*session.ComputedStartTime))
		standardEnd := utils.StandardEndOn(*session.ComputedStartTime, settings)
		fmt.Printf("Standard day ends at %s\n", FormatClock(standardEnd))
	default:
		fmt.Println("Status: not clocked in")
	}

	expected := timecalc.ExpectedWorkMinutes(settings)
	fmt.Printf("Today: %s worked of %s expected\n", FormatMinutes(work), FormatMinutes(expected))
	if overtime > 0 {
		fmt.Printf("Overtime: %s\n", FormatMinutes(overtime))
	}
	return nil
}
