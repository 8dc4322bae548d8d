package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/shiftlog/internal/records"
	"github.com/julianstephens/shiftlog/internal/utils"
)

type RecordListCmd struct {
	Date string `arg:"" optional:"" help:"Day to list (YYYY-MM-DD, 'today' or 'yesterday')." default:"today"`
}

func (c *RecordListCmd) Run(ctx *Context) error {
	day, err := ParseDay(c.Date, time.Now())
	if err != nil {
		return err
	}
	date := utils.FormatDate(day)

	recs, err := ctx.Store.GetDayRecords(date)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Printf("No records for %s.\n", date)
		return nil
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	recs = records.RecomputeUnderSettings(recs, settings)

	fmt.Printf("Records for %s:\n\n", date)
	for i, rec := range recs {
		start := time.UnixMilli(rec.StartTime).In(day.Location())
		end := time.UnixMilli(rec.EndTime).In(day.Location())

		flags := ""
		if rec.EditedManually {
			flags += " [edited]"
		}
		if rec.AutoCompleted {
			flags += " [auto]"
		}

		fmt.Printf("  %d. %s-%s  work %s", i+1, FormatClock(start), FormatClock(end), FormatMinutes(rec.WorkMinutes))
		if rec.OvertimeMinutes > 0 {
			fmt.Printf("  overtime %s", FormatMinutes(rec.OvertimeMinutes))
		}
		fmt.Printf("%s  (session %d)\n", flags, rec.SessionID)
	}
	return nil
}

type RecordEditCmd struct {
	Date     string `arg:"" help:"Day of the record (YYYY-MM-DD, 'today' or 'yesterday')."`
	OldStart string `arg:"" help:"Current start time (HH:MM)."`
	OldEnd   string `arg:"" help:"Current end time (HH:MM)."`
	NewStart string `arg:"" help:"New start time (HH:MM)."`
	NewEnd   string `arg:"" help:"New end time (HH:MM)."`
}

func (c *RecordEditCmd) Run(ctx *Context) error {
	now := time.Now()
	day, err := ParseDay(c.Date, now)
	if err != nil {
		return err
	}

	oldStart, err := ParseClockTime(c.OldStart, day)
	if err != nil {
		return err
	}
	oldEnd, err := ParseClockTime(c.OldEnd, day)
	if err != nil {
		return err
	}
	newStart, err := ParseClockTime(c.NewStart, day)
	if err != nil {
		return err
	}
	newEnd, err := ParseClockTime(c.NewEnd, day)
	if err != nil {
		return err
	}

	if result := ctx.Validator.ValidateEdit(newStart, newEnd, now); result.HasErrors() {
		return errors.New(result.FormatReport())
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	date := utils.FormatDate(day)
	recs, err := ctx.Store.GetDayRecords(date)
	if err != nil {
		return err
	}

	updated, err := records.Edit(recs, oldStart, oldEnd, newStart, newEnd, settings, now)
	if err != nil {
		return err
	}
	if err := ctx.Store.SaveDayRecords(date, updated); err != nil {
		return err
	}

	fmt.Printf("✓ Record updated: %s %s-%s\n", date, FormatClock(newStart), FormatClock(newEnd))
	return nil
}

type RecordDeleteCmd struct {
	Date      string `arg:"" help:"Day of the record (YYYY-MM-DD, 'today' or 'yesterday')."`
	SessionID string `arg:"" help:"Session id shown by 'record list'."`
	Force     bool   `help:"Skip the confirmation prompt." short:"f"`
}

func (c *RecordDeleteCmd) Run(ctx *Context) error {
	day, err := ParseDay(c.Date, time.Now())
	if err != nil {
		return err
	}
	sessionID, err := strconv.ParseInt(c.SessionID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", c.SessionID)
	}

	date := utils.FormatDate(day)
	recs, err := ctx.Store.GetDayRecords(date)
	if err != nil {
		return err
	}

	updated, err := records.Delete(recs, sessionID)
	if err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			return fmt.Errorf("no record with session id %d on %s", sessionID, date)
		}
		return err
	}

	if !c.Force {
		confirmed := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete record %d on %s?", sessionID, date)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		))
		if err := form.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	// An empty list removes the day key entirely.
	if err := ctx.Store.SaveDayRecords(date, updated); err != nil {
		return err
	}

	fmt.Printf("✓ Record deleted from %s.\n", date)
	return nil
}
