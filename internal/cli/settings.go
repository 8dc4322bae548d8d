package cli

import (
	"errors"
	"fmt"
	"time"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *Context) error {
	s, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	fmt.Println("Current settings:")
	fmt.Printf("  Standard work hours: %d\n", s.StandardWorkHours)
	fmt.Printf("  Standard day:        %02d:%02d-%02d:%02d\n", s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
	fmt.Printf("  Exclude break time:  %t\n", s.ExcludeBreakTime)
	fmt.Printf("  Timezone:            %s\n", s.Timezone)
	return nil
}

type SettingsSetCmd struct {
	Hours    *int    `help:"Standard work hours per day (1-12)."`
	Start    *string `help:"Standard start time (HH:MM)."`
	End      *string `help:"Standard end time (HH:MM)."`
	Break    *bool   `help:"Exclude the implied break from worked time." negatable:""`
	Timezone *string `help:"IANA timezone name, or 'Local'."`
}

func (c *SettingsSetCmd) Run(ctx *Context) error {
	s, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	changed := false
	if c.Hours != nil {
		s.StandardWorkHours = *c.Hours
		changed = true
	}
	if c.Start != nil {
		if err := setClockFields(*c.Start, &s.StartHour, &s.StartMinute); err != nil {
			return err
		}
		changed = true
	}
	if c.End != nil {
		if err := setClockFields(*c.End, &s.EndHour, &s.EndMinute); err != nil {
			return err
		}
		changed = true
	}
	if c.Break != nil {
		s.ExcludeBreakTime = *c.Break
		changed = true
	}
	if c.Timezone != nil {
		s.Timezone = *c.Timezone
		changed = true
	}

	if !changed {
		fmt.Println("Nothing to change. See 'shiftlog settings show'.")
		return nil
	}

	result := ctx.Validator.ValidateSettings(s)
	if result.HasErrors() {
		return errors.New(result.FormatReport())
	}
	for _, w := range result.Warnings() {
		fmt.Printf("⚠ %s\n", w.Description)
	}

	if err := ctx.Store.SaveSettings(s); err != nil {
		return err
	}

	fmt.Println("✓ Settings saved. Stored records are recalculated as views load them.")
	return nil
}

// setClockFields parses "HH:MM" into a settings hour/minute pair.
func setClockFields(value string, hour, minute *int) error {
	parsed, err := ParseClockTime(value, time.Time{})
	if err != nil {
		return err
	}
	*hour = parsed.Hour()
	*minute = parsed.Minute()
	return nil
}
