package system

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/shiftlog/internal/backup"
	"github.com/julianstephens/shiftlog/internal/cli"
	"github.com/julianstephens/shiftlog/internal/constants"
	"github.com/julianstephens/shiftlog/internal/storage"
	"github.com/julianstephens/shiftlog/internal/utils"
	"github.com/julianstephens/shiftlog/internal/validation"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	// Check 1: store reachable
	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Store reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Store reachable: OK\n")
		storeReachable = true
	}

	// Check 2: migrations complete (sqlite only)
	if storeReachable {
		if err := checkMigrationsComplete(ctx); err != nil {
			fmt.Printf("❌ Migrations complete: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Migrations complete: OK\n")
		}
	} else {
		fmt.Printf("⊘ Migrations complete: SKIPPED (store not reachable)\n")
	}

	// Check 3: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 4: settings valid
	if storeReachable {
		if err := checkSettings(ctx); err != nil {
			fmt.Printf("❌ Settings: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Settings: OK\n")
		}
	} else {
		fmt.Printf("⊘ Settings: SKIPPED (store not reachable)\n")
	}

	// Check 5: session state sane
	if storeReachable {
		if err := checkSession(ctx); err != nil {
			fmt.Printf("⚠ Session state: WARNING\n")
			fmt.Printf("   %v\n", err)
		} else {
			fmt.Printf("✓ Session state: OK\n")
		}
	} else {
		fmt.Printf("⊘ Session state: SKIPPED (store not reachable)\n")
	}

	// Check 6: clock/timezone sanity
	if err := checkClockTimezone(ctx); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 7: no other shiftlog process holding the store
	if err := checkDuplicateProcesses(); err != nil {
		fmt.Printf("⚠ Concurrent processes: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Concurrent processes: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if _, err := ctx.Store.GetSettings(); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	sqliteStore, ok := ctx.Store.(*storage.SQLiteStore)
	if !ok {
		// Only the sqlite store carries schema migrations.
		return nil
	}

	pending, err := sqliteStore.PendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("%d migration(s) pending, run 'shiftlog init'", pending)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, run 'shiftlog backup create'")
	}
	// Point out stale backups.
	if time.Since(backups[0].Timestamp) > 7*24*time.Hour {
		return fmt.Errorf("newest backup is from %s", backups[0].Timestamp.Format(constants.DateFormat))
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	result := validation.New().ValidateSettings(settings)
	if result.HasErrors() {
		return fmt.Errorf("%s", result.FormatReport())
	}
	return nil
}

func checkSession(ctx *cli.Context) error {
	session, err := ctx.Store.GetSession()
	if err != nil {
		return err
	}
	if session.Status == constants.StatusWorking {
		if session.ComputedStartTime == nil {
			return fmt.Errorf("working session has no start time")
		}
		if !utils.SameDay(*session.ComputedStartTime, time.Now()) {
			return fmt.Errorf("open session from %s will be auto-completed on next use",
				utils.FormatDate(*session.ComputedStartTime))
		}
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		// Fall back to checking the system clock only.
		settings.Timezone = "Local"
	}
	if _, err := utils.LoadLocation(settings.Timezone); err != nil {
		return fmt.Errorf("configured timezone %q is invalid: %w", settings.Timezone, err)
	}

	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock reads %s, which looks wrong", now.Format(time.RFC3339))
	}
	return nil
}

// checkDuplicateProcesses warns when another shiftlog process is running,
// since two writers can race on the session state.
func checkDuplicateProcesses() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	self := os.Getpid()
	count := 0
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		name := strings.TrimSuffix(p.Executable(), ".exe")
		if name == constants.AppName {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("%d other %s process(es) running", count, constants.AppName)
	}
	return nil
}
