// Package cli implements the solartrack command line. Running it without a
// subcommand opens the terminal UI.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/sadopc/solartrack/internal/backup"
	"github.com/sadopc/solartrack/internal/config"
	"github.com/sadopc/solartrack/internal/export"
	"github.com/sadopc/solartrack/internal/logging"
	"github.com/sadopc/solartrack/internal/report"
	"github.com/sadopc/solartrack/internal/store"
	"github.com/sadopc/solartrack/internal/tui"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// app carries what every command needs once the root command has set it up.
type app struct {
	configPath string
	dbPath     string
	projectRef string

	cfg    config.Config
	log    *slog.Logger
	logOut io.Closer
	store  *store.Store
	engine *report.Engine
	backup *backup.Orchestrator
	labels export.Labels
	now    func() time.Time
}

// Execute runs the command line with os.Args.
func Execute() error {
	root, a := newRootCmd()
	defer a.close()
	return root.Execute()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "solartrack",
		Short: "Work hour tracking for installation crews",
		Long: `solartrack records daily hours and finished strings per employee and project,
with monthly statistics, attendance sheets, CSV/XLSX/PDF exports and backups.
Run it without a command to open the terminal UI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context(), cmd.Name() == "solartrack" && len(args) == 0)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/solartrack/config.yaml)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file, overrides the config")
	root.PersistentFlags().StringVarP(&a.projectRef, "project", "p", "", "project name or ID (default: the current project)")

	root.AddCommand(
		newProjectCmd(a),
		newEmployeeCmd(a),
		newEntryCmd(a),
		newStatsCmd(a),
		newEmployeesCmd(a),
		newAttendanceCmd(a),
		newWeekCmd(a),
		newSearchCmd(a),
		newExportCmd(a),
		newBackupCmd(a),
	)
	return root, a
}

// setup loads the configuration, builds the logger and opens the store.
// The terminal UI logs to a file because stderr is hidden by the alt screen.
func (a *app) setup(ctx context.Context, interactive bool) error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	a.cfg = cfg
	a.labels = export.LabelsFor(cfg.Locale)

	var logOut io.Writer = os.Stderr
	if interactive {
		f, err := logging.OpenFile(cfg.LogPath())
		if err != nil {
			return err
		}
		a.logOut = f
		logOut = f
	}
	a.log, err = logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return err
	}

	a.store, err = store.New(ctx, cfg.DBPath, store.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.engine = report.New(a.store)
	a.backup = backup.New(a.store, backup.WithLogger(a.log))
	return nil
}

func (a *app) close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.logOut != nil {
		a.logOut.Close()
		a.logOut = nil
	}
	return err
}

func (a *app) runTUI(ctx context.Context) error {
	m := tui.NewApp(ctx, tui.Deps{
		Store:  a.store,
		Engine: a.engine,
		Backup: a.backup,
		Config: a.cfg,
		Log:    a.log,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// project resolves --project, falling back to the current project setting.
func (a *app) project(ctx context.Context) (*store.Project, error) {
	ref := strings.TrimSpace(a.projectRef)
	if ref == "" {
		cur, err := a.store.GetSetting(ctx, store.SettingCurrentProject)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if cur == "" {
			return nil, fmt.Errorf("no project selected: pass --project or run 'solartrack project use NAME'")
		}
		ref = cur
	}

	if p, err := a.store.GetProject(ctx, ref); err == nil {
		return p, nil
	}
	projects, err := a.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, ref) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", ref, store.ErrNotFound)
}

// employee resolves an employee of the project by ID or name.
func (a *app) employee(ctx context.Context, projectID, ref string) (*store.Employee, error) {
	ref = strings.TrimSpace(ref)
	if e, err := a.store.GetEmployee(ctx, ref); err == nil && e.ProjectID == projectID {
		return e, nil
	}
	emps, err := a.store.ListEmployeesByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, e := range emps {
		if strings.EqualFold(e.Name, ref) {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("employee %q: %w", ref, store.ErrNotFound)
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
	boldColor = color.New(color.Bold)
)

func success(w io.Writer, format string, args ...any) {
	okColor.Fprintf(w, "✓ "+format+"\n", args...)
}

// PrintError writes err the way every command reports failures.
func PrintError(w io.Writer, err error) {
	errColor.Fprintf(w, "Error: %v\n", err)
}
