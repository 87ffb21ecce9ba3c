// Package wire provides dependency injection for the shiftdesk application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	cliadapter "github.com/example/shiftdesk/internal/adapters/cli"
	"github.com/example/shiftdesk/internal/app"
	"github.com/example/shiftdesk/internal/config"
	"github.com/example/shiftdesk/internal/db"
	"github.com/example/shiftdesk/internal/ports/primary"
)

var (
	cfg    = config.DefaultConfig()
	logger = zap.NewNop()

	handle         *db.Handle
	location       *time.Location
	shiftService   primary.ShiftService
	requestService primary.RequestService
	workerService  primary.WorkerService
	reportService  primary.ReportService
	backupService  primary.BackupService
	once           sync.Once
	initErr        error
)

// Configure sets the configuration and logger used to build the services.
// It must be called before the first service is requested.
func Configure(c *config.Config, l *zap.Logger) {
	if c != nil {
		cfg = c
	}
	if l != nil {
		logger = l
	}
}

// Config returns the active configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the active logger.
func Logger() *zap.Logger {
	return logger
}

// Open initializes storage and services, returning the initialization error
// instead of exiting.
func Open() error {
	once.Do(initServices)
	return initErr
}

func mustInit() {
	if err := Open(); err != nil {
		logger.Fatal("failed to initialize storage", zap.String("data_dir", cfg.DataDir), zap.Error(err))
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	loc, err := cfg.Location()
	if err != nil {
		initErr = err
		return
	}
	location = loc

	h, err := db.Open(context.Background(), db.Options{
		Backend:     cfg.Backend,
		DataDir:     cfg.DataDir,
		LockTimeout: cfg.GetLockTimeout(),
	})
	if err != nil {
		initErr = err
		return
	}
	handle = h

	settings := app.Settings{
		LockTimeout:     cfg.GetLockTimeout(),
		RequestCooldown: cfg.GetRequestCooldown(),
		SuspiciousShift: cfg.GetSuspiciousShift(),
		Location:        loc,
	}

	// Create services (primary ports implementation)
	shiftService = app.NewShiftService(h.Shifts, h.Locks, settings, logger)
	requestService = app.NewRequestService(h.Requests, h.Locks, app.NewRateLimiter(settings.RequestCooldown), settings, logger)
	workerService = app.NewWorkerService(h.Workers, h.Locks, settings, logger)
	reportService = app.NewReportService(h.Shifts, h.Workers, settings, logger)
	backupService = app.NewBackupService(h.Store, h.Locks, app.BackupOptions{
		Dir:       cfg.GetBackupDir(),
		Retention: cfg.GetRetention(),
		Workers:   cfg.Backup.Workers,
	}, settings, logger)

	logger.Debug("storage opened",
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir))
}

// Startup opens storage and, when backup.on_start is set, takes a backup.
// Processes embedding the services call it once at boot.
func Startup(ctx context.Context) (*primary.BackupReport, error) {
	if err := Open(); err != nil {
		return nil, err
	}
	if !cfg.Backup.OnStart {
		return nil, nil
	}
	return backupService.Run(ctx), nil
}

// Storage returns the opened tables and lock manager.
func Storage() *db.Handle {
	mustInit()
	return handle
}

// Close releases the storage backend.
func Close() error {
	if handle == nil {
		return nil
	}
	return handle.Close()
}

// ShiftService returns the singleton ShiftService instance.
func ShiftService() primary.ShiftService {
	mustInit()
	return shiftService
}

// RequestService returns the singleton RequestService instance.
func RequestService() primary.RequestService {
	mustInit()
	return requestService
}

// WorkerService returns the singleton WorkerService instance.
func WorkerService() primary.WorkerService {
	mustInit()
	return workerService
}

// ReportService returns the singleton ReportService instance.
func ReportService() primary.ReportService {
	mustInit()
	return reportService
}

// BackupService returns the singleton BackupService instance.
func BackupService() primary.BackupService {
	mustInit()
	return backupService
}

// Location returns the timezone used for calendar days and display.
func Location() *time.Location {
	mustInit()
	return location
}

// ShiftAdapter returns a new ShiftAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ShiftAdapter() *cliadapter.ShiftAdapter {
	return ShiftAdapterWithOutput(os.Stdout)
}

// ShiftAdapterWithOutput returns a new ShiftAdapter writing to the given output.
func ShiftAdapterWithOutput(out io.Writer) *cliadapter.ShiftAdapter {
	return cliadapter.NewShiftAdapter(ShiftService(), out, Location())
}

// RequestAdapter returns a new RequestAdapter writing to stdout.
func RequestAdapter() *cliadapter.RequestAdapter {
	return RequestAdapterWithOutput(os.Stdout)
}

// RequestAdapterWithOutput returns a new RequestAdapter writing to the given output.
func RequestAdapterWithOutput(out io.Writer) *cliadapter.RequestAdapter {
	return cliadapter.NewRequestAdapter(RequestService(), out, Location())
}

// WorkerAdapter returns a new WorkerAdapter writing to stdout.
func WorkerAdapter() *cliadapter.WorkerAdapter {
	return cliadapter.NewWorkerAdapter(WorkerService(), os.Stdout, Location())
}

// ReportAdapter returns a new ReportAdapter writing to stdout.
func ReportAdapter() *cliadapter.ReportAdapter {
	return cliadapter.NewReportAdapter(ReportService(), os.Stdout)
}

// BackupAdapter returns a new BackupAdapter writing to stdout.
func BackupAdapter() *cliadapter.BackupAdapter {
	return cliadapter.NewBackupAdapter(BackupService(), os.Stdout)
}
