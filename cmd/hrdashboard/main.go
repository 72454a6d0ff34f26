package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/hr-dashboard/internal/application"
	"github.com/example/hr-dashboard/internal/config"
	"github.com/example/hr-dashboard/internal/directory"
	httptransport "github.com/example/hr-dashboard/internal/http"
	"github.com/example/hr-dashboard/internal/persistence"
	"github.com/example/hr-dashboard/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("dashboard stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	storage, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN), logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()
	jsonStore := persistence.NewJSONStore(storage, logger)

	client, err := directory.NewClient(cfg.DirectoryURL, nil, cfg.DirectoryTimeout, logger)
	if err != nil {
		return fmt.Errorf("configure directory client: %w", err)
	}

	seed := cfg.EnrichmentSeed
	if seed == 0 {
		seed = randomSeed()
	}
	logger.Info("roster enrichment seeded", "seed", seed)

	now := time.Now
	store := application.NewStore(cfg.PageSize)
	rosterService := application.NewRosterServiceWithLogger(
		store,
		newDirectorySource(client),
		newCustomEmployeeAdapter(jsonStore),
		application.NewRandomEnricher(seed),
		now,
		cfg.DirectoryBatch,
		logger,
	)
	bookmarkService := application.NewBookmarkServiceWithLogger(store, newBookmarkAdapter(jsonStore), nil, now, logger)
	if err := bookmarkService.Hydrate(ctx); err != nil {
		logger.Warn("failed to restore bookmarks", "error", err)
	}

	operators, err := application.DemoOperators(application.DefaultArgon2idParams)
	if err != nil {
		return fmt.Errorf("prepare operators: %w", err)
	}
	authService := application.NewAuthServiceWithLogger(
		application.NewStaticCredentialStore(operators...),
		nil,
		[]byte(cfg.SessionSecret),
		uuid.NewString,
		now,
		cfg.SessionTTL,
		logger,
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(authService, cfg.SecureCookie, logger),
		Dashboard:  httptransport.NewDashboardHandler(store, rosterService, logger),
		Employees:  httptransport.NewEmployeeHandler(rosterService, bookmarkService, logger),
		Bookmarks:  httptransport.NewBookmarkHandler(bookmarkService, logger),
		Analytics:  httptransport.NewAnalyticsHandler(store, now, logger),
		Guard:      httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("dashboard API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		// A failed initial load is recorded in the store and can be retried
		// through the reload endpoint.
		if _, err := rosterService.Load(groupCtx); err != nil && !errors.Is(err, application.ErrStaleLoad) {
			logger.Warn("initial roster load failed", "error", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return group.Wait()
}

func randomSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

type directorySource struct {
	client *directory.Client
}

func newDirectorySource(client *directory.Client) *directorySource {
	return &directorySource{client: client}
}

func (d *directorySource) FetchEmployees(ctx context.Context, limit int) ([]application.Employee, error) {
	users, err := d.client.FetchUsers(ctx, limit)
	if err != nil {
		return nil, err
	}
	employees := make([]application.Employee, 0, len(users))
	for _, user := range users {
		employees = append(employees, toApplicationEmployeeFromUser(user))
	}
	return employees, nil
}

func toApplicationEmployeeFromUser(user directory.User) application.Employee {
	return application.Employee{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Age:       user.Age,
		Phone:     user.Phone,
		Address: application.Address{
			Street:     user.Address.Address,
			City:       user.Address.City,
			PostalCode: user.Address.PostalCode,
		},
	}
}

type bookmarkAdapter struct {
	repo persistence.BookmarkRepository
}

func newBookmarkAdapter(repo persistence.BookmarkRepository) *bookmarkAdapter {
	return &bookmarkAdapter{repo: repo}
}

func (a *bookmarkAdapter) LoadBookmarks(ctx context.Context) ([]application.Bookmark, error) {
	models, err := a.repo.LoadBookmarks(ctx)
	if err != nil {
		return nil, err
	}
	bookmarks := make([]application.Bookmark, 0, len(models))
	for _, model := range models {
		bookmarks = append(bookmarks, toApplicationBookmark(model))
	}
	return bookmarks, nil
}

func (a *bookmarkAdapter) SaveBookmarks(ctx context.Context, bookmarks []application.Bookmark) error {
	models := make([]persistence.Bookmark, 0, len(bookmarks))
	for _, bookmark := range bookmarks {
		models = append(models, toPersistenceBookmark(bookmark))
	}
	return a.repo.SaveBookmarks(ctx, models)
}

type customEmployeeAdapter struct {
	repo persistence.EmployeeRepository
}

func newCustomEmployeeAdapter(repo persistence.EmployeeRepository) *customEmployeeAdapter {
	return &customEmployeeAdapter{repo: repo}
}

func (a *customEmployeeAdapter) LoadCustomEmployees(ctx context.Context) ([]application.Employee, error) {
	models, err := a.repo.LoadCustomEmployees(ctx)
	if err != nil {
		return nil, err
	}
	employees := make([]application.Employee, 0, len(models))
	for _, model := range models {
		employees = append(employees, toApplicationEmployee(model))
	}
	return employees, nil
}

func (a *customEmployeeAdapter) AppendCustomEmployee(ctx context.Context, employee application.Employee) error {
	return a.repo.AppendCustomEmployee(ctx, toPersistenceEmployee(employee))
}

func toApplicationBookmark(model persistence.Bookmark) application.Bookmark {
	return application.Bookmark{
		ID:         model.ID,
		EmployeeID: model.EmployeeID,
		Timestamp:  model.Timestamp,
	}
}

func toPersistenceBookmark(bookmark application.Bookmark) persistence.Bookmark {
	return persistence.Bookmark{
		ID:         bookmark.ID,
		EmployeeID: bookmark.EmployeeID,
		Timestamp:  bookmark.Timestamp,
	}
}

func toApplicationEmployee(model persistence.Employee) application.Employee {
	history := make([]application.PerformanceReview, 0, len(model.PerformanceHistory))
	for _, review := range model.PerformanceHistory {
		history = append(history, application.PerformanceReview{
			Date:     review.Date,
			Rating:   review.Rating,
			Feedback: review.Feedback,
		})
	}
	var projects []string
	if len(model.AssignedProjects) > 0 {
		projects = append(projects, model.AssignedProjects...)
	}
	return application.Employee{
		ID:          model.ID,
		FirstName:   model.FirstName,
		LastName:    model.LastName,
		Email:       model.Email,
		Age:         model.Age,
		Department:  model.Department,
		Performance: model.Performance,
		Address: application.Address{
			Street:     model.Address.Address,
			City:       model.Address.City,
			PostalCode: model.Address.PostalCode,
		},
		Phone:              model.Phone,
		Bio:                model.Bio,
		PerformanceHistory: history,
		AssignedProjects:   projects,
	}
}

func toPersistenceEmployee(employee application.Employee) persistence.Employee {
	history := make([]persistence.PerformanceReview, 0, len(employee.PerformanceHistory))
	for _, review := range employee.PerformanceHistory {
		history = append(history, persistence.PerformanceReview{
			Date:     review.Date,
			Rating:   review.Rating,
			Feedback: review.Feedback,
		})
	}
	var projects []string
	if len(employee.AssignedProjects) > 0 {
		projects = append(projects, employee.AssignedProjects...)
	}
	return persistence.Employee{
		ID:          employee.ID,
		FirstName:   employee.FirstName,
		LastName:    employee.LastName,
		Email:       employee.Email,
		Age:         employee.Age,
		Department:  employee.Department,
		Performance: employee.Performance,
		Address: persistence.Address{
			Address:    employee.Address.Street,
			City:       employee.Address.City,
			PostalCode: employee.Address.PostalCode,
		},
		Phone:              employee.Phone,
		Bio:                employee.Bio,
		PerformanceHistory: history,
		AssignedProjects:   projects,
	}
}
