package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workpulse/attendance-backend-go/internal/config"
	"github.com/workpulse/attendance-backend-go/internal/domain/geofence"
	"github.com/workpulse/attendance-backend-go/internal/domain/monitoring"
	"github.com/workpulse/attendance-backend-go/internal/domain/notification"
	appHTTP "github.com/workpulse/attendance-backend-go/internal/handler/http"
	"github.com/workpulse/attendance-backend-go/internal/pkg/cron"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/workpulse/attendance-backend-go/internal/service/attendance"
	monitoringService "github.com/workpulse/attendance-backend-go/internal/service/monitoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	timezone, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		log.Fatal("Error loading company timezone: ", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	monitoringRepo := postgresql.NewMonitoringRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	notifier := notification.NewLogNotifier()

	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		employeeRepo,
		monitoringRepo,
		notifier,
		attendanceService.Policy{
			Office: geofence.Point{
				Latitude:  cfg.Attendance.OfficeLatitude,
				Longitude: cfg.Attendance.OfficeLongitude,
			},
			Timezone:      timezone,
			ExpectedStart: cfg.Attendance.ExpectedStart,
		},
	)

	monitorSvc := monitoringService.NewMonitorService(
		attendanceRepo,
		monitoringRepo,
		employeeRepo,
		notifier,
		monitoring.Settings{
			ExpectedCheckout:    cfg.Attendance.ExpectedCheckout,
			EscalationThreshold: cfg.Attendance.EscalationThreshold,
			NotifyRoleGroups:    cfg.Attendance.NotifyRoleGroups,
			Weekdays: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday,
				time.Thursday, time.Friday, time.Saturday,
			},
		},
		timezone,
	)

	scheduler := cron.NewScheduler()
	jobs := cron.NewAttendanceJobs(attendanceSvc, monitorSvc)
	if err := jobs.RegisterJobs(scheduler, cfg.Cron.CheckoutMonitorSpec, cfg.Cron.AutoClockoutSpec); err != nil {
		log.Fatal("Error registering cron jobs: ", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	schedulerHandler := appHTTP.NewSchedulerHandler(scheduler)
	monitoringHandler := appHTTP.NewMonitoringHandler(monitorSvc, timezone)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:        cfg.App.Name,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
			CronSecret:     cfg.Cron.Secret,
		},
		jwtService,
		attendanceHandler,
		schedulerHandler,
		monitoringHandler,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		fmt.Println("Server running on port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Error shutting down server: ", err)
	}
}
