package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"shift_coordination_system/configs"
	"shift_coordination_system/internal/clock"
	"shift_coordination_system/internal/db"
	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/db/repositories"
	"shift_coordination_system/internal/di"
	"shift_coordination_system/internal/health"
	"shift_coordination_system/internal/polls"
	"shift_coordination_system/internal/scheduler"
	"shift_coordination_system/internal/services"
	"shift_coordination_system/internal/shifts"
	tgbot "shift_coordination_system/internal/tg_bot"
	"shift_coordination_system/internal/tg_bot/commands"
	"shift_coordination_system/internal/tg_bot/handlers"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:           "shift_bot",
		Short:         "Shift poll coordination bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the bot, the scheduler and the health check server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context())
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "shift_bot:", err)
		os.Exit(1)
	}
}

func migrate(ctx context.Context) error {
	dbConfig, loggerConfig, err := configs.LoadDBConfig()
	if err != nil {
		return err
	}

	logger := di.NewLogger(loggerConfig, "migrate")
	defer logger.Sync() //nolint:errcheck

	database, err := db.Connect(ctx, dbConfig, logger)
	if err != nil {
		logger.Errorw("failed to connect to db", "error", err)
		return err
	}
	defer database.Close()

	return db.Migrate(database, dbConfig, logger)
}

func serve(ctx context.Context) error {
	config, err := configs.LoadShiftBotConfig()
	if err != nil {
		return err
	}

	logger := di.NewLogger(config.Logger, config.App.Environment)
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger.Desugar())
	logger.Info("config loaded")

	logger.Info("starting db")
	database, err := db.StartDB(ctx, config.DB, logger)
	if err != nil {
		logger.Errorw("failed to start db", "error", err)
		return err
	}
	defer database.Close()
	logger.Info("db started")

	location, err := config.Scheduler.Location()
	if err != nil {
		return err
	}

	api, err := tgbot.NewBotAPI(config.Bot)
	if err != nil {
		logger.Errorw("failed to create bot", "error", err)
		return err
	}
	logger.Infow("bot created", "username", api.Self.UserName)

	environment := models.ChatEnvironmentProd
	if config.App.IsDevEnvironment() {
		environment = models.ChatEnvironmentDev
	}

	logger.Info("initializing repositories and services")
	pollRepository := repositories.NewPollRepository(database)
	workShiftRepository := repositories.NewWorkShiftRepository(database)
	userRepository := repositories.NewUserRepository(database)
	chatRepository := repositories.NewChatRepository(database)
	materializationRepository := repositories.NewMaterializationRepository(database)

	messagingService := services.NewMessagingService(api)
	chatMemberService := services.NewChatMemberService(api)

	clk := clock.New()
	policies := polls.PoliciesFromConfig(config.Polls)
	materializer := shifts.NewMaterializer(userRepository, workShiftRepository, materializationRepository, config.Shifts, logger)

	engine := polls.NewEngine(pollRepository, messagingService, materializer, policies, clk, logger)
	defer engine.Stop()

	shiftScheduler, err := scheduler.NewScheduler(
		engine,
		pollRepository,
		chatRepository,
		workShiftRepository,
		userRepository,
		messagingService,
		config.Scheduler,
		environment,
		clk,
		logger,
	)
	if err != nil {
		return err
	}

	if err := shiftScheduler.Start(ctx); err != nil {
		logger.Errorw("failed to start scheduler", "error", err)
		return err
	}
	defer shiftScheduler.Stop()

	handler := handlers.NewCommandHandler(environment, engine, chatRepository, userRepository, logger, []commands.Command{
		commands.NewStartCommand(logger),
		commands.NewHelpCommand(),
		commands.NewMyRoleCommand(),
		commands.NewPollCommand(engine, workShiftRepository, chatMemberService, policies, clk, location, logger),
		commands.NewSyncPollCommand(engine, workShiftRepository, chatMemberService, policies, clk, location, logger),
		commands.NewVoteCommand(engine, userRepository, logger),
		commands.NewResultsCommand(engine, chatMemberService, logger),
		commands.NewOpenShiftCommand(workShiftRepository, clk, location, logger),
		commands.NewCloseShiftCommand(workShiftRepository, clk, location, logger),
	})
	bot := tgbot.NewBot(api, handler, config.Bot, logger)

	healthServer := &http.Server{
		Addr:              config.App.HealthCheckAddress,
		Handler:           health.NewHandler(engine),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return bot.Start(groupCtx)
	})

	group.Go(func() error {
		return engine.RunResync(groupCtx, config.Polls.ResyncInterval)
	})

	group.Go(func() error {
		logger.Infow("health check server starting", "address", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	logger.Infow("shift_bot stopped", "error", err)
	return err
}
