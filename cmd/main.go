package main

import (
	"log"

	"github.com/pot-code/learniq-api/internal/bundle"
	"github.com/pot-code/learniq-api/internal/chat"
	"github.com/pot-code/learniq-api/internal/course"
	infra "github.com/pot-code/learniq-api/internal/infrastructure"
	"github.com/pot-code/learniq-api/internal/infrastructure/driver"
	"github.com/pot-code/learniq-api/internal/infrastructure/logging"
	ihttp "github.com/pot-code/learniq-api/internal/interfaces/http"
	"github.com/pot-code/learniq-api/internal/streak"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	logger = logger.With(
		zap.String("service.id", option.AppID),
	)
	defer logger.Sync()

	dbConn, err := driver.GetDBConnection(&driver.DBConfig{
		User:     option.Database.User,
		Password: option.Database.Password,
		MaxConn:  option.Database.MaxConn,
		Protocol: option.Database.Protocol,
		Driver:   option.Database.Driver,
		Host:     option.Database.Host,
		Port:     option.Database.Port,
		Query:    option.Database.Query,
		Schema:   option.Database.Schema,
	})
	if err != nil {
		log.Fatalf("Failed to create DB connection: %s\n", err)
	}
	logger.Debug("Create db connection instance", zap.String("db.driver", option.Database.Driver),
		zap.String("db.schema", option.Database.Schema),
		zap.String("db.host", option.Database.Host),
	)

	rdb := driver.NewRedisClient(option.KVStore.Host, option.KVStore.Port, option.KVStore.Password)
	defer rdb.Close()

	CourseRepo := course.NewCourseRepository(dbConn)
	CourseUseCase := course.NewCourseUseCase(CourseRepo)

	BundleRepo := bundle.NewBundleRepository(dbConn)
	BundleUseCase := bundle.NewBundleUseCase(BundleRepo, CourseRepo)

	StreakRepo := streak.NewStreakRepository(dbConn)
	StreakUseCase := streak.NewStreakUseCase(StreakRepo)

	ChatRelay := chat.NewRelay(
		chat.NewHTTPCompleter(option.Chat.BaseURL, option.Chat.APIKey, option.Chat.Timeout),
		option.Chat.Model,
		option.Chat.APIKey,
	)
	logger.Debug("Chat relay ready", zap.String("chat.base_url", option.Chat.BaseURL), zap.String("chat.model", option.Chat.Model))

	if err := ihttp.Serve(dbConn, rdb, option, CourseUseCase, BundleUseCase, StreakUseCase, ChatRelay, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
