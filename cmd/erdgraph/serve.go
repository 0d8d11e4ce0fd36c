package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"erdgraph/internal/api"
	"erdgraph/internal/db"
	_ "erdgraph/internal/db/extractors"
	"erdgraph/internal/logger"
	"erdgraph/internal/store"
	"erdgraph/pkg/config"
)

const defaultPort = 8080

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diagram API and the web UI",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("driver", "", "db driver override (postgres,pgx,mysql,sqlite,sqlserver,godror)")
	f.String("dsn", "", "dsn override")
	f.Int("port", 0, fmt.Sprintf("http port (overrides config, default %d)", defaultPort))
	f.Duration("timeout", 10*time.Second, "db connect timeout")
	f.String("web", filepath.Join(".", "web"), "web ui directory")
	f.String("redis", "", "redis address for the diagram store (default in memory)")

	viper.BindPFlag("database.driver", f.Lookup("driver"))
	viper.BindPFlag("database.dsn", f.Lookup("dsn"))
	viper.BindPFlag("server.port", f.Lookup("port"))
	viper.BindPFlag("database.timeout", f.Lookup("timeout"))
	viper.BindPFlag("server.web", f.Lookup("web"))
	viper.BindPFlag("store.redis_addr", f.Lookup("redis"))
}

func runServe(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	srv := api.NewServer(st, viper.GetDuration("database.timeout"), api.WithDialects(appCfg.Dialects))

	// flags win over the config file
	driver, dsn := viper.GetString("database.driver"), viper.GetString("database.dsn")
	if driver != "" && dsn != "" {
		srv.SetActive(config.DBConfig{Type: driver, DSN: dsn}, config.NormalizeDriver(driver), dsn)
	} else if appCfg.Database.Type != "" {
		drv, dsn, err := config.BuildDriverAndDSN(appCfg.Database)
		if err == nil {
			srv.SetActive(appCfg.Database, drv, dsn)
		} else {
			logger.Error("error building DSN: %v", err)
		}
	}

	port := cmp.Or(viper.GetInt("server.port"), appCfg.Server.Port, defaultPort)
	webdir := viper.GetString("server.web")
	if _, err := os.Stat(webdir); err != nil {
		logger.Warn("web ui directory %s not found, serving the API only", webdir)
		webdir = ""
	}

	addr := fmt.Sprintf(":%d", port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(webdir),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening on %s, serving %s", addr, webdir)
		logger.Info("registered dialects: %v", db.RegisteredDialects())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// openStore returns a Redis store when an address is configured and an
// in-memory one otherwise.
func openStore(ctx context.Context) (store.Store, func(), error) {
	addr := cmp.Or(viper.GetString("store.redis_addr"), appCfg.Store.RedisAddr)
	if addr == "" {
		return store.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: appCfg.Store.RedisPassword,
		DB:       appCfg.Store.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	logger.Info("storing diagrams in redis at %s", addr)
	return store.NewRedisStore(rdb, appCfg.Store.TTL), func() { rdb.Close() }, nil
}
