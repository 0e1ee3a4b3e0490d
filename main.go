package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/redis/go-redis/v9"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gmllt/kboard/board"
	"github.com/gmllt/kboard/store"
)

var opts struct {
	Config string `short:"c" long:"config" env:"KBOARD_CONFIG" default:"config.yml" description:"config file"`
	Listen string `short:"l" long:"listen" env:"KBOARD_LISTEN" default:":8080" description:"listen address"`
	Static string `long:"static" env:"KBOARD_STATIC" default:"static" description:"static files location"`
	Dbg    bool   `long:"dbg" env:"KBOARD_DEBUG" description:"debug mode"`

	Retry struct {
		Attempts int           `long:"attempts" env:"ATTEMPTS" default:"3" description:"store access attempts"`
		Duration time.Duration `long:"duration" env:"DURATION" default:"100ms" description:"initial retry delay"`
		Factor   float64       `long:"factor" env:"FACTOR" default:"2" description:"backoff factor"`
	} `group:"retry" namespace:"retry" env-namespace:"KBOARD_RETRY"`

	Log struct {
		Filename   string `long:"file" env:"FILE" description:"log file, stdout if not set"`
		MaxSize    int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in MB"`
		MaxBackups int    `long:"max-backups" env:"MAX_BACKUPS" default:"3" description:"max number of rotated files"`
	} `group:"log" namespace:"log" env-namespace:"KBOARD_LOG"`
}

var revision = "unknown"

func main() {
	fmt.Printf("kboard %s\n", revision)
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}
	setupLogs(opts.Dbg)

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		log.Fatalf("[ERROR] failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slot, closeStore, err := makeStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("[ERROR] failed to init %s storage: %v", cfg.Storage.Type, err)
	}
	defer closeStore()
	log.Printf("[INFO] board stored in %v", slot)

	b, err := board.New(board.Options{
		Columns:     cfg.Lists,
		Store:       slot,
		MessageTTL:  cfg.Board.MessageTTL,
		NarrowWidth: cfg.Board.NarrowWidth,
	})
	if err != nil {
		log.Fatalf("[ERROR] failed to make board: %v", err)
	}
	if err = b.Load(ctx); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	srv := Server{Board: b, Listen: opts.Listen, StaticDir: opts.Static, Version: revision, Dbg: opts.Dbg}
	if err = srv.Run(ctx); err != nil {
		log.Printf("[ERROR] server failed, %v", err)
	}
}

// makeStore creates the configured slot wrapped with retries, the returned func releases its resources
func makeStore(ctx context.Context, cfg StorageConfig) (store.Slot, func(), error) {
	var slot store.Slot
	closer := func() {}

	switch cfg.Type {
	case "memory":
		slot = store.NewMemory(nil)
	case "sqlite":
		s, err := store.NewSQLite(cfg.SQLite.Path, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		slot, closer = s, func() {
			if err := s.Close(); err != nil {
				log.Printf("[WARN] failed to close sqlite, %v", err)
			}
		}
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		slot, closer = store.NewRedis(client, cfg.Redis.Prefix, cfg.Key), func() { _ = client.Close() }
	case "s3":
		client, err := store.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewS3(client, cfg.S3.Bucket, cfg.Key, cfg.S3.Timeout)
		if err = s.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		slot = s
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}

	if opts.Retry.Attempts > 1 {
		rptr := repeater.New(&strategy.Backoff{Repeats: opts.Retry.Attempts, Duration: opts.Retry.Duration,
			Factor: opts.Retry.Factor, Jitter: true})
		slot = store.Retry{Slot: slot, Repeater: rptr}
	}
	return slot, closer, nil
}

func setupLogs(dbg bool) io.Writer {
	var out io.Writer = os.Stdout
	if opts.Log.Filename != "" {
		out = &lumberjack.Logger{
			Filename:   opts.Log.Filename,
			MaxSize:    opts.Log.MaxSize,
			MaxBackups: opts.Log.MaxBackups,
			Compress:   true,
		}
	}

	if dbg {
		log.Setup(log.Out(out), log.Err(out), log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile)
		return out
	}
	log.Setup(log.Out(out), log.Err(out), log.Msec)
	return out
}
