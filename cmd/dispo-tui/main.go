package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rgehrsitz/dispo/internal/config"
	"github.com/rgehrsitz/dispo/internal/events"
	"github.com/rgehrsitz/dispo/internal/logger"
	"github.com/rgehrsitz/dispo/internal/session"
	"github.com/rgehrsitz/dispo/internal/store"
	"github.com/rgehrsitz/dispo/internal/tui"
)

// fileLogger sends log output to path so the alternate screen stays clean;
// an empty path discards it
func fileLogger(path string) (*zap.SugaredLogger, error) {
	if path == "" {
		return zap.NewNop().Sugar(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func run(assetPath string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	log, err := fileLogger(os.Getenv("DISPO_LOG_FILE"))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logger.Set(log)
	defer logger.Sync()

	asset, err := config.NewInputParser().LoadFromFile(assetPath)
	if err != nil {
		return err
	}
	asset = settings.ApplyTo(asset)

	var persisters []session.Persister

	// The store is optional: without it edits stay local to the session
	if db, err := store.Open(settings.DBDriver, settings.DBDSN); err != nil {
		log.Warnf("store unavailable, edits will not be saved: %v", err)
	} else {
		if err := store.Migrate(db); err != nil {
			return err
		}
		repo := store.NewRepository(db)
		if err := repo.SyncBase(context.Background(), asset); err != nil {
			return err
		}
		if stored, err := repo.LoadAsset(context.Background(), asset.ID); err == nil {
			asset = settings.ApplyTo(stored)
		}
		authority := store.NewAuthority(repo, nil)
		authority.SetLogger(logger.Named("store"))
		persisters = append(persisters, authority)
	}

	if settings.RedisAddr != "" {
		rdb, err := events.OpenRedis(settings.RedisAddr, settings.RedisDB)
		if err != nil {
			log.Warnf("redis unavailable, change stream disabled: %v", err)
		} else {
			defer rdb.Close()
			persisters = append(persisters, events.NewStreamPublisher(rdb, settings.RedisStream))
		}
	}

	s, err := session.New(asset, session.Options{
		Persister:      session.Chain(persisters...),
		Logger:         logger.Named("session"),
		PersistTimeout: settings.PersistTimeout,
	})
	if err != nil {
		return err
	}
	defer s.Wait()

	p := tea.NewProgram(
		tui.NewModel(s),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: dispo-tui <asset-file>")
		os.Exit(1)
	}

	assetPath := os.Args[1]
	if _, err := os.Stat(assetPath); os.IsNotExist(err) {
		fmt.Printf("Error: asset file not found: %s\n", assetPath)
		os.Exit(1)
	}

	if err := run(assetPath); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
