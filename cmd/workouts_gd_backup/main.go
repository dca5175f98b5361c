package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/2beens/gymbalance/internal/backup"
	"github.com/2beens/gymbalance/internal/logging"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// workouts csv google drive backup cmd, meant to run from cron

const runTimeout = 5 * time.Minute

func main() {
	credentialsFile := flag.String(
		"gd-creds",
		"./gymbalance-drive-credentials.json",
		"google drive service account credentials json (GYMBALANCE_GD_CREDENTIALS env var takes precedence)",
	)
	csvPath := flag.String("csv", "./data/workouts.csv", "path of the workouts csv file to back up")
	keep := flag.Int("keep", 30, "number of newest backups to keep (0 keeps all)")
	logsPath := flag.String("logs-path", "/var/log/gymbalance/gd-backup.log", "logs file path (empty for stdout)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogFileName: *logsPath,
		LogLevel:    *logLevel,
	})

	log.Println("starting workouts backup ...")

	if envCreds := os.Getenv("GYMBALANCE_GD_CREDENTIALS"); envCreds != "" {
		*credentialsFile = envCreds
	}
	if *credentialsFile == "" {
		log.Fatalln("google drive credentials json not specified")
	}
	credentialsFileBytes, err := os.ReadFile(*credentialsFile)
	if err != nil {
		log.Fatalf("unable to read credentials file: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	driveService, err := drive.NewService(
		ctx,
		option.WithCredentialsJSON(credentialsFileBytes),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		log.Fatalf("create drive service: %s", err)
	}

	s, err := backup.NewGoogleDriveBackupService(ctx, driveService, *keep)
	if err != nil {
		log.Fatalf("create google drive backup service: %s", err)
	}

	file, err := s.Backup(ctx, *csvPath)
	if errors.Is(err, backup.ErrNothingToBackup) {
		log.Warnf("nothing to back up, %s does not exist", *csvPath)
		return
	}
	if err != nil {
		log.Fatalf("backup: %s", err)
	}
	log.Printf("backup uploaded: %s [%s]", file.Name, file.Id)

	removed, err := s.Prune(ctx)
	if err != nil {
		log.Fatalf("prune old backups: %s", err)
	}
	log.Printf("old backups removed: %d", removed)
}
