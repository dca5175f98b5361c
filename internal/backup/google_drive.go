package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/2beens/gymbalance/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
)

const (
	RootFolderName = "gymbalance-backup"
	folderMimeType = "application/vnd.google-apps.folder"
	csvMimeType    = "text/csv"
	backupTimeFmt  = "20060102T150405Z"
)

var ErrNothingToBackup = errors.New("workouts file does not exist")

// GoogleDriveBackupService uploads timestamped copies of the workouts CSV file
// into a dedicated google drive folder and keeps only the newest ones.
type GoogleDriveBackupService struct {
	service  *drive.Service
	folderID string
	keep     int
	now      func() time.Time
}

// NewGoogleDriveBackupService finds the backups folder, creating it if missing.
// keep <= 0 keeps all backups.
func NewGoogleDriveBackupService(ctx context.Context, driveService *drive.Service, keep int) (*GoogleDriveBackupService, error) {
	folders, err := driveService.
		Files.List().
		Q(fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", RootFolderName, folderMimeType)).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("find backups folder: %w", err)
	}

	s := &GoogleDriveBackupService{
		service: driveService,
		keep:    keep,
		now:     time.Now,
	}

	if len(folders.Files) > 0 {
		s.folderID = folders.Files[0].Id
	} else {
		folder, err := driveService.
			Files.Create(&drive.File{Name: RootFolderName, MimeType: folderMimeType}).
			Fields("id").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("create backups folder: %w", err)
		}
		s.folderID = folder.Id
		log.Infof("backups folder created: %s", s.folderID)
	}

	log.Debugf("backups folder ID: %s", s.folderID)
	return s, nil
}

func (s *GoogleDriveBackupService) FolderID() string {
	return s.folderID
}

// Backup uploads the current content of the CSV file at path.
func (s *GoogleDriveBackupService) Backup(ctx context.Context, path string) (_ *drive.File, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "googleDriveBackup.backup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNothingToBackup, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open workouts file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Warnf("close workouts file: %s", err)
		}
	}()

	name := fmt.Sprintf(
		"%s-%s.csv",
		strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		s.now().UTC().Format(backupTimeFmt),
	)
	created, err := s.service.
		Files.Create(&drive.File{
			Name:     name,
			MimeType: csvMimeType,
			Parents:  []string{s.folderID},
		}).
		Media(file).
		Fields("id, name, createdTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("upload backup %s: %w", name, err)
	}

	log.Infof("backup uploaded: %s (%s)", created.Name, created.Id)
	return created, nil
}

// List returns the backups, newest first.
func (s *GoogleDriveBackupService) List(ctx context.Context) ([]*drive.File, error) {
	backups, err := s.service.
		Files.List().
		Q(fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false", s.folderID, folderMimeType)).
		OrderBy("createdTime desc").
		Fields("files(id, name, createdTime)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return backups.Files, nil
}

// Prune deletes all but the newest keep backups and returns how many were deleted.
func (s *GoogleDriveBackupService) Prune(ctx context.Context) (int, error) {
	if s.keep <= 0 {
		return 0, nil
	}

	backups, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= s.keep {
		return 0, nil
	}

	deleted := 0
	for _, f := range backups[s.keep:] {
		if err := s.service.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
			return deleted, fmt.Errorf("delete backup %s (%s): %w", f.Name, f.Id, err)
		}
		log.Debugf("old backup deleted: %s (%s)", f.Name, f.Id)
		deleted++
	}
	return deleted, nil
}
