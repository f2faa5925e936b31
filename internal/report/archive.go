package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/core/events"
	"github.com/nkaumov/kurs-zakat/internal/storage"
)

// Generator is the part of Service the archive needs.
type Generator interface {
	HoursReport(ctx context.Context, month, year int) (*Report, error)
}

// Archive keeps a copy of the hours report of every closed schedule in
// object storage under prefix.
type Archive struct {
	store     storage.Provider
	generator Generator
	prefix    string
	logger    *slog.Logger
}

func NewArchive(store storage.Provider, generator Generator, prefix string, logger *slog.Logger) *Archive {
	if prefix == "" {
		prefix = internal.DefaultReportPrefix
	}
	return &Archive{
		store:     store,
		generator: generator,
		prefix:    strings.Trim(prefix, "/"),
		logger:    logger,
	}
}

// Subscribe archives the hours report whenever a schedule is closed.
func (a *Archive) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeScheduleClosed, a.HandleScheduleClosed)
}

func (a *Archive) HandleScheduleClosed(ctx context.Context, event events.Event) error {
	closed, ok := event.(*events.ScheduleClosedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	rep, err := a.generator.HoursReport(ctx, closed.Month, closed.Year)
	if err != nil {
		a.logger.Error("failed to build archived report", "error", err, "schedule_id", closed.ScheduleID)
		return err
	}
	return a.Store(rep)
}

func (a *Archive) Store(rep *Report) error {
	key := a.key(rep.Filename)
	if err := a.store.Put(key, bytes.NewReader(rep.Content), ContentType); err != nil {
		a.logger.Error("failed to archive report", "error", err, "key", key)
		return err
	}
	a.logger.Info("report archived", "key", key, "bytes", len(rep.Content))
	return nil
}

// List returns archived file names, without the prefix.
func (a *Archive) List() ([]string, error) {
	keys, err := a.store.List(a.prefix + "/")
	if err != nil {
		return nil, internal.NewInternalError("failed to list archived reports", err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, a.prefix+"/"))
	}
	return names, nil
}

// Open returns an archived file by name. Names are plain file names.
func (a *Archive) Open(name string) (*storage.FileObject, error) {
	if name == "" || name != path.Base(name) || !strings.HasSuffix(name, ".csv") {
		return nil, internal.NewNotFoundError("Report not found", internal.ErrCodeReportNotFound)
	}
	obj, err := a.store.Get(a.key(name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, internal.NewNotFoundError("Report not found", internal.ErrCodeReportNotFound)
		}
		return nil, internal.NewInternalError("failed to read archived report", err)
	}
	return obj, nil
}

func (a *Archive) key(name string) string {
	return a.prefix + "/" + name
}
