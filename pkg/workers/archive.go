package workers

import (
	"context"

	"github.com/cbodonnell/firefades/pkg/game"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/cbodonnell/firefades/pkg/queue"
	"github.com/cbodonnell/firefades/pkg/repositories"
)

type ArchiveWorker struct {
	archiveQueue  queue.Queue[game.ArchiveRequest]
	repository    repositories.Repository
	subscriptions Subscriptions
}

type NewArchiveWorkerOptions struct {
	ArchiveQueue  queue.Queue[game.ArchiveRequest]
	Repository    repositories.Repository
	Subscriptions Subscriptions
}

// NewArchiveWorker creates a new ArchiveWorker.
// The worker cleans up after finished and abandoned games: it deletes the
// persisted game and drops every subscription to its code.
func NewArchiveWorker(opts NewArchiveWorkerOptions) *ArchiveWorker {
	return &ArchiveWorker{
		archiveQueue:  opts.ArchiveQueue,
		repository:    opts.Repository,
		subscriptions: opts.Subscriptions,
	}
}

func (w *ArchiveWorker) Start(ctx context.Context) {
	for {
		req, err := w.archiveQueue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Failed to dequeue archive request: %v", err)
			continue
		}
		w.archive(ctx, req)
	}
}

func (w *ArchiveWorker) archive(ctx context.Context, req game.ArchiveRequest) {
	if err := w.repository.DeleteGame(ctx, req.Code); err != nil && !repositories.IsNotFound(err) {
		log.Error("Failed to delete game %s: %v", req.Code, err)
	}
	w.subscriptions.UnsubscribeAll(req.Code)
	log.Info("Archived game %s (%s) with status %s", req.Code, req.GameID, req.Status)
}
