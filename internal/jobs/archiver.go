package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/twentyq/game-server-go/internal/repository"
)

const archiveTimeout = 30 * time.Second

// ArchiverJob moves completed games older than the retention window
// out of Redis and into the Postgres archive. The game core never
// deletes sessions; retention lives here.
type ArchiverJob struct {
	games     repository.GameRepository
	archive   repository.ArchiveRepository
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

func NewArchiverJob(
	games repository.GameRepository,
	archive repository.ArchiveRepository,
	retention time.Duration,
	interval time.Duration,
) *ArchiverJob {
	return &ArchiverJob{
		games:     games,
		archive:   archive,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (j *ArchiverJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("archiver job started")
}

func (j *ArchiverJob) Stop() {
	close(j.done)
	log.Info().Msg("archiver job stopped")
}

func (j *ArchiverJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.archiveCompleted()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.archiveCompleted()
		}
	}
}

func (j *ArchiverJob) archiveCompleted() {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	sessions, err := j.games.ScanCompletedBefore(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to scan completed games")
		return
	}

	archived := 0
	for i := range sessions {
		session := &sessions[i]
		won := strings.EqualFold(session.FinalGuess, session.WordOfDay)

		if err := j.archive.Insert(ctx, session, won); err != nil {
			log.Error().Err(err).Str("sessionID", session.SessionID).Msg("failed to archive game")
			continue
		}
		if err := j.games.Delete(ctx, session.SessionID); err != nil {
			log.Error().Err(err).Str("sessionID", session.SessionID).Msg("failed to delete archived game")
			continue
		}
		archived++
	}

	if archived > 0 {
		log.Info().Int("count", archived).Msg("archived completed games")
	}
}
