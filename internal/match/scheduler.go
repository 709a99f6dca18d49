package match

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/hyunwoo-p/rinkmate/internal/logger"
)

// AutoCloseJob flips open matches to closed once their start time has
// passed. Closing stops further registrations; it never touches points
// or participants, so running it late or twice is harmless.
type AutoCloseJob struct {
	repo MatchRepository
	now  func() time.Time
}

func NewAutoCloseJob(repo MatchRepository) *AutoCloseJob {
	return &AutoCloseJob{repo: repo, now: time.Now}
}

func (j *AutoCloseJob) Name() string {
	return "match_auto_close"
}

func (j *AutoCloseJob) Run() {
	matches, err := j.repo.ListOpenMatchesStartedBefore(j.now())
	if err != nil {
		logger.Error("auto-close: list matches: %v", err)
		return
	}

	for i := range matches {
		m := &matches[i]
		m.Status = MatchClosed
		if err := j.repo.SaveMatch(m); err != nil {
			logger.Error("auto-close: close match %d: %v", m.ID, err)
			continue
		}
		logger.Info("auto-close: match %d (%s) closed", m.ID, m.Title)
	}
}

// StartScheduler registers the auto-close job on a fresh gocron
// scheduler and starts it. The returned scheduler should be shut down
// on exit.
func StartScheduler(repo MatchRepository, intervalSeconds int) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	job := NewAutoCloseJob(repo)
	_, err = s.NewJob(
		gocron.DurationJob(time.Duration(intervalSeconds)*time.Second),
		gocron.NewTask(job.Run),
		gocron.WithName(job.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}
