// Package scheduler runs background jobs for yvctl watch: cron specs via
// github.com/robfig/cron/v3 and sub-second intervals via a ticker.
//
//	s := scheduler.New(ctx, scheduler.Config{Logger: log})
//	_, err := s.Add("0 7 * * *", fetchVerseOfTheDay, scheduler.JobOptions{
//		Name:    "votd",
//		Timeout: 30 * time.Second,
//		Overlap: scheduler.SkipIfRunning,
//	})
//	s.Start()
//	defer s.Stop(context.Background())
//
// Job errors and panics are logged and reported through Hooks; they never
// stop the scheduler. Canceling the parent context stops every job.
package scheduler
